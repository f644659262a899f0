package changelog

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Update is one month of changelog content.
type Update struct {
	Month   string    // entry title, e.g. "January 2024"
	Changes string    // outer HTML of the month's list
	Link    string    // base URL + "#" + month section id
	Date    time.Time // first day of the (shifted) month, local zone
}

const summaryLength = 280

// Summary returns the plain text of Changes with whitespace collapsed,
// truncated to a short preview.
func (u Update) Summary() string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(u.Changes))
	if err != nil {
		return ""
	}

	text := strings.Join(strings.Fields(doc.Text()), " ")
	if utf8.RuneCountInString(text) <= summaryLength {
		return text
	}

	runes := []rune(text)
	return strings.TrimSpace(string(runes[:summaryLength])) + "…"
}

type Kind int

const (
	// KindFetch means the changelog could not be retrieved.
	KindFetch Kind = iota + 1
	// KindStructure means the page no longer looks like the changelog we know.
	KindStructure
	// KindMalformed means a month section broke an assumption the extractor relies on.
	KindMalformed
	// KindOutput means the feed could not be rendered or written.
	KindOutput
)

func (k Kind) String() string {
	switch k {
	case KindFetch:
		return "fetch"
	case KindStructure:
		return "structure"
	case KindMalformed:
		return "malformed"
	case KindOutput:
		return "output"
	default:
		return "unknown"
	}
}

// ExitCode maps a failure kind to the process exit status.
func (k Kind) ExitCode() int {
	switch k {
	case KindFetch, KindStructure:
		return 1
	default:
		return 2
	}
}

// Error is a failure tagged with the stage that produced it.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
		Err:  err,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// ErrNoList marks a month section without a list; such months are skipped.
var ErrNoList = errors.New("month section has no list")
