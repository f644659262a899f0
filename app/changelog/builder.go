package changelog

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// BuildUpdate converts one month section into an Update.
// It returns ErrNoList when the section has no list; every other failure is KindMalformed.
func BuildUpdate(month *goquery.Selection, year int, baseURL string, loc *time.Location) (Update, error) {
	id, hasID := month.Attr("id")

	heading := month.Find("h2").First()
	if heading.Length() == 0 {
		return Update{}, NewError(KindMalformed, nil, "month section %q has no h2 heading", id)
	}

	link := heading.Find("a").First()
	if link.Length() == 0 {
		return Update{}, NewError(KindMalformed, nil, "heading of month section %q has no link", id)
	}

	title := link.Text()
	if strings.TrimSpace(title) == "" {
		return Update{}, NewError(KindMalformed, nil, "heading link of month section %q is empty", id)
	}

	list := month.Find("ul").First()
	if list.Length() == 0 {
		return Update{}, ErrNoList
	}

	if !hasID || id == "" {
		return Update{}, NewError(KindMalformed, nil, "month section %q has no id", title)
	}

	parsed, err := parseMonth(id)
	if err != nil {
		return Update{}, NewError(KindMalformed, err, "could not read a month name from id %q", id)
	}

	changes, err := goquery.OuterHtml(list)
	if err != nil {
		return Update{}, NewError(KindMalformed, err, "could not serialize the list of month section %q", id)
	}

	if loc == nil {
		loc = time.Local
	}

	return Update{
		Month:   title,
		Changes: changes,
		Link:    baseURL + "#" + id,
		Date:    publicationDate(year, parsed, loc),
	}, nil
}

// parseMonth reads the month from a section id such as "january2024" or "january-2024".
func parseMonth(id string) (time.Month, error) {
	if len(id) < 4 {
		return 0, fmt.Errorf("id %q is too short", id)
	}

	name := strings.TrimRight(id[:len(id)-4], "-_")

	// month names are matched case-insensitively
	t, err := time.Parse("January", name)
	if err != nil {
		return 0, err
	}

	return t.Month(), nil
}

// publicationDate returns the first day of the month after month.
// December wraps to January without changing the year.
func publicationDate(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, time.Month(int(month)%12+1), 1, 0, 0, 0, 0, loc)
}
