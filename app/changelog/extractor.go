package changelog

import (
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	sectionWithID = cascadia.MustCompile("section[id]")

	yearSectionID  = regexp.MustCompile(`^\d{4}`)
	monthSectionID = regexp.MustCompile(`\d{4}$`)
)

type Options struct {
	BaseURL     string
	MaxEntries  int
	MinSections int
	Location    *time.Location
	Now         func() time.Time
}

type Extractor struct {
	opts Options
	zone *time.Location
}

// NewExtractor fixes the UTC offset of Location as of Now. Every Update
// carries that offset, whatever DST rule applies on its own date.
func NewExtractor(opts Options) *Extractor {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	name, offset := opts.Now().In(opts.Location).Zone()

	return &Extractor{
		opts: opts,
		zone: time.FixedZone(name, offset),
	}
}

// Run walks the year sections of container in document order and collects
// one Update per month section that has a list. The entry limit is only
// checked before each year section, so a year that was started is finished.
func (e *Extractor) Run(container *goquery.Selection) ([]Update, error) {
	years := sectionsMatching(container, yearSectionID)

	for _, node := range years.Nodes {
		if node.Type != html.ElementNode {
			return nil, NewError(KindStructure, nil, "Some of the sections of the main body appear empty")
		}
	}

	if years.Length() < e.opts.MinSections {
		return nil, NewError(KindStructure, nil,
			"Changelog appears to be missing values. Only %d sections found.", years.Length())
	}

	updates := make([]Update, 0, e.opts.MaxEntries+1)

	for i := range years.Nodes {
		if len(updates) > e.opts.MaxEntries {
			slog.Debug("Entry limit reached", "updates", len(updates), "remaining_sections", years.Length()-i)
			break
		}

		section := years.Eq(i)
		id, _ := section.Attr("id")
		year := e.parseYear(id)

		months := sectionsMatching(section, monthSectionID)
		for j := range months.Nodes {
			update, err := BuildUpdate(months.Eq(j), year, e.opts.BaseURL, e.zone)
			if errors.Is(err, ErrNoList) {
				monthID, _ := months.Eq(j).Attr("id")
				slog.Debug("Month section has no list, skipping", "id", monthID)
				continue
			}
			if err != nil {
				return nil, err
			}

			updates = append(updates, update)
		}

		slog.Debug("Year section processed", "id", id, "year", year, "months", months.Length(), "updates", len(updates))
	}

	return updates, nil
}

func (e *Extractor) parseYear(id string) int {
	year, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return e.opts.Now().In(e.opts.Location).Year()
	}
	return year
}

func sectionsMatching(root *goquery.Selection, pattern *regexp.Regexp) *goquery.Selection {
	return root.FindMatcher(sectionWithID).FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		return pattern.MatchString(id)
	})
}
