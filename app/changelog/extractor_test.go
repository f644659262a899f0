package changelog

import (
	"fmt"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"
)

const testBaseURL = "https://gwern.net/changelog"

type testMonth struct {
	ID      string
	Title   string
	NoList  bool
	NoTitle bool
}

type testYear struct {
	ID     string
	Months []testMonth
}

func renderPage(years []testYear) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>Changelog</title></head><body>`)
	b.WriteString(`<div id="sidebar"><section id="2099"></section></div>`)
	b.WriteString(`<div id="markdownBody">`)
	for _, y := range years {
		fmt.Fprintf(&b, `<section id="%s" class="level1"><h1>%s</h1>`, y.ID, y.ID)
		for _, m := range y.Months {
			fmt.Fprintf(&b, `<section id="%s" class="level2">`, m.ID)
			if !m.NoTitle {
				fmt.Fprintf(&b, `<h2><a href="#%s">%s</a></h2>`, m.ID, m.Title)
			}
			if !m.NoList {
				fmt.Fprintf(&b, `<ul><li><p>Change in %s</p></li></ul>`, m.Title)
			}
			b.WriteString(`</section>`)
		}
		b.WriteString(`</section>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// yearsWithMonths builds count year sections starting at firstYear, each with perYear months.
func yearsWithMonths(firstYear, count, perYear int) []testYear {
	names := []string{"december", "november", "october", "september", "august", "july",
		"june", "may", "april", "march", "february", "january"}

	years := make([]testYear, 0, count)
	for i := 0; i < count; i++ {
		year := firstYear - i
		y := testYear{ID: fmt.Sprintf("%d", year)}
		for j := 0; j < perYear; j++ {
			name := names[j%len(names)]
			y.Months = append(y.Months, testMonth{
				ID:    fmt.Sprintf("%s%d", name, year),
				Title: fmt.Sprintf("%s %d", strings.ToUpper(name[:1])+name[1:], year),
			})
		}
		years = append(years, y)
	}
	return years
}

func extract(t *testing.T, page string, opts Options) ([]Update, error) {
	t.Helper()

	container, err := Locate(page, "markdownBody")
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	if opts.BaseURL == "" {
		opts.BaseURL = testBaseURL
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return NewExtractor(opts).Run(container)
}

func TestExtractor_FiveYearsOneMonthEach(t *testing.T) {
	page := renderPage(yearsWithMonths(2024, 5, 1))

	updates, err := extract(t, page, Options{MaxEntries: 20, MinSections: 5})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(updates) != 5 {
		t.Fatalf("Expected 5 updates, got %d", len(updates))
	}

	for i, update := range updates {
		year := 2024 - i
		expectedLink := fmt.Sprintf("%s#december%d", testBaseURL, year)
		if update.Link != expectedLink {
			t.Errorf("Update %d: expected link '%s', got '%s'", i, expectedLink, update.Link)
		}
		if update.Month != fmt.Sprintf("December %d", year) {
			t.Errorf("Update %d: unexpected month title '%s'", i, update.Month)
		}
		expectedChanges := fmt.Sprintf("<ul><li><p>Change in December %d</p></li></ul>", year)
		if update.Changes != expectedChanges {
			t.Errorf("Update %d: expected changes '%s', got '%s'", i, expectedChanges, update.Changes)
		}
		// December wraps to January of the same year
		expectedDate := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		if !update.Date.Equal(expectedDate) {
			t.Errorf("Update %d: expected date %v, got %v", i, expectedDate, update.Date)
		}
	}
}

func TestExtractor_TooFewSections(t *testing.T) {
	page := renderPage(yearsWithMonths(2024, 4, 1))

	_, err := extract(t, page, Options{MaxEntries: 20, MinSections: 5})
	if err == nil {
		t.Fatal("Expected error for too few sections")
	}

	if !IsKind(err, KindStructure) {
		t.Errorf("Expected structure error, got: %v", err)
	}
	if KindOf(err).ExitCode() != 1 {
		t.Errorf("Expected exit code 1, got %d", KindOf(err).ExitCode())
	}
	if !strings.Contains(err.Error(), "Only 4 sections found") {
		t.Errorf("Expected section count in message, got: %v", err)
	}
}

func TestExtractor_IgnoresSectionsOutsideContainer(t *testing.T) {
	// renderPage puts a year-like section in #sidebar; it must not be counted
	page := renderPage(yearsWithMonths(2024, 5, 1))

	updates, err := extract(t, page, Options{MaxEntries: 20, MinSections: 6})
	if err == nil {
		t.Fatalf("Expected error with 5 sections in container, got %d updates", len(updates))
	}
	if !strings.Contains(err.Error(), "Only 5 sections found") {
		t.Errorf("Expected 5 sections to be found, got: %v", err)
	}
}

func TestExtractor_EntryCap(t *testing.T) {
	tests := []struct {
		name     string
		years    int
		perYear  int
		expected int
	}{
		{"three per year", 10, 3, 21},
		{"one per year", 30, 1, 21},
		{"twelve per year", 5, 12, 24},
		{"below cap", 5, 2, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := renderPage(yearsWithMonths(2024, tt.years, tt.perYear))

			updates, err := extract(t, page, Options{MaxEntries: 20, MinSections: 5})
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if len(updates) != tt.expected {
				t.Errorf("Expected %d updates, got %d", tt.expected, len(updates))
			}
			if len(updates) > 20+tt.perYear {
				t.Errorf("At most one year may start past the limit, got %d updates", len(updates))
			}
		})
	}
}

func TestExtractor_CompletesStartedYear(t *testing.T) {
	// 4 years x 5 months = 20 updates, not over the limit, so the fifth year
	// is read in full and the sixth is never started
	page := renderPage(yearsWithMonths(2024, 6, 5))

	updates, err := extract(t, page, Options{MaxEntries: 20, MinSections: 5})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(updates) != 25 {
		t.Fatalf("Expected 25 updates, got %d", len(updates))
	}
	if updates[24].Link != testBaseURL+"#august2020" {
		t.Errorf("Expected last update to close out 2020, got '%s'", updates[24].Link)
	}
}

func TestExtractor_FullYearsPastLimit(t *testing.T) {
	// 12 months a year: after two years the count is 24 and the third year is skipped
	page := renderPage(yearsWithMonths(2024, 5, 12))

	updates, err := extract(t, page, Options{MaxEntries: 20, MinSections: 5})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(updates) != 24 {
		t.Fatalf("Expected 24 updates, got %d", len(updates))
	}
	if updates[23].Link != testBaseURL+"#january2023" {
		t.Errorf("Expected last update january2023, got '%s'", updates[23].Link)
	}
}

func TestExtractor_SkipsMonthsWithoutList(t *testing.T) {
	years := yearsWithMonths(2024, 5, 2)
	years[0].Months[0].NoList = true
	years[3].Months[1].NoList = true

	updates, err := extract(t, renderPage(years), Options{MaxEntries: 20, MinSections: 5})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(updates) != 8 {
		t.Errorf("Expected 8 updates, got %d", len(updates))
	}
	for _, update := range updates {
		if update.Link == testBaseURL+"#december2024" || update.Link == testBaseURL+"#november2021" {
			t.Errorf("Month without list should be skipped, got '%s'", update.Link)
		}
	}
}

func TestExtractor_AllMonthsWithoutList(t *testing.T) {
	years := yearsWithMonths(2024, 5, 1)
	for i := range years {
		years[i].Months[0].NoList = true
	}

	updates, err := extract(t, renderPage(years), Options{MaxEntries: 20, MinSections: 5})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(updates) != 0 {
		t.Errorf("Expected 0 updates, got %d", len(updates))
	}
}

func TestExtractor_NonNumericYearFallsBackToCurrentYear(t *testing.T) {
	years := yearsWithMonths(2024, 5, 1)
	years[2] = testYear{
		ID:     "2022-updates",
		Months: []testMonth{{ID: "january2022", Title: "January 2022"}},
	}

	now := time.Date(2031, time.June, 15, 12, 0, 0, 0, time.UTC)
	updates, err := extract(t, renderPage(years), Options{
		MaxEntries:  20,
		MinSections: 5,
		Now:         func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(updates) != 5 {
		t.Fatalf("Expected 5 updates, got %d", len(updates))
	}

	expected := time.Date(2031, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !updates[2].Date.Equal(expected) {
		t.Errorf("Expected fallback date %v, got %v", expected, updates[2].Date)
	}
	if updates[1].Date.Year() != 2023 {
		t.Errorf("Numeric year ids should be used as-is, got %d", updates[1].Date.Year())
	}
}

func TestExtractor_MalformedMonthAborts(t *testing.T) {
	years := yearsWithMonths(2024, 5, 1)
	years[1].Months[0].NoTitle = true

	_, err := extract(t, renderPage(years), Options{MaxEntries: 20, MinSections: 5})
	if err == nil {
		t.Fatal("Expected error for month without heading")
	}
	if !IsKind(err, KindMalformed) {
		t.Errorf("Expected malformed error, got: %v", err)
	}
	if KindOf(err).ExitCode() == 1 || KindOf(err).ExitCode() == 0 {
		t.Errorf("Malformed input should not share the exit code of anticipated failures, got %d", KindOf(err).ExitCode())
	}
}

func TestExtractor_FixesOffsetAtRunTime(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("Failed to load location: %v", err)
	}

	// CEST (+02:00) in July; the winter months must keep that offset
	now := time.Date(2024, time.July, 10, 12, 0, 0, 0, loc)
	page := renderPage(yearsWithMonths(2024, 5, 12))

	updates, err := extract(t, page, Options{
		MaxEntries:  20,
		MinSections: 5,
		Location:    loc,
		Now:         func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	for _, update := range updates {
		if _, offset := update.Date.Zone(); offset != 2*60*60 {
			t.Errorf("%s: expected offset %d, got %d", update.Link, 2*60*60, offset)
		}
	}

	// december2023 shifts to 1 January 2023
	december := updates[12]
	if december.Link != testBaseURL+"#december2023" {
		t.Fatalf("Expected december2023, got '%s'", december.Link)
	}
	if got := december.Date.Format(time.RFC1123Z); got != "Sun, 01 Jan 2023 00:00:00 +0200" {
		t.Errorf("Expected 'Sun, 01 Jan 2023 00:00:00 +0200', got '%s'", got)
	}
}

func TestExtractor_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	page := renderPage(yearsWithMonths(2024, 5, 1))

	updates, err := extract(t, page, Options{MaxEntries: 20, MinSections: 5, Location: loc})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	_, offset := updates[0].Date.Zone()
	if offset != 5*60*60 {
		t.Errorf("Expected offset %d, got %d", 5*60*60, offset)
	}
}
