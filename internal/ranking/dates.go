package ranking

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

// DateLayout is how credit dates are rendered.
const DateLayout = "2006-01-02"

var slugYearRE = regexp.MustCompile(`(19|20)\d{2}`)

// Layouts accepted for performance timestamps. Values without an offset are
// read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateLayout,
}

// ParseTimestamp parses a performance start_at value.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SlugYear returns the first 19xx or 20xx year embedded in a show slug.
func SlugYear(slug string) (int, bool) {
	m := slugYearRE.FindString(slug)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return y, true
}

// ShowRange is the span of a show's performances. FromSlug marks a
// single-day range inferred from the slug year.
type ShowRange struct {
	First    time.Time
	Last     time.Time
	FromSlug bool
}

// PerformanceRange returns the earliest and latest parseable performance
// start of a show.
func PerformanceRange(show models.Show) (ShowRange, bool) {
	var r ShowRange
	found := false
	for _, p := range show.Performances {
		t, ok := ParseTimestamp(p.StartAt)
		if !ok {
			continue
		}
		if !found || t.Before(r.First) {
			r.First = t
		}
		if !found || t.After(r.Last) {
			r.Last = t
		}
		found = true
	}
	return r, found
}

// DateRange is PerformanceRange with a fallback to 1 January of the slug
// year when no performance carries a timestamp.
func DateRange(show models.Show) (ShowRange, bool) {
	if r, ok := PerformanceRange(show); ok {
		return r, true
	}
	if y, ok := SlugYear(strings.TrimSpace(show.Slug)); ok {
		d := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		return ShowRange{First: d, Last: d, FromSlug: true}, true
	}
	return ShowRange{}, false
}

// MonthsAgo steps t back by whole calendar months, clamping the day to the
// length of the target month.
func MonthsAgo(t time.Time, months int) time.Time {
	y, m := t.Year(), int(t.Month())-months
	for m <= 0 {
		m += 12
		y--
	}
	return clampDate(t, y, time.Month(m))
}

// YearsAgo steps t back by whole years. 29 February becomes 28 February in
// non-leap target years.
func YearsAgo(t time.Time, years int) time.Time {
	return clampDate(t, t.Year()-years, t.Month())
}

func clampDate(t time.Time, year int, month time.Month) time.Time {
	day := t.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
