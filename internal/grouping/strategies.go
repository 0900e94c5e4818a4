package grouping

import (
	"fmt"
	"strconv"
	"time"

	"github.com/finstat-dev/finstat/internal/model"
)

const dateLayout = "2006-01-02"

// Month groups by "YYYY-MM".
type Month struct{}

// Key returns the month of t.
func (Month) Key(t model.Transaction) string {
	return prefix(t.Date, 7)
}

// Follows returns the month after key.
func (Month) Follows(key string) string {
	if len(key) != 7 || key[4] != '-' {
		return ""
	}
	year, err := strconv.Atoi(key[:4])
	if err != nil {
		return ""
	}
	month, err := strconv.Atoi(key[5:])
	if err != nil || month < 1 || month > 12 {
		return ""
	}
	if month == 12 {
		year, month = year+1, 1
	} else {
		month++
	}
	return fmt.Sprintf("%04d-%02d", year, month)
}

// Year groups by "YYYY".
type Year struct{}

// Key returns the year of t.
func (Year) Key(t model.Transaction) string {
	return prefix(t.Date, 4)
}

// Follows returns the year after key.
func (Year) Follows(key string) string {
	year, err := strconv.Atoi(key)
	if err != nil {
		return ""
	}
	return strconv.Itoa(year + 1)
}

// Week groups by ISO-8601 week, "YYYY-Www".
type Week struct{}

// Key returns the ISO week of t. A date that does not parse is its own key.
func (Week) Key(t model.Transaction) string {
	d, err := time.Parse(dateLayout, prefix(t.Date, 10))
	if err != nil {
		return t.Date
	}
	return weekKey(d)
}

// Follows returns the ISO week after key.
func (Week) Follows(key string) string {
	var year, week int
	if _, err := fmt.Sscanf(key, "%4d-W%2d", &year, &week); err != nil || week < 1 || week > 53 {
		return ""
	}
	return weekKey(isoWeekStart(year, week).AddDate(0, 0, 7))
}

func weekKey(d time.Time) string {
	year, week := d.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// isoWeekStart returns the Monday of the given ISO week. January 4th always
// falls in week 1.
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -offset+(week-1)*7)
}

// AllKey is the single bucket key of the All strategy.
const AllKey = "Σ"

// All puts every transaction into one bucket.
type All struct{}

// Key returns AllKey.
func (All) Key(model.Transaction) string { return AllKey }

// Follows returns "": the single bucket has no successor.
func (All) Follows(string) string { return "" }

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
