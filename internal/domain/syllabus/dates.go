package syllabus

import (
	"errors"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var fallbackDateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	time.RFC3339,
}

var errUnparseableDate = errors.New("unparseable date")

// ParseDate resolves a free-form date string into a civil date at UTC midnight.
// ISO year-month-day is preferred; a few common syllabus layouts are accepted.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, errUnparseableDate
	}

	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	for _, layout := range fallbackDateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, errUnparseableDate
}

// FormatDate renders a civil date in storage form.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// CivilDate truncates t to its calendar day at UTC midnight.
func CivilDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
