package calendar

import (
	"fmt"
	"strings"

	ical "github.com/arran4/golang-ical"

	"syllabuscal/internal/domain/syllabus"
)

const (
	uidDomain       = "syllabuscal"
	ExportFilename  = "syllabus-calendar.ics"
	ExportMediaType = "text/calendar; charset=utf-8"
)

// ExportICS renders events as an iCalendar document with one all-day VEVENT
// per event. Output depends only on the input, so exporting the same events
// twice yields the same bytes.
func ExportICS(events []syllabus.Event) []byte {
	ordered := make([]syllabus.Event, len(events))
	copy(ordered, events)
	SortEvents(ordered)

	cal := ical.NewCalendarFor(uidDomain)
	cal.SetMethod(ical.MethodPublish)

	for index, event := range ordered {
		vevent := cal.AddEvent(EventUID(event, index))
		vevent.SetDtStampTime(event.CreatedAt.UTC())
		vevent.SetAllDayStartAt(event.Date)
		vevent.SetAllDayEndAt(event.Date.AddDate(0, 0, 1))
		vevent.SetSummary(normalizeNewlines(event.Title))
		vevent.SetDescription(exportDescription(event))
	}

	return []byte(cal.Serialize())
}

// EventUID derives the identifier from the event date and its position in
// the export.
func EventUID(event syllabus.Event, index int) string {
	return fmt.Sprintf("%s-%d@%s", event.Date.Format("20060102"), index, uidDomain)
}

func exportDescription(event syllabus.Event) string {
	description := "Course: " + CourseLabel(event)
	if text := strings.TrimSpace(event.Description); text != "" {
		description += "\n" + text
	}
	return normalizeNewlines(description)
}

func normalizeNewlines(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	return strings.ReplaceAll(value, "\r", "\n")
}
