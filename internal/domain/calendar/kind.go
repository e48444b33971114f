package calendar

import (
	"fmt"
	"sort"
	"strings"

	"syllabuscal/internal/domain/syllabus"
)

// Kind is the event type filter shown in list and month views.
type Kind string

const (
	KindAll        Kind = "all"
	KindAssignment Kind = "assignment"
	KindExam       Kind = "exam"
	KindProject    Kind = "project"

	// KindOther is a display label only; it is not a filter value.
	KindOther Kind = "other"
)

var filterKinds = []Kind{KindAll, KindAssignment, KindExam, KindProject}

// ParseKind accepts a filter name case-insensitively; empty means KindAll.
func ParseKind(raw string) (Kind, error) {
	value := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return KindAll, nil
	}
	for _, kind := range filterKinds {
		if kind == value {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown event kind %q (want all|assignment|exam|project)", raw)
}

// Next cycles through the filter kinds in display order.
func (k Kind) Next() Kind {
	for i, kind := range filterKinds {
		if kind == k {
			return filterKinds[(i+1)%len(filterKinds)]
		}
	}
	return KindAll
}

// Matches reports whether event passes the kind filter. Project wins over
// assignment when both keywords appear.
func Matches(kind Kind, event syllabus.Event) bool {
	text := searchText(event)
	switch kind {
	case KindAll, "":
		return true
	case KindExam:
		return strings.Contains(text, "exam")
	case KindProject:
		return strings.Contains(text, "project")
	case KindAssignment:
		return (strings.Contains(text, "assignment") || strings.Contains(text, "homework")) &&
			!strings.Contains(text, "project")
	default:
		return false
	}
}

// Classify returns the single display label for event.
func Classify(event syllabus.Event) Kind {
	for _, kind := range []Kind{KindExam, KindProject, KindAssignment} {
		if Matches(kind, event) {
			return kind
		}
	}
	return KindOther
}

// Filter returns the events matching kind, sorted by date.
func Filter(events []syllabus.Event, kind Kind) []syllabus.Event {
	out := make([]syllabus.Event, 0, len(events))
	for _, event := range events {
		if Matches(kind, event) {
			out = append(out, event)
		}
	}
	SortEvents(out)
	return out
}

// SortEvents orders events by date, then creation time, then title.
func SortEvents(events []syllabus.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Title < b.Title
	})
}

func searchText(event syllabus.Event) string {
	return strings.ToLower(event.Title + "\n" + event.Description)
}
