package calendar

import (
	"sort"
	"strings"

	"syllabuscal/internal/domain/syllabus"
)

// Palette holds the course colors, assigned cyclically in alphabetical group order.
var Palette = []string{
	"#3b82f6",
	"#ef4444",
	"#10b981",
	"#f59e0b",
	"#8b5cf6",
	"#ec4899",
	"#14b8a6",
	"#f97316",
}

// Group is one course section of the list view.
type Group struct {
	Course string
	Color  string
	Events []syllabus.Event
}

// CourseLabel returns the grouping label of event.
func CourseLabel(event syllabus.Event) string {
	course := strings.TrimSpace(event.CourseName)
	if course == "" {
		return syllabus.UnassignedCourse
	}
	return course
}

// GroupByCourse groups already filtered events by course. Groups are sorted
// by course name and keep the incoming event order.
func GroupByCourse(events []syllabus.Event) []Group {
	byCourse := make(map[string][]syllabus.Event)
	for _, event := range events {
		label := CourseLabel(event)
		byCourse[label] = append(byCourse[label], event)
	}

	courses := make([]string, 0, len(byCourse))
	for course := range byCourse {
		courses = append(courses, course)
	}
	sort.Strings(courses)

	groups := make([]Group, 0, len(courses))
	for index, course := range courses {
		groups = append(groups, Group{
			Course: course,
			Color:  Palette[index%len(Palette)],
			Events: byCourse[course],
		})
	}
	return groups
}

// CourseColors maps every course label in groups to its color.
func CourseColors(groups []Group) map[string]string {
	out := make(map[string]string, len(groups))
	for _, group := range groups {
		out[group.Course] = group.Color
	}
	return out
}
