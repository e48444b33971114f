package syllabus

import "strings"

// ValidateItems keeps the items that carry every required field with a
// non-empty title and a resolvable date. Malformed items are dropped one by
// one; the caller decides what an empty result means.
//
// Course resolution: a non-empty hint wins for every item, then the item's
// own course, then the document-level course, then UnassignedCourse.
func ValidateItems(response RawResponse, courseHint string) ([]Candidate, int) {
	hint := strings.TrimSpace(courseHint)
	documentCourse := strings.TrimSpace(response.Course)

	out := make([]Candidate, 0, len(response.Items))
	dropped := 0
	for _, item := range response.Items {
		candidate, ok := validateItem(item, hint, documentCourse)
		if !ok {
			dropped++
			continue
		}
		out = append(out, candidate)
	}
	return out, dropped
}

func validateItem(item RawItem, hint string, documentCourse string) (Candidate, bool) {
	if item.Date == nil || item.Title == nil || item.Description == nil || item.Course == nil {
		return Candidate{}, false
	}

	title := collapseSpace(*item.Title)
	if title == "" {
		return Candidate{}, false
	}
	date, err := ParseDate(*item.Date)
	if err != nil {
		return Candidate{}, false
	}

	description := strings.TrimSpace(*item.Description)
	if description == "" && item.Type != nil {
		if kind := strings.TrimSpace(*item.Type); kind != "" {
			description = "Type: " + kind
		}
	}

	return Candidate{
		Date:        date,
		Title:       title,
		Description: description,
		Course:      resolveCourse(hint, strings.TrimSpace(*item.Course), documentCourse),
	}, true
}

func resolveCourse(values ...string) string {
	for _, value := range values {
		if value = collapseSpace(value); value != "" {
			return value
		}
	}
	return UnassignedCourse
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
