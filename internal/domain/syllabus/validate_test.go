package syllabus

import "testing"

func ptr(s string) *string { return &s }

func item(date, title, description, course string) RawItem {
	return RawItem{Date: ptr(date), Title: ptr(title), Description: ptr(description), Course: ptr(course)}
}

func TestValidateItemsDropsMalformedIndividually(t *testing.T) {
	response := RawResponse{Items: []RawItem{
		item("2024-05-01", "Quiz 1", "", "A"),
		item("someday", "Quiz 2", "", "A"),
		item("2024-05-03", "   ", "", "A"),
		{Date: ptr("2024-05-04"), Title: ptr("No description key"), Course: ptr("A")},
		{},
		item("2024-05-05", "Exam 1", "chapters 1-4", "A"),
	}}

	got, dropped := ValidateItems(response, "")
	if len(got) != 2 {
		t.Fatalf("len(valid) = %d, want 2: %+v", len(got), got)
	}
	if dropped != 4 {
		t.Fatalf("dropped = %d, want 4", dropped)
	}
	if len(got) > len(response.Items) {
		t.Fatalf("valid count exceeds input count")
	}
	if got[0].Title != "Quiz 1" || got[1].Title != "Exam 1" {
		t.Fatalf("titles = %q, %q", got[0].Title, got[1].Title)
	}
}

func TestValidateItemsCourseHintOverridesEveryItem(t *testing.T) {
	response := RawResponse{
		Course: "Document Course",
		Items: []RawItem{
			item("2024-05-01", "Quiz 1", "", "BIO 101"),
			item("2024-05-02", "Quiz 2", "", ""),
			item("2024-05-03", "Quiz 3", "", "CS 161"),
		},
	}

	got, _ := ValidateItems(response, " CPE 380 ")
	for _, candidate := range got {
		if candidate.Course != "CPE 380" {
			t.Fatalf("course = %q, want CPE 380", candidate.Course)
		}
	}
}

func TestValidateItemsCourseFallbacks(t *testing.T) {
	got, _ := ValidateItems(RawResponse{
		Course: "CS 161",
		Items: []RawItem{
			item("2024-05-01", "Quiz 1", "", "BIO 101"),
			item("2024-05-02", "Quiz 2", "", ""),
		},
	}, "")
	if got[0].Course != "BIO 101" || got[1].Course != "CS 161" {
		t.Fatalf("courses = %q, %q", got[0].Course, got[1].Course)
	}

	got, _ = ValidateItems(RawResponse{Items: []RawItem{item("2024-05-01", "Quiz 1", "", "  ")}}, "")
	if got[0].Course != UnassignedCourse {
		t.Fatalf("course = %q, want %q", got[0].Course, UnassignedCourse)
	}
}

func TestValidateItemsUsesTypeWhenDescriptionEmpty(t *testing.T) {
	raw := item("2024-05-01", "Midterm", "", "A")
	raw.Type = ptr("Exam")

	got, _ := ValidateItems(RawResponse{Items: []RawItem{raw}}, "")
	if got[0].Description != "Type: Exam" {
		t.Fatalf("description = %q, want Type: Exam", got[0].Description)
	}
}
