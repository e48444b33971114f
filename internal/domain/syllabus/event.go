package syllabus

import "time"

// UnassignedCourse labels events whose course could not be resolved.
const UnassignedCourse = "Other"

// DefaultSourceDocument is used when the caller does not name the uploaded file.
const DefaultSourceDocument = "syllabus.pdf"

// Event is a persisted, validated calendar entry owned by a single user.
type Event struct {
	ID             string
	Owner          string
	BatchID        string
	SourceDocument string
	SourceURL      string
	CourseName     string
	Date           time.Time
	Title          string
	Description    string
	CreatedAt      time.Time
}

// DateKey returns the event date in storage form (YYYY-MM-DD).
func (e Event) DateKey() string {
	return FormatDate(e.Date)
}

// Candidate is a validated event proposal that has not been persisted yet.
type Candidate struct {
	Date        time.Time
	Title       string
	Description string
	Course      string
}

// Key identifies a candidate inside one reconciliation batch.
func (c Candidate) Key() string {
	return FormatDate(c.Date) + "\x00" + c.Title + "\x00" + c.Course
}

// RawItem is one untrusted item returned by the text-understanding capability.
// A nil field means the key was absent from the response.
type RawItem struct {
	Date        *string
	Title       *string
	Description *string
	Course      *string
	Type        *string
}

// RawResponse is the decoded, still unvalidated capability response.
type RawResponse struct {
	Course string
	Items  []RawItem
}
