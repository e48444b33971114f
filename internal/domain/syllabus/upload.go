package syllabus

import "time"

// Upload records how many events one processed document produced for one
// course. A document spanning several courses yields one Upload per course,
// all sharing the BatchID of the events they describe.
type Upload struct {
	ID             string
	BatchID        string
	Owner          string
	SourceDocument string
	SourceURL      string
	CourseName     string
	ContentHash    string
	EventCount     int
	CreatedAt      time.Time
}
