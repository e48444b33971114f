package ports

import (
	"context"

	"syllabuscal/internal/domain/syllabus"
)

// EventRepository is the per-owner event store. Every operation is scoped by
// owner; rows of other owners are never read or touched.
type EventRepository interface {
	// InsertEvents persists events one row at a time and returns how many
	// were written before the first failure. Written rows are not rolled back.
	InsertEvents(ctx context.Context, owner string, events []syllabus.Event) (int, error)
	// ListEvents returns the owner's events ordered by date, creation time and id.
	ListEvents(ctx context.Context, owner string) ([]syllabus.Event, error)
	// DeleteByCourse removes the owner's events of one course. Zero matches is not an error.
	DeleteByCourse(ctx context.Context, owner string, course string) (int64, error)
}

// UploadRepository keeps the history of processed documents.
type UploadRepository interface {
	RecordUpload(ctx context.Context, upload syllabus.Upload) error
	ListUploads(ctx context.Context, owner string) ([]syllabus.Upload, error)
	DeleteUploadsByCourse(ctx context.Context, owner string, course string) (int64, error)
}
