package syllabus

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentUnavailable = errors.New("document could not be downloaded")
	ErrNoTextFound         = errors.New("no extractable text found in document")
	ErrExtractionFailed    = errors.New("event extraction failed")
	ErrInvalidResponse     = errors.New("extraction returned no usable events")
	ErrPartialPersist      = errors.New("some events could not be saved")

	ErrOwnerRequired  = errors.New("owner is required")
	ErrCourseRequired = errors.New("course name is required")
	ErrOwnerMismatch  = errors.New("event owner does not match request owner")
)

// PartialPersistError reports how many rows of a batch were written before
// the store failed. Rows already written are kept.
type PartialPersistError struct {
	Saved int
	Total int
	Err   error
}

func (e *PartialPersistError) Error() string {
	return fmt.Sprintf("saved %d of %d events: %v", e.Saved, e.Total, e.Err)
}

func (e *PartialPersistError) Unwrap() error { return e.Err }

func (e *PartialPersistError) Is(target error) bool {
	return target == ErrPartialPersist
}
