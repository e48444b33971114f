package ports

import "context"

// UnderstandRequest is the input of one structured-extraction call.
type UnderstandRequest struct {
	Text       string
	CourseHint string
}

// Understander turns document text into the raw JSON text of candidate
// events. The output is untrusted; callers decode and validate it.
type Understander interface {
	Understand(ctx context.Context, req UnderstandRequest) (string, error)
}
