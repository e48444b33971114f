package understanding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/ports"
)

// FixtureUnderstander replays a saved model response from disk. It lets the
// pipeline run offline against a known payload.
type FixtureUnderstander struct {
	path string
}

var _ ports.Understander = (*FixtureUnderstander)(nil)

func NewFixtureUnderstander(path string) (*FixtureUnderstander, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("extraction.fixture_file is required for the fixture provider")
	}
	return &FixtureUnderstander{path: trimmed}, nil
}

func (u *FixtureUnderstander) Understand(ctx context.Context, _ ports.UnderstandRequest) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", syllabus.ErrExtractionFailed, err)
	}

	raw, err := os.ReadFile(u.path)
	if err != nil {
		return "", fmt.Errorf("%w: read fixture: %v", syllabus.ErrExtractionFailed, err)
	}
	return string(raw), nil
}
