package understanding

import (
	"context"
	"fmt"
	"strings"

	"syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/ports"
)

const (
	ProviderOpenAI  = "openai"
	ProviderFixture = "fixture"
)

type Options struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	PromptFile  string
	FixtureFile string
}

// New builds the understander selected by opts.Provider.
func New(opts Options) (ports.Understander, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", ProviderOpenAI:
		profile, err := LoadPromptProfile(opts.PromptFile)
		if err != nil {
			return nil, err
		}
		return NewOpenAIUnderstander(OpenAIOptions{
			APIKey:  opts.APIKey,
			BaseURL: opts.BaseURL,
			Model:   opts.Model,
			Profile: profile,
		})
	case ProviderFixture:
		return NewFixtureUnderstander(opts.FixtureFile)
	default:
		return nil, fmt.Errorf("unsupported extraction provider %q", opts.Provider)
	}
}

type unavailableUnderstander struct {
	err error
}

// Unavailable returns an understander that fails every call with cause.
func Unavailable(cause error) ports.Understander {
	return unavailableUnderstander{err: cause}
}

func (u unavailableUnderstander) Understand(context.Context, ports.UnderstandRequest) (string, error) {
	return "", fmt.Errorf("%w: %v", syllabus.ErrExtractionFailed, u.err)
}
