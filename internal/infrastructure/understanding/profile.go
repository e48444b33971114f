package understanding

import (
	_ "embed"
	"errors"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"syllabuscal/internal/errs"
)

//go:embed default_profile.toml
var defaultProfileTOML []byte

// PromptProfile holds the instructions sent with every document.
type PromptProfile struct {
	Version     int     `toml:"version"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	System      string  `toml:"system"`
	User        string  `toml:"user"`
}

// LoadPromptProfile reads a TOML profile from path, or the built-in profile
// when path is empty.
func LoadPromptProfile(path string) (PromptProfile, error) {
	raw := defaultProfileTOML
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		content, err := os.ReadFile(trimmed)
		if err != nil {
			return PromptProfile{}, errs.Wrapf(err, "read prompt profile %q", trimmed)
		}
		raw = content
	}

	var profile PromptProfile
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return PromptProfile{}, errs.Wrap(err, "decode prompt profile")
	}
	if err := validatePromptProfile(profile); err != nil {
		return PromptProfile{}, err
	}
	return profile, nil
}

func validatePromptProfile(profile PromptProfile) error {
	if profile.Version != 1 {
		return errors.New("unsupported prompt profile version: expected version = 1")
	}
	if strings.TrimSpace(profile.System) == "" {
		return errors.New("prompt profile system is required")
	}
	if !strings.Contains(profile.User, "{{text}}") {
		return errors.New("prompt profile user must contain {{text}}")
	}
	if profile.Temperature < 0 || profile.Temperature > 2 {
		return errors.New("prompt profile temperature must be between 0 and 2")
	}
	return nil
}

// RenderUser fills the user template with the document text and course hint.
func (p PromptProfile) RenderUser(text string, courseHint string) string {
	return strings.NewReplacer(
		"{{text}}", text,
		"{{course_hint}}", strings.TrimSpace(courseHint),
	).Replace(p.User)
}
