package syllabus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	leadingFence  = regexp.MustCompile("^```(?:json|JSON)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```\\s*$")
)

// DecodeResponse turns the raw text returned by the understanding capability
// into untrusted items. Both {"course": ..., "events": [...]} and a bare array
// of items are accepted; Markdown code fences around the JSON are ignored.
func DecodeResponse(raw string) (RawResponse, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = leadingFence.ReplaceAllString(trimmed, "")
		trimmed = trailingFence.ReplaceAllString(trimmed, "")
	}
	if trimmed == "" {
		return RawResponse{}, fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	decoder.UseNumber()
	var root any
	if err := decoder.Decode(&root); err != nil {
		return RawResponse{}, fmt.Errorf("%w: response is not valid JSON: %v", ErrInvalidResponse, err)
	}

	switch value := root.(type) {
	case []any:
		return RawResponse{Items: decodeItems(value)}, nil
	case map[string]any:
		out := RawResponse{}
		if course, ok := scalarString(value["course"]); ok {
			out.Course = strings.TrimSpace(course)
		}
		switch events := value["events"].(type) {
		case []any:
			out.Items = decodeItems(events)
		case map[string]any:
			out.Items = decodeItems([]any{events})
		}
		return out, nil
	default:
		return RawResponse{}, nil
	}
}

func decodeItems(values []any) []RawItem {
	items := make([]RawItem, 0, len(values))
	for _, value := range values {
		fields, ok := value.(map[string]any)
		if !ok {
			items = append(items, RawItem{})
			continue
		}
		items = append(items, RawItem{
			Date:        fieldString(fields, "date"),
			Title:       fieldString(fields, "title"),
			Description: fieldString(fields, "description"),
			Course:      fieldString(fields, "course"),
			Type:        fieldString(fields, "type"),
		})
	}
	return items
}

// fieldString returns nil when key is absent. JSON null reads as "".
func fieldString(fields map[string]any, key string) *string {
	value, ok := fields[key]
	if !ok {
		return nil
	}
	s, ok := scalarString(value)
	if !ok {
		return nil
	}
	return &s
}

func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		if v {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}
