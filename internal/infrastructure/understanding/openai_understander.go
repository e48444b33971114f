package understanding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"syllabuscal/internal/bootstrap/logging"
	"syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/errs"
	"syllabuscal/internal/ports"
)

const DefaultModel = "gpt-4o-mini"

type OpenAIOptions struct {
	APIKey  string
	BaseURL string
	Model   string
	Profile PromptProfile
}

// OpenAIUnderstander asks a chat completion model for a JSON document that
// follows the events schema. It never retries; the caller owns the deadline.
type OpenAIUnderstander struct {
	client      openai.Client
	model       string
	profile     PromptProfile
	schemaParam openai.ResponseFormatJSONSchemaJSONSchemaParam
}

var _ ports.Understander = (*OpenAIUnderstander)(nil)

func NewOpenAIUnderstander(opts OpenAIOptions) (*OpenAIUnderstander, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("extraction.api_key is required for the openai provider")
	}

	requestOptions := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		requestOptions = append(requestOptions, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = strings.TrimSpace(opts.Profile.Model)
	}
	if model == "" {
		model = DefaultModel
	}

	return &OpenAIUnderstander{
		client:  openai.NewClient(requestOptions...),
		model:   model,
		profile: opts.Profile,
		schemaParam: openai.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:        "syllabus_events",
			Description: openai.String("Course and dated events found in a syllabus"),
			Schema:      responseSchema(),
			Strict:      openai.Bool(true),
		},
	}, nil
}

func (u *OpenAIUnderstander) Understand(ctx context.Context, req ports.UnderstandRequest) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "infrastructure.understanding"),
		slog.String("provider", "openai"),
		slog.String("model", u.model),
	)
	started := time.Now()

	completion, err := u.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(u.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(u.profile.System),
			openai.UserMessage(u.profile.RenderUser(req.Text, req.CourseHint)),
		},
		Temperature: openai.Float(u.profile.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: u.schemaParam},
		},
	})
	if err != nil {
		logging.Warn(logCtx, "chat completion failed", slog.Any("err", errs.Loggable(err)))
		return "", fmt.Errorf("%w: %v", syllabus.ErrExtractionFailed, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: completion has no choices", syllabus.ErrExtractionFailed)
	}

	message := completion.Choices[0].Message
	if refusal := strings.TrimSpace(message.Refusal); refusal != "" {
		return "", fmt.Errorf("%w: model refused: %s", syllabus.ErrExtractionFailed, refusal)
	}

	logging.Info(logCtx, "chat completion finished",
		slog.Duration("elapsed", time.Since(started)),
		slog.String("finish_reason", completion.Choices[0].FinishReason),
		slog.Int64("total_tokens", completion.Usage.TotalTokens),
	)
	return message.Content, nil
}
