package syllabus

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"syllabuscal/internal/bootstrap/logging"
	domainsyllabus "syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/errs"
)

// ProcessSyllabus downloads a document, extracts its dated events and stores
// them as a new batch owned by input.Owner.
func (s *Service) ProcessSyllabus(ctx context.Context, input ProcessInput) (ProcessResult, error) {
	if ctx == nil {
		return ProcessResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ProcessResult{}, errs.Wrap(err, "check context")
	}
	if s.events == nil {
		return ProcessResult{}, errRepositoryRequired
	}
	if s.fetcher == nil || s.text == nil {
		return ProcessResult{}, errors.New("document fetcher and text extractor are required")
	}

	owner := strings.TrimSpace(input.Owner)
	if owner == "" {
		return ProcessResult{}, domainsyllabus.ErrOwnerRequired
	}
	fileURL := strings.TrimSpace(input.FileURL)
	if fileURL == "" {
		return ProcessResult{}, errs.Wrap(domainsyllabus.ErrDocumentUnavailable, "file url is required")
	}
	sourceDocument := strings.TrimSpace(input.SourceDocument)
	if sourceDocument == "" {
		sourceDocument = domainsyllabus.DefaultSourceDocument
	}
	courseHint := strings.Join(strings.Fields(input.CourseName), " ")

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.syllabus"),
		slog.String("owner", owner),
		slog.String("source_document", sourceDocument),
	)
	started := time.Now()

	data, err := s.fetcher.Fetch(logCtx, fileURL)
	if err != nil {
		return ProcessResult{}, errs.Wrap(err, "fetch document")
	}

	text, err := s.text.ExtractText(logCtx, data)
	if err != nil {
		return ProcessResult{}, errs.Wrap(err, "extract document text")
	}

	found, err := s.extractCandidates(logCtx, text, courseHint)
	if err != nil {
		return ProcessResult{}, errs.Wrap(err, "extract events")
	}

	result, err := s.reconcile(logCtx, batchMeta{
		owner:          owner,
		sourceDocument: sourceDocument,
		sourceURL:      fileURL,
		courseHint:     courseHint,
		contentHash:    contentHash(text),
	}, found)
	if err != nil {
		return result, errs.Wrap(err, "store events")
	}

	logging.Info(logCtx, "syllabus processed",
		slog.String("batch_id", result.BatchID),
		slog.Int("events", result.Saved()),
		slog.Any("courses", result.Courses),
		slog.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}
