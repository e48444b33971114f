package syllabus

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"syllabuscal/internal/bootstrap/logging"
	domainsyllabus "syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/errs"
	"syllabuscal/internal/ports"
)

const understandCachePrefix = "understand:"

type extraction struct {
	candidates []domainsyllabus.Candidate
	extracted  int
	dropped    int
	fromCache  bool
}

// extractCandidates asks the understander for items in text and keeps the
// valid ones. Zero valid items is ErrInvalidResponse.
func (s *Service) extractCandidates(ctx context.Context, text string, courseHint string) (extraction, error) {
	if s.understander == nil {
		return extraction{}, errors.New("understander is required")
	}
	if err := domainsyllabus.CheckText(text, s.opts.MinTextRunes); err != nil {
		return extraction{}, err
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "usecase.syllabus.extract"))
	key := understandCacheKey(text, courseHint)

	raw, fromCache := s.cachedResponse(logCtx, key)
	if !fromCache {
		var err error
		raw, err = s.understand(ctx, ports.UnderstandRequest{Text: text, CourseHint: courseHint})
		if err != nil {
			return extraction{}, err
		}
	}

	response, err := domainsyllabus.DecodeResponse(raw)
	if err != nil {
		logging.Warn(logCtx, "understanding response rejected",
			slog.Int("raw_bytes", len(raw)),
			slog.Any("err", errs.Loggable(err)),
		)
		return extraction{}, err
	}

	candidates, dropped := domainsyllabus.ValidateItems(response, courseHint)
	logging.Info(logCtx, "understanding response validated",
		slog.Int("items", len(response.Items)),
		slog.Int("valid", len(candidates)),
		slog.Int("dropped", dropped),
		slog.Bool("from_cache", fromCache),
	)
	if len(candidates) == 0 {
		return extraction{}, fmt.Errorf("%w: no valid events among %d items", domainsyllabus.ErrInvalidResponse, len(response.Items))
	}

	if !fromCache && s.cache != nil {
		if err := s.cache.Set(ctx, key, raw, s.opts.CacheTTL); err != nil {
			logging.Warn(logCtx, "cache understanding response failed", slog.Any("err", errs.Loggable(err)))
		}
	}

	return extraction{
		candidates: candidates,
		extracted:  len(response.Items),
		dropped:    dropped,
		fromCache:  fromCache,
	}, nil
}

type understandOutcome struct {
	raw string
	err error
}

// understand runs one call under the extraction timeout. A response arriving
// after the deadline is discarded.
func (s *Service) understand(ctx context.Context, req ports.UnderstandRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.ExtractionTimeout)
	defer cancel()

	done := make(chan understandOutcome, 1)
	go func() {
		raw, err := s.understander.Understand(callCtx, req)
		done <- understandOutcome{raw: raw, err: err}
	}()

	select {
	case <-callCtx.Done():
		return "", fmt.Errorf("%w: %v", domainsyllabus.ErrExtractionFailed, callCtx.Err())
	case outcome := <-done:
		if outcome.err != nil {
			if errors.Is(outcome.err, domainsyllabus.ErrExtractionFailed) {
				return "", outcome.err
			}
			return "", fmt.Errorf("%w: %v", domainsyllabus.ErrExtractionFailed, outcome.err)
		}
		return outcome.raw, nil
	}
}

func (s *Service) cachedResponse(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		logging.Warn(ctx, "read understanding cache failed", slog.Any("err", errs.Loggable(err)))
		return "", false
	}
	if !found || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return raw, true
}

func understandCacheKey(text string, courseHint string) string {
	sum := sha256.Sum256([]byte(text + "\x00" + strings.TrimSpace(courseHint)))
	return understandCachePrefix + hex.EncodeToString(sum[:])
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
