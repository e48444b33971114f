package syllabus

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"syllabuscal/internal/bootstrap/logging"
	domainsyllabus "syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/errs"
)

type batchMeta struct {
	owner          string
	sourceDocument string
	sourceURL      string
	courseHint     string
	contentHash    string
}

// reconcile removes in-batch duplicates and persists the remaining
// candidates as one new batch. Rows written before a failure stay written.
func (s *Service) reconcile(ctx context.Context, meta batchMeta, found extraction) (ProcessResult, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "usecase.syllabus.reconcile"))

	unique, duplicates := domainsyllabus.DedupCandidates(found.candidates)

	batchID := s.newID()
	createdAt := s.now().UTC()
	events := make([]domainsyllabus.Event, 0, len(unique))
	for _, candidate := range unique {
		events = append(events, domainsyllabus.Event{
			ID:             s.newID(),
			Owner:          meta.owner,
			BatchID:        batchID,
			SourceDocument: meta.sourceDocument,
			SourceURL:      meta.sourceURL,
			CourseName:     candidate.Course,
			Date:           candidate.Date,
			Title:          candidate.Title,
			Description:    candidate.Description,
			CreatedAt:      createdAt,
		})
	}

	saved, err := s.events.InsertEvents(ctx, meta.owner, events)
	if saved < 0 || saved > len(events) {
		saved = 0
	}
	result := ProcessResult{
		BatchID:    batchID,
		Events:     events[:saved],
		Extracted:  found.extracted,
		Dropped:    found.dropped,
		Duplicates: duplicates,
	}
	result.Courses = distinctCourses(result.Events)

	if err != nil {
		if errors.Is(err, domainsyllabus.ErrOwnerMismatch) || errors.Is(err, domainsyllabus.ErrOwnerRequired) {
			return ProcessResult{}, err
		}
		logging.Error(logCtx, "persist events failed",
			slog.String("batch_id", batchID),
			slog.Int("saved", saved),
			slog.Int("total", len(events)),
			slog.Any("err", errs.Loggable(err)),
		)
		s.recordUploads(logCtx, meta, batchID, createdAt, result.Events)
		return result, &domainsyllabus.PartialPersistError{Saved: saved, Total: len(events), Err: err}
	}

	s.recordUploads(logCtx, meta, batchID, createdAt, result.Events)
	logging.Info(logCtx, "batch persisted",
		slog.String("batch_id", batchID),
		slog.Int("saved", saved),
		slog.Int("duplicates", duplicates),
	)
	return result, nil
}

// recordUploads writes one history row per course of the saved events so
// that deleting a class also removes its share of the upload history. A batch
// that saved nothing is filed under the hint, or Other. Best effort: the
// events are already stored.
func (s *Service) recordUploads(ctx context.Context, meta batchMeta, batchID string, createdAt time.Time, saved []domainsyllabus.Event) {
	if s.uploads == nil {
		return
	}

	counts := make(map[string]int, 1)
	for _, event := range saved {
		counts[event.CourseName]++
	}
	if len(counts) == 0 {
		course := meta.courseHint
		if course == "" {
			course = domainsyllabus.UnassignedCourse
		}
		counts[course] = 0
	}

	courses := make([]string, 0, len(counts))
	for course := range counts {
		courses = append(courses, course)
	}
	sort.Strings(courses)

	for _, course := range courses {
		upload := domainsyllabus.Upload{
			ID:             s.newID(),
			BatchID:        batchID,
			Owner:          meta.owner,
			SourceDocument: meta.sourceDocument,
			SourceURL:      meta.sourceURL,
			CourseName:     course,
			ContentHash:    meta.contentHash,
			EventCount:     counts[course],
			CreatedAt:      createdAt,
		}
		if err := s.uploads.RecordUpload(ctx, upload); err != nil {
			logging.Warn(ctx, "record upload failed",
				slog.String("batch_id", batchID),
				slog.String("course", course),
				slog.Any("err", errs.Loggable(err)),
			)
		}
	}
}

func distinctCourses(events []domainsyllabus.Event) []string {
	seen := make(map[string]struct{}, len(events))
	out := make([]string, 0)
	for _, event := range events {
		if _, ok := seen[event.CourseName]; ok {
			continue
		}
		seen[event.CourseName] = struct{}{}
		out = append(out, event.CourseName)
	}
	sort.Strings(out)
	return out
}
