package syllabus

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"syllabuscal/internal/bootstrap/logging"
	domainsyllabus "syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/errs"
)

// DeleteClass removes every event of one course for owner, together with the
// upload history of that course. Deleting a course with no events succeeds
// with a zero count.
func (s *Service) DeleteClass(ctx context.Context, owner string, course string) (int64, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return 0, errs.Wrap(err, "check context")
	}
	if s.events == nil {
		return 0, errRepositoryRequired
	}

	owner = strings.TrimSpace(owner)
	if owner == "" {
		return 0, domainsyllabus.ErrOwnerRequired
	}
	course = strings.Join(strings.Fields(course), " ")
	if course == "" {
		return 0, domainsyllabus.ErrCourseRequired
	}

	var deleted int64
	run := func(txCtx context.Context) error {
		count, err := s.events.DeleteByCourse(txCtx, owner, course)
		if err != nil {
			return errs.Wrap(err, "delete events")
		}
		deleted = count
		if s.uploads != nil {
			if _, err := s.uploads.DeleteUploadsByCourse(txCtx, owner, course); err != nil {
				return errs.Wrap(err, "delete uploads")
			}
		}
		return nil
	}

	var err error
	if s.uow != nil {
		err = s.uow.WithTx(ctx, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return 0, err
	}

	logging.Info(logging.WithAttrs(ctx, slog.String("component", "usecase.syllabus")), "class deleted",
		slog.String("owner", owner),
		slog.String("course", course),
		slog.Int64("deleted", deleted),
	)
	return deleted, nil
}
