package syllabus

import (
	"context"
	"errors"

	"syllabuscal/internal/domain/calendar"
	domainsyllabus "syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/errs"
)

// ListEvents returns all of owner's events in date order.
func (s *Service) ListEvents(ctx context.Context, owner string) ([]domainsyllabus.Event, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.events == nil {
		return nil, errRepositoryRequired
	}

	events, err := s.events.ListEvents(ctx, owner)
	if err != nil {
		return nil, errs.Wrap(err, "list events")
	}
	return events, nil
}

// Project loads owner's events and projects them through state.
func (s *Service) Project(ctx context.Context, owner string, state calendar.ViewState) (calendar.Projection, error) {
	events, err := s.ListEvents(ctx, owner)
	if err != nil {
		return calendar.Projection{}, err
	}
	return calendar.Project(events, state, s.opts.MaxMarks), nil
}

// Export renders owner's events matching kind as an iCalendar document.
func (s *Service) Export(ctx context.Context, owner string, kind calendar.Kind) ([]byte, error) {
	events, err := s.ListEvents(ctx, owner)
	if err != nil {
		return nil, err
	}
	return calendar.ExportICS(calendar.Filter(events, kind)), nil
}

// ListUploads returns owner's processed documents, newest first.
func (s *Service) ListUploads(ctx context.Context, owner string) ([]domainsyllabus.Upload, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if s.uploads == nil {
		return nil, errors.New("upload repository is required")
	}

	uploads, err := s.uploads.ListUploads(ctx, owner)
	if err != nil {
		return nil, errs.Wrap(err, "list uploads")
	}
	return uploads, nil
}
