package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/errs"
	"syllabuscal/internal/infrastructure/persistence/sqlite/model"
	"syllabuscal/internal/ports"
)

// timestampLayout is fixed width so created_at orders lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

type EventRepository struct {
	db *gorm.DB
}

var (
	_ ports.EventRepository  = (*EventRepository)(nil)
	_ ports.UploadRepository = (*EventRepository)(nil)
)

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *EventRepository) InsertEvents(ctx context.Context, owner string, events []syllabus.Event) (int, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return 0, syllabus.ErrOwnerRequired
	}
	for _, event := range events {
		if event.Owner != owner {
			return 0, errs.Wrapf(syllabus.ErrOwnerMismatch, "event %q owner %q", event.Title, event.Owner)
		}
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return inserted, errs.Wrap(err, "check context")
		}
		row := toEventRow(event)
		if err := db.Create(&row).Error; err != nil {
			return inserted, errs.Wrapf(errs.WithStack(err), "insert event %q on %s", event.Title, row.Date)
		}
		inserted++
	}
	return inserted, nil
}

func (r *EventRepository) ListEvents(ctx context.Context, owner string) ([]syllabus.Event, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, syllabus.ErrOwnerRequired
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Event
	if err := db.
		Where("owner = ?", owner).
		Order("date asc").
		Order("created_at asc").
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query events")
	}

	items := make([]syllabus.Event, 0, len(rows))
	for _, row := range rows {
		event, err := fromEventRow(row)
		if err != nil {
			return nil, err
		}
		items = append(items, event)
	}
	return items, nil
}

func (r *EventRepository) DeleteByCourse(ctx context.Context, owner string, course string) (int64, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return 0, syllabus.ErrOwnerRequired
	}
	course = strings.TrimSpace(course)
	if course == "" {
		return 0, syllabus.ErrCourseRequired
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	result := db.Where("owner = ? AND course_name = ?", owner, course).Delete(&model.Event{})
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "delete events by course")
	}
	return result.RowsAffected, nil
}

func (r *EventRepository) RecordUpload(ctx context.Context, upload syllabus.Upload) error {
	if strings.TrimSpace(upload.Owner) == "" {
		return syllabus.ErrOwnerRequired
	}
	if strings.TrimSpace(upload.ID) == "" {
		return errors.New("upload id is required")
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.Upload{
		ID:             upload.ID,
		BatchID:        upload.BatchID,
		Owner:          upload.Owner,
		SourceDocument: upload.SourceDocument,
		SourceURL:      upload.SourceURL,
		CourseName:     upload.CourseName,
		ContentHash:    upload.ContentHash,
		EventCount:     upload.EventCount,
		CreatedAt:      formatTimestamp(upload.CreatedAt),
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert upload")
	}
	return nil
}

func (r *EventRepository) ListUploads(ctx context.Context, owner string) ([]syllabus.Upload, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, syllabus.ErrOwnerRequired
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Upload
	if err := db.
		Where("owner = ?", owner).
		Order("created_at desc").
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query uploads")
	}

	items := make([]syllabus.Upload, 0, len(rows))
	for _, row := range rows {
		createdAt, err := parseTimestamp(row.CreatedAt)
		if err != nil {
			return nil, errs.Wrapf(err, "parse upload %s created_at", row.ID)
		}
		items = append(items, syllabus.Upload{
			ID:             row.ID,
			BatchID:        row.BatchID,
			Owner:          row.Owner,
			SourceDocument: row.SourceDocument,
			SourceURL:      row.SourceURL,
			CourseName:     row.CourseName,
			ContentHash:    row.ContentHash,
			EventCount:     row.EventCount,
			CreatedAt:      createdAt,
		})
	}
	return items, nil
}

func (r *EventRepository) DeleteUploadsByCourse(ctx context.Context, owner string, course string) (int64, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return 0, syllabus.ErrOwnerRequired
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	result := db.Where("owner = ? AND course_name = ?", owner, strings.TrimSpace(course)).Delete(&model.Upload{})
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "delete uploads by course")
	}
	return result.RowsAffected, nil
}

func toEventRow(event syllabus.Event) model.Event {
	return model.Event{
		ID:             event.ID,
		Owner:          event.Owner,
		BatchID:        event.BatchID,
		SourceDocument: event.SourceDocument,
		SourceURL:      event.SourceURL,
		CourseName:     event.CourseName,
		Date:           event.DateKey(),
		Title:          event.Title,
		Description:    event.Description,
		CreatedAt:      formatTimestamp(event.CreatedAt),
	}
}

func fromEventRow(row model.Event) (syllabus.Event, error) {
	date, err := syllabus.ParseDate(row.Date)
	if err != nil {
		return syllabus.Event{}, errs.Wrapf(err, "parse event %s date %q", row.ID, row.Date)
	}
	createdAt, err := parseTimestamp(row.CreatedAt)
	if err != nil {
		return syllabus.Event{}, errs.Wrapf(err, "parse event %s created_at", row.ID)
	}
	return syllabus.Event{
		ID:             row.ID,
		Owner:          row.Owner,
		BatchID:        row.BatchID,
		SourceDocument: row.SourceDocument,
		SourceURL:      row.SourceURL,
		CourseName:     row.CourseName,
		Date:           date,
		Title:          row.Title,
		Description:    row.Description,
		CreatedAt:      createdAt,
	}, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(raw string) (time.Time, error) {
	return time.Parse(timestampLayout, raw)
}
