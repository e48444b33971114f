package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/errs"
	"syllabuscal/internal/infrastructure/persistence/sqlite/model"
	"syllabuscal/internal/infrastructure/persistence/sqlite/uow"
)

func setupEventRepository(t *testing.T) (*EventRepository, *gorm.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "events.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewEventRepository(db), db
}

var baseTime = time.Date(2024, 8, 20, 9, 30, 0, 0, time.UTC)

func newEvent(id string, owner string, date string, title string, course string, created time.Time) syllabus.Event {
	parsed, err := syllabus.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return syllabus.Event{
		ID:             id,
		Owner:          owner,
		BatchID:        "batch-1",
		SourceDocument: "syllabus.pdf",
		SourceURL:      "https://example.test/syllabus.pdf",
		CourseName:     course,
		Date:           parsed,
		Title:          title,
		Description:    "Type: exam",
		CreatedAt:      created,
	}
}

func TestInsertAndListEventsOrderedAndScoped(t *testing.T) {
	repo, _ := setupEventRepository(t)
	ctx := context.Background()

	events := []syllabus.Event{
		newEvent("e3", "u1", "2024-10-01", "Final", "CPE 380", baseTime),
		newEvent("e2", "u1", "2024-09-01", "Quiz B", "CPE 380", baseTime.Add(time.Second)),
		newEvent("e1", "u1", "2024-09-01", "Quiz A", "CPE 380", baseTime),
	}
	inserted, err := repo.InsertEvents(ctx, "u1", events)
	if err != nil {
		t.Fatalf("InsertEvents() error = %v", err)
	}
	if inserted != 3 {
		t.Fatalf("InsertEvents() inserted = %d, want 3", inserted)
	}
	if _, err := repo.InsertEvents(ctx, "u2", []syllabus.Event{
		newEvent("other", "u2", "2024-09-01", "Quiz A", "CPE 380", baseTime),
	}); err != nil {
		t.Fatalf("InsertEvents(u2) error = %v", err)
	}

	got, err := repo.ListEvents(ctx, "u1")
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	wantIDs := []string{"e1", "e2", "e3"}
	if len(got) != len(wantIDs) {
		t.Fatalf("ListEvents() len = %d, want %d", len(got), len(wantIDs))
	}
	for i, want := range wantIDs {
		if got[i].ID != want {
			t.Fatalf("ListEvents()[%d].ID = %q, want %q", i, got[i].ID, want)
		}
	}
	if !got[0].CreatedAt.Equal(baseTime) {
		t.Fatalf("CreatedAt round trip = %v", got[0].CreatedAt)
	}
	if got[0].DateKey() != "2024-09-01" || got[0].SourceURL == "" {
		t.Fatalf("event round trip = %+v", got[0])
	}
}

func TestInsertEventsRejectsForeignOwner(t *testing.T) {
	repo, _ := setupEventRepository(t)
	ctx := context.Background()

	_, err := repo.InsertEvents(ctx, "u1", []syllabus.Event{
		newEvent("e1", "u2", "2024-09-01", "Quiz", "CPE 380", baseTime),
	})
	if !errors.Is(err, syllabus.ErrOwnerMismatch) {
		t.Fatalf("InsertEvents() error = %v, want ErrOwnerMismatch", err)
	}
	if _, err := repo.InsertEvents(ctx, " ", nil); !errors.Is(err, syllabus.ErrOwnerRequired) {
		t.Fatalf("InsertEvents(blank owner) error = %v", err)
	}
}

func TestInsertEventsStopsAtFirstFailureWithoutRollback(t *testing.T) {
	repo, _ := setupEventRepository(t)
	ctx := context.Background()

	events := []syllabus.Event{
		newEvent("e1", "u1", "2024-09-01", "Quiz 1", "CPE 380", baseTime),
		newEvent("e2", "u1", "2024-09-02", "Quiz 2", "CPE 380", baseTime),
		newEvent("e1", "u1", "2024-09-03", "Quiz 3", "CPE 380", baseTime),
		newEvent("e4", "u1", "2024-09-04", "Quiz 4", "CPE 380", baseTime),
	}
	inserted, err := repo.InsertEvents(ctx, "u1", events)
	if err == nil {
		t.Fatalf("InsertEvents() expected duplicate id error")
	}
	if inserted != 2 {
		t.Fatalf("InsertEvents() inserted = %d, want 2", inserted)
	}
	var stackErr *errs.StackError
	if !errors.As(err, &stackErr) {
		t.Fatalf("InsertEvents() error = %v, want a stack", err)
	}

	got, err := repo.ListEvents(ctx, "u1")
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListEvents() len = %d, want 2 kept rows", len(got))
	}
}

func TestDeleteByCourse(t *testing.T) {
	repo, _ := setupEventRepository(t)
	ctx := context.Background()

	if _, err := repo.InsertEvents(ctx, "u1", []syllabus.Event{
		newEvent("e1", "u1", "2024-09-01", "Quiz 1", "CPE 380", baseTime),
		newEvent("e2", "u1", "2024-09-02", "Quiz 2", "CPE 380", baseTime),
		newEvent("e3", "u1", "2024-09-03", "Essay", "ENG 101", baseTime),
	}); err != nil {
		t.Fatalf("InsertEvents() error = %v", err)
	}
	if _, err := repo.InsertEvents(ctx, "u2", []syllabus.Event{
		newEvent("e4", "u2", "2024-09-01", "Quiz 1", "CPE 380", baseTime),
	}); err != nil {
		t.Fatalf("InsertEvents(u2) error = %v", err)
	}

	deleted, err := repo.DeleteByCourse(ctx, "u1", "CPE 380")
	if err != nil {
		t.Fatalf("DeleteByCourse() error = %v", err)
	}
	if deleted != 2 {
		t.Fatalf("DeleteByCourse() deleted = %d, want 2", deleted)
	}

	deleted, err = repo.DeleteByCourse(ctx, "u1", "CPE 380")
	if err != nil {
		t.Fatalf("DeleteByCourse(again) error = %v", err)
	}
	if deleted != 0 {
		t.Fatalf("DeleteByCourse(again) deleted = %d, want 0", deleted)
	}

	other, err := repo.ListEvents(ctx, "u2")
	if err != nil {
		t.Fatalf("ListEvents(u2) error = %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("other owner lost events: %d", len(other))
	}

	if _, err := repo.DeleteByCourse(ctx, "u1", ""); !errors.Is(err, syllabus.ErrCourseRequired) {
		t.Fatalf("DeleteByCourse(blank course) error = %v", err)
	}
}

func TestDeleteInsideUnitOfWorkRollsBack(t *testing.T) {
	repo, db := setupEventRepository(t)
	ctx := context.Background()

	if _, err := repo.InsertEvents(ctx, "u1", []syllabus.Event{
		newEvent("e1", "u1", "2024-09-01", "Quiz 1", "CPE 380", baseTime),
	}); err != nil {
		t.Fatalf("InsertEvents() error = %v", err)
	}

	boom := errors.New("boom")
	err := uow.NewUnitOfWork(db).WithTx(ctx, func(txCtx context.Context) error {
		if _, err := repo.DeleteByCourse(txCtx, "u1", "CPE 380"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v", err)
	}

	got, err := repo.ListEvents(ctx, "u1")
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("rollback lost events: %d", len(got))
	}
}

func TestUploads(t *testing.T) {
	repo, _ := setupEventRepository(t)
	ctx := context.Background()

	for i, course := range []string{"CPE 380", "ENG 101"} {
		if err := repo.RecordUpload(ctx, syllabus.Upload{
			ID:             course,
			BatchID:        "batch-1",
			Owner:          "u1",
			SourceDocument: "syllabus.pdf",
			CourseName:     course,
			ContentHash:    "hash",
			EventCount:     i + 1,
			CreatedAt:      baseTime.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("RecordUpload() error = %v", err)
		}
	}

	uploads, err := repo.ListUploads(ctx, "u1")
	if err != nil {
		t.Fatalf("ListUploads() error = %v", err)
	}
	if len(uploads) != 2 || uploads[0].CourseName != "ENG 101" || uploads[0].BatchID != "batch-1" {
		t.Fatalf("ListUploads() = %+v", uploads)
	}

	deleted, err := repo.DeleteUploadsByCourse(ctx, "u1", "CPE 380")
	if err != nil {
		t.Fatalf("DeleteUploadsByCourse() error = %v", err)
	}
	if deleted != 1 {
		t.Fatalf("DeleteUploadsByCourse() deleted = %d", deleted)
	}
}
