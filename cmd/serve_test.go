package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"syllabuscal/internal/domain/calendar"
	domainsyllabus "syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/infrastructure/doctext"
	"syllabuscal/internal/infrastructure/fetch"
	"syllabuscal/internal/infrastructure/persistence/sqlite/model"
	"syllabuscal/internal/infrastructure/persistence/sqlite/repository"
	"syllabuscal/internal/infrastructure/persistence/sqlite/uow"
	"syllabuscal/internal/ports"
	"syllabuscal/internal/usecase/syllabus"
)

type stubCalendarService struct {
	processInput syllabus.ProcessInput
	processErr   error
	deleteOwner  string
	deleteCourse string
	deleted      int64
	deleteErr    error
	events       []domainsyllabus.Event
	projectState calendar.ViewState
	exportKind   calendar.Kind
}

func (s *stubCalendarService) ProcessSyllabus(_ context.Context, input syllabus.ProcessInput) (syllabus.ProcessResult, error) {
	s.processInput = input
	if s.processErr != nil {
		return syllabus.ProcessResult{}, s.processErr
	}
	return syllabus.ProcessResult{
		BatchID:   "batch-1",
		Courses:   []string{"CPE 380"},
		Events:    s.events,
		Extracted: len(s.events) + 1,
		Dropped:   1,
	}, nil
}

func (s *stubCalendarService) DeleteClass(_ context.Context, owner string, course string) (int64, error) {
	s.deleteOwner = owner
	s.deleteCourse = course
	return s.deleted, s.deleteErr
}

func (s *stubCalendarService) ListEvents(_ context.Context, _ string) ([]domainsyllabus.Event, error) {
	return s.events, nil
}

func (s *stubCalendarService) Project(_ context.Context, _ string, state calendar.ViewState) (calendar.Projection, error) {
	s.projectState = state
	return calendar.Project(s.events, state, 3), nil
}

func (s *stubCalendarService) Export(_ context.Context, _ string, kind calendar.Kind) ([]byte, error) {
	s.exportKind = kind
	return calendar.ExportICS(calendar.Filter(s.events, kind)), nil
}

func (s *stubCalendarService) ListUploads(_ context.Context, _ string) ([]domainsyllabus.Upload, error) {
	return []domainsyllabus.Upload{{ID: "u1", CourseName: "CPE 380", EventCount: 2, CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}}, nil
}

func testEvents() []domainsyllabus.Event {
	created := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	return []domainsyllabus.Event{
		{ID: "e1", Owner: "u1", CourseName: "CPE 380", Date: domainsyllabus.CivilDate(2024, time.May, 1), Title: "Midterm Exam", CreatedAt: created},
		{ID: "e2", Owner: "u1", CourseName: "CPE 380", Date: domainsyllabus.CivilDate(2024, time.May, 3), Title: "Homework 2", CreatedAt: created},
	}
}

func serveRequest(t *testing.T, svc calendarService, method string, target string, body string) *httptest.ResponseRecorder {
	t.Helper()

	handler := newCalendarHTTPHandler(context.Background(), svc)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestServeHealth(t *testing.T) {
	t.Parallel()

	resp := serveRequest(t, &stubCalendarService{}, http.MethodGet, "/health", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusOK)
	}
	if !strings.Contains(resp.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %s", resp.Body.String())
	}
}

func TestServeProcessSyllabus(t *testing.T) {
	t.Parallel()

	svc := &stubCalendarService{events: testEvents()}
	body := `{"file_url":"https://files.example/s.pdf","user_id":"u1","source_filename":"s.pdf","course_name":"CPE 380"}`
	resp := serveRequest(t, svc, http.MethodPost, "/process-syllabus", body)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body=%s", resp.Code, http.StatusOK, resp.Body.String())
	}
	want := syllabus.ProcessInput{FileURL: "https://files.example/s.pdf", Owner: "u1", SourceDocument: "s.pdf", CourseName: "CPE 380"}
	if svc.processInput != want {
		t.Fatalf("input = %+v, want %+v", svc.processInput, want)
	}

	var out processSyllabusResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Count != 2 || out.CourseName != "CPE 380" || out.Dropped != 1 {
		t.Fatalf("response = %+v", out)
	}
	if out.Events[0].Kind != "exam" || out.Events[1].Kind != "assignment" {
		t.Fatalf("kinds = %q, %q", out.Events[0].Kind, out.Events[1].Kind)
	}
}

func TestServeProcessSyllabusRequiresURL(t *testing.T) {
	t.Parallel()

	resp := serveRequest(t, &stubCalendarService{}, http.MethodPost, "/process-syllabus", `{"user_id":"u1"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusBadRequest)
	}

	resp = serveRequest(t, &stubCalendarService{}, http.MethodPost, "/process-syllabus", `not json`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusBadRequest)
	}
}

func TestServeProcessSyllabusRejectsNonHTTPDocuments(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		url  string
	}{
		{name: "file scheme", url: "file:///etc/passwd"},
		{name: "upper case file scheme", url: "FILE:///etc/passwd"},
		{name: "bare path", url: "/etc/passwd"},
		{name: "ftp", url: "ftp://example.test/syllabus.pdf"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubCalendarService{}
			body := fmt.Sprintf(`{"file_url":%q,"user_id":"u1"}`, tc.url)
			resp := serveRequest(t, svc, http.MethodPost, "/process-syllabus", body)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d; body=%s", resp.Code, http.StatusBadRequest, resp.Body.String())
			}
			if svc.processInput != (syllabus.ProcessInput{}) {
				t.Fatalf("service called with %+v", svc.processInput)
			}
		})
	}
}

type recordingUnderstander struct {
	calls []ports.UnderstandRequest
}

func (u *recordingUnderstander) Understand(_ context.Context, req ports.UnderstandRequest) (string, error) {
	u.calls = append(u.calls, req)
	return `{"events":[]}`, nil
}

func TestServeProcessSyllabusNeverReadsServerFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	secret := filepath.Join(dir, "secret.txt")
	if err := os.WriteFile(secret, []byte("database password is hunter2, keep it private"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(dir, "events.sqlite")), &gorm.Config{})
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

	understander := &recordingUnderstander{}
	svc := syllabus.NewService(syllabus.Dependencies{
		Events:       repository.NewEventRepository(db),
		UnitOfWork:   uow.NewUnitOfWork(db),
		Fetcher:      fetch.NewHTTPFetcher(time.Second, 0),
		Text:         doctext.NewExtractor(0),
		Understander: understander,
	}, syllabus.Options{})

	target := (&url.URL{Scheme: "file", Path: filepath.ToSlash(secret)}).String()
	body := fmt.Sprintf(`{"file_url":%q,"user_id":"u1"}`, target)
	resp := serveRequest(t, svc, http.MethodPost, "/process-syllabus", body)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d; body=%s", resp.Code, http.StatusBadRequest, resp.Body.String())
	}
	if strings.Contains(resp.Body.String(), "hunter2") {
		t.Fatalf("response leaked file contents: %s", resp.Body.String())
	}
	if len(understander.calls) != 0 {
		t.Fatalf("understander called %d times", len(understander.calls))
	}
}

func TestServeProcessSyllabusErrorStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "unavailable", err: fmt.Errorf("fetch: %w", domainsyllabus.ErrDocumentUnavailable), want: http.StatusBadRequest},
		{name: "no text", err: domainsyllabus.ErrNoTextFound, want: http.StatusBadRequest},
		{name: "owner", err: domainsyllabus.ErrOwnerRequired, want: http.StatusBadRequest},
		{name: "invalid response", err: domainsyllabus.ErrInvalidResponse, want: http.StatusUnprocessableEntity},
		{name: "extraction failed", err: domainsyllabus.ErrExtractionFailed, want: http.StatusBadGateway},
		{name: "other", err: fmt.Errorf("disk full"), want: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &stubCalendarService{processErr: tc.err}
			resp := serveRequest(t, svc, http.MethodPost, "/process-syllabus", `{"file_url":"https://x/y.pdf","user_id":"u1"}`)
			if resp.Code != tc.want {
				t.Fatalf("status = %d, want %d; body=%s", resp.Code, tc.want, resp.Body.String())
			}
		})
	}
}

func TestServeProcessSyllabusPartialPersist(t *testing.T) {
	t.Parallel()

	svc := &stubCalendarService{processErr: &domainsyllabus.PartialPersistError{Saved: 2, Total: 5, Err: fmt.Errorf("locked")}}
	resp := serveRequest(t, svc, http.MethodPost, "/process-syllabus", `{"file_url":"https://x/y.pdf","user_id":"u1"}`)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusInternalServerError)
	}
	var out apiErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Saved == nil || *out.Saved != 2 || out.Total == nil || *out.Total != 5 {
		t.Fatalf("response = %+v, want saved=2 total=5", out)
	}
}

func TestServeDeleteClass(t *testing.T) {
	t.Parallel()

	svc := &stubCalendarService{}
	resp := serveRequest(t, svc, http.MethodPost, "/delete-class", `{"user_id":"u1","course_name":"Nope"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body=%s", resp.Code, http.StatusOK, resp.Body.String())
	}
	if svc.deleteOwner != "u1" || svc.deleteCourse != "Nope" {
		t.Fatalf("delete args = %q/%q", svc.deleteOwner, svc.deleteCourse)
	}
	if !strings.Contains(resp.Body.String(), `"deleted":0`) {
		t.Fatalf("body = %s, want deleted 0", resp.Body.String())
	}

	svc = &stubCalendarService{deleteErr: domainsyllabus.ErrCourseRequired}
	resp = serveRequest(t, svc, http.MethodPost, "/delete-class", `{"user_id":"u1"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusBadRequest)
	}
}

func TestServeEventsFilter(t *testing.T) {
	t.Parallel()

	svc := &stubCalendarService{events: testEvents()}
	resp := serveRequest(t, svc, http.MethodGet, "/events?user_id=u1&kind=exam", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusOK)
	}
	if !strings.Contains(resp.Body.String(), `"count":1`) || !strings.Contains(resp.Body.String(), "Midterm Exam") {
		t.Fatalf("body = %s", resp.Body.String())
	}

	resp = serveRequest(t, svc, http.MethodGet, "/events?kind=quiz", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusBadRequest)
	}
}

func TestServeCalendarMonth(t *testing.T) {
	t.Parallel()

	svc := &stubCalendarService{events: testEvents()}
	resp := serveRequest(t, svc, http.MethodGet, "/calendar?user_id=u1&view=month&month=2024-05&date=2024-05-01", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body=%s", resp.Code, http.StatusOK, resp.Body.String())
	}

	var out calendarResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Month != "2024-05" || out.View != "month" || out.Selected != "2024-05-01" {
		t.Fatalf("response header = %+v", out)
	}
	// May 2024 starts on a Wednesday: 3 leading blanks, 31 days, padded to 35.
	if len(out.Cells) != 35 || out.Leading != 3 {
		t.Fatalf("cells = %d leading = %d, want 35 and 3", len(out.Cells), out.Leading)
	}
	if out.Cells[0].Day != 0 || out.Cells[3].Day != 1 || len(out.Cells[3].EventIDs) != 1 {
		t.Fatalf("first cells = %+v", out.Cells[:4])
	}
	if len(out.Day) != 1 || out.Day[0].ID != "e1" {
		t.Fatalf("day = %+v, want e1", out.Day)
	}

	resp = serveRequest(t, svc, http.MethodGet, "/calendar?month=May", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusBadRequest)
	}
}

func TestServeExport(t *testing.T) {
	t.Parallel()

	svc := &stubCalendarService{events: testEvents()}
	resp := serveRequest(t, svc, http.MethodGet, "/export.ics?user_id=u1&kind=assignment", "")

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusOK)
	}
	if got := resp.Header().Get("Content-Type"); got != calendar.ExportMediaType {
		t.Fatalf("content-type = %q, want %q", got, calendar.ExportMediaType)
	}
	if svc.exportKind != calendar.KindAssignment {
		t.Fatalf("kind = %q, want assignment", svc.exportKind)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") || !strings.Contains(body, "Homework 2") || strings.Contains(body, "Midterm") {
		t.Fatalf("body = %s", body)
	}
}

func TestServeUploads(t *testing.T) {
	t.Parallel()

	resp := serveRequest(t, &stubCalendarService{}, http.MethodGet, "/uploads?user_id=u1", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusOK)
	}
	if !strings.Contains(resp.Body.String(), `"event_count":2`) {
		t.Fatalf("body = %s", resp.Body.String())
	}
}

func TestDocumentLocation(t *testing.T) {
	t.Parallel()

	if _, err := documentLocation("", ""); err == nil {
		t.Fatal("documentLocation() error = nil, want missing input")
	}
	if _, err := documentLocation("https://x", "a.pdf"); err == nil {
		t.Fatal("documentLocation() error = nil, want conflict")
	}
	got, err := documentLocation("", "/tmp/s.pdf")
	if err != nil {
		t.Fatalf("documentLocation() error = %v", err)
	}
	if got != "file:///tmp/s.pdf" {
		t.Fatalf("documentLocation() = %q, want file:///tmp/s.pdf", got)
	}
}
