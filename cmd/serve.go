package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"syllabuscal/internal/bootstrap"
	"syllabuscal/internal/bootstrap/logging"
	"syllabuscal/internal/domain/calendar"
	domainsyllabus "syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/errs"
	"syllabuscal/internal/usecase/syllabus"
)

const maxRequestBodyBytes = 1 << 20

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *syllabus.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		addr, _ := cmd.Flags().GetString("addr")
		addr = strings.TrimSpace(addr)
		if addr == "" {
			addr = app.Config.Server.Addr
		}

		server := &http.Server{
			Addr:              addr,
			Handler:           newCalendarHTTPHandler(ctx, svc),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			serveErr <- server.ListenAndServe()
		}()
		logging.Info(ctx, "http server started", slog.String("addr", addr))

		select {
		case err := <-serveErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error(ctx, "http server failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "serve http")
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(err, "shutdown http server")
		}
		logging.Info(ctx, "http server stopped")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (defaults to server.addr)")
}

type calendarService interface {
	ProcessSyllabus(ctx context.Context, input syllabus.ProcessInput) (syllabus.ProcessResult, error)
	DeleteClass(ctx context.Context, owner string, course string) (int64, error)
	ListEvents(ctx context.Context, owner string) ([]domainsyllabus.Event, error)
	Project(ctx context.Context, owner string, state calendar.ViewState) (calendar.Projection, error)
	Export(ctx context.Context, owner string, kind calendar.Kind) ([]byte, error)
	ListUploads(ctx context.Context, owner string) ([]domainsyllabus.Upload, error)
}

type calendarHTTPHandler struct {
	baseCtx context.Context
	svc     calendarService
	today   func() time.Time
}

type processSyllabusRequest struct {
	FileURL        string `json:"file_url"`
	UserID         string `json:"user_id"`
	SourceFilename string `json:"source_filename"`
	CourseName     string `json:"course_name"`
}

type processSyllabusResponse struct {
	Status     string          `json:"status"`
	BatchID    string          `json:"batch_id"`
	Count      int             `json:"count"`
	CourseName string          `json:"course_name,omitempty"`
	Courses    []string        `json:"courses"`
	Dropped    int             `json:"dropped"`
	Duplicates int             `json:"duplicates"`
	Events     []eventResponse `json:"events"`
}

type deleteClassRequest struct {
	UserID     string `json:"user_id"`
	CourseName string `json:"course_name"`
}

type deleteClassResponse struct {
	Status  string `json:"status"`
	Deleted int64  `json:"deleted"`
}

type eventResponse struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	BatchID        string `json:"batch_id"`
	CourseName     string `json:"course_name"`
	Date           string `json:"date"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Kind           string `json:"kind"`
	SourceDocument string `json:"source_document"`
	SourceURL      string `json:"source_url,omitempty"`
	CreatedAt      string `json:"created_at"`
}

type groupResponse struct {
	Course string          `json:"course"`
	Color  string          `json:"color"`
	Events []eventResponse `json:"events"`
}

type cellResponse struct {
	Day      int      `json:"day"`
	Date     string   `json:"date,omitempty"`
	Marks    int      `json:"marks"`
	Overflow int      `json:"overflow"`
	EventIDs []string `json:"event_ids"`
}

type calendarResponse struct {
	Filter   string          `json:"filter"`
	View     string          `json:"view"`
	Month    string          `json:"month"`
	Selected string          `json:"selected,omitempty"`
	Count    int             `json:"count"`
	Leading  int             `json:"leading"`
	Groups   []groupResponse `json:"groups"`
	Cells    []cellResponse  `json:"cells"`
	Day      []eventResponse `json:"day"`
}

type uploadResponse struct {
	ID             string `json:"id"`
	BatchID        string `json:"batch_id"`
	SourceDocument string `json:"source_document"`
	SourceURL      string `json:"source_url,omitempty"`
	CourseName     string `json:"course_name"`
	ContentHash    string `json:"content_hash"`
	EventCount     int    `json:"event_count"`
	CreatedAt      string `json:"created_at"`
}

type apiErrorResponse struct {
	Error string `json:"error"`
	Saved *int   `json:"saved,omitempty"`
	Total *int   `json:"total,omitempty"`
}

func newCalendarHTTPHandler(baseCtx context.Context, svc calendarService) http.Handler {
	h := &calendarHTTPHandler{
		baseCtx: baseCtx,
		svc:     svc,
		today:   time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/health", h.handleHealth)
	r.Post("/process-syllabus", h.handleProcessSyllabus)
	r.Post("/delete-class", h.handleDeleteClass)
	r.Get("/events", h.handleListEvents)
	r.Get("/calendar", h.handleCalendar)
	r.Get("/export.ics", h.handleExport)
	r.Get("/uploads", h.handleListUploads)
	return r
}

// logRequests carries the process logger and request id into handler contexts.
func (h *calendarHTTPHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ctx := logging.WithLogger(r.Context(), logging.Logger(h.baseCtx))
		ctx = logging.WithAttrs(ctx, logging.Attrs(h.baseCtx)...)
		ctx = logging.WithTelemetry(ctx, middleware.GetReqID(r.Context()), "")
		ctx = logging.WithAttrs(ctx, slog.String("component", "http"))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		logging.Info(ctx, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(started)),
		)
	})
}

func (h *calendarHTTPHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeAPIJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "syllabus calendar API is running"})
}

func (h *calendarHTTPHandler) handleProcessSyllabus(w http.ResponseWriter, r *http.Request) {
	var req processSyllabusRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.FileURL) == "" {
		writeAPIError(w, http.StatusBadRequest, "file_url is required")
		return
	}
	if err := checkRemoteDocument(req.FileURL); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	result, err := h.svc.ProcessSyllabus(r.Context(), syllabus.ProcessInput{
		FileURL:        req.FileURL,
		Owner:          req.UserID,
		SourceDocument: req.SourceFilename,
		CourseName:     req.CourseName,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	courseName := ""
	if len(result.Courses) == 1 {
		courseName = result.Courses[0]
	}
	writeAPIJSON(w, http.StatusOK, processSyllabusResponse{
		Status:     "success",
		BatchID:    result.BatchID,
		Count:      result.Saved(),
		CourseName: courseName,
		Courses:    result.Courses,
		Dropped:    result.Dropped,
		Duplicates: result.Duplicates,
		Events:     toEventResponses(result.Events),
	})
}

func (h *calendarHTTPHandler) handleDeleteClass(w http.ResponseWriter, r *http.Request) {
	var req deleteClassRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := h.svc.DeleteClass(r.Context(), req.UserID, req.CourseName)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, deleteClassResponse{Status: "ok", Deleted: deleted})
}

func (h *calendarHTTPHandler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	kind, err := calendar.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.svc.ListEvents(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	filtered := calendar.Filter(events, kind)
	writeAPIJSON(w, http.StatusOK, map[string]any{
		"events": toEventResponses(filtered),
		"count":  len(filtered),
	})
}

func (h *calendarHTTPHandler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	state, err := h.viewStateFromQuery(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	projection, err := h.svc.Project(r.Context(), r.URL.Query().Get("user_id"), state)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, toCalendarResponse(projection))
}

func (h *calendarHTTPHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, err := calendar.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.svc.Export(r.Context(), r.URL.Query().Get("user_id"), kind)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	w.Header().Set("Content-Type", calendar.ExportMediaType)
	w.Header().Set("Content-Disposition", "attachment; filename="+calendar.ExportFilename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (h *calendarHTTPHandler) handleListUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.svc.ListUploads(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	items := make([]uploadResponse, 0, len(uploads))
	for _, upload := range uploads {
		items = append(items, uploadResponse{
			ID:             upload.ID,
			BatchID:        upload.BatchID,
			SourceDocument: upload.SourceDocument,
			SourceURL:      upload.SourceURL,
			CourseName:     upload.CourseName,
			ContentHash:    upload.ContentHash,
			EventCount:     upload.EventCount,
			CreatedAt:      upload.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeAPIJSON(w, http.StatusOK, map[string]any{"uploads": items, "count": len(items)})
}

// viewStateFromQuery reads kind, view, month (YYYY-MM) and date (YYYY-MM-DD).
func (h *calendarHTTPHandler) viewStateFromQuery(r *http.Request) (calendar.ViewState, error) {
	query := r.URL.Query()

	state := calendar.NewViewState(h.today())
	kind, err := calendar.ParseKind(query.Get("kind"))
	if err != nil {
		return calendar.ViewState{}, err
	}
	mode, err := calendar.ParseMode(query.Get("view"))
	if err != nil {
		return calendar.ViewState{}, err
	}
	state = state.WithKind(kind).WithMode(mode)

	if month := strings.TrimSpace(query.Get("month")); month != "" {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			return calendar.ViewState{}, errors.New("month must be YYYY-MM")
		}
		state.Year = parsed.Year()
		state.Month = parsed.Month()
	}
	if date := strings.TrimSpace(query.Get("date")); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return calendar.ViewState{}, errors.New("date must be YYYY-MM-DD")
		}
		state = state.Select(parsed)
	}
	return state, nil
}

func toEventResponses(events []domainsyllabus.Event) []eventResponse {
	items := make([]eventResponse, 0, len(events))
	for _, event := range events {
		items = append(items, eventResponse{
			ID:             event.ID,
			UserID:         event.Owner,
			BatchID:        event.BatchID,
			CourseName:     event.CourseName,
			Date:           event.DateKey(),
			Title:          event.Title,
			Description:    event.Description,
			Kind:           string(calendar.Classify(event)),
			SourceDocument: event.SourceDocument,
			SourceURL:      event.SourceURL,
			CreatedAt:      event.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items
}

func toCalendarResponse(projection calendar.Projection) calendarResponse {
	out := calendarResponse{
		Filter:  string(projection.State.Kind),
		View:    string(projection.State.Mode),
		Month:   domainsyllabus.CivilDate(projection.State.Year, projection.State.Month, 1).Format("2006-01"),
		Count:   len(projection.Events),
		Leading: projection.Grid.Leading(),
		Groups:  make([]groupResponse, 0, len(projection.Groups)),
		Cells:   make([]cellResponse, 0, len(projection.Grid.Cells)+6),
		Day:     toEventResponses(projection.Day),
	}
	if projection.State.HasSelection() {
		out.Selected = domainsyllabus.FormatDate(projection.State.Selected)
	}
	for _, group := range projection.Groups {
		out.Groups = append(out.Groups, groupResponse{
			Course: group.Course,
			Color:  group.Color,
			Events: toEventResponses(group.Events),
		})
	}
	for _, cell := range projection.Grid.Padded() {
		item := cellResponse{
			Day:      cell.Day,
			Marks:    cell.Marks,
			Overflow: cell.Overflow(),
			EventIDs: make([]string, 0, len(cell.Events)),
		}
		if !cell.Blank() {
			item.Date = domainsyllabus.FormatDate(cell.Date)
		}
		for _, event := range cell.Events {
			item.EventIDs = append(item.EventIDs, event.ID)
		}
		out.Cells = append(out.Cells, item)
	}
	return out
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, target any) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(target); err != nil {
		return errors.New("request body must be a JSON object")
	}
	return nil
}

// checkRemoteDocument only lets http(s) document links through; the server
// must never read its own disk on a caller's behalf.
func checkRemoteDocument(rawURL string) error {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("%w: malformed file_url", domainsyllabus.ErrDocumentUnavailable)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return nil
	default:
		return fmt.Errorf("%w: file_url scheme %q is not allowed", domainsyllabus.ErrDocumentUnavailable, parsed.Scheme)
	}
}

// statusForError maps pipeline failures onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domainsyllabus.ErrOwnerRequired),
		errors.Is(err, domainsyllabus.ErrCourseRequired),
		errors.Is(err, domainsyllabus.ErrDocumentUnavailable),
		errors.Is(err, domainsyllabus.ErrNoTextFound):
		return http.StatusBadRequest
	case errors.Is(err, domainsyllabus.ErrInvalidResponse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainsyllabus.ErrExtractionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.Error(ctx, "request failed", slog.Int("status", status), slog.Any("err", errs.Loggable(err)))
	} else {
		logging.Warn(ctx, "request rejected", slog.Int("status", status), slog.Any("err", errs.Loggable(err)))
	}

	resp := apiErrorResponse{Error: err.Error()}
	var partial *domainsyllabus.PartialPersistError
	if errors.As(err, &partial) {
		resp.Saved = &partial.Saved
		resp.Total = &partial.Total
	}
	writeAPIJSON(w, status, resp)
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	writeAPIJSON(w, status, apiErrorResponse{Error: message})
}

func writeAPIJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
