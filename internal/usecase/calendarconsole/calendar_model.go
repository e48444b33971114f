package calendarconsole

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"syllabuscal/internal/bootstrap/logging"
	"syllabuscal/internal/domain/calendar"
	"syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/errs"
)

const maxDayLines = 8

// EventSource is the part of the syllabus service the console drives.
type EventSource interface {
	ListEvents(ctx context.Context, owner string) ([]syllabus.Event, error)
	DeleteClass(ctx context.Context, owner string, course string) (int64, error)
}

type Options struct {
	Owner      string
	Kind       calendar.Kind
	Mode       calendar.Mode
	MaxMarks   int
	ExportPath string
	Today      time.Time
}

type calendarModel struct {
	ctx        context.Context
	source     EventSource
	owner      string
	maxMarks   int
	exportPath string

	state      calendar.ViewState
	events     []syllabus.Event
	projection calendar.Projection
	cursor     int

	pendingDelete string
	status        string
}

type eventsLoadedMsg struct {
	items []syllabus.Event
	err   error
}

type classDeletedMsg struct {
	course  string
	deleted int64
	err     error
}

type exportDoneMsg struct {
	path   string
	events int
	err    error
}

func NewCalendarModel(ctx context.Context, source EventSource, options Options) tea.Model {
	today := options.Today
	if today.IsZero() {
		today = time.Now()
	}
	state := calendar.NewViewState(today)
	if options.Kind != "" {
		state = state.WithKind(options.Kind)
	}
	if options.Mode != "" {
		state = state.WithMode(options.Mode)
	}
	exportPath := strings.TrimSpace(options.ExportPath)
	if exportPath == "" {
		exportPath = calendar.ExportFilename
	}

	m := &calendarModel{
		ctx:        ctx,
		source:     source,
		owner:      strings.TrimSpace(options.Owner),
		maxMarks:   options.MaxMarks,
		exportPath: exportPath,
		state:      state,
		status:     "loading",
	}
	m.reproject()
	return m
}

func (m *calendarModel) Init() tea.Cmd {
	return m.loadEventsCmd()
}

func (m *calendarModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case eventsLoadedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.events = msg.items
		m.reproject()
		m.status = fmt.Sprintf("loaded %d events", len(m.events))
		return m, nil
	case classDeletedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("delete %s failed: %v", msg.course, msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("deleted %d events of %s", msg.deleted, msg.course)
		return m, m.loadEventsCmd()
	case exportDoneMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("exported %d events to %s", msg.events, msg.path)
		return m, nil
	case tea.KeyMsg:
		key := msg.String()
		if key != "d" {
			m.pendingDelete = ""
		}
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.status = "refreshing"
			return m, m.loadEventsCmd()
		case "t":
			m.setState(m.state.WithKind(m.state.Kind.Next()))
		case "v":
			m.setState(m.state.ToggleMode())
		case "[":
			m.setState(m.state.ShiftMonth(-1))
		case "]":
			m.setState(m.state.ShiftMonth(1))
		case "esc":
			m.setState(m.state.ClearSelection())
		case "up", "k":
			m.move(-1, -7)
		case "down", "j":
			m.move(1, 7)
		case "left", "h":
			m.move(0, -1)
		case "right", "l":
			m.move(0, 1)
		case "d":
			return m, m.deleteSelectedCourseCmd()
		case "e":
			return m, m.exportCmd()
		}
	}
	return m, nil
}

func (m *calendarModel) setState(next calendar.ViewState) {
	m.state = next
	m.reproject()
}

func (m *calendarModel) reproject() {
	m.projection = calendar.Project(m.events, m.state, m.maxMarks)
	if m.cursor >= len(m.projection.Events) {
		m.cursor = len(m.projection.Events) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// move steps the list cursor in list mode and the selected day in month mode.
func (m *calendarModel) move(listDelta int, dayDelta int) {
	if m.state.Mode == calendar.ModeList {
		next := m.cursor + listDelta
		if next >= 0 && next < len(m.projection.Events) {
			m.cursor = next
		}
		return
	}

	selected := m.state.Selected
	if !m.state.HasSelection() {
		selected = syllabus.CivilDate(m.state.Year, m.state.Month, 1)
		dayDelta = 0
	}
	m.setState(m.state.Select(selected.AddDate(0, 0, dayDelta)))
}

func (m *calendarModel) selectedEvent() (syllabus.Event, bool) {
	if m.state.Mode == calendar.ModeMonth {
		if len(m.projection.Day) == 0 {
			return syllabus.Event{}, false
		}
		return m.projection.Day[0], true
	}
	if m.cursor < 0 || m.cursor >= len(m.projection.Events) {
		return syllabus.Event{}, false
	}
	return m.listOrder()[m.cursor], true
}

// listOrder flattens the course groups in display order.
func (m *calendarModel) listOrder() []syllabus.Event {
	out := make([]syllabus.Event, 0, len(m.projection.Events))
	for _, group := range m.projection.Groups {
		out = append(out, group.Events...)
	}
	return out
}

func (m *calendarModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Syllabus Calendar"))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"owner=%s filter=%s view=%s month=%s events=%d",
		firstNonEmpty(m.owner, "-"),
		m.state.Kind,
		m.state.Mode,
		syllabus.CivilDate(m.state.Year, m.state.Month, 1).Format("January 2006"),
		len(m.projection.Events),
	)))
	builder.WriteString("\n\n")

	if m.state.Mode == calendar.ModeMonth {
		m.renderMonth(&builder, sectionStyle, dimStyle, selectedStyle)
	} else {
		m.renderList(&builder, sectionStyle, dimStyle, selectedStyle)
	}

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + firstNonEmpty(m.status, "ready"))
	builder.WriteString("\n\n")

	builder.WriteString(dimStyle.Render("Keys: t filter  v list/month  [ ] month  ↑↓←→/hjkl move  esc close day  d delete course  e export  g refresh  q quit"))
	return builder.String()
}

func (m *calendarModel) renderList(builder *strings.Builder, sectionStyle, dimStyle, selectedStyle lipgloss.Style) {
	builder.WriteString(sectionStyle.Render("Events"))
	builder.WriteString("\n")
	if len(m.projection.Groups) == 0 {
		builder.WriteString(dimStyle.Render("- no events"))
		builder.WriteString("\n\n")
		return
	}

	index := 0
	for _, group := range m.projection.Groups {
		courseStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(group.Color))
		builder.WriteString(courseStyle.Render(fmt.Sprintf("%s (%d)", group.Course, len(group.Events))))
		builder.WriteString("\n")
		for _, event := range group.Events {
			line := formatEventLine(event)
			if index == m.cursor {
				builder.WriteString(selectedStyle.Render("> " + line))
			} else {
				builder.WriteString("  " + line)
			}
			builder.WriteString("\n")
			index++
		}
	}
	builder.WriteString("\n")
}

func (m *calendarModel) renderMonth(builder *strings.Builder, sectionStyle, dimStyle, selectedStyle lipgloss.Style) {
	builder.WriteString(sectionStyle.Render("Month"))
	builder.WriteString("\n")
	builder.WriteString(" Su    Mo    Tu    We    Th    Fr    Sa\n")
	for _, week := range m.projection.Grid.Weeks() {
		for _, cell := range week {
			builder.WriteString(m.renderCell(cell, selectedStyle))
		}
		builder.WriteString("\n")
	}
	builder.WriteString("\n")

	if !m.state.HasSelection() {
		return
	}
	builder.WriteString(sectionStyle.Render(m.state.Selected.Format("Mon Jan 2, 2006")))
	builder.WriteString("\n")
	if len(m.projection.Day) == 0 {
		builder.WriteString(dimStyle.Render("- nothing due"))
		builder.WriteString("\n\n")
		return
	}
	for i, event := range m.projection.Day {
		if i == maxDayLines {
			builder.WriteString(dimStyle.Render(fmt.Sprintf("- +%d more", len(m.projection.Day)-maxDayLines)))
			builder.WriteString("\n")
			break
		}
		builder.WriteString("- " + formatEventLine(event))
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
}

func (m *calendarModel) renderCell(cell calendar.Cell, selectedStyle lipgloss.Style) string {
	if cell.Blank() {
		return "      "
	}
	marks := strings.Repeat("•", cell.Marks)
	if cell.Overflow() > 0 {
		marks = marks[:len(marks)-len("•")] + "+"
	}
	text := fmt.Sprintf("%2d%-3s ", cell.Day, marks)
	if m.state.HasSelection() && cell.Date.Equal(m.state.Selected) {
		return selectedStyle.Render(text)
	}
	return text
}

func (m *calendarModel) loadEventsCmd() tea.Cmd {
	return func() tea.Msg {
		items, err := m.source.ListEvents(m.ctx, m.owner)
		if err != nil {
			return eventsLoadedMsg{err: err}
		}
		return eventsLoadedMsg{items: items}
	}
}

// deleteSelectedCourseCmd asks for a second key press before deleting.
func (m *calendarModel) deleteSelectedCourseCmd() tea.Cmd {
	event, ok := m.selectedEvent()
	if !ok {
		m.status = "no event selected"
		return nil
	}
	course := calendar.CourseLabel(event)
	if m.pendingDelete != course {
		m.pendingDelete = course
		m.status = fmt.Sprintf("press d again to delete every event of %s", course)
		return nil
	}
	m.pendingDelete = ""

	owner := m.owner
	return func() tea.Msg {
		deleted, err := m.source.DeleteClass(m.ctx, owner, course)
		logging.Info(
			logging.WithAttrs(m.ctx, slog.String("component", "usecase.calendarconsole")),
			"delete class from console",
			slog.String("course", course),
			slog.Int64("deleted", deleted),
			slog.Any("err", errs.Loggable(err)),
		)
		return classDeletedMsg{course: course, deleted: deleted, err: err}
	}
}

func (m *calendarModel) exportCmd() tea.Cmd {
	events := m.projection.Events
	path := m.exportPath
	return func() tea.Msg {
		if len(events) == 0 {
			return exportDoneMsg{path: path, err: errors.New("nothing to export")}
		}
		if err := os.WriteFile(path, calendar.ExportICS(events), 0o644); err != nil {
			return exportDoneMsg{path: path, err: errs.Wrap(err, "write ics file")}
		}
		return exportDoneMsg{path: path, events: len(events)}
	}
}

func formatEventLine(event syllabus.Event) string {
	line := fmt.Sprintf("%s [%s] %s", event.DateKey(), calendar.Classify(event), event.Title)
	if description := firstNonEmptyLine(event.Description); description != "" {
		line += " · " + description
	}
	return line
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func firstNonEmptyLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
