package calendar

import (
	"fmt"
	"strings"
	"time"

	"syllabuscal/internal/domain/syllabus"
)

// Mode selects between the grouped list and the month grid.
type Mode string

const (
	ModeList  Mode = "list"
	ModeMonth Mode = "month"
)

// ParseMode accepts list or month; empty means list.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeList:
		return ModeList, nil
	case ModeMonth:
		return ModeMonth, nil
	default:
		return "", fmt.Errorf("unknown view mode %q (want list|month)", raw)
	}
}

// ViewState is the immutable projection input. Every transition returns a
// new value; the zero Selected means no day is open.
type ViewState struct {
	Kind     Kind
	Mode     Mode
	Year     int
	Month    time.Month
	Selected time.Time
}

// NewViewState starts in list mode showing all events in the month of today.
func NewViewState(today time.Time) ViewState {
	return ViewState{
		Kind:  KindAll,
		Mode:  ModeList,
		Year:  today.Year(),
		Month: today.Month(),
	}
}

func (s ViewState) WithKind(kind Kind) ViewState {
	s.Kind = kind
	return s
}

func (s ViewState) WithMode(mode Mode) ViewState {
	s.Mode = mode
	return s
}

// ToggleMode flips between list and month.
func (s ViewState) ToggleMode() ViewState {
	if s.Mode == ModeMonth {
		s.Mode = ModeList
	} else {
		s.Mode = ModeMonth
	}
	return s
}

// ShiftMonth moves the visible month by delta and clears the selection.
func (s ViewState) ShiftMonth(delta int) ViewState {
	first := syllabus.CivilDate(s.Year, s.Month+time.Month(delta), 1)
	s.Year = first.Year()
	s.Month = first.Month()
	s.Selected = time.Time{}
	return s
}

// Select opens a day; the visible month follows the selected date.
func (s ViewState) Select(day time.Time) ViewState {
	s.Selected = syllabus.CivilDate(day.Year(), day.Month(), day.Day())
	s.Year = day.Year()
	s.Month = day.Month()
	return s
}

func (s ViewState) ClearSelection() ViewState {
	s.Selected = time.Time{}
	return s
}

// HasSelection reports whether a day view is open.
func (s ViewState) HasSelection() bool {
	return !s.Selected.IsZero()
}

// Projection is everything a renderer needs for one ViewState.
type Projection struct {
	State  ViewState
	Events []syllabus.Event
	Groups []Group
	Grid   MonthGrid
	Day    []syllabus.Event
}

// Project filters events by the state's kind and builds the list groups, the
// month grid and the selected day.
func Project(events []syllabus.Event, state ViewState, maxMarks int) Projection {
	if state.Kind == "" {
		state.Kind = KindAll
	}
	if state.Mode == "" {
		state.Mode = ModeList
	}

	filtered := Filter(events, state.Kind)
	projection := Projection{
		State:  state,
		Events: filtered,
		Groups: GroupByCourse(filtered),
		Grid:   BuildMonthGrid(state.Year, state.Month, filtered, maxMarks),
	}
	if state.HasSelection() {
		projection.Day = EventsOn(filtered, state.Selected)
	}
	return projection
}
