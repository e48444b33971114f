package calendar

import (
	"time"

	"syllabuscal/internal/domain/syllabus"
)

// DefaultMaxMarks caps how many indicator marks a month cell shows.
const DefaultMaxMarks = 3

// Cell is one square of the month grid. Blank cells have Day == 0.
type Cell struct {
	Day    int
	Date   time.Time
	Events []syllabus.Event
	// Marks is len(Events) capped at the grid's mark limit.
	Marks int
}

// Blank reports whether the cell is padding outside the month.
func (c Cell) Blank() bool { return c.Day == 0 }

// Overflow is the number of events on the day beyond the displayed marks.
func (c Cell) Overflow() int { return len(c.Events) - c.Marks }

// MonthGrid is a 7-column, Sunday-first layout of one month.
type MonthGrid struct {
	Year  int
	Month time.Month
	// Cells holds the leading blanks followed by one cell per day.
	Cells []Cell
}

// BuildMonthGrid lays out year/month starting on the weekday of the 1st
// (Sunday = 0) and attaches the events dated on each day.
func BuildMonthGrid(year int, month time.Month, events []syllabus.Event, maxMarks int) MonthGrid {
	if maxMarks <= 0 {
		maxMarks = DefaultMaxMarks
	}

	first := syllabus.CivilDate(year, month, 1)
	leading := int(first.Weekday())
	days := DaysIn(year, month)

	byDay := make(map[int][]syllabus.Event)
	for _, event := range events {
		if event.Date.Year() != year || event.Date.Month() != month {
			continue
		}
		byDay[event.Date.Day()] = append(byDay[event.Date.Day()], event)
	}

	cells := make([]Cell, 0, leading+days)
	for i := 0; i < leading; i++ {
		cells = append(cells, Cell{})
	}
	for day := 1; day <= days; day++ {
		dayEvents := byDay[day]
		marks := len(dayEvents)
		if marks > maxMarks {
			marks = maxMarks
		}
		cells = append(cells, Cell{
			Day:    day,
			Date:   syllabus.CivilDate(year, month, day),
			Events: dayEvents,
			Marks:  marks,
		})
	}

	return MonthGrid{Year: year, Month: month, Cells: cells}
}

// Leading returns the number of blank cells before the 1st.
func (g MonthGrid) Leading() int {
	for i, cell := range g.Cells {
		if !cell.Blank() {
			return i
		}
	}
	return len(g.Cells)
}

// Padded returns the cells with trailing blanks added so the length is a
// multiple of 7.
func (g MonthGrid) Padded() []Cell {
	out := make([]Cell, len(g.Cells), len(g.Cells)+6)
	copy(out, g.Cells)
	for len(out)%7 != 0 {
		out = append(out, Cell{})
	}
	return out
}

// Weeks splits the padded grid into rows of 7.
func (g MonthGrid) Weeks() [][]Cell {
	padded := g.Padded()
	weeks := make([][]Cell, 0, len(padded)/7)
	for i := 0; i < len(padded); i += 7 {
		weeks = append(weeks, padded[i:i+7])
	}
	return weeks
}

// DaysIn returns the number of days in year/month.
func DaysIn(year int, month time.Month) int {
	return syllabus.CivilDate(year, month+1, 0).Day()
}

// EventsOn returns the events dated on day.
func EventsOn(events []syllabus.Event, day time.Time) []syllabus.Event {
	out := make([]syllabus.Event, 0)
	for _, event := range events {
		if sameDay(event.Date, day) {
			out = append(out, event)
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
