// Package schedule is the appointments screen: the monthly calendar grid,
// the enriched appointment rows, the lifecycle transitions with their local
// preconditions, and the booking form.
package schedule

import "time"

// gridCells is fixed at 6 uniform week rows regardless of month length.
const gridCells = 42

// Grid is the 42-cell month view, anchored to the Monday-start week that
// contains the 1st of the displayed month.
type Grid struct {
	Anchor time.Time
	Days   [gridCells]time.Time
}

// NewGrid builds the grid for the month containing anchor.
func NewGrid(anchor time.Time) Grid {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	start := startOfWeek(first)
	g := Grid{Anchor: first}
	for i := 0; i < gridCells; i++ {
		g.Days[i] = start.AddDate(0, 0, i)
	}
	return g
}

// Window is the fetch range covering the whole grid: grid start to grid
// start plus 42 days.
func (g Grid) Window() (from, to time.Time) {
	return g.Days[0], g.Days[0].AddDate(0, 0, gridCells)
}

// OutsideMonth reports whether d falls outside the displayed month.
func (g Grid) OutsideMonth(d time.Time) bool {
	return d.Month() != g.Anchor.Month() || d.Year() != g.Anchor.Year()
}

// Next returns the grid for the following month.
func (g Grid) Next() Grid { return NewGrid(g.Anchor.AddDate(0, 1, 0)) }

// Prev returns the grid for the previous month.
func (g Grid) Prev() Grid { return NewGrid(g.Anchor.AddDate(0, -1, 0)) }

// startOfWeek returns the Monday at or before d, at midnight.
func startOfWeek(d time.Time) time.Time {
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	diff := int(midnight.Weekday()) - int(time.Monday)
	if diff < 0 {
		diff += 7
	}
	return midnight.AddDate(0, 0, -diff)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
