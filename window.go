package tdasync

import (
	"fmt"
	"time"
)

// Direction of a scan through the account history.
type Direction int

const (
	Backward Direction = iota // from the present month into the unknown past.
	Forward                   // from the last known transaction up to now.
)

func (d Direction) String() string {
	switch d {
	case Backward:
		return "backward"
	case Forward:
		return "forward"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Window is the half-open time interval [Start, End) of one brokerage query.
type Window struct{ Start, End time.Time }

// String formats the window as [start, end).
func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.DateTime), w.End.Format(time.DateTime))
}

// Contains reports whether t is in the window.
func (w Window) Contains(t time.Time) bool { return !t.Before(w.Start) && t.Before(w.End) }

// Valid reports whether the window is not empty.
func (w Window) Valid() bool { return w.Start.Before(w.End) }

// FirstOfMonth returns midnight on the first day of t's month, in t's location.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// AdvanceMonth returns midnight on the first day of the month after (Forward)
// or before (Backward) the month containing t, in t's location.
func AdvanceMonth(t time.Time, dir Direction) time.Time {
	step := 1
	if dir == Backward {
		step = -1
	}
	// time.Date normalizes month 0 and 13 into the adjacent year.
	return time.Date(t.Year(), t.Month()+time.Month(step), 1, 0, 0, 0, 0, t.Location())
}

// previous returns the month-aligned window that precedes w.
func (w Window) previous() Window {
	return Window{Start: AdvanceMonth(w.Start, Backward), End: w.Start}
}

// next returns the month-aligned window that follows w.
func (w Window) next() Window {
	return Window{Start: w.End, End: AdvanceMonth(w.End, Forward)}
}
