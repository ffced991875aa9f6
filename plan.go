package tdasync

import (
	"context"
	"fmt"
	"time"
)

// Directive is the outcome of planning: which scan to run and its first window.
type Directive struct {
	Direction Direction
	Window    Window
}

func (d Directive) String() string { return fmt.Sprintf("%s from %s", d.Direction, d.Window) }

// Plan reads the latest transaction timestamp from the store and decides how
// to reach now.
//
// An empty store is scanned backward starting with the current month up to
// now. Otherwise the store is caught up forward, starting at the exact instant
// of its latest transaction and ending with the end of that month.
func Plan(ctx context.Context, store Sink, now time.Time) (Directive, error) {
	latest, ok, err := store.LatestTransactionTimestamp(ctx)
	if err != nil {
		return Directive{}, fmt.Errorf("cannot plan synchronization: %w", err)
	}
	if !ok {
		start := FirstOfMonth(now)
		if start.Equal(now) {
			// now is the very first instant of the month: nothing to query
			// in it yet, start with the whole previous month.
			start = AdvanceMonth(now, Backward)
		}
		return Directive{Direction: Backward, Window: Window{Start: start, End: now}}, nil
	}
	return Directive{Direction: Forward, Window: Window{Start: latest, End: AdvanceMonth(latest, Forward)}}, nil
}
