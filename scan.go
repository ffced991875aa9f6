package tdasync

import (
	"context"
	"fmt"
	"log"
	"time"
)

// DefaultMaxGap is the number of consecutive empty months after which a
// backward scan concludes that the account history has been fully read.
const DefaultMaxGap = 12

// BackwardScanner walks month windows from the present into the past until
// MaxGap consecutive windows are empty.
type BackwardScanner struct {
	Fetcher Fetcher
	Sink    Sink
	Query   Query
	MaxGap  int // DefaultMaxGap if zero.
}

func (s *BackwardScanner) maxGap() int {
	if s.MaxGap <= 0 {
		return DefaultMaxGap
	}
	return s.MaxGap
}

// Scan runs the scan from the initial window, and returns every visited window.
func (s *BackwardScanner) Scan(ctx context.Context, initial Window) ([]WindowResult, error) {
	if !initial.Valid() {
		return nil, fmt.Errorf("invalid backward window %s", initial)
	}
	var visited []WindowResult
	gap := 0
	for w := initial; gap < s.maxGap(); w = w.previous() {
		n, err := visit(ctx, s.Fetcher, s.Sink, s.Query, w)
		if err != nil {
			return visited, err
		}
		visited = append(visited, WindowResult{Window: w, Records: n})
		if n == 0 {
			gap++
		} else {
			gap = 0
		}
	}
	log.Printf("backward scan stopped after %d empty months", gap)
	return visited, nil
}

// ForwardScanner walks month windows from the last known transaction until
// the window that contains now.
type ForwardScanner struct {
	Fetcher Fetcher
	Sink    Sink
	Query   Query
}

// Scan runs the scan from the initial window. now is sampled once by the
// caller and never re-read, so that the number of windows is bounded by the
// months between initial and now.
func (s *ForwardScanner) Scan(ctx context.Context, initial Window, now time.Time) ([]WindowResult, error) {
	if !initial.Valid() {
		return nil, fmt.Errorf("invalid forward window %s", initial)
	}
	var visited []WindowResult
	for w := initial; ; w = w.next() {
		n, err := visit(ctx, s.Fetcher, s.Sink, s.Query, w)
		if err != nil {
			return visited, err
		}
		visited = append(visited, WindowResult{Window: w, Records: n})
		// The window straddling now has just been fetched, and only once.
		if w.End.After(now) {
			return visited, nil
		}
	}
}

// visit fetches a single window and persists it if not empty. It returns the number of records.
func visit(ctx context.Context, f Fetcher, sink Sink, q Query, w Window) (int, error) {
	batch, err := f.FetchTransactions(ctx, q, w)
	if err != nil {
		return 0, fmt.Errorf("cannot fetch transactions in %s: %w", w, err)
	}
	log.Printf("fetched %d transactions in %s", len(batch), w)
	if len(batch) == 0 {
		return 0, nil
	}
	if err := sink.Persist(ctx, batch); err != nil {
		return 0, fmt.Errorf("cannot persist transactions in %s: %w", w, err)
	}
	return len(batch), nil
}
