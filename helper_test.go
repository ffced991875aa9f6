package tdasync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// utc is a helper for tests to create UTC times.
func utc(y int, m time.Month, d, h, min, s int) time.Time {
	return time.Date(y, m, d, h, min, s, 0, time.UTC)
}

// day is a helper for tests to create midnight UTC times.
func day(y int, m time.Month, d int) time.Time { return utc(y, m, d, 0, 0, 0) }

// records is a helper to create a batch of n dummy records.
func records(n int) Batch {
	b := make(Batch, n)
	for i := range b {
		b[i] = json.RawMessage(fmt.Sprintf(`{"transactionId":%d}`, i))
	}
	return b
}

// stubFetcher answers queries from a function of the window, and records the
// queried windows.
type stubFetcher struct {
	answer  func(w Window) (Batch, error)
	windows []Window
}

func (f *stubFetcher) FetchTransactions(_ context.Context, _ Query, w Window) (Batch, error) {
	f.windows = append(f.windows, w)
	if f.answer == nil {
		return nil, nil
	}
	return f.answer(w)
}

// memorySink is an in-memory Sink.
type memorySink struct {
	latest     time.Time
	hasLatest  bool
	latestErr  error
	persistErr error
	batches    []Batch
}

func (s *memorySink) LatestTransactionTimestamp(context.Context) (time.Time, bool, error) {
	return s.latest, s.hasLatest, s.latestErr
}

func (s *memorySink) Persist(_ context.Context, b Batch) error {
	if s.persistErr != nil {
		return s.persistErr
	}
	s.batches = append(s.batches, b)
	return nil
}

func (s *memorySink) records() int {
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}
