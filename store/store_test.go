package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/tdasync"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Config{DataSourceName: ":memory:"})
	if err != nil {
		t.Fatalf("Open() unexpected error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// tx is a helper to create a raw record.
func tx(id int, date string, amount float64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"transactionId": %d, "transactionDate": %q, "type": "TRADE", "netAmount": %v}`, id, date, amount))
}

func TestStore_empty(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.LatestTransactionTimestamp(context.Background())
	if err != nil {
		t.Fatalf("LatestTransactionTimestamp() unexpected error = %v", err)
	}
	if ok {
		t.Error("LatestTransactionTimestamp() ok = true on an empty store")
	}
}

func TestStore_Persist(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	batch := tdasync.Batch{
		tx(1, "2023-11-20T10:00:00+0000", -100.5),
		tx(2, "2023-11-20T10:00:00+0005", 20),
		tx(3, "2023-10-01T09:00:00+0000", 3),
	}
	if err := s.Persist(ctx, batch); err != nil {
		t.Fatalf("Persist() unexpected error = %v", err)
	}
	latest, ok, err := s.LatestTransactionTimestamp(ctx)
	if err != nil || !ok {
		t.Fatalf("LatestTransactionTimestamp() = %v, %v, %v", latest, ok, err)
	}
	want := time.Date(2023, time.November, 20, 10, 0, 0, 5*int(time.Millisecond), time.UTC)
	if !latest.Equal(want) {
		t.Errorf("LatestTransactionTimestamp() = %v, want %v", latest, want)
	}

	// the first forward window fetches the latest records again.
	if err := s.Persist(ctx, batch[:2]); err != nil {
		t.Fatalf("Persist() again unexpected error = %v", err)
	}
	if n, err := s.Count(ctx); err != nil || n != 3 {
		t.Errorf("Count() = %d, %v, want 3", n, err)
	}
}

func TestStore_Persist_malformed(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	batch := tdasync.Batch{
		tx(1, "2023-11-20T10:00:00+0000", 1),
		json.RawMessage(`{"transactionId": 2}`),
	}
	if err := s.Persist(ctx, batch); !errors.Is(err, tdasync.ErrParse) {
		t.Fatalf("Persist() error = %v, want a parse error", err)
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Errorf("Count() = %d, want nothing stored", n)
	}
}

func TestStore_Insert(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, err := s.Insert(ctx, tdasync.Batch{tx(1, "2024-02-10T08:00:00+0000", -1000)}); err != nil {
		t.Fatalf("Insert() unexpected error = %v", err)
	}
	inserted, err := s.Insert(ctx, tdasync.Batch{
		tx(1, "2024-02-10T08:00:00+0000", -1000),
		tx(2, "2024-02-12T08:00:00+0000", 50),
	})
	if err != nil {
		t.Fatalf("Insert() unexpected error = %v", err)
	}
	if len(inserted) != 1 || inserted[0].ID != "2" || inserted[0].NetAmount.String() != "50" {
		t.Errorf("Insert() = %+v, want only the new record 2", inserted)
	}
	if n, _ := s.Count(ctx); n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}

func TestStore_reopen(t *testing.T) {
	ctx := context.Background()
	config := Config{DataSourceName: filepath.Join(t.TempDir(), "tda.db"), Table: "tda_transactions"}
	s, err := Open(ctx, config)
	if err != nil {
		t.Fatalf("Open() unexpected error = %v", err)
	}
	if err := s.Persist(ctx, tdasync.Batch{tx(1, "2022-01-06T10:09:40+0000", 1)}); err != nil {
		t.Fatalf("Persist() unexpected error = %v", err)
	}
	s.Close()

	s, err = Open(ctx, config)
	if err != nil {
		t.Fatalf("Open() again unexpected error = %v", err)
	}
	defer s.Close()
	if _, ok, err := s.LatestTransactionTimestamp(ctx); err != nil || !ok {
		t.Errorf("LatestTransactionTimestamp() after reopen = %v, %v", ok, err)
	}
}

func TestStore_closed(t *testing.T) {
	s := openTestStore(t)
	s.Close()
	if _, _, err := s.LatestTransactionTimestamp(context.Background()); !errors.Is(err, tdasync.ErrStore) {
		t.Errorf("LatestTransactionTimestamp() error = %v, want a store error", err)
	}
	if err := s.Persist(context.Background(), tdasync.Batch{}); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Persist() error = %v, want ErrStoreClosed", err)
	}
}

func TestOpen_invalidConfig(t *testing.T) {
	for _, c := range []Config{{}, {DataSourceName: ":memory:", Table: "x; DROP TABLE y"}} {
		if _, err := Open(context.Background(), c); !errors.Is(err, tdasync.ErrStore) {
			t.Errorf("Open(%+v) error = %v, want a store error", c, err)
		}
	}
}
