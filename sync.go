package tdasync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"
)

// TransactionType filters the transactions returned by the brokerage.
type TransactionType string

const (
	AllTransactions TransactionType = "ALL"
	Trade           TransactionType = "TRADE"
	BuyOnly         TransactionType = "BUY_ONLY"
	SellOnly        TransactionType = "SELL_ONLY"
	CashInOrCashOut TransactionType = "CASH_IN_OR_CASH_OUT"
	Checking        TransactionType = "CHECKING"
	Dividend        TransactionType = "DIVIDEND"
	Interest        TransactionType = "INTEREST"
	Other           TransactionType = "OTHER"
	AdvisorFees     TransactionType = "ADVISOR_FEES"
)

var transactionTypes = []TransactionType{AllTransactions, Trade, BuyOnly, SellOnly, CashInOrCashOut, Checking, Dividend, Interest, Other, AdvisorFees}

// TransactionTypes returns all the known transaction types.
func TransactionTypes() []TransactionType { return slices.Clone(transactionTypes) }

// ParseTransactionType parses a transaction type filter, case insensitive.
// The empty string is AllTransactions.
func ParseTransactionType(s string) (TransactionType, error) {
	if s == "" {
		return AllTransactions, nil
	}
	for _, t := range transactionTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Query identifies the account and the filters used for every window of a run.
type Query struct {
	AccountID string
	Type      TransactionType
	Symbol    string // empty for all symbols.
}

// Batch is the ordered list of raw records returned for one window.
// Records are opaque to the synchronization.
type Batch []json.RawMessage

// Fetcher retrieves the transactions of one window.
type Fetcher interface {
	FetchTransactions(ctx context.Context, q Query, w Window) (Batch, error)
}

// Sink is the local transaction store.
type Sink interface {
	// LatestTransactionTimestamp returns the timestamp of the most recent
	// transaction in the store, ok is false if the store is empty.
	LatestTransactionTimestamp(ctx context.Context) (latest time.Time, ok bool, err error)
	// Persist appends a batch, in order.
	Persist(ctx context.Context, b Batch) error
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, q Query, w Window) (Batch, error)

func (f FetcherFunc) FetchTransactions(ctx context.Context, q Query, w Window) (Batch, error) {
	return f(ctx, q, w)
}

// WindowResult records the number of transactions found in a visited window.
type WindowResult struct {
	Window  Window
	Records int
}

// Report describes one synchronization run.
type Report struct {
	Account   string
	Now       time.Time
	Direction Direction
	Windows   []WindowResult
}

// Records returns the total number of records fetched.
func (r *Report) Records() int {
	n := 0
	for _, w := range r.Windows {
		n += w.Records
	}
	return n
}

// Empty returns the number of visited windows without any record.
func (r *Report) Empty() int {
	n := 0
	for _, w := range r.Windows {
		if w.Records == 0 {
			n++
		}
	}
	return n
}

// Syncer synchronizes a Sink with the brokerage account history.
type Syncer struct {
	Fetcher Fetcher
	Store   Sink
	Query   Query
	MaxGap  int // for backward scans, DefaultMaxGap if zero.
}

// Run plans and runs exactly one scan. now is the single time snapshot used
// for the whole run.
//
// The report is returned even on error and contains the windows completed so far.
func (s *Syncer) Run(ctx context.Context, now time.Time) (*Report, error) {
	report := &Report{Account: s.Query.AccountID, Now: now}
	d, err := Plan(ctx, s.Store, now)
	if err != nil {
		return report, err
	}
	report.Direction = d.Direction
	log.Printf("synchronizing account %s %s", s.Query.AccountID, d)

	switch d.Direction {
	case Backward:
		scanner := BackwardScanner{Fetcher: s.Fetcher, Sink: s.Store, Query: s.Query, MaxGap: s.MaxGap}
		report.Windows, err = scanner.Scan(ctx, d.Window)
	case Forward:
		scanner := ForwardScanner{Fetcher: s.Fetcher, Sink: s.Store, Query: s.Query}
		report.Windows, err = scanner.Scan(ctx, d.Window, now)
	}
	return report, err
}
