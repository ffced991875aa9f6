package renderer

import (
	"slices"
	"strings"
	"time"

	"github.com/etnz/tdasync"
	"github.com/etnz/tdasync/record"
	"github.com/shopspring/decimal"
)

// Sync is the view of a synchronization run.
type Sync struct {
	Account   string
	Direction string
	Now       string
	Windows   []Window
	Records   int // fetched
	New       int // not stored before
	Empty     int
	Types     []TypeTotal
	Net       string
	Error     string
}

// Window is one row of the visited windows.
type Window struct {
	Start, End string
	Records    int
}

// TypeTotal sums the records of a transaction type.
type TypeTotal struct {
	Type  string
	Count int
	Net   string
}

// Totals accumulates the fields of the records new to the store.
type Totals struct {
	count map[string]int
	net   map[string]decimal.Decimal
	n     int
}

// Add accounts for a record.
func (t *Totals) Add(f record.Fields) {
	if t.count == nil {
		t.count = make(map[string]int)
		t.net = make(map[string]decimal.Decimal)
	}
	typ := f.Type
	if typ == "" {
		typ = "UNKNOWN"
	}
	t.n++
	t.count[typ]++
	t.net[typ] = t.net[typ].Add(f.NetAmount)
}

// NewSync builds the view of a report. totals may be nil, err is the error
// that ended the run if any.
func NewSync(r *tdasync.Report, totals *Totals, currency string, err error) *Sync {
	s := &Sync{
		Account:   r.Account,
		Direction: r.Direction.String(),
		Now:       r.Now.Format(time.DateTime),
		Records:   r.Records(),
		Empty:     r.Empty(),
	}
	for _, w := range r.Windows {
		s.Windows = append(s.Windows, Window{
			Start:   w.Window.Start.Format(time.DateTime),
			End:     w.Window.End.Format(time.DateTime),
			Records: w.Records,
		})
	}
	if err != nil {
		s.Error = err.Error()
	}
	if totals == nil {
		return s
	}
	s.New = totals.n

	var net decimal.Decimal
	for typ, n := range totals.count {
		s.Types = append(s.Types, TypeTotal{Type: typ, Count: n, Net: formatMoney(totals.net[typ], currency)})
		net = net.Add(totals.net[typ])
	}
	slices.SortFunc(s.Types, func(a, b TypeTotal) int { return strings.Compare(a.Type, b.Type) })
	s.Net = formatMoney(net, currency)
	return s
}

// Status is the view of the store state.
type Status struct {
	Store    string
	Records  int
	Latest   string // empty when the store is empty.
	NextScan string
}
