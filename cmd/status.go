package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/tdasync"
	"github.com/etnz/tdasync/renderer"
	"github.com/etnz/tdasync/store"
	"github.com/google/subcommands"
)

type statusCmd struct {
	raw bool
}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "shows the store state and the next synchronization" }
func (*statusCmd) Usage() string {
	return `tds status [-raw]

  Shows the number of stored transactions, the latest one, and what the next
  synchronization will do.
`
}

func (c *statusCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "Print the raw markdown report")
}

func (c *statusCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	db, err := store.Open(ctx, store.Config{DataSourceName: "file:" + config.Database, Table: config.Table})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open the store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	status, err := newStatus(ctx, db, config.Database, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderStatus(status), c.raw)
	return subcommands.ExitSuccess
}

func newStatus(ctx context.Context, db *store.Store, name string, now time.Time) (*renderer.Status, error) {
	n, err := db.Count(ctx)
	if err != nil {
		return nil, err
	}
	s := &renderer.Status{Store: name, Records: n}
	latest, ok, err := db.LatestTransactionTimestamp(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		s.Latest = tdasync.CanonicalTimestamp(latest)
	}
	d, err := tdasync.Plan(ctx, db, now)
	if err != nil {
		return nil, err
	}
	s.NextScan = d.String()
	return s, nil
}
