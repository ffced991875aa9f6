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
	"github.com/etnz/tdasync/tda"
	"github.com/google/subcommands"
)

// syncCmd holds the flags for the 'sync' subcommand.
type syncCmd struct {
	typ     string
	symbol  string
	maxGap  int
	noRetry bool
	raw     bool
}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "downloads new transactions into the store" }
func (*syncCmd) Usage() string {
	return `tds sync [-type <type>] [-symbol <symbol>] [-max-gap <months>] [-no-retry] [-raw]

  Downloads the transactions of the account into the store.

  An empty store is filled from the current month backward, until max-gap
  consecutive months without transactions. Otherwise the store is updated
  from its latest transaction up to now.
`
}

func (c *syncCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "", "Transaction type to download (ALL, TRADE, DIVIDEND, ...). Defaults to the settings.")
	f.StringVar(&c.symbol, "symbol", "", "Only download transactions of this symbol. Defaults to the settings.")
	f.IntVar(&c.maxGap, "max-gap", 0, "Consecutive empty months ending a backward scan. Defaults to the settings.")
	f.BoolVar(&c.noRetry, "no-retry", false, "Do not retry failed requests")
	f.BoolVar(&c.raw, "raw", false, "Print the raw markdown report")
}

func (c *syncCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	q, maxGap, err := c.query(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	client, err := tda.NewClient(tda.Config{
		APIKey:      config.APIKey,
		RedirectURI: config.RedirectURI,
		TokenFile:   config.TokenFile,
		CacheDir:    config.CacheDir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not create the API client: %v. Use the apiKey secret or %s environment variable\n", err, tdaAPIKey)
		return subcommands.ExitFailure
	}
	var fetcher tdasync.Fetcher = client
	if !c.noRetry {
		fetcher = tdasync.Retry(client, tdasync.DefaultRetryPolicy)
	}

	db, err := store.Open(ctx, store.Config{DataSourceName: "file:" + config.Database, Table: config.Table})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open the store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	sink := &tallySink{Store: db}
	syncer := tdasync.Syncer{Fetcher: fetcher, Store: sink, Query: q, MaxGap: maxGap}
	report, err := syncer.Run(ctx, time.Now().UTC())
	printMarkdown(renderer.RenderSync(renderer.NewSync(report, &sink.totals, config.Currency, err)), c.raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// query merges the flags and the settings.
func (c *syncCmd) query(config *Config) (q tdasync.Query, maxGap int, err error) {
	if config.AccountNumber == "" {
		return q, 0, fmt.Errorf("missing accountNumber in the secrets file %q", *secretsFile)
	}
	typ := config.Type
	if c.typ != "" {
		typ = c.typ
	}
	q.Type, err = tdasync.ParseTransactionType(typ)
	if err != nil {
		return q, 0, err
	}
	q.AccountID = string(config.AccountNumber)
	q.Symbol = config.Symbol
	if c.symbol != "" {
		q.Symbol = c.symbol
	}
	maxGap = config.MaxGap
	if c.maxGap != 0 {
		maxGap = c.maxGap
	}
	if maxGap < 0 {
		return q, 0, fmt.Errorf("invalid max gap %d: must be positive", maxGap)
	}
	return q, maxGap, nil
}

// tallySink accounts for the records that were new to the store.
type tallySink struct {
	*store.Store
	totals renderer.Totals
}

func (s *tallySink) Persist(ctx context.Context, b tdasync.Batch) error {
	inserted, err := s.Store.Insert(ctx, b)
	if err != nil {
		return err
	}
	for _, f := range inserted {
		s.totals.Add(f)
	}
	return nil
}
