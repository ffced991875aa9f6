package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/etnz/tdasync/tda"
	"github.com/google/subcommands"
)

// loginCmd implements the manual OAuth flow.
type loginCmd struct{}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "grants access to the account and saves the token" }
func (*loginCmd) Usage() string {
	return `tds login

  Prints the page where access to the account is granted. Once granted, the
  browser is redirected to the redirect URI: paste that URL back to save the
  token in the token file.
`
}

func (*loginCmd) SetFlags(f *flag.FlagSet) {}

func (*loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if config.TokenFile == "" || config.RedirectURI == "" {
		fmt.Fprintln(os.Stderr, "Error: tokenFile and redirectURI are required in the secrets file")
		return subcommands.ExitFailure
	}
	client, err := tda.NewClient(tda.Config{
		APIKey:      config.APIKey,
		RedirectURI: config.RedirectURI,
		TokenFile:   config.TokenFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not create the API client: %v\n", err)
		return subcommands.ExitFailure
	}
	t, err := login(ctx, client, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Token saved to %s, the refresh token expires in %s\n", config.TokenFile, time.Duration(t.RefreshTokenExpiresIn)*time.Second)
	return subcommands.ExitSuccess
}

func login(ctx context.Context, client *tda.Client, in io.Reader, out io.Writer) (*tda.Token, error) {
	fmt.Fprintf(out, "Open this page in a browser and grant access:\n\n  %s\n\nThen paste the URL you were redirected to: ", client.AuthorizeURL())
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("cannot read the redirect url: %w", err)
		}
		return nil, fmt.Errorf("no redirect url")
	}
	code, err := tda.CodeFromRedirect(scanner.Text())
	if err != nil {
		return nil, err
	}
	return client.ExchangeCode(ctx, code)
}
