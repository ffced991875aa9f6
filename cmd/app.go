// Package cmd implements the CLI application to synchronize a brokerage
// account history.
package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/etnz/tdasync"
	"github.com/etnz/tdasync/store"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&syncCmd{}, "transactions")
	c.Register(&statusCmd{}, "transactions")
	c.Register(&loginCmd{}, "account")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var settingsFile = flag.String("settings", "settings.json", "Path to the JSON settings file")
var secretsFile = flag.String("secrets", "secrets.json", "Path to the JSON secrets file, relative to the settings file directory")

const tdaAPIKey = "TDA_API_KEY"

// Settings holds the non sensitive options.
type Settings struct {
	Database string `json:"database"` // sqlite file
	Table    string `json:"table"`
	MaxGap   int    `json:"maxGap"`
	CacheDir string `json:"cacheDir"` // empty to disable the cache
	Currency string `json:"currency"`
	Type     string `json:"type"`
	Symbol   string `json:"symbol"`
}

// Secrets holds the account credentials.
type Secrets struct {
	TokenFile     string        `json:"tokenFile"`
	APIKey        string        `json:"apiKey"`
	RedirectURI   string        `json:"redirectURI"`
	AccountNumber AccountNumber `json:"accountNumber"`
}

// AccountNumber is written in the secrets file either as a JSON string or
// as a JSON number.
type AccountNumber string

func (a *AccountNumber) UnmarshalJSON(data []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch v := v.(type) {
	case string:
		*a = AccountNumber(v)
	case json.Number:
		if _, err := strconv.ParseUint(v.String(), 10, 64); err != nil {
			return fmt.Errorf("invalid account number %s: must be an integer", v)
		}
		*a = AccountNumber(v.String())
	case nil:
		*a = ""
	default:
		return fmt.Errorf("invalid account number %s: want a string or a number", data)
	}
	return nil
}

// Config is the resolved configuration of the application.
type Config struct {
	Settings
	Secrets
}

// defaultSettings are used for any missing setting.
var defaultSettings = Settings{
	Database: "tda.db",
	Table:    store.DefaultTable,
	MaxGap:   tdasync.DefaultMaxGap,
	Currency: "USD",
	Type:     string(tdasync.AllTransactions),
}

// LoadConfig reads the settings and secrets files.
//
// A missing settings file means default settings. Relative paths found in
// the files are resolved against the directory of the settings file. The
// TDA_API_KEY environment variable overrides the API key of the secrets file.
func LoadConfig(settingsPath, secretsPath string) (*Config, error) {
	dir := filepath.Dir(settingsPath)
	c := &Config{Settings: defaultSettings}

	err := decodeJSON(settingsPath, &c.Settings)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning, settings file %q does not exist, using default settings instead", settingsPath)
	} else if err != nil {
		return nil, err
	}
	if err := decodeJSON(resolve(dir, secretsPath), &c.Secrets); err != nil {
		return nil, err
	}
	if key := os.Getenv(tdaAPIKey); key != "" {
		c.APIKey = key
	}

	c.Database = resolve(dir, c.Database)
	c.CacheDir = resolve(dir, c.CacheDir)
	c.TokenFile = resolve(dir, c.TokenFile)
	if c.MaxGap < 0 {
		return nil, fmt.Errorf("invalid maxGap %d in %q: must be positive", c.MaxGap, settingsPath)
	}
	return c, nil
}

func decodeJSON(filename string, v any) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cannot decode %q: %w", filename, err)
	}
	return nil
}

// resolve returns path relative to dir, unless it is empty or absolute.
func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// loadConfig loads the configuration from the global flags.
func loadConfig() (*Config, error) {
	return LoadConfig(*settingsFile, *secretsFile)
}
