// Package tda is a client of the TD Ameritrade transaction history API.
//
// It implements tdasync.Fetcher: a window of time is queried as the range of
// days that covers it, and the returned records are kept raw.
package tda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/etnz/tdasync"
	"github.com/etnz/tdasync/date"
)

// Default endpoints.
const (
	DefaultBaseURL = "https://api.tdameritrade.com"
	DefaultAuthURL = "https://auth.tdameritrade.com"
)

// Config of a Client.
type Config struct {
	APIKey      string // consumer key of the application.
	RedirectURI string // must match the one registered with the API key.
	TokenFile   string // where the OAuth token is read from, and renewed tokens are written to.
	// CacheDir keeps responses of windows that ended before today, empty to
	// disable. Those responses cannot change anymore.
	CacheDir string
	BaseURL  string // DefaultBaseURL if empty.
	AuthURL  string // DefaultAuthURL if empty.
	Timeout  time.Duration
}

// Client of the brokerage API.
type Client struct {
	config Config
	http   *http.Client
	token  *Token
	now    func() time.Time
}

// Compile-time check to ensure Client satisfies the Fetcher interface
var _ tdasync.Fetcher = (*Client)(nil)

// NewClient returns a client. The token file is read if it exists: it is only
// optional for the login flow.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("an API key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.AuthURL == "" {
		config.AuthURL = DefaultAuthURL
	}
	if config.Timeout == 0 {
		config.Timeout = time.Minute
	}
	c := &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		now:    time.Now,
	}
	if config.CacheDir != "" {
		c.http.Transport = &diskCache{base: http.DefaultTransport, dir: config.CacheDir, today: func() date.Date { return date.Of(c.now()) }}
	}
	if config.TokenFile != "" {
		t, err := LoadToken(config.TokenFile)
		if err != nil {
			log.Printf("no usable token yet: %v", err)
		} else {
			c.token = t
		}
	}
	return c, nil
}

// FetchTransactions returns the transactions of the account in the days covering w.
func (c *Client) FetchTransactions(ctx context.Context, q tdasync.Query, w tdasync.Window) (tdasync.Batch, error) {
	const op = "GET transactions"
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}
	days := date.Covering(w.Start, w.End)

	v := url.Values{}
	v.Set("type", string(q.Type))
	if q.Type == "" {
		v.Set("type", string(tdasync.AllTransactions))
	}
	if q.Symbol != "" {
		v.Set("symbol", q.Symbol)
	}
	v.Set("startDate", days.From.String())
	v.Set("endDate", days.To.String())
	uri := c.config.BaseURL + "/v1/accounts/" + url.PathEscape(q.AccountID) + "/transactions?" + v.Encode()

	r, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, tdasync.NewFetchError(op, false, fmt.Errorf("cannot create http request %q: %w", uri, err))
	}
	r.Header.Set("Authorization", "Bearer "+c.token.AccessToken)
	r.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(r)
	if err != nil {
		return nil, tdasync.NewFetchError(op, true, fmt.Errorf("cannot execute http request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tdasync.NewFetchError(op, true, fmt.Errorf("cannot read receiving http body: %w", err))
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// the token was revoked or expired early: renew it on the next attempt.
		c.token.ExpiresAt = 0
		return nil, tdasync.NewFetchError(op, true, fmt.Errorf("unauthorized for %s: %.200s", days, body))
	case resp.StatusCode != http.StatusOK:
		return nil, tdasync.NewFetchError(op, retryableStatus(resp.StatusCode), fmt.Errorf("cannot http GET transactions for %s: %v: %.200s", days, resp.Status, body))
	}

	var batch tdasync.Batch
	if err := json.Unmarshal(body, &batch); err != nil {
		log.Printf("json=```\n\n%.500s\n\n```", body)
		return nil, tdasync.NewFetchError(op, false, fmt.Errorf("could not decode transactions json: %w", err))
	}
	return batch, nil
}

// retryableStatus reports whether a request failing with status may succeed later.
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
