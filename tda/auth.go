package tda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/etnz/tdasync"
)

// AuthorizeURL returns the page where the account owner grants access to the
// application. The browser is then redirected to the redirect URI with a
// "code" query parameter.
func (c *Client) AuthorizeURL() string {
	v := url.Values{}
	v.Set("response_type", "code")
	v.Set("redirect_uri", c.config.RedirectURI)
	v.Set("client_id", c.clientID())
	return c.config.AuthURL + "/auth?" + v.Encode()
}

// CodeFromRedirect extracts the authorization code from the URL the browser
// was redirected to.
func CodeFromRedirect(redirected string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(redirected))
	if err != nil {
		return "", fmt.Errorf("invalid redirect url: %w", err)
	}
	code := u.Query().Get("code")
	if code == "" {
		return "", fmt.Errorf("no code in redirect url %q", redirected)
	}
	return code, nil
}

// ExchangeCode trades an authorization code for a token, saves it to the
// token file, and uses it for the next requests.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	v := url.Values{}
	v.Set("grant_type", "authorization_code")
	v.Set("access_type", "offline")
	v.Set("code", code)
	v.Set("client_id", c.clientID())
	v.Set("redirect_uri", c.config.RedirectURI)
	t, err := c.postToken(ctx, v)
	if err != nil {
		return nil, err
	}
	c.token = t
	return t, SaveToken(c.config.TokenFile, t, c.now())
}

// refresh renews the access token with the refresh token, and saves it.
func (c *Client) refresh(ctx context.Context) error {
	if c.token == nil || c.token.RefreshToken == "" {
		return tdasync.NewFetchError("refresh token", false, fmt.Errorf("no refresh token, please run 'tds login' first"))
	}
	log.Println("renewing access token")
	v := url.Values{}
	v.Set("grant_type", "refresh_token")
	v.Set("refresh_token", c.token.RefreshToken)
	v.Set("client_id", c.clientID())
	t, err := c.postToken(ctx, v)
	if err != nil {
		return err
	}
	if t.RefreshToken == "" {
		// only a new access token is issued.
		t.RefreshToken = c.token.RefreshToken
		t.RefreshTokenExpiresIn = c.token.RefreshTokenExpiresIn
	}
	c.token = t
	return SaveToken(c.config.TokenFile, t, c.now())
}

// ensureToken makes sure a valid access token is available.
func (c *Client) ensureToken(ctx context.Context) error {
	if c.token.Valid(c.now()) {
		return nil
	}
	return c.refresh(ctx)
}

func (c *Client) postToken(ctx context.Context, form url.Values) (*Token, error) {
	const op = "POST token"
	uri := c.config.BaseURL + "/v1/oauth2/token"
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, tdasync.NewFetchError(op, false, fmt.Errorf("cannot create http request %q: %w", uri, err))
	}
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(r)
	if err != nil {
		return nil, tdasync.NewFetchError(op, true, fmt.Errorf("cannot execute http request: %w", err))
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tdasync.NewFetchError(op, true, fmt.Errorf("cannot read receiving http body: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, tdasync.NewFetchError(op, retryableStatus(resp.StatusCode), fmt.Errorf("cannot obtain token: %s: %.200s", resp.Status, body))
	}
	var t Token
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, tdasync.NewFetchError(op, false, fmt.Errorf("could not decode token json: %w", err))
	}
	t.received(c.now())
	return &t, nil
}

// clientID is the API key in the form expected by the OAuth endpoints.
func (c *Client) clientID() string {
	if strings.Contains(c.config.APIKey, "@") {
		return c.config.APIKey
	}
	return c.config.APIKey + "@AMER.OAUTHAP"
}
