package tda

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Token is an OAuth token of the brokerage API.
type Token struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	TokenType             string `json:"token_type,omitempty"`
	Scope                 string `json:"scope,omitempty"`
	ExpiresIn             int64  `json:"expires_in,omitempty"`               // seconds, as received.
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in,omitempty"` // seconds, as received.
	ExpiresAt             int64  `json:"expires_at"`                         // unix time of the access token expiry.
}

// tokenFile is the content of the token file.
type tokenFile struct {
	CreationTimestamp int64 `json:"creation_timestamp"`
	Token             Token `json:"token"`
}

// expiryMargin renews access tokens a little before they expire.
const expiryMargin = time.Minute

// Valid reports whether the access token can still be used at now.
func (t *Token) Valid(now time.Time) bool {
	return t != nil && t.AccessToken != "" && now.Add(expiryMargin).Before(time.Unix(t.ExpiresAt, 0))
}

// received sets the absolute expiry of a token just received from the API.
func (t *Token) received(now time.Time) {
	if t.ExpiresIn > 0 {
		t.ExpiresAt = now.Unix() + t.ExpiresIn
	}
}

// LoadToken reads a token file.
func LoadToken(filename string) (*Token, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("token file not found, please run 'tds login' first: %w", err)
	}
	var f tokenFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("could not decode token file %q: %w", filename, err)
	}
	if f.Token.RefreshToken == "" && f.Token.AccessToken == "" {
		return nil, fmt.Errorf("token file %q contains no token", filename)
	}
	return &f.Token, nil
}

// SaveToken writes the token file, readable by the owner only.
func SaveToken(filename string, t *Token, now time.Time) error {
	data, err := json.MarshalIndent(tokenFile{CreationTimestamp: now.Unix(), Token: *t}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("cannot write token file %q: %w", filename, err)
	}
	return nil
}
