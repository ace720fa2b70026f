package oauth

import (
	"time"

	"golang.org/x/oauth2"
)

// Token is the persisted credential set for one gateway. A token without an
// access token string is invalid and is never handed to a caller; it means
// "not connected".
type Token struct {
	AccessToken     string         `json:"accessToken"`
	Expiry          *time.Time     `json:"expires,omitempty"`
	RefreshToken    string         `json:"refreshToken,omitempty"`
	ResourceOwnerID string         `json:"resourceOwnerId,omitempty"`
	Values          map[string]any `json:"values,omitempty"`
}

// Valid reports whether the token carries an access token string.
func (t Token) Valid() bool {
	return t.AccessToken != ""
}

// Expired reports whether the token is past its expiry. Tokens without an
// expiry never expire.
func (t Token) Expired(now time.Time) bool {
	return t.Expiry != nil && !now.Before(*t.Expiry)
}

// Refreshable reports whether an expired token can be renewed via the
// refresh grant.
func (t Token) Refreshable() bool {
	return t.RefreshToken != ""
}

func fromOAuth2Token(tok *oauth2.Token) Token {
	t := Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry.UTC()
		t.Expiry = &expiry
	}
	return t
}
