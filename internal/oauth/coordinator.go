package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// TokenStore persists one token per gateway handle.
type TokenStore interface {
	Find(ctx context.Context, gatewayHandle string) (Token, error)
	Save(ctx context.Context, gatewayHandle string, token Token) error
	Delete(ctx context.Context, gatewayHandle string) error
}

// Provider is the slice of a gateway the coordinator needs: its handle and
// its OAuth2 client configuration.
type Provider interface {
	Handle() string
	OAuthConfig() *oauth2.Config
}

// Coordinator orchestrates the OAuth token lifecycle for all gateways:
// authorization-code login, refresh-on-read, and deletion on logout.
type Coordinator struct {
	tokens TokenStore
	now    func() time.Time
}

// NewCoordinator constructs a Coordinator over the given store.
func NewCoordinator(tokens TokenStore) *Coordinator {
	return &Coordinator{tokens: tokens, now: time.Now}
}

// AccessToken produces a usable access token for the provider, refreshing
// and persisting it when it is expired and refreshable. Every failure on
// this path surfaces as ErrAccessTokenNotFound with the cause preserved.
//
// An expired token without a refresh token is returned as-is; whether it
// still works is the provider's call, and the API response reports the
// rejection when it does not.
//
// Concurrent callers racing on the same expired token each refresh
// independently; the last persisted token wins. Both supported providers
// keep the previous refresh token usable during that window, so the race is
// tolerated rather than locked away.
func (c *Coordinator) AccessToken(ctx context.Context, provider Provider) (Token, error) {
	token, err := c.tokens.Find(ctx, provider.Handle())
	if err != nil {
		return Token{}, fmt.Errorf("%w: %w", ErrAccessTokenNotFound, err)
	}

	if !token.Valid() {
		return Token{}, fmt.Errorf("%w: %w", ErrAccessTokenNotFound, ErrTokenInvalid)
	}

	if token.Refreshable() && token.Expired(c.now()) {
		refreshed, err := c.refresh(ctx, provider, token)
		if err != nil {
			return Token{}, fmt.Errorf("%w: %w", ErrAccessTokenNotFound, err)
		}
		return refreshed, nil
	}

	return token, nil
}

// refresh performs the refresh grant and persists the result. Providers may
// omit the refresh token from refresh responses; the original one is kept in
// that case so the connection stays renewable.
func (c *Coordinator) refresh(ctx context.Context, provider Provider, token Token) (Token, error) {
	source := provider.OAuthConfig().TokenSource(ctx, &oauth2.Token{
		RefreshToken: token.RefreshToken,
	})

	fresh, err := source.Token()
	if err != nil {
		return Token{}, fmt.Errorf("%w: %w", ErrRefreshAccessToken, err)
	}

	refreshed := fromOAuth2Token(fresh)
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = token.RefreshToken
	}
	refreshed.ResourceOwnerID = token.ResourceOwnerID
	refreshed.Values = token.Values

	if err := c.tokens.Save(ctx, provider.Handle(), refreshed); err != nil {
		return Token{}, fmt.Errorf("%w: %w", ErrSaveAccessToken, err)
	}

	return refreshed, nil
}

// Login exchanges an authorization code for a token and persists it.
func (c *Coordinator) Login(ctx context.Context, provider Provider, code string) error {
	exchanged, err := provider.OAuthConfig().Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLogin, err)
	}

	if err := c.tokens.Save(ctx, provider.Handle(), fromOAuth2Token(exchanged)); err != nil {
		return fmt.Errorf("%w: %w", ErrLogin, err)
	}

	return nil
}

// Logout deletes the persisted token. Logging out a gateway that has no
// token is a success; logout is idempotent.
func (c *Coordinator) Logout(ctx context.Context, provider Provider) error {
	if err := c.tokens.Delete(ctx, provider.Handle()); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrLogout, err)
	}
	return nil
}

// LoggedIn reports whether a usable access token can be produced. It exists
// to drive connection status and registry filtering; every failure collapses
// to false.
func (c *Coordinator) LoggedIn(ctx context.Context, provider Provider) bool {
	_, err := c.AccessToken(ctx, provider)
	return err == nil
}
