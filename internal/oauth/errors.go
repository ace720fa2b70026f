package oauth

import "errors"

var (
	// ErrTokenNotFound indicates no token record exists for a gateway.
	ErrTokenNotFound = errors.New("oauth token not found")
	// ErrTokenInvalid indicates a persisted token without an access token
	// string.
	ErrTokenInvalid = errors.New("oauth token invalid")
	// ErrTokenSave indicates the token record could not be written.
	ErrTokenSave = errors.New("oauth token save failed")
	// ErrTokenDelete indicates the token record could not be deleted.
	ErrTokenDelete = errors.New("oauth token delete failed")

	// ErrAccessTokenNotFound indicates no usable access token could be
	// produced for a gateway, whatever the underlying reason.
	ErrAccessTokenNotFound = errors.New("oauth access token not found")
	// ErrRefreshAccessToken indicates the refresh grant failed.
	ErrRefreshAccessToken = errors.New("oauth access token refresh failed")
	// ErrSaveAccessToken indicates a freshly obtained token could not be
	// persisted.
	ErrSaveAccessToken = errors.New("oauth access token save failed")
	// ErrLogin indicates the authorization-code exchange failed.
	ErrLogin = errors.New("oauth login failed")
	// ErrLogout indicates the persisted token could not be deleted.
	ErrLogout = errors.New("oauth logout failed")
)
