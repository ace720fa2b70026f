package videos

import (
	"errors"
	"fmt"
)

var (
	// ErrGatewayNotFound indicates no registered gateway matches a handle.
	ErrGatewayNotFound = errors.New("gateway not found")
	// ErrGatewayMethodNotFound indicates a listing method name that the
	// gateway does not support.
	ErrGatewayMethodNotFound = errors.New("gateway method not found")
	// ErrVideoNotFound indicates a fetch or parse failure, or a response
	// that did not contain exactly one video.
	ErrVideoNotFound = errors.New("video not found")
	// ErrVideoIDExtract indicates a URL that matches none of the gateway's
	// known video URL shapes.
	ErrVideoIDExtract = errors.New("video id extract failed")
	// ErrAPIClientCreate indicates the authenticated API client could not be
	// built, almost always because no usable access token exists.
	ErrAPIClientCreate = errors.New("api client create failed")
	// ErrAccountNotFound indicates the resource owner could not be resolved.
	ErrAccountNotFound = errors.New("oauth account not found")
)

// APIResponseError reports a non-success response or an error envelope
// returned by a provider API.
type APIResponseError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api response error: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("api response error: status %d", e.StatusCode)
}
