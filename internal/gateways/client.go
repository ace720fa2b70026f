// Package gateways implements the provider adapters behind the
// videos.Gateway contract. Each gateway builds its authenticated API client
// explicitly per call from the OAuth coordinator's token; there is no hidden
// lazily initialized client state.
package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vidgateway/backend/internal/oauth"
	"github.com/vidgateway/backend/internal/videos"

	"golang.org/x/oauth2"
)

// Config carries the externally resolved settings a gateway needs: OAuth
// client credentials, page size, the shared HTTP client, and the token
// coordinator. APIBaseURL and Endpoint override the provider defaults and
// exist for tests pointing at fixture servers.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	VideosPerPage int
	HTTPClient    *http.Client
	OAuth         *oauth.Coordinator

	APIBaseURL string
	Endpoint   oauth2.Endpoint
}

const defaultVideosPerPage = 30

func (c Config) perPage() int {
	if c.VideosPerPage > 0 {
		return c.VideosPerPage
	}
	return defaultVideosPerPage
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// apiClient issues authenticated GET requests against one provider API.
type apiClient struct {
	baseURL string
	headers http.Header
	http    *http.Client
}

func newAPIClient(httpClient *http.Client, baseURL string, headers http.Header) *apiClient {
	return &apiClient{
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
		headers: headers,
		http:    httpClient,
	}
}

// get performs a GET request and decodes the JSON response into the given
// destination after checking the provider error envelope.
func (c *apiClient) get(ctx context.Context, path string, query url.Values, into any) error {
	requestURL := c.baseURL + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	for key, values := range c.headers {
		req.Header[key] = values
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response %s: %w", path, err)
	}

	if err := checkResponse(resp.StatusCode, body); err != nil {
		return err
	}

	if into == nil {
		return nil
	}
	if err := json.Unmarshal(body, into); err != nil {
		return &videos.APIResponseError{StatusCode: resp.StatusCode, Message: "malformed response body"}
	}
	return nil
}

// checkResponse inspects the provider error envelope. YouTube reports
// errors as an object with code and message, Vimeo as a plain string; both
// are surfaced as APIResponseError, as are non-success statuses without a
// parseable envelope.
func checkResponse(statusCode int, body []byte) error {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		if statusCode >= http.StatusBadRequest {
			return &videos.APIResponseError{StatusCode: statusCode}
		}
		return &videos.APIResponseError{StatusCode: statusCode, Message: "malformed response body"}
	}

	if len(envelope.Error) > 0 && string(envelope.Error) != "null" {
		apiErr := &videos.APIResponseError{StatusCode: statusCode}

		var message string
		if json.Unmarshal(envelope.Error, &message) == nil {
			apiErr.Message = message
			return apiErr
		}

		var detail struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(envelope.Error, &detail) == nil {
			apiErr.Code = detail.Code
			apiErr.Message = detail.Message
		}
		return apiErr
	}

	if statusCode >= http.StatusBadRequest {
		return &videos.APIResponseError{StatusCode: statusCode}
	}
	return nil
}

// embedURL renders an embed format like "https://host/embed/%s?x=y" with the
// video ID and merges extra query options into the format's own parameters.
func embedURL(format, videoID string, options url.Values) string {
	parsed, err := url.Parse(fmt.Sprintf(format, videoID))
	if err != nil {
		return fmt.Sprintf(format, videoID)
	}

	query := parsed.Query()
	for key, values := range options {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

// listFunc is one entry of a gateway's closed listing dispatch table.
type listFunc func(ctx context.Context, opts videos.ListOptions) (videos.VideoPage, error)

func dispatch(table map[string]listFunc, ctx context.Context, method string, opts videos.ListOptions) (videos.VideoPage, error) {
	fn, ok := table[method]
	if !ok {
		return videos.VideoPage{}, fmt.Errorf("%w: %q", videos.ErrGatewayMethodNotFound, method)
	}
	return fn(ctx, opts)
}
