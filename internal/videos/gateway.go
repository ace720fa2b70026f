package videos

import (
	"context"
	"net/url"
)

// Gateway is the uniform contract a video provider adapter implements.
// Handles are lower-case short names ("youtube", "vimeo") and act as the
// primary key for registry lookups, token records and cache keys.
type Gateway interface {
	// Handle returns the gateway's lower-case identifier.
	Handle() string
	// Name returns the provider's display name.
	Name() string
	// SupportsSearch reports whether the search listing method is available.
	SupportsSearch() bool

	// AuthorizationURL builds the provider authorization URL, including the
	// provider-specific scope and extra authorization parameters.
	AuthorizationURL(state string) string
	// LoggedIn reports whether a usable (valid or refreshable) token exists.
	// All failures collapse to false.
	LoggedIn(ctx context.Context) bool
	// Login exchanges an authorization code for a token and persists it.
	Login(ctx context.Context, code string) error
	// Logout deletes the persisted token. Logging out while disconnected is
	// a no-op success.
	Logout(ctx context.Context) error
	// Account resolves the OAuth resource owner behind the connection.
	Account(ctx context.Context) (Account, error)

	// ExtractVideoID pulls the provider video ID out of a video URL,
	// stripping provider tracking suffixes. Fails with ErrVideoIDExtract
	// when the URL matches none of the provider's shapes.
	ExtractVideoID(videoURL string) (string, error)
	// FetchVideoByID retrieves and parses a single video.
	FetchVideoByID(ctx context.Context, videoID string) (Video, error)
	// Videos dispatches to the named listing method. Unknown names fail with
	// ErrGatewayMethodNotFound before any network call.
	Videos(ctx context.Context, method string, opts ListOptions) (VideoPage, error)
	// Explorer assembles the browsable collection tree. Sections whose
	// auxiliary fetch fails are omitted rather than failing the whole tree.
	Explorer(ctx context.Context) (Explorer, error)
	// EmbedURL renders the provider embed URL for a video ID, merging the
	// given query options into the provider's embed format.
	EmbedURL(videoID string, options url.Values) string
}
