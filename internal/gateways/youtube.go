package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/vidgateway/backend/internal/logging"
	"github.com/vidgateway/backend/internal/oauth"
	"github.com/vidgateway/backend/internal/videos"
)

const (
	youtubeAPIBaseURL  = "https://www.googleapis.com/youtube/v3/"
	youtubeEmbedFormat = "https://www.youtube.com/embed/%s?wmode=transparent"
	youtubeVideoParts  = "snippet,statistics,contentDetails,status"
)

var youtubeAuthEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// youtubeVideoURLPattern matches youtube.com, www.youtube.com and youtu.be
// video URLs; the trailing capture is trimmed of legacy tracking suffixes
// afterwards.
var youtubeVideoURLPattern = regexp.MustCompile(`^https?://(?:www\.youtube\.com|youtube\.com|youtu\.be)(?:/.*)?/(?:watch\?v=)?([^/?]+)$`)

// YouTube integrates the YouTube Data API v3 behind the Gateway contract.
type YouTube struct {
	oauthc      *oauth.Coordinator
	oauthConfig *oauth2.Config
	httpClient  *http.Client
	apiBaseURL  string
	perPage     int
	list        map[string]listFunc
}

// NewYouTube constructs the YouTube gateway.
func NewYouTube(cfg Config) *YouTube {
	endpoint := cfg.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = youtubeAuthEndpoint
	}
	apiBaseURL := cfg.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = youtubeAPIBaseURL
	}

	g := &YouTube{
		oauthc: cfg.OAuth,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint:     endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/youtube",
				"https://www.googleapis.com/auth/youtube.readonly",
			},
		},
		httpClient: cfg.httpClient(),
		apiBaseURL: apiBaseURL,
		perPage:    cfg.perPage(),
	}
	g.list = map[string]listFunc{
		"uploads":  g.listUploads,
		"likes":    g.listLikes,
		"playlist": g.listPlaylist,
		"search":   g.listSearch,
	}
	return g
}

// Handle implements videos.Gateway.
func (g *YouTube) Handle() string { return "youtube" }

// Name implements videos.Gateway.
func (g *YouTube) Name() string { return "YouTube" }

// SupportsSearch implements videos.Gateway.
func (g *YouTube) SupportsSearch() bool { return true }

// OAuthConfig exposes the OAuth2 client configuration to the coordinator.
func (g *YouTube) OAuthConfig() *oauth2.Config { return g.oauthConfig }

// AuthorizationURL requests offline access and forces the consent prompt so
// Google issues a refresh token on every authorization.
func (g *YouTube) AuthorizationURL(state string) string {
	return g.oauthConfig.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// ExtractVideoID implements videos.Gateway, stripping the legacy
// "&feature=…" suffix YouTube appends after the video ID.
func (g *YouTube) ExtractVideoID(videoURL string) (string, error) {
	matches := youtubeVideoURLPattern.FindStringSubmatch(videoURL)
	if matches == nil {
		return "", fmt.Errorf("%w: %q is not a youtube video url", videos.ErrVideoIDExtract, videoURL)
	}

	videoID := matches[1]
	if idx := strings.Index(videoID, "&"); idx > 0 {
		videoID = videoID[:idx]
	}
	if videoID == "" {
		return "", fmt.Errorf("%w: %q is not a youtube video url", videos.ErrVideoIDExtract, videoURL)
	}
	return videoID, nil
}

// FetchVideoByID implements videos.Gateway.
func (g *YouTube) FetchVideoByID(ctx context.Context, videoID string) (videos.Video, error) {
	api, err := g.api(ctx)
	if err != nil {
		return videos.Video{}, err
	}

	var resp youtubeVideoListResponse
	err = api.get(ctx, "videos", url.Values{
		"part": {youtubeVideoParts},
		"id":   {videoID},
	}, &resp)
	if err != nil {
		return videos.Video{}, fmt.Errorf("%w: %w", videos.ErrVideoNotFound, err)
	}

	if len(resp.Items) != 1 {
		return videos.Video{}, fmt.Errorf("%w: youtube returned %d items for id %q", videos.ErrVideoNotFound, len(resp.Items), videoID)
	}

	video, err := parseYouTubeVideo(resp.Items[0])
	if err != nil {
		return videos.Video{}, fmt.Errorf("%w: %w", videos.ErrVideoNotFound, err)
	}
	return video, nil
}

// Videos implements videos.Gateway via the closed dispatch table.
func (g *YouTube) Videos(ctx context.Context, method string, opts videos.ListOptions) (videos.VideoPage, error) {
	return dispatch(g.list, ctx, method, opts)
}

// Explorer implements videos.Gateway. The playlists section is fetched
// independently and omitted when the auxiliary call fails, so a permission
// error there cannot blank the whole tree.
func (g *YouTube) Explorer(ctx context.Context) (videos.Explorer, error) {
	explorer := videos.Explorer{
		Sections: []videos.ExplorerSection{{
			Name: "Library",
			Collections: []videos.ExplorerCollection{
				{Name: "Uploads", Method: "uploads"},
				{Name: "Liked videos", Method: "likes"},
			},
		}},
	}

	playlists, err := g.collectionsPlaylists(ctx)
	switch {
	case err != nil:
		logging.FromContext(ctx).Warn("youtube explorer playlists unavailable", "error", err)
	case len(playlists) > 0:
		explorer.Sections = append(explorer.Sections, videos.ExplorerSection{
			Name:        "Playlists",
			Collections: playlists,
		})
	}

	return explorer, nil
}

// Account implements videos.Gateway using the authenticated user's channel.
func (g *YouTube) Account(ctx context.Context) (videos.Account, error) {
	api, err := g.api(ctx)
	if err != nil {
		return videos.Account{}, fmt.Errorf("%w: %w", videos.ErrAccountNotFound, err)
	}

	var resp struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title string `json:"title"`
			} `json:"snippet"`
		} `json:"items"`
	}
	err = api.get(ctx, "channels", url.Values{
		"part": {"snippet"},
		"mine": {"true"},
	}, &resp)
	if err != nil {
		return videos.Account{}, fmt.Errorf("%w: %w", videos.ErrAccountNotFound, err)
	}
	if len(resp.Items) == 0 {
		return videos.Account{}, fmt.Errorf("%w: no channel for authenticated user", videos.ErrAccountNotFound)
	}

	return videos.Account{ID: resp.Items[0].ID, Name: resp.Items[0].Snippet.Title}, nil
}

// EmbedURL implements videos.Gateway.
func (g *YouTube) EmbedURL(videoID string, options url.Values) string {
	return embedURL(youtubeEmbedFormat, videoID, options)
}

// LoggedIn implements videos.Gateway.
func (g *YouTube) LoggedIn(ctx context.Context) bool { return g.oauthc.LoggedIn(ctx, g) }

// Login implements videos.Gateway.
func (g *YouTube) Login(ctx context.Context, code string) error { return g.oauthc.Login(ctx, g, code) }

// Logout implements videos.Gateway.
func (g *YouTube) Logout(ctx context.Context) error { return g.oauthc.Logout(ctx, g) }

// Listing methods
// ----------------------------------------------------------------------------

// listUploads lists the authenticated channel's uploads via its special
// uploads playlist.
func (g *YouTube) listUploads(ctx context.Context, opts videos.ListOptions) (videos.VideoPage, error) {
	uploadsPlaylistID, err := g.specialPlaylistID(ctx, "uploads")
	if err != nil {
		return videos.VideoPage{}, err
	}
	if uploadsPlaylistID == "" {
		return videos.VideoPage{}, nil
	}

	return g.listPlaylistItems(ctx, uploadsPlaylistID, opts)
}

// listLikes lists videos the authenticated user rated "like".
func (g *YouTube) listLikes(ctx context.Context, opts videos.ListOptions) (videos.VideoPage, error) {
	api, err := g.api(ctx)
	if err != nil {
		return videos.VideoPage{}, err
	}

	query := g.paginationQuery(opts)
	query.Set("part", youtubeVideoParts)
	query.Set("myRating", "like")

	var resp youtubeVideoListResponse
	if err := api.get(ctx, "videos", query, &resp); err != nil {
		return videos.VideoPage{}, err
	}

	parsed, err := parseYouTubeVideos(resp.Items)
	if err != nil {
		return videos.VideoPage{}, err
	}
	return youtubePage(parsed, resp.NextPageToken), nil
}

// listPlaylist lists the videos of the playlist named by opts.ID.
func (g *YouTube) listPlaylist(ctx context.Context, opts videos.ListOptions) (videos.VideoPage, error) {
	if opts.ID == "" {
		return videos.VideoPage{}, fmt.Errorf("%w: playlist listing requires an id", videos.ErrGatewayMethodNotFound)
	}
	return g.listPlaylistItems(ctx, opts.ID, opts)
}

// listSearch resolves matching video IDs first, then batch-fetches the full
// video objects.
func (g *YouTube) listSearch(ctx context.Context, opts videos.ListOptions) (videos.VideoPage, error) {
	api, err := g.api(ctx)
	if err != nil {
		return videos.VideoPage{}, err
	}

	query := g.paginationQuery(opts)
	query.Set("part", "id")
	query.Set("type", "video")
	query.Set("q", opts.Query)

	var search struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
		NextPageToken string `json:"nextPageToken"`
	}
	if err := api.get(ctx, "search", query, &search); err != nil {
		return videos.VideoPage{}, err
	}

	videoIDs := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		videoIDs = append(videoIDs, item.ID.VideoID)
	}
	if len(videoIDs) == 0 {
		return videos.VideoPage{}, nil
	}

	parsed, err := g.videosByIDs(ctx, api, videoIDs)
	if err != nil {
		return videos.VideoPage{}, err
	}
	return youtubePage(parsed, search.NextPageToken), nil
}

// listPlaylistItems does the two-step playlist fetch: item references first,
// then the full video objects. An empty reference page short-circuits
// without issuing the second call.
func (g *YouTube) listPlaylistItems(ctx context.Context, playlistID string, opts videos.ListOptions) (videos.VideoPage, error) {
	api, err := g.api(ctx)
	if err != nil {
		return videos.VideoPage{}, err
	}

	query := g.paginationQuery(opts)
	query.Set("part", "id,snippet")
	query.Set("playlistId", playlistID)

	var items struct {
		Items []struct {
			Snippet struct {
				ResourceID struct {
					VideoID string `json:"videoId"`
				} `json:"resourceId"`
			} `json:"snippet"`
		} `json:"items"`
		NextPageToken string `json:"nextPageToken"`
	}
	if err := api.get(ctx, "playlistItems", query, &items); err != nil {
		return videos.VideoPage{}, err
	}

	videoIDs := make([]string, 0, len(items.Items))
	for _, item := range items.Items {
		videoIDs = append(videoIDs, item.Snippet.ResourceID.VideoID)
	}
	if len(videoIDs) == 0 {
		return videos.VideoPage{}, nil
	}

	parsed, err := g.videosByIDs(ctx, api, videoIDs)
	if err != nil {
		return videos.VideoPage{}, err
	}
	return youtubePage(parsed, items.NextPageToken), nil
}

func (g *YouTube) videosByIDs(ctx context.Context, api *apiClient, videoIDs []string) ([]videos.Video, error) {
	var resp youtubeVideoListResponse
	err := api.get(ctx, "videos", url.Values{
		"part": {youtubeVideoParts},
		"id":   {strings.Join(videoIDs, ",")},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return parseYouTubeVideos(resp.Items)
}

func (g *YouTube) collectionsPlaylists(ctx context.Context) ([]videos.ExplorerCollection, error) {
	api, err := g.api(ctx)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title string `json:"title"`
			} `json:"snippet"`
		} `json:"items"`
	}
	err = api.get(ctx, "playlists", url.Values{
		"part":       {"snippet"},
		"mine":       {"true"},
		"maxResults": {"50"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	collections := make([]videos.ExplorerCollection, 0, len(resp.Items))
	for _, item := range resp.Items {
		collections = append(collections, videos.ExplorerCollection{
			Name:    item.Snippet.Title,
			Method:  "playlist",
			Options: map[string]string{"id": item.ID},
		})
	}
	return collections, nil
}

// specialPlaylistID resolves the channel's related playlist of the given
// type ("uploads", "likes"). Empty when the channel has none.
func (g *YouTube) specialPlaylistID(ctx context.Context, playlistType string) (string, error) {
	api, err := g.api(ctx)
	if err != nil {
		return "", err
	}

	var resp struct {
		Items []struct {
			ContentDetails struct {
				RelatedPlaylists map[string]string `json:"relatedPlaylists"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	err = api.get(ctx, "channels", url.Values{
		"part": {"contentDetails"},
		"mine": {"true"},
	}, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Items) == 0 {
		return "", nil
	}
	return resp.Items[0].ContentDetails.RelatedPlaylists[playlistType], nil
}

func (g *YouTube) api(ctx context.Context) (*apiClient, error) {
	token, err := g.oauthc.AccessToken(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", videos.ErrAPIClientCreate, err)
	}
	return newAPIClient(g.httpClient, g.apiBaseURL, http.Header{
		"Authorization": {"Bearer " + token.AccessToken},
	}), nil
}

func (g *YouTube) paginationQuery(opts videos.ListOptions) url.Values {
	perPage := g.perPage
	if opts.PerPage > 0 {
		perPage = opts.PerPage
	}

	query := url.Values{}
	query.Set("maxResults", strconv.Itoa(perPage))
	if opts.MoreToken != "" {
		query.Set("pageToken", opts.MoreToken)
	}
	return query
}

// youtubePage applies the pagination invariant: more pages are only
// advertised when this page actually has items, even if the provider sent a
// continuation token.
func youtubePage(parsed []videos.Video, nextPageToken string) videos.VideoPage {
	return videos.VideoPage{
		Videos:    parsed,
		MoreToken: nextPageToken,
		More:      nextPageToken != "" && len(parsed) > 0,
	}
}

// Parsing
// ----------------------------------------------------------------------------

type youtubeVideoListResponse struct {
	Items         []json.RawMessage `json:"items"`
	NextPageToken string            `json:"nextPageToken"`
}

type youtubeThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type youtubeVideoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		PublishedAt  time.Time                   `json:"publishedAt"`
		ChannelID    string                      `json:"channelId"`
		ChannelTitle string                      `json:"channelTitle"`
		Title        string                      `json:"title"`
		Description  string                      `json:"description"`
		Thumbnails   map[string]youtubeThumbnail `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
	} `json:"statistics"`
	Status struct {
		PrivacyStatus string `json:"privacyStatus"`
	} `json:"status"`
}

func parseYouTubeVideos(items []json.RawMessage) ([]videos.Video, error) {
	parsed := make([]videos.Video, 0, len(items))
	for _, item := range items {
		video, err := parseYouTubeVideo(item)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, video)
	}
	return parsed, nil
}

// parseYouTubeVideo normalizes one raw video item. It is a pure function of
// the payload bytes.
func parseYouTubeVideo(raw json.RawMessage) (videos.Video, error) {
	var item youtubeVideoItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return videos.Video{}, fmt.Errorf("decode youtube video: %w", err)
	}
	var rawMap map[string]any
	if err := json.Unmarshal(raw, &rawMap); err != nil {
		return videos.Video{}, fmt.Errorf("decode youtube video: %w", err)
	}

	duration, err := parseISO8601Duration(item.ContentDetails.Duration)
	if err != nil {
		return videos.Video{}, fmt.Errorf("parse youtube duration: %w", err)
	}

	playCount, _ := strconv.Atoi(item.Statistics.ViewCount)

	return videos.Video{
		ID:            item.ID,
		Title:         item.Snippet.Title,
		Description:   item.Snippet.Description,
		Duration:      duration,
		PublishedAt:   item.Snippet.PublishedAt,
		URL:           "http://youtu.be/" + item.ID,
		GatewayHandle: "youtube",
		Private:       item.Status.PrivacyStatus == "private",
		Author: videos.VideoAuthor{
			Name: item.Snippet.ChannelTitle,
			URL:  "http://youtube.com/channel/" + item.Snippet.ChannelID,
		},
		Thumbnail: youtubeThumbnailSources(item.Snippet.Thumbnails),
		Statistic: videos.VideoStatistic{PlayCount: playCount},
		Raw:       rawMap,
	}, nil
}

// youtubeThumbnailSources picks the maxres variant when present, otherwise
// the widest entry; the smallest entry is kept for low-bandwidth callers.
func youtubeThumbnailSources(thumbnails map[string]youtubeThumbnail) videos.VideoThumbnail {
	var result videos.VideoThumbnail

	largestWidth, smallestWidth := 0, 0
	for name, thumbnail := range thumbnails {
		if name == "maxres" {
			continue
		}
		if thumbnail.Width > largestWidth {
			result.LargestSourceURL = thumbnail.URL
			largestWidth = thumbnail.Width
		}
		if smallestWidth == 0 || thumbnail.Width < smallestWidth {
			result.SmallestSourceURL = thumbnail.URL
			smallestWidth = thumbnail.Width
		}
	}

	if maxres, ok := thumbnails["maxres"]; ok {
		result.LargestSourceURL = maxres.URL
		if result.SmallestSourceURL == "" {
			result.SmallestSourceURL = maxres.URL
		}
	}

	return result
}

var iso8601DurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISO8601Duration converts durations like "PT4M11S" or "P1DT2H" into a
// time.Duration. YouTube never emits month or year components.
func parseISO8601Duration(value string) (time.Duration, error) {
	matches := iso8601DurationPattern.FindStringSubmatch(value)
	if matches == nil {
		return 0, fmt.Errorf("invalid iso 8601 duration %q", value)
	}

	var total time.Duration
	for i, unit := range []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second} {
		if matches[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(matches[i+1])
		if err != nil {
			return 0, fmt.Errorf("invalid iso 8601 duration %q", value)
		}
		total += time.Duration(n) * unit
	}
	return total, nil
}
