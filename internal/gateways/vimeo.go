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
	vimeoAPIBaseURL  = "https://api.vimeo.com/"
	vimeoEmbedFormat = "https://player.vimeo.com/video/%s"

	// vimeoAcceptHeader pins the API version; without it Vimeo serves
	// whatever its current default is.
	vimeoAcceptHeader = "application/vnd.vimeo.*+json;version=3.0"

	vimeoVideoFields = "created_time,description,duration,height,link,name,pictures,privacy,stats,uri,user,width"
)

var vimeoAuthEndpoint = oauth2.Endpoint{
	AuthURL:  "https://api.vimeo.com/oauth/authorize",
	TokenURL: "https://api.vimeo.com/oauth/access_token",
}

var vimeoVideoURLPattern = regexp.MustCompile(`^https?://(?:www\.)?vimeo\.com/(\d+)`)

// vimeoPrivateViews are the privacy.view values that hide a video from the
// public.
var vimeoPrivateViews = map[string]struct{}{
	"nobody":   {},
	"contacts": {},
	"password": {},
	"users":    {},
	"disable":  {},
}

// Vimeo integrates the Vimeo API behind the Gateway contract.
type Vimeo struct {
	oauthc      *oauth.Coordinator
	oauthConfig *oauth2.Config
	httpClient  *http.Client
	apiBaseURL  string
	perPage     int
	list        map[string]listFunc
}

// NewVimeo constructs the Vimeo gateway.
func NewVimeo(cfg Config) *Vimeo {
	endpoint := cfg.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = vimeoAuthEndpoint
	}
	apiBaseURL := cfg.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = vimeoAPIBaseURL
	}

	g := &Vimeo{
		oauthc: cfg.OAuth,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint:     endpoint,
			Scopes:       []string{"public", "private"},
		},
		httpClient: cfg.httpClient(),
		apiBaseURL: apiBaseURL,
		perPage:    cfg.perPage(),
	}
	g.list = map[string]listFunc{
		"uploads":   g.listUploads,
		"favorites": g.listFavorites,
		"album":     g.listAlbum,
		"channel":   g.listChannel,
		"folder":    g.listFolder,
		"search":    g.listSearch,
	}
	return g
}

// Handle implements videos.Gateway.
func (g *Vimeo) Handle() string { return "vimeo" }

// Name implements videos.Gateway.
func (g *Vimeo) Name() string { return "Vimeo" }

// SupportsSearch implements videos.Gateway.
func (g *Vimeo) SupportsSearch() bool { return true }

// OAuthConfig exposes the OAuth2 client configuration to the coordinator.
func (g *Vimeo) OAuthConfig() *oauth2.Config { return g.oauthConfig }

// AuthorizationURL implements videos.Gateway.
func (g *Vimeo) AuthorizationURL(state string) string {
	return g.oauthConfig.AuthCodeURL(state)
}

// ExtractVideoID implements videos.Gateway.
func (g *Vimeo) ExtractVideoID(videoURL string) (string, error) {
	matches := vimeoVideoURLPattern.FindStringSubmatch(videoURL)
	if matches == nil {
		return "", fmt.Errorf("%w: %q is not a vimeo video url", videos.ErrVideoIDExtract, videoURL)
	}
	return matches[1], nil
}

// FetchVideoByID implements videos.Gateway.
func (g *Vimeo) FetchVideoByID(ctx context.Context, videoID string) (videos.Video, error) {
	api, err := g.api(ctx)
	if err != nil {
		return videos.Video{}, err
	}

	var raw json.RawMessage
	err = api.get(ctx, "videos/"+videoID, url.Values{
		"fields": {vimeoVideoFields},
	}, &raw)
	if err != nil {
		return videos.Video{}, fmt.Errorf("%w: %w", videos.ErrVideoNotFound, err)
	}

	video, err := parseVimeoVideo(raw)
	if err != nil {
		return videos.Video{}, fmt.Errorf("%w: %w", videos.ErrVideoNotFound, err)
	}
	return video, nil
}

// Videos implements videos.Gateway via the closed dispatch table.
func (g *Vimeo) Videos(ctx context.Context, method string, opts videos.ListOptions) (videos.VideoPage, error) {
	return dispatch(g.list, ctx, method, opts)
}

// Explorer implements videos.Gateway. Albums, channels and folders are each
// fetched independently; a failing section is logged and omitted rather than
// failing the whole tree.
func (g *Vimeo) Explorer(ctx context.Context) (videos.Explorer, error) {
	explorer := videos.Explorer{
		Sections: []videos.ExplorerSection{{
			Name: "Library",
			Collections: []videos.ExplorerCollection{
				{Name: "Uploads", Method: "uploads"},
				{Name: "Favorites", Method: "favorites"},
			},
		}},
	}

	sections := []struct {
		name   string
		method string
		path   string
	}{
		{name: "Playlists", method: "album", path: "me/albums"},
		{name: "Channels", method: "channel", path: "me/channels"},
		{name: "Folders", method: "folder", path: "me/folders"},
	}

	for _, section := range sections {
		collections, err := g.collections(ctx, section.method, section.path)
		switch {
		case err != nil:
			logging.FromContext(ctx).Warn("vimeo explorer section unavailable",
				"section", section.name, "error", err)
		case len(collections) > 0:
			explorer.Sections = append(explorer.Sections, videos.ExplorerSection{
				Name:        section.name,
				Collections: collections,
			})
		}
	}

	return explorer, nil
}

// Account implements videos.Gateway.
func (g *Vimeo) Account(ctx context.Context) (videos.Account, error) {
	api, err := g.api(ctx)
	if err != nil {
		return videos.Account{}, fmt.Errorf("%w: %w", videos.ErrAccountNotFound, err)
	}

	var me struct {
		URI  string `json:"uri"`
		Name string `json:"name"`
	}
	if err := api.get(ctx, "me", nil, &me); err != nil {
		return videos.Account{}, fmt.Errorf("%w: %w", videos.ErrAccountNotFound, err)
	}

	return videos.Account{
		ID:   me.URI[strings.LastIndex(me.URI, "/")+1:],
		Name: me.Name,
	}, nil
}

// EmbedURL implements videos.Gateway.
func (g *Vimeo) EmbedURL(videoID string, options url.Values) string {
	return embedURL(vimeoEmbedFormat, videoID, options)
}

// LoggedIn implements videos.Gateway.
func (g *Vimeo) LoggedIn(ctx context.Context) bool { return g.oauthc.LoggedIn(ctx, g) }

// Login implements videos.Gateway.
func (g *Vimeo) Login(ctx context.Context, code string) error { return g.oauthc.Login(ctx, g, code) }

// Logout implements videos.Gateway.
func (g *Vimeo) Logout(ctx context.Context) error { return g.oauthc.Logout(ctx, g) }

// Listing methods
// ----------------------------------------------------------------------------

func (g *Vimeo) listUploads(ctx context.Context, opts videos.ListOptions) (videos.VideoPage, error) {
	return g.listPath(ctx, "me/videos", nil, opts)
}

func (g *Vimeo) listFavorites(ctx context.Context, opts videos.ListOptions) (videos.VideoPage, error) {
	return g.listPath(ctx, "me/likes", nil, opts)
}

func (g *Vimeo) listAlbum(ctx context.Context, opts videos.ListOptions) (videos.VideoPage, error) {
	if opts.ID == "" {
		return videos.VideoPage{}, fmt.Errorf("%w: album listing requires an id", videos.ErrGatewayMethodNotFound)
	}
	return g.listPath(ctx, "me/albums/"+opts.ID+"/videos", nil, opts)
}

func (g *Vimeo) listChannel(ctx context.Context, opts videos.ListOptions) (videos.VideoPage, error) {
	if opts.ID == "" {
		return videos.VideoPage{}, fmt.Errorf("%w: channel listing requires an id", videos.ErrGatewayMethodNotFound)
	}
	return g.listPath(ctx, "channels/"+opts.ID+"/videos", nil, opts)
}

func (g *Vimeo) listFolder(ctx context.Context, opts videos.ListOptions) (videos.VideoPage, error) {
	if opts.ID == "" {
		return videos.VideoPage{}, fmt.Errorf("%w: folder listing requires an id", videos.ErrGatewayMethodNotFound)
	}
	return g.listPath(ctx, "me/folders/"+opts.ID+"/videos", nil, opts)
}

func (g *Vimeo) listSearch(ctx context.Context, opts videos.ListOptions) (videos.VideoPage, error) {
	return g.listPath(ctx, "videos", url.Values{"query": {opts.Query}}, opts)
}

// listPath runs one page-numbered listing request. Vimeo paginates by page
// number, so the continuation token is the next page number rendered as a
// string.
func (g *Vimeo) listPath(ctx context.Context, path string, extra url.Values, opts videos.ListOptions) (videos.VideoPage, error) {
	api, err := g.api(ctx)
	if err != nil {
		return videos.VideoPage{}, err
	}

	page := 1
	if opts.MoreToken != "" {
		page, err = strconv.Atoi(opts.MoreToken)
		if err != nil || page < 1 {
			page = 1
		}
	}

	perPage := g.perPage
	if opts.PerPage > 0 {
		perPage = opts.PerPage
	}

	query := url.Values{}
	for key, values := range extra {
		query[key] = values
	}
	query.Set("full_response", "1")
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	var resp struct {
		Data   []json.RawMessage `json:"data"`
		Paging struct {
			Next string `json:"next"`
		} `json:"paging"`
	}
	if err := api.get(ctx, path, query, &resp); err != nil {
		return videos.VideoPage{}, err
	}

	parsed := make([]videos.Video, 0, len(resp.Data))
	for _, raw := range resp.Data {
		video, err := parseVimeoVideo(raw)
		if err != nil {
			return videos.VideoPage{}, err
		}
		parsed = append(parsed, video)
	}

	result := videos.VideoPage{Videos: parsed}
	if resp.Paging.Next != "" && len(parsed) > 0 {
		result.MoreToken = strconv.Itoa(page + 1)
		result.More = true
	}
	return result, nil
}

func (g *Vimeo) collections(ctx context.Context, method, path string) ([]videos.ExplorerCollection, error) {
	api, err := g.api(ctx)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			URI  string `json:"uri"`
			Name string `json:"name"`
		} `json:"data"`
	}
	err = api.get(ctx, path, url.Values{
		"fields":   {"data.uri,data.name"},
		"per_page": {"50"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	collections := make([]videos.ExplorerCollection, 0, len(resp.Data))
	for _, item := range resp.Data {
		collections = append(collections, videos.ExplorerCollection{
			Name:    item.Name,
			Method:  method,
			Options: map[string]string{"id": item.URI[strings.LastIndex(item.URI, "/")+1:]},
		})
	}
	return collections, nil
}

func (g *Vimeo) api(ctx context.Context) (*apiClient, error) {
	token, err := g.oauthc.AccessToken(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", videos.ErrAPIClientCreate, err)
	}
	return newAPIClient(g.httpClient, g.apiBaseURL, http.Header{
		"Authorization": {"Bearer " + token.AccessToken},
		"Accept":        {vimeoAcceptHeader},
	}), nil
}

// Parsing
// ----------------------------------------------------------------------------

type vimeoVideoItem struct {
	URI         string    `json:"uri"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Duration    int       `json:"duration"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	CreatedTime time.Time `json:"created_time"`
	Privacy     struct {
		View string `json:"view"`
	} `json:"privacy"`
	Pictures []struct {
		Type   string `json:"type"`
		Link   string `json:"link"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"pictures"`
	Stats struct {
		Plays *int `json:"plays"`
	} `json:"stats"`
	User struct {
		Name string `json:"name"`
		Link string `json:"link"`
	} `json:"user"`
}

// parseVimeoVideo normalizes one raw video item. It is a pure function of
// the payload bytes.
func parseVimeoVideo(raw json.RawMessage) (videos.Video, error) {
	var item vimeoVideoItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return videos.Video{}, fmt.Errorf("decode vimeo video: %w", err)
	}
	var rawMap map[string]any
	if err := json.Unmarshal(raw, &rawMap); err != nil {
		return videos.Video{}, fmt.Errorf("decode vimeo video: %w", err)
	}

	videoID := item.URI[strings.LastIndex(item.URI, "/")+1:]
	_, private := vimeoPrivateViews[item.Privacy.View]

	video := videos.Video{
		ID:            videoID,
		Title:         item.Name,
		Description:   item.Description,
		Duration:      time.Duration(item.Duration) * time.Second,
		PublishedAt:   item.CreatedTime,
		URL:           "https://vimeo.com/" + videoID,
		GatewayHandle: "vimeo",
		Private:       private,
		Author: videos.VideoAuthor{
			Name: item.User.Name,
			URL:  item.User.Link,
		},
		Thumbnail: vimeoThumbnailSources(item),
		Raw:       rawMap,
	}

	if item.Width > 0 && item.Height > 0 {
		video.Size = &videos.VideoSize{Width: item.Width, Height: item.Height}
	}
	if item.Stats.Plays != nil {
		video.Statistic.PlayCount = *item.Stats.Plays
	}

	return video, nil
}

// vimeoThumbnailSources scans the pictures array for thumbnail entries and
// keeps the widest and narrowest variants.
func vimeoThumbnailSources(item vimeoVideoItem) videos.VideoThumbnail {
	var result videos.VideoThumbnail

	largestWidth, smallestWidth := 0, 0
	for _, picture := range item.Pictures {
		if picture.Type != "thumbnail" {
			continue
		}
		if picture.Width > largestWidth {
			result.LargestSourceURL = picture.Link
			largestWidth = picture.Width
		}
		if smallestWidth == 0 || picture.Width < smallestWidth {
			result.SmallestSourceURL = picture.Link
			smallestWidth = picture.Width
		}
	}

	return result
}
