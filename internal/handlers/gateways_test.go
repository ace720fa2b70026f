package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/vidgateway/backend/internal/videos"
)

// fakeGateway implements videos.Gateway for handler tests.
type fakeGateway struct {
	handle   string
	name     string
	loggedIn bool

	loginErr  error
	logoutErr error

	explorer videos.Explorer
	page     videos.VideoPage
	pageErr  error

	lastMethod  string
	lastOpts    videos.ListOptions
	logoutCalls int
}

func (g *fakeGateway) Handle() string       { return g.handle }
func (g *fakeGateway) Name() string         { return g.name }
func (g *fakeGateway) SupportsSearch() bool { return true }

func (g *fakeGateway) AuthorizationURL(state string) string {
	return "https://provider.example/authorize?state=" + state
}

func (g *fakeGateway) LoggedIn(context.Context) bool { return g.loggedIn }

func (g *fakeGateway) Login(context.Context, string) error { return g.loginErr }

func (g *fakeGateway) Logout(context.Context) error {
	g.logoutCalls++
	return g.logoutErr
}

func (g *fakeGateway) Account(context.Context) (videos.Account, error) {
	return videos.Account{ID: "acct-1", Name: "someone"}, nil
}

func (g *fakeGateway) ExtractVideoID(string) (string, error) {
	return "", videos.ErrVideoIDExtract
}

func (g *fakeGateway) FetchVideoByID(_ context.Context, videoID string) (videos.Video, error) {
	return videos.Video{ID: videoID, GatewayHandle: g.handle}, nil
}

func (g *fakeGateway) Videos(_ context.Context, method string, opts videos.ListOptions) (videos.VideoPage, error) {
	g.lastMethod = method
	g.lastOpts = opts
	return g.page, g.pageErr
}

func (g *fakeGateway) Explorer(context.Context) (videos.Explorer, error) {
	return g.explorer, nil
}

func (g *fakeGateway) EmbedURL(videoID string, options url.Values) string {
	u := "https://provider.example/embed/" + videoID
	if len(options) > 0 {
		u += "?" + options.Encode()
	}
	return u
}

// fakeDirectory implements GatewayDirectory over a fixed gateway list.
type fakeDirectory struct {
	gateways []*fakeGateway
}

func (d *fakeDirectory) Gateways(ctx context.Context, onlyEnabled bool) []videos.Gateway {
	var result []videos.Gateway
	for _, gw := range d.gateways {
		if onlyEnabled && !gw.loggedIn {
			continue
		}
		result = append(result, gw)
	}
	return result
}

func (d *fakeDirectory) ByHandle(ctx context.Context, handle string, onlyEnabled bool) (videos.Gateway, error) {
	for _, gw := range d.gateways {
		if gw.handle != handle {
			continue
		}
		if onlyEnabled && !gw.loggedIn {
			break
		}
		return gw, nil
	}
	return nil, fmt.Errorf("%w: %q", videos.ErrGatewayNotFound, handle)
}

// fakeVideoService implements VideoService.
type fakeVideoService struct {
	video    videos.Video
	videoErr error
	account  videos.Account
}

func (s *fakeVideoService) VideoByID(_ context.Context, gatewayHandle, videoID string) (videos.Video, error) {
	if s.videoErr != nil {
		return videos.Video{}, s.videoErr
	}
	return videos.Video{ID: videoID, GatewayHandle: gatewayHandle}, nil
}

func (s *fakeVideoService) VideoByURL(_ context.Context, videoURL string) (videos.Video, error) {
	if s.videoErr != nil {
		return videos.Video{}, s.videoErr
	}
	return s.video, nil
}

func (s *fakeVideoService) Account(_ context.Context, gatewayHandle string) (videos.Account, error) {
	return s.account, nil
}

func newTestMux(deps Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterRoutes(mux, deps)
	return mux
}

func doRequest(t *testing.T, mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestGatewayListFiltersEnabled(t *testing.T) {
	directory := &fakeDirectory{gateways: []*fakeGateway{
		{handle: "youtube", name: "YouTube", loggedIn: true},
		{handle: "vimeo", name: "Vimeo", loggedIn: false},
	}}
	mux := newTestMux(Dependencies{Gateways: directory, Videos: &fakeVideoService{}})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/gateways")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var body struct {
		Gateways []gatewaySummary `json:"gateways"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Gateways) != 2 {
		t.Fatalf("expected 2 gateways got %d", len(body.Gateways))
	}

	rec = doRequest(t, mux, http.MethodGet, "/api/v1/gateways?enabled=true")
	body.Gateways = nil
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Gateways) != 1 || body.Gateways[0].Handle != "youtube" {
		t.Fatalf("expected only youtube, got %+v", body.Gateways)
	}
	if !body.Gateways[0].Enabled {
		t.Fatal("expected youtube to report enabled")
	}
}

func TestGatewayVideosDispatchesMethodAndOptions(t *testing.T) {
	gw := &fakeGateway{handle: "youtube", name: "YouTube", loggedIn: true,
		page: videos.VideoPage{Videos: []videos.Video{{ID: "abc"}}, MoreToken: "NEXT", More: true},
	}
	mux := newTestMux(Dependencies{
		Gateways: &fakeDirectory{gateways: []*fakeGateway{gw}},
		Videos:   &fakeVideoService{},
	})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/gateways/youtube/videos?method=playlist&id=PL123&moreToken=TOK&perPage=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d: %s", rec.Code, rec.Body.String())
	}

	if gw.lastMethod != "playlist" {
		t.Fatalf("unexpected method %q", gw.lastMethod)
	}
	if gw.lastOpts.ID != "PL123" || gw.lastOpts.MoreToken != "TOK" || gw.lastOpts.PerPage != 10 {
		t.Fatalf("unexpected options %+v", gw.lastOpts)
	}

	var page videos.VideoPage
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !page.More || page.MoreToken != "NEXT" {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestGatewayVideosRequiresMethod(t *testing.T) {
	gw := &fakeGateway{handle: "youtube", name: "YouTube", loggedIn: true}
	mux := newTestMux(Dependencies{
		Gateways: &fakeDirectory{gateways: []*fakeGateway{gw}},
		Videos:   &fakeVideoService{},
	})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/gateways/youtube/videos")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestGatewayVideosUnknownMethodMapsToBadRequest(t *testing.T) {
	gw := &fakeGateway{handle: "youtube", name: "YouTube", loggedIn: true,
		pageErr: fmt.Errorf("%w: %q", videos.ErrGatewayMethodNotFound, "bogus"),
	}
	mux := newTestMux(Dependencies{
		Gateways: &fakeDirectory{gateways: []*fakeGateway{gw}},
		Videos:   &fakeVideoService{},
	})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/gateways/youtube/videos?method=bogus")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestGatewayVideosDisconnectedGateway(t *testing.T) {
	gw := &fakeGateway{handle: "youtube", name: "YouTube", loggedIn: false}
	mux := newTestMux(Dependencies{
		Gateways: &fakeDirectory{gateways: []*fakeGateway{gw}},
		Videos:   &fakeVideoService{},
	})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/gateways/youtube/videos?method=uploads")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
}

func TestGatewayVideoByID(t *testing.T) {
	gw := &fakeGateway{handle: "youtube", name: "YouTube", loggedIn: true}
	mux := newTestMux(Dependencies{
		Gateways: &fakeDirectory{gateways: []*fakeGateway{gw}},
		Videos:   &fakeVideoService{},
	})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/gateways/youtube/videos/dQw4w9WgXcQ")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var video videos.Video
	if err := json.NewDecoder(rec.Body).Decode(&video); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if video.ID != "dQw4w9WgXcQ" || video.GatewayHandle != "youtube" {
		t.Fatalf("unexpected video %+v", video)
	}
}

func TestGatewayVideoNotFound(t *testing.T) {
	mux := newTestMux(Dependencies{
		Gateways: &fakeDirectory{},
		Videos:   &fakeVideoService{videoErr: videos.ErrVideoNotFound},
	})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/gateways/youtube/videos/missing")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
}

func TestLookupRequiresURL(t *testing.T) {
	mux := newTestMux(Dependencies{Gateways: &fakeDirectory{}, Videos: &fakeVideoService{}})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/videos/lookup")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestLookupResolvesURL(t *testing.T) {
	service := &fakeVideoService{video: videos.Video{ID: "76979871", GatewayHandle: "vimeo"}}
	mux := newTestMux(Dependencies{Gateways: &fakeDirectory{}, Videos: service})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/videos/lookup?url="+url.QueryEscape("https://vimeo.com/76979871"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var video videos.Video
	if err := json.NewDecoder(rec.Body).Decode(&video); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if video.GatewayHandle != "vimeo" {
		t.Fatalf("unexpected video %+v", video)
	}
}

func TestEmbedMergesQueryOptions(t *testing.T) {
	gw := &fakeGateway{handle: "vimeo", name: "Vimeo", loggedIn: false}
	mux := newTestMux(Dependencies{
		Gateways: &fakeDirectory{gateways: []*fakeGateway{gw}},
		Videos:   &fakeVideoService{},
	})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/gateways/vimeo/videos/76979871/embed?autoplay=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "autoplay=1") {
		t.Fatalf("expected embed url to carry options, got %s", rec.Body.String())
	}
}

func TestAccountEndpoint(t *testing.T) {
	service := &fakeVideoService{account: videos.Account{ID: "acct-1", Name: "someone"}}
	mux := newTestMux(Dependencies{Gateways: &fakeDirectory{}, Videos: service})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/gateways/vimeo/account")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var account videos.Account
	if err := json.NewDecoder(rec.Body).Decode(&account); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if account.ID != "acct-1" {
		t.Fatalf("unexpected account %+v", account)
	}
}
