package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestOAuthAuthorizeIssuesState(t *testing.T) {
	gw := &fakeGateway{handle: "youtube", name: "YouTube"}
	mux := newTestMux(Dependencies{
		Gateways: &fakeDirectory{gateways: []*fakeGateway{gw}},
		Videos:   &fakeVideoService{},
	})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/gateways/youtube/oauth/authorize")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var body struct {
		AuthorizationURL string `json:"authorizationUrl"`
		State            string `json:"state"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.State == "" {
		t.Fatal("expected a state token")
	}
	if body.AuthorizationURL != "https://provider.example/authorize?state="+body.State {
		t.Fatalf("unexpected authorization url %q", body.AuthorizationURL)
	}
}

func TestOAuthCallbackVerifiesState(t *testing.T) {
	gw := &fakeGateway{handle: "youtube", name: "YouTube"}
	directory := &fakeDirectory{gateways: []*fakeGateway{gw}}

	handler := NewOAuthHandler(directory)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/gateways/{handle}/oauth/authorize", handler.Authorize)
	mux.HandleFunc("/api/v1/gateways/{handle}/oauth/callback", handler.Callback)

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/gateways/youtube/oauth/authorize")
	var issued struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&issued); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// Wrong state is rejected.
	rec = doRequest(t, mux, http.MethodGet, "/api/v1/gateways/youtube/oauth/callback?code=abc&state=forged")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for forged state got %d", rec.Code)
	}

	// The issued state succeeds.
	rec = doRequest(t, mux, http.MethodGet, "/api/v1/gateways/youtube/oauth/callback?code=abc&state="+url.QueryEscape(issued.State))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d: %s", rec.Code, rec.Body.String())
	}

	// A state redeems at most once.
	rec = doRequest(t, mux, http.MethodGet, "/api/v1/gateways/youtube/oauth/callback?code=abc&state="+url.QueryEscape(issued.State))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for replayed state got %d", rec.Code)
	}
}

func TestOAuthCallbackRejectsExpiredState(t *testing.T) {
	gw := &fakeGateway{handle: "youtube", name: "YouTube"}
	handler := NewOAuthHandler(&fakeDirectory{gateways: []*fakeGateway{gw}})

	issued := time.Now()
	handler.now = func() time.Time { return issued }
	handler.storeState("state-1", "youtube")

	handler.now = func() time.Time { return issued.Add(stateTTL + time.Minute) }
	if handler.redeemState("state-1", "youtube") {
		t.Fatal("expected expired state to be rejected")
	}
}

func TestOAuthCallbackRejectsMismatchedGateway(t *testing.T) {
	handler := NewOAuthHandler(&fakeDirectory{})
	handler.storeState("state-1", "youtube")

	if handler.redeemState("state-1", "vimeo") {
		t.Fatal("expected state issued for another gateway to be rejected")
	}
}

func TestOAuthCallbackProviderDenial(t *testing.T) {
	gw := &fakeGateway{handle: "youtube", name: "YouTube"}
	mux := newTestMux(Dependencies{
		Gateways: &fakeDirectory{gateways: []*fakeGateway{gw}},
		Videos:   &fakeVideoService{},
	})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/gateways/youtube/oauth/callback?error=access_denied")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestOAuthCallbackExchangeFailure(t *testing.T) {
	gw := &fakeGateway{handle: "youtube", name: "YouTube", loginErr: errors.New("exchange failed")}
	directory := &fakeDirectory{gateways: []*fakeGateway{gw}}

	handler := NewOAuthHandler(directory)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/gateways/{handle}/oauth/authorize", handler.Authorize)
	mux.HandleFunc("/api/v1/gateways/{handle}/oauth/callback", handler.Callback)

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/gateways/youtube/oauth/authorize")
	var issued struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&issued); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	rec = doRequest(t, mux, http.MethodGet, "/api/v1/gateways/youtube/oauth/callback?code=abc&state="+url.QueryEscape(issued.State))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502 got %d", rec.Code)
	}
}

func TestOAuthLogout(t *testing.T) {
	gw := &fakeGateway{handle: "youtube", name: "YouTube", loggedIn: true}
	mux := newTestMux(Dependencies{
		Gateways: &fakeDirectory{gateways: []*fakeGateway{gw}},
		Videos:   &fakeVideoService{},
	})

	rec := doRequest(t, mux, http.MethodPost, "/api/v1/gateways/youtube/oauth/logout")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if gw.logoutCalls != 1 {
		t.Fatalf("expected 1 logout call got %d", gw.logoutCalls)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gateways/youtube/oauth/logout", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected method not allowed got %d", rec.Code)
	}
}

func TestOAuthUnknownGateway(t *testing.T) {
	mux := newTestMux(Dependencies{Gateways: &fakeDirectory{}, Videos: &fakeVideoService{}})

	rec := doRequest(t, mux, http.MethodGet, "/api/v1/gateways/dailymotion/oauth/authorize")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
}
