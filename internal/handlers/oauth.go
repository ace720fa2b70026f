package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vidgateway/backend/internal/logging"
)

// stateTTL bounds how long an issued authorization state stays redeemable.
const stateTTL = 10 * time.Minute

// OAuthHandler implements the provider connection endpoints: authorization
// URL issuance, the redirect callback, and logout.
type OAuthHandler struct {
	Gateways GatewayDirectory

	mu     sync.Mutex
	states map[string]stateEntry
	now    func() time.Time
}

type stateEntry struct {
	gatewayHandle string
	issuedAt      time.Time
}

// NewOAuthHandler constructs the OAuth endpoints over the gateway directory.
func NewOAuthHandler(gateways GatewayDirectory) *OAuthHandler {
	return &OAuthHandler{
		Gateways: gateways,
		states:   make(map[string]stateEntry),
		now:      time.Now,
	}
}

// Authorize handles GET /api/v1/gateways/{handle}/oauth/authorize. It issues
// a single-use state and returns the provider authorization URL the caller
// should redirect to.
func (h *OAuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	gw, err := h.Gateways.ByHandle(ctx, r.PathValue("handle"), false)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	state := uuid.NewString()
	h.storeState(state, gw.Handle())

	respondJSON(ctx, w, http.StatusOK, map[string]string{
		"authorizationUrl": gw.AuthorizationURL(state),
		"state":            state,
	})
}

// Callback handles GET /api/v1/gateways/{handle}/oauth/callback. The state
// must match one issued by Authorize for the same gateway.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	gw, err := h.Gateways.ByHandle(ctx, r.PathValue("handle"), false)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	query := r.URL.Query()
	if providerErr := query.Get("error"); providerErr != "" {
		logger.Warn("authorization denied by provider", "gateway", gw.Handle(), "error", providerErr)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "authorization denied"})
		return
	}

	if !h.redeemState(query.Get("state"), gw.Handle()) {
		logger.Warn("authorization state mismatch", "gateway", gw.Handle())
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid or expired state"})
		return
	}

	code := query.Get("code")
	if code == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "code is required"})
		return
	}

	if err := gw.Login(ctx, code); err != nil {
		logger.Error("authorization code exchange failed", "gateway", gw.Handle(), "error", err)
		respondJSON(ctx, w, http.StatusBadGateway, map[string]string{"error": "token exchange failed"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "connected"})
}

// Logout handles POST /api/v1/gateways/{handle}/oauth/logout. Logging out a
// gateway that is not connected succeeds.
func (h *OAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	gw, err := h.Gateways.ByHandle(ctx, r.PathValue("handle"), false)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := gw.Logout(ctx); err != nil {
		logging.FromContext(ctx).Error("logout failed", "gateway", gw.Handle(), "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "logout failed"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "disconnected"})
}

func (h *OAuthHandler) storeState(state, gatewayHandle string) {
	now := h.now()

	h.mu.Lock()
	defer h.mu.Unlock()

	for key, entry := range h.states {
		if now.Sub(entry.issuedAt) > stateTTL {
			delete(h.states, key)
		}
	}
	h.states[state] = stateEntry{gatewayHandle: gatewayHandle, issuedAt: now}
}

// redeemState consumes the state; a state redeems at most once.
func (h *OAuthHandler) redeemState(state, gatewayHandle string) bool {
	if state == "" {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := h.states[state]
	if !ok {
		return false
	}
	delete(h.states, state)

	if entry.gatewayHandle != gatewayHandle {
		return false
	}
	return h.now().Sub(entry.issuedAt) <= stateTTL
}
