package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/vidgateway/backend/internal/logging"
	"github.com/vidgateway/backend/internal/videos"
)

// GatewayHandler implements gateway discovery and video endpoints.
type GatewayHandler struct {
	Gateways GatewayDirectory
	Videos   VideoService
}

type gatewaySummary struct {
	Handle         string `json:"handle"`
	Name           string `json:"name"`
	SupportsSearch bool   `json:"supportsSearch"`
	Enabled        bool   `json:"enabled"`
}

// List handles GET /api/v1/gateways. With ?enabled=true only connected
// gateways are returned.
func (h GatewayHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	onlyEnabled, _ := strconv.ParseBool(r.URL.Query().Get("enabled"))

	summaries := make([]gatewaySummary, 0)
	for _, gw := range h.Gateways.Gateways(ctx, onlyEnabled) {
		summaries = append(summaries, gatewaySummary{
			Handle:         gw.Handle(),
			Name:           gw.Name(),
			SupportsSearch: gw.SupportsSearch(),
			Enabled:        onlyEnabled || gw.LoggedIn(ctx),
		})
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"gateways": summaries})
}

// Explorer handles GET /api/v1/gateways/{handle}/explorer.
func (h GatewayHandler) Explorer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	gw, err := h.Gateways.ByHandle(ctx, r.PathValue("handle"), true)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	explorer, err := gw.Explorer(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, explorer)
}

// ListVideos handles GET /api/v1/gateways/{handle}/videos. The listing method
// is selected with ?method=, with id, q, moreToken and perPage as the
// remaining listing options.
func (h GatewayHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	gw, err := h.Gateways.ByHandle(ctx, r.PathValue("handle"), true)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	query := r.URL.Query()
	method := query.Get("method")
	if method == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "method is required"})
		return
	}

	perPage, _ := strconv.Atoi(query.Get("perPage"))
	opts := videos.ListOptions{
		ID:        query.Get("id"),
		Query:     query.Get("q"),
		MoreToken: query.Get("moreToken"),
		PerPage:   perPage,
	}

	page, err := gw.Videos(ctx, method, opts)
	if err != nil {
		logger.Warn("gateway listing failed", "gateway", gw.Handle(), "method", method, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, page)
}

// Video handles GET /api/v1/gateways/{handle}/videos/{id}.
func (h GatewayHandler) Video(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	video, err := h.Videos.VideoByID(ctx, r.PathValue("handle"), r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, video)
}

// Embed handles GET /api/v1/gateways/{handle}/videos/{id}/embed. Remaining
// query parameters are merged into the provider embed URL.
func (h GatewayHandler) Embed(w http.ResponseWriter, r *http.Request) {
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

	respondJSON(ctx, w, http.StatusOK, map[string]string{
		"embedUrl": gw.EmbedURL(r.PathValue("id"), r.URL.Query()),
	})
}

// Account handles GET /api/v1/gateways/{handle}/account.
func (h GatewayHandler) Account(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	account, err := h.Videos.Account(ctx, r.PathValue("handle"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, account)
}

// Lookup handles GET /api/v1/videos/lookup?url=, resolving a video URL
// across all connected gateways.
func (h GatewayHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	videoURL := r.URL.Query().Get("url")
	if videoURL == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "url is required"})
		return
	}

	video, err := h.Videos.VideoByURL(ctx, videoURL)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, video)
}

// respondError maps domain errors onto HTTP statuses.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	var apiErr *videos.APIResponseError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, videos.ErrGatewayNotFound):
		status = http.StatusNotFound
	case errors.Is(err, videos.ErrVideoNotFound), errors.Is(err, videos.ErrAccountNotFound):
		status = http.StatusNotFound
	case errors.Is(err, videos.ErrGatewayMethodNotFound), errors.Is(err, videos.ErrVideoIDExtract):
		status = http.StatusBadRequest
	case errors.Is(err, videos.ErrAPIClientCreate):
		status = http.StatusUnauthorized
	case errors.As(err, &apiErr):
		status = http.StatusBadGateway
	}

	respondJSON(ctx, w, status, map[string]string{"error": err.Error()})
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}
