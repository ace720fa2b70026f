package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	gateways := GatewayHandler{Gateways: deps.Gateways, Videos: deps.Videos}
	oauth := NewOAuthHandler(deps.Gateways)

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/gateways", gateways.List)
	mux.HandleFunc("/api/v1/gateways/{handle}/explorer", gateways.Explorer)
	mux.HandleFunc("/api/v1/gateways/{handle}/videos", gateways.ListVideos)
	mux.HandleFunc("/api/v1/gateways/{handle}/videos/{id}", gateways.Video)
	mux.HandleFunc("/api/v1/gateways/{handle}/videos/{id}/embed", gateways.Embed)
	mux.HandleFunc("/api/v1/gateways/{handle}/account", gateways.Account)
	mux.HandleFunc("/api/v1/videos/lookup", gateways.Lookup)
	mux.HandleFunc("/api/v1/gateways/{handle}/oauth/authorize", oauth.Authorize)
	mux.HandleFunc("/api/v1/gateways/{handle}/oauth/callback", oauth.Callback)
	mux.HandleFunc("/api/v1/gateways/{handle}/oauth/logout", oauth.Logout)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Gateways GatewayDirectory
	Videos   VideoService
}
