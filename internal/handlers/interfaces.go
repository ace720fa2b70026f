package handlers

import (
	"context"

	"github.com/vidgateway/backend/internal/videos"
)

// GatewayDirectory captures the registry operations required by the HTTP
// handlers.
type GatewayDirectory interface {
	Gateways(ctx context.Context, onlyEnabled bool) []videos.Gateway
	ByHandle(ctx context.Context, handle string, onlyEnabled bool) (videos.Gateway, error)
}

// VideoService resolves videos and accounts through the cache-backed
// service layer.
type VideoService interface {
	VideoByID(ctx context.Context, gatewayHandle, videoID string) (videos.Video, error)
	VideoByURL(ctx context.Context, videoURL string) (videos.Video, error)
	Account(ctx context.Context, gatewayHandle string) (videos.Account, error)
}
