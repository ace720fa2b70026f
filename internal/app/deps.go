package app

import (
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/vidgateway/backend/internal/cache"
	"github.com/vidgateway/backend/internal/config"
	"github.com/vidgateway/backend/internal/db"
	"github.com/vidgateway/backend/internal/gateways"
	"github.com/vidgateway/backend/internal/handlers"
	"github.com/vidgateway/backend/internal/oauth"
	"github.com/vidgateway/backend/internal/repositories"
	"github.com/vidgateway/backend/internal/videos"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. Gateways without a configured OAuth client registration are left
// out of the registry.
func buildDependencies(pool db.Pool, redisClient *redis.Client, cfg config.Config) (handlers.Dependencies, error) {
	coordinator := oauth.NewCoordinator(repositories.NewPostgresTokenStore(pool))
	responseCache := cache.New(cache.NewRedisStore(redisClient), cfg.CacheTTL, cfg.CacheEnabled)
	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}

	var registered []videos.Gateway
	if cfg.YouTube.Configured() {
		registered = append(registered, gateways.NewYouTube(gateways.Config{
			ClientID:      cfg.YouTube.ClientID,
			ClientSecret:  cfg.YouTube.ClientSecret,
			RedirectURI:   cfg.YouTube.RedirectURI,
			VideosPerPage: cfg.VideosPerPage,
			HTTPClient:    httpClient,
			OAuth:         coordinator,
		}))
	}
	if cfg.Vimeo.Configured() {
		registered = append(registered, gateways.NewVimeo(gateways.Config{
			ClientID:      cfg.Vimeo.ClientID,
			ClientSecret:  cfg.Vimeo.ClientSecret,
			RedirectURI:   cfg.Vimeo.RedirectURI,
			VideosPerPage: cfg.VideosPerPage,
			HTTPClient:    httpClient,
			OAuth:         coordinator,
		}))
	}

	registry, err := videos.NewRegistry(registered...)
	if err != nil {
		return handlers.Dependencies{}, fmt.Errorf("build gateway registry: %w", err)
	}

	return handlers.Dependencies{
		Gateways: registry,
		Videos:   videos.NewService(registry, responseCache),
	}, nil
}
