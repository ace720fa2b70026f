package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/vidgateway/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		CacheEnabled:    true,
		CacheTTL:        time.Minute,
		VideosPerPage:   30,
		ProviderTimeout: time.Second,
		YouTube: config.OAuthCredentials{
			ClientID:     "yt-client",
			ClientSecret: "yt-secret",
			RedirectURI:  "https://example.com/callback/youtube",
		},
		Vimeo: config.OAuthCredentials{
			ClientID:     "vm-client",
			ClientSecret: "vm-secret",
			RedirectURI:  "https://example.com/callback/vimeo",
		},
	}

	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer redisClient.Close()

	deps, err := buildDependencies(fakePool{}, redisClient, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deps.Gateways == nil {
		t.Fatal("expected gateway directory to be configured")
	}
	if deps.Videos == nil {
		t.Fatal("expected video service to be configured")
	}

	// Both configured providers must be registered; no token exists yet, so
	// neither is enabled.
	all := deps.Gateways.Gateways(context.Background(), false)
	if len(all) != 2 {
		t.Fatalf("expected 2 gateways got %d", len(all))
	}
}

func TestBuildDependenciesSkipsUnconfiguredProviders(t *testing.T) {
	cfg := config.Config{
		YouTube: config.OAuthCredentials{
			ClientID:     "yt-client",
			ClientSecret: "yt-secret",
		},
	}

	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer redisClient.Close()

	deps, err := buildDependencies(fakePool{}, redisClient, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all := deps.Gateways.Gateways(context.Background(), false)
	if len(all) != 1 || all[0].Handle() != "youtube" {
		t.Fatalf("expected only youtube to be registered, got %v", all)
	}
}
