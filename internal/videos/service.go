package videos

import (
	"context"
	"errors"
	"fmt"

	"github.com/vidgateway/backend/internal/logging"
)

// ResponseCache is the read accelerator the service layers over gateway
// fetches. Implementations map keys to previously parsed entities with a TTL
// and a global enable switch.
type ResponseCache interface {
	Enabled() bool
	Get(ctx context.Context, key string, into any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	VideoKey(gatewayHandle, videoID string) string
	AccountKey(gatewayHandle string) string
}

// Service exposes the video operations consumed by the HTTP layer: cached
// single-video fetches, URL resolution across gateways, and cached account
// lookups.
type Service struct {
	registry *Registry
	cache    ResponseCache
}

// NewService constructs a Service over the given registry and cache.
func NewService(registry *Registry, cache ResponseCache) *Service {
	return &Service{registry: registry, cache: cache}
}

// VideoByID returns one video from a gateway, reading through the cache.
// Cache failures are logged and treated as misses; they never fail the read.
func (s *Service) VideoByID(ctx context.Context, gatewayHandle, videoID string) (Video, error) {
	gw, err := s.registry.ByHandle(ctx, gatewayHandle, true)
	if err != nil {
		return Video{}, err
	}

	key := s.cache.VideoKey(gw.Handle(), videoID)

	if s.cache.Enabled() {
		var cached Video
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logging.FromContext(ctx).Warn("video cache read failed", "key", key, "error", err)
		}
		if found {
			return cached, nil
		}
	}

	video, err := gw.FetchVideoByID(ctx, videoID)
	if err != nil {
		return Video{}, err
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, video); err != nil {
			logging.FromContext(ctx).Warn("video cache write failed", "key", key, "error", err)
		}
	}

	return video, nil
}

// VideoByURL resolves a video URL by trying each enabled gateway's ID
// extractor in turn. A gateway whose extractor does not match, or whose
// fetch reports not-found, is skipped so the next gateway gets a chance.
func (s *Service) VideoByURL(ctx context.Context, videoURL string) (Video, error) {
	for _, gw := range s.registry.Gateways(ctx, true) {
		videoID, err := gw.ExtractVideoID(videoURL)
		if err != nil {
			continue
		}

		video, err := s.VideoByID(ctx, gw.Handle(), videoID)
		if err != nil {
			if errors.Is(err, ErrVideoNotFound) {
				continue
			}
			return Video{}, err
		}
		return video, nil
	}

	return Video{}, fmt.Errorf("%w: no gateway matched %q", ErrVideoNotFound, videoURL)
}

// Account returns the resource owner connected to a gateway, reading through
// the cache. Only one account is cached per gateway.
func (s *Service) Account(ctx context.Context, gatewayHandle string) (Account, error) {
	gw, err := s.registry.ByHandle(ctx, gatewayHandle, false)
	if err != nil {
		return Account{}, err
	}

	key := s.cache.AccountKey(gw.Handle())

	if s.cache.Enabled() {
		var cached Account
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logging.FromContext(ctx).Warn("account cache read failed", "key", key, "error", err)
		}
		if found {
			return cached, nil
		}
	}

	account, err := gw.Account(ctx)
	if err != nil {
		return Account{}, err
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, account); err != nil {
			logging.FromContext(ctx).Warn("account cache write failed", "key", key, "error", err)
		}
	}

	return account, nil
}
