package videos

import (
	"context"
	"fmt"
	"strings"
)

// Registry holds the set of known gateways. The set is fixed at construction
// time; handles are matched case-insensitively.
type Registry struct {
	gateways []Gateway
}

// NewRegistry constructs a registry from the provided gateways.
func NewRegistry(gateways ...Gateway) (*Registry, error) {
	r := &Registry{}
	for _, gw := range gateways {
		if err := r.register(gw); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(gw Gateway) error {
	if gw == nil {
		return fmt.Errorf("%w: nil gateway", ErrGatewayNotFound)
	}
	handle := gw.Handle()
	if handle == "" {
		return fmt.Errorf("%w: gateway %q has no handle", ErrGatewayNotFound, gw.Name())
	}
	for _, existing := range r.gateways {
		if strings.EqualFold(existing.Handle(), handle) {
			return fmt.Errorf("duplicate gateway handle %q", handle)
		}
	}
	r.gateways = append(r.gateways, gw)
	return nil
}

// Gateways returns the registered gateways. With onlyEnabled set, gateways
// are live-filtered on whether a usable token currently exists, which may
// trigger a token refresh.
func (r *Registry) Gateways(ctx context.Context, onlyEnabled bool) []Gateway {
	if !onlyEnabled {
		return append([]Gateway(nil), r.gateways...)
	}

	var enabled []Gateway
	for _, gw := range r.gateways {
		if gw.LoggedIn(ctx) {
			enabled = append(enabled, gw)
		}
	}
	return enabled
}

// HasEnabledGateways reports whether at least one gateway is connected.
func (r *Registry) HasEnabledGateways(ctx context.Context) bool {
	return len(r.Gateways(ctx, true)) > 0
}

// ByHandle resolves a gateway by its handle, case-insensitively. It fails
// with ErrGatewayNotFound when no gateway matches, or when the match is not
// connected and onlyEnabled is set.
func (r *Registry) ByHandle(ctx context.Context, handle string, onlyEnabled bool) (Gateway, error) {
	for _, gw := range r.Gateways(ctx, onlyEnabled) {
		if strings.EqualFold(gw.Handle(), handle) {
			return gw, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrGatewayNotFound, handle)
}
