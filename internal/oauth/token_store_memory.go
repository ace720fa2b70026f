package oauth

import (
	"context"
	"sync"
)

// NewInMemoryTokenStore returns a TokenStore backed by an in-memory map.
func NewInMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{tokens: make(map[string]Token)}
}

// InMemoryTokenStore implements TokenStore for tests and local development.
type InMemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]Token
}

// Save persists the token for a gateway handle.
func (s *InMemoryTokenStore) Save(_ context.Context, gatewayHandle string, token Token) error {
	s.mu.Lock()
	s.tokens[gatewayHandle] = token
	s.mu.Unlock()
	return nil
}

// Find retrieves the token for a gateway handle.
func (s *InMemoryTokenStore) Find(_ context.Context, gatewayHandle string) (Token, error) {
	s.mu.RLock()
	token, ok := s.tokens[gatewayHandle]
	s.mu.RUnlock()
	if !ok {
		return Token{}, ErrTokenNotFound
	}
	return token, nil
}

// Delete removes the token for a gateway handle.
func (s *InMemoryTokenStore) Delete(_ context.Context, gatewayHandle string) error {
	s.mu.Lock()
	_, ok := s.tokens[gatewayHandle]
	delete(s.tokens, gatewayHandle)
	s.mu.Unlock()
	if !ok {
		return ErrTokenNotFound
	}
	return nil
}

// Has reports whether a token exists for a gateway handle. Useful for tests.
func (s *InMemoryTokenStore) Has(gatewayHandle string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[gatewayHandle]
	return ok
}
