package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidgateway/backend/internal/db"
	"github.com/vidgateway/backend/internal/oauth"
)

// PostgresTokenStore persists OAuth tokens to PostgreSQL, one row per
// gateway handle. The credential set is stored as a JSON blob so provider
// extras survive without schema churn.
type PostgresTokenStore struct {
	pool db.Pool
}

// NewPostgresTokenStore constructs a token store backed by PostgreSQL.
func NewPostgresTokenStore(pool db.Pool) *PostgresTokenStore {
	return &PostgresTokenStore{pool: pool}
}

// Save stores or replaces the token for a gateway handle.
func (s *PostgresTokenStore) Save(ctx context.Context, gatewayHandle string, token oauth.Token) error {
	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("%w: encode token: %w", oauth.ErrTokenSave, err)
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire connection: %w", oauth.ErrTokenSave, err)
	}
	defer conn.Release()

	now := time.Now().UTC()
	_, err = conn.Exec(ctx, `
        INSERT INTO oauth_tokens (gateway, access_token, created_at, updated_at)
        VALUES ($1, $2, $3, $3)
        ON CONFLICT (gateway)
        DO UPDATE SET access_token = EXCLUDED.access_token, updated_at = EXCLUDED.updated_at
    `, gatewayHandle, payload, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %w", oauth.ErrTokenSave, ErrConflict)
		}
		return fmt.Errorf("%w: upsert token: %w", oauth.ErrTokenSave, err)
	}

	return nil
}

// Find loads the token for a gateway handle.
func (s *PostgresTokenStore) Find(ctx context.Context, gatewayHandle string) (oauth.Token, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return oauth.Token{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT access_token
        FROM oauth_tokens
        WHERE gateway = $1
    `, gatewayHandle)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return oauth.Token{}, oauth.ErrTokenNotFound
		}
		return oauth.Token{}, fmt.Errorf("select token: %w", err)
	}

	var token oauth.Token
	if err := json.Unmarshal(payload, &token); err != nil {
		return oauth.Token{}, fmt.Errorf("%w: decode token: %w", oauth.ErrTokenInvalid, err)
	}

	return token, nil
}

// Delete removes the token for a gateway handle.
func (s *PostgresTokenStore) Delete(ctx context.Context, gatewayHandle string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire connection: %w", oauth.ErrTokenDelete, err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM oauth_tokens
        WHERE gateway = $1
    `, gatewayHandle)
	if err != nil {
		return fmt.Errorf("%w: delete token: %w", oauth.ErrTokenDelete, err)
	}

	if tag.RowsAffected() == 0 {
		return oauth.ErrTokenNotFound
	}

	return nil
}
