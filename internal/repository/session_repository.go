package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/erp-access-api/internal/models"
)

const sessionKeyPrefix = "session:user:"

// SessionRepository stores the "current user" record that attributes audit
// entries. The record is written by the login flow and removed on logout;
// audit logging reads it best-effort and degrades to the anonymous identity
// when absent.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository creates a session store with the given record TTL.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionRepository{client: client, ttl: ttl}
}

// Set persists the current-user record for a session.
func (r *SessionRepository) Set(ctx context.Context, sessionID string, user models.SessionUser) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+sessionID, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("store session user: %w", err)
	}
	return nil
}

// Get loads the current-user record for a session.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*models.SessionUser, error) {
	payload, err := r.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, err
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	var user models.SessionUser
	if err := json.Unmarshal(payload, &user); err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	return &user, nil
}

// Delete removes the current-user record for a session.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session user: %w", err)
	}
	return nil
}
