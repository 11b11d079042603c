package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/globaledge/globaledge/shared/contracts"
	"github.com/go-redis/redis/v8"
)

const draftKeyPrefix = "globaledge:draft:"

// RedisDraftStore keeps drafts as JSON strings whose key TTL matches the
// draft's ExpiresAt, so Redis does the expiry.
type RedisDraftStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisDraftStore connects and pings within two seconds.
func NewRedisDraftStore(ctx context.Context, addr, password string, db int) (*RedisDraftStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisDraftStore{client: client, now: time.Now}, nil
}

func (s *RedisDraftStore) Close() error {
	return s.client.Close()
}

func (s *RedisDraftStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisDraftStore) SaveDraft(ctx context.Context, draft contracts.BookingDraft) error {
	ttl := draft.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.DeleteDraft(ctx, draft.ID)
	}
	body, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKeyPrefix+draft.ID, body, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (s *RedisDraftStore) GetDraft(ctx context.Context, id string) (contracts.BookingDraft, error) {
	body, err := s.client.Get(ctx, draftKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return contracts.BookingDraft{}, ErrDraftNotFound
	}
	if err != nil {
		return contracts.BookingDraft{}, fmt.Errorf("failed to load draft: %w", err)
	}
	var d contracts.BookingDraft
	if err := json.Unmarshal(body, &d); err != nil {
		return contracts.BookingDraft{}, fmt.Errorf("failed to decode draft %s: %w", id, err)
	}
	return d, nil
}

func (s *RedisDraftStore) DeleteDraft(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, draftKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
