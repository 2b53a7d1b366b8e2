package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const resetTokenKeyPrefix = "reset_token:"

// redisResetTokenStore keeps reset tokens in Redis with a TTL matching their expiry
type redisResetTokenStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisResetTokenStore creates a Redis-backed reset token store
func NewRedisResetTokenStore(client *redis.Client) ResetTokenStore {
	return &redisResetTokenStore{client: client, now: time.Now}
}

func resetTokenKey(tokenHash string) string {
	return resetTokenKeyPrefix + tokenHash
}

// Save stores the record until it expires
func (s *redisResetTokenStore) Save(ctx context.Context, tokenHash string, rec ResetTokenRecord) error {
	ttl := rec.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return ErrResetTokenExpired
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, resetTokenKey(tokenHash), payload, ttl).Err()
}

// Get loads a record without consuming it
func (s *redisResetTokenStore) Get(ctx context.Context, tokenHash string) (*ResetTokenRecord, error) {
	payload, err := s.client.Get(ctx, resetTokenKey(tokenHash)).Bytes()
	return decodeResetToken(payload, err)
}

// Consume loads and deletes a record with GETDEL
func (s *redisResetTokenStore) Consume(ctx context.Context, tokenHash string) (*ResetTokenRecord, error) {
	payload, err := s.client.GetDel(ctx, resetTokenKey(tokenHash)).Bytes()
	return decodeResetToken(payload, err)
}

// Delete removes a record
func (s *redisResetTokenStore) Delete(ctx context.Context, tokenHash string) error {
	return s.client.Del(ctx, resetTokenKey(tokenHash)).Err()
}

// PurgeExpired is a no-op; Redis expires keys on its own
func (s *redisResetTokenStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func decodeResetToken(payload []byte, err error) (*ResetTokenRecord, error) {
	if errors.Is(err, redis.Nil) {
		return nil, ErrResetTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec ResetTokenRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
