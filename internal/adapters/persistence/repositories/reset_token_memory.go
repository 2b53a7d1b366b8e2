package repositories

import (
	"context"
	"sync"
	"time"
)

// memoryResetTokenStore keeps reset tokens in process memory.
// Tokens are lost on restart; used when Redis is not configured.
type memoryResetTokenStore struct {
	mu     sync.Mutex
	tokens map[string]ResetTokenRecord
}

// NewMemoryResetTokenStore creates an in-memory reset token store
func NewMemoryResetTokenStore() ResetTokenStore {
	return &memoryResetTokenStore{tokens: make(map[string]ResetTokenRecord)}
}

func (s *memoryResetTokenStore) Save(ctx context.Context, tokenHash string, rec ResetTokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = rec
	return nil
}

func (s *memoryResetTokenStore) Get(ctx context.Context, tokenHash string) (*ResetTokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tokens[tokenHash]
	if !ok {
		return nil, ErrResetTokenNotFound
	}
	return &rec, nil
}

func (s *memoryResetTokenStore) Consume(ctx context.Context, tokenHash string) (*ResetTokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tokens[tokenHash]
	if !ok {
		return nil, ErrResetTokenNotFound
	}
	delete(s.tokens, tokenHash)
	return &rec, nil
}

func (s *memoryResetTokenStore) Delete(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenHash)
	return nil
}

// PurgeExpired drops every record that expired before now
func (s *memoryResetTokenStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for hash, rec := range s.tokens {
		if rec.ExpiresAt.Before(now) {
			delete(s.tokens, hash)
			purged++
		}
	}
	return purged, nil
}
