package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"shortstory/internal/survey"
)

// ErrSessionNotFound is returned for unknown or expired session IDs
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository stores participant sessions between requests
type SessionRepository interface {
	Get(ctx context.Context, id string) (*survey.Session, error)
	Save(ctx context.Context, s *survey.Session) error
	Delete(ctx context.Context, id string) error
	Close() error
}

func encodeSession(s *survey.Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return data, nil
}

func decodeSession(data []byte) (*survey.Session, error) {
	var s survey.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

// MemorySessionRepository keeps encoded sessions in a map. Every Get returns
// a fresh copy, so callers never share a session value.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemorySessionRepository creates a repository whose entries expire ttl after
// their last save. Expired entries are swept every cleanupEvery until Close.
func NewMemorySessionRepository(ttl, cleanupEvery time.Duration) *MemorySessionRepository {
	r := &MemorySessionRepository{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go r.cleanupLoop(cleanupEvery)
	return r
}

func (r *MemorySessionRepository) Get(_ context.Context, id string) (*survey.Session, error) {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || r.now().After(entry.expiresAt) {
		return nil, ErrSessionNotFound
	}
	return decodeSession(entry.data)
}

func (r *MemorySessionRepository) Save(_ context.Context, s *survey.Session) error {
	data, err := encodeSession(s)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.sessions[s.ID] = memoryEntry{data: data, expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included until swept
func (r *MemorySessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops the cleanup goroutine
func (r *MemorySessionRepository) Close() error {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
	return nil
}

func (r *MemorySessionRepository) cleanupLoop(every time.Duration) {
	defer close(r.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.cleanupExpired()
		}
	}
}

func (r *MemorySessionRepository) cleanupExpired() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, entry := range r.sessions {
		if now.After(entry.expiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

const redisSessionPrefix = "sst:session:"

// RedisSessionRepository shares sessions between replicas; Redis handles expiry
type RedisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionRepository connects and pings Redis
func NewRedisSessionRepository(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisSessionRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisSessionRepository{client: client, ttl: ttl}, nil
}

func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*survey.Session, error) {
	data, err := r.client.Get(ctx, redisSessionPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(data)
}

func (r *RedisSessionRepository) Save(ctx context.Context, s *survey.Session) error {
	data, err := encodeSession(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisSessionPrefix+s.ID, data, r.ttl).Err()
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, redisSessionPrefix+id).Err()
}

func (r *RedisSessionRepository) Close() error {
	return r.client.Close()
}
