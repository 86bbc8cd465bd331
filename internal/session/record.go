package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Record is the persisted side of a browser session: auth tokens and the
// theme preference. It survives server restarts and idle teardown.
type Record struct {
	ID           string    `json:"id"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	Theme        string    `json:"theme,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ClearTokens drops the auth part of the record and keeps preferences.
func (r *Record) ClearTokens() {
	r.AccessToken = ""
	r.RefreshToken = ""
	r.UserID = ""
	r.ExpiresAt = time.Time{}
}

// Persistence stores Records. Load returns (nil, nil) for unknown ids.
type Persistence interface {
	Load(ctx context.Context, id string) (*Record, error)
	// Update applies fn to the record (a fresh one if absent) atomically and
	// stores the result with the given ttl.
	Update(ctx context.Context, id string, ttl time.Duration, fn func(*Record)) error
	Delete(ctx context.Context, id string) error
}

// MemoryPersistence keeps records in process; used when Redis is not configured.
type MemoryPersistence struct {
	mu      sync.Mutex
	records map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{
		records: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryPersistence) Load(_ context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	if m.now().After(e.expiresAt) {
		delete(m.records, id)
		return nil, nil
	}
	rec := e.rec
	return &rec, nil
}

func (m *MemoryPersistence) Update(_ context.Context, id string, ttl time.Duration, fn func(*Record)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := Record{ID: id}
	if e, ok := m.records[id]; ok && !m.now().After(e.expiresAt) {
		rec = e.rec
	}
	fn(&rec)
	rec.UpdatedAt = m.now()
	m.records[id] = memoryEntry{rec: rec, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryPersistence) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

// RedisPersistence stores records as JSON under "browser:<id>".
type RedisPersistence struct {
	client *goredis.Client
	prefix string
}

func NewRedisPersistence(client *goredis.Client) *RedisPersistence {
	return &RedisPersistence{
		client: client,
		prefix: "browser:",
	}
}

func (r *RedisPersistence) key(id string) string {
	return r.prefix + id
}

func (r *RedisPersistence) Load(ctx context.Context, id string) (*Record, error) {
	val, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal record: %w", err)
	}
	return &rec, nil
}

const maxUpdateRetries = 5

func (r *RedisPersistence) Update(ctx context.Context, id string, ttl time.Duration, fn func(*Record)) error {
	key := r.key(id)
	txf := func(tx *goredis.Tx) error {
		rec := Record{ID: id}
		val, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, goredis.Nil):
		case err != nil:
			return err
		default:
			if err := json.Unmarshal(val, &rec); err != nil {
				return fmt.Errorf("session: failed to unmarshal record: %w", err)
			}
		}

		fn(&rec)
		rec.UpdatedAt = time.Now()
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("session: failed to marshal record: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("session: record %s: too much contention", id)
}

func (r *RedisPersistence) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}
