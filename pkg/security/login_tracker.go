package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"frecks-web/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

// LoginTrackerConfig holds configuration for login tracking
type LoginTrackerConfig struct {
	MaxAttempts   int           // failed attempts before a block
	AttemptWindow time.Duration // window in which failures are counted
	BlockDuration time.Duration // how long a block lasts
}

func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// LoginTracker counts failed sign-ins per email and blocks the email for a
// while once MaxAttempts is reached. Counters live in Redis when it is
// configured and in process otherwise.
type LoginTracker struct {
	config LoginTrackerConfig
	logger *SecurityLogger
	now    func() time.Time

	mu    sync.Mutex
	local map[string]localCounter
}

type localCounter struct {
	count     int
	expiresAt time.Time
}

func NewLoginTracker(config LoginTrackerConfig) *LoginTracker {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultLoginTrackerConfig().MaxAttempts
	}
	return &LoginTracker{
		config: config,
		logger: DefaultLogger(),
		now:    time.Now,
		local:  make(map[string]localCounter),
	}
}

const (
	failSignInPrefix    = "fail:signin:"
	blockedSignInPrefix = "blocked:signin:"
)

// Atomic increment with TTL on first set. Returns the count after increment.
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsBlocked reports whether sign-ins for email are currently blocked.
func (lt *LoginTracker) IsBlocked(ctx context.Context, email string) (bool, error) {
	key := blockedSignInPrefix + normalizeEmail(email)

	if client := redis.Client(); client != nil {
		exists, err := client.Exists(ctx, key).Result()
		if err != nil {
			return false, fmt.Errorf("failed to check sign-in block: %w", err)
		}
		return exists > 0, nil
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()
	_, ok := lt.liveLocked(key)
	return ok, nil
}

// RecordFailedAttempt counts a rejected sign-in and creates the block when the
// limit is reached. It returns whether the email is now blocked.
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, email, ip, requestID string) (bool, int, error) {
	email = normalizeEmail(email)
	failKey := failSignInPrefix + email

	var (
		count int
		err   error
	)
	if client := redis.Client(); client != nil {
		count, err = lt.atomicIncrement(ctx, client, failKey, int(lt.config.AttemptWindow.Seconds()))
		if err != nil {
			return false, 0, fmt.Errorf("failed to increment sign-in failures: %w", err)
		}
	} else {
		count = lt.incrementLocal(failKey)
	}

	if count < lt.config.MaxAttempts {
		return false, count, nil
	}
	if err := lt.createBlock(ctx, email); err != nil {
		return true, count, fmt.Errorf("failed to create sign-in block: %w", err)
	}
	lt.logger.LogSignInBlocked(ctx, email, ip, requestID, count, lt.config.BlockDuration)
	return true, count, nil
}

// ClearAttempts resets the failure counter after a successful sign-in.
func (lt *LoginTracker) ClearAttempts(ctx context.Context, email string) error {
	failKey := failSignInPrefix + normalizeEmail(email)

	if client := redis.Client(); client != nil {
		if err := client.Del(ctx, failKey).Err(); err != nil {
			return fmt.Errorf("failed to clear sign-in failures: %w", err)
		}
		return nil
	}

	lt.mu.Lock()
	delete(lt.local, failKey)
	lt.mu.Unlock()
	return nil
}

// RemainingAttempts returns how many failures remain before a block.
func (lt *LoginTracker) RemainingAttempts(ctx context.Context, email string) (int, error) {
	failKey := failSignInPrefix + normalizeEmail(email)

	count := 0
	if client := redis.Client(); client != nil {
		n, err := client.Get(ctx, failKey).Int()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return 0, fmt.Errorf("failed to get sign-in failures: %w", err)
		}
		count = n
	} else {
		lt.mu.Lock()
		c, _ := lt.liveLocked(failKey)
		lt.mu.Unlock()
		count = c.count
	}

	remaining := lt.config.MaxAttempts - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (lt *LoginTracker) atomicIncrement(ctx context.Context, client *goredis.Client, key string, ttlSeconds int) (int, error) {
	result, err := client.Eval(ctx, incrWithTTLScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, err
	}
	count, ok := result.(int64)
	if !ok {
		return 0, errors.New("unexpected result type from Lua script")
	}
	return int(count), nil
}

func (lt *LoginTracker) createBlock(ctx context.Context, email string) error {
	key := blockedSignInPrefix + email

	if client := redis.Client(); client != nil {
		return client.Set(ctx, key, "1", lt.config.BlockDuration).Err()
	}

	lt.mu.Lock()
	lt.local[key] = localCounter{count: 1, expiresAt: lt.now().Add(lt.config.BlockDuration)}
	lt.mu.Unlock()
	return nil
}

func (lt *LoginTracker) incrementLocal(key string) int {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	c, ok := lt.liveLocked(key)
	if !ok {
		c = localCounter{expiresAt: lt.now().Add(lt.config.AttemptWindow)}
	}
	c.count++
	lt.local[key] = c
	return c.count
}

// liveLocked returns the unexpired counter for key, pruning it if expired.
func (lt *LoginTracker) liveLocked(key string) (localCounter, bool) {
	c, ok := lt.local[key]
	if !ok {
		return localCounter{}, false
	}
	if !lt.now().Before(c.expiresAt) {
		delete(lt.local, key)
		return localCounter{}, false
	}
	return c, true
}
