// Package lock provides a single-key mutex on redis shared by every API
// replica.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrHeld    = errors.New("lock is held by another owner")
	ErrNotHeld = errors.New("lock is not held by this owner")
)

// release deletes the key only while it still carries our token.
const releaseScript = "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end"

// Mutex is a lock on one redis key. The random token makes sure only the
// owner can release it.
type Mutex struct {
	client redis.UniversalClient
	key    string
	token  string
}

// New creates a mutex on key with a fresh owner token. Nothing is sent to
// redis until TryLock or Lock.
//
// Parameters:
// - client redis.UniversalClient: the redis holding the key.
// - key string: the lock key.
//
// Returns:
// - *Mutex: the unlocked mutex.
func New(client redis.UniversalClient, key string) *Mutex {
	return newMutex(client, key, uuid.NewString())
}

func newMutex(client redis.UniversalClient, key, token string) *Mutex {
	return &Mutex{client: client, key: key, token: token}
}

func (m *Mutex) Key() string {
	return m.key
}

// TryLock takes the lock once. The lock expires after ttl even if never
// released.
func (m *Mutex) TryLock(ctx context.Context, ttl time.Duration) error {
	ok, err := m.client.SetNX(ctx, m.key, m.token, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", m.key, ErrHeld)
	}
	return nil
}

// Lock retries TryLock with jittered backoff for at most wait. Redis errors
// stop the retries immediately.
func (m *Mutex) Lock(ctx context.Context, ttl, wait time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	b.MaxElapsedTime = wait

	return backoff.Retry(func() error {
		err := m.TryLock(ctx, ttl)
		if err == nil || errors.Is(err, ErrHeld) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(b, ctx))
}

// Unlock releases the lock if this mutex still owns it. ErrNotHeld means the
// lock expired or was taken over.
func (m *Mutex) Unlock(ctx context.Context) error {
	n, err := m.client.Eval(ctx, releaseScript, []string{m.key}, m.token).Int64()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", m.key, ErrNotHeld)
	}
	return nil
}
