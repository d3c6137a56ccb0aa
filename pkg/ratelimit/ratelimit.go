package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Store is a fixed-window counter store.
// Implementations must make Increment atomic per key.
type Store interface {
	// Get returns the current count for key, or 0 if the key is missing or expired.
	Get(ctx context.Context, key string) (int64, error)

	// Increment adds one to key. The expiry is set to now+window only when the
	// key did not exist or had expired.
	Increment(ctx context.Context, key string, window time.Duration) error
}

// Decision is the outcome of Check.
type Decision struct {
	Count     int64
	Limit     int64
	Remaining int64
	Allowed   bool
}

// Check rejects the call when the current count has reached limit, and
// otherwise counts it. Store failures are wrapped with ErrStoreUnavailable.
func Check(ctx context.Context, s Store, key string, limit int64, window time.Duration) (Decision, error) {
	if limit <= 0 {
		return Decision{}, ErrInvalidLimit
	}
	if err := validate(key, window); err != nil {
		return Decision{}, err
	}

	count, err := s.Get(ctx, key)
	if err != nil {
		return Decision{}, unavailable(err)
	}
	if count >= limit {
		return Decision{Count: count, Limit: limit}, nil
	}

	if err := s.Increment(ctx, key, window); err != nil {
		return Decision{}, unavailable(err)
	}
	count++
	return Decision{
		Allowed:   true,
		Count:     count,
		Limit:     limit,
		Remaining: max(limit-count, 0),
	}, nil
}

func validate(key string, window time.Duration) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	if window <= 0 {
		return ErrInvalidWindow
	}
	return nil
}

func unavailable(err error) error {
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return errors.Join(ErrStoreUnavailable, err)
}
