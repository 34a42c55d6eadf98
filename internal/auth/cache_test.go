package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource counts upstream fetches and can be told to fail.
type countingSource struct {
	fetches atomic.Int32
	err     error
	delay   time.Duration
}

func (s *countingSource) Fetch(ctx context.Context, authorityURL string) (*KeySet, error) {
	s.fetches.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &KeySet{
		AuthorityURL: authorityURL,
		Keys:         []SigningKey{{KID: "kid-1", Alg: "RS256"}},
	}, nil
}

func TestKeyCache(t *testing.T) {
	authority := "https://auth.example.com"

	t.Run("repeated gets within the TTL hit the cache", func(t *testing.T) {
		source := &countingSource{}
		cache := NewKeyCache(source, time.Hour)

		for i := 0; i < 5; i++ {
			set, err := cache.Get(context.Background(), authority)
			require.NoError(t, err)
			assert.Equal(t, authority, set.AuthorityURL)
		}
		assert.Equal(t, int32(1), source.fetches.Load())
	})

	t.Run("an expired entry is refetched and replaced", func(t *testing.T) {
		source := &countingSource{}
		cache := NewKeyCache(source, time.Hour)

		current := time.Now()
		cache.now = func() time.Time { return current }

		_, err := cache.Get(context.Background(), authority)
		require.NoError(t, err)

		// Still fresh just before expiry.
		current = current.Add(time.Hour - time.Second)
		_, err = cache.Get(context.Background(), authority)
		require.NoError(t, err)
		assert.Equal(t, int32(1), source.fetches.Load())

		// Expired: exactly one new fetch.
		current = current.Add(2 * time.Second)
		_, err = cache.Get(context.Background(), authority)
		require.NoError(t, err)
		assert.Equal(t, int32(2), source.fetches.Load())
	})

	t.Run("concurrent cold gets share a single upstream fetch", func(t *testing.T) {
		source := &countingSource{delay: 20 * time.Millisecond}
		cache := NewKeyCache(source, time.Hour)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				set, err := cache.Get(context.Background(), authority)
				assert.NoError(t, err)
				assert.NotNil(t, set)
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), source.fetches.Load())
	})

	t.Run("failed fetches are not cached", func(t *testing.T) {
		source := &countingSource{err: errors.New("authority down")}
		cache := NewKeyCache(source, time.Hour)

		_, err := cache.Get(context.Background(), authority)
		require.Error(t, err)

		// The next request retries instead of serving a cached failure.
		source.err = nil
		set, err := cache.Get(context.Background(), authority)
		require.NoError(t, err)
		assert.Len(t, set.Keys, 1)
		assert.Equal(t, int32(2), source.fetches.Load())
	})

	t.Run("invalidate forces a fresh fetch", func(t *testing.T) {
		source := &countingSource{}
		cache := NewKeyCache(source, time.Hour)

		_, err := cache.Get(context.Background(), authority)
		require.NoError(t, err)

		cache.Invalidate(authority)

		_, err = cache.Get(context.Background(), authority)
		require.NoError(t, err)
		assert.Equal(t, int32(2), source.fetches.Load())
	})
}
