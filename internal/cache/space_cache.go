// Package cache keeps a short-lived snapshot of the available-space listing
// in Redis. Booking admission never reads it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/logger"
)

const (
	availableSpacesKey = "cache:spaces:available"
	generationKey      = "cache:spaces:gen"
)

// setIfGeneration stores the snapshot only while the generation it was read
// under is still current. A missing generation counts as 0.
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

type SpaceCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewSpaceCache(client redis.Cmdable, ttl time.Duration) *SpaceCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SpaceCache{client: client, ttl: ttl}
}

// GetAvailable reports a miss with ok == false.
func (c *SpaceCache) GetAvailable(ctx context.Context) ([]domain.Space, bool, error) {
	data, err := c.client.Get(ctx, availableSpacesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var spaces []domain.Space
	if err := json.Unmarshal(data, &spaces); err != nil {
		logger.Warn("Discarding unreadable space cache entry", "error", err)
		return nil, false, nil
	}
	return spaces, true, nil
}

// Generation returns the invalidation counter. Read it before loading the
// listing from the store and pass it to SetAvailable.
func (c *SpaceCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetAvailable stores the listing unless an invalidation happened after
// generation was read. It reports whether the snapshot was stored.
func (c *SpaceCache) SetAvailable(ctx context.Context, generation int64, spaces []domain.Space) (bool, error) {
	if spaces == nil {
		spaces = []domain.Space{}
	}
	payload, err := json.Marshal(spaces)
	if err != nil {
		return false, err
	}
	stored, err := setIfGeneration.Run(ctx, c.client,
		[]string{generationKey, availableSpacesKey},
		generation, payload, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Invalidate bumps the generation and drops the snapshot in one MULTI block,
// so a fill that started before it can no longer be written.
func (c *SpaceCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, availableSpacesKey)
		return nil
	})
	return err
}
