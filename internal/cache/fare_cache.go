// Package cache stores fare lookups in Redis as JSON documents.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/flight-booking/internal/model"
)

type FareCache struct {
	redis *redis.Client
}

func NewFareCache(redisClient *redis.Client) *FareCache {
	return &FareCache{redis: redisClient}
}

// GetRoute returns the cached fares of a route and class.  ok is false on
// a cache miss.
func (c *FareCache) GetRoute(ctx context.Context, from, to string, class model.TravelClass) (model.FareMap, bool, error) {
	data, err := c.redis.Get(ctx, FareKey(from, to, class)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.FareMap{}, false, nil
		}
		return model.FareMap{}, false, fmt.Errorf("redis get fares: %w", err)
	}

	var fares model.FareMap
	if err := json.Unmarshal([]byte(data), &fares); err != nil {
		return model.FareMap{}, false, fmt.Errorf("unmarshal cached fares: %w", err)
	}
	return fares, true, nil
}

func (c *FareCache) SetRoute(ctx context.Context, from, to string, class model.TravelClass, fares model.FareMap, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(fares)
	if err != nil {
		return fmt.Errorf("marshal fares for cache: %w", err)
	}
	if err := c.redis.Set(ctx, FareKey(from, to, class), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set fares: %w", err)
	}
	return nil
}

// DeleteRoute drops the cached fares of a route and class.
func (c *FareCache) DeleteRoute(ctx context.Context, from, to string, class model.TravelClass) error {
	if err := c.redis.Del(ctx, FareKey(from, to, class)).Err(); err != nil {
		return fmt.Errorf("redis del fares: %w", err)
	}
	return nil
}

// FareKey is fare:<FROM>:<TO>:<class>.
func FareKey(from, to string, class model.TravelClass) string {
	return fmt.Sprintf("fare:%s:%s:%s",
		strings.ToUpper(strings.TrimSpace(from)),
		strings.ToUpper(strings.TrimSpace(to)),
		strings.ToLower(string(class)))
}
