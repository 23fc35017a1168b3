package cache

import (
	"context"
	"encoding/json"
	"errors"
	"ev-route-planner/internal/domain"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefixSuggestions = "planner:suggest:"

// RedisSuggestionCache stores suggestion lists as JSON strings with a TTL.
type RedisSuggestionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// ConnectRedis opens a client and verifies the server answers PING.
func ConnectRedis(ctx context.Context, addr string, ttl time.Duration) (*RedisSuggestionCache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewRedisSuggestionCache(rdb, ttl), nil
}

func NewRedisSuggestionCache(client *redis.Client, ttl time.Duration) *RedisSuggestionCache {
	return &RedisSuggestionCache{client: client, ttl: ttl}
}

func suggestionKey(query string) string {
	return keyPrefixSuggestions + query
}

func (c *RedisSuggestionCache) Get(ctx context.Context, query string) ([]domain.Suggestion, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false, nil
	}

	val, err := c.client.Get(ctx, suggestionKey(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get suggestions %q: %w", query, err)
	}

	var out []domain.Suggestion
	if err := json.Unmarshal(val, &out); err != nil {
		return nil, false, fmt.Errorf("decode suggestions %q: %w", query, err)
	}
	return out, true, nil
}

func (c *RedisSuggestionCache) Put(ctx context.Context, query string, suggestions []domain.Suggestion) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("put suggestions: empty query key")
	}

	data, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("encode suggestions %q: %w", query, err)
	}

	if err := c.client.Set(ctx, suggestionKey(query), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set suggestions %q: %w", query, err)
	}
	return nil
}

func (c *RedisSuggestionCache) Close() error {
	return c.client.Close()
}
