package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	setCacheValue = Set
	getCacheValue = Get
)

// SetJSON stores v encoded as JSON
func SetJSON(ctx context.Context, key string, v interface{}, expiration time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return setCacheValue(ctx, key, payload, expiration)
}

// GetJSON decodes the JSON value at key into dest. It reports false, with a
// nil error, when the key does not exist.
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := getCacheValue(ctx, key)
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	return true, nil
}
