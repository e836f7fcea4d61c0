package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyPrefix = "payment_idempotency:"
	idempotencyTTL       = 15 * time.Minute
)

func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// IdempotencyCache stores the {clientSecret, intentID} pair for a payment
// idempotency key. It is an accelerator only: entries expire after 15
// minutes and a miss always falls through to the durable store or the
// provider, so eviction or staleness can never double-charge anyone.
type IdempotencyCache struct {
	client *redis.Client
}

func NewIdempotencyCache(client *redis.Client) *IdempotencyCache {
	return &IdempotencyCache{client: client}
}

func (c *IdempotencyCache) GetIntent(ctx context.Context, idempotencyKey string) (clientSecret, intentID string, ok bool, err error) {
	val, err := c.client.Get(ctx, idempotencyKeyPrefix+idempotencyKey).Result()
	if err == redis.Nil {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, err
	}

	// Stored as "{clientSecret},{intentID}". A malformed entry is treated
	// as a miss rather than an error.
	parts := strings.SplitN(val, ",", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false, nil
	}
	return parts[0], parts[1], true, nil
}

func (c *IdempotencyCache) PutIntent(ctx context.Context, idempotencyKey, clientSecret, intentID string) error {
	value := clientSecret + "," + intentID
	return c.client.Set(ctx, idempotencyKeyPrefix+idempotencyKey, value, idempotencyTTL).Err()
}
