package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const onceTTL = 10 * time.Minute

// CallbackOnceGuard enforces at-most-once processing of callback nonces.
// Key format: authcb:<nonce>
type CallbackOnceGuard struct {
	client *redis.Client
}

func NewCallbackOnceGuard(client *redis.Client) *CallbackOnceGuard {
	return &CallbackOnceGuard{client: client}
}

// MarkProcessed records the nonce and reports whether this was the first
// time it was seen. Marks expire after onceTTL; a provider nonce is only
// replayable within its own short validity window.
func (g *CallbackOnceGuard) MarkProcessed(ctx context.Context, nonce string) (bool, error) {
	first, err := g.client.SetNX(ctx, "authcb:"+nonce, "1", onceTTL).Result()
	if err != nil {
		return false, fmt.Errorf("callback once mark: %w", err)
	}
	return first, nil
}
