package summarycache

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/text-summarizer/internal/domain/summarizer"
)

// ValkeyCache shares chunk summaries across instances through a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "summary"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

func (c *ValkeyCache) Get(ctx context.Context, key string) (string, bool, error) {
	cmd := c.client.B().Get().Key(c.entryKey(key)).Build()
	value, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (c *ValkeyCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	builder := c.client.B().Set().Key(c.entryKey(key)).Value(value)
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) entryKey(key string) string {
	return c.prefix + ":chunk:" + key
}

var _ summarizer.Cache = (*ValkeyCache)(nil)
