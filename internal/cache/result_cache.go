package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/vision"
)

// ResultCache keeps finished predictions keyed by the SHA-256 of the raw
// upload, so resubmissions of the same image skip inference.
type ResultCache struct {
	client    *redisv9.Client
	resultTTL time.Duration
}

func NewResultCache(client *redisv9.Client, resultTTL time.Duration) *ResultCache {
	if resultTTL <= 0 {
		resultTTL = 24 * time.Hour
	}
	return &ResultCache{
		client:    client,
		resultTTL: resultTTL,
	}
}

func (c *ResultCache) Get(ctx context.Context, digest string) (*vision.Prediction, bool, error) {
	raw, err := c.client.Get(ctx, c.resultKey(digest)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get result failed: %w", err)
	}

	var prediction vision.Prediction
	if err := json.Unmarshal([]byte(raw), &prediction); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached result failed: %w", err)
	}
	return &prediction, true, nil
}

func (c *ResultCache) Set(ctx context.Context, digest string, prediction *vision.Prediction) error {
	payload, err := json.Marshal(prediction)
	if err != nil {
		return fmt.Errorf("marshal result cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.resultKey(digest), payload, c.resultTTL).Err(); err != nil {
		return fmt.Errorf("redis set result failed: %w", err)
	}
	return nil
}

func (c *ResultCache) resultKey(digest string) string {
	return fmt.Sprintf("predict:sha256:%s", digest)
}
