// Package cache stores financial KPI snapshots in Redis and carries the
// finance event feed over Redis pub/sub.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/personal-system/personal-backend/internal/config"
	"github.com/personal-system/personal-backend/internal/model"
)

// FinanceCache is the Redis-backed KPI snapshot cache and event publisher.
type FinanceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFinanceCache creates a FinanceCache. A non-positive ttl disables
// snapshot caching while keeping the event feed.
func NewFinanceCache(rdb *redis.Client, ttl time.Duration) *FinanceCache {
	return &FinanceCache{rdb: rdb, ttl: ttl}
}

// GetKPIs returns the cached snapshot for refMonth. ok is false on a miss.
func (c *FinanceCache) GetKPIs(ctx context.Context, refMonth string) (*model.FinancialKPIs, bool, error) {
	if c.ttl <= 0 {
		return nil, false, nil
	}
	data, err := c.rdb.Get(ctx, config.CacheKey.FinanceKPIKey(refMonth)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get kpi snapshot: %w", err)
	}
	var kpis model.FinancialKPIs
	if err := json.Unmarshal(data, &kpis); err != nil {
		return nil, false, fmt.Errorf("decode kpi snapshot: %w", err)
	}
	return &kpis, true, nil
}

// SetKPIs stores the snapshot for refMonth.
func (c *FinanceCache) SetKPIs(ctx context.Context, refMonth string, kpis *model.FinancialKPIs) error {
	if c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(kpis)
	if err != nil {
		return fmt.Errorf("encode kpi snapshot: %w", err)
	}
	return c.rdb.Set(ctx, config.CacheKey.FinanceKPIKey(refMonth), data, c.ttl).Err()
}

// InvalidateKPIs drops the snapshot for refMonth.
func (c *FinanceCache) InvalidateKPIs(ctx context.Context, refMonth string) error {
	return c.rdb.Del(ctx, config.CacheKey.FinanceKPIKey(refMonth)).Err()
}

// Publish sends the event to every finance feed subscriber.
func (c *FinanceCache) Publish(ctx context.Context, ev model.FinanceEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode finance event: %w", err)
	}
	return c.rdb.Publish(ctx, config.CacheKey.FinanceEventsChannel(), data).Err()
}

// Events subscribes to the finance feed. The channel is closed when ctx is
// done or the subscription drops. Payloads that do not decode are skipped.
func (c *FinanceCache) Events(ctx context.Context) (<-chan model.FinanceEvent, error) {
	pubsub := c.rdb.Subscribe(ctx, config.CacheKey.FinanceEventsChannel())
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe finance feed: %w", err)
	}

	out := make(chan model.FinanceEvent)
	go func() {
		defer close(out)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev model.FinanceEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
