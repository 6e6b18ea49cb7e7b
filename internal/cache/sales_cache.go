// Package cache drops Redis-cached sales and stock summaries when the data
// behind them changes.
package cache

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyNamespace         = "backoffice:"
	defaultScanBatchSize = 100
)

// RedisSalesCache invalidates report keys written by dashboard readers.
type RedisSalesCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisClient connects and pings; callers own the returned client.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewRedisSalesCache(client *redis.Client, logger *zap.Logger) *RedisSalesCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSalesCache{client: client, logger: logger}
}

// DailySalesKey is the summary of one business day
func DailySalesKey(day time.Time) string {
	return keyNamespace + "daily_sales_" + day.Format("2006-01-02")
}

// MonthlySummaryKey is the summary of the month containing day
func MonthlySummaryKey(day time.Time) string {
	return fmt.Sprintf("%smonthly_summary_%d_%d", keyNamespace, day.Year(), int(day.Month()))
}

// TopProductsPattern matches every top-products ranking, whatever its window or limit.
func TopProductsPattern() string {
	return keyNamespace + "top_products_*"
}

// LowStockPattern matches every low-stock listing, whatever its threshold.
func LowStockPattern() string {
	return keyNamespace + "low_stock_products_*"
}

// InvalidateSales drops the day and month summaries of day and all rankings.
func (c *RedisSalesCache) InvalidateSales(ctx context.Context, day time.Time) error {
	if err := c.client.Del(ctx, DailySalesKey(day), MonthlySummaryKey(day)).Err(); err != nil {
		return fmt.Errorf("failed to delete sales summaries: %w", err)
	}
	return c.deletePattern(ctx, TopProductsPattern())
}

// InvalidateProducts drops the low-stock listings.
func (c *RedisSalesCache) InvalidateProducts(ctx context.Context) error {
	return c.deletePattern(ctx, LowStockPattern())
}

func (c *RedisSalesCache) deletePattern(ctx context.Context, pattern string) error {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, defaultScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete %s: %w", pattern, err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.logger.Debug("invalidated cache keys", zap.String("pattern", pattern), zap.Int("deleted", deleted))
	return nil
}
