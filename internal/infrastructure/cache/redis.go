package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-admin/internal/config"
	"loan-admin/internal/domain/analytics"

	"github.com/redis/go-redis/v9"
)

const dashboardKey = "loan-admin:analytics:dashboard"

// NewRedisClient returns nil when no address is configured or the server is
// unreachable; callers treat a nil client as "run without Redis".
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	if cfg.Addr == "" {
		logger.Info("Redis address not configured; running without Redis.")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Failed to connect to Redis; running without Redis.", "addr", cfg.Addr, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("Connected to Redis", "addr", cfg.Addr, "db", cfg.DB)
	return client
}

type DashboardCache struct {
	client redis.Cmdable
	key    string
	logger *slog.Logger
}

var _ analytics.Cache = (*DashboardCache)(nil)

func NewDashboardCache(client redis.Cmdable, logger *slog.Logger) *DashboardCache {
	return &DashboardCache{
		client: client,
		key:    dashboardKey,
		logger: logger.With("component", "DashboardCache"),
	}
}

func (c *DashboardCache) Get(ctx context.Context) (*analytics.Dashboard, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, analytics.ErrCacheMiss
		}
		c.logger.WarnContext(ctx, "Failed to read dashboard from cache", "error", err)
		return nil, fmt.Errorf("reading dashboard cache: %w", err)
	}
	return decodeDashboard(raw)
}

func (c *DashboardCache) Set(ctx context.Context, d *analytics.Dashboard, ttl time.Duration) error {
	raw, err := encodeDashboard(d)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key, raw, ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Failed to write dashboard to cache", "error", err)
		return fmt.Errorf("writing dashboard cache: %w", err)
	}
	c.logger.DebugContext(ctx, "Dashboard cached", "ttl", ttl)
	return nil
}

func (c *DashboardCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		c.logger.WarnContext(ctx, "Failed to drop cached dashboard", "error", err)
		return fmt.Errorf("invalidating dashboard cache: %w", err)
	}
	return nil
}

func encodeDashboard(d *analytics.Dashboard) ([]byte, error) {
	if d == nil {
		return nil, errors.New("nil dashboard")
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encoding dashboard: %w", err)
	}
	return raw, nil
}

func decodeDashboard(raw []byte) (*analytics.Dashboard, error) {
	var d analytics.Dashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decoding cached dashboard: %w", err)
	}
	return &d, nil
}
