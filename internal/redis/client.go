// Redis 실행 잠금 / 최근 run 캐시
//
// 환경변수:
//   - REDIS_ADDR: host:port (비어있으면 사용 안 함)
//   - REDIS_PASSWORD
//   - REDIS_DB (default: 0)
//
// 키:
//   - dqsync:run:lock   - 실행 중인 run_id (SET NX PX, TTL = SYNC_LOCK_TTL)
//   - dqsync:run:latest - 마지막 run JSON

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kube-rca/dqsync/internal/config"
	"github.com/kube-rca/dqsync/internal/model"
)

const (
	lockKey      = "dqsync:run:lock"
	latestRunKey = "dqsync:run:latest"

	latestRunTTL = 7 * 24 * time.Hour
)

// owner가 일치할 때만 삭제
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Client struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger = logger.Named("redis")
	logger.Info("Connected to Redis", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// AcquireRunLock - 다른 replica가 잡고 있으면 false
func (c *Client) AcquireRunLock(ctx context.Context, owner string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, lockKey, owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		holder, _ := c.rdb.Get(ctx, lockKey).Result()
		c.logger.Info("Run lock held by another run", zap.String("holder", holder))
	}
	return ok, nil
}

func (c *Client) ReleaseRunLock(ctx context.Context, owner string) error {
	n, err := releaseScript.Run(ctx, c.rdb, []string{lockKey}, owner).Int()
	if err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	if n == 0 {
		// TTL이 먼저 만료됐거나 다른 run이 잡음
		c.logger.Warn("Run lock was not held by this run", zap.String("owner", owner))
	}
	return nil
}

func (c *Client) SaveLatestRun(ctx context.Context, run model.SyncRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal sync run: %w", err)
	}
	if err := c.rdb.Set(ctx, latestRunKey, data, latestRunTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache sync run: %w", err)
	}
	return nil
}

// GetLatestRun - 캐시가 비어있으면 (nil, nil)
func (c *Client) GetLatestRun(ctx context.Context) (*model.SyncRun, error) {
	data, err := c.rdb.Get(ctx, latestRunKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached sync run: %w", err)
	}

	var run model.SyncRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached sync run: %w", err)
	}
	return &run, nil
}
