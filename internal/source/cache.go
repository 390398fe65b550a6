package source

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"chapter-map/internal/logger"
	"chapter-map/internal/metrics"
)

// DefaultCacheTTL：载荷缓存默认有效期
const DefaultCacheTTL = 5 * time.Minute

// 文档注释：原始 CSV 载荷的 Redis 缓存
// 背景：多实例部署时避免每次启动或刷新都打到上游表格；缓存的是原始文本，解析始终在本地进行。
// 约束：nil 接收者或 nil 客户端即关闭缓存；Redis 错误只记日志，按未命中处理。
type PayloadCache struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewPayloadCache(rc *redis.Client, ttl time.Duration) *PayloadCache {
	if rc == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &PayloadCache{rc: rc, ttl: ttl}
}

func cacheKey(url string) string { return "csv:" + url }

// Get：命中返回载荷与 true
func (c *PayloadCache) Get(ctx context.Context, url string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.rc.Get(ctx, cacheKey(url)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.L().Warn("csv_cache_get_error", "err", err)
		}
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	metrics.CacheHitsTotal.Inc()
	logger.L().Debug("csv_cache_hit", "bytes", len(b))
	return b, true
}

func (c *PayloadCache) Set(ctx context.Context, url string, payload []byte) {
	if c == nil {
		return
	}
	if err := c.rc.Set(ctx, cacheKey(url), payload, c.ttl).Err(); err != nil {
		logger.L().Warn("csv_cache_set_error", "err", err)
	}
}

// Invalidate：强制刷新前删除缓存项
func (c *PayloadCache) Invalidate(ctx context.Context, url string) {
	if c == nil {
		return
	}
	if err := c.rc.Del(ctx, cacheKey(url)).Err(); err != nil {
		logger.L().Warn("csv_cache_del_error", "err", err)
	}
}
