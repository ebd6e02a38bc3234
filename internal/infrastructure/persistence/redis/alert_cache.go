package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AlertCache 补货告警去重缓存
// 设计说明:
// 一本书的可用库存跌破阈值后,每次库存操作都会触发一次补货检查,
// 不做去重会向MQ重复发送同一本书的告警。用SETNX+TTL做抑制窗口:
// 窗口期内同一图书只发一条告警,窗口过期后允许再次提醒
type AlertCache struct {
	client *redis.Client
	ttl    time.Duration
}

// DefaultAlertSuppressWindow 默认告警抑制窗口
const DefaultAlertSuppressWindow = 30 * time.Minute

// NewAlertCache 创建告警去重缓存
// ttl<=0时使用默认抑制窗口
func NewAlertCache(client *redis.Client, ttl time.Duration) *AlertCache {
	if ttl <= 0 {
		ttl = DefaultAlertSuppressWindow
	}
	return &AlertCache{client: client, ttl: ttl}
}

// ShouldAlert 判断是否应当发送该图书的补货告警
// 返回true表示窗口内首次触发(已占位),false表示窗口内已发过
// Redis不可用时放行告警(宁可重复,不可漏报)
func (c *AlertCache) ShouldAlert(ctx context.Context, bookID uint) bool {
	key := fmt.Sprintf("restock_alert:%d", bookID)

	ok, err := c.client.SetNX(ctx, key, 1, c.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

// Reset 清除某图书的告警抑制(补货完成后调用,下次跌破阈值立即告警)
func (c *AlertCache) Reset(ctx context.Context, bookID uint) error {
	key := fmt.Sprintf("restock_alert:%d", bookID)
	return c.client.Del(ctx, key).Err()
}
