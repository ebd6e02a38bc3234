// Package event 库存事件的出站适配器
// 实现domain/inventory的Notifier接口,把领域事件翻译为
// Prometheus指标和RabbitMQ告警消息
package event

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/domain/inventory"
	redisstore "github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookcatalog/pkg/circuitbreaker"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
	"github.com/xiebiao/bookcatalog/pkg/mq"
)

// RestockAlertEvent 补货告警事件(发往MQ)
type RestockAlertEvent struct {
	BookID       uint   `json:"book_id"`
	Title        string `json:"title"`
	Available    int    `json:"available"`
	ReorderLevel int    `json:"reorder_level"`
	OccurredAt   string `json:"occurred_at"`
}

// RoutingKeyRestockNeeded 补货告警路由键
const RoutingKeyRestockNeeded = "inventory.restock_needed"

// Notifier 库存事件通知器
// 设计说明:
// 1. 所有方法都是fire-and-forget:指标同步记,MQ发布走熔断器,
//    失败只写日志,绝不把错误传回库存操作主流程
// 2. 补货告警经Redis去重(抑制窗口内同一图书只发一条),
//    RabbitMQ连续失败时熔断,跳过发布而不是反复等超时
// 3. alertCache/breaker允许为nil:对应能力自动降级
type Notifier struct {
	publisher  *mq.Publisher
	breaker    *circuitbreaker.CircuitBreaker
	alertCache *redisstore.AlertCache
}

// NewNotifier 创建库存事件通知器
// publisher为nil时只记指标不发MQ(测试环境、MQ未启用时)
func NewNotifier(publisher *mq.Publisher, alertCache *redisstore.AlertCache) *Notifier {
	breaker := circuitbreaker.NewCircuitBreaker("restock-alert-mq", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("⚠️ 熔断器[%s]状态变化: %s → %s", name, from, to)
		metrics.SetGaugeVec(metrics.CircuitBreakerState,
			map[string]string{"name": name}, float64(to))
	})

	return &Notifier{
		publisher:  publisher,
		breaker:    breaker,
		alertCache: alertCache,
	}
}

// ReservationCommitted 预留成功提交
func (n *Notifier) ReservationCommitted(bookID uint, quantity int) {
	metrics.IncCounterVec(metrics.InventoryReservationsTotal, map[string]string{
		"result":         "success",
		"quantity_range": metrics.QuantityRange(quantity),
	})
}

// ReleaseCommitted 预留释放提交
func (n *Notifier) ReleaseCommitted(bookID uint, quantity int) {
	metrics.IncCounter(metrics.InventoryReleasesTotal)
}

// AdjustmentCommitted 库存调整提交
func (n *Notifier) AdjustmentCommitted(bookID uint, delta int, kind inventory.AdjustmentType) {
	metrics.IncCounterVec(metrics.InventoryAdjustmentsTotal, map[string]string{
		"type":   string(kind),
		"result": "success",
	})
}

// ConflictObserved 观测到一次乐观锁冲突
func (n *Notifier) ConflictObserved(bookID uint) {
	metrics.IncCounter(metrics.ConcurrencyConflictsTotal)
}

// RestockNeeded 提交后发现图书落入补货区间
// MQ告警先过Redis去重,再经熔断器发布
func (n *Notifier) RestockNeeded(b *book.Book) {
	if n.publisher == nil {
		return
	}

	// 抑制窗口内同一图书只发一条告警
	if n.alertCache != nil && !n.alertCache.ShouldAlert(context.Background(), b.ID) {
		return
	}

	event := RestockAlertEvent{
		BookID:       b.ID,
		Title:        b.Title,
		Available:    b.AvailableQuantity(),
		ReorderLevel: b.ReorderLevel,
		OccurredAt:   time.Now().Format(time.RFC3339),
	}

	err := n.breaker.Execute(func() error {
		return n.publisher.Publish(RoutingKeyRestockNeeded, event)
	})
	if err != nil {
		// 告警失败只记日志,不影响库存操作
		log.Printf("❌ 补货告警发布失败: book_id=%d, err=%v", b.ID, err)
		metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{
			"name":   "restock-alert-mq",
			"result": "failure",
		})
		return
	}

	metrics.IncCounter(metrics.RestockAlertsTotal)
	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{
		"exchange":    "bookcatalog.events",
		"routing_key": RoutingKeyRestockNeeded,
	})
}
