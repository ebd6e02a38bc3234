// Package metrics 提供基于Prometheus的指标收集
//
// 核心概念：
// 1. Counter（计数器）：只增不减的累计值，如预留请求总数
// 2. Gauge（仪表盘）：可增可减的瞬时值，如待补货图书数
// 3. Histogram（直方图）：观测值的分布，自动计算P50/P90/P99
//
// 命名规范：
// - Counter以_total结尾（inventory_reservations_total）
// - Histogram以单位结尾（http_request_duration_seconds）
// - 避免高基数标签：不要用book_id做标签，用数量区间等有限枚举值
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（/api/v1/books）、status（200/409）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 库存业务指标

	// InventoryReservationsTotal 库存预留总数（Counter）
	// 标签：result（success/insufficient/conflict）、quantity_range（数量区间）
	InventoryReservationsTotal *prometheus.CounterVec

	// InventoryReleasesTotal 预留释放总数（Counter）
	InventoryReleasesTotal prometheus.Counter

	// InventoryAdjustmentsTotal 库存调整总数（Counter）
	// 标签：type（调整类型）、result（success/rejected）
	InventoryAdjustmentsTotal *prometheus.CounterVec

	// ConcurrencyConflictsTotal 乐观锁版本冲突总数（Counter）
	// 冲突率持续偏高说明热点图书竞争激烈,可作为容量调整信号
	ConcurrencyConflictsTotal prometheus.Counter

	// BooksNeedingRestock 当前待补货图书数（Gauge）
	BooksNeedingRestock prometheus.Gauge

	// RestockAlertsTotal 补货告警发送总数（Counter）
	RestockAlertsTotal prometheus.Counter

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（Gauge）
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数（Counter）
	// 标签：name（熔断器名称）、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数（Counter）
	// 标签：exchange（交换机）、routing_key（路由键）
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
// 必须在程序启动时调用一次，用于注册所有指标到全局Registry
func InitMetrics() {
	// 防止重复初始化
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 库存业务指标
	InventoryReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_reservations_total",
			Help: "库存预留总数",
		},
		[]string{"result", "quantity_range"},
	)

	InventoryReleasesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_releases_total",
			Help: "预留释放总数",
		},
	)

	InventoryAdjustmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_adjustments_total",
			Help: "库存调整总数",
		},
		[]string{"type", "result"},
	)

	ConcurrencyConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_concurrency_conflicts_total",
			Help: "乐观锁版本冲突总数",
		},
	)

	BooksNeedingRestock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "books_needing_restock",
			Help: "当前待补货图书数",
		},
	)

	RestockAlertsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restock_alerts_total",
			Help: "补货告警发送总数",
		},
	)

	// 熔断器指标
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	// 消息队列指标
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"},
	)
}

// QuantityRange 将数量归入有限的区间标签
// 用区间代替原始数量,避免标签基数爆炸
func QuantityRange(quantity int) string {
	switch {
	case quantity <= 5:
		return "1-5"
	case quantity <= 10:
		return "6-10"
	case quantity <= 25:
		return "11-25"
	case quantity <= 50:
		return "26-50"
	default:
		return "50+"
	}
}

// IncCounter 递增Counter（便捷函数）
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
