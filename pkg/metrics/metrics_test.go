package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestInitMetrics 测试指标初始化
func TestInitMetrics(t *testing.T) {
	InitMetrics()

	if HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal未初始化")
	}
	if HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration未初始化")
	}
	if InventoryReservationsTotal == nil {
		t.Error("InventoryReservationsTotal未初始化")
	}
	if ConcurrencyConflictsTotal == nil {
		t.Error("ConcurrencyConflictsTotal未初始化")
	}
	if BooksNeedingRestock == nil {
		t.Error("BooksNeedingRestock未初始化")
	}
	if CircuitBreakerState == nil {
		t.Error("CircuitBreakerState未初始化")
	}

	// 重复调用不应panic(防止重复注册)
	InitMetrics()
}

// TestCounter 测试Counter指标
func TestCounter(t *testing.T) {
	InitMetrics()

	before := getCounterValue(t, ConcurrencyConflictsTotal)

	IncCounter(ConcurrencyConflictsTotal)
	IncCounter(ConcurrencyConflictsTotal)

	after := getCounterValue(t, ConcurrencyConflictsTotal)
	if after-before != 2 {
		t.Errorf("Counter递增错误: expected+2, got+%f", after-before)
	}
}

// TestReservationCounterVec 测试带标签的预留计数
func TestReservationCounterVec(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"result": "success", "quantity_range": "1-5"}
	before := getCounterVecValue(t, InventoryReservationsTotal, labels)

	IncCounterVec(InventoryReservationsTotal, labels)
	IncCounterVec(InventoryReservationsTotal, labels)
	IncCounterVec(InventoryReservationsTotal, map[string]string{
		"result": "insufficient", "quantity_range": "50+",
	})

	after := getCounterVecValue(t, InventoryReservationsTotal, labels)
	if after-before != 2 {
		t.Errorf("CounterVec值错误: expected+2, got+%f", after-before)
	}
}

// TestGauge 测试Gauge指标
func TestGauge(t *testing.T) {
	InitMetrics()

	SetGauge(BooksNeedingRestock, 7)
	if v := getGaugeValue(t, BooksNeedingRestock); v != 7 {
		t.Errorf("Gauge设置后值错误: expected=7, got=%f", v)
	}

	IncGauge(BooksNeedingRestock)
	DecGauge(BooksNeedingRestock)
	DecGauge(BooksNeedingRestock)
	if v := getGaugeValue(t, BooksNeedingRestock); v != 6 {
		t.Errorf("Gauge增减后值错误: expected=6, got=%f", v)
	}
}

// TestCircuitBreakerStateGauge 测试熔断器状态标签
func TestCircuitBreakerStateGauge(t *testing.T) {
	InitMetrics()

	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "restock-alert-mq"}, 1) // OPEN

	v := getGaugeVecValue(t, CircuitBreakerState, map[string]string{"name": "restock-alert-mq"})
	if v != 1 {
		t.Errorf("GaugeVec值错误: expected=1, got=%f", v)
	}
}

// TestHistogramVec 测试请求耗时直方图
func TestHistogramVec(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"method": "POST", "path": "/api/v1/books/:id/reserve"}
	before := getHistogramVecCount(t, HTTPRequestDuration, labels)

	ObserveHistogramVec(HTTPRequestDuration, labels, 0.05)
	ObserveHistogramVec(HTTPRequestDuration, labels, 0.2)

	after := getHistogramVecCount(t, HTTPRequestDuration, labels)
	if after-before != 2 {
		t.Errorf("HistogramVec观测次数错误: expected+2, got+%d", after-before)
	}
}

// TestQuantityRange 测试数量区间归类
func TestQuantityRange(t *testing.T) {
	cases := []struct {
		quantity int
		want     string
	}{
		{1, "1-5"},
		{5, "1-5"},
		{6, "6-10"},
		{10, "6-10"},
		{11, "11-25"},
		{25, "11-25"},
		{26, "26-50"},
		{50, "26-50"},
		{51, "50+"},
		{1000, "50+"},
	}
	for _, tc := range cases {
		if got := QuantityRange(tc.quantity); got != tc.want {
			t.Errorf("QuantityRange(%d)=%s, 期望%s", tc.quantity, got, tc.want)
		}
	}
}

// 辅助函数：获取Counter值
func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("读取Counter值失败: %v", err)
	}
	return metric.Counter.GetValue()
}

// 辅助函数：获取CounterVec值
func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels map[string]string) float64 {
	var metric dto.Metric
	counter := counterVec.With(labels)
	if err := counter.(prometheus.Counter).Write(&metric); err != nil {
		t.Fatalf("读取CounterVec值失败: %v", err)
	}
	return metric.Counter.GetValue()
}

// 辅助函数：获取Gauge值
func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	var metric dto.Metric
	if err := gauge.Write(&metric); err != nil {
		t.Fatalf("读取Gauge值失败: %v", err)
	}
	return metric.Gauge.GetValue()
}

// 辅助函数：获取GaugeVec值
func getGaugeVecValue(t *testing.T, gaugeVec *prometheus.GaugeVec, labels map[string]string) float64 {
	var metric dto.Metric
	gauge := gaugeVec.With(labels)
	if err := gauge.(prometheus.Gauge).Write(&metric); err != nil {
		t.Fatalf("读取GaugeVec值失败: %v", err)
	}
	return metric.Gauge.GetValue()
}

// 辅助函数：获取HistogramVec观测次数
func getHistogramVecCount(t *testing.T, histogramVec *prometheus.HistogramVec, labels map[string]string) uint64 {
	var metric dto.Metric
	histogram := histogramVec.With(labels)
	if err := histogram.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("读取HistogramVec值失败: %v", err)
	}
	return metric.Histogram.GetSampleCount()
}
