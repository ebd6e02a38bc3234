package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

// 测试配置与运行时的补货告警熔断器一致:连续失败5次熔断
func newTestBreaker(timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker("restock-alert-mq", Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// TestCircuitBreaker_ClosedState 测试关闭状态（正常）
func TestCircuitBreaker_ClosedState(t *testing.T) {
	cb := newTestBreaker(30 * time.Second)

	for i := 0; i < 10; i++ {
		err := cb.Execute(func() error {
			return nil // 模拟发布成功
		})
		if err != nil {
			t.Fatalf("期望成功，实际失败: %v", err)
		}
	}

	if cb.State() != StateClosed {
		t.Errorf("期望状态为CLOSED，实际%s", cb.State())
	}

	counts := cb.Counts()
	if counts.TotalSuccesses != 10 {
		t.Errorf("期望成功10次，实际%d次", counts.TotalSuccesses)
	}
}

// TestCircuitBreaker_OpenState 测试打开状态（熔断）
func TestCircuitBreaker_OpenState(t *testing.T) {
	cb := newTestBreaker(30 * time.Second)

	// 连续5次失败触发熔断
	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error {
			return errors.New("mq unavailable")
		})
	}

	if cb.State() != StateOpen {
		t.Errorf("期望状态为OPEN，实际%s", cb.State())
	}

	// 熔断后的请求立即失败，不调用实际函数
	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})

	if err != ErrOpenState {
		t.Errorf("期望返回ErrOpenState，实际%v", err)
	}
	if called {
		t.Error("熔断器打开时不应该调用实际函数")
	}
}

// TestCircuitBreaker_HalfOpenState 测试半开状态（探测恢复）
func TestCircuitBreaker_HalfOpenState(t *testing.T) {
	cb := newTestBreaker(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error {
			return errors.New("mq unavailable")
		})
	}

	// 等待超时，转为半开状态
	time.Sleep(150 * time.Millisecond)

	// 半开状态第一次请求作为探测放行
	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})

	if err != nil {
		t.Errorf("半开状态第一次请求期望成功，实际%v", err)
	}
	if !called {
		t.Error("半开状态应该允许请求通过")
	}

	// 探测成功后转为CLOSED
	if cb.State() != StateClosed {
		t.Errorf("期望状态转为CLOSED，实际%s", cb.State())
	}
}

// TestCircuitBreaker_HalfOpenToOpen 测试半开状态失败后转回打开
func TestCircuitBreaker_HalfOpenToOpen(t *testing.T) {
	cb := newTestBreaker(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error {
			return errors.New("mq unavailable")
		})
	}

	time.Sleep(150 * time.Millisecond)

	// 半开状态下探测仍失败
	_ = cb.Execute(func() error {
		return errors.New("still unavailable")
	})

	if cb.State() != StateOpen {
		t.Errorf("期望状态转回OPEN，实际%s", cb.State())
	}
}

// TestCircuitBreaker_StateChangeCallback 测试状态变化回调
// 运行时靠这个回调把熔断器状态同步到Prometheus的Gauge
func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	stateChanges := make([]string, 0)

	cb := newTestBreaker(100 * time.Millisecond)
	cb.SetStateChangeCallback(func(name string, from State, to State) {
		stateChanges = append(stateChanges, from.String()+"->"+to.String())
	})

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error {
			return errors.New("mq unavailable")
		})
	}

	time.Sleep(150 * time.Millisecond)
	_ = cb.Execute(func() error {
		return nil
	})

	expectedChanges := []string{
		"CLOSED->OPEN",
		"OPEN->HALF_OPEN",
		"HALF_OPEN->CLOSED",
	}

	if len(stateChanges) != len(expectedChanges) {
		t.Fatalf("期望%d次状态变化，实际%d次: %v", len(expectedChanges), len(stateChanges), stateChanges)
	}
	for i, expected := range expectedChanges {
		if stateChanges[i] != expected {
			t.Errorf("第%d次状态变化期望%s，实际%s", i, expected, stateChanges[i])
		}
	}
}

// TestCircuitBreaker_FailureRate 测试基于失败率的熔断
func TestCircuitBreaker_FailureRate(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{
		MaxRequests: 3,
		Interval:    1 * time.Hour, // 长时间窗口，避免统计被重置
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts Counts) bool {
			return counts.Requests >= 10 && counts.FailureRate() > 0.5
		},
	})

	// 10次请求:4次成功、6次失败，失败率60%
	for i := 0; i < 10; i++ {
		index := i
		_ = cb.Execute(func() error {
			if index < 4 {
				return nil
			}
			return errors.New("fail")
		})
	}

	if cb.State() != StateOpen {
		t.Errorf("期望状态为OPEN（失败率超过50%%），实际%s", cb.State())
	}
}
