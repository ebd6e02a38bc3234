package inventory

import (
	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// Notifier 库存事件通知接口(可观测性协作方)
// 设计说明:
// 1. 通知在事务提交之后发起,永远不在事务路径上
// 2. 实现必须是fire-and-forget:通知失败不能影响库存操作的结果
// 3. 典型实现:Prometheus指标、RabbitMQ补货告警(infrastructure/event)
type Notifier interface {
	// ReservationCommitted 预留成功提交
	ReservationCommitted(bookID uint, quantity int)

	// ReleaseCommitted 预留释放提交
	ReleaseCommitted(bookID uint, quantity int)

	// AdjustmentCommitted 库存调整提交
	AdjustmentCommitted(bookID uint, delta int, kind AdjustmentType)

	// ConflictObserved 观测到一次乐观锁冲突(操作失败方)
	ConflictObserved(bookID uint)

	// RestockNeeded 提交后发现图书落入补货区间
	RestockNeeded(b *book.Book)
}

// NopNotifier 空实现(未接入可观测性时使用)
type NopNotifier struct{}

func (NopNotifier) ReservationCommitted(uint, int)              {}
func (NopNotifier) ReleaseCommitted(uint, int)                  {}
func (NopNotifier) AdjustmentCommitted(uint, int, AdjustmentType) {}
func (NopNotifier) ConflictObserved(uint)                       {}
func (NopNotifier) RestockNeeded(*book.Book)                    {}
