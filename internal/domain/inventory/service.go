package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// Service 库存操作引擎
//
// 设计说明:
// 1. 这是图书库存唯一的变更入口:所有操作遵循"读取快照→应用业务规则→
//    乐观锁提交"三步,提交由Repository.UpdateWithVersion以原子条件写完成
// 2. 冲突策略:版本不匹配返回*book.ConcurrencyConflictError,本层不自动
//    重试,由调用方决定是否重新加载后重提;同一图书的提交按版本全序排列,
//    两个并发写入者至多一个成功
// 3. 不同图书之间互不阻塞;查询方法只读已提交状态,不加锁
type Service interface {
	// Reserve 预留库存
	// 可用库存(在库-预留)不足时返回InsufficientInventoryError,不做变更
	Reserve(ctx context.Context, bookID uint, quantity int) (*book.Book, error)

	// Release 释放预留
	// 超额释放钳位到0,记录存在即成功
	Release(ctx context.Context, bookID uint, quantity int) (*book.Book, error)

	// Adjust 调整在库数量
	// 调整后为负时返回InvalidAdjustmentError,不做变更
	Adjust(ctx context.Context, adj Adjustment) (*book.Book, error)

	// UpdateReorderLevel 设置补货阈值(无条件覆盖)
	UpdateReorderLevel(ctx context.Context, bookID uint, level int) (*book.Book, error)

	// BulkAdjust 批量调整
	// 逐项独立提交,不跨批次使用事务:某一项失败时立即中止,
	// 之前已提交的项保持生效(不回滚),返回已提交条数与携带下标的错误
	BulkAdjust(ctx context.Context, adjustments []Adjustment) (int, error)

	// BooksNeedingRestock 查询需补货图书(可用库存<=补货阈值)
	BooksNeedingRestock(ctx context.Context) ([]*book.Book, error)

	// LowStockBooks 查询低库存图书(可用库存<=threshold)
	LowStockBooks(ctx context.Context, threshold int) ([]*book.Book, error)
}

// BulkAdjustError 批量调整中止错误
// Index是失败项下标(0起),Applied是已持久化的项数;
// 下标在Index之后的项未被执行
type BulkAdjustError struct {
	Index   int
	Applied int
	Err     error
}

func (e *BulkAdjustError) Error() string {
	return fmt.Sprintf("批量调整在第%d项中止(前%d项已生效): %v", e.Index+1, e.Applied, e.Err)
}

func (e *BulkAdjustError) Unwrap() error {
	return e.Err
}

type service struct {
	repo     book.Repository
	notifier Notifier
}

// NewService 创建库存操作引擎
// notifier传nil时使用空实现
func NewService(repo book.Repository, notifier Notifier) Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &service{repo: repo, notifier: notifier}
}

// Reserve 预留库存
func (s *service) Reserve(ctx context.Context, bookID uint, quantity int) (*book.Book, error) {
	// 参数在读库之前拒绝
	if quantity < 1 {
		return nil, book.ErrInvalidQuantity
	}

	b, err := s.commit(ctx, bookID, func(b *book.Book) error {
		return b.Reserve(quantity)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ReservationCommitted(bookID, quantity)
	s.notifyRestock(b)
	return b, nil
}

// Release 释放预留
func (s *service) Release(ctx context.Context, bookID uint, quantity int) (*book.Book, error) {
	if quantity < 1 {
		return nil, book.ErrInvalidQuantity
	}

	b, err := s.commit(ctx, bookID, func(b *book.Book) error {
		return b.ReleaseReservation(quantity)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ReleaseCommitted(bookID, quantity)
	return b, nil
}

// Adjust 调整在库数量
func (s *service) Adjust(ctx context.Context, adj Adjustment) (*book.Book, error) {
	if err := adj.Validate(); err != nil {
		return nil, err
	}

	b, err := s.commit(ctx, adj.BookID, func(b *book.Book) error {
		return b.Adjust(adj.Delta)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.AdjustmentCommitted(adj.BookID, adj.Delta, adj.Type)
	s.notifyRestock(b)
	return b, nil
}

// UpdateReorderLevel 设置补货阈值
func (s *service) UpdateReorderLevel(ctx context.Context, bookID uint, level int) (*book.Book, error) {
	if level < 0 {
		return nil, book.ErrInvalidReorderLevel
	}

	b, err := s.commit(ctx, bookID, func(b *book.Book) error {
		return b.SetReorderLevel(level)
	})
	if err != nil {
		return nil, err
	}

	s.notifyRestock(b)
	return b, nil
}

// BulkAdjust 批量调整
// 刻意不把整批包进一个事务:每项是独立的并发控制单元,避免长批次持锁。
// "遇错即停、已提交项不回滚"是对外承诺的语义,调用方必须按此预期处理
func (s *service) BulkAdjust(ctx context.Context, adjustments []Adjustment) (int, error) {
	applied := 0
	for i, adj := range adjustments {
		if _, err := s.Adjust(ctx, adj); err != nil {
			return applied, &BulkAdjustError{Index: i, Applied: applied, Err: err}
		}
		applied++
	}
	return applied, nil
}

// BooksNeedingRestock 查询需补货图书
func (s *service) BooksNeedingRestock(ctx context.Context) ([]*book.Book, error) {
	return s.repo.FindNeedingRestock(ctx)
}

// LowStockBooks 查询低库存图书
func (s *service) LowStockBooks(ctx context.Context, threshold int) ([]*book.Book, error) {
	if threshold < 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "库存阈值不能为负数")
	}
	return s.repo.FindLowStock(ctx, threshold)
}

// commit 读取-应用-提交
// 失败路径全部不产生变更:业务规则拒绝发生在提交前,版本冲突由
// UpdateWithVersion的条件写保证落库为零
func (s *service) commit(ctx context.Context, bookID uint, apply func(*book.Book) error) (*book.Book, error) {
	// 步骤1:读取当前快照(含版本号)
	b, err := s.repo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	// 步骤2:在内存中应用业务规则
	if err := apply(b); err != nil {
		return nil, err
	}

	// 步骤3:条件提交(版本匹配才写入,写入与版本+1原子完成)
	if err := s.repo.UpdateWithVersion(ctx, b); err != nil {
		var conflict *book.ConcurrencyConflictError
		if errors.As(err, &conflict) {
			s.notifier.ConflictObserved(bookID)
		}
		return nil, err
	}

	return b, nil
}

// notifyRestock 提交后补货检查(通知在事务之外,尽力而为)
func (s *service) notifyRestock(b *book.Book) {
	if b.NeedsRestock() {
		s.notifier.RestockNeeded(b)
	}
}
