package book

import (
	"fmt"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "ISBN号已存在")

	// ErrInvalidQuantity 无效的数量
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")

	// ErrInvalidReorderLevel 无效的补货阈值
	ErrInvalidReorderLevel = apperrors.New(apperrors.ErrCodeInvalidParams, "补货阈值不能为负数")

	// ErrIDMismatch 路径ID与请求体ID不一致
	ErrIDMismatch = apperrors.New(apperrors.ErrCodeIDMismatch, "路径ID与请求体ID不一致")
)

// InsufficientInventoryError 可用库存不足
// 携带请求数量与当前可用数量,调用方可据此提示用户调整数量后重试
// 该错误不伴随任何状态变更
type InsufficientInventoryError struct {
	BookID    uint
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("图书%d可用库存不足: 请求%d件, 可用%d件", e.BookID, e.Requested, e.Available)
}

// Unwrap 展开为AppError,供response层提取业务错误码
func (e *InsufficientInventoryError) Unwrap() error {
	return apperrors.Newf(apperrors.ErrCodeInsufficientInventory,
		"可用库存不足: 请求%d件, 可用%d件", e.Requested, e.Available)
}

// ErrorData 返回结构化错误数据,客户端可据此调整数量后重试
func (e *InsufficientInventoryError) ErrorData() interface{} {
	return map[string]interface{}{
		"book_id":   e.BookID,
		"requested": e.Requested,
		"available": e.Available,
	}
}

// InvalidAdjustmentError 库存调整会导致负库存
// 携带当前在库数量与被拒绝的调整量,该错误不伴随任何状态变更
type InvalidAdjustmentError struct {
	BookID          uint
	CurrentQuantity int
	Delta           int
}

func (e *InvalidAdjustmentError) Error() string {
	return fmt.Sprintf("图书%d库存调整非法: 当前%d件, 调整%+d会导致负库存", e.BookID, e.CurrentQuantity, e.Delta)
}

func (e *InvalidAdjustmentError) Unwrap() error {
	return apperrors.Newf(apperrors.ErrCodeInvalidAdjustment,
		"库存调整非法: 当前%d件, 调整%+d会导致负库存", e.CurrentQuantity, e.Delta)
}

// ErrorData 返回结构化错误数据
func (e *InvalidAdjustmentError) ErrorData() interface{} {
	return map[string]interface{}{
		"book_id":          e.BookID,
		"current_quantity": e.CurrentQuantity,
		"delta":            e.Delta,
	}
}

// ConcurrencyConflictError 乐观锁版本冲突
// 另一个写入者在本次读取与提交之间已提交,本次写入未产生任何变更
// 策略:本层不自动重试,由调用方决定是否重新加载最新状态后重新提交
type ConcurrencyConflictError struct {
	BookID  uint
	Version int64 // 提交时携带的过期版本号
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("图书%d并发更新冲突: 版本%d已过期", e.BookID, e.Version)
}

func (e *ConcurrencyConflictError) Unwrap() error {
	return apperrors.New(apperrors.ErrCodeConcurrencyConflict,
		"数据已被其他操作修改, 请刷新后重试")
}

// ErrorData 返回结构化错误数据
func (e *ConcurrencyConflictError) ErrorData() interface{} {
	return map[string]interface{}{
		"book_id": e.BookID,
		"version": e.Version,
	}
}
