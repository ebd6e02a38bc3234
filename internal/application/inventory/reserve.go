package inventory

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/domain/inventory"
)

// ReserveUseCase 库存预留用例
// 设计说明:
// 1. 预留把可用库存让渡给待履约订单,在库数量不变
// 2. 可用库存不足时整体拒绝,错误携带requested/available,
//    客户端可提示用户调整数量后重试
type ReserveUseCase struct {
	invService inventory.Service
}

// NewReserveUseCase 创建预留用例
func NewReserveUseCase(invService inventory.Service) *ReserveUseCase {
	return &ReserveUseCase{
		invService: invService,
	}
}

// ReserveRequest 预留请求DTO
type ReserveRequest struct {
	BookID   uint
	Quantity int
}

// Execute 执行预留
func (uc *ReserveUseCase) Execute(ctx context.Context, req ReserveRequest) (*InventoryStatus, error) {
	b, err := uc.invService.Reserve(ctx, req.BookID, req.Quantity)
	if err != nil {
		return nil, err
	}

	return toInventoryStatus(b), nil
}

// ReleaseUseCase 预留释放用例
// 超额释放钳位到0(释放方不需要精确知道当前预留量)
type ReleaseUseCase struct {
	invService inventory.Service
}

// NewReleaseUseCase 创建释放用例
func NewReleaseUseCase(invService inventory.Service) *ReleaseUseCase {
	return &ReleaseUseCase{
		invService: invService,
	}
}

// Execute 执行释放
func (uc *ReleaseUseCase) Execute(ctx context.Context, req ReserveRequest) (*InventoryStatus, error) {
	b, err := uc.invService.Release(ctx, req.BookID, req.Quantity)
	if err != nil {
		return nil, err
	}

	return toInventoryStatus(b), nil
}

// =========================================
// 应用层DTO
// =========================================

// InventoryStatus 库存状态DTO(各库存用例共用)
type InventoryStatus struct {
	BookID           uint   `json:"book_id"`
	Title            string `json:"title"`
	QuantityInStock  int    `json:"quantity_in_stock"`
	ReservedQuantity int    `json:"reserved_quantity"`
	AvailableQty     int    `json:"available_quantity"`
	ReorderLevel     int    `json:"reorder_level"`
	NeedsRestock     bool   `json:"needs_restock"`
	Version          int64  `json:"version"`
}

// toInventoryStatus 领域实体 → 库存状态DTO
func toInventoryStatus(b *book.Book) *InventoryStatus {
	return &InventoryStatus{
		BookID:           b.ID,
		Title:            b.Title,
		QuantityInStock:  b.QuantityInStock,
		ReservedQuantity: b.ReservedQuantity,
		AvailableQty:     b.AvailableQuantity(),
		ReorderLevel:     b.ReorderLevel,
		NeedsRestock:     b.NeedsRestock(),
		Version:          b.Version,
	}
}
