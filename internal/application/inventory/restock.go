package inventory

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/inventory"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
)

// UpdateReorderLevelUseCase 补货阈值设置用例
type UpdateReorderLevelUseCase struct {
	invService inventory.Service
}

// NewUpdateReorderLevelUseCase 创建阈值设置用例
func NewUpdateReorderLevelUseCase(invService inventory.Service) *UpdateReorderLevelUseCase {
	return &UpdateReorderLevelUseCase{
		invService: invService,
	}
}

// UpdateReorderLevelRequest 阈值设置请求DTO
type UpdateReorderLevelRequest struct {
	BookID uint
	Level  int
}

// Execute 执行阈值设置
func (uc *UpdateReorderLevelUseCase) Execute(ctx context.Context, req UpdateReorderLevelRequest) (*InventoryStatus, error) {
	b, err := uc.invService.UpdateReorderLevel(ctx, req.BookID, req.Level)
	if err != nil {
		return nil, err
	}

	return toInventoryStatus(b), nil
}

// RestockReportUseCase 补货报表用例
// 设计说明:
// 1. 筛选条件是"可用库存<=补货阈值",基于已提交状态实时计算,
//    不依赖缓存的补货标记
// 2. 顺带刷新books_needing_restock指标(报表查询即巡检)
type RestockReportUseCase struct {
	invService inventory.Service
}

// NewRestockReportUseCase 创建补货报表用例
func NewRestockReportUseCase(invService inventory.Service) *RestockReportUseCase {
	return &RestockReportUseCase{
		invService: invService,
	}
}

// Execute 查询补货报表
func (uc *RestockReportUseCase) Execute(ctx context.Context) ([]*InventoryStatus, error) {
	books, err := uc.invService.BooksNeedingRestock(ctx)
	if err != nil {
		return nil, err
	}

	metrics.SetGauge(metrics.BooksNeedingRestock, float64(len(books)))

	list := make([]*InventoryStatus, len(books))
	for i, b := range books {
		list[i] = toInventoryStatus(b)
	}
	return list, nil
}

// LowStockUseCase 低库存查询用例(自定义阈值,不看各书自身的补货阈值)
type LowStockUseCase struct {
	invService inventory.Service
}

// NewLowStockUseCase 创建低库存查询用例
func NewLowStockUseCase(invService inventory.Service) *LowStockUseCase {
	return &LowStockUseCase{
		invService: invService,
	}
}

// Execute 查询低库存图书
func (uc *LowStockUseCase) Execute(ctx context.Context, threshold int) ([]*InventoryStatus, error) {
	books, err := uc.invService.LowStockBooks(ctx, threshold)
	if err != nil {
		return nil, err
	}

	list := make([]*InventoryStatus, len(books))
	for i, b := range books {
		list[i] = toInventoryStatus(b)
	}
	return list, nil
}
