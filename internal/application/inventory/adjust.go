package inventory

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/inventory"
)

// AdjustUseCase 库存调整用例
// delta为正表示入库(收货、退货),为负表示出库(损坏、丢失、售出);
// 调整后在库数量为负时拒绝,不做变更
type AdjustUseCase struct {
	invService inventory.Service
}

// NewAdjustUseCase 创建调整用例
func NewAdjustUseCase(invService inventory.Service) *AdjustUseCase {
	return &AdjustUseCase{
		invService: invService,
	}
}

// AdjustRequest 调整请求DTO
type AdjustRequest struct {
	BookID uint
	Delta  int
	Type   string // 调整类型(STOCK_RECEIVED/STOCK_DAMAGED/...)
	Reason string // 审计备注
}

// Execute 执行调整
func (uc *AdjustUseCase) Execute(ctx context.Context, req AdjustRequest) (*InventoryStatus, error) {
	b, err := uc.invService.Adjust(ctx, inventory.Adjustment{
		BookID: req.BookID,
		Delta:  req.Delta,
		Type:   inventory.AdjustmentType(req.Type),
		Reason: req.Reason,
	})
	if err != nil {
		return nil, err
	}

	return toInventoryStatus(b), nil
}

// BulkAdjustUseCase 批量调整用例
// 语义承诺:逐项独立提交,遇错即停,已提交项不回滚。
// 响应始终带applied计数,失败时额外带失败下标与原因
type BulkAdjustUseCase struct {
	invService inventory.Service
}

// NewBulkAdjustUseCase 创建批量调整用例
func NewBulkAdjustUseCase(invService inventory.Service) *BulkAdjustUseCase {
	return &BulkAdjustUseCase{
		invService: invService,
	}
}

// BulkAdjustRequest 批量调整请求DTO
type BulkAdjustRequest struct {
	Adjustments []AdjustRequest
}

// BulkAdjustResponse 批量调整响应DTO
type BulkAdjustResponse struct {
	Applied int `json:"applied"` // 已提交条数
	Total   int `json:"total"`   // 请求条数
}

// Execute 执行批量调整
// 部分失败时同时返回response(applied计数)和error(失败详情),
// 由接口层组装最终响应
func (uc *BulkAdjustUseCase) Execute(ctx context.Context, req BulkAdjustRequest) (*BulkAdjustResponse, error) {
	adjustments := make([]inventory.Adjustment, len(req.Adjustments))
	for i, a := range req.Adjustments {
		adjustments[i] = inventory.Adjustment{
			BookID: a.BookID,
			Delta:  a.Delta,
			Type:   inventory.AdjustmentType(a.Type),
			Reason: a.Reason,
		}
	}

	applied, err := uc.invService.BulkAdjust(ctx, adjustments)

	resp := &BulkAdjustResponse{
		Applied: applied,
		Total:   len(req.Adjustments),
	}
	return resp, err
}
