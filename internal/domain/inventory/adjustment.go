package inventory

import (
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// AdjustmentType 库存调整类型
type AdjustmentType string

const (
	AdjustmentStockReceived AdjustmentType = "STOCK_RECEIVED"    // 收货入库
	AdjustmentStockDamaged  AdjustmentType = "STOCK_DAMAGED"     // 损坏出库
	AdjustmentStockLost     AdjustmentType = "STOCK_LOST"        // 丢失出库
	AdjustmentStockReturned AdjustmentType = "STOCK_RETURNED"    // 退货入库
	AdjustmentStockSold     AdjustmentType = "STOCK_SOLD"        // 售出出库
	AdjustmentManual        AdjustmentType = "MANUAL_ADJUSTMENT" // 人工盘点调整
)

// IsValid 是否为已知的调整类型
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentStockReceived, AdjustmentStockDamaged, AdjustmentStockLost,
		AdjustmentStockReturned, AdjustmentStockSold, AdjustmentManual:
		return true
	}
	return false
}

// Adjustment 库存调整指令
// Delta为正表示入库,为负表示出库;Reason是审计用备注
type Adjustment struct {
	BookID uint
	Delta  int
	Type   AdjustmentType
	Reason string
}

const maxReasonLength = 500

// Validate 校验调整指令
// 注意:Delta=0是合法的空调整(盘点确认),不拒绝
func (a Adjustment) Validate() error {
	if a.BookID == 0 {
		return apperrors.New(apperrors.ErrCodeInvalidParams, "图书ID不能为空")
	}
	if !a.Type.IsValid() {
		return apperrors.Newf(apperrors.ErrCodeInvalidParams, "未知的调整类型: %s", a.Type)
	}
	if len(a.Reason) > maxReasonLength {
		return apperrors.Newf(apperrors.ErrCodeInvalidParams, "调整备注不能超过%d字符", maxReasonLength)
	}
	return nil
}
