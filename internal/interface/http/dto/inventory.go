package dto

// ReserveRequest HTTP库存预留/释放请求
type ReserveRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1" example:"2"`
}

// AdjustRequest HTTP库存调整请求
// delta可以为负(出库)或为0(盘点确认);调整后在库数量不能为负
type AdjustRequest struct {
	Delta  int    `json:"delta" binding:"omitempty" example:"-3"`
	Type   string `json:"type" binding:"required,oneof=STOCK_RECEIVED STOCK_DAMAGED STOCK_LOST STOCK_RETURNED STOCK_SOLD MANUAL_ADJUSTMENT" example:"STOCK_DAMAGED"`
	Reason string `json:"reason" binding:"omitempty,max=500" example:"运输途中破损3本"`
}

// BulkAdjustItem 批量调整项
type BulkAdjustItem struct {
	BookID uint   `json:"book_id" binding:"required" example:"1"`
	Delta  int    `json:"delta" binding:"omitempty" example:"10"`
	Type   string `json:"type" binding:"required,oneof=STOCK_RECEIVED STOCK_DAMAGED STOCK_LOST STOCK_RETURNED STOCK_SOLD MANUAL_ADJUSTMENT" example:"STOCK_RECEIVED"`
	Reason string `json:"reason" binding:"omitempty,max=500" example:"到货入库"`
}

// BulkAdjustRequest HTTP批量调整请求
// 逐项独立提交,遇错即停,已提交项不回滚
type BulkAdjustRequest struct {
	Adjustments []BulkAdjustItem `json:"adjustments" binding:"required,min=1,dive"`
}

// UpdateReorderLevelRequest HTTP补货阈值设置请求
// min=0:阈值可以为0(不再自动提醒补货)
type UpdateReorderLevelRequest struct {
	ReorderLevel *int `json:"reorder_level" binding:"required,min=0" example:"10"`
}

// LowStockRequest HTTP低库存查询请求
type LowStockRequest struct {
	Threshold int `form:"threshold" binding:"omitempty,min=0" example:"5"`
}

// InventoryStatusResponse HTTP库存状态响应
type InventoryStatusResponse struct {
	BookID           uint   `json:"book_id" example:"1"`
	Title            string `json:"title" example:"三体"`
	QuantityInStock  int    `json:"quantity_in_stock" example:"10"`
	ReservedQuantity int    `json:"reserved_quantity" example:"2"`
	AvailableQty     int    `json:"available_quantity" example:"8"`
	ReorderLevel     int    `json:"reorder_level" example:"5"`
	NeedsRestock     bool   `json:"needs_restock" example:"false"`
	Version          int64  `json:"version" example:"7"`
}

// BulkAdjustResponse HTTP批量调整响应
// 失败时failed_index指向第一个失败项(0起),其后的项未被执行
type BulkAdjustResponse struct {
	Applied     int    `json:"applied" example:"2"`
	Total       int    `json:"total" example:"5"`
	FailedIndex *int   `json:"failed_index,omitempty" example:"2"`
	FailReason  string `json:"fail_reason,omitempty" example:"库存调整非法"`
}
