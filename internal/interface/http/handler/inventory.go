package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	appinventory "github.com/xiebiao/bookcatalog/internal/application/inventory"
	"github.com/xiebiao/bookcatalog/internal/domain/inventory"
	"github.com/xiebiao/bookcatalog/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/response"
)

// InventoryHandler 库存操作HTTP处理器
//
// 所有写操作都走乐观锁路径:CAS失败时返回409,
// 由调用方决定是否重试,服务端不做自动重试。
type InventoryHandler struct {
	reserveUseCase       *appinventory.ReserveUseCase
	releaseUseCase       *appinventory.ReleaseUseCase
	adjustUseCase        *appinventory.AdjustUseCase
	bulkAdjustUseCase    *appinventory.BulkAdjustUseCase
	reorderLevelUseCase  *appinventory.UpdateReorderLevelUseCase
	restockReportUseCase *appinventory.RestockReportUseCase
	lowStockUseCase      *appinventory.LowStockUseCase
}

// NewInventoryHandler 创建库存处理器
func NewInventoryHandler(
	reserveUseCase *appinventory.ReserveUseCase,
	releaseUseCase *appinventory.ReleaseUseCase,
	adjustUseCase *appinventory.AdjustUseCase,
	bulkAdjustUseCase *appinventory.BulkAdjustUseCase,
	reorderLevelUseCase *appinventory.UpdateReorderLevelUseCase,
	restockReportUseCase *appinventory.RestockReportUseCase,
	lowStockUseCase *appinventory.LowStockUseCase,
) *InventoryHandler {
	return &InventoryHandler{
		reserveUseCase:       reserveUseCase,
		releaseUseCase:       releaseUseCase,
		adjustUseCase:        adjustUseCase,
		bulkAdjustUseCase:    bulkAdjustUseCase,
		reorderLevelUseCase:  reorderLevelUseCase,
		restockReportUseCase: restockReportUseCase,
		lowStockUseCase:      lowStockUseCase,
	}
}

// Reserve 预留库存
// @Summary      预留库存
// @Description  为下单流程预留库存;可用量不足返回409并附带requested/available
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.ReserveRequest true "预留数量"
// @Success      200 {object} response.Response{data=dto.InventoryStatusResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "可用库存不足或版本冲突"
// @Router       /api/v1/books/{id}/reserve [post]
func (h *InventoryHandler) Reserve(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.reserveUseCase.Execute(c.Request.Context(), appinventory.ReserveRequest{
		BookID:   id,
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toInventoryStatusResponse(result))
}

// Release 释放预留
// @Summary      释放预留
// @Description  取消/超时后归还预留量;超出当前预留量时按0封顶,不报错
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.ReserveRequest true "释放数量"
// @Success      200 {object} response.Response{data=dto.InventoryStatusResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "版本冲突"
// @Router       /api/v1/books/{id}/release [post]
func (h *InventoryHandler) Release(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.releaseUseCase.Execute(c.Request.Context(), appinventory.ReserveRequest{
		BookID:   id,
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toInventoryStatusResponse(result))
}

// Adjust 调整库存
// @Summary      调整库存
// @Description  管理员按增量调整实际库存(入库/损耗/盘点等);调整后库存为负返回400
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.AdjustRequest true "调整信息"
// @Success      200 {object} response.Response{data=dto.InventoryStatusResponse}
// @Failure      400 {object} response.Response "非法调整"
// @Failure      403 {object} response.Response "需要管理员权限"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.adjustUseCase.Execute(c.Request.Context(), appinventory.AdjustRequest{
		BookID: id,
		Delta:  req.Delta,
		Type:   req.Type,
		Reason: req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toInventoryStatusResponse(result))
}

// BulkAdjust 批量调整库存
// @Summary      批量调整库存
// @Description  逐条独立提交,遇到第一条失败即停止;已提交的不回滚,响应标明失败下标
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BulkAdjustRequest true "调整列表"
// @Success      200 {object} response.Response{data=dto.BulkAdjustResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/v1/inventory/bulk-adjust [post]
func (h *InventoryHandler) BulkAdjust(c *gin.Context) {
	var req dto.BulkAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	items := make([]appinventory.AdjustRequest, len(req.Adjustments))
	for i, a := range req.Adjustments {
		items[i] = appinventory.AdjustRequest{
			BookID: a.BookID,
			Delta:  a.Delta,
			Type:   a.Type,
			Reason: a.Reason,
		}
	}

	result, err := h.bulkAdjustUseCase.Execute(c.Request.Context(), appinventory.BulkAdjustRequest{
		Adjustments: items,
	})

	resp := &dto.BulkAdjustResponse{
		Applied: result.Applied,
		Total:   result.Total,
	}
	if err != nil {
		// 部分失败:携带失败下标与原因,HTTP状态跟随失败项的错误
		var bulkErr *inventory.BulkAdjustError
		if errors.As(err, &bulkErr) {
			idx := bulkErr.Index
			resp.FailedIndex = &idx
			resp.FailReason = bulkErr.Err.Error()
		}
		response.ErrorWithData(c, err, resp)
		return
	}

	response.Success(c, resp)
}

// UpdateReorderLevel 设置补货阈值
// @Summary      设置补货阈值
// @Description  管理员按图书调整reorder_level,立即影响needs_restock判定
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.UpdateReorderLevelRequest true "阈值"
// @Success      200 {object} response.Response{data=dto.InventoryStatusResponse}
// @Failure      400 {object} response.Response "阈值非法"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/reorder-level [put]
func (h *InventoryHandler) UpdateReorderLevel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateReorderLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.reorderLevelUseCase.Execute(c.Request.Context(), appinventory.UpdateReorderLevelRequest{
		BookID: id,
		Level:  *req.ReorderLevel,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toInventoryStatusResponse(result))
}

// RestockReport 补货报表
// @Summary      补货报表
// @Description  列出所有可用库存≤补货阈值的图书,供采购决策
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.InventoryStatusResponse}
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/v1/inventory/restock-report [get]
func (h *InventoryHandler) RestockReport(c *gin.Context) {
	result, err := h.restockReportUseCase.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toInventoryStatusResponses(result))
}

// LowStock 低库存清单
// @Summary      低库存清单
// @Description  列出可用库存≤指定阈值的图书;阈值与各书的reorder_level无关
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        threshold query int true "统一阈值"
// @Success      200 {object} response.Response{data=[]dto.InventoryStatusResponse}
// @Failure      400 {object} response.Response "阈值非法"
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/v1/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	var req dto.LowStockRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}
	if req.Threshold < 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "阈值不能为负数")
		return
	}

	result, err := h.lowStockUseCase.Execute(c.Request.Context(), req.Threshold)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toInventoryStatusResponses(result))
}

// =========================================
// 辅助函数
// =========================================

func toInventoryStatusResponse(s *appinventory.InventoryStatus) *dto.InventoryStatusResponse {
	return &dto.InventoryStatusResponse{
		BookID:           s.BookID,
		Title:            s.Title,
		QuantityInStock:  s.QuantityInStock,
		ReservedQuantity: s.ReservedQuantity,
		AvailableQty:     s.AvailableQty,
		ReorderLevel:     s.ReorderLevel,
		NeedsRestock:     s.NeedsRestock,
		Version:          s.Version,
	}
}

func toInventoryStatusResponses(list []*appinventory.InventoryStatus) []*dto.InventoryStatusResponse {
	out := make([]*dto.InventoryStatusResponse, len(list))
	for i, s := range list {
		out[i] = toInventoryStatusResponse(s)
	}
	return out
}
