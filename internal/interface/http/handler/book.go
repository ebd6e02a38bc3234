package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	"github.com/xiebiao/bookcatalog/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/response"
)

// BookHandler 图书目录HTTP处理器
type BookHandler struct {
	createBookUseCase  *appbook.CreateBookUseCase
	getBookUseCase     *appbook.GetBookUseCase
	updateBookUseCase  *appbook.UpdateBookUseCase
	deleteBookUseCase  *appbook.DeleteBookUseCase
	searchBooksUseCase *appbook.SearchBooksUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	createBookUseCase *appbook.CreateBookUseCase,
	getBookUseCase *appbook.GetBookUseCase,
	updateBookUseCase *appbook.UpdateBookUseCase,
	deleteBookUseCase *appbook.DeleteBookUseCase,
	searchBooksUseCase *appbook.SearchBooksUseCase,
) *BookHandler {
	return &BookHandler{
		createBookUseCase:  createBookUseCase,
		getBookUseCase:     getBookUseCase,
		updateBookUseCase:  updateBookUseCase,
		deleteBookUseCase:  deleteBookUseCase,
		searchBooksUseCase: searchBooksUseCase,
	}
}

// CreateBook 新建图书
// @Summary      新建图书
// @Description  管理员录入新图书(含作者/分类,名称不存在时自动创建)
// @Tags         图书目录
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "需要管理员权限"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.createBookUseCase.Execute(c.Request.Context(), appbook.CreateBookRequest{
		Title:         req.Title,
		ISBN:          req.ISBN,
		Price:         req.Price,
		CostPrice:     req.CostPrice,
		PublishedYear: req.PublishedYear,
		SupplierInfo:  req.SupplierInfo,
		Description:   req.Description,
		Authors:       toPersonRefs(req.Authors),
		Genres:        toPersonRefs(req.Genres),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toBookResponse(result))
}

// GetBook 查询图书详情
// @Summary      图书详情
// @Description  查询单本图书(含库存状态与派生的可用库存);每次查询浏览计数+1
// @Tags         图书目录
// @Produce      json
// @Param        id path int true "图书ID"
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.getBookUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toBookResponse(result))
}

// UpdateBook 更新图书
// @Summary      更新图书
// @Description  全量更新目录信息;请求体携带version时做乐观锁校验,并发冲突返回409
// @Tags         图书目录
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.UpdateBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误/ID不一致"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "版本冲突或ISBN重复"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateBookUseCase.Execute(c.Request.Context(), id, appbook.UpdateBookRequest{
		ID:            req.ID,
		Version:       req.Version,
		Title:         req.Title,
		ISBN:          req.ISBN,
		Price:         req.Price,
		CostPrice:     req.CostPrice,
		PublishedYear: req.PublishedYear,
		SupplierInfo:  req.SupplierInfo,
		Description:   req.Description,
		Authors:       toPersonRefs(req.Authors),
		Genres:        toPersonRefs(req.Genres),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toBookResponse(result))
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Description  删除是幂等的:目标不存在同样返回成功
// @Tags         图书目录
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.deleteBookUseCase.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// SearchBooks 搜索图书
// @Summary      搜索图书
// @Description  按书名/作者/分类关键词搜索(AND关系),支持分页与白名单排序
// @Tags         图书目录
// @Produce      json
// @Param        title query string false "书名关键词"
// @Param        author query string false "作者关键词"
// @Param        genre query string false "分类关键词"
// @Param        page query int false "页码(默认1)"
// @Param        page_size query int false "每页数量(默认20,最大100)"
// @Param        sort query string false "排序,格式'字段,方向',如price,desc"
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=response.PageData}
// @Failure      400 {object} response.Response "排序参数非法"
// @Router       /api/v1/books [get]
func (h *BookHandler) SearchBooks(c *gin.Context) {
	var req dto.SearchBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.searchBooksUseCase.Execute(c.Request.Context(), appbook.SearchBooksRequest{
		Title:    req.Title,
		Author:   req.Author,
		Genre:    req.Genre,
		Page:     req.Page,
		PageSize: req.PageSize,
		Sort:     req.Sort,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]dto.BookListItem, len(result.List))
	for i, item := range result.List {
		list[i] = dto.BookListItem{
			ID:            item.ID,
			ISBN:          item.ISBN,
			Title:         item.Title,
			PublishedYear: item.PublishedYear,
			Price:         item.Price,
			PriceYuan:     dto.FormatPriceYuan(item.Price),
			Authors:       item.Authors,
			Genres:        item.Genres,
			AvailableQty:  item.AvailableQty,
			NeedsRestock:  item.NeedsRestock,
		}
	}

	response.SuccessWithPage(c, list, result.Total, result.Page, result.PageSize)
}

// =========================================
// 辅助函数
// =========================================

// parseIDParam 解析路径中的图书ID
// 解析失败时已写入响应,调用方直接return
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "非法的图书ID")
		return 0, false
	}
	return uint(id), true
}

// toBookResponse 应用层DTO → HTTP响应DTO
func toBookResponse(b *appbook.BookDetail) *dto.BookResponse {
	return &dto.BookResponse{
		ID:               b.ID,
		ISBN:             b.ISBN,
		Title:            b.Title,
		PublishedYear:    b.PublishedYear,
		Price:            b.Price,
		PriceYuan:        dto.FormatPriceYuan(b.Price),
		CostPrice:        b.CostPrice,
		SupplierInfo:     b.SupplierInfo,
		Description:      b.Description,
		Authors:          b.Authors,
		Genres:           b.Genres,
		QuantityInStock:  b.QuantityInStock,
		ReservedQuantity: b.ReservedQuantity,
		AvailableQty:     b.AvailableQty,
		ReorderLevel:     b.ReorderLevel,
		NeedsRestock:     b.NeedsRestock,
		ViewCount:        b.ViewCount,
		Version:          b.Version,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

// toPersonRefs HTTP引用DTO → 应用层引用DTO
func toPersonRefs(refs []dto.PersonRef) []appbook.PersonRef {
	if refs == nil {
		return nil
	}
	out := make([]appbook.PersonRef, len(refs))
	for i, r := range refs {
		out[i] = appbook.PersonRef{ID: r.ID, Name: r.Name}
	}
	return out
}
