package book

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// SearchBooksUseCase 图书搜索用例
// 设计说明:
// 1. 支持书名/作者/分类关键词过滤(AND关系)、分页、白名单排序
// 2. 列表项不返回description等长字段(减少数据传输量)
type SearchBooksUseCase struct {
	bookService book.Service
}

// NewSearchBooksUseCase 创建搜索用例
func NewSearchBooksUseCase(bookService book.Service) *SearchBooksUseCase {
	return &SearchBooksUseCase{
		bookService: bookService,
	}
}

// SearchBooksRequest 搜索请求DTO
type SearchBooksRequest struct {
	Title    string // 书名关键词
	Author   string // 作者关键词
	Genre    string // 分类关键词
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Sort     string // 排序参数,格式"字段,方向",如"price,desc"
}

// BookListItem 列表项DTO(不含description)
type BookListItem struct {
	ID            uint     `json:"id"`
	ISBN          string   `json:"isbn"`
	Title         string   `json:"title"`
	PublishedYear int      `json:"published_year"`
	Price         int64    `json:"price"` // 分
	Authors       []string `json:"authors"`
	Genres        []string `json:"genres"`
	AvailableQty  int      `json:"available_quantity"`
	NeedsRestock  bool     `json:"needs_restock"`
}

// SearchBooksResponse 搜索响应DTO
type SearchBooksResponse struct {
	List       []BookListItem `json:"list"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// Execute 执行搜索
func (uc *SearchBooksUseCase) Execute(ctx context.Context, req SearchBooksRequest) (*SearchBooksResponse, error) {
	// 1. 排序参数白名单校验(非法字段/方向直接拒绝)
	sortBy, sortDir, err := book.ParseSort(req.Sort)
	if err != nil {
		return nil, err
	}

	// 2. 参数默认值与范围限制
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	// 3. 执行查询
	books, total, err := uc.bookService.SearchBooks(ctx, book.SearchParams{
		Title:    req.Title,
		Author:   req.Author,
		Genre:    req.Genre,
		Page:     req.Page,
		PageSize: req.PageSize,
		SortBy:   sortBy,
		SortDir:  sortDir,
	})
	if err != nil {
		return nil, err
	}

	// 4. 转换为DTO
	list := make([]BookListItem, len(books))
	for i, b := range books {
		authors := make([]string, len(b.Authors))
		for j, a := range b.Authors {
			authors[j] = a.Name
		}
		genres := make([]string, len(b.Genres))
		for j, g := range b.Genres {
			genres[j] = g.Name
		}
		list[i] = BookListItem{
			ID:            b.ID,
			ISBN:          b.ISBN,
			Title:         b.Title,
			PublishedYear: b.PublishedYear,
			Price:         b.Price,
			Authors:       authors,
			Genres:        genres,
			AvailableQty:  b.AvailableQuantity(),
			NeedsRestock:  b.NeedsRestock(),
		}
	}

	totalPages := int(total) / req.PageSize
	if int(total)%req.PageSize != 0 {
		totalPages++
	}

	return &SearchBooksResponse{
		List:       list,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}
