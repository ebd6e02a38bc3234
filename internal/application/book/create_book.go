package book

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/mysql"
)

// CreateBookUseCase 新建图书用例
// 设计说明:
// 1. 应用层负责用例编排,协调领域服务完成业务流程
// 2. 输入输出使用DTO(Data Transfer Object),与HTTP层解耦
// 3. ISBN唯一性、作者/分类解析由领域服务负责
// 4. ISBN检查、作者/分类解析、落库在同一事务中执行,
//    中途失败不会留下孤儿作者记录
type CreateBookUseCase struct {
	bookService book.Service
	txManager   *mysql.TxManager
}

// NewCreateBookUseCase 创建新建图书用例
func NewCreateBookUseCase(bookService book.Service, txManager *mysql.TxManager) *CreateBookUseCase {
	return &CreateBookUseCase{
		bookService: bookService,
		txManager:   txManager,
	}
}

// CreateBookRequest 新建图书请求DTO
type CreateBookRequest struct {
	Title         string
	ISBN          string
	Price         int64 // 分
	CostPrice     int64 // 分
	PublishedYear int
	SupplierInfo  string
	Description   string
	Authors       []PersonRef // 作者引用(ID或名称)
	Genres        []PersonRef // 分类引用
}

// PersonRef 作者/分类引用DTO
// ID非0按ID引用已有记录;否则按名称引用,名称不存在时自动创建
type PersonRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Execute 执行新建图书
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*BookDetail, error) {
	var b *book.Book

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		b, err = uc.bookService.CreateBook(txCtx, book.CreateInput{
			Title:         req.Title,
			ISBN:          req.ISBN,
			Price:         req.Price,
			CostPrice:     req.CostPrice,
			PublishedYear: req.PublishedYear,
			SupplierInfo:  req.SupplierInfo,
			Description:   req.Description,
			Authors:       toAuthorRefs(req.Authors),
			Genres:        toGenreRefs(req.Genres),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return toBookDetail(b), nil
}

// =========================================
// 应用层DTO
// =========================================

// BookDetail 图书详情DTO(各图书用例共用)
// 库存字段中available_quantity和needs_restock是派生值,
// 由实体方法计算,不落库
type BookDetail struct {
	ID               uint     `json:"id"`
	ISBN             string   `json:"isbn"`
	Title            string   `json:"title"`
	PublishedYear    int      `json:"published_year"`
	Price            int64    `json:"price"`      // 分
	CostPrice        int64    `json:"cost_price"` // 分,未录入为0
	SupplierInfo     string   `json:"supplier_info"`
	Description      string   `json:"description"`
	Authors          []string `json:"authors"`
	Genres           []string `json:"genres"`
	QuantityInStock  int      `json:"quantity_in_stock"`
	ReservedQuantity int      `json:"reserved_quantity"`
	AvailableQty     int      `json:"available_quantity"`
	ReorderLevel     int      `json:"reorder_level"`
	NeedsRestock     bool     `json:"needs_restock"`
	ViewCount        int64    `json:"view_count"`
	Version          int64    `json:"version"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// toBookDetail 领域实体 → 详情DTO
func toBookDetail(b *book.Book) *BookDetail {
	authors := make([]string, len(b.Authors))
	for i, a := range b.Authors {
		authors[i] = a.Name
	}
	genres := make([]string, len(b.Genres))
	for i, g := range b.Genres {
		genres[i] = g.Name
	}

	return &BookDetail{
		ID:               b.ID,
		ISBN:             b.ISBN,
		Title:            b.Title,
		PublishedYear:    b.PublishedYear,
		Price:            b.Price,
		CostPrice:        b.CostPrice,
		SupplierInfo:     b.SupplierInfo,
		Description:      b.Description,
		Authors:          authors,
		Genres:           genres,
		QuantityInStock:  b.QuantityInStock,
		ReservedQuantity: b.ReservedQuantity,
		AvailableQty:     b.AvailableQuantity(),
		ReorderLevel:     b.ReorderLevel,
		NeedsRestock:     b.NeedsRestock(),
		ViewCount:        b.ViewCount,
		Version:          b.Version,
		CreatedAt:        b.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:        b.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// toAuthorRefs 应用层引用DTO → 领域引用
func toAuthorRefs(refs []PersonRef) []book.AuthorRef {
	if refs == nil {
		return nil
	}
	out := make([]book.AuthorRef, len(refs))
	for i, r := range refs {
		out[i] = book.AuthorRef{ID: r.ID, Name: r.Name}
	}
	return out
}

func toGenreRefs(refs []PersonRef) []book.GenreRef {
	if refs == nil {
		return nil
	}
	out := make([]book.GenreRef, len(refs))
	for i, r := range refs {
		out[i] = book.GenreRef{ID: r.ID, Name: r.Name}
	}
	return out
}
