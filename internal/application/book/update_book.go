package book

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/mysql"
)

// UpdateBookUseCase 更新图书用例
// 设计说明:
// 1. 全量更新目录字段;库存字段不在此用例修改(走库存操作引擎)
// 2. 请求体可携带读取时的version,并发更新时后提交方收到冲突错误,
//    客户端刷新后重试
// 3. ISBN检查、关联解析、乐观锁提交在同一事务中执行,
//    冲突回滚时不留下半截关联变更
type UpdateBookUseCase struct {
	bookService book.Service
	txManager   *mysql.TxManager
}

// NewUpdateBookUseCase 创建更新用例
func NewUpdateBookUseCase(bookService book.Service, txManager *mysql.TxManager) *UpdateBookUseCase {
	return &UpdateBookUseCase{
		bookService: bookService,
		txManager:   txManager,
	}
}

// UpdateBookRequest 更新图书请求DTO
type UpdateBookRequest struct {
	ID            uint  // 请求体ID(与路径ID核对)
	Version       int64 // 读取时的版本号(>0时参与乐观锁校验)
	Title         string
	ISBN          string
	Price         int64
	CostPrice     int64
	PublishedYear int
	SupplierInfo  string
	Description   string
	Authors       []PersonRef
	Genres        []PersonRef
}

// Execute 执行更新
func (uc *UpdateBookUseCase) Execute(ctx context.Context, id uint, req UpdateBookRequest) (*BookDetail, error) {
	var b *book.Book

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		b, err = uc.bookService.UpdateBook(txCtx, id, book.UpdateInput{
			ID:            req.ID,
			Version:       req.Version,
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
