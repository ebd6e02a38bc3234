package book

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// GetBookUseCase 图书详情查询用例
// 每次查询会递增浏览计数(尽力而为,计数失败不影响查询)
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建详情查询用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{
		bookService: bookService,
	}
}

// Execute 执行详情查询
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookDetail, error) {
	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	return toBookDetail(b), nil
}
