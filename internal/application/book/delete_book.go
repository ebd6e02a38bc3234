package book

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// DeleteBookUseCase 删除图书用例
// 删除是幂等的:目标不存在时同样返回成功
type DeleteBookUseCase struct {
	bookService book.Service
}

// NewDeleteBookUseCase 创建删除用例
func NewDeleteBookUseCase(bookService book.Service) *DeleteBookUseCase {
	return &DeleteBookUseCase{
		bookService: bookService,
	}
}

// Execute 执行删除
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) error {
	return uc.bookService.DeleteBook(ctx, id)
}
