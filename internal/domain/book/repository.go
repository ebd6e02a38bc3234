package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于Mock测试,不依赖具体数据库实现
// 3. UpdateWithVersion是并发控制网关:所有对已存在图书的写入必须经由它,
//    禁止绕过版本校验直接改字段
type Repository interface {
	// Create 创建图书(含作者/分类关联)
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书(含作者/分类关联与当前版本号)
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// UpdateWithVersion 条件更新(乐观锁提交)
	// 仅当存储中的版本号等于book.Version时写入,并将版本号原子+1;
	// 成功后回填book.Version为新版本。版本不匹配返回*ConcurrencyConflictError,
	// 记录不存在返回ErrBookNotFound。条件判断与写入必须在单条原子语句
	// (或单个事务)内完成
	UpdateWithVersion(ctx context.Context, book *Book) error

	// Delete 删除图书
	Delete(ctx context.Context, id uint) error

	// Search 分页搜索图书
	Search(ctx context.Context, params SearchParams) ([]*Book, int64, error)

	// FindNeedingRestock 查询需要补货的图书
	// 过滤条件:在库数量 - 预留数量 <= 补货阈值,基于已提交状态实时计算
	FindNeedingRestock(ctx context.Context) ([]*Book, error)

	// FindLowStock 查询低库存图书
	// 过滤条件:在库数量 - 预留数量 <= threshold
	FindLowStock(ctx context.Context, threshold int) ([]*Book, error)

	// IncrementViewCount 浏览计数+1(原子UPDATE)
	// 计数器与并发正确性无关,不走版本校验
	IncrementViewCount(ctx context.Context, id uint) error

	// ResolveAuthor 解析作者引用
	// 有ID按ID查找(不存在报错);否则按名称查找,不存在则创建
	ResolveAuthor(ctx context.Context, ref AuthorRef) (Author, error)

	// ResolveGenre 解析分类引用,语义同ResolveAuthor
	ResolveGenre(ctx context.Context, ref GenreRef) (Genre, error)
}

// AuthorRef 作者引用(ID或名称二选一)
type AuthorRef struct {
	ID   uint
	Name string
}

// GenreRef 分类引用
type GenreRef struct {
	ID   uint
	Name string
}

// SearchParams 搜索查询参数
type SearchParams struct {
	Title    string // 书名关键词(模糊匹配)
	Author   string // 作者名关键词(模糊匹配)
	Genre    string // 分类名关键词(模糊匹配)
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	SortBy   string // 排序字段(title/price/published_year)
	SortDir  string // 排序方向(asc/desc)
}
