package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如ISBN重复),转换为业务错误
// 4. UpdateWithVersion通过单条条件UPDATE实现乐观锁提交,
//    不依赖SELECT FOR UPDATE,读多写少场景下吞吐更高
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书(含作者/分类关联)
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	// 关联的作者/分类已由ResolveAuthor/ResolveGenre解析出ID,
	// GORM会直接写入book_authors/book_genres关联表
	if err := r.getDB(ctx).Omit("Authors.*", "Genres.*").Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找图书(含作者/分类关联)
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := r.getDB(ctx).Preload("Authors").Preload("Genres").First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// FindByISBN 根据ISBN查找图书
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	err := r.getDB(ctx).Preload("Authors").Preload("Genres").
		Where("isbn = ?", isbn).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// UpdateWithVersion 条件更新(乐观锁提交)
// 核心语句:
//
//	UPDATE books SET ..., version = version + 1
//	WHERE id = ? AND version = ?
//
// 版本条件与写入在单条UPDATE内原子完成,不存在检查与写入之间的窗口。
// RowsAffected==0时再查一次区分"记录不存在"和"版本过期"两种失败原因
func (r *bookRepository) UpdateWithVersion(ctx context.Context, b *book.Book) error {
	db := r.getDB(ctx)

	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&BookModel{}).
			Where("id = ? AND version = ?", b.ID, b.Version).
			Updates(map[string]interface{}{
				"isbn":              isbnValue(b.ISBN),
				"title":             b.Title,
				"published_year":    b.PublishedYear,
				"price":             b.Price,
				"cost_price":        b.CostPrice,
				"supplier_info":     b.SupplierInfo,
				"description":       b.Description,
				"quantity_in_stock": b.QuantityInStock,
				"reserved_quantity": b.ReservedQuantity,
				"reorder_level":     b.ReorderLevel,
				"version":           gorm.Expr("version + 1"),
			})

		if result.Error != nil {
			if isDuplicateError(result.Error) {
				return book.ErrISBNDuplicate
			}
			return apperrors.Wrap(result.Error, "更新图书失败")
		}

		if result.RowsAffected == 0 {
			// 可能是图书不存在,或者版本已过期,再查一次确定原因
			var model BookModel
			if err := tx.First(&model, b.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return book.ErrBookNotFound
				}
				return apperrors.Wrap(err, "查询图书失败")
			}
			// 图书存在,说明是另一个写入者先提交了
			return &book.ConcurrencyConflictError{
				BookID:  b.ID,
				Version: b.Version,
			}
		}

		// 同步作者/分类关联(目录更新可能变更作者列表)
		bookRef := &BookModel{ID: b.ID}
		if err := tx.Model(bookRef).Association("Authors").Replace(toAuthorModels(b.Authors)); err != nil {
			return apperrors.Wrap(err, "更新作者关联失败")
		}
		if err := tx.Model(bookRef).Association("Genres").Replace(toGenreModels(b.Genres)); err != nil {
			return apperrors.Wrap(err, "更新分类关联失败")
		}

		return nil
	})

	if err != nil {
		return err
	}

	// 回填新版本号
	b.Version++
	return nil
}

// Delete 删除图书(软删除)
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&BookModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}

	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// Search 分页搜索图书
// 支持书名/作者/分类关键词过滤,多条件为AND关系;
// 排序字段已在domain层白名单校验,此处再做一次兜底映射防止SQL注入
func (r *bookRepository) Search(ctx context.Context, params book.SearchParams) ([]*book.Book, int64, error) {
	var models []BookModel
	var total int64

	query := r.getDB(ctx).Model(&BookModel{})

	if params.Title != "" {
		query = query.Where("books.title LIKE ?", "%"+params.Title+"%")
	}

	if params.Author != "" {
		query = query.
			Joins("JOIN book_authors ON book_authors.book_model_id = books.id").
			Joins("JOIN authors ON authors.id = book_authors.author_model_id").
			Where("authors.name LIKE ?", "%"+params.Author+"%")
	}

	if params.Genre != "" {
		query = query.
			Joins("JOIN book_genres ON book_genres.book_model_id = books.id").
			Joins("JOIN genres ON genres.id = book_genres.genre_model_id").
			Where("genres.name LIKE ?", "%"+params.Genre+"%")
	}

	// 关联过滤可能产生重复行
	query = query.Distinct("books.id")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	// 排序字段映射(兜底白名单)
	sortColumns := map[string]string{
		"title":          "books.title",
		"price":          "books.price",
		"published_year": "books.published_year",
	}
	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = "books.title"
	}
	direction := "ASC"
	if params.SortDir == "desc" {
		direction = "DESC"
	}
	query = query.Order(fmt.Sprintf("%s %s", column, direction))

	offset := (params.Page - 1) * params.PageSize
	query = query.Limit(params.PageSize).Offset(offset)

	if err := query.Preload("Authors").Preload("Genres").Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}

	return books, total, nil
}

// FindNeedingRestock 查询需要补货的图书
// 过滤条件:在库数量 - 预留数量 <= 补货阈值(基于已提交状态实时计算)
func (r *bookRepository) FindNeedingRestock(ctx context.Context) ([]*book.Book, error) {
	var models []BookModel
	err := r.getDB(ctx).
		Where("quantity_in_stock - reserved_quantity <= reorder_level").
		Order("quantity_in_stock - reserved_quantity ASC").
		Preload("Authors").Preload("Genres").
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询补货列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, nil
}

// FindLowStock 查询低库存图书(自定义阈值)
func (r *bookRepository) FindLowStock(ctx context.Context, threshold int) ([]*book.Book, error) {
	var models []BookModel
	err := r.getDB(ctx).
		Where("quantity_in_stock - reserved_quantity <= ?", threshold).
		Order("quantity_in_stock - reserved_quantity ASC").
		Preload("Authors").Preload("Genres").
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询低库存列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, nil
}

// IncrementViewCount 浏览计数+1(原子UPDATE)
// 计数器与业务数据的并发正确性无关,不走版本校验
func (r *bookRepository) IncrementViewCount(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Model(&BookModel{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新浏览计数失败")
	}
	return nil
}

// ResolveAuthor 解析作者引用
// 有ID按ID查找(不存在报错);否则按名称查找,不存在则创建
func (r *bookRepository) ResolveAuthor(ctx context.Context, ref book.AuthorRef) (book.Author, error) {
	db := r.getDB(ctx)

	if ref.ID != 0 {
		var model AuthorModel
		if err := db.First(&model, ref.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return book.Author{}, apperrors.Newf(apperrors.ErrCodeAuthorNotFound, "作者不存在: %d", ref.ID)
			}
			return book.Author{}, apperrors.Wrap(err, "查询作者失败")
		}
		return book.Author{ID: model.ID, Name: model.Name}, nil
	}

	if ref.Name == "" {
		return book.Author{}, apperrors.New(apperrors.ErrCodeInvalidParams, "作者必须提供ID或名称")
	}

	// 按名称查找,不存在则创建(名称有唯一索引,并发创建时靠索引兜底)
	var model AuthorModel
	err := db.Where("name = ?", ref.Name).FirstOrCreate(&model, AuthorModel{Name: ref.Name}).Error
	if err != nil {
		if isDuplicateError(err) {
			// 并发创建撞了唯一索引,重查一次
			if err := db.Where("name = ?", ref.Name).First(&model).Error; err != nil {
				return book.Author{}, apperrors.Wrap(err, "查询作者失败")
			}
		} else {
			return book.Author{}, apperrors.Wrap(err, "创建作者失败")
		}
	}
	return book.Author{ID: model.ID, Name: model.Name}, nil
}

// ResolveGenre 解析分类引用,语义同ResolveAuthor
func (r *bookRepository) ResolveGenre(ctx context.Context, ref book.GenreRef) (book.Genre, error) {
	db := r.getDB(ctx)

	if ref.ID != 0 {
		var model GenreModel
		if err := db.First(&model, ref.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return book.Genre{}, apperrors.Newf(apperrors.ErrCodeGenreNotFound, "分类不存在: %d", ref.ID)
			}
			return book.Genre{}, apperrors.Wrap(err, "查询分类失败")
		}
		return book.Genre{ID: model.ID, Name: model.Name}, nil
	}

	if ref.Name == "" {
		return book.Genre{}, apperrors.New(apperrors.ErrCodeInvalidParams, "分类必须提供ID或名称")
	}

	var model GenreModel
	err := db.Where("name = ?", ref.Name).FirstOrCreate(&model, GenreModel{Name: ref.Name}).Error
	if err != nil {
		if isDuplicateError(err) {
			if err := db.Where("name = ?", ref.Name).First(&model).Error; err != nil {
				return book.Genre{}, apperrors.Wrap(err, "查询分类失败")
			}
		} else {
			return book.Genre{}, apperrors.Wrap(err, "创建分类失败")
		}
	}
	return book.Genre{ID: model.ID, Name: model.Name}, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	isbn := ""
	if model.ISBN != nil {
		isbn = *model.ISBN
	}

	authors := make([]book.Author, len(model.Authors))
	for i, a := range model.Authors {
		authors[i] = book.Author{ID: a.ID, Name: a.Name}
	}
	genres := make([]book.Genre, len(model.Genres))
	for i, g := range model.Genres {
		genres[i] = book.Genre{ID: g.ID, Name: g.Name}
	}

	return &book.Book{
		ID:               model.ID,
		ISBN:             isbn,
		Title:            model.Title,
		PublishedYear:    model.PublishedYear,
		Price:            model.Price,
		CostPrice:        model.CostPrice,
		SupplierInfo:     model.SupplierInfo,
		Description:      model.Description,
		QuantityInStock:  model.QuantityInStock,
		ReservedQuantity: model.ReservedQuantity,
		ReorderLevel:     model.ReorderLevel,
		ViewCount:        model.ViewCount,
		Version:          model.Version,
		Authors:          authors,
		Genres:           genres,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

// toBookModel 领域实体 → GORM模型
func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:               b.ID,
		ISBN:             isbnValue(b.ISBN),
		Title:            b.Title,
		PublishedYear:    b.PublishedYear,
		Price:            b.Price,
		CostPrice:        b.CostPrice,
		SupplierInfo:     b.SupplierInfo,
		Description:      b.Description,
		QuantityInStock:  b.QuantityInStock,
		ReservedQuantity: b.ReservedQuantity,
		ReorderLevel:     b.ReorderLevel,
		ViewCount:        b.ViewCount,
		Version:          b.Version,
		Authors:          toAuthorModels(b.Authors),
		Genres:           toGenreModels(b.Genres),
	}
}

func toAuthorModels(authors []book.Author) []AuthorModel {
	models := make([]AuthorModel, len(authors))
	for i, a := range authors {
		models[i] = AuthorModel{ID: a.ID, Name: a.Name}
	}
	return models
}

func toGenreModels(genres []book.Genre) []GenreModel {
	models := make([]GenreModel, len(genres))
	for i, g := range genres {
		models[i] = GenreModel{ID: g.ID, Name: g.Name}
	}
	return models
}

// isbnValue 空ISBN存NULL,避免空字符串占用唯一索引
func isbnValue(isbn string) *string {
	if isbn == "" {
		return nil
	}
	return &isbn
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *bookRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
