package book

import (
	"context"
	"errors"
)

// Service 图书目录领域服务接口
// 设计说明:
// 1. 领域服务封装跨实体的业务逻辑(ISBN唯一性、作者/分类解析)
// 2. 不依赖具体的Repository实现(依赖倒置)
// 3. 只负责目录属性(书名、价格、作者等),库存变更走inventory包的操作引擎
type Service interface {
	// CreateBook 新建图书
	// 业务规则:ISBN非空时不能与已有图书重复;作者/分类按引用解析,
	// 名称不存在时自动创建
	CreateBook(ctx context.Context, input CreateInput) (*Book, error)

	// GetBook 获取图书详情(含关联),并递增浏览计数
	GetBook(ctx context.Context, id uint) (*Book, error)

	// UpdateBook 全量更新图书目录信息
	// 业务规则:
	// 1. 路径ID与输入体ID必须一致
	// 2. ISBN不能与其他图书重复
	// 3. 以乐观锁提交:两个并发更新只有一个生效,另一个收到冲突错误,
	//    最终状态完整等于胜者提交的状态,不会出现字段混合
	UpdateBook(ctx context.Context, id uint, input UpdateInput) (*Book, error)

	// DeleteBook 删除图书(幂等:不存在时静默成功)
	DeleteBook(ctx context.Context, id uint) error

	// SearchBooks 分页搜索图书
	SearchBooks(ctx context.Context, params SearchParams) ([]*Book, int64, error)
}

// CreateInput 新建图书输入
type CreateInput struct {
	Title         string
	ISBN          string
	Price         int64 // 分
	CostPrice     int64 // 分
	PublishedYear int
	SupplierInfo  string
	Description   string
	Authors       []AuthorRef
	Genres        []GenreRef
}

// UpdateInput 更新图书输入
// ID用于与路径ID核对;Version是调用方读取时拿到的版本号,提交时校验
type UpdateInput struct {
	ID            uint
	Version       int64
	Title         string
	ISBN          string
	Price         int64
	CostPrice     int64
	PublishedYear int
	SupplierInfo  string
	Description   string
	Authors       []AuthorRef
	Genres        []GenreRef
}

type service struct {
	repo Repository
}

// NewService 创建图书目录领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreateBook 新建图书
func (s *service) CreateBook(ctx context.Context, input CreateInput) (*Book, error) {
	// 1. ISBN唯一性检查
	if err := s.checkISBN(ctx, input.ISBN, 0); err != nil {
		return nil, err
	}

	// 2. 创建实体
	b := NewBook(input.Title, input.ISBN, input.Price, input.PublishedYear)
	b.CostPrice = input.CostPrice
	b.SupplierInfo = input.SupplierInfo
	b.Description = input.Description

	// 3. 解析作者/分类关联
	if err := s.resolveRelations(ctx, b, input.Authors, input.Genres); err != nil {
		return nil, err
	}

	// 4. 持久化
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// GetBook 获取图书详情
func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 浏览计数是尽力而为的统计,失败不影响查询结果
	if err := s.repo.IncrementViewCount(ctx, id); err == nil {
		b.ViewCount++
	}

	return b, nil
}

// UpdateBook 全量更新图书目录信息
func (s *service) UpdateBook(ctx context.Context, id uint, input UpdateInput) (*Book, error) {
	// 1. 路径ID与请求体ID核对
	if input.ID != 0 && input.ID != id {
		return nil, ErrIDMismatch
	}

	// 2. 加载当前状态
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3. ISBN唯一性检查(排除自身)
	if err := s.checkISBN(ctx, input.ISBN, id); err != nil {
		return nil, err
	}

	// 4. 应用目录字段变更
	b.UpdateInfo(input.Title, input.ISBN, input.Price, input.CostPrice,
		input.PublishedYear, input.SupplierInfo, input.Description)
	if err := s.resolveRelations(ctx, b, input.Authors, input.Genres); err != nil {
		return nil, err
	}

	// 5. 以调用方读取时的版本提交
	// 调用方未传版本(0值时间窗较难区分,这里约定Version>0才覆盖)则用
	// 刚加载的版本,此时冲突窗口缩小为本方法内部的读-改-写间隙
	if input.Version > 0 {
		b.Version = input.Version
	}

	// 6. 乐观锁提交:版本不匹配返回冲突,不产生任何变更
	if err := s.repo.UpdateWithVersion(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// DeleteBook 删除图书
func (s *service) DeleteBook(ctx context.Context, id uint) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrBookNotFound) {
		// 删除是幂等的:目标不存在视为成功
		return nil
	}
	return err
}

// SearchBooks 分页搜索图书
func (s *service) SearchBooks(ctx context.Context, params SearchParams) ([]*Book, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 20
	}
	if params.PageSize > 100 {
		params.PageSize = 100
	}
	return s.repo.Search(ctx, params)
}

// checkISBN ISBN唯一性检查
// excludeID排除自身(更新场景);ISBN为空串时跳过检查
func (s *service) checkISBN(ctx context.Context, isbn string, excludeID uint) error {
	if isbn == "" {
		return nil
	}

	existing, err := s.repo.FindByISBN(ctx, isbn)
	if errors.Is(err, ErrBookNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != excludeID {
		return ErrISBNDuplicate
	}
	return nil
}

// resolveRelations 解析作者/分类引用并挂到实体上
func (s *service) resolveRelations(ctx context.Context, b *Book, authors []AuthorRef, genres []GenreRef) error {
	if authors != nil {
		resolved := make([]Author, 0, len(authors))
		for _, ref := range authors {
			a, err := s.repo.ResolveAuthor(ctx, ref)
			if err != nil {
				return err
			}
			resolved = append(resolved, a)
		}
		b.Authors = resolved
	}

	if genres != nil {
		resolved := make([]Genre, 0, len(genres))
		for _, ref := range genres {
			g, err := s.repo.ResolveGenre(ctx, ref)
			if err != nil {
				return err
			}
			resolved = append(resolved, g)
		}
		b.Genres = resolved
	}

	return nil
}
