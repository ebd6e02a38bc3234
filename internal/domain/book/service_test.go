package book

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo 内存仓储,UpdateWithVersion语义与数据库实现一致
type memRepo struct {
	mu     sync.Mutex
	nextID uint
	books  map[uint]*Book
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, books: make(map[uint]*Book)}
}

func (r *memRepo) Create(_ context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.books {
		if b.ISBN != "" && existing.ISBN == b.ISBN {
			return ErrISBNDuplicate
		}
	}
	b.ID = r.nextID
	r.nextID++
	copied := *b
	r.books[b.ID] = &copied
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id uint) (*Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *memRepo) FindByISBN(_ context.Context, isbn string) (*Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.books {
		if b.ISBN == isbn {
			copied := *b
			return &copied, nil
		}
	}
	return nil, ErrBookNotFound
}

func (r *memRepo) UpdateWithVersion(_ context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.books[b.ID]
	if !ok {
		return ErrBookNotFound
	}
	if stored.Version != b.Version {
		return &ConcurrencyConflictError{BookID: b.ID, Version: b.Version}
	}
	copied := *b
	copied.Version++
	r.books[b.ID] = &copied
	b.Version = copied.Version
	return nil
}

func (r *memRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *memRepo) Search(_ context.Context, _ SearchParams) ([]*Book, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*Book
	for _, b := range r.books {
		copied := *b
		result = append(result, &copied)
	}
	return result, int64(len(result)), nil
}

func (r *memRepo) FindNeedingRestock(_ context.Context) ([]*Book, error) { return nil, nil }

func (r *memRepo) FindLowStock(_ context.Context, _ int) ([]*Book, error) { return nil, nil }

func (r *memRepo) IncrementViewCount(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.books[id]; ok {
		b.ViewCount++
	}
	return nil
}

func (r *memRepo) ResolveAuthor(_ context.Context, ref AuthorRef) (Author, error) {
	if ref.ID != 0 {
		return Author{ID: ref.ID, Name: fmt.Sprintf("作者%d", ref.ID)}, nil
	}
	return Author{ID: 100, Name: ref.Name}, nil
}

func (r *memRepo) ResolveGenre(_ context.Context, ref GenreRef) (Genre, error) {
	if ref.ID != 0 {
		return Genre{ID: ref.ID, Name: fmt.Sprintf("分类%d", ref.ID)}, nil
	}
	return Genre{ID: 200, Name: ref.Name}, nil
}

func TestService_CreateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("正常创建", func(t *testing.T) {
		svc := NewService(newMemRepo())

		b, err := svc.CreateBook(ctx, CreateInput{
			Title:         "三体",
			ISBN:          "9787536692930",
			Price:         2300,
			PublishedYear: 2008,
			Authors:       []AuthorRef{{Name: "刘慈欣"}},
			Genres:        []GenreRef{{Name: "科幻"}},
		})
		require.NoError(t, err)
		assert.NotZero(t, b.ID)
		assert.Equal(t, 0, b.QuantityInStock, "新书库存从0开始")
		assert.Equal(t, DefaultReorderLevel, b.ReorderLevel)
		assert.Equal(t, int64(0), b.Version)
		require.Len(t, b.Authors, 1)
		assert.Equal(t, "刘慈欣", b.Authors[0].Name)
	})

	t.Run("ISBN重复被拒绝", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo)

		_, err := svc.CreateBook(ctx, CreateInput{Title: "第一本", ISBN: "111", Price: 1000})
		require.NoError(t, err)

		_, err = svc.CreateBook(ctx, CreateInput{Title: "第二本", ISBN: "111", Price: 1000})
		assert.ErrorIs(t, err, ErrISBNDuplicate)
	})

	t.Run("ISBN为空时不参与唯一性检查", func(t *testing.T) {
		svc := NewService(newMemRepo())

		_, err := svc.CreateBook(ctx, CreateInput{Title: "无ISBN甲", Price: 1000})
		require.NoError(t, err)
		_, err = svc.CreateBook(ctx, CreateInput{Title: "无ISBN乙", Price: 1000})
		require.NoError(t, err, "多本无ISBN图书可以共存")
	})
}

func TestService_GetBook(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)

	created, err := svc.CreateBook(ctx, CreateInput{Title: "三体", Price: 2300})
	require.NoError(t, err)

	b, err := svc.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.ViewCount, "查询详情浏览计数+1")

	b, err = svc.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.ViewCount)

	_, err = svc.GetBook(ctx, 999)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestService_UpdateBook(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (Service, *Book) {
		repo := newMemRepo()
		svc := NewService(repo)
		b, err := svc.CreateBook(ctx, CreateInput{Title: "旧书名", ISBN: "111", Price: 1000})
		require.NoError(t, err)
		return svc, b
	}

	t.Run("正常更新并自增版本", func(t *testing.T) {
		svc, created := setup(t)

		b, err := svc.UpdateBook(ctx, created.ID, UpdateInput{
			ID:      created.ID,
			Version: created.Version,
			Title:   "新书名",
			ISBN:    "111",
			Price:   1500,
		})
		require.NoError(t, err)
		assert.Equal(t, "新书名", b.Title)
		assert.Equal(t, created.Version+1, b.Version)
	})

	t.Run("路径ID与请求体ID不一致被拒绝", func(t *testing.T) {
		svc, created := setup(t)

		_, err := svc.UpdateBook(ctx, created.ID, UpdateInput{ID: created.ID + 1, Title: "x"})
		assert.ErrorIs(t, err, ErrIDMismatch)
	})

	t.Run("携带过期版本返回冲突", func(t *testing.T) {
		svc, created := setup(t)

		// 第一次更新把版本抬到1
		_, err := svc.UpdateBook(ctx, created.ID, UpdateInput{
			Version: created.Version, Title: "胜者", ISBN: "111", Price: 1100,
		})
		require.NoError(t, err)

		// 用创建时的旧版本再提交
		_, err = svc.UpdateBook(ctx, created.ID, UpdateInput{
			Version: created.Version, Title: "败者", ISBN: "111", Price: 1200,
		})
		var conflictErr *ConcurrencyConflictError
		require.ErrorAs(t, err, &conflictErr)

		// 最终状态完整等于胜者提交的状态
		b, err := svc.GetBook(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "胜者", b.Title)
		assert.Equal(t, int64(1100), b.Price, "不存在字段混合")
	})

	t.Run("更新为其他图书的ISBN被拒绝", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo)
		first, err := svc.CreateBook(ctx, CreateInput{Title: "甲", ISBN: "111", Price: 1000})
		require.NoError(t, err)
		_, err = svc.CreateBook(ctx, CreateInput{Title: "乙", ISBN: "222", Price: 1000})
		require.NoError(t, err)

		_, err = svc.UpdateBook(ctx, first.ID, UpdateInput{Title: "甲", ISBN: "222", Price: 1000})
		assert.ErrorIs(t, err, ErrISBNDuplicate)
	})

	t.Run("保留自身ISBN不算重复", func(t *testing.T) {
		svc, created := setup(t)

		_, err := svc.UpdateBook(ctx, created.ID, UpdateInput{Title: "改名", ISBN: "111", Price: 1000})
		require.NoError(t, err)
	})
}

func TestService_DeleteBook(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)

	created, err := svc.CreateBook(ctx, CreateInput{Title: "待删除", Price: 1000})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBook(ctx, created.ID))
	_, err = svc.GetBook(ctx, created.ID)
	assert.ErrorIs(t, err, ErrBookNotFound)

	// 幂等:再删一次同样成功
	assert.NoError(t, svc.DeleteBook(ctx, created.ID))
	assert.NoError(t, svc.DeleteBook(ctx, 999))
}

func TestService_SearchBooks_Pagination(t *testing.T) {
	ctx := context.Background()
	capture := &paramsCapture{Repository: newMemRepo()}
	svc := NewService(capture)

	_, _, err := svc.SearchBooks(ctx, SearchParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, capture.last.Page, "页码默认1")
	assert.Equal(t, 20, capture.last.PageSize, "每页默认20")

	_, _, err = svc.SearchBooks(ctx, SearchParams{Page: 3, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 3, capture.last.Page)
	assert.Equal(t, 100, capture.last.PageSize, "每页上限100")
}

// paramsCapture 记录透传给仓储的搜索参数
type paramsCapture struct {
	Repository
	last SearchParams
}

func (c *paramsCapture) Search(ctx context.Context, params SearchParams) ([]*Book, int64, error) {
	c.last = params
	return c.Repository.Search(ctx, params)
}
