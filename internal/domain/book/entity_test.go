package book

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// newTestBook 标准测试图书:在库10,预留2,补货阈值5
func newTestBook() *Book {
	b := NewBook("三体", "9787536692930", 2300, 2008)
	b.ID = 1
	b.QuantityInStock = 10
	b.ReservedQuantity = 2
	b.ReorderLevel = 5
	return b
}

func TestBook_AvailableQuantity(t *testing.T) {
	t.Run("正常情况:在库-预留", func(t *testing.T) {
		b := newTestBook()
		assert.Equal(t, 8, b.AvailableQuantity(), "可用库存应该是10-2=8")
		assert.True(t, b.IsAvailable())
	})

	t.Run("预留大于在库时取整到0", func(t *testing.T) {
		b := newTestBook()
		b.QuantityInStock = 1
		b.ReservedQuantity = 3
		assert.Equal(t, 0, b.AvailableQuantity(), "可用库存不应该为负")
		assert.False(t, b.IsAvailable())
	})
}

func TestBook_NeedsRestock(t *testing.T) {
	t.Run("可用库存高于阈值不需要补货", func(t *testing.T) {
		b := newTestBook() // 可用8 > 阈值5
		assert.False(t, b.NeedsRestock())
	})

	t.Run("可用库存等于阈值需要补货", func(t *testing.T) {
		b := newTestBook()
		b.ReservedQuantity = 5 // 可用5 == 阈值5
		assert.True(t, b.NeedsRestock(), "阈值判定是<=,等于也要补货")
	})

	t.Run("零库存需要补货", func(t *testing.T) {
		b := NewBook("新书", "", 1000, 2026)
		assert.True(t, b.NeedsRestock(), "新书库存0,低于默认阈值")
	})
}

func TestBook_Reserve(t *testing.T) {
	t.Run("正常预留", func(t *testing.T) {
		b := newTestBook()
		err := b.Reserve(3)
		require.NoError(t, err)
		assert.Equal(t, 5, b.ReservedQuantity)
		assert.Equal(t, 10, b.QuantityInStock, "预留不改变在库数量")
		assert.Equal(t, 5, b.AvailableQuantity())
	})

	t.Run("预留全部可用库存", func(t *testing.T) {
		b := newTestBook()
		err := b.Reserve(8)
		require.NoError(t, err)
		assert.Equal(t, 0, b.AvailableQuantity())
	})

	t.Run("可用库存不足整体拒绝", func(t *testing.T) {
		b := newTestBook()
		err := b.Reserve(9)

		var insufficientErr *InsufficientInventoryError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, uint(1), insufficientErr.BookID)
		assert.Equal(t, 9, insufficientErr.Requested)
		assert.Equal(t, 8, insufficientErr.Available)
		assert.Equal(t, 2, b.ReservedQuantity, "失败时不做部分预留")
	})

	t.Run("数量必须大于等于1", func(t *testing.T) {
		b := newTestBook()
		assert.ErrorIs(t, b.Reserve(0), ErrInvalidQuantity)
		assert.ErrorIs(t, b.Reserve(-1), ErrInvalidQuantity)
	})

	t.Run("预留超额时错误携带原始差值", func(t *testing.T) {
		// 调整操作可能造成预留>在库,此时原始差值为负
		b := newTestBook()
		b.QuantityInStock = 1
		b.ReservedQuantity = 3

		err := b.Reserve(1)
		var insufficientErr *InsufficientInventoryError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, -2, insufficientErr.Available, "错误里报告原始差值,不取整")
	})
}

func TestBook_ReleaseReservation(t *testing.T) {
	t.Run("正常释放", func(t *testing.T) {
		b := newTestBook()
		err := b.ReleaseReservation(1)
		require.NoError(t, err)
		assert.Equal(t, 1, b.ReservedQuantity)
	})

	t.Run("超额释放钳位到0不报错", func(t *testing.T) {
		b := newTestBook()
		err := b.ReleaseReservation(100)
		require.NoError(t, err, "宽容策略:超额释放等同于释放全部")
		assert.Equal(t, 0, b.ReservedQuantity)
	})

	t.Run("数量必须大于等于1", func(t *testing.T) {
		b := newTestBook()
		assert.ErrorIs(t, b.ReleaseReservation(0), ErrInvalidQuantity)
	})
}

func TestBook_Adjust(t *testing.T) {
	t.Run("入库", func(t *testing.T) {
		b := newTestBook()
		require.NoError(t, b.Adjust(5))
		assert.Equal(t, 15, b.QuantityInStock)
	})

	t.Run("出库", func(t *testing.T) {
		b := newTestBook()
		require.NoError(t, b.Adjust(-4))
		assert.Equal(t, 6, b.QuantityInStock)
	})

	t.Run("零增量是合法的空操作", func(t *testing.T) {
		b := newTestBook()
		require.NoError(t, b.Adjust(0))
		assert.Equal(t, 10, b.QuantityInStock)
	})

	t.Run("调整后在库为负被拒绝", func(t *testing.T) {
		b := newTestBook()
		err := b.Adjust(-11)

		var adjustErr *InvalidAdjustmentError
		require.ErrorAs(t, err, &adjustErr)
		assert.Equal(t, 10, adjustErr.CurrentQuantity)
		assert.Equal(t, -11, adjustErr.Delta)
		assert.Equal(t, 10, b.QuantityInStock, "失败时状态不变")
	})

	t.Run("允许调整后预留大于在库", func(t *testing.T) {
		// 盘点发现丢书:在库10预留2,盘亏9本后在库1,预留仍是2
		b := newTestBook()
		require.NoError(t, b.Adjust(-9))
		assert.Equal(t, 1, b.QuantityInStock)
		assert.Equal(t, 2, b.ReservedQuantity, "预留不自动回落")
		assert.Equal(t, 0, b.AvailableQuantity())
	})
}

func TestBook_SetReorderLevel(t *testing.T) {
	b := newTestBook()

	require.NoError(t, b.SetReorderLevel(0), "阈值0合法(只有售罄才告警)")
	assert.Equal(t, 0, b.ReorderLevel)

	require.NoError(t, b.SetReorderLevel(20))
	assert.True(t, b.NeedsRestock(), "新阈值立即生效")

	assert.ErrorIs(t, b.SetReorderLevel(-1), ErrInvalidReorderLevel)
}

func TestBook_Margin(t *testing.T) {
	b := newTestBook()

	_, ok := b.Margin()
	assert.False(t, ok, "未录入进价时没有毛利")

	b.CostPrice = 1500
	margin, ok := b.Margin()
	require.True(t, ok)
	assert.Equal(t, int64(800), margin, "毛利=售价2300-进价1500")

	percent, ok := b.MarginPercent()
	require.True(t, ok)
	assert.InDelta(t, 53.33, percent, 0.01, "毛利率=800/1500")
}

func TestDomainErrors_UnwrapToAppError(t *testing.T) {
	// 领域错误必须能解包出AppError,接口层靠这个映射HTTP状态码
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"库存不足", &InsufficientInventoryError{BookID: 1, Requested: 5, Available: 2}, apperrors.ErrCodeInsufficientInventory},
		{"非法调整", &InvalidAdjustmentError{BookID: 1, CurrentQuantity: 3, Delta: -5}, apperrors.ErrCodeInvalidAdjustment},
		{"版本冲突", &ConcurrencyConflictError{BookID: 1, Version: 7}, apperrors.ErrCodeConcurrencyConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var appErr *apperrors.AppError
			require.True(t, errors.As(tc.err, &appErr), "%T应该能解包出AppError", tc.err)
			assert.Equal(t, tc.wantCode, appErr.Code)
		})
	}
}
