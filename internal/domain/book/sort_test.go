package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

func TestParseSort(t *testing.T) {
	t.Run("空参数返回默认排序", func(t *testing.T) {
		field, dir, err := ParseSort("")
		require.NoError(t, err)
		assert.Equal(t, "title", field)
		assert.Equal(t, "asc", dir)

		field, dir, err = ParseSort("   ")
		require.NoError(t, err)
		assert.Equal(t, "title", field)
		assert.Equal(t, "asc", dir)
	})

	t.Run("白名单内的合法组合", func(t *testing.T) {
		cases := []struct {
			input string
			field string
			dir   string
		}{
			{"title,asc", "title", "asc"},
			{"price,desc", "price", "desc"},
			{"published_year,asc", "published_year", "asc"},
			{"Price,DESC", "price", "desc"},     // 大小写不敏感
			{" price , desc ", "price", "desc"}, // 容忍空格
		}
		for _, tc := range cases {
			field, dir, err := ParseSort(tc.input)
			require.NoError(t, err, "输入: %q", tc.input)
			assert.Equal(t, tc.field, field)
			assert.Equal(t, tc.dir, dir)
		}
	})

	t.Run("非法参数被拒绝", func(t *testing.T) {
		cases := []string{
			"price",              // 缺少方向
			"price,desc,extra",   // 多余片段
			"view_count,asc",     // 不在白名单
			"price,descending",   // 非法方向
			"price;drop table;a", // 注入尝试
		}
		for _, input := range cases {
			_, _, err := ParseSort(input)
			require.Error(t, err, "输入: %q", input)

			appErr := apperrors.GetAppError(err)
			assert.Equal(t, apperrors.ErrCodeInvalidSort, appErr.Code, "输入: %q", input)
		}
	})
}
