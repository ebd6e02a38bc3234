package book

import (
	"strings"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// 搜索排序白名单
// 设计说明:排序参数最终会拼入ORDER BY,必须白名单校验,防止SQL注入
var allowedSortFields = map[string]string{
	"title":          "title",
	"price":          "price",
	"published_year": "published_year",
}

// ParseSort 解析并校验排序参数
// 格式:"field,direction",如"price,desc";空串返回默认排序(title,asc)
func ParseSort(sortParam string) (field, dir string, err error) {
	if strings.TrimSpace(sortParam) == "" {
		return "title", "asc", nil
	}

	parts := strings.Split(sortParam, ",")
	if len(parts) != 2 {
		return "", "", apperrors.New(apperrors.ErrCodeInvalidSort, "排序参数格式应为: 字段,方向")
	}

	field = strings.ToLower(strings.TrimSpace(parts[0]))
	dir = strings.ToLower(strings.TrimSpace(parts[1]))

	column, ok := allowedSortFields[field]
	if !ok {
		return "", "", apperrors.Newf(apperrors.ErrCodeInvalidSort,
			"非法的排序字段: %s (允许: title/price/published_year)", field)
	}

	if dir != "asc" && dir != "desc" {
		return "", "", apperrors.Newf(apperrors.ErrCodeInvalidSort,
			"非法的排序方向: %s (允许: asc/desc)", dir)
	}

	return column, dir, nil
}
