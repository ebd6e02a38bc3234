package dto

import "fmt"

// PersonRef 作者/分类引用
// ID非0按ID引用已有记录;否则按名称引用,名称不存在时自动创建
type PersonRef struct {
	ID   uint   `json:"id" binding:"omitempty" example:"1"`
	Name string `json:"name" binding:"omitempty,max=100" example:"刘慈欣"`
}

// CreateBookRequest HTTP新建图书请求
// validator tag说明:
// - required: 必填字段
// - min/max: 数值范围校验
type CreateBookRequest struct {
	Title         string      `json:"title" binding:"required,max=200" example:"三体"`
	ISBN          string      `json:"isbn" binding:"omitempty,max=20" example:"9787536692930"`
	Price         int64       `json:"price" binding:"required,min=1,max=99999999" example:"2300"` // 价格(分),23.00元
	CostPrice     int64       `json:"cost_price" binding:"omitempty,min=0" example:"1500"`        // 进价(分)
	PublishedYear int         `json:"published_year" binding:"omitempty,min=0,max=2100" example:"2008"`
	SupplierInfo  string      `json:"supplier_info" binding:"omitempty,max=200" example:"新华供应链"`
	Description   string      `json:"description" binding:"omitempty,max=5000" example:"科幻小说三部曲第一部"`
	Authors       []PersonRef `json:"authors" binding:"omitempty,dive"`
	Genres        []PersonRef `json:"genres" binding:"omitempty,dive"`
}

// UpdateBookRequest HTTP更新图书请求
// ID必须与路径ID一致;version是读取时拿到的版本号,
// 携带时参与乐观锁校验,并发更新的后提交方收到409
type UpdateBookRequest struct {
	ID            uint        `json:"id" binding:"omitempty" example:"1"`
	Version       int64       `json:"version" binding:"omitempty,min=0" example:"3"`
	Title         string      `json:"title" binding:"required,max=200" example:"三体"`
	ISBN          string      `json:"isbn" binding:"omitempty,max=20" example:"9787536692930"`
	Price         int64       `json:"price" binding:"required,min=1,max=99999999" example:"2500"`
	CostPrice     int64       `json:"cost_price" binding:"omitempty,min=0" example:"1500"`
	PublishedYear int         `json:"published_year" binding:"omitempty,min=0,max=2100" example:"2008"`
	SupplierInfo  string      `json:"supplier_info" binding:"omitempty,max=200" example:"新华供应链"`
	Description   string      `json:"description" binding:"omitempty,max=5000" example:"科幻小说三部曲第一部"`
	Authors       []PersonRef `json:"authors" binding:"omitempty,dive"`
	Genres        []PersonRef `json:"genres" binding:"omitempty,dive"`
}

// SearchBooksRequest HTTP搜索请求
// sort格式"字段,方向",白名单:title/price/published_year × asc/desc
type SearchBooksRequest struct {
	Title    string `form:"title" binding:"omitempty,max=200" example:"三体"`
	Author   string `form:"author" binding:"omitempty,max=100" example:"刘慈欣"`
	Genre    string `form:"genre" binding:"omitempty,max=100" example:"科幻"`
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Sort     string `form:"sort" binding:"omitempty,max=50" example:"price,desc"`
}

// BookResponse HTTP图书详情响应
type BookResponse struct {
	ID               uint     `json:"id" example:"1"`
	ISBN             string   `json:"isbn" example:"9787536692930"`
	Title            string   `json:"title" example:"三体"`
	PublishedYear    int      `json:"published_year" example:"2008"`
	Price            int64    `json:"price" example:"2300"`       // 价格(分)
	PriceYuan        string   `json:"price_yuan" example:"23.00"` // 价格(元),方便前端显示
	CostPrice        int64    `json:"cost_price" example:"1500"`
	SupplierInfo     string   `json:"supplier_info" example:"新华供应链"`
	Description      string   `json:"description" example:"科幻小说三部曲第一部"`
	Authors          []string `json:"authors" example:"刘慈欣"`
	Genres           []string `json:"genres" example:"科幻"`
	QuantityInStock  int      `json:"quantity_in_stock" example:"10"`
	ReservedQuantity int      `json:"reserved_quantity" example:"2"`
	AvailableQty     int      `json:"available_quantity" example:"8"`
	ReorderLevel     int      `json:"reorder_level" example:"5"`
	NeedsRestock     bool     `json:"needs_restock" example:"false"`
	ViewCount        int64    `json:"view_count" example:"42"`
	Version          int64    `json:"version" example:"3"`
	CreatedAt        string   `json:"created_at" example:"2026-01-15 10:30:00"`
	UpdatedAt        string   `json:"updated_at" example:"2026-01-15 10:30:00"`
}

// BookListItem HTTP图书列表项(不含description等长字段)
type BookListItem struct {
	ID            uint     `json:"id" example:"1"`
	ISBN          string   `json:"isbn" example:"9787536692930"`
	Title         string   `json:"title" example:"三体"`
	PublishedYear int      `json:"published_year" example:"2008"`
	Price         int64    `json:"price" example:"2300"`
	PriceYuan     string   `json:"price_yuan" example:"23.00"`
	Authors       []string `json:"authors" example:"刘慈欣"`
	Genres        []string `json:"genres" example:"科幻"`
	AvailableQty  int      `json:"available_quantity" example:"8"`
	NeedsRestock  bool     `json:"needs_restock" example:"false"`
}

// FormatPriceYuan 格式化价格(分→元)
// 例如:5900分 → "59.00"
func FormatPriceYuan(priceFen int64) string {
	yuan := float64(priceFen) / 100.0
	return fmt.Sprintf("%.2f", yuan)
}
