package book

import (
	"time"
)

// DefaultReorderLevel 新建图书的默认补货阈值
const DefaultReorderLevel = 5

// Author 作者（值对象）
// 按名称去重（数据库层保证唯一性），通过book_authors多对多关联
type Author struct {
	ID   uint
	Name string
}

// Genre 图书分类（值对象）
type Genre struct {
	ID   uint
	Name string
}

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book是图书聚合的根实体,同时承载目录属性与库存状态
// 2. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 3. 库存三元组:QuantityInStock(在库数量)、ReservedQuantity(预留数量)、
//    ReorderLevel(补货阈值);可用库存是派生值,永不单独存储
// 4. Version是乐观锁版本号:每次成功提交+1,提交时版本不匹配则拒绝写入,
//    防止并发写入互相覆盖(丢失更新)
type Book struct {
	ID               uint
	ISBN             string // ISBN号(国际标准书号,可选,非空时唯一)
	Title            string // 书名
	PublishedYear    int    // 出版年份
	Price            int64  // 售价(单位:分,1元=100分)
	CostPrice        int64  // 进价(分),0表示未录入
	SupplierInfo     string // 供应商信息
	Description      string // 图书描述
	QuantityInStock  int    // 在库数量,恒>=0
	ReservedQuantity int    // 预留数量(待履约订单占用),恒>=0
	ReorderLevel     int    // 补货阈值,恒>=0
	ViewCount        int64  // 浏览次数
	Version          int64  // 乐观锁版本号
	Authors          []Author
	Genres           []Genre
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewBook 创建新图书(工厂方法)
// 初始状态:库存0、预留0、补货阈值取默认值、版本号0
func NewBook(title, isbn string, price int64, publishedYear int) *Book {
	now := time.Now()
	return &Book{
		Title:            title,
		ISBN:             isbn,
		Price:            price,
		PublishedYear:    publishedYear,
		QuantityInStock:  0,
		ReservedQuantity: 0,
		ReorderLevel:     DefaultReorderLevel,
		Version:          0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// AvailableQuantity 可用库存(派生值)
// 业务规则:可用库存 = 在库数量 - 预留数量,向下取整到0
// 注意:预留数量可能大于在库数量(调整操作允许,见Adjust),此时展示为0
func (b *Book) AvailableQuantity() int {
	available := b.QuantityInStock - b.ReservedQuantity
	if available < 0 {
		return 0
	}
	return available
}

// IsAvailable 是否有可售库存
func (b *Book) IsAvailable() bool {
	return b.AvailableQuantity() > 0
}

// NeedsRestock 是否需要补货
// 业务规则:可用库存 <= 补货阈值
func (b *Book) NeedsRestock() bool {
	return b.AvailableQuantity() <= b.ReorderLevel
}

// Margin 毛利(分)
// 进价未录入时返回false
func (b *Book) Margin() (int64, bool) {
	if b.CostPrice <= 0 {
		return 0, false
	}
	return b.Price - b.CostPrice, true
}

// MarginPercent 毛利率(百分比)
// 进价未录入时返回false
func (b *Book) MarginPercent() (float64, bool) {
	margin, ok := b.Margin()
	if !ok {
		return 0, false
	}
	return float64(margin) / float64(b.CostPrice) * 100, true
}

// Reserve 预留库存(领域行为)
// 业务规则:
// 1. 数量必须>=1
// 2. 可用库存不足时整体拒绝,不做部分预留
// 比较使用原始差值(在库-预留),不经过AvailableQuantity的取整
func (b *Book) Reserve(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	available := b.QuantityInStock - b.ReservedQuantity
	if available < quantity {
		return &InsufficientInventoryError{
			BookID:    b.ID,
			Requested: quantity,
			Available: available,
		}
	}
	b.ReservedQuantity += quantity
	b.UpdatedAt = time.Now()
	return nil
}

// ReleaseReservation 释放预留(领域行为)
// 业务规则:超额释放按"释放全部预留"处理(钳位到0),不报错
// 这是有意的宽容策略:释放方不需要精确知道当前预留量
func (b *Book) ReleaseReservation(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	newReserved := b.ReservedQuantity - quantity
	if newReserved < 0 {
		newReserved = 0
	}
	b.ReservedQuantity = newReserved
	b.UpdatedAt = time.Now()
	return nil
}

// Adjust 调整在库数量(领域行为)
// delta为正表示入库(收货、退货),为负表示出库(损坏、丢失、售出)
// 业务规则:调整后在库数量不能为负
// 注意:这里不校验预留数量与新在库数量的关系——调整允许暂时出现
// 预留>在库的状态(展示层的可用库存会取整到0),不自动回落预留
func (b *Book) Adjust(delta int) error {
	newQuantity := b.QuantityInStock + delta
	if newQuantity < 0 {
		return &InvalidAdjustmentError{
			BookID:          b.ID,
			CurrentQuantity: b.QuantityInStock,
			Delta:           delta,
		}
	}
	b.QuantityInStock = newQuantity
	b.UpdatedAt = time.Now()
	return nil
}

// SetReorderLevel 设置补货阈值(领域行为)
func (b *Book) SetReorderLevel(level int) error {
	if level < 0 {
		return ErrInvalidReorderLevel
	}
	b.ReorderLevel = level
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateInfo 更新目录信息(领域行为)
// 库存字段(在库、预留、补货阈值)不在此处修改,必须走库存操作
func (b *Book) UpdateInfo(title, isbn string, price, costPrice int64, publishedYear int, supplierInfo, description string) {
	b.Title = title
	b.ISBN = isbn
	b.Price = price
	b.CostPrice = costPrice
	b.PublishedYear = publishedYear
	b.SupplierInfo = supplierInfo
	b.Description = description
	b.UpdatedAt = time.Now()
}
