// Package domain 定义商品目录相关的业务领域模型和核心业务规则。
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus 定义商品状态类型
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"   // 正常销售
	ProductStatusInactive ProductStatus = "inactive" // 暂停销售
)

// Product 表示商品领域模型
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	Category      string          `json:"category"`
	Supplier      string          `json:"supplier"`
	CurrentStock  int             `json:"current_stock"`
	MinStockLevel int             `json:"min_stock_level"` // 低库存提醒阈值
	Status        ProductStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsAvailable 判断商品是否可售
func (p *Product) IsAvailable() bool {
	return p.Status == ProductStatusActive
}

// IsLowStock 判断是否低库存
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinStockLevel
}

// StockStatus 返回库存状态标签，与前端图表的分档一致。
func (p *Product) StockStatus() string {
	switch {
	case p.CurrentStock <= 0:
		return "Out of Stock"
	case p.CurrentStock <= 5:
		return "One Week Stock"
	case p.CurrentStock <= 20:
		return "Two Weeks Stock"
	default:
		return "More than Two Weeks Stock"
	}
}

// CreateProductRequest 表示创建商品请求
type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=255"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	Category      string          `json:"category"`
	Supplier      string          `json:"supplier"`
	CurrentStock  int             `json:"current_stock" binding:"min=0"`
	MinStockLevel int             `json:"min_stock_level" binding:"min=0"`
}

// UpdateProductRequest 表示更新商品请求
type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	CostPrice     *decimal.Decimal `json:"cost_price"`
	Category      *string          `json:"category"`
	Supplier      *string          `json:"supplier"`
	MinStockLevel *int             `json:"min_stock_level"`
	Status        *ProductStatus   `json:"status"`
}

// ProductWithStockStatus 带库存状态标签的商品视图
type ProductWithStockStatus struct {
	*Product
	StockStatusLabel string `json:"stock_status"`
}
