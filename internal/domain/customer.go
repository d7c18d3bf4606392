// Package domain 定义客户相关的业务领域模型。
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer 表示客户领域模型。
// TotalPurchases/TotalSpent/LastPurchaseDate 为销售流程维护的聚合统计。
type Customer struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Email            *string         `json:"email"` // 可空，存在时全局唯一
	Phone            string          `json:"phone"`
	Address          string          `json:"address"`
	TotalPurchases   int             `json:"total_purchases"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	LastPurchaseDate *time.Time      `json:"last_purchase_date"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CreateCustomerRequest 表示创建客户请求
type CreateCustomerRequest struct {
	Name    string  `json:"name" binding:"required,min=1,max=255"`
	Email   *string `json:"email"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
}

// UpdateCustomerRequest 表示更新客户请求
type UpdateCustomerRequest struct {
	Name    string  `json:"name" binding:"required,min=1,max=255"`
	Email   *string `json:"email"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
}
