// Package domain 定义销售单相关的业务领域模型。
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale 表示一笔销售单。
// 客户姓名/邮箱/电话是下单时刻的快照，与customers表中的最新资料相互独立。
type Sale struct {
	ID            int64           `json:"id"`
	CustomerID    *int64          `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail *string         `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SaleItem 表示销售单的一条明细。
// Price是成交时刻的快照价，后续商品调价不影响历史销售单。
type SaleItem struct {
	ID          int64           `json:"id"`
	SaleID      int64           `json:"sale_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"` // 查询时联表填充
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Subtotal 返回明细小计。
func (i *SaleItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SaleItemRequest 表示销售单明细的请求体
type SaleItemRequest struct {
	ProductID int64           `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	Price     decimal.Decimal `json:"price" binding:"required"`
}

// CreateSaleRequest 表示创建/更新销售单请求
type CreateSaleRequest struct {
	CustomerName    string            `json:"customer_name" binding:"required,min=1"`
	CustomerEmail   *string           `json:"customer_email"`
	CustomerPhone   string            `json:"customer_phone"`
	CustomerAddress string            `json:"customer_address"`
	Items           []SaleItemRequest `json:"items" binding:"required,min=1"`
}

// TotalAmount 计算请求中全部明细的总金额。
func (r *CreateSaleRequest) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for i := range r.Items {
		qty := decimal.NewFromInt(int64(r.Items[i].Quantity))
		total = total.Add(r.Items[i].Price.Mul(qty))
	}
	return total
}

// SaleResult 表示销售单写操作的结果
type SaleResult struct {
	SaleID      int64           `json:"sale_id"`
	CustomerID  *int64          `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"date"`
}

// SaleDetail 表示带明细与客户资料的销售单视图
type SaleDetail struct {
	*Sale
	Items    []*SaleItem `json:"items"`
	Customer *Customer   `json:"customer,omitempty"`
}
