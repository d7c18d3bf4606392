// Package mq 提供RabbitMQ连接管理与销售事件的发布/消费。
package mq

import (
	"time"

	"github.com/shopspring/decimal"
)

// 销售事件的路由键。
const (
	RoutingKeySaleCompleted = "sale.completed"
)

// SaleCompletedEvent 销售完成事件,驱动售后反馈邮件等异步流程。
type SaleCompletedEvent struct {
	SaleID        int64           `json:"sale_id"`
	CustomerID    *int64          `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail *string         `json:"customer_email"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
