// Package domain 定义报表相关的只读视图模型。
package domain

import (
	"github.com/shopspring/decimal"
)

// DashboardSummary 后台首页汇总。
type DashboardSummary struct {
	TotalProducts   int64           `json:"total_products"`
	LowStockCount   int64           `json:"low_stock_count"`
	MonthSalesTotal decimal.Decimal `json:"month_sales_total"`
	StockStatus     StockHistogram  `json:"stock_status"`
}

// StockHistogram 按库存充足度分档的商品数量分布。
type StockHistogram struct {
	OutOfStock  int64 `json:"out_of_stock"`
	OneWeek     int64 `json:"one_week"`
	TwoWeeks    int64 `json:"two_weeks"`
	MoreThanTwo int64 `json:"more_than_two_weeks"`
}

// MonthlyRevenue 某月销售总额,无数据的月份为零。
type MonthlyRevenue struct {
	Month   int             `json:"month"` // 1..12
	Revenue decimal.Decimal `json:"revenue"`
}
