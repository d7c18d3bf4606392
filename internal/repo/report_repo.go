package repo

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/retailorbit/smart-inventory/internal/domain"
)

// ReportRepository 定义报表只读查询接口。
// 聚合直接在数据库完成,分档阈值与 domain.Product.StockStatus 保持一致。
type ReportRepository interface {
	DashboardSummary() (*domain.DashboardSummary, error)
	// MonthlyRevenue 返回指定年份 12 个月的销售总额,无数据的月份为零。
	MonthlyRevenue(year int) ([]domain.MonthlyRevenue, error)
}

type reportRepo struct {
	db *sql.DB
}

// NewReportRepository 创建报表仓储实例。
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) DashboardSummary() (*domain.DashboardSummary, error) {
	var s domain.DashboardSummary
	err := r.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(current_stock <= min_stock_level), 0),
		        COALESCE(SUM(current_stock <= 0), 0),
		        COALESCE(SUM(current_stock > 0 AND current_stock <= 5), 0),
		        COALESCE(SUM(current_stock > 5 AND current_stock <= 20), 0),
		        COALESCE(SUM(current_stock > 20), 0)
		 FROM products`,
	).Scan(&s.TotalProducts, &s.LowStockCount,
		&s.StockStatus.OutOfStock, &s.StockStatus.OneWeek,
		&s.StockStatus.TwoWeeks, &s.StockStatus.MoreThanTwo)
	if err != nil {
		return nil, fmt.Errorf("failed to query product summary: %w", err)
	}

	err = r.db.QueryRow(
		`SELECT COALESCE(SUM(total_amount), 0) FROM sales
		 WHERE YEAR(created_at) = YEAR(CURRENT_DATE) AND MONTH(created_at) = MONTH(CURRENT_DATE)`,
	).Scan(&s.MonthSalesTotal)
	if err != nil {
		return nil, fmt.Errorf("failed to query month sales total: %w", err)
	}
	return &s, nil
}

func (r *reportRepo) MonthlyRevenue(year int) ([]domain.MonthlyRevenue, error) {
	rows, err := r.db.Query(
		`SELECT MONTH(created_at), COALESCE(SUM(total_amount), 0)
		 FROM sales WHERE YEAR(created_at) = ?
		 GROUP BY MONTH(created_at)`,
		year,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly revenue: %w", err)
	}
	defer rows.Close()

	result := make([]domain.MonthlyRevenue, 12)
	for i := range result {
		result[i] = domain.MonthlyRevenue{Month: i + 1, Revenue: decimal.Zero}
	}
	for rows.Next() {
		var month int
		var revenue decimal.Decimal
		if err := rows.Scan(&month, &revenue); err != nil {
			return nil, fmt.Errorf("failed to scan monthly revenue: %w", err)
		}
		if month >= 1 && month <= 12 {
			result[month-1].Revenue = revenue
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly revenue: %w", err)
	}
	return result, nil
}
