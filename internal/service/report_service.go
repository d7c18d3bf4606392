package service

import (
	"context"
	"time"

	"github.com/retailorbit/smart-inventory/internal/apperror"
	"github.com/retailorbit/smart-inventory/internal/cache"
	"github.com/retailorbit/smart-inventory/internal/domain"
	"github.com/retailorbit/smart-inventory/internal/repo"
)

// ReportService 定义报表业务逻辑接口。
// 只读查询,数据异常直接报错,不做降级填充。
type ReportService interface {
	DashboardSummary() (*domain.DashboardSummary, error)
	MonthlyRevenue(year int) ([]domain.MonthlyRevenue, error)
	InventoryOverview() ([]*domain.ProductWithStockStatus, error)
}

const dashboardCacheKey = "reports:dashboard"

// reportService 实现ReportService接口
type reportService struct {
	reportRepo  repo.ReportRepository
	productRepo repo.ProductRepository
	cache       cache.Cache
	cacheTTL    time.Duration
}

// NewReportService 创建报表服务实例
func NewReportService(reportRepo repo.ReportRepository, productRepo repo.ProductRepository, c cache.Cache, cacheTTL time.Duration) ReportService {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &reportService{
		reportRepo:  reportRepo,
		productRepo: productRepo,
		cache:       c,
		cacheTTL:    cacheTTL,
	}
}

// DashboardSummary 后台首页汇总,短TTL缓存
func (s *reportService) DashboardSummary() (*domain.DashboardSummary, error) {
	ctx := context.Background()

	var cached domain.DashboardSummary
	if err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil {
		return &cached, nil
	}

	summary, err := s.reportRepo.DashboardSummary()
	if err != nil {
		return nil, apperror.Internal(err, "failed to build dashboard summary")
	}
	s.cache.Set(ctx, dashboardCacheKey, summary, s.cacheTTL)
	return summary, nil
}

// MonthlyRevenue 指定年份逐月销售额
func (s *reportService) MonthlyRevenue(year int) ([]domain.MonthlyRevenue, error) {
	if year < 2000 || year > 2100 {
		return nil, apperror.InvalidArgument("invalid year: %d", year)
	}
	revenue, err := s.reportRepo.MonthlyRevenue(year)
	if err != nil {
		return nil, apperror.Internal(err, "failed to query monthly revenue")
	}
	return revenue, nil
}

// InventoryOverview 全部商品及库存状态标签
func (s *reportService) InventoryOverview() ([]*domain.ProductWithStockStatus, error) {
	products, err := s.productRepo.List()
	if err != nil {
		return nil, apperror.Internal(err, "failed to list products")
	}
	return withStockStatus(products), nil
}
