package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/apperror"
	"github.com/retailorbit/smart-inventory/internal/domain"
	"github.com/retailorbit/smart-inventory/internal/mq"
	"github.com/retailorbit/smart-inventory/internal/repo"
)

// SaleService 定义销售单业务逻辑接口。
// 一笔销售在单个事务内完成:客户归并、明细落库、逐品扣减库存并落账、
// 客户消费聚合累加。任一商品库存不足则整单失败。
type SaleService interface {
	CreateSale(ctx context.Context, req *domain.CreateSaleRequest) (*domain.SaleResult, error)
	// UpdateSale 替换销售单明细:旧明细冲正后重新扣减,台账只增不改。
	UpdateSale(ctx context.Context, saleID int64, req *domain.CreateSaleRequest) (*domain.SaleResult, error)
	GetSale(saleID int64) (*domain.SaleDetail, error)
	ListSales(limit, offset int) ([]domain.Sale, int64, error)
}

// saleService 实现SaleService接口
type saleService struct {
	saleRepo    repo.SaleRepository
	productRepo repo.ProductRepository
	publisher   mq.SalePublisher
	logger      *zap.Logger
}

// NewSaleService 创建销售服务实例
func NewSaleService(saleRepo repo.SaleRepository, productRepo repo.ProductRepository, publisher mq.SalePublisher, logger *zap.Logger) SaleService {
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}
	return &saleService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// validateSaleRequest 校验销售请求的基本参数
func validateSaleRequest(req *domain.CreateSaleRequest) error {
	if req.CustomerName == "" {
		return apperror.InvalidArgument("customer name is required")
	}
	if len(req.Items) == 0 {
		return apperror.InvalidArgument("sale must contain at least one item")
	}
	for i := range req.Items {
		it := &req.Items[i]
		if it.Quantity <= 0 {
			return apperror.InvalidArgument("item quantity must be positive")
		}
		if !it.Price.IsPositive() {
			return apperror.InvalidArgument("item price must be positive")
		}
	}
	return nil
}

// mapSaleRepoError 将仓储层哨兵错误映射为业务错误
func mapSaleRepoError(err error) error {
	if errors.Is(err, repo.ErrProductNotFound) {
		return apperror.NotFound("product not found")
	}
	if errors.Is(err, repo.ErrInsufficientStock) {
		return apperror.InvalidOperation("insufficient stock")
	}
	return apperror.Internal(err, "failed to process sale")
}

// CreateSale 创建销售单
func (s *saleService) CreateSale(ctx context.Context, req *domain.CreateSaleRequest) (*domain.SaleResult, error) {
	if err := validateSaleRequest(req); err != nil {
		return nil, err
	}

	result, err := s.saleRepo.CreateSale(req)
	if err != nil {
		return nil, mapSaleRepoError(err)
	}

	// 事务已提交,事件发布失败只记日志
	event := &mq.SaleCompletedEvent{
		SaleID:        result.SaleID,
		CustomerID:    result.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		TotalAmount:   result.TotalAmount,
		OccurredAt:    time.Now(),
	}
	if err := s.publisher.PublishSaleCompleted(ctx, event); err != nil {
		s.logger.Warn("failed to publish sale completed event",
			zap.Int64("sale_id", result.SaleID), zap.Error(err))
	}

	return result, nil
}

// UpdateSale 更新销售单
func (s *saleService) UpdateSale(ctx context.Context, saleID int64, req *domain.CreateSaleRequest) (*domain.SaleResult, error) {
	if err := validateSaleRequest(req); err != nil {
		return nil, err
	}

	sale, err := s.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to get sale")
	}
	if sale == nil {
		return nil, apperror.NotFound("sale %d not found", saleID)
	}

	result, err := s.saleRepo.UpdateSale(sale, req)
	if err != nil {
		return nil, mapSaleRepoError(err)
	}
	return result, nil
}

// GetSale 查询销售单详情
func (s *saleService) GetSale(saleID int64) (*domain.SaleDetail, error) {
	detail, err := s.saleRepo.GetDetail(saleID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to get sale detail")
	}
	if detail == nil {
		return nil, apperror.NotFound("sale %d not found", saleID)
	}
	return detail, nil
}

// ListSales 列出销售单
func (s *saleService) ListSales(limit, offset int) ([]domain.Sale, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	sales, err := s.saleRepo.List(limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err, "failed to list sales")
	}
	total, err := s.saleRepo.Count()
	if err != nil {
		return nil, 0, apperror.Internal(err, "failed to count sales")
	}
	return sales, total, nil
}
