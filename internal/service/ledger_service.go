// Package service 实现业务逻辑层，协调各种资源完成业务需求。
package service

import (
	"errors"

	"github.com/retailorbit/smart-inventory/internal/apperror"
	"github.com/retailorbit/smart-inventory/internal/domain"
	"github.com/retailorbit/smart-inventory/internal/repo"
)

// LedgerService 定义库存台账业务逻辑接口。
// 所有库存变动都经由台账落账,商品的current_stock与台账始终同步变化。
type LedgerService interface {
	// ApplyStockDelta 调整库存并落账。
	ApplyStockDelta(productID int64, delta int, entryType domain.StockEntryType, reason string, referenceID *int64) (*domain.StockAdjustmentResult, error)
	// AddStock 补货入口:只接受正数,固定为人工调整条目。
	AddStock(req *domain.AddStockRequest) (*domain.StockAdjustmentResult, error)
	// EditStockEntry 修正人工调整条目,销售条目受保护。
	EditStockEntry(entryID int64, req *domain.EditStockEntryRequest) (*domain.StockAdjustmentResult, error)
	// DeleteStockEntry 删除人工调整条目并回退其库存影响。
	DeleteStockEntry(entryID int64) (*domain.StockAdjustmentResult, error)
	// ListStockHistory 查询商品台账,最新在前。
	ListStockHistory(productID int64, limit, offset int) ([]*domain.StockEntryView, error)
	// ListStockAudit 查询台账条目的修正历史。
	ListStockAudit(entryID int64) ([]domain.StockAuditRecord, error)
}

// ledgerService 实现LedgerService接口
type ledgerService struct {
	stockRepo   repo.StockRepository
	productRepo repo.ProductRepository
}

// NewLedgerService 创建台账服务实例
func NewLedgerService(stockRepo repo.StockRepository, productRepo repo.ProductRepository) LedgerService {
	return &ledgerService{
		stockRepo:   stockRepo,
		productRepo: productRepo,
	}
}

// ApplyStockDelta 调整库存并落账
func (s *ledgerService) ApplyStockDelta(productID int64, delta int, entryType domain.StockEntryType, reason string, referenceID *int64) (*domain.StockAdjustmentResult, error) {
	if delta == 0 {
		return nil, apperror.InvalidArgument("stock delta must be non-zero")
	}

	result, err := s.stockRepo.ApplyDelta(productID, delta, entryType, reason, referenceID)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			return nil, apperror.NotFound("product %d not found", productID)
		}
		if errors.Is(err, repo.ErrInsufficientStock) {
			return nil, apperror.InvalidOperation("insufficient stock for product %d", productID)
		}
		return nil, apperror.Internal(err, "failed to apply stock delta")
	}
	return result, nil
}

// AddStock 补货
func (s *ledgerService) AddStock(req *domain.AddStockRequest) (*domain.StockAdjustmentResult, error) {
	if req.Quantity <= 0 {
		return nil, apperror.InvalidArgument("restock quantity must be positive")
	}
	reason := req.Reason
	if reason == "" {
		reason = "restock"
	}
	return s.ApplyStockDelta(req.ProductID, req.Quantity, domain.StockEntryAdjustment, reason, req.ReferenceID)
}

// EditStockEntry 修正台账条目。
// 最新库存取仓储事务内计算的值,不回读商品缓存。
func (s *ledgerService) EditStockEntry(entryID int64, req *domain.EditStockEntryRequest) (*domain.StockAdjustmentResult, error) {
	if req.Quantity <= 0 {
		return nil, apperror.InvalidArgument("quantity must be positive")
	}

	result, err := s.stockRepo.EditEntry(entryID, &req.Quantity, req.Reason)
	if err != nil {
		if errors.Is(err, repo.ErrEntryNotFound) {
			return nil, apperror.NotFound("stock entry %d not found", entryID)
		}
		if errors.Is(err, repo.ErrEntryProtected) {
			return nil, apperror.InvalidOperation("sale entries cannot be edited")
		}
		return nil, apperror.Internal(err, "failed to edit stock entry")
	}
	return result, nil
}

// DeleteStockEntry 删除台账条目
func (s *ledgerService) DeleteStockEntry(entryID int64) (*domain.StockAdjustmentResult, error) {
	result, err := s.stockRepo.DeleteEntry(entryID)
	if err != nil {
		if errors.Is(err, repo.ErrEntryNotFound) {
			return nil, apperror.NotFound("stock entry %d not found", entryID)
		}
		if errors.Is(err, repo.ErrEntryProtected) {
			return nil, apperror.InvalidOperation("sale entries cannot be deleted")
		}
		return nil, apperror.Internal(err, "failed to delete stock entry")
	}
	return result, nil
}

// ListStockHistory 查询商品台账
func (s *ledgerService) ListStockHistory(productID int64, limit, offset int) ([]*domain.StockEntryView, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to get product")
	}
	if product == nil {
		return nil, apperror.NotFound("product %d not found", productID)
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := s.stockRepo.ListByProduct(productID, limit, offset)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list stock entries")
	}

	views := make([]*domain.StockEntryView, 0, len(entries))
	for i := range entries {
		views = append(views, domain.NewStockEntryView(&entries[i]))
	}
	return views, nil
}

// ListStockAudit 查询修正历史
func (s *ledgerService) ListStockAudit(entryID int64) ([]domain.StockAuditRecord, error) {
	records, err := s.stockRepo.ListAudit(entryID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list stock audit records")
	}
	return records, nil
}
