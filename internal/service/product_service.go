package service

import (
	"github.com/retailorbit/smart-inventory/internal/apperror"
	"github.com/retailorbit/smart-inventory/internal/domain"
	"github.com/retailorbit/smart-inventory/internal/repo"
)

// ProductService 定义商品业务逻辑接口
type ProductService interface {
	CreateProduct(req *domain.CreateProductRequest) (*domain.Product, error)
	GetProduct(id int64) (*domain.Product, error)
	UpdateProduct(id int64, req *domain.UpdateProductRequest) (*domain.Product, error)
	// DeleteProduct 删除商品,仍有库存时拒绝。
	DeleteProduct(id int64) error
	ListProducts() ([]*domain.ProductWithStockStatus, error)
	// ListLowStock 列出库存不高于阈值的商品,库存越少越靠前。
	ListLowStock(threshold int) ([]*domain.ProductWithStockStatus, error)
}

// productService 实现ProductService接口
type productService struct {
	productRepo repo.ProductRepository
}

// NewProductService 创建商品服务实例
func NewProductService(productRepo repo.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

// CreateProduct 创建商品
func (s *productService) CreateProduct(req *domain.CreateProductRequest) (*domain.Product, error) {
	if req.Name == "" {
		return nil, apperror.InvalidArgument("product name is required")
	}
	if !req.Price.IsPositive() {
		return nil, apperror.InvalidArgument("product price must be positive")
	}
	if req.CurrentStock < 0 {
		return nil, apperror.InvalidArgument("initial stock must not be negative")
	}

	product := &domain.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		CostPrice:     req.CostPrice,
		Category:      req.Category,
		Supplier:      req.Supplier,
		CurrentStock:  req.CurrentStock,
		MinStockLevel: req.MinStockLevel,
		Status:        domain.ProductStatusActive,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, apperror.Internal(err, "failed to create product")
	}
	return s.GetProduct(product.ID)
}

// GetProduct 查询商品
func (s *productService) GetProduct(id int64) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, apperror.Internal(err, "failed to get product")
	}
	if product == nil {
		return nil, apperror.NotFound("product %d not found", id)
	}
	return product, nil
}

// UpdateProduct 更新商品,零值字段保持不变
func (s *productService) UpdateProduct(id int64, req *domain.UpdateProductRequest) (*domain.Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperror.InvalidArgument("product name must not be empty")
		}
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return nil, apperror.InvalidArgument("product price must be positive")
		}
		product.Price = *req.Price
	}
	if req.CostPrice != nil {
		product.CostPrice = *req.CostPrice
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Supplier != nil {
		product.Supplier = *req.Supplier
	}
	if req.MinStockLevel != nil {
		if *req.MinStockLevel < 0 {
			return nil, apperror.InvalidArgument("min stock level must not be negative")
		}
		product.MinStockLevel = *req.MinStockLevel
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.ProductStatusActive, domain.ProductStatusInactive:
			product.Status = *req.Status
		default:
			return nil, apperror.InvalidArgument("invalid product status: %s", *req.Status)
		}
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, apperror.Internal(err, "failed to update product")
	}
	return s.GetProduct(id)
}

// DeleteProduct 删除商品
func (s *productService) DeleteProduct(id int64) error {
	product, err := s.GetProduct(id)
	if err != nil {
		return err
	}
	if product.CurrentStock > 0 {
		return apperror.InvalidOperation("product %d still has stock on hand", id)
	}
	if err := s.productRepo.Delete(id); err != nil {
		return apperror.Internal(err, "failed to delete product")
	}
	return nil
}

// ListProducts 列出全部商品及库存状态标签
func (s *productService) ListProducts() ([]*domain.ProductWithStockStatus, error) {
	products, err := s.productRepo.List()
	if err != nil {
		return nil, apperror.Internal(err, "failed to list products")
	}
	return withStockStatus(products), nil
}

// ListLowStock 低库存列表
func (s *productService) ListLowStock(threshold int) ([]*domain.ProductWithStockStatus, error) {
	if threshold < 0 {
		return nil, apperror.InvalidArgument("threshold must not be negative")
	}
	products, err := s.productRepo.ListLowStock(threshold)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list low stock products")
	}
	return withStockStatus(products), nil
}

func withStockStatus(products []*domain.Product) []*domain.ProductWithStockStatus {
	result := make([]*domain.ProductWithStockStatus, 0, len(products))
	for _, p := range products {
		result = append(result, &domain.ProductWithStockStatus{
			Product:          p,
			StockStatusLabel: p.StockStatus(),
		})
	}
	return result
}
