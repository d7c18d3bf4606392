// Package api 提供商品相关的HTTP API处理器实现。
package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/domain"
	"github.com/retailorbit/smart-inventory/internal/service"
)

// ProductHandler 商品相关的HTTP处理器
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler 创建商品处理器实例
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// CreateProduct 创建商品
// POST /api/v1/admin/products
// 需要管理员权限
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProductRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	product, err := h.productService.CreateProduct(&req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, product)
}

// GetProduct 获取商品详情
// GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "products")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, product)
}

// UpdateProduct 更新商品
// PUT /api/v1/admin/products/{id}
// 需要管理员权限
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "products")
	if !ok {
		return
	}

	var req domain.UpdateProductRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(id, &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, product)
}

// DeleteProduct 删除商品,仍有库存时返回422
// DELETE /api/v1/admin/products/{id}
// 需要管理员权限
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "products")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, map[string]int64{"deleted_id": id})
}

// ListProducts 获取商品列表及库存状态标签
// GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListProducts()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, products)
}

// ListLowStock 低库存商品列表
// GET /api/v1/products/low-stock?threshold=10
func (h *ProductHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	threshold := queryInt(r, "threshold", 10)

	products, err := h.productService.ListLowStock(threshold)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, products)
}
