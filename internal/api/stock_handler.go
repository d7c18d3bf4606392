// Package api 提供库存台账相关的HTTP API处理器实现。
package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/domain"
	"github.com/retailorbit/smart-inventory/internal/service"
)

// StockHandler 库存台账相关的HTTP处理器
type StockHandler struct {
	ledgerService service.LedgerService
	logger        *zap.Logger
}

// NewStockHandler 创建台账处理器实例
func NewStockHandler(ledgerService service.LedgerService, logger *zap.Logger) *StockHandler {
	return &StockHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// AddStock 补货
// POST /api/v1/admin/products/{id}/stock
// 需要管理员权限
func (h *StockHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := requireID(w, r, "products")
	if !ok {
		return
	}

	var req domain.AddStockRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}
	req.ProductID = productID

	result, err := h.ledgerService.AddStock(&req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, result)
}

// StockHistory 商品台账查询
// GET /api/v1/products/{id}/stock-history?limit=50&offset=0
func (h *StockHandler) StockHistory(w http.ResponseWriter, r *http.Request) {
	productID, ok := requireID(w, r, "products")
	if !ok {
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	entries, err := h.ledgerService.ListStockHistory(productID, limit, offset)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, entries)
}

// EditStockEntry 修正台账条目,销售条目受保护
// PUT /api/v1/admin/stock-history/{id}
// 需要管理员权限
func (h *StockHandler) EditStockEntry(w http.ResponseWriter, r *http.Request) {
	entryID, ok := requireID(w, r, "stock-history")
	if !ok {
		return
	}

	var req domain.EditStockEntryRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	result, err := h.ledgerService.EditStockEntry(entryID, &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, result)
}

// DeleteStockEntry 删除台账条目并回退其库存影响
// DELETE /api/v1/admin/stock-history/{id}
// 需要管理员权限
func (h *StockHandler) DeleteStockEntry(w http.ResponseWriter, r *http.Request) {
	entryID, ok := requireID(w, r, "stock-history")
	if !ok {
		return
	}

	result, err := h.ledgerService.DeleteStockEntry(entryID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, result)
}

// StockAudit 台账条目的修正历史
// GET /api/v1/admin/stock-history/{id}/audit
// 需要管理员权限
func (h *StockHandler) StockAudit(w http.ResponseWriter, r *http.Request) {
	entryID, ok := requireID(w, r, "stock-history")
	if !ok {
		return
	}

	records, err := h.ledgerService.ListStockAudit(entryID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, records)
}
