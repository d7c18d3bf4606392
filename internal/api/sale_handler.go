// Package api 提供销售单相关的HTTP API处理器实现。
package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/domain"
	"github.com/retailorbit/smart-inventory/internal/service"
)

// SaleHandler 销售单相关的HTTP处理器
type SaleHandler struct {
	saleService     service.SaleService
	notifierService service.NotifierService
	logger          *zap.Logger
}

// NewSaleHandler 创建销售处理器实例
func NewSaleHandler(saleService service.SaleService, notifierService service.NotifierService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		saleService:     saleService,
		notifierService: notifierService,
		logger:          logger,
	}
}

// CreateSale 创建销售单
// POST /api/v1/sales
func (h *SaleHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSaleRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	result, err := h.saleService.CreateSale(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, result)
}

// UpdateSale 更新销售单明细
// PUT /api/v1/admin/sales/{id}
// 需要管理员权限
func (h *SaleHandler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	saleID, ok := requireID(w, r, "sales")
	if !ok {
		return
	}

	var req domain.CreateSaleRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	result, err := h.saleService.UpdateSale(r.Context(), saleID, &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, result)
}

// GetSale 查询销售单详情
// GET /api/v1/sales/{id}
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	saleID, ok := requireID(w, r, "sales")
	if !ok {
		return
	}

	detail, err := h.saleService.GetSale(saleID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, detail)
}

// ListSales 销售单列表
// GET /api/v1/admin/sales?limit=50&offset=0
// 需要管理员权限
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	sales, total, err := h.saleService.ListSales(limit, offset)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, map[string]any{
		"sales": sales,
		"total": total,
	})
}

// TriggerFeedbackEmail 手工补发反馈邮件
// POST /api/v1/admin/sales/{id}/feedback-email
// 需要管理员权限
func (h *SaleHandler) TriggerFeedbackEmail(w http.ResponseWriter, r *http.Request) {
	saleID, ok := requireID(w, r, "sales")
	if !ok {
		return
	}

	if err := h.notifierService.TriggerFeedbackEmail(r.Context(), saleID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, map[string]int64{"sale_id": saleID})
}
