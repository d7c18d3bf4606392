// Package api 提供售后反馈相关的HTTP API处理器实现。
package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/domain"
	"github.com/retailorbit/smart-inventory/internal/service"
)

// FeedbackHandler 售后反馈相关的HTTP处理器
type FeedbackHandler struct {
	feedbackService service.FeedbackService
	logger          *zap.Logger
}

// NewFeedbackHandler 创建反馈处理器实例
func NewFeedbackHandler(feedbackService service.FeedbackService, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		logger:          logger,
	}
}

// SubmitFeedback 提交整单反馈,重复提交幂等覆盖
// POST /api/v1/feedback
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitFeedbackRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	feedbackID, err := h.feedbackService.SubmitFeedback(&req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, map[string]int64{"feedback_id": feedbackID})
}

// GetSaleFeedback 查询销售单反馈视图
// GET /api/v1/sales/{id}/feedback
func (h *FeedbackHandler) GetSaleFeedback(w http.ResponseWriter, r *http.Request) {
	saleID, ok := requireID(w, r, "sales")
	if !ok {
		return
	}

	view, err := h.feedbackService.GetSaleFeedback(saleID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, view)
}

// GetProductFeedback 查询商品维度反馈汇总
// GET /api/v1/products/{id}/feedback
func (h *FeedbackHandler) GetProductFeedback(w http.ResponseWriter, r *http.Request) {
	productID, ok := requireID(w, r, "products")
	if !ok {
		return
	}

	summary, err := h.feedbackService.GetProductFeedback(productID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, summary)
}
