// Package api 提供报表相关的HTTP API处理器实现。
package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/service"
)

// ReportHandler 报表相关的HTTP处理器
type ReportHandler struct {
	reportService service.ReportService
	logger        *zap.Logger
}

// NewReportHandler 创建报表处理器实例
func NewReportHandler(reportService service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// Dashboard 后台首页汇总
// GET /api/v1/reports/dashboard
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reportService.DashboardSummary()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, summary)
}

// MonthlyRevenue 指定年份逐月销售额
// GET /api/v1/reports/monthly-revenue?year=2026
func (h *ReportHandler) MonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year", time.Now().Year())

	revenue, err := h.reportService.MonthlyRevenue(year)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, revenue)
}

// InventoryOverview 全部商品及库存状态标签
// GET /api/v1/reports/inventory
func (h *ReportHandler) InventoryOverview(w http.ResponseWriter, r *http.Request) {
	products, err := h.reportService.InventoryOverview()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, products)
}
