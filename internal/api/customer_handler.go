// Package api 提供客户相关的HTTP API处理器实现。
package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/domain"
	"github.com/retailorbit/smart-inventory/internal/service"
)

// CustomerHandler 客户相关的HTTP处理器
type CustomerHandler struct {
	customerService service.CustomerService
	logger          *zap.Logger
}

// NewCustomerHandler 创建客户处理器实例
func NewCustomerHandler(customerService service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// CreateCustomer 创建客户,邮箱重复时返回409
// POST /api/v1/admin/customers
// 需要管理员权限
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCustomerRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	customer, err := h.customerService.CreateCustomer(&req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, customer)
}

// GetCustomer 查询客户
// GET /api/v1/admin/customers/{id}
// 需要管理员权限
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "customers")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, customer)
}

// UpdateCustomer 更新客户资料
// PUT /api/v1/admin/customers/{id}
// 需要管理员权限
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "customers")
	if !ok {
		return
	}

	var req domain.UpdateCustomerRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	customer, err := h.customerService.UpdateCustomer(id, &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, customer)
}

// DeleteCustomer 删除客户
// DELETE /api/v1/admin/customers/{id}
// 需要管理员权限
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "customers")
	if !ok {
		return
	}

	if err := h.customerService.DeleteCustomer(id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, map[string]int64{"deleted_id": id})
}

// ListCustomers 客户列表
// GET /api/v1/admin/customers?limit=50&offset=0
// 需要管理员权限
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	customers, total, err := h.customerService.ListCustomers(limit, offset)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, map[string]any{
		"customers": customers,
		"total":     total,
	})
}

// SearchCustomers 按姓名/邮箱/电话搜索客户
// GET /api/v1/admin/customers/search?q=alice
// 需要管理员权限
func (h *CustomerHandler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	customers, err := h.customerService.SearchCustomers(query)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, customers)
}
