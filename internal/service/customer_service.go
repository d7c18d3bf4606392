package service

import (
	"errors"

	"github.com/retailorbit/smart-inventory/internal/apperror"
	"github.com/retailorbit/smart-inventory/internal/domain"
	"github.com/retailorbit/smart-inventory/internal/repo"
)

// CustomerService 定义客户业务逻辑接口
type CustomerService interface {
	CreateCustomer(req *domain.CreateCustomerRequest) (*domain.Customer, error)
	GetCustomer(id int64) (*domain.Customer, error)
	UpdateCustomer(id int64, req *domain.UpdateCustomerRequest) (*domain.Customer, error)
	DeleteCustomer(id int64) error
	ListCustomers(limit, offset int) ([]domain.Customer, int64, error)
	SearchCustomers(query string) ([]domain.Customer, error)
}

// customerService 实现CustomerService接口
type customerService struct {
	customerRepo repo.CustomerRepository
}

// NewCustomerService 创建客户服务实例
func NewCustomerService(customerRepo repo.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

// normalizeEmail 空字符串按无邮箱处理,避免占用唯一索引。
func normalizeEmail(email *string) *string {
	if email == nil || *email == "" {
		return nil
	}
	return email
}

// CreateCustomer 创建客户
func (s *customerService) CreateCustomer(req *domain.CreateCustomerRequest) (*domain.Customer, error) {
	if req.Name == "" {
		return nil, apperror.InvalidArgument("customer name is required")
	}

	customer := &domain.Customer{
		Name:    req.Name,
		Email:   normalizeEmail(req.Email),
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := s.customerRepo.Create(customer); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, apperror.Conflict("customer email already exists")
		}
		return nil, apperror.Internal(err, "failed to create customer")
	}
	return s.GetCustomer(customer.ID)
}

// GetCustomer 查询客户
func (s *customerService) GetCustomer(id int64) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return nil, apperror.Internal(err, "failed to get customer")
	}
	if customer == nil {
		return nil, apperror.NotFound("customer %d not found", id)
	}
	return customer, nil
}

// UpdateCustomer 更新客户资料
func (s *customerService) UpdateCustomer(id int64, req *domain.UpdateCustomerRequest) (*domain.Customer, error) {
	customer, err := s.GetCustomer(id)
	if err != nil {
		return nil, err
	}

	customer.Name = req.Name
	customer.Email = normalizeEmail(req.Email)
	customer.Phone = req.Phone
	customer.Address = req.Address

	if err := s.customerRepo.Update(customer); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, apperror.Conflict("customer email already exists")
		}
		return nil, apperror.Internal(err, "failed to update customer")
	}
	return s.GetCustomer(id)
}

// DeleteCustomer 删除客户
func (s *customerService) DeleteCustomer(id int64) error {
	if _, err := s.GetCustomer(id); err != nil {
		return err
	}
	if err := s.customerRepo.Delete(id); err != nil {
		return apperror.Internal(err, "failed to delete customer")
	}
	return nil
}

// ListCustomers 列出客户
func (s *customerService) ListCustomers(limit, offset int) ([]domain.Customer, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	customers, err := s.customerRepo.List(limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err, "failed to list customers")
	}
	total, err := s.customerRepo.Count()
	if err != nil {
		return nil, 0, apperror.Internal(err, "failed to count customers")
	}
	return customers, total, nil
}

// SearchCustomers 搜索客户
func (s *customerService) SearchCustomers(query string) ([]domain.Customer, error) {
	if query == "" {
		return nil, apperror.InvalidArgument("search query is required")
	}
	customers, err := s.customerRepo.Search(query, 50)
	if err != nil {
		return nil, apperror.Internal(err, "failed to search customers")
	}
	return customers, nil
}
