package service

import (
	"testing"

	"github.com/retailorbit/smart-inventory/internal/apperror"
	"github.com/retailorbit/smart-inventory/internal/domain"
)

func TestCustomerService_CreateCustomer(t *testing.T) {
	customerRepo := newMockCustomerRepository()
	service := NewCustomerService(customerRepo)

	t.Run("valid customer", func(t *testing.T) {
		customer, err := service.CreateCustomer(&domain.CreateCustomerRequest{
			Name:  "Budi",
			Email: strPtr("budi@example.com"),
			Phone: "0812",
		})
		if err != nil {
			t.Fatalf("CreateCustomer() error = %v", err)
		}
		if customer.Name != "Budi" {
			t.Errorf("CreateCustomer() name = %v, want Budi", customer.Name)
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := service.CreateCustomer(&domain.CreateCustomerRequest{
			Name:  "Other Budi",
			Email: strPtr("budi@example.com"),
		})
		if !apperror.IsKind(err, apperror.KindConflict) {
			t.Errorf("CreateCustomer() error = %v, want conflict", err)
		}
	})

	t.Run("empty email stored as null", func(t *testing.T) {
		customer, err := service.CreateCustomer(&domain.CreateCustomerRequest{
			Name:  "Walk In",
			Email: strPtr(""),
		})
		if err != nil {
			t.Fatalf("CreateCustomer() error = %v", err)
		}
		if customer.Email != nil {
			t.Errorf("CreateCustomer() email = %v, want nil", *customer.Email)
		}

		// Two customers without email never collide.
		if _, err := service.CreateCustomer(&domain.CreateCustomerRequest{Name: "Walk In 2"}); err != nil {
			t.Errorf("CreateCustomer() second no-email customer error = %v", err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := service.CreateCustomer(&domain.CreateCustomerRequest{})
		if !apperror.IsKind(err, apperror.KindInvalidArgument) {
			t.Errorf("CreateCustomer() error = %v, want invalid argument", err)
		}
	})
}

func TestCustomerService_UpdateCustomer(t *testing.T) {
	customerRepo := newMockCustomerRepository()
	service := NewCustomerService(customerRepo)

	first, err := service.CreateCustomer(&domain.CreateCustomerRequest{Name: "Budi", Email: strPtr("budi@example.com")})
	if err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}
	second, err := service.CreateCustomer(&domain.CreateCustomerRequest{Name: "Citra", Email: strPtr("citra@example.com")})
	if err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}

	t.Run("updates profile", func(t *testing.T) {
		updated, err := service.UpdateCustomer(first.ID, &domain.UpdateCustomerRequest{
			Name:  "Budi Santoso",
			Email: strPtr("budi@example.com"),
			Phone: "0813",
		})
		if err != nil {
			t.Fatalf("UpdateCustomer() error = %v", err)
		}
		if updated.Name != "Budi Santoso" || updated.Phone != "0813" {
			t.Errorf("UpdateCustomer() = %+v, profile not updated", updated)
		}
	})

	t.Run("email collision conflicts", func(t *testing.T) {
		_, err := service.UpdateCustomer(second.ID, &domain.UpdateCustomerRequest{
			Name:  "Citra",
			Email: strPtr("budi@example.com"),
		})
		if !apperror.IsKind(err, apperror.KindConflict) {
			t.Errorf("UpdateCustomer() error = %v, want conflict", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := service.UpdateCustomer(9999, &domain.UpdateCustomerRequest{Name: "Ghost"})
		if !apperror.IsKind(err, apperror.KindNotFound) {
			t.Errorf("UpdateCustomer() error = %v, want not found", err)
		}
	})
}

func TestCustomerService_DeleteCustomer(t *testing.T) {
	customerRepo := newMockCustomerRepository()
	service := NewCustomerService(customerRepo)

	customer, err := service.CreateCustomer(&domain.CreateCustomerRequest{Name: "Budi"})
	if err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}

	if err := service.DeleteCustomer(customer.ID); err != nil {
		t.Fatalf("DeleteCustomer() error = %v", err)
	}
	if _, err := service.GetCustomer(customer.ID); !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("GetCustomer() after delete error = %v, want not found", err)
	}
	if err := service.DeleteCustomer(customer.ID); !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("DeleteCustomer() twice error = %v, want not found", err)
	}
}

func TestCustomerService_SearchCustomers(t *testing.T) {
	customerRepo := newMockCustomerRepository()
	service := NewCustomerService(customerRepo)

	if _, err := service.CreateCustomer(&domain.CreateCustomerRequest{Name: "Budi"}); err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}

	results, err := service.SearchCustomers("Budi")
	if err != nil {
		t.Fatalf("SearchCustomers() error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("SearchCustomers() count = %d, want 1", len(results))
	}

	if _, err := service.SearchCustomers(""); !apperror.IsKind(err, apperror.KindInvalidArgument) {
		t.Errorf("SearchCustomers(\"\") error = %v, want invalid argument", err)
	}
}
