package service

import (
	"testing"

	"github.com/retailorbit/smart-inventory/internal/apperror"
	"github.com/retailorbit/smart-inventory/internal/domain"
)

// Test cases for ProductService
func TestProductService_CreateProduct(t *testing.T) {
	productRepo := newMockProductRepository()
	service := NewProductService(productRepo)

	tests := []struct {
		name    string
		req     *domain.CreateProductRequest
		wantErr bool
	}{
		{
			name: "valid product",
			req: &domain.CreateProductRequest{
				Name:          "Arabica Beans 1kg",
				Price:         dec("25.50"),
				CurrentStock:  10,
				MinStockLevel: 3,
			},
			wantErr: false,
		},
		{
			name: "missing name",
			req: &domain.CreateProductRequest{
				Price: dec("10.00"),
			},
			wantErr: true,
		},
		{
			name: "non-positive price",
			req: &domain.CreateProductRequest{
				Name:  "Free Sample",
				Price: dec("0"),
			},
			wantErr: true,
		},
		{
			name: "negative initial stock",
			req: &domain.CreateProductRequest{
				Name:         "Broken Stock",
				Price:        dec("5.00"),
				CurrentStock: -1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, err := service.CreateProduct(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateProduct() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if product == nil {
					t.Errorf("CreateProduct() returned nil product")
					return
				}
				if product.Name != tt.req.Name {
					t.Errorf("CreateProduct() name = %v, want %v", product.Name, tt.req.Name)
				}
				if product.Status != domain.ProductStatusActive {
					t.Errorf("CreateProduct() status = %v, want active", product.Status)
				}
			}
		})
	}
}

func TestProductService_UpdateProduct(t *testing.T) {
	productRepo := newMockProductRepository()
	service := NewProductService(productRepo)

	created, err := service.CreateProduct(&domain.CreateProductRequest{
		Name:         "Original",
		Price:        dec("10.00"),
		CurrentStock: 5,
	})
	if err != nil {
		t.Fatalf("CreateProduct() error = %v", err)
	}

	t.Run("partial update keeps other fields", func(t *testing.T) {
		newName := "Renamed"
		updated, err := service.UpdateProduct(created.ID, &domain.UpdateProductRequest{Name: &newName})
		if err != nil {
			t.Fatalf("UpdateProduct() error = %v", err)
		}
		if updated.Name != "Renamed" {
			t.Errorf("UpdateProduct() name = %v, want Renamed", updated.Name)
		}
		if !updated.Price.Equal(dec("10.00")) {
			t.Errorf("UpdateProduct() price = %v, want unchanged 10.00", updated.Price)
		}
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		bad := domain.ProductStatus("archived")
		_, err := service.UpdateProduct(created.ID, &domain.UpdateProductRequest{Status: &bad})
		if !apperror.IsKind(err, apperror.KindInvalidArgument) {
			t.Errorf("UpdateProduct() error = %v, want invalid argument", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		name := "Ghost"
		_, err := service.UpdateProduct(9999, &domain.UpdateProductRequest{Name: &name})
		if !apperror.IsKind(err, apperror.KindNotFound) {
			t.Errorf("UpdateProduct() error = %v, want not found", err)
		}
	})
}

func TestProductService_DeleteProduct(t *testing.T) {
	productRepo := newMockProductRepository()
	service := NewProductService(productRepo)

	stocked, err := service.CreateProduct(&domain.CreateProductRequest{
		Name:         "Stocked",
		Price:        dec("10.00"),
		CurrentStock: 5,
	})
	if err != nil {
		t.Fatalf("CreateProduct() error = %v", err)
	}
	empty, err := service.CreateProduct(&domain.CreateProductRequest{
		Name:  "Empty",
		Price: dec("10.00"),
	})
	if err != nil {
		t.Fatalf("CreateProduct() error = %v", err)
	}

	t.Run("refuses when stock on hand", func(t *testing.T) {
		err := service.DeleteProduct(stocked.ID)
		if !apperror.IsKind(err, apperror.KindInvalidOperation) {
			t.Errorf("DeleteProduct() error = %v, want invalid operation", err)
		}
	})

	t.Run("deletes zero-stock product", func(t *testing.T) {
		if err := service.DeleteProduct(empty.ID); err != nil {
			t.Errorf("DeleteProduct() error = %v", err)
		}
		if _, err := service.GetProduct(empty.ID); !apperror.IsKind(err, apperror.KindNotFound) {
			t.Errorf("GetProduct() after delete error = %v, want not found", err)
		}
	})
}

func TestProductService_ListLowStock(t *testing.T) {
	productRepo := newMockProductRepository()
	service := NewProductService(productRepo)

	for _, p := range []struct {
		name  string
		stock int
	}{
		{"A", 0},
		{"B", 4},
		{"C", 50},
	} {
		if _, err := service.CreateProduct(&domain.CreateProductRequest{
			Name:         p.name,
			Price:        dec("1.00"),
			CurrentStock: p.stock,
		}); err != nil {
			t.Fatalf("CreateProduct() error = %v", err)
		}
	}

	low, err := service.ListLowStock(10)
	if err != nil {
		t.Fatalf("ListLowStock() error = %v", err)
	}
	if len(low) != 2 {
		t.Errorf("ListLowStock() count = %d, want 2", len(low))
	}
	for _, p := range low {
		if p.StockStatusLabel == "" {
			t.Errorf("ListLowStock() missing stock status label for %s", p.Name)
		}
	}

	if _, err := service.ListLowStock(-1); !apperror.IsKind(err, apperror.KindInvalidArgument) {
		t.Errorf("ListLowStock(-1) error = %v, want invalid argument", err)
	}
}

func TestProduct_StockStatus(t *testing.T) {
	tests := []struct {
		stock int
		want  string
	}{
		{0, "Out of Stock"},
		{-2, "Out of Stock"},
		{5, "One Week Stock"},
		{20, "Two Weeks Stock"},
		{21, "More than Two Weeks Stock"},
	}
	for _, tt := range tests {
		p := &domain.Product{CurrentStock: tt.stock}
		if got := p.StockStatus(); got != tt.want {
			t.Errorf("StockStatus(%d) = %v, want %v", tt.stock, got, tt.want)
		}
	}
}
