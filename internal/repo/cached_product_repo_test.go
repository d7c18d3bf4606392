package repo

import (
	"testing"
	"time"

	"github.com/retailorbit/smart-inventory/internal/cache"
	"github.com/retailorbit/smart-inventory/internal/domain"
)

// stubProductRepo 统计落库次数,用于验证装饰器的缓存命中与失效。
type stubProductRepo struct {
	products map[int64]*domain.Product
	getCalls int
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[int64]*domain.Product)}
}

func (s *stubProductRepo) Create(product *domain.Product) error {
	s.products[product.ID] = product
	return nil
}

func (s *stubProductRepo) GetByID(id int64) (*domain.Product, error) {
	s.getCalls++
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (s *stubProductRepo) Update(product *domain.Product) error {
	s.products[product.ID] = product
	return nil
}

func (s *stubProductRepo) Delete(id int64) error {
	delete(s.products, id)
	return nil
}

func (s *stubProductRepo) List() ([]*domain.Product, error) {
	var result []*domain.Product
	for _, p := range s.products {
		result = append(result, p)
	}
	return result, nil
}

func (s *stubProductRepo) ListLowStock(threshold int) ([]*domain.Product, error) { return nil, nil }
func (s *stubProductRepo) GetByIDs(ids []int64) ([]*domain.Product, error)       { return nil, nil }
func (s *stubProductRepo) Count() (int64, error)                                 { return 0, nil }

func newCachedFixture() (*stubProductRepo, cache.Cache, ProductRepository) {
	base := newStubProductRepo()
	base.products[1] = &domain.Product{ID: 1, Name: "Arabica Beans 500g", CurrentStock: 12}
	c := cache.NewMemoryCache()
	return base, c, NewCachedProductRepository(base, c, time.Minute)
}

func TestCachedProductRepository_GetByID(t *testing.T) {
	base, _, cached := newCachedFixture()

	for i := 0; i < 3; i++ {
		p, err := cached.GetByID(1)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if p == nil || p.Name != "Arabica Beans 500g" {
			t.Fatalf("GetByID() = %+v, want Arabica Beans 500g", p)
		}
	}
	if base.getCalls != 1 {
		t.Errorf("base repo hit %d times, want 1 (cache must serve repeats)", base.getCalls)
	}

	// 未命中的商品不缓存。
	if p, err := cached.GetByID(404); err != nil || p != nil {
		t.Errorf("GetByID(404) = (%v, %v), want (nil, nil)", p, err)
	}
}

func TestCachedProductRepository_UpdateInvalidates(t *testing.T) {
	base, _, cached := newCachedFixture()

	if _, err := cached.GetByID(1); err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	changed := &domain.Product{ID: 1, Name: "Arabica Beans 1kg", CurrentStock: 12}
	if err := cached.Update(changed); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	p, err := cached.GetByID(1)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if p.Name != "Arabica Beans 1kg" {
		t.Errorf("GetByID() after Update = %q, want Arabica Beans 1kg", p.Name)
	}
	if base.getCalls != 2 {
		t.Errorf("base repo hit %d times, want 2 (update must drop the cached copy)", base.getCalls)
	}
}

// 销售/台账事务绕过装饰器直写库存,提交后调用 InvalidateProductCache,
// 后续读取必须回源拿到新库存而不是缓存里的旧值。
func TestInvalidateProductCache(t *testing.T) {
	base, c, cached := newCachedFixture()

	if _, err := cached.GetByID(1); err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if _, err := cached.List(); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	// 模拟台账事务直写库存。
	base.products[1].CurrentStock = 5
	InvalidateProductCache(c, 1)

	p, err := cached.GetByID(1)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if p.CurrentStock != 5 {
		t.Errorf("GetByID() stock = %d, want 5 after invalidation", p.CurrentStock)
	}

	list, err := cached.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].CurrentStock != 5 {
		t.Errorf("List() after invalidation = %+v, want stock 5", list)
	}

	// 空参与nil缓存直接返回。
	InvalidateProductCache(c)
	InvalidateProductCache(nil, 1)
}
