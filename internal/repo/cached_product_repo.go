// Package repo 提供带缓存的商品仓储实现
package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/retailorbit/smart-inventory/internal/cache"
	"github.com/retailorbit/smart-inventory/internal/domain"
)

// CachedProductRepository 带缓存的商品仓储。
// 库存数值由销售/台账事务直接更新,不经过本装饰器;
// 这些事务提交后通过 InvalidateProductCache 清除相关键。
type CachedProductRepository struct {
	repo  ProductRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedProductRepository 创建带缓存的商品仓储
func NewCachedProductRepository(repo ProductRepository, cache cache.Cache, ttl time.Duration) ProductRepository {
	return &CachedProductRepository{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

func productCacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (r *CachedProductRepository) productKey(id int64) string {
	return productCacheKey(id)
}

const productListKey = "products:list"

// InvalidateProductCache 清除指定商品及列表的缓存键。
// 销售/台账事务绕过装饰器直写库存,提交后须调用本函数,
// 否则已预热的缓存会在TTL内一直返回旧库存。
func InvalidateProductCache(c cache.Cache, productIDs ...int64) {
	if c == nil || len(productIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(productIDs)+1)
	for _, id := range productIDs {
		keys = append(keys, productCacheKey(id))
	}
	keys = append(keys, productListKey)
	c.Del(context.Background(), keys...)
}

// Create 创建商品（清除列表缓存）
func (r *CachedProductRepository) Create(product *domain.Product) error {
	if err := r.repo.Create(product); err != nil {
		return err
	}
	r.cache.Del(context.Background(), productListKey)
	return nil
}

// GetByID 根据ID获取商品（带缓存）
func (r *CachedProductRepository) GetByID(id int64) (*domain.Product, error) {
	ctx := context.Background()
	key := r.productKey(id)

	var product domain.Product
	if err := r.cache.Get(ctx, key, &product); err == nil {
		return &product, nil
	}

	result, err := r.repo.GetByID(id)
	if err != nil || result == nil {
		return result, err
	}
	r.cache.Set(ctx, key, result, r.ttl)
	return result, nil
}

// Update 更新商品（清除相关缓存）
func (r *CachedProductRepository) Update(product *domain.Product) error {
	if err := r.repo.Update(product); err != nil {
		return err
	}
	r.cache.Del(context.Background(), r.productKey(product.ID), productListKey)
	return nil
}

// Delete 删除商品（清除相关缓存）
func (r *CachedProductRepository) Delete(id int64) error {
	if err := r.repo.Delete(id); err != nil {
		return err
	}
	r.cache.Del(context.Background(), r.productKey(id), productListKey)
	return nil
}

// List 获取全部商品（带缓存）
func (r *CachedProductRepository) List() ([]*domain.Product, error) {
	ctx := context.Background()

	var products []*domain.Product
	if err := r.cache.Get(ctx, productListKey, &products); err == nil {
		return products, nil
	}

	result, err := r.repo.List()
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, productListKey, result, r.ttl)
	return result, nil
}

// ListLowStock 低库存查询直接落库,保证告警数据实时。
func (r *CachedProductRepository) ListLowStock(threshold int) ([]*domain.Product, error) {
	return r.repo.ListLowStock(threshold)
}

// GetByIDs 批量查询直接落库
func (r *CachedProductRepository) GetByIDs(ids []int64) ([]*domain.Product, error) {
	return r.repo.GetByIDs(ids)
}

// Count 获取商品总数
func (r *CachedProductRepository) Count() (int64, error) {
	return r.repo.Count()
}
