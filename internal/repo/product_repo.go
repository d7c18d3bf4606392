// Package repo 实现商品数据访问层，负责与数据库的交互。
package repo

import (
	"database/sql"
	"fmt"

	"github.com/retailorbit/smart-inventory/internal/domain"
)

// ProductRepository 定义商品数据访问接口
type ProductRepository interface {
	Create(product *domain.Product) error
	GetByID(id int64) (*domain.Product, error)
	Update(product *domain.Product) error
	Delete(id int64) error

	List() ([]*domain.Product, error)
	ListLowStock(threshold int) ([]*domain.Product, error)
	GetByIDs(ids []int64) ([]*domain.Product, error)
	Count() (int64, error)
}

// productRepo 实现ProductRepository接口
type productRepo struct {
	db *sql.DB
}

// NewProductRepository 创建商品仓储实例
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = "id, name, description, price, cost_price, category, supplier, current_stock, min_stock_level, status, created_at, updated_at"

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	p := &domain.Product{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.CostPrice,
		&p.Category,
		&p.Supplier,
		&p.CurrentStock,
		&p.MinStockLevel,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// Create 创建商品
func (r *productRepo) Create(product *domain.Product) error {
	query := `
		INSERT INTO products (name, description, price, cost_price, category, supplier, current_stock, min_stock_level, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		product.Name,
		product.Description,
		product.Price,
		product.CostPrice,
		product.Category,
		product.Supplier,
		product.CurrentStock,
		product.MinStockLevel,
		product.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	product.ID = id
	return nil
}

// GetByID 根据ID获取商品
func (r *productRepo) GetByID(id int64) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = ?`, productColumns)

	product, err := scanProduct(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}

	return product, nil
}

// Update 更新商品
func (r *productRepo) Update(product *domain.Product) error {
	query := `
		UPDATE products
		SET name = ?, description = ?, price = ?, cost_price = ?, category = ?, supplier = ?, min_stock_level = ?, status = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		product.Name,
		product.Description,
		product.Price,
		product.CostPrice,
		product.Category,
		product.Supplier,
		product.MinStockLevel,
		product.Status,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete 删除商品
func (r *productRepo) Delete(id int64) error {
	query := `DELETE FROM products WHERE id = ?`

	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// List 获取全部商品
func (r *productRepo) List() ([]*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY name`, productColumns)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// ListLowStock 获取库存不高于阈值的在售商品，库存越少越靠前。
func (r *productRepo) ListLowStock(threshold int) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE current_stock > 0 AND current_stock <= ? AND status = 'active'
		ORDER BY current_stock
	`, productColumns)

	rows, err := r.db.Query(query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// GetByIDs 根据ID列表批量获取商品
func (r *productRepo) GetByIDs(ids []int64) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM products WHERE id IN (%s) ORDER BY id`,
		productColumns, placeholders(len(ids)))

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products by ids: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Count 获取商品总数
func (r *productRepo) Count() (int64, error) {
	var count int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func collectProducts(rows *sql.Rows) ([]*domain.Product, error) {
	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}
