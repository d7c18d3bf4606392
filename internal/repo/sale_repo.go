package repo

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/retailorbit/smart-inventory/internal/cache"
	"github.com/retailorbit/smart-inventory/internal/domain"
)

// ErrSaleNotFound 表示销售单不存在。
var ErrSaleNotFound = errors.New("sale not found")

// 台账条目的固定原因文案,随销售流程写入。
const (
	reasonSale         = "sale"
	reasonSaleReversal = "sale update reversal"
	reasonSaleUpdated  = "updated sale"
)

// SaleRepository 定义销售单数据访问接口。
// 创建与更新是跨 sales/sale_items/stock_history/customers 四表的事务配方,
// 任一环节失败则整体回滚。
type SaleRepository interface {
	// CreateSale 在单个事务中落库销售单:客户按邮箱归并、明细写入、
	// 逐品扣减库存并记台账、客户聚合累加。
	CreateSale(req *domain.CreateSaleRequest) (*domain.SaleResult, error)
	// UpdateSale 在单个事务中替换销售单明细:旧明细逐条冲正(+qty 调整条目),
	// 新明细重新扣减,客户消费额按差额修正。
	UpdateSale(sale *domain.Sale, req *domain.CreateSaleRequest) (*domain.SaleResult, error)
	// GetByID 按 ID 查询销售单,不存在时返回 (nil, nil)。
	GetByID(id int64) (*domain.Sale, error)
	// GetDetail 查询销售单及其明细(联表商品名)与关联客户。
	GetDetail(id int64) (*domain.SaleDetail, error)
	// List 按时间倒序列出销售单。
	List(limit, offset int) ([]domain.Sale, error)
	Count() (int64, error)
	// ListItems 查询销售单明细。
	ListItems(saleID int64) ([]*domain.SaleItem, error)
}

// saleRepo 基于 MySQL 的 SaleRepository 实现。
// cache 可为 nil;非 nil 时销售事务提交后清除涉及商品的缓存。
type saleRepo struct {
	db    *sql.DB
	cache cache.Cache
}

// NewSaleRepository 创建销售单仓储实例。
func NewSaleRepository(db *sql.DB, c cache.Cache) SaleRepository {
	return &saleRepo{db: db, cache: c}
}

const saleColumns = `id, customer_id, customer_name, customer_email, customer_phone, total_amount, created_at`

func scanSale(row interface{ Scan(...any) error }) (*domain.Sale, error) {
	var s domain.Sale
	err := row.Scan(&s.ID, &s.CustomerID, &s.CustomerName, &s.CustomerEmail, &s.CustomerPhone, &s.TotalAmount, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// resolveCustomerTx 在事务内按邮箱归并客户:命中则刷新资料,否则新建。
// 无邮箱的散客每次生成独立客户记录。
func resolveCustomerTx(tx *sql.Tx, req *domain.CreateSaleRequest) (int64, error) {
	if req.CustomerEmail != nil && *req.CustomerEmail != "" {
		var id int64
		err := tx.QueryRow(`SELECT id FROM customers WHERE email = ? FOR UPDATE`, *req.CustomerEmail).Scan(&id)
		if err == nil {
			if _, err := tx.Exec(
				`UPDATE customers SET name = ?, phone = ? WHERE id = ?`,
				req.CustomerName, req.CustomerPhone, id,
			); err != nil {
				return 0, fmt.Errorf("failed to refresh customer profile: %w", err)
			}
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("failed to resolve customer by email: %w", err)
		}
	}

	res, err := tx.Exec(
		`INSERT INTO customers (name, email, phone, address) VALUES (?, ?, ?, ?)`,
		req.CustomerName, req.CustomerEmail, req.CustomerPhone, req.CustomerAddress,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create customer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get customer id: %w", err)
	}
	return id, nil
}

// insertSaleItemsTx 写入明细并逐品扣减库存,每个明细产生一条受保护的销售台账。
func insertSaleItemsTx(tx *sql.Tx, saleID int64, items []domain.SaleItemRequest, reason string) error {
	for i := range items {
		it := &items[i]
		if _, err := tx.Exec(
			`INSERT INTO sale_items (sale_id, product_id, quantity, price) VALUES (?, ?, ?, ?)`,
			saleID, it.ProductID, it.Quantity, it.Price,
		); err != nil {
			return fmt.Errorf("failed to insert sale item: %w", err)
		}
		if _, _, err := applyStockDeltaTx(tx, it.ProductID, -it.Quantity, domain.StockEntrySale, reason, &saleID); err != nil {
			return err
		}
	}
	return nil
}

func (r *saleRepo) CreateSale(req *domain.CreateSaleRequest) (*domain.SaleResult, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	customerID, err := resolveCustomerTx(tx, req)
	if err != nil {
		return nil, err
	}

	total := req.TotalAmount()
	now := time.Now()
	res, err := tx.Exec(
		`INSERT INTO sales (customer_id, customer_name, customer_email, customer_phone, total_amount, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		customerID, req.CustomerName, req.CustomerEmail, req.CustomerPhone, total, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sale: %w", err)
	}
	saleID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get sale id: %w", err)
	}

	if err := insertSaleItemsTx(tx, saleID, req.Items, reasonSale); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(
		`UPDATE customers SET total_purchases = total_purchases + 1, total_spent = total_spent + ?, last_purchase_date = ? WHERE id = ?`,
		total, now, customerID,
	); err != nil {
		return nil, fmt.Errorf("failed to update customer aggregates: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	InvalidateProductCache(r.cache, itemProductIDs(req.Items)...)
	return &domain.SaleResult{
		SaleID:      saleID,
		CustomerID:  &customerID,
		TotalAmount: total,
		CreatedAt:   now,
	}, nil
}

// itemProductIDs 提取明细涉及的商品 ID,去重。
func itemProductIDs(items []domain.SaleItemRequest) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for i := range items {
		if _, ok := seen[items[i].ProductID]; ok {
			continue
		}
		seen[items[i].ProductID] = struct{}{}
		ids = append(ids, items[i].ProductID)
	}
	return ids
}

func (r *saleRepo) UpdateSale(sale *domain.Sale, req *domain.CreateSaleRequest) (*domain.SaleResult, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	oldItems, err := listItemsTx(tx, sale.ID)
	if err != nil {
		return nil, err
	}

	// 冲正旧明细:按原数量回补库存,台账追加调整条目而非篡改历史。
	for _, it := range oldItems {
		if _, _, err := applyStockDeltaTx(tx, it.ProductID, it.Quantity, domain.StockEntryAdjustment, reasonSaleReversal, &sale.ID); err != nil {
			return nil, err
		}
	}
	if _, err := tx.Exec(`DELETE FROM sale_items WHERE sale_id = ?`, sale.ID); err != nil {
		return nil, fmt.Errorf("failed to delete old sale items: %w", err)
	}

	if err := insertSaleItemsTx(tx, sale.ID, req.Items, reasonSaleUpdated); err != nil {
		return nil, err
	}

	newTotal := req.TotalAmount()
	if _, err := tx.Exec(
		`UPDATE sales SET customer_name = ?, customer_email = ?, customer_phone = ?, total_amount = ? WHERE id = ?`,
		req.CustomerName, req.CustomerEmail, req.CustomerPhone, newTotal, sale.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to update sale: %w", err)
	}

	// 客户消费额按新旧差额修正,购买次数不变。
	if sale.CustomerID != nil {
		diff := newTotal.Sub(sale.TotalAmount)
		if !diff.Equal(decimal.Zero) {
			if _, err := tx.Exec(
				`UPDATE customers SET total_spent = total_spent + ? WHERE id = ?`,
				diff, *sale.CustomerID,
			); err != nil {
				return nil, fmt.Errorf("failed to reconcile customer spend: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	// 新旧明细涉及的商品都要失效。
	touched := itemProductIDs(req.Items)
	seen := make(map[int64]struct{}, len(touched))
	for _, id := range touched {
		seen[id] = struct{}{}
	}
	for _, it := range oldItems {
		if _, ok := seen[it.ProductID]; !ok {
			seen[it.ProductID] = struct{}{}
			touched = append(touched, it.ProductID)
		}
	}
	InvalidateProductCache(r.cache, touched...)
	return &domain.SaleResult{
		SaleID:      sale.ID,
		CustomerID:  sale.CustomerID,
		TotalAmount: newTotal,
		CreatedAt:   sale.CreatedAt,
	}, nil
}

func (r *saleRepo) GetByID(id int64) (*domain.Sale, error) {
	row := r.db.QueryRow(`SELECT `+saleColumns+` FROM sales WHERE id = ?`, id)
	s, err := scanSale(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sale: %w", err)
	}
	return s, nil
}

func (r *saleRepo) GetDetail(id int64) (*domain.SaleDetail, error) {
	sale, err := r.GetByID(id)
	if err != nil || sale == nil {
		return nil, err
	}
	items, err := r.ListItems(id)
	if err != nil {
		return nil, err
	}
	detail := &domain.SaleDetail{Sale: sale, Items: items}

	if sale.CustomerID != nil {
		row := r.db.QueryRow(`SELECT `+customerColumns+` FROM customers WHERE id = ?`, *sale.CustomerID)
		c, err := scanCustomer(row)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to query sale customer: %w", err)
		}
		detail.Customer = c
	}
	return detail, nil
}

func (r *saleRepo) List(limit, offset int) ([]domain.Sale, error) {
	rows, err := r.db.Query(
		`SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sales: %w", err)
	}
	return sales, nil
}

func (r *saleRepo) Count() (int64, error) {
	var n int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM sales`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sales: %w", err)
	}
	return n, nil
}

func listItemsTx(q interface {
	Query(string, ...any) (*sql.Rows, error)
}, saleID int64) ([]*domain.SaleItem, error) {
	rows, err := q.Query(
		`SELECT si.id, si.sale_id, si.product_id, p.name, si.quantity, si.price, si.created_at
		 FROM sale_items si JOIN products p ON p.id = si.product_id
		 WHERE si.sale_id = ? ORDER BY si.id ASC`,
		saleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale items: %w", err)
	}
	defer rows.Close()

	var items []*domain.SaleItem
	for rows.Next() {
		var it domain.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sale items: %w", err)
	}
	return items, nil
}

func (r *saleRepo) ListItems(saleID int64) ([]*domain.SaleItem, error) {
	return listItemsTx(r.db, saleID)
}
