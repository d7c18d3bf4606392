package repo

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/retailorbit/smart-inventory/internal/cache"
	"github.com/retailorbit/smart-inventory/internal/domain"
)

// StockRepository 定义库存台账的数据访问接口。
// 所有写操作在事务内对台账行与商品行加锁,并在返回结果中携带
// 事务内计算出的最新库存,调用方不得再经由可能过期的缓存回读。
type StockRepository interface {
	// ApplyDelta 在单个事务中调整商品库存并写入台账记录。
	ApplyDelta(productID int64, delta int, entryType domain.StockEntryType, reason string, referenceID *int64) (*domain.StockAdjustmentResult, error)
	// ListByProduct 按商品倒序列出台账记录。
	ListByProduct(productID int64, limit, offset int) ([]domain.StockEntry, error)
	// CountByProduct 统计商品的台账记录数。
	CountByProduct(productID int64) (int64, error)
	// EditEntry 修改一条手工调整记录,同步修正库存并写入审计。
	// 条目不存在返回 ErrEntryNotFound,销售条目返回 ErrEntryProtected。
	EditEntry(entryID int64, newQuantity *int, newReason *string) (*domain.StockAdjustmentResult, error)
	// DeleteEntry 删除一条手工调整记录,回退其库存影响并写入审计。
	DeleteEntry(entryID int64) (*domain.StockAdjustmentResult, error)
	// ListAudit 按台账记录列出审计历史。
	ListAudit(entryID int64) ([]domain.StockAuditRecord, error)
}

// stockRepo 基于 MySQL 的 StockRepository 实现。
// cache 可为 nil;非 nil 时每次库存变动提交后清除商品缓存。
type stockRepo struct {
	db    *sql.DB
	cache cache.Cache
}

// NewStockRepository 创建库存台账仓储实例。
func NewStockRepository(db *sql.DB, c cache.Cache) StockRepository {
	return &stockRepo{db: db, cache: c}
}

const stockEntryColumns = `id, product_id, change_amount, entry_type, reason, reference_id, created_at`

func scanStockEntry(row interface{ Scan(...any) error }) (*domain.StockEntry, error) {
	var e domain.StockEntry
	err := row.Scan(&e.ID, &e.ProductID, &e.ChangeAmount, &e.EntryType, &e.Reason, &e.ReferenceID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// applyStockDeltaTx 在事务内调整库存并插入台账记录。
// 通过 SELECT ... FOR UPDATE 加行锁,保证并发调整串行化;
// 扣减后库存不足时返回 ErrInsufficientStock 并由调用方回滚。
func applyStockDeltaTx(tx *sql.Tx, productID int64, delta int, entryType domain.StockEntryType, reason string, referenceID *int64) (newStock int, entryID int64, err error) {
	var current int
	err = tx.QueryRow(`SELECT current_stock FROM products WHERE id = ? FOR UPDATE`, productID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, ErrProductNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to lock product row: %w", err)
	}

	newStock = current + delta
	if newStock < 0 {
		return 0, 0, ErrInsufficientStock
	}

	if _, err = tx.Exec(`UPDATE products SET current_stock = ? WHERE id = ?`, newStock, productID); err != nil {
		return 0, 0, fmt.Errorf("failed to update product stock: %w", err)
	}

	res, err := tx.Exec(
		`INSERT INTO stock_history (product_id, change_amount, entry_type, reason, reference_id) VALUES (?, ?, ?, ?, ?)`,
		productID, delta, string(entryType), reason, referenceID,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to insert stock entry: %w", err)
	}
	entryID, err = res.LastInsertId()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get stock entry id: %w", err)
	}
	return newStock, entryID, nil
}

func insertStockAuditTx(tx *sql.Tx, rec *domain.StockAuditRecord) error {
	_, err := tx.Exec(
		`INSERT INTO stock_audit (entry_id, product_id, action, old_quantity, new_quantity, old_reason, new_reason) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.EntryID, rec.ProductID, string(rec.Action), rec.OldQuantity, rec.NewQuantity, rec.OldReason, rec.NewReason,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stock audit record: %w", err)
	}
	return nil
}

func (r *stockRepo) ApplyDelta(productID int64, delta int, entryType domain.StockEntryType, reason string, referenceID *int64) (*domain.StockAdjustmentResult, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	newStock, entryID, err := applyStockDeltaTx(tx, productID, delta, entryType, reason, referenceID)
	if err != nil {
		return nil, err
	}

	var name string
	if err := tx.QueryRow(`SELECT name FROM products WHERE id = ?`, productID).Scan(&name); err != nil {
		return nil, fmt.Errorf("failed to query product name: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	InvalidateProductCache(r.cache, productID)
	return &domain.StockAdjustmentResult{
		ProductID:    productID,
		ProductName:  name,
		CurrentStock: newStock,
		EntryID:      entryID,
	}, nil
}

func (r *stockRepo) ListByProduct(productID int64, limit, offset int) ([]domain.StockEntry, error) {
	rows, err := r.db.Query(
		`SELECT `+stockEntryColumns+` FROM stock_history WHERE product_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		productID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.StockEntry
	for rows.Next() {
		e, err := scanStockEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stock entries: %w", err)
	}
	return entries, nil
}

func (r *stockRepo) CountByProduct(productID int64) (int64, error) {
	var n int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM stock_history WHERE product_id = ?`, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count stock entries: %w", err)
	}
	return n, nil
}

// lockEntryTx 在事务内锁定台账行。差值一律基于锁定后的行内值计算,
// 并发修正同一条目时后到的事务等待前一个提交,不会基于过期快照覆盖。
func lockEntryTx(tx *sql.Tx, entryID int64) (*domain.StockEntry, error) {
	row := tx.QueryRow(`SELECT `+stockEntryColumns+` FROM stock_history WHERE id = ? FOR UPDATE`, entryID)
	entry, err := scanStockEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock stock entry: %w", err)
	}
	if !entry.CanEdit() {
		return nil, ErrEntryProtected
	}
	return entry, nil
}

func (r *stockRepo) EditEntry(entryID int64, newQuantity *int, newReason *string) (*domain.StockAdjustmentResult, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	entry, err := lockEntryTx(tx, entryID)
	if err != nil {
		return nil, err
	}

	var current int
	var name string
	if err := tx.QueryRow(`SELECT current_stock, name FROM products WHERE id = ? FOR UPDATE`, entry.ProductID).Scan(&current, &name); err != nil {
		return nil, fmt.Errorf("failed to lock product row: %w", err)
	}

	audit := &domain.StockAuditRecord{
		EntryID:     entry.ID,
		ProductID:   entry.ProductID,
		Action:      domain.StockAuditEdit,
		OldQuantity: entry.ChangeAmount,
		OldReason:   entry.Reason,
	}
	updated := *entry
	newStock := current

	if newQuantity != nil && *newQuantity != entry.ChangeAmount {
		newStock = current + (*newQuantity - entry.ChangeAmount)
		if _, err := tx.Exec(`UPDATE products SET current_stock = ? WHERE id = ?`, newStock, entry.ProductID); err != nil {
			return nil, fmt.Errorf("failed to update product stock: %w", err)
		}
		audit.NewQuantity = newQuantity
		updated.ChangeAmount = *newQuantity
	}
	if newReason != nil && *newReason != entry.Reason {
		audit.NewReason = newReason
		updated.Reason = *newReason
	}

	if _, err := tx.Exec(
		`UPDATE stock_history SET change_amount = ?, reason = ? WHERE id = ?`,
		updated.ChangeAmount, updated.Reason, entry.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to update stock entry: %w", err)
	}
	if err := insertStockAuditTx(tx, audit); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	InvalidateProductCache(r.cache, entry.ProductID)
	return &domain.StockAdjustmentResult{
		ProductID:    entry.ProductID,
		ProductName:  name,
		CurrentStock: newStock,
		EntryID:      entry.ID,
	}, nil
}

func (r *stockRepo) DeleteEntry(entryID int64) (*domain.StockAdjustmentResult, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	entry, err := lockEntryTx(tx, entryID)
	if err != nil {
		return nil, err
	}

	var current int
	var name string
	if err := tx.QueryRow(`SELECT current_stock, name FROM products WHERE id = ? FOR UPDATE`, entry.ProductID).Scan(&current, &name); err != nil {
		return nil, fmt.Errorf("failed to lock product row: %w", err)
	}
	newStock := current - entry.ChangeAmount
	if _, err := tx.Exec(`UPDATE products SET current_stock = ? WHERE id = ?`, newStock, entry.ProductID); err != nil {
		return nil, fmt.Errorf("failed to revert product stock: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM stock_history WHERE id = ?`, entry.ID); err != nil {
		return nil, fmt.Errorf("failed to delete stock entry: %w", err)
	}

	audit := &domain.StockAuditRecord{
		EntryID:     entry.ID,
		ProductID:   entry.ProductID,
		Action:      domain.StockAuditDelete,
		OldQuantity: entry.ChangeAmount,
		OldReason:   entry.Reason,
	}
	if err := insertStockAuditTx(tx, audit); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	InvalidateProductCache(r.cache, entry.ProductID)
	return &domain.StockAdjustmentResult{
		ProductID:    entry.ProductID,
		ProductName:  name,
		CurrentStock: newStock,
	}, nil
}

func (r *stockRepo) ListAudit(entryID int64) ([]domain.StockAuditRecord, error) {
	rows, err := r.db.Query(
		`SELECT id, entry_id, product_id, action, old_quantity, new_quantity, old_reason, new_reason, created_at
		 FROM stock_audit WHERE entry_id = ? ORDER BY created_at ASC, id ASC`,
		entryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock audit records: %w", err)
	}
	defer rows.Close()

	var records []domain.StockAuditRecord
	for rows.Next() {
		var rec domain.StockAuditRecord
		if err := rows.Scan(&rec.ID, &rec.EntryID, &rec.ProductID, &rec.Action, &rec.OldQuantity, &rec.NewQuantity, &rec.OldReason, &rec.NewReason, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock audit record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stock audit records: %w", err)
	}
	return records, nil
}
