package repo

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/retailorbit/smart-inventory/internal/domain"
)

// ErrDuplicateEmail 表示客户邮箱已被占用。
var ErrDuplicateEmail = errors.New("customer email already exists")

// CustomerRepository 定义客户数据访问接口。
type CustomerRepository interface {
	Create(customer *domain.Customer) error
	// GetByID 按 ID 查询客户,不存在时返回 (nil, nil)。
	GetByID(id int64) (*domain.Customer, error)
	// GetByEmail 按邮箱查询客户,不存在时返回 (nil, nil)。
	GetByEmail(email string) (*domain.Customer, error)
	Update(customer *domain.Customer) error
	Delete(id int64) error
	List(limit, offset int) ([]domain.Customer, error)
	// Search 按姓名/邮箱/电话模糊匹配。
	Search(query string, limit int) ([]domain.Customer, error)
	Count() (int64, error)
}

// customerRepo 基于 MySQL 的 CustomerRepository 实现。
type customerRepo struct {
	db *sql.DB
}

// NewCustomerRepository 创建客户仓储实例。
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepo{db: db}
}

const customerColumns = `id, name, email, phone, address, total_purchases, total_spent, last_purchase_date, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.TotalPurchases, &c.TotalSpent, &c.LastPurchaseDate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// isDuplicateKey 判断是否为 MySQL 唯一键冲突 (errno 1062)。
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func (r *customerRepo) Create(customer *domain.Customer) error {
	res, err := r.db.Exec(
		`INSERT INTO customers (name, email, phone, address) VALUES (?, ?, ?, ?)`,
		customer.Name, customer.Email, customer.Phone, customer.Address,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get customer id: %w", err)
	}
	customer.ID = id
	return nil
}

func (r *customerRepo) GetByID(id int64) (*domain.Customer, error) {
	row := r.db.QueryRow(`SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}
	return c, nil
}

func (r *customerRepo) GetByEmail(email string) (*domain.Customer, error) {
	row := r.db.QueryRow(`SELECT `+customerColumns+` FROM customers WHERE email = ?`, email)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query customer by email: %w", err)
	}
	return c, nil
}

func (r *customerRepo) Update(customer *domain.Customer) error {
	_, err := r.db.Exec(
		`UPDATE customers SET name = ?, email = ?, phone = ?, address = ? WHERE id = ?`,
		customer.Name, customer.Email, customer.Phone, customer.Address, customer.ID,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}

func (r *customerRepo) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}

func (r *customerRepo) List(limit, offset int) ([]domain.Customer, error) {
	rows, err := r.db.Query(
		`SELECT `+customerColumns+` FROM customers ORDER BY name ASC, id ASC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return customers, nil
}

func (r *customerRepo) Search(query string, limit int) ([]domain.Customer, error) {
	pattern := "%" + query + "%"
	rows, err := r.db.Query(
		`SELECT `+customerColumns+` FROM customers
		 WHERE name LIKE ? OR email LIKE ? OR phone LIKE ?
		 ORDER BY name ASC LIMIT ?`,
		pattern, pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return customers, nil
}

func (r *customerRepo) Count() (int64, error) {
	var n int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM customers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return n, nil
}
