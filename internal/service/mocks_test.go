package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/retailorbit/smart-inventory/internal/domain"
	"github.com/retailorbit/smart-inventory/internal/mq"
	"github.com/retailorbit/smart-inventory/internal/repo"
)

// Mock ProductRepository for testing
type mockProductRepository struct {
	products map[int64]*domain.Product
	nextID   int64
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[int64]*domain.Product),
		nextID:   1,
	}
}

func (m *mockProductRepository) Create(product *domain.Product) error {
	product.ID = m.nextID
	m.nextID++
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) GetByID(id int64) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, nil
	}
	return product, nil
}

func (m *mockProductRepository) Update(product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return errors.New("product not found")
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(id int64) error {
	if _, exists := m.products[id]; !exists {
		return errors.New("product not found")
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) List() ([]*domain.Product, error) {
	var result []*domain.Product
	for _, product := range m.products {
		result = append(result, product)
	}
	return result, nil
}

func (m *mockProductRepository) ListLowStock(threshold int) ([]*domain.Product, error) {
	var result []*domain.Product
	for _, product := range m.products {
		if product.CurrentStock <= threshold {
			result = append(result, product)
		}
	}
	return result, nil
}

func (m *mockProductRepository) GetByIDs(ids []int64) ([]*domain.Product, error) {
	var result []*domain.Product
	for _, id := range ids {
		if product, exists := m.products[id]; exists {
			result = append(result, product)
		}
	}
	return result, nil
}

func (m *mockProductRepository) Count() (int64, error) {
	return int64(len(m.products)), nil
}

// Mock StockRepository for testing.
// 与商品mock共享同一份商品数据，保证库存变动在两侧一致可见。
type mockStockRepository struct {
	products *mockProductRepository
	entries  map[int64]*domain.StockEntry
	audits   map[int64][]domain.StockAuditRecord
	nextID   int64
}

func newMockStockRepository(products *mockProductRepository) *mockStockRepository {
	return &mockStockRepository{
		products: products,
		entries:  make(map[int64]*domain.StockEntry),
		audits:   make(map[int64][]domain.StockAuditRecord),
		nextID:   1,
	}
}

func (m *mockStockRepository) ApplyDelta(productID int64, delta int, entryType domain.StockEntryType, reason string, referenceID *int64) (*domain.StockAdjustmentResult, error) {
	product, exists := m.products.products[productID]
	if !exists {
		return nil, repo.ErrProductNotFound
	}
	newStock := product.CurrentStock + delta
	if newStock < 0 {
		return nil, repo.ErrInsufficientStock
	}
	product.CurrentStock = newStock

	entry := &domain.StockEntry{
		ID:           m.nextID,
		ProductID:    productID,
		ChangeAmount: delta,
		EntryType:    entryType,
		Reason:       reason,
		ReferenceID:  referenceID,
		CreatedAt:    time.Now(),
	}
	m.nextID++
	m.entries[entry.ID] = entry

	return &domain.StockAdjustmentResult{
		ProductID:    productID,
		ProductName:  product.Name,
		CurrentStock: newStock,
		EntryID:      entry.ID,
	}, nil
}

func (m *mockStockRepository) ListByProduct(productID int64, limit, offset int) ([]domain.StockEntry, error) {
	var result []domain.StockEntry
	for _, entry := range m.entries {
		if entry.ProductID == productID {
			result = append(result, *entry)
		}
	}
	return result, nil
}

func (m *mockStockRepository) CountByProduct(productID int64) (int64, error) {
	var n int64
	for _, entry := range m.entries {
		if entry.ProductID == productID {
			n++
		}
	}
	return n, nil
}

func (m *mockStockRepository) EditEntry(entryID int64, newQuantity *int, newReason *string) (*domain.StockAdjustmentResult, error) {
	stored, exists := m.entries[entryID]
	if !exists {
		return nil, repo.ErrEntryNotFound
	}
	if !stored.CanEdit() {
		return nil, repo.ErrEntryProtected
	}
	product, ok := m.products.products[stored.ProductID]
	if !ok {
		return nil, repo.ErrProductNotFound
	}

	audit := domain.StockAuditRecord{
		EntryID:     stored.ID,
		ProductID:   stored.ProductID,
		Action:      domain.StockAuditEdit,
		OldQuantity: stored.ChangeAmount,
		OldReason:   stored.Reason,
		CreatedAt:   time.Now(),
	}

	if newQuantity != nil && *newQuantity != stored.ChangeAmount {
		product.CurrentStock += *newQuantity - stored.ChangeAmount
		audit.NewQuantity = newQuantity
		stored.ChangeAmount = *newQuantity
	}
	if newReason != nil && *newReason != stored.Reason {
		audit.NewReason = newReason
		stored.Reason = *newReason
	}

	m.audits[stored.ID] = append(m.audits[stored.ID], audit)
	return &domain.StockAdjustmentResult{
		ProductID:    stored.ProductID,
		ProductName:  product.Name,
		CurrentStock: product.CurrentStock,
		EntryID:      stored.ID,
	}, nil
}

func (m *mockStockRepository) DeleteEntry(entryID int64) (*domain.StockAdjustmentResult, error) {
	stored, exists := m.entries[entryID]
	if !exists {
		return nil, repo.ErrEntryNotFound
	}
	if !stored.CanEdit() {
		return nil, repo.ErrEntryProtected
	}
	product, ok := m.products.products[stored.ProductID]
	if !ok {
		return nil, repo.ErrProductNotFound
	}

	product.CurrentStock -= stored.ChangeAmount
	delete(m.entries, entryID)

	m.audits[stored.ID] = append(m.audits[stored.ID], domain.StockAuditRecord{
		EntryID:     stored.ID,
		ProductID:   stored.ProductID,
		Action:      domain.StockAuditDelete,
		OldQuantity: stored.ChangeAmount,
		OldReason:   stored.Reason,
		CreatedAt:   time.Now(),
	})
	return &domain.StockAdjustmentResult{
		ProductID:    stored.ProductID,
		ProductName:  product.Name,
		CurrentStock: product.CurrentStock,
	}, nil
}

func (m *mockStockRepository) ListAudit(entryID int64) ([]domain.StockAuditRecord, error) {
	return m.audits[entryID], nil
}

// Mock CustomerRepository for testing
type mockCustomerRepository struct {
	customers map[int64]*domain.Customer
	nextID    int64
}

func newMockCustomerRepository() *mockCustomerRepository {
	return &mockCustomerRepository{
		customers: make(map[int64]*domain.Customer),
		nextID:    1,
	}
}

func (m *mockCustomerRepository) emailTaken(email *string, selfID int64) bool {
	if email == nil {
		return false
	}
	for _, c := range m.customers {
		if c.ID != selfID && c.Email != nil && *c.Email == *email {
			return true
		}
	}
	return false
}

func (m *mockCustomerRepository) Create(customer *domain.Customer) error {
	if m.emailTaken(customer.Email, 0) {
		return repo.ErrDuplicateEmail
	}
	customer.ID = m.nextID
	m.nextID++
	m.customers[customer.ID] = customer
	return nil
}

func (m *mockCustomerRepository) GetByID(id int64) (*domain.Customer, error) {
	customer, exists := m.customers[id]
	if !exists {
		return nil, nil
	}
	return customer, nil
}

func (m *mockCustomerRepository) GetByEmail(email string) (*domain.Customer, error) {
	for _, c := range m.customers {
		if c.Email != nil && *c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCustomerRepository) Update(customer *domain.Customer) error {
	if _, exists := m.customers[customer.ID]; !exists {
		return errors.New("customer not found")
	}
	if m.emailTaken(customer.Email, customer.ID) {
		return repo.ErrDuplicateEmail
	}
	m.customers[customer.ID] = customer
	return nil
}

func (m *mockCustomerRepository) Delete(id int64) error {
	if _, exists := m.customers[id]; !exists {
		return errors.New("customer not found")
	}
	delete(m.customers, id)
	return nil
}

func (m *mockCustomerRepository) List(limit, offset int) ([]domain.Customer, error) {
	var result []domain.Customer
	for _, c := range m.customers {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCustomerRepository) Search(query string, limit int) ([]domain.Customer, error) {
	var result []domain.Customer
	for _, c := range m.customers {
		if c.Name == query {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCustomerRepository) Count() (int64, error) {
	return int64(len(m.customers)), nil
}

// Mock SaleRepository for testing.
// 模拟真实仓储的事务语义：任一明细库存不足时整单失败且不留任何副作用。
type mockSaleRepository struct {
	products *mockProductRepository
	stock    *mockStockRepository
	sales    map[int64]*domain.Sale
	items    map[int64][]*domain.SaleItem
	nextID   int64

	createErr error
}

func newMockSaleRepository(products *mockProductRepository, stock *mockStockRepository) *mockSaleRepository {
	return &mockSaleRepository{
		products: products,
		stock:    stock,
		sales:    make(map[int64]*domain.Sale),
		items:    make(map[int64][]*domain.SaleItem),
		nextID:   1,
	}
}

func (m *mockSaleRepository) checkStock(req *domain.CreateSaleRequest) error {
	need := make(map[int64]int)
	for _, it := range req.Items {
		need[it.ProductID] += it.Quantity
	}
	for productID, qty := range need {
		product, exists := m.products.products[productID]
		if !exists {
			return repo.ErrProductNotFound
		}
		if product.CurrentStock < qty {
			return repo.ErrInsufficientStock
		}
	}
	return nil
}

func (m *mockSaleRepository) applyItems(saleID int64, req *domain.CreateSaleRequest, reason string) {
	for _, it := range req.Items {
		refID := saleID
		m.stock.ApplyDelta(it.ProductID, -it.Quantity, domain.StockEntrySale, reason, &refID)
		m.items[saleID] = append(m.items[saleID], &domain.SaleItem{
			ID:        m.nextID,
			SaleID:    saleID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			CreatedAt: time.Now(),
		})
		m.nextID++
	}
}

func (m *mockSaleRepository) CreateSale(req *domain.CreateSaleRequest) (*domain.SaleResult, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if err := m.checkStock(req); err != nil {
		return nil, err
	}

	sale := &domain.Sale{
		ID:            m.nextID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		TotalAmount:   req.TotalAmount(),
		CreatedAt:     time.Now(),
	}
	m.nextID++
	m.sales[sale.ID] = sale
	m.applyItems(sale.ID, req, "sale")

	return &domain.SaleResult{
		SaleID:      sale.ID,
		TotalAmount: sale.TotalAmount,
		CreatedAt:   sale.CreatedAt,
	}, nil
}

func (m *mockSaleRepository) UpdateSale(sale *domain.Sale, req *domain.CreateSaleRequest) (*domain.SaleResult, error) {
	// 旧明细冲正
	for _, it := range m.items[sale.ID] {
		refID := sale.ID
		m.stock.ApplyDelta(it.ProductID, it.Quantity, domain.StockEntryAdjustment, "sale update reversal", &refID)
	}
	m.items[sale.ID] = nil

	if err := m.checkStock(req); err != nil {
		return nil, err
	}
	m.applyItems(sale.ID, req, "updated sale")

	sale.CustomerName = req.CustomerName
	sale.CustomerEmail = req.CustomerEmail
	sale.CustomerPhone = req.CustomerPhone
	sale.TotalAmount = req.TotalAmount()

	return &domain.SaleResult{
		SaleID:      sale.ID,
		CustomerID:  sale.CustomerID,
		TotalAmount: sale.TotalAmount,
		CreatedAt:   sale.CreatedAt,
	}, nil
}

func (m *mockSaleRepository) GetByID(id int64) (*domain.Sale, error) {
	sale, exists := m.sales[id]
	if !exists {
		return nil, nil
	}
	return sale, nil
}

func (m *mockSaleRepository) GetDetail(id int64) (*domain.SaleDetail, error) {
	sale, exists := m.sales[id]
	if !exists {
		return nil, nil
	}
	return &domain.SaleDetail{Sale: sale, Items: m.items[id]}, nil
}

func (m *mockSaleRepository) List(limit, offset int) ([]domain.Sale, error) {
	var result []domain.Sale
	for _, sale := range m.sales {
		result = append(result, *sale)
	}
	return result, nil
}

func (m *mockSaleRepository) Count() (int64, error) {
	return int64(len(m.sales)), nil
}

func (m *mockSaleRepository) ListItems(saleID int64) ([]*domain.SaleItem, error) {
	return m.items[saleID], nil
}

// Mock FeedbackRepository for testing
type mockFeedbackRepository struct {
	sales          *mockSaleRepository
	feedback       map[int64]*domain.Feedback         // keyed by sale_id
	itemFeedback   map[int64]*domain.SaleItemFeedback // keyed by sale_item_id
	productRatings map[int64][]*domain.ProductRating  // keyed by product_id
	nextID         int64
}

func newMockFeedbackRepository(sales *mockSaleRepository) *mockFeedbackRepository {
	return &mockFeedbackRepository{
		sales:          sales,
		feedback:       make(map[int64]*domain.Feedback),
		itemFeedback:   make(map[int64]*domain.SaleItemFeedback),
		productRatings: make(map[int64][]*domain.ProductRating),
		nextID:         1,
	}
}

func (m *mockFeedbackRepository) Upsert(req *domain.SubmitFeedbackRequest) (int64, error) {
	fb, exists := m.feedback[req.SaleID]
	if !exists {
		fb = &domain.Feedback{ID: m.nextID, SaleID: req.SaleID, CreatedAt: time.Now()}
		m.nextID++
		m.feedback[req.SaleID] = fb
	}
	fb.OverallRating = req.OverallRating
	fb.Comment = req.OverallComment

	saleItems := make(map[int64]*domain.SaleItem)
	for _, it := range m.sales.items[req.SaleID] {
		saleItems[it.ID] = it
	}

	for _, item := range req.ItemFeedback {
		saleItem, ok := saleItems[item.SaleItemID]
		if !ok {
			continue // 不属于该销售单的明细直接跳过
		}

		sif, ok := m.itemFeedback[item.SaleItemID]
		if !ok {
			sif = &domain.SaleItemFeedback{ID: m.nextID, SaleItemID: item.SaleItemID, CreatedAt: time.Now()}
			m.nextID++
			m.itemFeedback[item.SaleItemID] = sif
		}
		sif.Rating = item.Rating
		sif.Comment = item.Comment

		m.upsertProductRating(fb, saleItem.ProductID, item.Rating, item.Comment)
	}
	return fb.ID, nil
}

func (m *mockFeedbackRepository) upsertProductRating(fb *domain.Feedback, productID int64, rating int, comment string) {
	for _, pr := range m.productRatings[productID] {
		if pr.FeedbackID == fb.ID {
			pr.Rating = rating
			pr.Comment = comment
			return
		}
	}
	m.productRatings[productID] = append(m.productRatings[productID], &domain.ProductRating{
		ID:         m.nextID,
		FeedbackID: fb.ID,
		ProductID:  productID,
		Rating:     rating,
		Comment:    comment,
		SaleID:     fb.SaleID,
		CreatedAt:  time.Now(),
	})
	m.nextID++
}

func (m *mockFeedbackRepository) GetBySaleID(saleID int64) (*domain.Feedback, error) {
	fb, exists := m.feedback[saleID]
	if !exists {
		return nil, nil
	}
	return fb, nil
}

func (m *mockFeedbackRepository) ListItemFeedback(saleID int64) (map[int64]*domain.SaleItemFeedback, error) {
	result := make(map[int64]*domain.SaleItemFeedback)
	for _, it := range m.sales.items[saleID] {
		if sif, ok := m.itemFeedback[it.ID]; ok {
			result[it.ID] = sif
		}
	}
	return result, nil
}

func (m *mockFeedbackRepository) ListProductRatings(productID int64) ([]*domain.ProductRating, error) {
	return m.productRatings[productID], nil
}

func (m *mockFeedbackRepository) ListProductItemFeedback(productID int64) ([]*domain.SaleItemFeedback, error) {
	var result []*domain.SaleItemFeedback
	for saleID := range m.sales.items {
		for _, it := range m.sales.items[saleID] {
			if it.ProductID != productID {
				continue
			}
			if sif, ok := m.itemFeedback[it.ID]; ok {
				result = append(result, sif)
			}
		}
	}
	return result, nil
}

func (m *mockFeedbackRepository) ProductRatingStats(productID int64) (*float64, int, error) {
	ratings := m.productRatings[productID]
	if len(ratings) == 0 {
		return nil, 0, nil
	}
	sum := 0
	for _, pr := range ratings {
		sum += pr.Rating
	}
	avg := float64(sum) / float64(len(ratings))
	return &avg, len(ratings), nil
}

// Mock EmailLogRepository for testing
type mockEmailLogRepository struct {
	logs   []*domain.EmailLog
	nextID int64
}

func newMockEmailLogRepository() *mockEmailLogRepository {
	return &mockEmailLogRepository{nextID: 1}
}

func (m *mockEmailLogRepository) Create(log *domain.EmailLog) error {
	log.ID = m.nextID
	m.nextID++
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockEmailLogRepository) ListBySale(saleID int64) ([]domain.EmailLog, error) {
	var result []domain.EmailLog
	for _, log := range m.logs {
		if log.SaleID != nil && *log.SaleID == saleID {
			result = append(result, *log)
		}
	}
	return result, nil
}

// Mock SalePublisher for testing
type mockSalePublisher struct {
	events []*mq.SaleCompletedEvent
	err    error
}

func (m *mockSalePublisher) PublishSaleCompleted(ctx context.Context, event *mq.SaleCompletedEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

// Mock Mailer for testing
type mockMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *mockMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}
