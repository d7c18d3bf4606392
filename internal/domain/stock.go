// Package domain 定义库存台账相关的业务领域模型和核心业务规则。
package domain

import (
	"time"
)

// StockEntryType 区分台账条目来源。
// 销售产生的条目受保护，不允许人工修改或删除；只有人工调整条目可被修正。
// 用显式类型而非change_amount的符号做判断，避免未来引入负数的非销售条目时误伤。
type StockEntryType string

const (
	StockEntrySale       StockEntryType = "sale"
	StockEntryAdjustment StockEntryType = "adjustment"
)

// StockEntry 表示一条库存变动台账记录。
// 商品的current_stock恒等于其全部台账条目change_amount之和。
type StockEntry struct {
	ID           int64          `json:"id"`
	ProductID    int64          `json:"product_id"`
	ChangeAmount int            `json:"change_amount"` // 正数入库，负数出库
	EntryType    StockEntryType `json:"entry_type"`
	Reason       string         `json:"reason"`
	ReferenceID  *int64         `json:"reference_id"` // 关联销售单ID，人工调整为空
	CreatedAt    time.Time      `json:"created_at"`
}

// CanEdit 判断条目是否允许人工编辑或删除。
func (e *StockEntry) CanEdit() bool {
	return e.EntryType == StockEntryAdjustment
}

// StockAuditAction 台账修正动作类型
type StockAuditAction string

const (
	StockAuditEdit   StockAuditAction = "edit"
	StockAuditDelete StockAuditAction = "delete"
)

// StockAuditRecord 记录一次对台账条目的修正，保证修正本身可追溯。
type StockAuditRecord struct {
	ID          int64            `json:"id"`
	EntryID     int64            `json:"entry_id"`
	ProductID   int64            `json:"product_id"`
	Action      StockAuditAction `json:"action"`
	OldQuantity int              `json:"old_quantity"`
	NewQuantity *int             `json:"new_quantity"` // 删除时为空
	OldReason   string           `json:"old_reason"`
	NewReason   *string          `json:"new_reason"`
	CreatedAt   time.Time        `json:"created_at"`
}

// AddStockRequest 表示补货请求
type AddStockRequest struct {
	ProductID   int64  `json:"product_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
	Reason      string `json:"reason"`
	ReferenceID *int64 `json:"reference_id"`
}

// EditStockEntryRequest 表示编辑台账条目请求
type EditStockEntryRequest struct {
	Quantity int     `json:"quantity" binding:"required,gt=0"`
	Reason   *string `json:"reason"`
}

// StockEntryView 面向接口的台账条目视图，附带可编辑标记。
type StockEntryView struct {
	*StockEntry
	Direction string `json:"type"` // "Stock In" / "Stock Out"
	Editable  bool   `json:"can_edit"`
}

// NewStockEntryView 构建台账条目视图。
func NewStockEntryView(e *StockEntry) *StockEntryView {
	direction := "Stock In"
	if e.ChangeAmount < 0 {
		direction = "Stock Out"
	}
	return &StockEntryView{StockEntry: e, Direction: direction, Editable: e.CanEdit()}
}

// StockAdjustmentResult 台账写操作的结果：最新库存与受影响的条目。
type StockAdjustmentResult struct {
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	CurrentStock int    `json:"current_stock"`
	EntryID      int64  `json:"entry_id,omitempty"`
}
