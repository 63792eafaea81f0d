package models

import (
	"time"

	"gorm.io/gorm"
)

// AssetInventory is one catalog entry. The matching pipeline only ever
// reads these rows; their lifecycle is managed elsewhere.
type AssetInventory struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProductName   string     `gorm:"column:product_name;type:varchar(200);not null" json:"product_name"`
	Category      string     `gorm:"column:category;type:varchar(100)" json:"category,omitempty"`
	CategoryAlias string     `gorm:"column:category_alias;type:varchar(200)" json:"category_alias,omitempty"`
	Spec          string     `gorm:"column:spec;type:varchar(500)" json:"spec,omitempty"`
	Quantity      *float64   `gorm:"column:quantity;type:decimal(10,2)" json:"quantity,omitempty"`
	Unit          string     `gorm:"column:unit;type:varchar(20)" json:"unit,omitempty"`
	SalePrice     *float64   `gorm:"column:sale_price;type:decimal(12,2)" json:"sale_price,omitempty"`
	SaleTotal     *float64   `gorm:"column:sale_total;type:decimal(12,2)" json:"sale_total,omitempty"`
	ContractRemark string    `gorm:"column:contract_remark;type:text" json:"contract_remark,omitempty"`
	PurchasePrice *float64   `gorm:"column:purchase_price;type:decimal(12,2)" json:"purchase_price,omitempty"`
	PurchaseRemark string    `gorm:"column:purchase_remark;type:text" json:"purchase_remark,omitempty"`
	Supplier      string     `gorm:"column:supplier;type:varchar(100)" json:"supplier,omitempty"`
	CreateTime    time.Time  `gorm:"column:create_time;type:timestamp;default:now()" json:"create_time"`
	UpdateTime    *time.Time `gorm:"column:update_time;type:timestamp" json:"update_time,omitempty"`
}

func (AssetInventory) TableName() string {
	return "asset_inventory"
}

// Task status constants
const (
	TaskStatusPending    = "pending"
	TaskStatusProcessing = "processing"
	TaskStatusCompleted  = "completed"
	TaskStatusFailed     = "failed"
)

// ProcurementTask groups the requirement items of one submitted batch.
type ProcurementTask struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TaskName     string    `gorm:"column:task_name;type:varchar(200)" json:"task_name"`
	InputType    string    `gorm:"column:input_type;type:varchar(20)" json:"input_type"` // text/excel
	InputContent string    `gorm:"column:input_content;type:text" json:"input_content,omitempty"`
	FilePath     string    `gorm:"column:file_path;type:varchar(500)" json:"file_path,omitempty"`
	Status       string    `gorm:"column:status;type:varchar(20);default:'pending';index:idx_task_status" json:"status"`
	CreateTime   time.Time `gorm:"column:create_time;type:timestamp;default:now()" json:"create_time"`
}

func (ProcurementTask) TableName() string {
	return "procurement_task"
}

func (t *ProcurementTask) BeforeCreate(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	if t.CreateTime.IsZero() {
		t.CreateTime = time.Now()
	}
	return nil
}

func (t *ProcurementTask) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// ProcurementDetail is the persisted MatchResult of one requirement item.
// Rows are append-only: written once, immediately after the item is
// matched, and never updated.
type ProcurementDetail struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TaskID          int64     `gorm:"column:task_id;not null;index:idx_detail_task" json:"task_id"`
	OriginalContent string    `gorm:"column:original_content;type:text" json:"original_content,omitempty"`
	ParsedName      string    `gorm:"column:parsed_name;type:varchar(200)" json:"parsed_name"`
	ParsedSpec      string    `gorm:"column:parsed_spec;type:varchar(500)" json:"parsed_spec,omitempty"`
	ParsedQuantity  *float64  `gorm:"column:parsed_quantity;type:decimal(10,2)" json:"parsed_quantity,omitempty"`
	MatchedAssetID  *int64    `gorm:"column:matched_asset_id" json:"matched_asset_id,omitempty"`
	ConfidenceScore float64   `gorm:"column:confidence_score;type:decimal(5,4)" json:"confidence_score"`
	MatchReason     string    `gorm:"column:match_reason;type:text" json:"match_reason,omitempty"`
	Status          string    `gorm:"column:status;type:varchar(20);default:'completed'" json:"status"`
	CreateTime      time.Time `gorm:"column:create_time;type:timestamp;default:now()" json:"create_time"`
}

func (ProcurementDetail) TableName() string {
	return "procurement_detail"
}
