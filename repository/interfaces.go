package repository

import (
	"context"

	"go_procure_backend/models"
)

// InventoryRepository is the read-only view of the catalog the matching
// pipeline consumes. Catalog writes live elsewhere.
type InventoryRepository interface {
	// SearchBySubstring retrieves candidates where any term appears in
	// product_name, category, category_alias or spec, bounded by limit.
	// With no terms it returns the first limit rows unscoped.
	SearchBySubstring(ctx context.Context, terms []string, limit int) ([]models.AssetInventory, error)
	GetByID(ctx context.Context, id int64) (*models.AssetInventory, error)
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.ProcurementTask) error
	// AppendDetail persists one match result; called immediately after
	// each item resolves, never batched.
	AppendDetail(ctx context.Context, detail *models.ProcurementDetail) error
	SetTaskStatus(ctx context.Context, taskID int64, status string) error
	GetTask(ctx context.Context, taskID int64) (*models.ProcurementTask, error)
	GetDetails(ctx context.Context, taskID int64) ([]models.ProcurementDetail, error)
	ListTasks(ctx context.Context, page, pageSize int) ([]models.ProcurementTask, error)
}
