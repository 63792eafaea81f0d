package repository

import (
	"context"

	"go_procure_backend/models"

	"gorm.io/gorm"
)

type taskRepository struct {
	DB *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{DB: db}
}

func (r *taskRepository) CreateTask(ctx context.Context, task *models.ProcurementTask) error {
	return r.DB.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) AppendDetail(ctx context.Context, detail *models.ProcurementDetail) error {
	return r.DB.WithContext(ctx).Create(detail).Error
}

func (r *taskRepository) SetTaskStatus(ctx context.Context, taskID int64, status string) error {
	return r.DB.WithContext(ctx).Model(&models.ProcurementTask{}).
		Where("id = ?", taskID).Update("status", status).Error
}

func (r *taskRepository) GetTask(ctx context.Context, taskID int64) (*models.ProcurementTask, error) {
	var task models.ProcurementTask
	err := r.DB.WithContext(ctx).Where("id = ?", taskID).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) GetDetails(ctx context.Context, taskID int64) ([]models.ProcurementDetail, error) {
	var details []models.ProcurementDetail
	err := r.DB.WithContext(ctx).Where("task_id = ?", taskID).
		Order("id asc").Find(&details).Error
	return details, err
}

func (r *taskRepository) ListTasks(ctx context.Context, page, pageSize int) ([]models.ProcurementTask, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	var tasks []models.ProcurementTask
	err := r.DB.WithContext(ctx).Order("id desc").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&tasks).Error
	return tasks, err
}
