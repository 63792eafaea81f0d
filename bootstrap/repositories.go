package bootstrap

import (
	"go_procure_backend/platform/database"
	"go_procure_backend/repository"
)

type Repositories struct {
	InventoryRepository repository.InventoryRepository
	TaskRepository      repository.TaskRepository
}

func NewRepositories(db *database.DB) *Repositories {
	sqlDB := db.GetDatabase()
	return &Repositories{
		InventoryRepository: repository.NewInventoryRepository(sqlDB),
		TaskRepository:      repository.NewTaskRepository(sqlDB),
	}
}
