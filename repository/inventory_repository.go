package repository

import (
	"context"
	"errors"

	"go_procure_backend/models"

	"gorm.io/gorm"
)

type inventoryRepository struct {
	DB *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{DB: db}
}

func (r *inventoryRepository) SearchBySubstring(ctx context.Context, terms []string, limit int) ([]models.AssetInventory, error) {
	query := r.DB.WithContext(ctx).Model(&models.AssetInventory{})

	if len(terms) > 0 {
		cond := r.DB.Where("1 = 0")
		for _, term := range terms {
			pattern := "%" + term + "%"
			cond = cond.Or("product_name LIKE ?", pattern).
				Or("category LIKE ?", pattern).
				Or("category_alias LIKE ?", pattern).
				Or("spec LIKE ?", pattern)
		}
		query = query.Where(cond)
	}

	var items []models.AssetInventory
	err := query.Limit(limit).Find(&items).Error
	return items, err
}

func (r *inventoryRepository) GetByID(ctx context.Context, id int64) (*models.AssetInventory, error) {
	var item models.AssetInventory
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}
