package models

import (
	"gorm.io/gorm"
)

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{
		db: db,
	}
}

// ListItems returns every menu item. Callers must not rely on the order;
// it is sorted by id only to keep output stable for humans.
func (r *MenuRepository) ListItems() ([]MenuItem, error) {
	var items []MenuItem
	if err := r.db.Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem inserts a new row. The store assigns id and createdAt.
// A blank Kurdish title falls back to the English one, and a blank
// category falls back to DefaultCategory.
func (r *MenuRepository) CreateItem(item *MenuItem) error {
	if item.TitleKurdish == "" {
		item.TitleKurdish = item.Title
	}
	if item.Category == "" {
		item.Category = DefaultCategory
	}
	return r.db.Create(item).Error
}

// UpdateItem applies a partial update. The map keys are column names;
// fields absent from the map are left untouched. An empty map is a no-op.
func (r *MenuRepository) UpdateItem(id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.Model(&MenuItem{}).Where("id = ?", id).Updates(fields).Error
}

// DeleteItem removes the row with the given id. Matching zero rows is
// not an error.
func (r *MenuRepository) DeleteItem(id int64) error {
	return r.db.Delete(&MenuItem{}, id).Error
}
