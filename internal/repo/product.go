package repo

import (
	"context"

	"github.com/mkamenev/storefront/internal/models"
)

func (r *GormRepo) ProductByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) ActiveProducts(ctx context.Context, offset, limit int) ([]models.Product, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Product
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
