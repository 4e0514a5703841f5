package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkamenev/storefront/internal/models"
)

// GetOrCreateCart returns the single cart owned by the identity, creating it
// lazily on first use. A concurrent create racing on the unique index falls
// back to refetching the winner's row.
func (r *GormRepo) GetOrCreateCart(ctx context.Context, ident models.CartIdentity) (*models.Cart, error) {
	q := r.cartQuery(ctx, ident)

	var cart models.Cart
	err := q.First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{UserID: ident.AccountID, SessionToken: ident.SessionToken}
	if err := r.DB.WithContext(ctx).Create(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := r.cartQuery(ctx, ident).First(&cart).Error; err != nil {
				return nil, err
			}
			return &cart, nil
		}
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) cartQuery(ctx context.Context, ident models.CartIdentity) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&models.Cart{})
	if ident.AccountID != nil {
		return q.Where("user_id = ?", *ident.AccountID)
	}
	return q.Where("session_token = ?", *ident.SessionToken)
}

func (r *GormRepo) CartLines(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).Preload("Product").
		Where("cart_id = ?", cartID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) FindLine(ctx context.Context, cartID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Preload("Product").
		Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) LineByID(ctx context.Context, cartID, lineID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Preload("Product").
		Where("id = ? AND cart_id = ?", lineID, cartID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) SaveLine(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

func (r *GormRepo) CreateLine(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *GormRepo) SetLineQuantity(ctx context.Context, lineID uint, quantity uint) error {
	return r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", lineID).Update("quantity", quantity).Error
}

func (r *GormRepo) DeleteLine(ctx context.Context, cartID, lineID uint) error {
	return r.DB.WithContext(ctx).
		Where("id = ? AND cart_id = ?", lineID, cartID).
		Delete(&models.CartItem{}).Error
}

func (r *GormRepo) ClearCart(ctx context.Context, cartID uint) error {
	return r.DB.WithContext(ctx).
		Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
