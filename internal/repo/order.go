package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mkamenev/storefront/internal/models"
)

var (
	// ErrDuplicateOrder reports that an order for the same payment reference
	// already exists (unique index on stripe_payment_intent).
	ErrDuplicateOrder = errors.New("duplicate order")
	// ErrInsufficientStock reports that the conditional stock decrement
	// matched no row, i.e. another checkout got there first.
	ErrInsufficientStock = errors.New("insufficient stock")
)

func (r *GormRepo) OrderByPaymentRef(ctx context.Context, paymentRef string) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Preload("Items").
		Where("stripe_payment_intent = ?", paymentRef).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) OrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Preload("Items").
		Where("order_number = ?", number).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uint, offset, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdatePaymentStatus applies an asynchronous gateway correction. Matching no
// row is not an error: the webhook may outrun materialization.
func (r *GormRepo) UpdatePaymentStatus(ctx context.Context, paymentRef, status string) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("stripe_payment_intent = ?", paymentRef).
		Update("payment_status", status).Error
}

// CreateOrderAtomic materializes an order in a single transaction: the order
// row, its item snapshots, a conditional stock decrement per line and the
// cart wipe either all land or none do.
//
// The decrement is evaluated by the storage layer
// (stock = stock - qty WHERE stock >= qty) so concurrent checkouts cannot
// drive stock negative; a miss aborts the whole transaction with
// ErrInsufficientStock.
func (r *GormRepo) CreateOrderAtomic(ctx context.Context, order *models.Order, items []models.OrderItem, cartID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateOrder
			}
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}

			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", items[i].ProductID, items[i].Quantity).
				Update("stock", gorm.Expr("stock - ?", items[i].Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: product %d", ErrInsufficientStock, items[i].ProductID)
			}
		}
		order.Items = items

		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return nil
	})
}
