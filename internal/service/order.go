package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkamenev/storefront/internal/logging"
	"github.com/mkamenev/storefront/internal/models"
	"github.com/mkamenev/storefront/internal/mykafka"
	"github.com/mkamenev/storefront/internal/repo"
)

type OrderService struct {
	Repo     *repo.GormRepo
	Email    EmailService
	Producer *mykafka.Producer
}

// Materialize converts a paid cart into a durable order, exactly once per
// payment reference. Both confirmation paths (redirect callback and webhook)
// call this and converge on identical logic.
//
// The returned flag is false when the order already existed: the duplicate
// confirmation is a silent success, with no recompute, no second stock
// decrement and no second email.
func (s *OrderService) Materialize(ctx context.Context, paymentRef string, cartID uint, contact models.ContactInfo) (*models.Order, bool, error) {
	if paymentRef == "" {
		return nil, false, fmt.Errorf("%w: empty payment reference", ErrValidation)
	}

	if existing, err := s.Repo.OrderByPaymentRef(ctx, paymentRef); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	// hard preconditions: fail fast, consume nothing
	if !contact.Complete() {
		return nil, false, fmt.Errorf("%w: shipping information missing", ErrCheckoutIncomplete)
	}
	lines, err := s.Repo.CartLines(ctx, cartID)
	if err != nil {
		return nil, false, err
	}
	if len(lines) == 0 {
		return nil, false, fmt.Errorf("%w: cart is empty", ErrCheckoutIncomplete)
	}

	// totals come from the cart's current contents, never from the client
	totals := ComputeTotals(LinesSubtotal(lines))

	order := &models.Order{
		OrderNumber:         NewOrderNumber(),
		UserID:              nil,
		FullName:            contact.FullName,
		Email:               contact.Email,
		Phone:               contact.Phone,
		Address:             contact.Address,
		City:                contact.City,
		State:               contact.State,
		PostalCode:          contact.PostalCode,
		Country:             contact.Country,
		Subtotal:            totals.Subtotal,
		ShippingCost:        totals.ShippingCost,
		Tax:                 totals.Tax,
		Total:               totals.Total,
		PaymentStatus:       models.PaymentStatusCompleted,
		Status:              models.OrderStatusProcessing,
		StripePaymentIntent: paymentRef,
	}
	if owner, err := s.cartOwner(ctx, cartID); err == nil {
		order.UserID = owner
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID:    line.ProductID,
			ProductName:  line.Product.Name,
			ProductPrice: line.Product.Price,
			Quantity:     line.Quantity,
		})
	}

	if err := s.Repo.CreateOrderAtomic(ctx, order, items, cartID); err != nil {
		if errors.Is(err, repo.ErrDuplicateOrder) {
			// lost the insert race against the other confirmation path
			existing, lookupErr := s.Repo.OrderByPaymentRef(ctx, paymentRef)
			if lookupErr != nil {
				return nil, false, lookupErr
			}
			return existing, false, nil
		}
		if errors.Is(err, repo.ErrInsufficientStock) {
			return nil, false, fmt.Errorf("%w: %v", ErrStockInsufficient, err)
		}
		return nil, false, err
	}

	s.notify(ctx, order)
	return order, true, nil
}

// notify emits the confirmation email and the order event. Best-effort: a
// failure here is logged and never rolls back the materialization.
func (s *OrderService) notify(ctx context.Context, order *models.Order) {
	l := logging.FromContext(ctx).With("order_number", order.OrderNumber)

	if s.Email != nil {
		subject := "Order Confirmation - " + order.OrderNumber
		if err := s.Email.Send(order.Email, subject, confirmationBody(order)); err != nil {
			l.Warn("confirmation email failed", "error", err)
		}
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	event := map[string]any{
		"type":         "order_created",
		"order_number": order.OrderNumber,
		"payment_ref":  order.StripePaymentIntent,
		"total":        order.Total,
	}
	if err := s.Producer.PublishEvent(pubCtx, "order_events", order.OrderNumber, event); err != nil {
		l.Warn("order event publish failed", "error", err)
	}
}

func (s *OrderService) cartOwner(ctx context.Context, cartID uint) (*uint, error) {
	var cart models.Cart
	if err := s.Repo.DB.WithContext(ctx).First(&cart, cartID).Error; err != nil {
		return nil, err
	}
	return cart.UserID, nil
}

// MarkPaymentStatus applies an asynchronous payment-status correction from
// the gateway to an already materialized order.
func (s *OrderService) MarkPaymentStatus(ctx context.Context, paymentRef, status string) error {
	switch status {
	case models.PaymentStatusCompleted, models.PaymentStatusFailed, models.PaymentStatusPending:
	default:
		return fmt.Errorf("%w: payment status %q", ErrValidation, status)
	}
	return s.Repo.UpdatePaymentStatus(ctx, paymentRef, status)
}

func (s *OrderService) ByNumber(ctx context.Context, number string) (*models.Order, error) {
	order, err := s.Repo.OrderByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, number)
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID uint, offset, limit int) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx, userID, offset, limit)
}

// NewOrderNumber generates the external-facing order identifier. Uniqueness
// is still enforced by the order_number index.
func NewOrderNumber() string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ORD-" + token[:12]
}
