package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mkamenev/storefront/internal/models"
	"github.com/mkamenev/storefront/internal/repo"
)

type LineAction string

const (
	ActionIncrease LineAction = "increase"
	ActionDecrease LineAction = "decrease"
	ActionRemove   LineAction = "remove"
)

type CartService struct {
	Repo *repo.GormRepo
}

func (s *CartService) GetOrCreate(ctx context.Context, ident models.CartIdentity) (*models.Cart, error) {
	if !ident.Valid() {
		return nil, fmt.Errorf("%w: no account or session for cart", ErrConfiguration)
	}
	return s.Repo.GetOrCreateCart(ctx, ident)
}

// AddLine adds quantity of a product to the cart, merging into an existing
// line. The resulting quantity is clamped to the product's current stock; the
// returned flag reports the clamp as a non-fatal warning.
func (s *CartService) AddLine(ctx context.Context, cart *models.Cart, productID uint, quantity uint) (*models.CartItem, bool, error) {
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.Repo.ProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, false, err
	}
	if !product.IsActive {
		return nil, false, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	if product.Stock <= 0 {
		return nil, false, fmt.Errorf("%w: product %d out of stock", ErrStockInsufficient, productID)
	}

	line, err := s.Repo.FindLine(ctx, cart.ID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	newQuantity := quantity
	if line != nil {
		newQuantity += line.Quantity
	}

	clamped := false
	if newQuantity > uint(product.Stock) {
		newQuantity = uint(product.Stock)
		clamped = true
	}

	if line != nil {
		line.Quantity = newQuantity
		if err := s.Repo.SetLineQuantity(ctx, line.ID, newQuantity); err != nil {
			return nil, false, err
		}
		return line, clamped, nil
	}

	newLine := &models.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  newQuantity,
		Product:   *product,
	}
	if err := s.Repo.CreateLine(ctx, newLine); err != nil {
		return nil, false, err
	}
	return newLine, clamped, nil
}

// AdjustLine applies increase/decrease/remove to one line. Decreasing a
// quantity of 1 removes the line; increasing past stock is a clamped no-op.
// A nil line in the result means the line was removed.
func (s *CartService) AdjustLine(ctx context.Context, cart *models.Cart, lineID uint, action LineAction) (*models.CartItem, bool, error) {
	line, err := s.Repo.LineByID(ctx, cart.ID, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("%w: cart line %d", ErrNotFound, lineID)
		}
		return nil, false, err
	}

	switch action {
	case ActionIncrease:
		if int(line.Quantity) >= line.Product.Stock {
			return line, true, nil
		}
		line.Quantity++
		if err := s.Repo.SetLineQuantity(ctx, line.ID, line.Quantity); err != nil {
			return nil, false, err
		}
		return line, false, nil

	case ActionDecrease:
		if line.Quantity > 1 {
			line.Quantity--
			if err := s.Repo.SetLineQuantity(ctx, line.ID, line.Quantity); err != nil {
				return nil, false, err
			}
			return line, false, nil
		}
		if err := s.Repo.DeleteLine(ctx, cart.ID, line.ID); err != nil {
			return nil, false, err
		}
		return nil, false, nil

	case ActionRemove:
		if err := s.Repo.DeleteLine(ctx, cart.ID, line.ID); err != nil {
			return nil, false, err
		}
		return nil, false, nil

	default:
		return nil, false, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}
}

func (s *CartService) Lines(ctx context.Context, cart *models.Cart) ([]models.CartItem, error) {
	return s.Repo.CartLines(ctx, cart.ID)
}

func (s *CartService) Subtotal(ctx context.Context, cart *models.Cart) (decimal.Decimal, error) {
	lines, err := s.Repo.CartLines(ctx, cart.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return LinesSubtotal(lines), nil
}

func (s *CartService) TotalItems(ctx context.Context, cart *models.Cart) (uint, error) {
	lines, err := s.Repo.CartLines(ctx, cart.ID)
	if err != nil {
		return 0, err
	}
	var n uint
	for _, line := range lines {
		n += line.Quantity
	}
	return n, nil
}

func (s *CartService) Clear(ctx context.Context, cart *models.Cart) error {
	return s.Repo.ClearCart(ctx, cart.ID)
}
