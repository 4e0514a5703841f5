package service

import "errors"

var (
	ErrValidation         = errors.New("validation")          // 400
	ErrNotFound           = errors.New("not found")           // 404
	ErrCheckoutIncomplete = errors.New("checkout incomplete") // 400, no side effects
	ErrStockInsufficient  = errors.New("insufficient stock")  // 409
	ErrConfiguration      = errors.New("configuration")       // 500, no identity for the cart
)
