package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkamenev/storefront/internal/logging"
	"github.com/mkamenev/storefront/internal/models"
	"github.com/mkamenev/storefront/internal/mykafka"
	"github.com/mkamenev/storefront/internal/service"
)

type CartHTTP struct {
	Svc       *service.CartService
	Producer  *mykafka.Producer
	JWTSecret []byte
}

type cartResponse struct {
	Items      []models.CartItem `json:"items"`
	Subtotal   string            `json:"subtotal"`
	TotalItems uint              `json:"total_items"`
	Warning    string            `json:"warning,omitempty"`
}

func (h *CartHTTP) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "cart_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("kafka publish failed", "error", err)
	}
}

func (h *CartHTTP) cart(c echo.Context) (*models.Cart, error) {
	ident, err := Identity(c, h.JWTSecret)
	if err != nil {
		return nil, err
	}
	return h.Svc.GetOrCreate(c.Request().Context(), ident)
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	cart, err := h.cart(c)
	if err != nil {
		if he, ok := asHTTPError(err); ok {
			return he
		}
		l.Error("get_cart_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}

	return h.respondCart(c, cart, "")
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	cart, err := h.cart(c)
	if err != nil {
		if he, ok := asHTTPError(err); ok {
			return he
		}
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == 0 {
		l.Warn("add_to_cart_error", "status", 400, "reason", "product_id required")
		return c.JSON(http.StatusBadRequest, "product_id required")
	}

	line, clamped, err := h.Svc.AddLine(ctx, cart, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("add_to_cart_error", "status", 404, "error", err)
			return c.JSON(http.StatusNotFound, "product not found")
		case errors.Is(err, service.ErrStockInsufficient):
			l.Warn("add_to_cart_error", "status", 409, "error", err)
			return c.JSON(http.StatusConflict, "not enough stock available")
		default:
			l.Error("add_to_cart_error", "status", 500, "error", err)
			return c.JSON(http.StatusInternalServerError, "internal error")
		}
	}

	h.publish(c, fmt.Sprint(cart.ID), map[string]any{
		"type":       "cart_line_added",
		"cart_id":    cart.ID,
		"product_id": line.ProductID,
		"quantity":   line.Quantity,
	})

	warning := ""
	if clamped {
		warning = fmt.Sprintf("only %d items available", line.Product.Stock)
	}
	return h.respondCart(c, cart, warning)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	cart, err := h.cart(c)
	if err != nil {
		if he, ok := asHTTPError(err); ok {
			return he
		}
		l.Error("update_cart_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}

	lineID, err := strconv.Atoi(c.Param("id"))
	if err != nil || lineID <= 0 {
		l.Warn("update_cart_error", "status", 400, "reason", "invalid id")
		return c.JSON(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_cart_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, "invalid body")
	}

	line, clamped, err := h.Svc.AdjustLine(ctx, cart, uint(lineID), service.LineAction(req.Action))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("update_cart_error", "status", 404, "error", err)
			return c.JSON(http.StatusNotFound, "item not found")
		case errors.Is(err, service.ErrValidation):
			l.Warn("update_cart_error", "status", 400, "error", err)
			return c.JSON(http.StatusBadRequest, "unknown action")
		default:
			l.Error("update_cart_error", "status", 500, "error", err)
			return c.JSON(http.StatusInternalServerError, "internal error")
		}
	}

	event := map[string]any{
		"type":    "cart_line_updated",
		"cart_id": cart.ID,
		"line_id": lineID,
	}
	if line != nil {
		event["quantity"] = line.Quantity
	} else {
		event["type"] = "cart_line_removed"
	}
	h.publish(c, fmt.Sprint(cart.ID), event)

	warning := ""
	if clamped {
		warning = "maximum stock reached"
	}
	return h.respondCart(c, cart, warning)
}

func (h *CartHTTP) respondCart(c echo.Context, cart *models.Cart, warning string) error {
	ctx := c.Request().Context()

	lines, err := h.Svc.Lines(ctx, cart)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, "internal error")
	}

	var totalItems uint
	for _, line := range lines {
		totalItems += line.Quantity
	}

	return c.JSON(http.StatusOK, cartResponse{
		Items:      lines,
		Subtotal:   service.LinesSubtotal(lines).StringFixed(2),
		TotalItems: totalItems,
		Warning:    warning,
	})
}
