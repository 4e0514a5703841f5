package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkamenev/storefront/internal/logging"
	"github.com/mkamenev/storefront/internal/service"
	"github.com/mkamenev/storefront/internal/util"
)

type OrderHTTP struct {
	Svc       *service.OrderService
	JWTSecret []byte
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	accountID, err := AccountID(c, h.JWTSecret)
	if err != nil {
		if he, ok := asHTTPError(err); ok {
			return he
		}
		return c.JSON(http.StatusUnauthorized, "unauthorized")
	}
	if accountID == nil {
		return c.JSON(http.StatusUnauthorized, "unauthorized")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	orders, err := h.Svc.ListForUser(ctx, *accountID, offset, limit)
	if err != nil {
		l.Error("list_orders_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	accountID, err := AccountID(c, h.JWTSecret)
	if err != nil {
		if he, ok := asHTTPError(err); ok {
			return he
		}
		return c.JSON(http.StatusUnauthorized, "unauthorized")
	}
	if accountID == nil {
		return c.JSON(http.StatusUnauthorized, "unauthorized")
	}

	order, err := h.Svc.ByNumber(ctx, c.Param("number"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, "order not found")
		}
		l.Error("get_order_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}
	if order.UserID == nil || *order.UserID != *accountID {
		return c.JSON(http.StatusNotFound, "order not found")
	}

	return c.JSON(http.StatusOK, order)
}
