package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkamenev/storefront/internal/logging"
	"github.com/mkamenev/storefront/internal/models"
	"github.com/mkamenev/storefront/internal/payment"
	"github.com/mkamenev/storefront/internal/service"
)

type WebhookHTTP struct {
	Gateway payment.Gateway
	Orders  *service.OrderService
}

// HandleStripe is the asynchronous confirmation path. The signature is
// verified against the raw body before anything is parsed; a rejected
// payload changes no state.
func (h *WebhookHTTP) HandleStripe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "webhook.stripe")

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		l.Warn("webhook_error", "status", 400, "error", err)
		return c.NoContent(http.StatusBadRequest)
	}

	event, err := h.Gateway.VerifyWebhook(body, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		l.Warn("webhook_rejected", "status", 400, "error", err)
		return c.NoContent(http.StatusBadRequest)
	}

	switch event.Kind {
	case payment.EventCheckoutCompleted:
		order, created, err := h.Orders.Materialize(ctx, event.PaymentRef, event.CartID, event.Contact)
		if err != nil {
			if errors.Is(err, service.ErrCheckoutIncomplete) {
				// nothing to materialize from this event; the redirect
				// path owns the session-side state
				l.Warn("webhook_checkout_incomplete", "payment_ref", event.PaymentRef, "error", err)
				return c.NoContent(http.StatusOK)
			}
			l.Error("webhook_materialize_error", "payment_ref", event.PaymentRef, "error", err)
			return c.NoContent(http.StatusInternalServerError)
		}
		l.Info("webhook processed", "order_number", order.OrderNumber, "created", created)

	case payment.EventPaymentSucceeded:
		if err := h.Orders.MarkPaymentStatus(ctx, event.PaymentRef, models.PaymentStatusCompleted); err != nil {
			l.Error("webhook_status_error", "payment_ref", event.PaymentRef, "error", err)
			return c.NoContent(http.StatusInternalServerError)
		}

	case payment.EventPaymentFailed:
		if err := h.Orders.MarkPaymentStatus(ctx, event.PaymentRef, models.PaymentStatusFailed); err != nil {
			l.Error("webhook_status_error", "payment_ref", event.PaymentRef, "error", err)
			return c.NoContent(http.StatusInternalServerError)
		}

	default:
		l.Info("webhook ignored", "kind", event.Kind)
	}

	return c.NoContent(http.StatusOK)
}
