package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkamenev/storefront/internal/logging"
	"github.com/mkamenev/storefront/internal/models"
	"github.com/mkamenev/storefront/internal/payment"
	"github.com/mkamenev/storefront/internal/service"
	"github.com/mkamenev/storefront/internal/session"
)

type CheckoutHTTP struct {
	Cart      *service.CartService
	Orders    *service.OrderService
	Gateway   payment.Gateway
	Session   *session.Store
	JWTSecret []byte
	BaseURL   string
}

// SaveInfo handles the checkout-info step: validate the shipping form and
// park it in session state for the payment step.
func (h *CheckoutHTTP) SaveInfo(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.info")

	var info models.ContactInfo
	if err := c.Bind(&info); err != nil {
		l.Warn("checkout_info_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, "invalid body")
	}

	if err := service.ValidateContact(info); err != nil {
		l.Warn("checkout_info_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, err.Error())
	}

	if err := h.Session.SaveContact(c, info); err != nil {
		l.Error("checkout_info_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}

	l.Info("shipping information saved")
	return c.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

// CreatePayment starts the hosted payment session for the current cart.
// Totals are computed server-side; the gateway gets the cart id, account id
// and contact snapshot as metadata so confirmation can recover context.
func (h *CheckoutHTTP) CreatePayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.payment")

	ident, err := Identity(c, h.JWTSecret)
	if err != nil {
		if he, ok := asHTTPError(err); ok {
			return he
		}
		return c.JSON(http.StatusInternalServerError, "internal error")
	}

	cart, err := h.Cart.GetOrCreate(ctx, ident)
	if err != nil {
		l.Error("checkout_payment_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}

	lines, err := h.Cart.Lines(ctx, cart)
	if err != nil {
		l.Error("checkout_payment_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}
	if len(lines) == 0 {
		l.Warn("checkout_payment_error", "status", 400, "reason", "cart empty")
		return c.JSON(http.StatusBadRequest, "your cart is empty")
	}

	contact, err := h.Session.LoadContact(c)
	if err != nil {
		l.Error("checkout_payment_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}
	if contact == nil || !contact.Complete() {
		l.Warn("checkout_payment_error", "status", 400, "reason", "shipping info missing")
		return c.JSON(http.StatusBadRequest, "please add your shipping address first")
	}

	totals := service.ComputeTotals(service.LinesSubtotal(lines))

	in := payment.CreateSessionInput{
		CartID:        cart.ID,
		AccountID:     ident.AccountID,
		ShippingCost:  totals.ShippingCost,
		Tax:           totals.Tax,
		CustomerEmail: contact.Email,
		Contact:       *contact,
		SuccessURL:    h.BaseURL + "/api/v1/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     h.BaseURL + "/api/v1/checkout/payment",
	}
	for _, line := range lines {
		in.Lines = append(in.Lines, payment.Line{
			Name:      line.Product.Name,
			UnitPrice: line.Product.Price,
			Quantity:  line.Quantity,
		})
	}

	sess, err := h.Gateway.CreateSession(ctx, in)
	if err != nil {
		l.Error("checkout_payment_error", "status", 502, "error", err)
		return c.JSON(http.StatusBadGateway, "payment processing error, please try again")
	}

	l.Info("payment session created", "session_id", sess.ID, "total", totals.Total)
	return c.JSON(http.StatusOK, map[string]string{
		"session_id":   sess.ID,
		"checkout_url": sess.RedirectURL,
	})
}

// Success is the synchronous redirect-confirmation path. It confirms the
// session with the gateway and funnels into the same materialization logic
// the webhook uses.
func (h *CheckoutHTTP) Success(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.success")

	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		l.Warn("checkout_success_error", "status", 303, "reason", "missing session_id")
		return c.Redirect(http.StatusSeeOther, h.BaseURL+"/cart?error=invalid_session")
	}

	conf, err := h.Gateway.ConfirmSession(ctx, sessionID)
	if err != nil {
		l.Error("checkout_success_error", "status", 303, "error", err)
		return c.Redirect(http.StatusSeeOther, h.BaseURL+"/cart?error=payment_verification")
	}
	if !conf.Paid {
		l.Warn("checkout_success_error", "status", 303, "reason", "not paid")
		return c.Redirect(http.StatusSeeOther, h.BaseURL+"/cart?error=payment_incomplete")
	}

	// the browser session is the primary contact source, the gateway
	// metadata the fallback (e.g. cookies lost between steps)
	contact := conf.Contact
	if saved, err := h.Session.LoadContact(c); err == nil && saved != nil {
		contact = *saved
	}

	order, created, err := h.Orders.Materialize(ctx, conf.PaymentRef, conf.CartID, contact)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCheckoutIncomplete):
			l.Warn("checkout_success_error", "status", 303, "error", err)
			return c.Redirect(http.StatusSeeOther, h.BaseURL+"/cart?error=checkout_incomplete")
		case errors.Is(err, service.ErrStockInsufficient):
			l.Error("checkout_success_error", "status", 303, "error", err)
			return c.Redirect(http.StatusSeeOther, h.BaseURL+"/cart?error=out_of_stock")
		default:
			l.Error("checkout_success_error", "status", 500, "error", err)
			return c.JSON(http.StatusInternalServerError, "internal error")
		}
	}

	h.Session.ClearContact(c)

	l.Info("order materialized", "order_number", order.OrderNumber, "created", created)
	return c.Redirect(http.StatusSeeOther,
		h.BaseURL+"/api/v1/checkout/complete?order_number="+order.OrderNumber)
}

func (h *CheckoutHTTP) Complete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.complete")

	number := c.QueryParam("order_number")
	if number == "" {
		return c.JSON(http.StatusBadRequest, "order_number required")
	}

	order, err := h.Orders.ByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("checkout_complete_error", "status", 404, "error", err)
			return c.JSON(http.StatusNotFound, "order not found")
		}
		l.Error("checkout_complete_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, order)
}
