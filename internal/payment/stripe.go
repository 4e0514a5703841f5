package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/mkamenev/storefront/internal/models"
)

// StripeGateway implements Gateway on top of Stripe Checkout. Decimal
// amounts are converted to integer minor units (cents) only here, at the
// adapter boundary.
type StripeGateway struct {
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreateSession(ctx context.Context, in CreateSessionInput) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(in.Lines)+2)
	for _, line := range in.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(toCents(line.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			},
			Quantity: stripe.Int64(int64(line.Quantity)),
		})
	}
	lineItems = append(lineItems,
		&stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(toCents(in.ShippingCost)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Shipping"),
				},
			},
			Quantity: stripe.Int64(1),
		},
		&stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(toCents(in.Tax)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Tax"),
				},
			},
			Quantity: stripe.Int64(1),
		},
	)

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:     lineItems,
		SuccessURL:    stripe.String(in.SuccessURL),
		CancelURL:     stripe.String(in.CancelURL),
		CustomerEmail: stripe.String(in.CustomerEmail),
	}
	params.Context = ctx

	params.AddMetadata("cart_id", strconv.FormatUint(uint64(in.CartID), 10))
	if in.AccountID != nil {
		params.AddMetadata("user_id", strconv.FormatUint(uint64(*in.AccountID), 10))
	}
	for k, v := range contactMetadata(in.Contact) {
		params.AddMetadata(k, v)
	}

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create session: %v", ErrGateway, err)
	}
	return &Session{ID: s.ID, RedirectURL: s.URL}, nil
}

func (g *StripeGateway) ConfirmSession(ctx context.Context, sessionID string) (*Confirmation, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve session: %v", ErrGateway, err)
	}

	conf := &Confirmation{
		Paid:    s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Contact: contactFromMetadata(s.Metadata),
	}
	if s.PaymentIntent != nil {
		conf.PaymentRef = s.PaymentIntent.ID
	}
	conf.CartID = cartIDFromMetadata(s.Metadata)
	return conf, nil
}

// VerifyWebhook checks the Stripe-Signature header before any parsing and
// maps raw gateway events onto the three kinds the order flow cares about.
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		if errors.Is(err, webhook.ErrNotSigned) ||
			errors.Is(err, webhook.ErrNoValidSignature) ||
			errors.Is(err, webhook.ErrInvalidHeader) ||
			errors.Is(err, webhook.ErrTooOld) {
			return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	switch string(event.Type) {
	case "checkout.session.completed":
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		out := &Event{
			Kind:    EventCheckoutCompleted,
			CartID:  cartIDFromMetadata(s.Metadata),
			Contact: contactFromMetadata(s.Metadata),
		}
		if s.PaymentIntent != nil {
			out.PaymentRef = s.PaymentIntent.ID
		}
		return out, nil

	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		kind := EventPaymentSucceeded
		if string(event.Type) == "payment_intent.payment_failed" {
			kind = EventPaymentFailed
		}
		return &Event{Kind: kind, PaymentRef: pi.ID}, nil

	default:
		return &Event{Kind: EventIgnored}, nil
	}
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func contactMetadata(ci models.ContactInfo) map[string]string {
	return map[string]string{
		"full_name":   ci.FullName,
		"email":       ci.Email,
		"phone":       ci.Phone,
		"address":     ci.Address,
		"city":        ci.City,
		"state":       ci.State,
		"postal_code": ci.PostalCode,
		"country":     ci.Country,
	}
}

func contactFromMetadata(md map[string]string) models.ContactInfo {
	return models.ContactInfo{
		FullName:   md["full_name"],
		Email:      md["email"],
		Phone:      md["phone"],
		Address:    md["address"],
		City:       md["city"],
		State:      md["state"],
		PostalCode: md["postal_code"],
		Country:    md["country"],
	}
}

func cartIDFromMetadata(md map[string]string) uint {
	id, err := strconv.ParseUint(md["cart_id"], 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
