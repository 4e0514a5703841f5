package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mkamenev/storefront/internal/models"
)

var (
	ErrGateway          = errors.New("payment gateway")   // adapter call failed, retryable
	ErrSignatureInvalid = errors.New("invalid signature") // webhook rejected
	ErrMalformedPayload = errors.New("malformed payload") // webhook rejected
)

type Line struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  uint
}

// CreateSessionInput carries everything the hosted payment page needs. CartID,
// AccountID and the contact snapshot travel as opaque metadata so either
// confirmation path can recover checkout context without trusting the client.
type CreateSessionInput struct {
	CartID        uint
	AccountID     *uint
	Lines         []Line
	ShippingCost  decimal.Decimal
	Tax           decimal.Decimal
	CustomerEmail string
	Contact       models.ContactInfo
	SuccessURL    string
	CancelURL     string
}

type Session struct {
	ID          string
	RedirectURL string
}

type Confirmation struct {
	Paid       bool
	PaymentRef string
	CartID     uint
	Contact    models.ContactInfo
}

type EventKind string

const (
	EventCheckoutCompleted EventKind = "checkout_completed"
	EventPaymentSucceeded  EventKind = "payment_succeeded"
	EventPaymentFailed     EventKind = "payment_failed"
	EventIgnored           EventKind = "ignored"
)

type Event struct {
	Kind       EventKind
	PaymentRef string
	CartID     uint
	Contact    models.ContactInfo
}

type Gateway interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (*Session, error)
	ConfirmSession(ctx context.Context, sessionID string) (*Confirmation, error)
	VerifyWebhook(payload []byte, signature string) (*Event, error)
}
