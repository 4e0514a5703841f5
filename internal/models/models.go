package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"       json:"id"`
	Name        string          `gorm:"not null"                       json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"    json:"price"`
	Stock       int             `gorm:"not null;default:0"             json:"stock"`
	IsActive    bool            `gorm:"not null;default:true"          json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Cart belongs to exactly one identity: an account or an anonymous session.
// Both columns are nullable so the unique indexes only apply when set.
type Cart struct {
	ID           uint       `gorm:"primaryKey"               json:"id"`
	UserID       *uint      `gorm:"uniqueIndex"              json:"user_id,omitempty"`
	SessionToken *string    `gorm:"uniqueIndex;size:64"      json:"session_token,omitempty"`
	Items        []CartItem `gorm:"foreignKey:CartID"        json:"items,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uint    `gorm:"primaryKey"                            json:"id"`
	CartID    uint    `gorm:"not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID uint    `gorm:"not null;uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity  uint    `gorm:"not null;default:1;check:quantity>0"   json:"quantity"`
	Product   Product `gorm:"foreignKey:ProductID"                  json:"product"`
}

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"

	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order is immutable once created except for Status and PaymentStatus.
// StripePaymentIntent carries a unique index: it is the idempotency key that
// keeps the redirect callback and the webhook from materializing twice.
type Order struct {
	ID          uint   `gorm:"primaryKey"                   json:"id"`
	OrderNumber string `gorm:"uniqueIndex;size:32;not null" json:"order_number"`
	UserID      *uint  `gorm:"index"                        json:"user_id,omitempty"`

	FullName   string `gorm:"not null" json:"full_name"`
	Email      string `gorm:"not null" json:"email"`
	Phone      string `gorm:"not null" json:"phone"`
	Address    string `gorm:"not null" json:"address"`
	City       string `gorm:"not null" json:"city"`
	State      string `gorm:"not null" json:"state"`
	PostalCode string `gorm:"not null" json:"postal_code"`
	Country    string `gorm:"not null" json:"country"`

	Subtotal     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"subtotal"`
	ShippingCost decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"shipping_cost"`
	Tax          decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"tax"`
	Total        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total"`

	PaymentStatus       string `gorm:"not null;default:pending"      json:"payment_status"`
	Status              string `gorm:"not null;default:processing"   json:"status"`
	StripePaymentIntent string `gorm:"uniqueIndex;size:128;not null" json:"stripe_payment_intent"`

	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// OrderItem snapshots name and price at materialization time so later product
// edits never alter historical orders.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey"                  json:"id"`
	OrderID      uint            `gorm:"index;not null"              json:"order_id"`
	ProductID    uint            `gorm:"not null"                    json:"product_id"`
	ProductName  string          `gorm:"not null"                    json:"product_name"`
	ProductPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"product_price"`
	Quantity     uint            `gorm:"not null;check:quantity>0"   json:"quantity"`
}

// CartIdentity names the owner of a cart explicitly instead of reading it from
// ambient request state. Exactly one of the two fields must be set.
type CartIdentity struct {
	AccountID    *uint
	SessionToken *string
}

func (i CartIdentity) Valid() bool {
	return i.AccountID != nil || (i.SessionToken != nil && *i.SessionToken != "")
}

// ContactInfo is the shipping/contact snapshot collected at the checkout-info
// step. It lives in session state until an order consumes it.
type ContactInfo struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (ci ContactInfo) Complete() bool {
	return ci.FullName != "" && ci.Email != "" && ci.Phone != "" &&
		ci.Address != "" && ci.City != "" && ci.State != "" &&
		ci.PostalCode != "" && ci.Country != ""
}
