package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/minimart/internal/shipping"
)

// ReceiptLine is one purchased line as charged.
type ReceiptLine struct {
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Result is returned by a successful checkout.
type Result struct {
	CheckoutID       uuid.UUID          `json:"checkout_id"`
	CartID           uuid.UUID          `json:"cart_id"`
	CustomerID       uuid.UUID          `json:"customer_id"`
	CompletedAt      time.Time          `json:"completed_at"`
	Lines            []ReceiptLine      `json:"lines"`
	Subtotal         decimal.Decimal    `json:"subtotal"`
	ShippingCharged  decimal.Decimal    `json:"shipping_charged"`
	Total            decimal.Decimal    `json:"total"`
	Manifest         *shipping.Manifest `json:"manifest,omitempty"`
	RemainingBalance decimal.Decimal    `json:"remaining_balance"`
}

// ExpiredItemDetail accompanies EXPIRED_ITEM failures.
type ExpiredItemDetail struct {
	ItemName  string    `json:"item_name"`
	ExpiredAt time.Time `json:"expired_at"`
}

// InsufficientStockDetail accompanies INSUFFICIENT_STOCK failures.
type InsufficientStockDetail struct {
	ItemName  string `json:"item_name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// InsufficientFundsDetail accompanies INSUFFICIENT_FUNDS failures.
type InsufficientFundsDetail struct {
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
}
