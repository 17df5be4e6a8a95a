package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/minimart/pkg/validators"
)

const maxNameLength = 120

// ItemInput captures the data a catalog owner supplies for a purchasable good.
type ItemInput struct {
	Name         string          `json:"name" validate:"required,max=120"`
	UnitPrice    decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Stock        int             `json:"stock" validate:"gte=0"`
	Perishable   bool            `json:"perishable"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty" validate:"required_if=Perishable true"`
	Shippable    bool            `json:"shippable"`
	UnitWeightKg decimal.Decimal `json:"unit_weight_kg" validate:"gte=0"`
}

// Item is a purchasable good. Everything but stock is fixed at creation.
type Item struct {
	id           uuid.UUID
	name         string
	unitPrice    decimal.Decimal
	stock        int
	perishable   bool
	expiresAt    time.Time
	shippable    bool
	unitWeightKg decimal.Decimal
}

// NewItem validates input and builds an Item. Expiry is dropped for non-perishable
// goods and weight is zeroed for non-shippable ones.
func NewItem(input ItemInput) (*Item, error) {
	input.Name = validators.SanitizeString(input.Name, maxNameLength)
	if err := validators.Struct(&input); err != nil {
		return nil, err
	}

	item := &Item{
		id:         uuid.New(),
		name:       input.Name,
		unitPrice:  input.UnitPrice,
		stock:      input.Stock,
		perishable: input.Perishable,
		shippable:  input.Shippable,
	}
	if input.Perishable {
		item.expiresAt = *input.ExpiresAt
	}
	if input.Shippable {
		item.unitWeightKg = input.UnitWeightKg
	}
	return item, nil
}

func (i *Item) ID() uuid.UUID                 { return i.id }
func (i *Item) Name() string                  { return i.name }
func (i *Item) UnitPrice() decimal.Decimal    { return i.unitPrice }
func (i *Item) Stock() int                    { return i.stock }
func (i *Item) Perishable() bool              { return i.perishable }
func (i *Item) Shippable() bool               { return i.shippable }
func (i *Item) UnitWeightKg() decimal.Decimal { return i.unitWeightKg }

// ExpiresAt returns the expiry instant and whether the item carries one.
func (i *Item) ExpiresAt() (time.Time, bool) {
	return i.expiresAt, i.perishable
}

// IsExpired reports whether a perishable item's expiry is strictly before at.
func (i *Item) IsExpired(at time.Time) bool {
	return i.perishable && i.expiresAt.Before(at)
}

// ReduceStock removes qty units, never going below zero.
func (i *Item) ReduceStock(qty int) {
	if qty <= 0 {
		return
	}
	i.stock -= qty
	if i.stock < 0 {
		i.stock = 0
	}
}

// Restock adds qty units.
func (i *Item) Restock(qty int) {
	if qty <= 0 {
		return
	}
	i.stock += qty
}
