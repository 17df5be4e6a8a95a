package cart

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/minimart/internal/catalog"
	pkgerrors "github.com/angelmondragon/minimart/pkg/errors"
)

// InvalidQuantityDetail describes a rejected addition.
type InvalidQuantityDetail struct {
	ItemName  string `json:"item_name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// Cart accumulates lines in insertion order plus a flat shipping surcharge.
// Duplicate items are kept as separate lines.
type Cart struct {
	id                uuid.UUID
	lines             []*Line
	shippingSurcharge decimal.Decimal
}

func New() *Cart {
	return &Cart{id: uuid.New(), shippingSurcharge: decimal.Zero}
}

func (c *Cart) ID() uuid.UUID { return c.id }

// SetShippingSurcharge sets the flat fee applied once when any line ships.
func (c *Cart) SetShippingSurcharge(fee decimal.Decimal) error {
	if fee.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping surcharge must not be negative")
	}
	c.shippingSurcharge = fee
	return nil
}

func (c *Cart) ShippingSurcharge() decimal.Decimal { return c.shippingSurcharge }

// AddLine appends a line for item. It fails with INVALID_QUANTITY, leaving the
// cart unchanged, when quantity is not positive or exceeds the item's current
// stock. Stock is not reserved.
func (c *Cart) AddLine(item *catalog.Item, quantity int) (*Line, error) {
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item is required")
	}
	if quantity <= 0 || quantity > item.Stock() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidQuantity, fmt.Sprintf("invalid quantity for %s", item.Name())).WithDetails(InvalidQuantityDetail{
			ItemName:  item.Name(),
			Requested: quantity,
			Available: item.Stock(),
		})
	}
	line := newLine(item, quantity)
	c.lines = append(c.lines, line)
	return line, nil
}

// Lines returns the lines in insertion order.
func (c *Cart) Lines() []*Line {
	out := make([]*Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Clear discards every line; the surcharge is kept.
func (c *Cart) Clear() {
	c.lines = nil
}
