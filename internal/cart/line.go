package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/minimart/internal/catalog"
)

// Line pairs a catalog item with a quantity. Price, weight and shippability are
// snapshotted when the line is created; stock and expiry are read from the live
// item every time they are evaluated.
type Line struct {
	id           uuid.UUID
	item         *catalog.Item
	quantity     int
	name         string
	unitPrice    decimal.Decimal
	unitWeightKg decimal.Decimal
	shippable    bool
}

func newLine(item *catalog.Item, quantity int) *Line {
	return &Line{
		id:           uuid.New(),
		item:         item,
		quantity:     quantity,
		name:         item.Name(),
		unitPrice:    item.UnitPrice(),
		unitWeightKg: item.UnitWeightKg(),
		shippable:    item.Shippable(),
	}
}

func (l *Line) ID() uuid.UUID                 { return l.id }
func (l *Line) Name() string                  { return l.name }
func (l *Line) Quantity() int                 { return l.quantity }
func (l *Line) UnitPrice() decimal.Decimal    { return l.unitPrice }
func (l *Line) UnitWeightKg() decimal.Decimal { return l.unitWeightKg }
func (l *Line) IsShippable() bool             { return l.shippable }

// Item returns the live catalog item backing the line.
func (l *Line) Item() *catalog.Item { return l.item }

// LineTotal is unit price × quantity.
func (l *Line) LineTotal() decimal.Decimal {
	return l.unitPrice.Mul(decimal.NewFromInt(int64(l.quantity)))
}

// LineWeightKg is unit weight × quantity.
func (l *Line) LineWeightKg() decimal.Decimal {
	return l.unitWeightKg.Mul(decimal.NewFromInt(int64(l.quantity)))
}

// IsExpired evaluates the live item's expiry against at.
func (l *Line) IsExpired(at time.Time) bool {
	return l.item.IsExpired(at)
}

// AvailableStock is the live item's current stock.
func (l *Line) AvailableStock() int {
	return l.item.Stock()
}
