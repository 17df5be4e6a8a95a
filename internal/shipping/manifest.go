package shipping

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/minimart/internal/cart"
)

var gramsPerKg = decimal.NewFromInt(1000)

// Entry is one manifest row.
type Entry struct {
	Quantity        int    `json:"quantity"`
	Name            string `json:"name"`
	UnitWeightGrams int64  `json:"unit_weight_grams"`
}

// Manifest itemizes a shipment.
type Manifest struct {
	Entries       []Entry         `json:"entries"`
	TotalWeightKg decimal.Decimal `json:"total_weight_kg"`
}

// Notifier receives manifests for shipments that need dispatching.
type Notifier interface {
	Ship(ctx context.Context, manifest Manifest) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, manifest Manifest) error

func (f NotifierFunc) Ship(ctx context.Context, manifest Manifest) error {
	return f(ctx, manifest)
}

// BuildManifest lists the shippable lines in the given order. Unit weight is
// reported in whole grams (truncated); the total stays in kilograms at full
// precision. Non-shippable lines are ignored.
func BuildManifest(lines []*cart.Line) Manifest {
	manifest := Manifest{
		Entries:       make([]Entry, 0, len(lines)),
		TotalWeightKg: decimal.Zero,
	}
	for _, line := range lines {
		if line == nil || !line.IsShippable() {
			continue
		}
		manifest.Entries = append(manifest.Entries, Entry{
			Quantity:        line.Quantity(),
			Name:            line.Name(),
			UnitWeightGrams: line.UnitWeightKg().Mul(gramsPerKg).IntPart(),
		})
		manifest.TotalWeightKg = manifest.TotalWeightKg.Add(line.LineWeightKg())
	}
	return manifest
}

// IsEmpty reports whether the manifest has no entries.
func (m Manifest) IsEmpty() bool {
	return len(m.Entries) == 0
}
