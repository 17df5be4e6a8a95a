package catalog

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/minimart/pkg/errors"
	"github.com/angelmondragon/minimart/pkg/validators"
)

const demoShelfLife = 5 * 24 * time.Hour

// SeedDocument is the on-disk catalog format.
type SeedDocument struct {
	Items []ItemInput `json:"items" validate:"required,min=1"`
}

// LoadFile reads a JSON seed document from path.
func LoadFile(path string) ([]ItemInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("open catalog seed %s", path))
	}
	defer f.Close()

	var doc SeedDocument
	if err := validators.DecodeJSON(f, &doc); err != nil {
		return nil, err
	}
	return doc.Items, nil
}

// DemoInputs returns the sample storefront: two perishable shippable goods,
// a shippable appliance and a digital scratch card.
func DemoInputs(now time.Time) []ItemInput {
	expiry := now.Add(demoShelfLife)
	return []ItemInput{
		{
			Name:         "Cheese",
			UnitPrice:    decimal.NewFromInt(100),
			Stock:        10,
			Perishable:   true,
			ExpiresAt:    &expiry,
			Shippable:    true,
			UnitWeightKg: decimal.RequireFromString("0.2"),
		},
		{
			Name:         "Biscuits",
			UnitPrice:    decimal.NewFromInt(150),
			Stock:        5,
			Perishable:   true,
			ExpiresAt:    &expiry,
			Shippable:    true,
			UnitWeightKg: decimal.RequireFromString("0.7"),
		},
		{
			Name:      "Mobile Card",
			UnitPrice: decimal.NewFromInt(50),
			Stock:     20,
		},
		{
			Name:         "TV",
			UnitPrice:    decimal.NewFromInt(3000),
			Stock:        2,
			Shippable:    true,
			UnitWeightKg: decimal.NewFromInt(10),
		},
	}
}
