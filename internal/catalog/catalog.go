package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/minimart/pkg/errors"
)

// Catalog is an ordered, in-memory set of items addressable by name or ID.
type Catalog struct {
	items  []*Item
	byName map[string]*Item
	byID   map[uuid.UUID]*Item
}

func New() *Catalog {
	return &Catalog{
		byName: map[string]*Item{},
		byID:   map[uuid.UUID]*Item{},
	}
}

// Build creates every item in inputs and reports all invalid entries at once.
func Build(inputs []ItemInput) (*Catalog, error) {
	c := New()
	var errs []error
	for idx, input := range inputs {
		item, err := NewItem(input)
		if err != nil {
			errs = append(errs, fmt.Errorf("item %d (%q): %w", idx, input.Name, err))
			continue
		}
		if err := c.Add(item); err != nil {
			errs = append(errs, fmt.Errorf("item %d (%q): %w", idx, input.Name, err))
		}
	}
	if err := multierr.Combine(errs...); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("%d invalid catalog item(s)", len(errs)))
	}
	return c, nil
}

// Add registers item. Names are unique case-insensitively.
func (c *Catalog) Add(item *Item) error {
	if item == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item is required")
	}
	key := nameKey(item.Name())
	if _, exists := c.byName[key]; exists {
		return pkgerrors.New(pkgerrors.CodeValidation, "duplicate item name").WithDetails(map[string]any{"name": item.Name()})
	}
	c.items = append(c.items, item)
	c.byName[key] = item
	c.byID[item.ID()] = item
	return nil
}

func (c *Catalog) Lookup(name string) (*Item, error) {
	if item, ok := c.byName[nameKey(name)]; ok {
		return item, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found").WithDetails(map[string]any{"name": name})
}

func (c *Catalog) Get(id uuid.UUID) (*Item, error) {
	if item, ok := c.byID[id]; ok {
		return item, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found").WithDetails(map[string]any{"id": id})
}

// Items returns the items in registration order.
func (c *Catalog) Items() []*Item {
	out := make([]*Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Len() int { return len(c.items) }

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
