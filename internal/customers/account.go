package customers

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/minimart/pkg/validators"
)

type accountInput struct {
	Name string `json:"name" validate:"required"`
}

// Account holds a customer's spendable balance.
type Account struct {
	id      uuid.UUID
	name    string
	balance decimal.Decimal
}

// NewAccount opens an account. A negative opening balance is accepted.
func NewAccount(name string, balance decimal.Decimal) (*Account, error) {
	input := accountInput{Name: validators.SanitizeString(name, 0)}
	if err := validators.Struct(&input); err != nil {
		return nil, err
	}
	return &Account{id: uuid.New(), name: input.Name, balance: balance}, nil
}

func (a *Account) ID() uuid.UUID            { return a.id }
func (a *Account) Name() string             { return a.name }
func (a *Account) Balance() decimal.Decimal { return a.balance }

// HasAtLeast reports whether balance >= amount.
func (a *Account) HasAtLeast(amount decimal.Decimal) bool {
	return a.balance.GreaterThanOrEqual(amount)
}

// Debit subtracts amount unconditionally. Callers check HasAtLeast first.
func (a *Account) Debit(amount decimal.Decimal) {
	a.balance = a.balance.Sub(amount)
}
