package receipt

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/angelmondragon/minimart/internal/cart"
	"github.com/angelmondragon/minimart/internal/checkout"
	"github.com/angelmondragon/minimart/internal/shipping"
	pkgerrors "github.com/angelmondragon/minimart/pkg/errors"
)

const separator = "----------------------"

// Printer renders checkout output as plain text. It doubles as the shipping
// notifier so the shipment notice is printed when the manifest is dispatched.
type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Ship prints a shipment notice.
func (p *Printer) Ship(_ context.Context, manifest shipping.Manifest) error {
	var b strings.Builder
	b.WriteString("** Shipment notice **\n")
	for _, entry := range manifest.Entries {
		fmt.Fprintf(&b, "%dx %s %dg\n", entry.Quantity, entry.Name, entry.UnitWeightGrams)
	}
	fmt.Fprintf(&b, "Total package weight %skg\n", manifest.TotalWeightKg.String())
	_, err := io.WriteString(p.out, b.String())
	return err
}

// PrintReceipt prints the lines and totals of a successful checkout.
func (p *Printer) PrintReceipt(result *checkout.Result) error {
	if result == nil {
		return nil
	}
	var b strings.Builder
	b.WriteString("** Checkout receipt **\n")
	for _, line := range result.Lines {
		fmt.Fprintf(&b, "%dx %s %s\n", line.Quantity, line.Name, line.LineTotal.String())
	}
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "Subtotal %s\n", result.Subtotal.String())
	fmt.Fprintf(&b, "Shipping %s\n", result.ShippingCharged.String())
	fmt.Fprintf(&b, "Amount %s\n", result.Total.String())
	fmt.Fprintf(&b, "Balance %s\n", result.RemainingBalance.String())
	_, err := io.WriteString(p.out, b.String())
	return err
}

// PrintFailure prints a one-line explanation of a rejected operation.
func (p *Printer) PrintFailure(err error) error {
	if err == nil {
		return nil
	}
	_, werr := fmt.Fprintln(p.out, FailureMessage(err))
	return werr
}

// FailureMessage turns a checkout or cart error into customer-facing text.
func FailureMessage(err error) string {
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeEmptyCart:
		return "Your cart is empty, start shopping"
	case pkgerrors.CodeInvalidQuantity:
		if d, ok := pkgerrors.DetailsAs[cart.InvalidQuantityDetail](err); ok {
			return fmt.Sprintf("Invalid quantity %d for %s (%d in stock)", d.Requested, d.ItemName, d.Available)
		}
	case pkgerrors.CodeExpiredItem:
		if d, ok := pkgerrors.DetailsAs[checkout.ExpiredItemDetail](err); ok {
			return fmt.Sprintf("Error: %s is expired", d.ItemName)
		}
	case pkgerrors.CodeInsufficientStock:
		if d, ok := pkgerrors.DetailsAs[checkout.InsufficientStockDetail](err); ok {
			return fmt.Sprintf("There is only %d for %s", d.Available, d.ItemName)
		}
	case pkgerrors.CodeInsufficientFunds:
		if d, ok := pkgerrors.DetailsAs[checkout.InsufficientFundsDetail](err); ok {
			return fmt.Sprintf("Insufficient balance: %s required, %s available", d.Required.String(), d.Available.String())
		}
	}
	if typed := pkgerrors.As(err); typed != nil {
		return pkgerrors.MetadataFor(typed.Code()).PublicMessage
	}
	return err.Error()
}
