package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/minimart/internal/cart"
	"github.com/angelmondragon/minimart/internal/catalog"
	"github.com/angelmondragon/minimart/internal/customers"
	"github.com/angelmondragon/minimart/internal/shipping"
	"github.com/angelmondragon/minimart/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart/pkg/errors"
	"github.com/angelmondragon/minimart/pkg/logger"
	"github.com/angelmondragon/minimart/pkg/metrics"
)

// Service validates and settles carts.
type Service interface {
	AddToCart(ctx context.Context, c *cart.Cart, item *catalog.Item, quantity int) (*cart.Line, error)
	Checkout(ctx context.Context, c *cart.Cart, account *customers.Account, at time.Time) (*Result, error)
}

// ServiceParams wires the checkout service.
type ServiceParams struct {
	Logger      *logger.Logger
	Metrics     *metrics.CheckoutMetrics
	Shipper     shipping.Notifier
	StockPolicy enums.StockPolicy
	Now         func() time.Time
}

type service struct {
	logg        *logger.Logger
	metrics     *metrics.CheckoutMetrics
	shipper     shipping.Notifier
	stockPolicy enums.StockPolicy
	now         func() time.Time
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Shipper == nil {
		return nil, fmt.Errorf("shipping notifier required")
	}
	policy := params.StockPolicy
	if policy == "" {
		policy = enums.StockPolicyRetain
	}
	if !policy.IsValid() {
		return nil, fmt.Errorf("invalid stock policy %q", policy)
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		logg:        params.Logger,
		metrics:     params.Metrics,
		shipper:     params.Shipper,
		stockPolicy: policy,
		now:         now,
	}, nil
}

func (s *service) AddToCart(ctx context.Context, c *cart.Cart, item *catalog.Item, quantity int) (*cart.Line, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is required")
	}
	ctx = s.logg.WithCartID(ctx, c.ID().String())

	line, err := c.AddLine(item, quantity)
	if err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeInvalidQuantity {
			s.metrics.IncRejectedLine()
		}
		s.logg.Warn(s.logg.WithField(ctx, "error", pkgerrors.Dump(err)), "cart line rejected")
		return nil, err
	}

	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
		"line_id":  line.ID().String(),
		"item":     line.Name(),
		"quantity": line.Quantity(),
	}), "cart line added")
	return line, nil
}

// Checkout validates every line, totals the cart and debits the account. Every
// failure returns before any mutation.
func (s *service) Checkout(ctx context.Context, c *cart.Cart, account *customers.Account, at time.Time) (*Result, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is required")
	}
	if account == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer account is required")
	}
	if at.IsZero() {
		at = s.now()
	}
	ctx = s.logg.WithCartID(ctx, c.ID().String())
	ctx = s.logg.WithCustomerID(ctx, account.ID().String())

	result, err := s.settle(ctx, c, account, at)
	if err != nil {
		s.metrics.IncFailure(string(pkgerrors.CodeOf(err)))
		s.logg.Warn(s.logg.WithField(ctx, "error", pkgerrors.Dump(err)), "checkout rejected")
		return nil, err
	}

	s.metrics.ObserveSuccess(result.Total)
	s.logg.Info(s.logg.WithFields(s.logg.WithCheckoutID(ctx, result.CheckoutID.String()), map[string]any{
		"subtotal":          result.Subtotal.String(),
		"shipping":          result.ShippingCharged.String(),
		"total":             result.Total.String(),
		"remaining_balance": result.RemainingBalance.String(),
	}), "checkout completed")
	return result, nil
}

func (s *service) settle(ctx context.Context, c *cart.Cart, account *customers.Account, at time.Time) (*Result, error) {
	lines := c.Lines()
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart contains no items")
	}

	subtotal := decimal.Zero
	shippable := make([]*cart.Line, 0, len(lines))
	receiptLines := make([]ReceiptLine, 0, len(lines))
	// Under decrement, lines sharing an item draw from the same stock.
	requested := make(map[*catalog.Item]int, len(lines))
	for _, line := range lines {
		if line.IsExpired(at) {
			expiredAt, _ := line.Item().ExpiresAt()
			return nil, pkgerrors.New(pkgerrors.CodeExpiredItem, fmt.Sprintf("%s is expired", line.Name())).WithDetails(ExpiredItemDetail{
				ItemName:  line.Name(),
				ExpiredAt: expiredAt,
			})
		}
		need := line.Quantity()
		if s.stockPolicy == enums.StockPolicyDecrement {
			requested[line.Item()] += line.Quantity()
			need = requested[line.Item()]
		}
		if available := line.AvailableStock(); need > available {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("only %d left for %s", available, line.Name())).WithDetails(InsufficientStockDetail{
				ItemName:  line.Name(),
				Requested: need,
				Available: available,
			})
		}
		subtotal = subtotal.Add(line.LineTotal())
		receiptLines = append(receiptLines, ReceiptLine{
			Quantity:  line.Quantity(),
			Name:      line.Name(),
			LineTotal: line.LineTotal(),
		})
		if line.IsShippable() {
			shippable = append(shippable, line)
		}
	}

	needsShipping := len(shippable) > 0
	shippingCharged := decimal.Zero
	if needsShipping {
		shippingCharged = c.ShippingSurcharge()
	}
	total := subtotal.Add(shippingCharged)

	if !account.HasAtLeast(total) {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientFunds, "balance does not cover total").WithDetails(InsufficientFundsDetail{
			Required:  total,
			Available: account.Balance(),
		})
	}

	var manifest *shipping.Manifest
	if needsShipping {
		built := shipping.BuildManifest(shippable)
		manifest = &built
		if err := s.shipper.Ship(ctx, built); err != nil {
			s.logg.Error(ctx, "shipment notice failed", err)
		}
	}

	account.Debit(total)

	if s.stockPolicy == enums.StockPolicyDecrement {
		for _, line := range lines {
			line.Item().ReduceStock(line.Quantity())
		}
	}

	return &Result{
		CheckoutID:       uuid.New(),
		CartID:           c.ID(),
		CustomerID:       account.ID(),
		CompletedAt:      at,
		Lines:            receiptLines,
		Subtotal:         subtotal,
		ShippingCharged:  shippingCharged,
		Total:            total,
		Manifest:         manifest,
		RemainingBalance: account.Balance(),
	}, nil
}
