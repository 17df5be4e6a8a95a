package checkout

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/minimart/internal/cart"
	"github.com/angelmondragon/minimart/internal/catalog"
	"github.com/angelmondragon/minimart/internal/customers"
	"github.com/angelmondragon/minimart/internal/shipping"
	"github.com/angelmondragon/minimart/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart/pkg/errors"
	"github.com/angelmondragon/minimart/pkg/logger"
	"github.com/angelmondragon/minimart/pkg/metrics"
)

var refNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type stubShipper struct {
	manifests []shipping.Manifest
	err       error
}

func (s *stubShipper) Ship(_ context.Context, manifest shipping.Manifest) error {
	s.manifests = append(s.manifests, manifest)
	return s.err
}

type fixture struct {
	svc     Service
	shipper *stubShipper
	reg     *prometheus.Registry
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, policy enums.StockPolicy) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	logs := &bytes.Buffer{}
	shipper := &stubShipper{}
	svc, err := NewService(ServiceParams{
		Logger:      logger.New(logger.Options{ServiceName: "checkout-test", Output: logs, Level: logger.ParseLevel("debug")}),
		Metrics:     metrics.NewCheckoutMetrics(reg),
		Shipper:     shipper,
		StockPolicy: policy,
		Now:         func() time.Time { return refNow },
	})
	require.NoError(t, err)
	return &fixture{svc: svc, shipper: shipper, reg: reg, logs: logs}
}

func mustItem(t *testing.T, input catalog.ItemInput) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(input)
	require.NoError(t, err)
	return item
}

func mustAccount(t *testing.T, balance int64) *customers.Account {
	t.Helper()
	acct, err := customers.NewAccount("Mohamed", decimal.NewFromInt(balance))
	require.NoError(t, err)
	return acct
}

// scenarioCart: A (100, stock 10, shippable 0.2kg) ×2 and B (50, stock 20) ×3, surcharge 50.
func scenarioCart(t *testing.T, f *fixture) (*cart.Cart, *catalog.Item, *catalog.Item) {
	t.Helper()
	a := mustItem(t, catalog.ItemInput{Name: "A", UnitPrice: decimal.NewFromInt(100), Stock: 10, Shippable: true, UnitWeightKg: decimal.RequireFromString("0.2")})
	b := mustItem(t, catalog.ItemInput{Name: "B", UnitPrice: decimal.NewFromInt(50), Stock: 20})

	c := cart.New()
	require.NoError(t, c.SetShippingSurcharge(decimal.NewFromInt(50)))
	_, err := f.svc.AddToCart(context.Background(), c, a, 2)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(context.Background(), c, b, 3)
	require.NoError(t, err)
	return c, a, b
}

func TestCheckoutSuccessScenario(t *testing.T) {
	f := newFixture(t, enums.StockPolicyRetain)
	c, a, b := scenarioCart(t, f)
	acct := mustAccount(t, 1000)

	result, err := f.svc.Checkout(context.Background(), c, acct, refNow)
	require.NoError(t, err)

	assert.True(t, result.Subtotal.Equal(decimal.NewFromInt(350)))
	assert.True(t, result.ShippingCharged.Equal(decimal.NewFromInt(50)))
	assert.True(t, result.Total.Equal(decimal.NewFromInt(400)))
	assert.True(t, result.RemainingBalance.Equal(decimal.NewFromInt(600)))
	assert.True(t, acct.Balance().Equal(decimal.NewFromInt(600)))
	assert.True(t, result.Total.Equal(result.Subtotal.Add(result.ShippingCharged)))
	assert.Equal(t, c.ID(), result.CartID)
	assert.Equal(t, acct.ID(), result.CustomerID)
	assert.Equal(t, refNow, result.CompletedAt)

	require.NotNil(t, result.Manifest)
	require.Len(t, result.Manifest.Entries, 1)
	assert.Equal(t, shipping.Entry{Quantity: 2, Name: "A", UnitWeightGrams: 200}, result.Manifest.Entries[0])
	assert.True(t, result.Manifest.TotalWeightKg.Equal(decimal.RequireFromString("0.4")))
	require.Len(t, f.shipper.manifests, 1, "shipment notice dispatched once")

	require.Len(t, result.Lines, 2)
	assert.Equal(t, 2, result.Lines[0].Quantity)
	assert.Equal(t, "A", result.Lines[0].Name)
	assert.True(t, result.Lines[0].LineTotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, result.Lines[1].LineTotal.Equal(decimal.NewFromInt(150)))

	assert.Equal(t, 10, a.Stock(), "retain policy leaves stock untouched")
	assert.Equal(t, 20, b.Stock())
	assert.Equal(t, 2, c.Len(), "checkout does not remove lines")

	assert.Equal(t, float64(1), counterValue(t, f.reg, "checkout_success_total", ""))
	assert.Contains(t, f.logs.String(), `"message":"checkout completed"`)
}

func TestCheckoutInsufficientFundsScenario(t *testing.T) {
	f := newFixture(t, enums.StockPolicyRetain)
	c, _, _ := scenarioCart(t, f)
	acct := mustAccount(t, 300)

	result, err := f.svc.Checkout(context.Background(), c, acct, refNow)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, pkgerrors.CodeInsufficientFunds, pkgerrors.CodeOf(err))

	detail, ok := pkgerrors.DetailsAs[InsufficientFundsDetail](err)
	require.True(t, ok)
	assert.True(t, detail.Required.Equal(decimal.NewFromInt(400)))
	assert.True(t, detail.Available.Equal(decimal.NewFromInt(300)))
	assert.True(t, acct.Balance().Equal(decimal.NewFromInt(300)))
	assert.Empty(t, f.shipper.manifests, "no shipment notice on failure")
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t, enums.StockPolicyRetain)
	acct := mustAccount(t, 1000)

	_, err := f.svc.Checkout(context.Background(), cart.New(), acct, refNow)
	assert.Equal(t, pkgerrors.CodeEmptyCart, pkgerrors.CodeOf(err))
	assert.True(t, acct.Balance().Equal(decimal.NewFromInt(1000)))
}

func TestCheckoutExpiredItemWinsRegardlessOfOtherLines(t *testing.T) {
	f := newFixture(t, enums.StockPolicyRetain)
	c, _, _ := scenarioCart(t, f)
	past := refNow.Add(-time.Minute)
	expired := mustItem(t, catalog.ItemInput{Name: "C", UnitPrice: decimal.NewFromInt(10), Stock: 5, Perishable: true, ExpiresAt: &past})
	_, err := c.AddLine(expired, 1)
	require.NoError(t, err)
	acct := mustAccount(t, 100000)

	_, err = f.svc.Checkout(context.Background(), c, acct, refNow)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeExpiredItem, pkgerrors.CodeOf(err))
	detail, ok := pkgerrors.DetailsAs[ExpiredItemDetail](err)
	require.True(t, ok)
	assert.Equal(t, "C", detail.ItemName)
	assert.Equal(t, past, detail.ExpiredAt)
	assert.True(t, acct.Balance().Equal(decimal.NewFromInt(100000)))
	assert.Empty(t, f.shipper.manifests)
}

func TestCheckoutExpiryDependsOnEvaluationTime(t *testing.T) {
	f := newFixture(t, enums.StockPolicyRetain)
	expiry := refNow.Add(time.Hour)
	milk := mustItem(t, catalog.ItemInput{Name: "Milk", UnitPrice: decimal.NewFromInt(10), Stock: 5, Perishable: true, ExpiresAt: &expiry})
	c := cart.New()
	_, err := c.AddLine(milk, 1)
	require.NoError(t, err)

	_, err = f.svc.Checkout(context.Background(), c, mustAccount(t, 100), refNow.Add(2*time.Hour))
	assert.Equal(t, pkgerrors.CodeExpiredItem, pkgerrors.CodeOf(err))

	_, err = f.svc.Checkout(context.Background(), c, mustAccount(t, 100), refNow)
	assert.NoError(t, err)
}

func TestCheckoutFirstOffendingLineWins(t *testing.T) {
	f := newFixture(t, enums.StockPolicyRetain)
	past := refNow.Add(-time.Hour)
	short := mustItem(t, catalog.ItemInput{Name: "Short", UnitPrice: decimal.NewFromInt(1), Stock: 5})
	stale := mustItem(t, catalog.ItemInput{Name: "Stale", UnitPrice: decimal.NewFromInt(1), Stock: 5, Perishable: true, ExpiresAt: &past})

	c := cart.New()
	_, err := c.AddLine(short, 4)
	require.NoError(t, err)
	_, err = c.AddLine(stale, 1)
	require.NoError(t, err)
	short.ReduceStock(3)
	acct := mustAccount(t, 100)

	_, err = f.svc.Checkout(context.Background(), c, acct, refNow)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, pkgerrors.CodeOf(err))
	detail, ok := pkgerrors.DetailsAs[InsufficientStockDetail](err)
	require.True(t, ok)
	assert.Equal(t, InsufficientStockDetail{ItemName: "Short", Requested: 4, Available: 2}, detail)
	assert.True(t, acct.Balance().Equal(decimal.NewFromInt(100)), "balance untouched on stock failure")
	assert.Empty(t, f.shipper.manifests)
	assert.Equal(t, 2, short.Stock())
}

func TestCheckoutDuplicateLinesShareStockUnderDecrement(t *testing.T) {
	newCart := func(t *testing.T) (*cart.Cart, *catalog.Item) {
		tv := mustItem(t, catalog.ItemInput{Name: "TV", UnitPrice: decimal.NewFromInt(10), Stock: 2})
		c := cart.New()
		for i := 0; i < 2; i++ {
			_, err := c.AddLine(tv, 2)
			require.NoError(t, err)
		}
		return c, tv
	}

	f := newFixture(t, enums.StockPolicyDecrement)
	c, tv := newCart(t)
	acct := mustAccount(t, 100)
	_, err := f.svc.Checkout(context.Background(), c, acct, refNow)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, pkgerrors.CodeOf(err))
	detail, ok := pkgerrors.DetailsAs[InsufficientStockDetail](err)
	require.True(t, ok)
	assert.Equal(t, InsufficientStockDetail{ItemName: "TV", Requested: 4, Available: 2}, detail)
	assert.True(t, acct.Balance().Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 2, tv.Stock())

	retain := newFixture(t, enums.StockPolicyRetain)
	c, tv = newCart(t)
	result, err := retain.svc.Checkout(context.Background(), c, mustAccount(t, 100), refNow)
	require.NoError(t, err, "retain checks each line on its own")
	assert.True(t, result.Total.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, 2, tv.Stock())
}

func TestCheckoutNoShippingWhenNothingShips(t *testing.T) {
	f := newFixture(t, enums.StockPolicyRetain)
	card := mustItem(t, catalog.ItemInput{Name: "Mobile Card", UnitPrice: decimal.NewFromInt(50), Stock: 20})
	c := cart.New()
	require.NoError(t, c.SetShippingSurcharge(decimal.NewFromInt(50)))
	_, err := c.AddLine(card, 3)
	require.NoError(t, err)

	result, err := f.svc.Checkout(context.Background(), c, mustAccount(t, 150), refNow)
	require.NoError(t, err)
	assert.True(t, result.ShippingCharged.IsZero())
	assert.True(t, result.Total.Equal(decimal.NewFromInt(150)))
	assert.True(t, result.RemainingBalance.IsZero())
	assert.Nil(t, result.Manifest)
	assert.Empty(t, f.shipper.manifests)
}

func TestCheckoutShipperErrorDoesNotFailCheckout(t *testing.T) {
	f := newFixture(t, enums.StockPolicyRetain)
	f.shipper.err = errors.New("printer jammed")
	c, _, _ := scenarioCart(t, f)
	acct := mustAccount(t, 1000)

	result, err := f.svc.Checkout(context.Background(), c, acct, refNow)
	require.NoError(t, err)
	assert.True(t, result.RemainingBalance.Equal(decimal.NewFromInt(600)))
	assert.Contains(t, f.logs.String(), "shipment notice failed")
}

func TestCheckoutDecrementPolicyReducesStock(t *testing.T) {
	f := newFixture(t, enums.StockPolicyDecrement)
	c, a, b := scenarioCart(t, f)

	_, err := f.svc.Checkout(context.Background(), c, mustAccount(t, 1000), refNow)
	require.NoError(t, err)
	assert.Equal(t, 8, a.Stock())
	assert.Equal(t, 17, b.Stock())

	_, err = f.svc.Checkout(context.Background(), cart.New(), mustAccount(t, 1000), refNow)
	require.Error(t, err)
	assert.Equal(t, 8, a.Stock(), "failed checkouts never touch stock")
}

func TestCheckoutUsesServiceClockForZeroTime(t *testing.T) {
	f := newFixture(t, enums.StockPolicyRetain)
	c, _, _ := scenarioCart(t, f)
	result, err := f.svc.Checkout(context.Background(), c, mustAccount(t, 1000), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, refNow, result.CompletedAt)
}

func TestCheckoutFailureMetricsByReason(t *testing.T) {
	f := newFixture(t, enums.StockPolicyRetain)
	_, _ = f.svc.Checkout(context.Background(), cart.New(), mustAccount(t, 1), refNow)
	c, _, _ := scenarioCart(t, f)
	_, _ = f.svc.Checkout(context.Background(), c, mustAccount(t, 1), refNow)

	assert.Equal(t, float64(1), counterValue(t, f.reg, "checkout_failure_total", string(pkgerrors.CodeEmptyCart)))
	assert.Equal(t, float64(1), counterValue(t, f.reg, "checkout_failure_total", string(pkgerrors.CodeInsufficientFunds)))
	assert.Contains(t, f.logs.String(), "checkout rejected")
}

func TestAddToCartReportsRejection(t *testing.T) {
	f := newFixture(t, enums.StockPolicyRetain)
	tv := mustItem(t, catalog.ItemInput{Name: "TV", UnitPrice: decimal.NewFromInt(3000), Stock: 2, Shippable: true, UnitWeightKg: decimal.NewFromInt(10)})
	c := cart.New()

	line, err := f.svc.AddToCart(context.Background(), c, tv, 3)
	require.Error(t, err)
	assert.Nil(t, line)
	assert.Equal(t, pkgerrors.CodeInvalidQuantity, pkgerrors.CodeOf(err))
	assert.Equal(t, 0, c.Len())
	assert.Contains(t, f.logs.String(), "cart line rejected")

	assert.Equal(t, float64(1), counterValue(t, f.reg, "cart_line_rejected_total", ""))

	_, err = f.svc.AddToCart(context.Background(), nil, tv, 1)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestNewServiceValidatesParams(t *testing.T) {
	_, err := NewService(ServiceParams{Shipper: &stubShipper{}})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Logger: logger.Nop()})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Logger: logger.Nop(), Shipper: &stubShipper{}, StockPolicy: "hoard"})
	assert.Error(t, err)

	svc, err := NewService(ServiceParams{Logger: logger.Nop(), Shipper: &stubShipper{}})
	require.NoError(t, err)
	_, err = svc.Checkout(context.Background(), cart.New(), nil, refNow)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	_, err = svc.Checkout(context.Background(), nil, mustAccount(t, 1), refNow)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, reason string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if reason == "" {
				return metric.GetCounter().GetValue()
			}
			for _, label := range metric.GetLabel() {
				if label.GetName() == "reason" && label.GetValue() == reason {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
