package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/minimart/internal/cart"
	"github.com/angelmondragon/minimart/internal/catalog"
	"github.com/angelmondragon/minimart/internal/checkout"
	"github.com/angelmondragon/minimart/internal/customers"
	"github.com/angelmondragon/minimart/internal/receipt"
	"github.com/angelmondragon/minimart/pkg/config"
	"github.com/angelmondragon/minimart/pkg/logger"
	"github.com/angelmondragon/minimart/pkg/metrics"
)

const serviceName = "checkout-demo"

type order struct {
	item     string
	quantity int
}

var demoOrder = []order{
	{item: "Cheese", quantity: 2},
	{item: "Biscuits", quantity: 3},
	{item: "TV", quantity: 1},
	{item: "Mobile Card", quantity: 3},
}

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.Format(),
	})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":          cfg.App.Env,
		"stock_policy": cfg.Checkout.Policy().String(),
	})

	shop, err := loadCatalog(cfg)
	if err != nil {
		logg.Error(ctx, "failed to load catalog", err)
		os.Exit(1)
	}

	account, err := customers.NewAccount(cfg.Customer.Name, cfg.Customer.Balance)
	if err != nil {
		logg.Error(ctx, "failed to create customer account", err)
		os.Exit(1)
	}

	basket := cart.New()
	if err := basket.SetShippingSurcharge(cfg.Checkout.ShippingSurcharge); err != nil {
		logg.Error(ctx, "failed to configure cart", err)
		os.Exit(1)
	}

	printer := receipt.NewPrinter(os.Stdout)
	service, err := checkout.NewService(checkout.ServiceParams{
		Logger:      logg,
		Metrics:     metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer),
		Shipper:     printer,
		StockPolicy: cfg.Checkout.Policy(),
	})
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}

	logg.Info(ctx, "starting checkout demo")

	for _, o := range demoOrder {
		item, err := shop.Lookup(o.item)
		if err != nil {
			logg.Error(ctx, "catalog lookup failed", err)
			continue
		}
		if _, err := service.AddToCart(ctx, basket, item, o.quantity); err != nil {
			_ = printer.PrintFailure(err)
		}
	}

	result, err := service.Checkout(ctx, basket, account, cfg.Checkout.Now(time.Now))
	if err != nil {
		_ = printer.PrintFailure(err)
		os.Exit(2)
	}
	if err := printer.PrintReceipt(result); err != nil {
		logg.Error(ctx, "failed to print receipt", err)
		os.Exit(1)
	}
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.File == "" {
		return catalog.Build(catalog.DemoInputs(cfg.Checkout.Now(time.Now)))
	}
	inputs, err := catalog.LoadFile(cfg.Catalog.File)
	if err != nil {
		return nil, err
	}
	return catalog.Build(inputs)
}
