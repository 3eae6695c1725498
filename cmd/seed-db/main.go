// Command seed-db provisions a demo location: a coupon catalog, an open
// order, and a default terminal API key. It is idempotent and safe to rerun.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/zestpos/coupon-service/internal/api"
	"github.com/zestpos/coupon-service/internal/domain/auth"
	"github.com/zestpos/coupon-service/internal/domain/coupon"
	"github.com/zestpos/coupon-service/internal/domain/order"
	"github.com/zestpos/coupon-service/internal/storage/postgres"
)

const demoLocationID = "demo-location"

func main() {
	var (
		databaseURL  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or ZESTPOS_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or ZESTPOS_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("ZESTPOS_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or ZESTPOS_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("ZESTPOS_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	catalog := postgres.NewCatalogRepository(pool)
	orders := postgres.NewOrderRepository(pool)
	apikeys := postgres.NewAPIKeyRepository(pool)

	if err := seedCatalog(ctx, catalog); err != nil {
		return errors.Wrap(err, "seed catalog")
	}
	if err := seedDemoOrder(ctx, orders); err != nil {
		return errors.Wrap(err, "seed demo order")
	}
	if err := seedAPIKey(ctx, apikeys, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}
	return nil
}

func seedCatalog(ctx context.Context, catalog *postgres.CatalogRepository) error {
	slog.Info("seeding demo catalog", slog.String("location", demoLocationID))

	regulars := []coupon.RegularCoupon{
		{
			ID:    "flat-50",
			Name:  "FLAT50",
			Kind:  coupon.KindFixed,
			Value: decimal.NewFromInt(50),
		},
		{
			ID:          "ten-off",
			Name:        "TENOFF",
			Kind:        coupon.KindPercentage,
			Value:       decimal.NewFromInt(10),
			MaxDiscount: decimal.NewFromInt(100),
			Description: "10% off, up to 100",
		},
		{
			ID:             "big-spender",
			Name:           "BIGSPENDER",
			Kind:           coupon.KindPercentage,
			Value:          decimal.NewFromInt(15),
			MinOrderAmount: decimal.NewFromInt(1000),
			Description:    "15% off orders of 1000 or more",
		},
	}
	for i, c := range regulars {
		if err := catalog.UpsertRegular(ctx, demoLocationID, c, i); err != nil {
			return err
		}
		slog.Info("upserted coupon", slog.String("id", c.ID), slog.String("name", c.Name))
	}

	dishes := []coupon.DishCoupon{
		{ID: "biryani-20", Code: "BIR20", DishName: "Chicken Biryani", Percent: decimal.NewFromInt(20)},
		{ID: "friedrice-15", Code: "FR15", DishName: "Fried Rice", Percent: decimal.NewFromInt(15)},
		{ID: "momos-10", Code: "MOMO10", DishName: "Steamed Momos", Percent: decimal.NewFromInt(10)},
	}
	for i, dc := range dishes {
		if err := catalog.UpsertDish(ctx, demoLocationID, dc, i); err != nil {
			return err
		}
		slog.Info("upserted dish coupon", slog.String("id", dc.ID), slog.String("dish", dc.DishName))
	}
	return nil
}

func seedDemoOrder(ctx context.Context, orders *postgres.OrderRepository) error {
	slog.Info("seeding demo order")

	o := &order.Order{
		ID:         "demo-order",
		LocationID: demoLocationID,
		TableName:  "Table 4",
		Status:     order.StatusOpen,
		Items: []coupon.LineItem{
			{Name: "Chicken Biryani", Price: decimal.NewFromInt(180), Quantity: 2},
			{Name: "Fried Rice", Price: decimal.NewFromInt(150), Quantity: 1},
			{Name: "Steamed Momos", Price: decimal.NewFromInt(120), Quantity: 1, PortionSize: coupon.PortionHalf},
		},
	}
	o.Total = o.Subtotal()

	if err := orders.Create(ctx, o); err != nil {
		return err
	}
	slog.Info("created demo order", slog.String("id", o.ID), slog.String("total", o.Total.String()))
	return nil
}

func seedAPIKey(ctx context.Context, apikeys *postgres.APIKeyRepository, apiKey, pepper string) error {
	slog.Info("seeding default API key")

	info := auth.APIKeyInfo{
		ID:      "default",
		KeyHash: api.HashAPIKey([]byte(pepper), apiKey),
		Name:    "Default terminal key",
		Scopes:  []string{"coupons"},
	}
	if err := apikeys.Upsert(ctx, info); err != nil {
		return err
	}
	slog.Info("upserted API key", slog.String("id", info.ID), slog.String("name", info.Name))
	return nil
}
