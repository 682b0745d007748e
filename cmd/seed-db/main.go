// Command seed-db loads the catalog from a JSON file, seeds the standard
// discount coupons, and creates the admin account. All writes are upserts,
// so re-running is safe.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mateusvc/loja-escolar/internal/auth"
	"github.com/mateusvc/loja-escolar/internal/domain/money"
	"github.com/mateusvc/loja-escolar/internal/storage/postgres"
)

type productJSON struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	SKU         *string `json:"sku"`
	ImageURL    *string `json:"image_url"`
}

type couponSeed struct {
	code            string
	discountPercent int
}

func main() {
	var (
		databaseURL   string
		productsFile  string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&adminEmail, "admin-email", "admin@loja.local", "admin account email")
	flag.StringVar(&adminPassword, "admin-password", "", "admin account password (or LOJA_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("LOJA_SEED_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or LOJA_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, adminEmail, adminPassword string) error {
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

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedCoupons(ctx, pool); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	if err := seedAdmin(ctx, pool, adminEmail, adminPassword); err != nil {
		return errors.Wrap(err, "seed admin")
	}

	return nil
}

const upsertProductSQL = `
INSERT INTO products (name, description, price, stock, category, sku, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (sku) WHERE sku IS NOT NULL DO UPDATE SET
	name = EXCLUDED.name,
	description = EXCLUDED.description,
	price = EXCLUDED.price,
	category = EXCLUDED.category,
	image_url = EXCLUDED.image_url,
	updated_at = now()
`

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		price, err := money.FromString(p.Price)
		if err != nil {
			return errors.Wrapf(err, "product %q: bad price %q", p.Name, p.Price)
		}
		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.Name, p.Description, price.Decimal(), p.Stock, p.Category, p.SKU, p.ImageURL,
		); err != nil {
			return errors.Wrapf(err, "upsert product %q", p.Name)
		}
		slog.Info("upserted product", slog.String("name", p.Name))
	}

	return nil
}

const upsertCouponSQL = `
INSERT INTO coupons (code, discount_percent, active)
VALUES ($1, $2, true)
ON CONFLICT (lower(code)) DO UPDATE SET
	discount_percent = EXCLUDED.discount_percent,
	active = true
`

func seedCoupons(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding coupons")

	coupons := []couponSeed{
		{code: "ALUNO10", discountPercent: 10},
		{code: "VOLTA15", discountPercent: 15},
		{code: "PROFESSOR20", discountPercent: 20},
	}
	for _, c := range coupons {
		if _, err := pool.Exec(ctx, upsertCouponSQL, c.code, c.discountPercent); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.code)
		}
		slog.Info("upserted coupon", slog.String("code", c.code), slog.Int("percent", c.discountPercent))
	}

	return nil
}

const upsertAdminSQL = `
INSERT INTO users (name, email, password_hash)
VALUES ('Administrador', $1, $2)
ON CONFLICT (lower(email)) DO UPDATE SET password_hash = EXCLUDED.password_hash
`

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}
	if _, err := pool.Exec(ctx, upsertAdminSQL, email, hash); err != nil {
		return errors.Wrap(err, "upsert admin")
	}

	slog.Info("upserted admin account", slog.String("email", email))
	return nil
}
