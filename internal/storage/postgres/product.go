package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mateusvc/loja-escolar/internal/domain/money"
	"github.com/mateusvc/loja-escolar/internal/domain/product"
)

const (
	productColumns = `id, name, description, price, stock, category, sku, image_url, created_at, updated_at`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	countProductsSQL = `SELECT count(*) FROM products
		WHERE ($1 = '' OR lower(name) LIKE '%' || lower($1) || '%')`

	createProductSQL = `INSERT INTO products (name, description, price, stock, category, sku, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	updateProductSQL = `UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, category = $6,
		    sku = $7, image_url = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
)

// uniqueViolation is the SQLSTATE for duplicate key errors, used to map SKU
// conflicts.
const uniqueViolation = "23505"

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns one catalog page plus the total match count. Sort column and
// direction come from a normalized Query, never from raw client input.
func (r *ProductRepository) List(ctx context.Context, q product.Query) ([]product.Product, int, error) {
	q = q.Normalize()

	var total int
	if err := r.pool.QueryRow(ctx, countProductsSQL, q.Search).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "counting products")
	}

	orderBy := "name"
	if q.Sort == product.SortByPrice {
		orderBy = "price"
	}
	direction := "ASC"
	if q.Descending {
		direction = "DESC"
	}

	listSQL := `SELECT ` + productColumns + ` FROM products
		WHERE ($1 = '' OR lower(name) LIKE '%' || lower($1) || '%')
		ORDER BY ` + orderBy + ` ` + direction + `, id
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, listSQL, q.Search, q.PageSize, (q.Page-1)*q.PageSize)
	if err != nil {
		return nil, 0, errors.Wrap(err, "listing products")
	}
	items, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, 0, errors.Wrap(err, "scanning products")
	}
	return items, total, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting product %d", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting product %d", id)
	}
	return &p, nil
}

// Create inserts a product and fills its generated id and timestamps.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	err := r.pool.QueryRow(ctx, createProductSQL,
		p.Name, p.Description, p.Price.Decimal(), p.Stock, p.Category, p.SKU, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return product.ErrSKUConflict
		}
		return errors.Wrap(err, "creating product")
	}
	return nil
}

// Update rewrites every mutable column of a product.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	err := r.pool.QueryRow(ctx, updateProductSQL,
		p.ID, p.Name, p.Description, p.Price.Decimal(), p.Stock, p.Category, p.SKU, p.ImageURL,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.ErrNotFound
		}
		if isUniqueViolation(err) {
			return product.ErrSKUConflict
		}
		return errors.Wrapf(err, "updating product %d", p.ID)
	}
	return nil
}

// Delete removes a product from the catalog.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return errors.Wrapf(err, "deleting product %d", id)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p     product.Product
		price decimal.Decimal
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &price, &p.Stock,
		&p.Category, &p.SKU, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	p.Price = money.FromDecimal(price)
	return p, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
