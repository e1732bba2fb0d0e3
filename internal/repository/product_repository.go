package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/models"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

const productColumns = `id, category_id, name, slug, description, price_cents, quantity, photo_key, shipping, sold, created_at, updated_at`

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Create(ctx context.Context, product models.Product) error {
	const query = `
		INSERT INTO products (
			id, category_id, name, slug, description, price_cents, quantity, photo_key, shipping, sold, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, 0, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.CategoryID,
		product.Name,
		product.Slug,
		product.Description,
		product.PriceCents,
		product.Quantity,
		product.PhotoKey,
		product.Shipping,
	)
	return err
}

func (r *ProductRepository) Update(ctx context.Context, product models.Product) error {
	const query = `
		UPDATE products
		SET category_id = $2, name = $3, slug = $4, description = $5,
		    price_cents = $6, quantity = $7, shipping = $8, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		product.ID,
		product.CategoryID,
		product.Name,
		product.Slug,
		product.Description,
		product.PriceCents,
		product.Quantity,
		product.Shipping,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) UpdatePhotoKey(ctx context.Context, id, photoKey string) error {
	const query = `
		UPDATE products SET photo_key = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, photoKey)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Delete removes the product and returns the deleted row so callers can
// clean up its photo object.
func (r *ProductRepository) Delete(ctx context.Context, id string) (models.Product, error) {
	const query = `
		DELETE FROM products WHERE id = $1
		RETURNING ` + productColumns + `
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (models.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (models.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products WHERE slug = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, slug))
}

// List returns products ordered by most recent arrival.
func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]models.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return r.scanMany(rows)
}

// ListBySold returns products ordered by units sold, for the best-seller shelf.
func (r *ProductRepository) ListBySold(ctx context.Context, limit, offset int) ([]models.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY sold DESC, created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return r.scanMany(rows)
}

func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID string, limit, offset int) ([]models.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE category_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, categoryID, limit, offset)
	if err != nil {
		return nil, err
	}
	return r.scanMany(rows)
}

// Related returns other products from the same category, newest first.
func (r *ProductRepository) Related(ctx context.Context, categoryID, excludeID string, limit int) ([]models.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE category_id = $1 AND id != $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, categoryID, excludeID, limit)
	if err != nil {
		return nil, err
	}
	return r.scanMany(rows)
}

func (r *ProductRepository) Search(ctx context.Context, term string, limit, offset int) ([]models.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, term, limit, offset)
	if err != nil {
		return nil, err
	}
	return r.scanMany(rows)
}

func (r *ProductRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
	`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	return r.scanMany(rows)
}

// PhotoKeys returns every photo key referenced by a product, for the orphan
// sweep.
func (r *ProductRepository) PhotoKeys(ctx context.Context) (map[string]struct{}, error) {
	const query = `
		SELECT photo_key FROM products WHERE photo_key != ''
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys[key] = struct{}{}
	}
	return keys, rows.Err()
}

func (r *ProductRepository) scanOne(row pgx.Row) (models.Product, error) {
	var p models.Product
	if err := row.Scan(
		&p.ID,
		&p.CategoryID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.PriceCents,
		&p.Quantity,
		&p.PhotoKey,
		&p.Shipping,
		&p.Sold,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, err
	}
	return p, nil
}

func (r *ProductRepository) scanMany(rows pgx.Rows) ([]models.Product, error) {
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID,
			&p.CategoryID,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.PriceCents,
			&p.Quantity,
			&p.PhotoKey,
			&p.Shipping,
			&p.Sold,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
