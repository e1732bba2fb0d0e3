package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/models"
)

var ErrOrderNotFound = errors.New("order not found")

const orderColumns = `id, buyer_id, status, total_cents, created_at, updated_at`

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateWithItems writes the order, its line items, and the stock decrement
// in one transaction. Stock is guarded in SQL so two concurrent checkouts
// cannot oversell; a failed guard rolls the whole order back with
// ErrInsufficientStock.
func (r *OrderRepository) CreateWithItems(ctx context.Context, order models.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertOrder = `
		INSERT INTO orders (id, buyer_id, status, total_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	if _, err := tx.Exec(ctx, insertOrder, order.ID, order.BuyerID, order.Status, order.TotalCents); err != nil {
		return err
	}

	const insertItem = `
		INSERT INTO order_items (order_id, product_id, name, price_cents, quantity)
		VALUES ($1, $2, $3, $4, $5)
	`
	const decrementStock = `
		UPDATE products
		SET quantity = quantity - $2, sold = sold + $2, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
	`

	for _, item := range order.Items {
		if _, err := tx.Exec(ctx, insertItem, order.ID, item.ProductID, item.Name, item.PriceCents, item.Quantity); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, decrementStock, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrInsufficientStock
		}
	}

	return tx.Commit(ctx)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (models.Order, error) {
	const query = `
		SELECT ` + orderColumns + `
		FROM orders WHERE id = $1
	`
	order, err := r.scanOne(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return models.Order{}, err
	}

	items, err := r.itemsFor(ctx, []string{order.ID})
	if err != nil {
		return models.Order{}, err
	}
	order.Items = items[order.ID]
	return order, nil
}

func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]models.Order, error) {
	const query = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE buyer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, buyerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

func (r *OrderRepository) List(ctx context.Context, limit, offset int) ([]models.Order, error) {
	const query = `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	const query = `
		UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// Cancel cancels a single pending order and returns its items to stock.
func (r *OrderRepository) Cancel(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const cancel = `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`
	cmd, err := tx.Exec(ctx, cancel, models.OrderStatusCancelled, id, models.OrderStatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	const restock = `
		UPDATE products p
		SET quantity = p.quantity + i.quantity,
		    sold = GREATEST(p.sold - i.quantity, 0),
		    updated_at = NOW()
		FROM order_items i
		WHERE i.order_id = $1 AND p.id = i.product_id
	`
	if _, err := tx.Exec(ctx, restock, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ExpirePending cancels unpaid orders created before the cutoff and returns
// their stock to the shelf. Returns the ids of the cancelled orders.
func (r *OrderRepository) ExpirePending(ctx context.Context, cutoff time.Time) ([]string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const cancel = `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND created_at < $3
		RETURNING id
	`
	rows, err := tx.Query(ctx, cancel, models.OrderStatusCancelled, models.OrderStatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, tx.Commit(ctx)
	}

	const restock = `
		UPDATE products p
		SET quantity = p.quantity + i.total,
		    sold = GREATEST(p.sold - i.total, 0),
		    updated_at = NOW()
		FROM (
			SELECT product_id, SUM(quantity) AS total
			FROM order_items
			WHERE order_id = ANY($1)
			GROUP BY product_id
		) i
		WHERE p.id = i.product_id
	`
	if _, err := tx.Exec(ctx, restock, ids); err != nil {
		return nil, err
	}

	return ids, tx.Commit(ctx)
}

func (r *OrderRepository) scanOne(row pgx.Row) (models.Order, error) {
	var o models.Order
	if err := row.Scan(
		&o.ID,
		&o.BuyerID,
		&o.Status,
		&o.TotalCents,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, ErrOrderNotFound
		}
		return models.Order{}, err
	}
	return o, nil
}

func (r *OrderRepository) collect(ctx context.Context, rows pgx.Rows) ([]models.Order, error) {
	defer rows.Close()

	var orders []models.Order
	var ids []string
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(
			&o.ID,
			&o.BuyerID,
			&o.Status,
			&o.TotalCents,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *OrderRepository) itemsFor(ctx context.Context, orderIDs []string) (map[string][]models.OrderItem, error) {
	const query = `
		SELECT order_id, product_id, name, price_cents, quantity
		FROM order_items
		WHERE order_id = ANY($1)
	`
	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]models.OrderItem, len(orderIDs))
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.OrderID, &item.ProductID, &item.Name, &item.PriceCents, &item.Quantity); err != nil {
			return nil, err
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	return items, rows.Err()
}
