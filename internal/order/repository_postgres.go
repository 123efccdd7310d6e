package order

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/htetaung/storefront-backend/internal/database"
	"github.com/htetaung/storefront-backend/internal/inventory"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Checkout reads the cart, writes the order, and moves stock in one
// serializable transaction. Serialization conflicts from concurrent
// checkouts against the same stock rows are retried.
func (s *PostgresStore) Checkout(ctx context.Context, fn func(tx Tx) error) error {
	opts := database.TxOptions{
		IsolationLevel: sql.LevelSerializable,
		MaxRetries:     3,
	}
	return database.WithRetry(ctx, s.db, opts, func(tx *sql.Tx) error {
		return fn(&pgTx{q: tx})
	})
}

// Transition runs a lifecycle change. Read committed is enough here because
// the order row is locked with FOR UPDATE and the stock writes are atomic
// increments.
func (s *PostgresStore) Transition(ctx context.Context, fn func(tx Tx) error) error {
	return database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		return fn(&pgTx{q: tx})
	})
}

type pgTx struct {
	q database.Queryer
}

func (t *pgTx) CartLines(ctx context.Context, userID int64) ([]CheckoutLine, error) {
	rows, err := t.q.QueryContext(ctx, `
		SELECT ci.product_id, ci.variant_id, p.name, p.slug, ci.quantity,
		       p.base_price, v.price_modifier, v.color, v.size
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		JOIN products p ON p.id = ci.product_id
		LEFT JOIN product_variants v ON v.id = ci.variant_id
		WHERE c.user_id = $1
		ORDER BY ci.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("read cart lines: %w", err)
	}
	defer rows.Close()

	lines := make([]CheckoutLine, 0)
	for rows.Next() {
		var (
			line     CheckoutLine
			modifier decimal.NullDecimal
			color    sql.NullString
			size     sql.NullString
		)
		if err := rows.Scan(&line.ProductID, &line.VariantID, &line.ProductName, &line.ProductSlug,
			&line.Quantity, &line.Price, &modifier, &color, &size); err != nil {
			return nil, err
		}
		if line.VariantID != nil {
			if modifier.Valid {
				line.Price = line.Price.Add(modifier.Decimal)
			}
			line.VariantInfo = FormatVariantInfo(color.String, size.String)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	err := t.q.QueryRowContext(ctx, `
		INSERT INTO orders
		  (order_number, user_id, status, payment_status, payment_method,
		   subtotal, tax, shipping_cost, total,
		   full_name, email, phone, address, city, postal_code, country,
		   paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		o.OrderNumber, o.UserID, o.Status, o.PaymentStatus, o.PaymentMethod,
		o.Subtotal, o.Tax, o.ShippingCost, o.Total,
		o.Shipping.FullName, o.Shipping.Email, o.Shipping.Phone, o.Shipping.Address,
		o.Shipping.City, o.Shipping.PostalCode, o.Shipping.Country,
		o.PaidAt).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (t *pgTx) InsertItems(ctx context.Context, orderID int64, items []Item) error {
	for i := range items {
		items[i].OrderID = orderID
		err := t.q.QueryRowContext(ctx, `
			INSERT INTO order_items
			  (order_id, product_id, variant_id, product_name, product_slug, variant_info, quantity, price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			orderID, items[i].ProductID, items[i].VariantID, items[i].ProductName,
			items[i].ProductSlug, items[i].VariantInfo, items[i].Quantity,
			items[i].Price, items[i].Subtotal).
			Scan(&items[i].ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (t *pgTx) ClearCart(ctx context.Context, userID int64) error {
	_, err := t.q.ExecContext(ctx, `
		DELETE FROM cart_items
		USING carts
		WHERE cart_items.cart_id = carts.id AND carts.user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

const orderColumns = `id, order_number, user_id, status, payment_status, payment_method,
	subtotal, tax, shipping_cost, total,
	full_name, email, phone, address, city, postal_code, country,
	stock_restored, is_received_back, cancelled_by, cancellation_reason,
	paid_at, shipped_at, delivered_at, cancelled_at, received_back_at,
	created_at, updated_at`

func (t *pgTx) OrderForUpdate(ctx context.Context, orderNumber string) (*Order, error) {
	return t.lockOrder(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number = $1 FOR UPDATE`,
		orderNumber)
}

func (t *pgTx) UserOrderForUpdate(ctx context.Context, userID int64, orderNumber string) (*Order, error) {
	return t.lockOrder(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number = $1 AND user_id = $2 FOR UPDATE`,
		orderNumber, userID)
}

func (t *pgTx) lockOrder(ctx context.Context, query string, args ...any) (*Order, error) {
	o, err := scanOrder(t.q.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}
	if err := loadItems(ctx, t.q, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (t *pgTx) UpdateOrder(ctx context.Context, o *Order) error {
	err := t.q.QueryRowContext(ctx, `
		UPDATE orders SET
		  status = $1, payment_status = $2, payment_method = $3,
		  stock_restored = $4, is_received_back = $5,
		  cancelled_by = $6, cancellation_reason = $7,
		  paid_at = $8, shipped_at = $9, delivered_at = $10,
		  cancelled_at = $11, received_back_at = $12,
		  updated_at = NOW()
		WHERE id = $13
		RETURNING updated_at`,
		o.Status, o.PaymentStatus, o.PaymentMethod,
		o.StockRestored, o.IsReceivedBack,
		o.CancelledBy, o.CancellationReason,
		o.PaidAt, o.ShippedAt, o.DeliveredAt,
		o.CancelledAt, o.ReceivedBackAt,
		o.ID).
		Scan(&o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

func (t *pgTx) DeductStock(ctx context.Context, o *Order, actorID int64) error {
	return inventory.DeductForOrder(ctx, t.q, o.OrderNumber, ledgerLines(o), actorID)
}

func (t *pgTx) RestoreStock(ctx context.Context, o *Order, actorID int64) error {
	return inventory.RestoreForOrder(ctx, t.q, o.OrderNumber, ledgerLines(o), actorID)
}

func ledgerLines(o *Order) []inventory.OrderLine {
	lines := make([]inventory.OrderLine, 0, len(o.Items))
	for _, sl := range o.StockLines() {
		target := inventory.ProductTarget(sl.ProductID)
		if sl.VariantID != nil {
			target = inventory.VariantTarget(sl.ProductID, *sl.VariantID)
		}
		lines = append(lines, inventory.OrderLine{Target: target, Quantity: sl.Quantity})
	}
	return lines
}

func (s *PostgresStore) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	return s.getOne(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number = $1`,
		orderNumber)
}

func (s *PostgresStore) GetUserOrder(ctx context.Context, userID int64, orderNumber string) (*Order, error) {
	return s.getOne(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number = $1 AND user_id = $2`,
		orderNumber, userID)
}

func (s *PostgresStore) getOne(ctx context.Context, query string, args ...any) (*Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := loadItems(ctx, s.db, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return s.collect(ctx, rows)
}

func (s *PostgresStore) ListAll(ctx context.Context, filter StaffFilter) ([]Order, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	statuses := filter.Statuses
	if statuses == nil {
		statuses = []string{}
	}
	paymentStatuses := filter.PaymentStatuses
	if paymentStatuses == nil {
		paymentStatuses = []string{}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE (cardinality($1::text[]) = 0 OR status = ANY($1))
		  AND (cardinality($2::text[]) = 0 OR payment_status = ANY($2))
		ORDER BY created_at DESC, id DESC
		LIMIT $3`,
		pq.Array(statuses), pq.Array(paymentStatuses), limit)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	return s.collect(ctx, rows)
}

func (s *PostgresStore) collect(ctx context.Context, rows *sql.Rows) ([]Order, error) {
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := loadItems(ctx, s.db, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	var (
		stats   Stats
		revenue decimal.NullDecimal
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'processing'),
		       COUNT(*) FILTER (WHERE status = 'shipped'),
		       COUNT(*) FILTER (WHERE status = 'delivered'),
		       COUNT(*) FILTER (WHERE status = 'cancelled'),
		       COUNT(*) FILTER (WHERE payment_status = 'paid'),
		       COUNT(*) FILTER (WHERE payment_status = 'unpaid'),
		       SUM(total) FILTER (WHERE payment_status = 'paid')
		FROM orders`).
		Scan(&stats.TotalOrders, &stats.PendingOrders, &stats.ProcessingOrders,
			&stats.ShippedOrders, &stats.DeliveredOrders, &stats.CancelledOrders,
			&stats.PaidOrders, &stats.UnpaidOrders, &revenue)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	if revenue.Valid {
		stats.TotalRevenue = revenue.Decimal
	} else {
		stats.TotalRevenue = decimal.Zero
	}
	return &stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.Subtotal, &o.Tax, &o.ShippingCost, &o.Total,
		&o.Shipping.FullName, &o.Shipping.Email, &o.Shipping.Phone, &o.Shipping.Address,
		&o.Shipping.City, &o.Shipping.PostalCode, &o.Shipping.Country,
		&o.StockRestored, &o.IsReceivedBack, &o.CancelledBy, &o.CancellationReason,
		&o.PaidAt, &o.ShippedAt, &o.DeliveredAt, &o.CancelledAt, &o.ReceivedBackAt,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func loadItems(ctx context.Context, q database.Queryer, o *Order) error {
	rows, err := q.QueryContext(ctx, `
		SELECT id, order_id, product_id, variant_id, product_name, product_slug, variant_info, quantity, price, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`, o.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	o.Items = make([]Item, 0)
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.VariantID,
			&item.ProductName, &item.ProductSlug, &item.VariantInfo,
			&item.Quantity, &item.Price, &item.Subtotal); err != nil {
			return err
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}
