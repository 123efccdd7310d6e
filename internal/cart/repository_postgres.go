package cart

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/htetaung/storefront-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const cartItemsQuery = `
	SELECT ci.id, ci.product_id, ci.variant_id, ci.quantity,
	       p.name, p.slug, p.base_price,
	       v.color, v.size, v.price_modifier
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
	LEFT JOIN product_variants v ON v.id = ci.variant_id
	WHERE ci.cart_id = $1
	ORDER BY ci.id`

func (r *PostgresRepository) GetOrCreate(ctx context.Context, userID int64) (Cart, error) {
	cartID, err := r.ensureCart(ctx, r.db, userID)
	if err != nil {
		return Cart{}, err
	}
	return r.load(ctx, cartID, userID)
}

func (r *PostgresRepository) AddItem(ctx context.Context, userID, productID int64, variantID *int64, quantity int) (Cart, error) {
	var cartID int64
	err := database.WithTransaction(ctx, r.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var err error
		cartID, err = r.ensureCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		// One line per (product, variant): bump quantity when the pair
		// already exists, insert otherwise.
		result, err := tx.ExecContext(ctx,
			`UPDATE cart_items SET quantity = quantity + $1
			 WHERE cart_id = $2 AND product_id = $3 AND variant_id IS NOT DISTINCT FROM $4`,
			quantity, cartID, productID, variantID)
		if err != nil {
			return fmt.Errorf("increment cart item: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cart_items (cart_id, product_id, variant_id, quantity)
				 VALUES ($1, $2, $3, $4)`,
				cartID, productID, variantID, quantity); err != nil {
				return fmt.Errorf("insert cart item: %w", err)
			}
		}

		_, err = tx.ExecContext(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID)
		return err
	})
	if err != nil {
		return Cart{}, err
	}
	return r.load(ctx, cartID, userID)
}

func (r *PostgresRepository) UpdateItem(ctx context.Context, userID, itemID int64, quantity int) (Cart, error) {
	var query string
	if quantity == 0 {
		query = `DELETE FROM cart_items ci USING carts c
		         WHERE ci.id = $1 AND ci.cart_id = c.id AND c.user_id = $2`
	} else {
		query = `UPDATE cart_items ci SET quantity = $3 FROM carts c
		         WHERE ci.id = $1 AND ci.cart_id = c.id AND c.user_id = $2`
	}

	args := []any{itemID, userID}
	if quantity != 0 {
		args = append(args, quantity)
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Cart{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Cart{}, err
	}
	if affected == 0 {
		return Cart{}, ErrItemNotFound
	}
	return r.GetOrCreate(ctx, userID)
}

func (r *PostgresRepository) RemoveItem(ctx context.Context, userID, itemID int64) (Cart, error) {
	return r.UpdateItem(ctx, userID, itemID, 0)
}

func (r *PostgresRepository) Clear(ctx context.Context, userID int64) (Cart, error) {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items ci USING carts c
		 WHERE ci.cart_id = c.id AND c.user_id = $1`, userID); err != nil {
		return Cart{}, err
	}
	return r.GetOrCreate(ctx, userID)
}

// ensureCart returns the user's cart id, creating the row on first access.
func (r *PostgresRepository) ensureCart(ctx context.Context, q database.Queryer, userID int64) (int64, error) {
	var cartID int64
	err := q.QueryRowContext(ctx,
		`INSERT INTO carts (user_id, created_at, updated_at)
		 VALUES ($1, NOW(), NOW())
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING id`, userID).Scan(&cartID)
	if err != nil {
		return 0, fmt.Errorf("ensure cart: %w", err)
	}
	return cartID, nil
}

func (r *PostgresRepository) load(ctx context.Context, cartID, userID int64) (Cart, error) {
	c := Cart{ID: cartID, UserID: userID}

	if err := r.db.QueryRowContext(ctx,
		`SELECT updated_at FROM carts WHERE id = $1`, cartID).Scan(&c.UpdatedAt); err != nil {
		return Cart{}, err
	}

	rows, err := r.db.QueryContext(ctx, cartItemsQuery, cartID)
	if err != nil {
		return Cart{}, fmt.Errorf("load cart items: %w", err)
	}
	defer rows.Close()

	c.Items = make([]Item, 0)
	for rows.Next() {
		var (
			item     Item
			color    sql.NullString
			size     sql.NullString
			modifier decimal.NullDecimal
		)
		if err := rows.Scan(&item.ID, &item.ProductID, &item.VariantID, &item.Quantity,
			&item.ProductName, &item.ProductSlug, &item.Price,
			&color, &size, &modifier); err != nil {
			return Cart{}, err
		}
		if item.VariantID != nil {
			item.Color = color.String
			item.Size = size.String
			if modifier.Valid {
				item.Price = item.Price.Add(modifier.Decimal)
			}
		}
		item.Subtotal = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		c.Items = append(c.Items, item)
	}
	return c, rows.Err()
}
