package inventory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/htetaung/storefront-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Adjust applies one manual stock adjustment: the counter update and the
// audit insert commit or roll back together.
func (r *PostgresRepository) Adjust(ctx context.Context, req AdjustRequest) (*Adjustment, error) {
	var adj *Adjustment
	err := database.WithTransaction(ctx, r.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var err error
		adj, err = ApplyAdjustment(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

// ApplyAdjustment runs one ledger entry inside the caller's transaction. The
// stock write is a single atomic increment-by-delta statement, so concurrent
// adjustments against the same row cannot lose updates; stock is not clamped
// and may go negative.
func ApplyAdjustment(ctx context.Context, q database.Queryer, req AdjustRequest) (*Adjustment, error) {
	var newStock int

	switch req.Target.Kind {
	case TargetVariant:
		err := q.QueryRowContext(ctx,
			`UPDATE product_variants SET stock = stock + $1
			 WHERE id = $2 AND product_id = $3
			 RETURNING stock`,
			req.Quantity, req.Target.VariantID, req.Target.ProductID).Scan(&newStock)
		if err == sql.ErrNoRows {
			return nil, ErrVariantNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("adjust variant stock: %w", err)
		}
	default:
		err := q.QueryRowContext(ctx,
			`UPDATE products SET stock = stock + $1, updated_at = NOW()
			 WHERE id = $2
			 RETURNING stock`,
			req.Quantity, req.Target.ProductID).Scan(&newStock)
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("adjust product stock: %w", err)
		}
	}

	adj := &Adjustment{
		ProductID:     req.Target.ProductID,
		Type:          req.Type,
		Quantity:      req.Quantity,
		Reason:        req.Reason,
		AdjustedBy:    req.ActorID,
		PreviousStock: newStock - req.Quantity,
		NewStock:      newStock,
	}

	var variantID any
	if req.Target.Kind == TargetVariant {
		adj.VariantID = &req.Target.VariantID
		variantID = req.Target.VariantID
	}

	err := q.QueryRowContext(ctx,
		`INSERT INTO stock_adjustments
		   (product_id, variant_id, adjustment_type, quantity, reason, adjusted_by, previous_stock, new_stock, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		 RETURNING id, created_at`,
		adj.ProductID, variantID, adj.Type, adj.Quantity, adj.Reason, adj.AdjustedBy,
		adj.PreviousStock, adj.NewStock).
		Scan(&adj.ID, &adj.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("record adjustment: %w", err)
	}

	return adj, nil
}

// DeductForOrder removes each line's quantity from its stock counter,
// recording one ledger entry per line. Runs in the caller's transaction.
func DeductForOrder(ctx context.Context, q database.Queryer, orderNumber string, lines []OrderLine, actorID int64) error {
	for _, line := range lines {
		_, err := ApplyAdjustment(ctx, q, AdjustRequest{
			Target:   line.Target,
			Quantity: -line.Quantity,
			Type:     KindRemove,
			Reason:   fmt.Sprintf("Stock deducted for order %s", orderNumber),
			ActorID:  actorID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// RestoreForOrder adds each line's quantity back, recording one ledger
// entry per line. Runs in the caller's transaction.
func RestoreForOrder(ctx context.Context, q database.Queryer, orderNumber string, lines []OrderLine, actorID int64) error {
	for _, line := range lines {
		_, err := ApplyAdjustment(ctx, q, AdjustRequest{
			Target:   line.Target,
			Quantity: line.Quantity,
			Type:     KindReturn,
			Reason:   fmt.Sprintf("Stock restored for order %s", orderNumber),
			ActorID:  actorID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) History(ctx context.Context, filter HistoryFilter) ([]Adjustment, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, product_id, variant_id, adjustment_type, quantity, reason, adjusted_by, previous_stock, new_stock, created_at
		FROM stock_adjustments
		WHERE ($1 = 0 OR product_id = $1)
		  AND (cardinality($2::text[]) = 0 OR adjustment_type = ANY($2))
		ORDER BY created_at DESC, id DESC
		LIMIT $3`

	types := filter.Types
	if types == nil {
		types = []string{}
	}
	rows, err := r.db.QueryContext(ctx, query, filter.ProductID, pq.Array(types), limit)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()

	adjustments := make([]Adjustment, 0)
	for rows.Next() {
		var adj Adjustment
		if err := rows.Scan(&adj.ID, &adj.ProductID, &adj.VariantID, &adj.Type, &adj.Quantity,
			&adj.Reason, &adj.AdjustedBy, &adj.PreviousStock, &adj.NewStock, &adj.CreatedAt); err != nil {
			return nil, err
		}
		adjustments = append(adjustments, adj)
	}
	return adjustments, rows.Err()
}

// Stats summarises inventory health for the staff dashboard.
type Stats struct {
	TotalProducts  int `json:"total_products"`
	ActiveProducts int `json:"active_products"`
	OutOfStock     int `json:"out_of_stock"`
	LowStock       int `json:"low_stock"`
}

func (r *PostgresRepository) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active),
		       COUNT(*) FILTER (WHERE stock <= 0),
		       COUNT(*) FILTER (WHERE stock > 0 AND stock < 10)
		FROM products`).
		Scan(&s.TotalProducts, &s.ActiveProducts, &s.OutOfStock, &s.LowStock)
	if err != nil {
		return nil, fmt.Errorf("inventory stats: %w", err)
	}
	return &s, nil
}
