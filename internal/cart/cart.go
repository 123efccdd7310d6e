package cart

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrVariantMismatch = errors.New("variant does not belong to product")
)

// Cart holds a user's pending line items. One cart exists per user, created
// lazily on first access; it is emptied, not deleted, at checkout.
type Cart struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item is one (product, variant, quantity) line. Price and subtotal reflect
// current catalog prices; snapshots are only taken at order creation.
type Item struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	VariantID   *int64          `json:"variant_id,omitempty"`
	ProductName string          `json:"product_name"`
	ProductSlug string          `json:"product_slug"`
	Color       string          `json:"color,omitempty"`
	Size        string          `json:"size,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Total is the sum of line subtotals.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// ItemCount is the total quantity across lines.
func (c Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}
