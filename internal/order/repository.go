package order

import (
	"context"

	"github.com/shopspring/decimal"
)

// CheckoutLine is one cart line read at checkout time, already joined with
// the current catalog price and variant description.
type CheckoutLine struct {
	ProductID   int64
	VariantID   *int64
	ProductName string
	ProductSlug string
	VariantInfo string
	Quantity    int
	Price       decimal.Decimal
}

// StaffFilter narrows the staff order listing.
type StaffFilter struct {
	Statuses        []string // empty = all statuses
	PaymentStatuses []string // empty = all payment statuses
	Limit           int
}

// Stats is the staff order dashboard summary.
type Stats struct {
	TotalOrders      int             `json:"total_orders"`
	PendingOrders    int             `json:"pending_orders"`
	ProcessingOrders int             `json:"processing_orders"`
	ShippedOrders    int             `json:"shipped_orders"`
	DeliveredOrders  int             `json:"delivered_orders"`
	CancelledOrders  int             `json:"cancelled_orders"`
	PaidOrders       int             `json:"paid_orders"`
	UnpaidOrders     int             `json:"unpaid_orders"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
}

// Tx is the set of operations available inside one order transaction. Every
// call sees and produces state scoped to that transaction; nothing is
// visible outside it until the enclosing Checkout or Transition commits.
type Tx interface {
	// CartLines reads the user's cart joined with current catalog prices.
	CartLines(ctx context.Context, userID int64) ([]CheckoutLine, error)
	// InsertOrder persists the order row and fills in its ID and timestamps.
	InsertOrder(ctx context.Context, o *Order) error
	// InsertItems persists the item snapshots and fills in their IDs.
	InsertItems(ctx context.Context, orderID int64, items []Item) error
	// ClearCart deletes the user's cart items; the cart row stays.
	ClearCart(ctx context.Context, userID int64) error

	// OrderForUpdate loads an order with its items, locking the order row
	// for the rest of the transaction.
	OrderForUpdate(ctx context.Context, orderNumber string) (*Order, error)
	// UserOrderForUpdate is OrderForUpdate restricted to the given owner.
	UserOrderForUpdate(ctx context.Context, userID int64, orderNumber string) (*Order, error)
	// UpdateOrder writes the order's mutable lifecycle fields back.
	UpdateOrder(ctx context.Context, o *Order) error

	// DeductStock removes each item's quantity from its stock counter,
	// recording a ledger entry per item.
	DeductStock(ctx context.Context, o *Order, actorID int64) error
	// RestoreStock adds each item's quantity back, recording a ledger
	// entry per item.
	RestoreStock(ctx context.Context, o *Order, actorID int64) error
}

// Store runs order transactions and serves order reads.
type Store interface {
	// Checkout runs fn in a serializable transaction, retrying on
	// serialization conflicts.
	Checkout(ctx context.Context, fn func(tx Tx) error) error
	// Transition runs fn in a read-committed transaction; fn is expected
	// to lock the order row via OrderForUpdate before mutating.
	Transition(ctx context.Context, fn func(tx Tx) error) error

	GetByNumber(ctx context.Context, orderNumber string) (*Order, error)
	GetUserOrder(ctx context.Context, userID int64, orderNumber string) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	ListAll(ctx context.Context, filter StaffFilter) ([]Order, error)
	Stats(ctx context.Context) (*Stats, error)
}
