package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrAlreadyCancelled = errors.New("order is already cancelled")
	ErrAlreadyShipped   = errors.New("shipped orders cannot be cancelled")
	ErrNeverShipped     = errors.New("order has not been shipped")
	ErrAlreadyReceived  = errors.New("order is already marked as received back")
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

func ValidPaymentMethod(m string) bool {
	switch m {
	case "cash", "card", "bank_transfer", "eft", "in_store":
		return true
	}
	return false
}

// ShippingInfo is copied onto the order at checkout. Later profile edits
// never change a placed order.
type ShippingInfo struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Order struct {
	ID          int64  `json:"id"`
	OrderNumber string `json:"order_number"`
	UserID      int64  `json:"-"`

	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	PaymentMethod string `json:"payment_method"`

	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Total        decimal.Decimal `json:"total"`

	Shipping ShippingInfo `json:"shipping"`

	// StockRestored gates both restoration paths (unshipped cancellation
	// and received-back) so stock comes back at most once per order.
	StockRestored      bool   `json:"-"`
	IsReceivedBack     bool   `json:"is_received_back"`
	CancelledBy        *int64 `json:"cancelled_by,omitempty"`
	CancellationReason string `json:"cancellation_reason,omitempty"`

	PaidAt         *time.Time `json:"paid_at"`
	ShippedAt      *time.Time `json:"shipped_at"`
	DeliveredAt    *time.Time `json:"delivered_at"`
	CancelledAt    *time.Time `json:"cancelled_at"`
	ReceivedBackAt *time.Time `json:"received_back_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Items []Item `json:"items"`
}

// Item is a point-in-time snapshot of a cart line. Name, variant
// description, price and subtotal are copied by value so catalog edits
// never rewrite order history.
type Item struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"-"`
	ProductID   int64           `json:"product_id"`
	VariantID   *int64          `json:"variant_id"`
	ProductName string          `json:"product_name"`
	ProductSlug string          `json:"product_slug"`
	VariantInfo string          `json:"variant_info"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

var (
	taxRate           = decimal.NewFromFloat(0.08)
	freeShippingFloor = decimal.NewFromInt(50)
	flatShipping      = decimal.NewFromInt(10)
)

// ComputeTotals derives the frozen monetary fields from a cart subtotal:
// flat 8% tax rounded to cents, and a 10.00 shipping charge waived at
// subtotals of 50.00 and above.
func ComputeTotals(subtotal decimal.Decimal) (tax, shipping, total decimal.Decimal) {
	tax = subtotal.Mul(taxRate).Round(2)
	shipping = decimal.Zero
	if subtotal.LessThan(freeShippingFloor) {
		shipping = flatShipping
	}
	total = subtotal.Add(tax).Add(shipping)
	return tax, shipping, total
}

// NewOrderNumber returns a fresh opaque token like "ORD-3FA85F64".
func NewOrderNumber() string {
	u := uuid.New()
	return fmt.Sprintf("ORD-%X", u[:4])
}

// FormatVariantInfo renders the human-readable variant description stored
// on an order item, e.g. "Color: Red, Size: M".
func FormatVariantInfo(color, size string) string {
	parts := make([]string, 0, 2)
	if color != "" {
		parts = append(parts, "Color: "+color)
	}
	if size != "" {
		parts = append(parts, "Size: "+size)
	}
	return strings.Join(parts, ", ")
}
