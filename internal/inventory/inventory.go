package inventory

import (
	"errors"
	"time"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
	ErrInvalidKind     = errors.New("invalid adjustment type")
	ErrZeroQuantity    = errors.New("quantity must not be zero")
)

// Adjustment kinds, matching the staff-facing vocabulary.
const (
	KindAdd        = "add"
	KindRemove     = "remove"
	KindCorrection = "correction"
	KindReturn     = "return"
	KindDamaged    = "damaged"
)

func ValidKind(kind string) bool {
	switch kind {
	case KindAdd, KindRemove, KindCorrection, KindReturn, KindDamaged:
		return true
	}
	return false
}

type TargetKind int

const (
	TargetProduct TargetKind = iota
	TargetVariant
)

// Target names exactly one stock counter: a product's own stock or one of
// its variants'. VariantID is meaningful only when Kind is TargetVariant.
type Target struct {
	Kind      TargetKind
	ProductID int64
	VariantID int64
}

func ProductTarget(productID int64) Target {
	return Target{Kind: TargetProduct, ProductID: productID}
}

func VariantTarget(productID, variantID int64) Target {
	return Target{Kind: TargetVariant, ProductID: productID, VariantID: variantID}
}

// Adjustment is one append-only ledger entry: the signed delta applied to a
// stock counter plus a before/after snapshot. Rows are never updated or
// deleted once written.
type Adjustment struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id"`
	VariantID     *int64    `json:"variant_id,omitempty"`
	Type          string    `json:"adjustment_type"`
	Quantity      int       `json:"quantity"`
	Reason        string    `json:"reason"`
	AdjustedBy    int64     `json:"adjusted_by"`
	PreviousStock int       `json:"previous_stock"`
	NewStock      int       `json:"new_stock"`
	CreatedAt     time.Time `json:"created_at"`
}

// OrderLine is the slice of an order item the ledger needs for bulk
// deduction and restoration.
type OrderLine struct {
	Target   Target
	Quantity int
}
