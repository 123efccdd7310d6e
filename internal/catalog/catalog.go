package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
	ErrDuplicateSlug   = errors.New("product slug already in use")
	ErrDuplicateSKU    = errors.New("variant sku already in use")
)

// Product is a purchasable catalog entry identified by a stable slug. Stock
// on the product row counts variant-less inventory; variants carry their own.
type Product struct {
	ID          int64           `json:"id"`
	Category    string          `json:"category"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Variants    []Variant       `json:"variants,omitempty"`
}

// Variant belongs to exactly one product; (product, color, size) is unique
// within the product and the SKU is globally unique.
type Variant struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"product_id"`
	SKU           string          `json:"sku"`
	Color         string          `json:"color"`
	Size          string          `json:"size"`
	PriceModifier decimal.Decimal `json:"price_modifier"`
	Stock         int             `json:"stock"`
	IsActive      bool            `json:"is_active"`
}

// Price is the variant's effective unit price: product base plus modifier.
func (v Variant) Price(basePrice decimal.Decimal) decimal.Decimal {
	return basePrice.Add(v.PriceModifier)
}
