package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines persistence operations for products and variants.
type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]Product, error)
	GetBySlug(ctx context.Context, slug string) (Product, error)
	GetByID(ctx context.Context, id int64) (Product, error)
	GetVariant(ctx context.Context, id int64) (Variant, error)
	CreateProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, slug string, upd ProductUpdate) (Product, error)
	CreateVariant(ctx context.Context, v Variant) (Variant, error)
	UpdateVariant(ctx context.Context, id int64, upd VariantUpdate) (Variant, error)
}

// ProductUpdate carries optional field changes; nil means leave unchanged.
// Stock is deliberately absent: stock moves only through the inventory ledger.
type ProductUpdate struct {
	Name        *string
	Category    *string
	Description *string
	BasePrice   *decimal.Decimal
	IsActive    *bool
}

type VariantUpdate struct {
	Color         *string
	Size          *string
	PriceModifier *decimal.Decimal
	IsActive      *bool
}
