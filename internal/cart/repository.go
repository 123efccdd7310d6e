package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Repository provides access to cart state. Implementations must keep at
// most one line per (product, variant) pair; adding to an existing pair
// increments its quantity.
type Repository interface {
	GetOrCreate(ctx context.Context, userID int64) (Cart, error)
	AddItem(ctx context.Context, userID, productID int64, variantID *int64, quantity int) (Cart, error)
	UpdateItem(ctx context.Context, userID, itemID int64, quantity int) (Cart, error)
	RemoveItem(ctx context.Context, userID, itemID int64) (Cart, error)
	Clear(ctx context.Context, userID int64) (Cart, error)
}

// SeedProduct and SeedVariant feed the in-memory repository used by tests.
type SeedProduct struct {
	Name  string
	Slug  string
	Price decimal.Decimal
}

type SeedVariant struct {
	ProductID int64
	Color     string
	Size      string
	Price     decimal.Decimal
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]SeedProduct
	variants map[int64]SeedVariant
	items    map[int64][]Item // keyed by userID
}

func NewInMemoryRepository(products map[int64]SeedProduct, variants map[int64]SeedVariant) *InMemoryRepository {
	return &InMemoryRepository{
		nextID:   1,
		products: products,
		variants: variants,
		items:    make(map[int64][]Item),
	}
}

func (r *InMemoryRepository) GetOrCreate(ctx context.Context, userID int64) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(userID), nil
}

func (r *InMemoryRepository) AddItem(ctx context.Context, userID, productID int64, variantID *int64, quantity int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.items[userID]
	for i := range items {
		if items[i].ProductID == productID && sameVariant(items[i].VariantID, variantID) {
			items[i].Quantity += quantity
			items[i].Subtotal = items[i].Price.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
			r.items[userID] = items
			return r.snapshot(userID), nil
		}
	}

	item := Item{ID: r.nextID, ProductID: productID, VariantID: variantID, Quantity: quantity}
	r.nextID++
	if p, ok := r.products[productID]; ok {
		item.ProductName = p.Name
		item.ProductSlug = p.Slug
		item.Price = p.Price
	}
	if variantID != nil {
		if v, ok := r.variants[*variantID]; ok {
			item.Color = v.Color
			item.Size = v.Size
			item.Price = v.Price
		}
	}
	item.Subtotal = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	r.items[userID] = append(items, item)
	return r.snapshot(userID), nil
}

func (r *InMemoryRepository) UpdateItem(ctx context.Context, userID, itemID int64, quantity int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.items[userID]
	for i := range items {
		if items[i].ID == itemID {
			if quantity == 0 {
				r.items[userID] = append(items[:i], items[i+1:]...)
			} else {
				items[i].Quantity = quantity
				items[i].Subtotal = items[i].Price.Mul(decimal.NewFromInt(int64(quantity)))
				r.items[userID] = items
			}
			return r.snapshot(userID), nil
		}
	}
	return Cart{}, ErrItemNotFound
}

func (r *InMemoryRepository) RemoveItem(ctx context.Context, userID, itemID int64) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.items[userID]
	for i := range items {
		if items[i].ID == itemID {
			r.items[userID] = append(items[:i], items[i+1:]...)
			return r.snapshot(userID), nil
		}
	}
	return Cart{}, ErrItemNotFound
}

func (r *InMemoryRepository) Clear(ctx context.Context, userID int64) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[userID] = nil
	return r.snapshot(userID), nil
}

func (r *InMemoryRepository) snapshot(userID int64) Cart {
	items := make([]Item, len(r.items[userID]))
	copy(items, r.items[userID])
	return Cart{ID: userID, UserID: userID, Items: items}
}

func sameVariant(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
