package inventory

import (
	"context"
	"sync"
	"time"
)

// AdjustRequest is one manual ledger entry. Quantity is the signed delta:
// positive adds stock, negative removes it.
type AdjustRequest struct {
	Target   Target
	Quantity int
	Type     string
	Reason   string
	ActorID  int64
}

type HistoryFilter struct {
	ProductID int64    // 0 = all products
	Types     []string // empty = all types
	Limit     int
}

// Repository is the stock ledger: every stock mutation goes through it and
// leaves an audit record.
type Repository interface {
	Adjust(ctx context.Context, req AdjustRequest) (*Adjustment, error)
	History(ctx context.Context, filter HistoryFilter) ([]Adjustment, error)
	Stats(ctx context.Context) (*Stats, error)
}

// InMemoryRepository keeps stock counters and the ledger in maps. Used in
// tests and for running without a database.
type InMemoryRepository struct {
	mu            sync.Mutex
	productStock  map[int64]int
	variantStock  map[int64]int
	variantOwner  map[int64]int64 // variant id -> product id
	adjustments   []Adjustment
	nextID        int64
	activeCount   int
	productsTotal int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		productStock: make(map[int64]int),
		variantStock: make(map[int64]int),
		variantOwner: make(map[int64]int64),
		nextID:       1,
	}
}

// SeedProduct registers a product with an initial stock level.
func (r *InMemoryRepository) SeedProduct(id int64, stock int, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.productStock[id] = stock
	r.productsTotal++
	if active {
		r.activeCount++
	}
}

// SeedVariant registers a variant belonging to a product.
func (r *InMemoryRepository) SeedVariant(id, productID int64, stock int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variantStock[id] = stock
	r.variantOwner[id] = productID
}

func (r *InMemoryRepository) Adjust(ctx context.Context, req AdjustRequest) (*Adjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var newStock int
	switch req.Target.Kind {
	case TargetVariant:
		if r.variantOwner[req.Target.VariantID] != req.Target.ProductID {
			return nil, ErrVariantNotFound
		}
		r.variantStock[req.Target.VariantID] += req.Quantity
		newStock = r.variantStock[req.Target.VariantID]
	default:
		if _, ok := r.productStock[req.Target.ProductID]; !ok {
			return nil, ErrProductNotFound
		}
		r.productStock[req.Target.ProductID] += req.Quantity
		newStock = r.productStock[req.Target.ProductID]
	}

	adj := Adjustment{
		ID:            r.nextID,
		ProductID:     req.Target.ProductID,
		Type:          req.Type,
		Quantity:      req.Quantity,
		Reason:        req.Reason,
		AdjustedBy:    req.ActorID,
		PreviousStock: newStock - req.Quantity,
		NewStock:      newStock,
		CreatedAt:     time.Now(),
	}
	if req.Target.Kind == TargetVariant {
		id := req.Target.VariantID
		adj.VariantID = &id
	}
	r.nextID++
	r.adjustments = append(r.adjustments, adj)
	return &adj, nil
}

func (r *InMemoryRepository) History(ctx context.Context, filter HistoryFilter) ([]Adjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Adjustment, 0)
	for i := len(r.adjustments) - 1; i >= 0; i-- {
		adj := r.adjustments[i]
		if filter.ProductID != 0 && adj.ProductID != filter.ProductID {
			continue
		}
		if len(filter.Types) > 0 && !containsType(filter.Types, adj.Type) {
			continue
		}
		out = append(out, adj)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Stats(ctx context.Context) (*Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Stats{TotalProducts: r.productsTotal, ActiveProducts: r.activeCount}
	for _, stock := range r.productStock {
		if stock <= 0 {
			s.OutOfStock++
		} else if stock < 10 {
			s.LowStock++
		}
	}
	return s, nil
}

// ProductStock reports the current counter for a seeded product.
func (r *InMemoryRepository) ProductStock(id int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.productStock[id]
}

// VariantStock reports the current counter for a seeded variant.
func (r *InMemoryRepository) VariantStock(id int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.variantStock[id]
}

func containsType(types []string, t string) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
