package cart

import (
	"context"

	"github.com/htetaung/storefront-backend/internal/catalog"
)

// Service orchestrates cart operations, validating targets against the
// catalog before touching cart state.
type Service struct {
	repo    Repository
	catalog catalog.Repository
}

func NewService(repo Repository, cat catalog.Repository) *Service {
	return &Service{repo: repo, catalog: cat}
}

func (s *Service) Get(ctx context.Context, userID int64) (Cart, error) {
	return s.repo.GetOrCreate(ctx, userID)
}

func (s *Service) Add(ctx context.Context, userID, productID int64, variantID *int64, quantity int) (Cart, error) {
	if _, err := s.catalog.GetByID(ctx, productID); err != nil {
		return Cart{}, err
	}
	if variantID != nil {
		v, err := s.catalog.GetVariant(ctx, *variantID)
		if err != nil {
			return Cart{}, err
		}
		if v.ProductID != productID {
			return Cart{}, ErrVariantMismatch
		}
	}
	return s.repo.AddItem(ctx, userID, productID, variantID, quantity)
}

func (s *Service) UpdateItem(ctx context.Context, userID, itemID int64, quantity int) (Cart, error) {
	return s.repo.UpdateItem(ctx, userID, itemID, quantity)
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) (Cart, error) {
	return s.repo.RemoveItem(ctx, userID, itemID)
}

func (s *Service) Clear(ctx context.Context, userID int64) (Cart, error) {
	return s.repo.Clear(ctx, userID)
}
