package catalog

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]Product, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) GetByID(ctx context.Context, id int64) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetVariant(ctx context.Context, id int64) (Variant, error) {
	return s.repo.GetVariant(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, p Product) (Product, error) {
	return s.repo.CreateProduct(ctx, p)
}

func (s *Service) UpdateProduct(ctx context.Context, slug string, upd ProductUpdate) (Product, error) {
	return s.repo.UpdateProduct(ctx, slug, upd)
}

func (s *Service) CreateVariant(ctx context.Context, v Variant) (Variant, error) {
	return s.repo.CreateVariant(ctx, v)
}

func (s *Service) UpdateVariant(ctx context.Context, id int64, upd VariantUpdate) (Variant, error) {
	return s.repo.UpdateVariant(ctx, id, upd)
}
