package inventory

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Adjust(ctx context.Context, req AdjustRequest) (*Adjustment, error) {
	if !ValidKind(req.Type) {
		return nil, ErrInvalidKind
	}
	if req.Quantity == 0 {
		return nil, ErrZeroQuantity
	}
	return s.repo.Adjust(ctx, req)
}

func (s *Service) History(ctx context.Context, filter HistoryFilter) ([]Adjustment, error) {
	return s.repo.History(ctx, filter)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}
