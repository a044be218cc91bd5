package attendance

import (
	"context"
	"errors"
)

var ErrInvalidRange = errors.New("from date after to date")

type Lister interface {
	List(ctx context.Context, tenantID string, filter ListFilter) ([]Record, error)
}

type Service struct {
	Store Lister
}

func NewService(store Lister) *Service {
	return &Service{Store: store}
}

func (s *Service) List(ctx context.Context, tenantID string, filter ListFilter) ([]Record, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, ErrInvalidRange
	}
	return s.Store.List(ctx, tenantID, filter)
}
