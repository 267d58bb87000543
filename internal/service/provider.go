package service

import (
	"context"
	"fmt"

	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/repository"
)

var ErrProviderNotFound = repository.ErrProviderNotFound

type ProviderRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Provider, error)
	FindByUserID(ctx context.Context, userID uint) (domain.Provider, error)
	FindBySlug(ctx context.Context, slug string) (domain.Provider, error)
	List(ctx context.Context) ([]domain.Provider, error)
	ListBalances(ctx context.Context) ([]domain.ProviderBalance, error)
}

type ProviderService struct {
	repo ProviderRepository
}

func NewProviderService(repo ProviderRepository) *ProviderService {
	return &ProviderService{
		repo: repo,
	}
}

func (s *ProviderService) GetProviders(ctx context.Context) ([]domain.Provider, error) {
	providers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return providers, nil
}

func (s *ProviderService) GetProviderBySlug(ctx context.Context, slug string) (domain.Provider, error) {
	provider, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return domain.Provider{}, fmt.Errorf("s.repo.FindBySlug -> %w", err)
	}

	return provider, nil
}

func (s *ProviderService) GetProviderByUserID(ctx context.Context, userID uint) (domain.Provider, error) {
	provider, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Provider{}, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return provider, nil
}
