package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/repository"
)

// Toggle outcomes.
const (
	FavoriteAdded   = "added"
	FavoriteRemoved = "removed"
)

type FavoriteRepository interface {
	Add(ctx context.Context, userID, providerID uint) error
	Remove(ctx context.Context, userID, providerID uint) error
	Exists(ctx context.Context, userID, providerID uint) (bool, error)
	ListProviders(ctx context.Context, userID uint) ([]domain.Provider, error)
}

type FavoriteProviderRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Provider, error)
}

type FavoriteService struct {
	repo         FavoriteRepository
	providerRepo FavoriteProviderRepository
}

func NewFavoriteService(repo FavoriteRepository, providerRepo FavoriteProviderRepository) *FavoriteService {
	return &FavoriteService{
		repo:         repo,
		providerRepo: providerRepo,
	}
}

// Toggle bookmarks the provider for the user, or removes the bookmark if it
// already exists. It returns FavoriteAdded or FavoriteRemoved.
func (s *FavoriteService) Toggle(ctx context.Context, userID, providerID uint) (string, error) {
	if _, err := s.providerRepo.FindByID(ctx, providerID); err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return "", ErrProviderNotFound
		}

		return "", fmt.Errorf("s.providerRepo.FindByID -> %w", err)
	}

	exists, err := s.repo.Exists(ctx, userID, providerID)
	if err != nil {
		return "", fmt.Errorf("s.repo.Exists -> %w", err)
	}

	if exists {
		if err = s.repo.Remove(ctx, userID, providerID); err != nil {
			// A concurrent toggle may have removed it first.
			if errors.Is(err, repository.ErrFavoriteNotFound) {
				return FavoriteRemoved, nil
			}

			return "", fmt.Errorf("s.repo.Remove -> %w", err)
		}

		return FavoriteRemoved, nil
	}

	if err = s.repo.Add(ctx, userID, providerID); err != nil {
		if errors.Is(err, repository.ErrFavoriteExists) {
			return FavoriteAdded, nil
		}

		return "", fmt.Errorf("s.repo.Add -> %w", err)
	}

	return FavoriteAdded, nil
}

func (s *FavoriteService) ListFavorites(ctx context.Context, userID uint) ([]domain.Provider, error) {
	providers, err := s.repo.ListProviders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListProviders -> %w", err)
	}

	return providers, nil
}
