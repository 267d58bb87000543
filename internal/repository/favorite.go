package repository

import (
	"context"
	"fmt"

	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/repository/dao"
)

var (
	ErrFavoriteExists   = dao.ErrFavoriteExists
	ErrFavoriteNotFound = dao.ErrFavoriteNotFound
)

type FavoriteDAO interface {
	Insert(ctx context.Context, userID, providerID uint) error
	Delete(ctx context.Context, userID, providerID uint) error
	Exists(ctx context.Context, userID, providerID uint) (bool, error)
	ListProviders(ctx context.Context, userID uint) ([]dao.Provider, error)
}

type FavoriteRepository struct {
	dao FavoriteDAO
}

func NewFavoriteRepository(dao FavoriteDAO) *FavoriteRepository {
	return &FavoriteRepository{
		dao: dao,
	}
}

func (r *FavoriteRepository) Add(ctx context.Context, userID, providerID uint) error {
	if err := r.dao.Insert(ctx, userID, providerID); err != nil {
		return fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, providerID uint) error {
	if err := r.dao.Delete(ctx, userID, providerID); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *FavoriteRepository) Exists(ctx context.Context, userID, providerID uint) (bool, error) {
	exists, err := r.dao.Exists(ctx, userID, providerID)
	if err != nil {
		return false, fmt.Errorf("r.dao.Exists -> %w", err)
	}

	return exists, nil
}

func (r *FavoriteRepository) ListProviders(ctx context.Context, userID uint) ([]domain.Provider, error) {
	found, err := r.dao.ListProviders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListProviders -> %w", err)
	}

	providers := make([]domain.Provider, len(found))
	for i, p := range found {
		providers[i] = domain.Provider{
			ID:           p.ID,
			UserID:       p.UserID,
			Slug:         p.Slug,
			CompanyName:  p.CompanyName,
			Category:     p.Category,
			City:         p.City,
			Description:  p.Description,
			TokenBalance: p.TokenBalance,
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
		}
	}

	return providers, nil
}
