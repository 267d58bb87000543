package repository

import (
	"context"
	"fmt"

	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/repository/dao"
)

var ErrProviderNotFound = dao.ErrProviderNotFound

type ProviderDAO interface {
	Insert(ctx context.Context, provider dao.Provider) (dao.Provider, error)
	FindByID(ctx context.Context, id uint) (dao.Provider, error)
	FindByUserID(ctx context.Context, userID uint) (dao.Provider, error)
	FindBySlug(ctx context.Context, slug string) (dao.Provider, error)
	List(ctx context.Context) ([]dao.Provider, error)
	ListBalances(ctx context.Context) ([]dao.ProviderBalance, error)
}

type ProviderRepository struct {
	dao ProviderDAO
}

func NewProviderRepository(dao ProviderDAO) *ProviderRepository {
	return &ProviderRepository{
		dao: dao,
	}
}

func (r *ProviderRepository) Create(ctx context.Context, provider domain.Provider) (domain.Provider, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(provider))
	if err != nil {
		return domain.Provider{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ProviderRepository) FindByID(ctx context.Context, id uint) (domain.Provider, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Provider{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ProviderRepository) FindByUserID(ctx context.Context, userID uint) (domain.Provider, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Provider{}, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ProviderRepository) FindBySlug(ctx context.Context, slug string) (domain.Provider, error) {
	found, err := r.dao.FindBySlug(ctx, slug)
	if err != nil {
		return domain.Provider{}, fmt.Errorf("r.dao.FindBySlug -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ProviderRepository) List(ctx context.Context) ([]domain.Provider, error) {
	found, err := r.dao.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	providers := make([]domain.Provider, len(found))
	for i, p := range found {
		providers[i] = r.daoToDomain(p)
	}

	return providers, nil
}

func (r *ProviderRepository) ListBalances(ctx context.Context) ([]domain.ProviderBalance, error) {
	found, err := r.dao.ListBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListBalances -> %w", err)
	}

	balances := make([]domain.ProviderBalance, len(found))
	for i, b := range found {
		balances[i] = domain.ProviderBalance{
			ProviderID:  b.ProviderID,
			CompanyName: b.CompanyName,
			Email:       b.Email,
			Balance:     b.Balance,
		}
	}

	return balances, nil
}

func (r *ProviderRepository) domainToDao(p domain.Provider) dao.Provider {
	return dao.Provider{
		ID:           p.ID,
		UserID:       p.UserID,
		Slug:         p.Slug,
		CompanyName:  p.CompanyName,
		Category:     p.Category,
		City:         p.City,
		Description:  p.Description,
		TokenBalance: p.TokenBalance,
	}
}

func (r *ProviderRepository) daoToDomain(p dao.Provider) domain.Provider {
	return domain.Provider{
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
