package repository

import (
	"context"
	"fmt"

	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/repository/dao"
)

var (
	ErrReviewNotFound = dao.ErrReviewNotFound
	ErrReviewExists   = dao.ErrReviewExists
)

type ReviewDAO interface {
	Insert(ctx context.Context, review dao.Review) (dao.Review, error)
	FindByID(ctx context.Context, id uint) (dao.Review, error)
	FindByProviderID(ctx context.Context, providerID uint) ([]dao.Review, error)
	SetReply(ctx context.Context, reviewID uint, reply string) (dao.Review, error)
	Summarize(ctx context.Context, providerID uint) (dao.RatingSummary, error)
}

type ReviewRepository struct {
	dao ReviewDAO
}

func NewReviewRepository(dao ReviewDAO) *ReviewRepository {
	return &ReviewRepository{
		dao: dao,
	}
}

func (r *ReviewRepository) Create(ctx context.Context, review domain.Review) (domain.Review, error) {
	created, err := r.dao.Insert(ctx, dao.Review{
		ProviderID:  review.ProviderID,
		OrganizerID: review.OrganizerID,
		AuthorName:  review.AuthorName,
		Rating:      review.Rating,
		Comment:     review.Comment,
	})
	if err != nil {
		return domain.Review{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id uint) (domain.Review, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Review{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ReviewRepository) FindByProviderID(ctx context.Context, providerID uint) ([]domain.Review, error) {
	found, err := r.dao.FindByProviderID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByProviderID -> %w", err)
	}

	reviews := make([]domain.Review, len(found))
	for i, review := range found {
		reviews[i] = r.daoToDomain(review)
	}

	return reviews, nil
}

func (r *ReviewRepository) SetReply(ctx context.Context, reviewID uint, reply string) (domain.Review, error) {
	updated, err := r.dao.SetReply(ctx, reviewID, reply)
	if err != nil {
		return domain.Review{}, fmt.Errorf("r.dao.SetReply -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *ReviewRepository) Summarize(ctx context.Context, providerID uint) (domain.RatingSummary, error) {
	summary, err := r.dao.Summarize(ctx, providerID)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("r.dao.Summarize -> %w", err)
	}

	return domain.RatingSummary{
		Average: summary.Average,
		Count:   summary.Count,
	}, nil
}

func (r *ReviewRepository) daoToDomain(review dao.Review) domain.Review {
	return domain.Review{
		ID:          review.ID,
		ProviderID:  review.ProviderID,
		OrganizerID: review.OrganizerID,
		AuthorName:  review.AuthorName,
		Rating:      review.Rating,
		Comment:     review.Comment,
		Reply:       review.Reply,
		RepliedAt:   review.RepliedAt,
		CreatedAt:   review.CreatedAt,
		UpdatedAt:   review.UpdatedAt,
	}
}
