package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/repository"
)

var (
	ErrReviewNotFound = repository.ErrReviewNotFound
	ErrReviewExists   = repository.ErrReviewExists
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrNotReviewable  = errors.New("organizer has no request with this provider")
)

type ReviewRepository interface {
	Create(ctx context.Context, review domain.Review) (domain.Review, error)
	FindByID(ctx context.Context, id uint) (domain.Review, error)
	FindByProviderID(ctx context.Context, providerID uint) ([]domain.Review, error)
	SetReply(ctx context.Context, reviewID uint, reply string) (domain.Review, error)
	Summarize(ctx context.Context, providerID uint) (domain.RatingSummary, error)
}

type ReviewRequestRepository interface {
	FindByOrganizerID(ctx context.Context, organizerID uint) ([]domain.QuoteRequest, error)
}

type ReviewProviderRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Provider, error)
}

type ReviewService struct {
	repo         ReviewRepository
	requestRepo  ReviewRequestRepository
	providerRepo ReviewProviderRepository
}

func NewReviewService(repo ReviewRepository, requestRepo ReviewRequestRepository, providerRepo ReviewProviderRepository) *ReviewService {
	return &ReviewService{
		repo:         repo,
		requestRepo:  requestRepo,
		providerRepo: providerRepo,
	}
}

// CreateReview stores an organizer's rating of a provider. Only organizers
// that have submitted a quote request to the provider may review it, and each
// organizer reviews a provider at most once.
func (s *ReviewService) CreateReview(ctx context.Context, user domain.User, review domain.Review) (domain.Review, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return domain.Review{}, ErrInvalidRating
	}

	if _, err := s.providerRepo.FindByID(ctx, review.ProviderID); err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return domain.Review{}, ErrProviderNotFound
		}

		return domain.Review{}, fmt.Errorf("s.providerRepo.FindByID -> %w", err)
	}

	requests, err := s.requestRepo.FindByOrganizerID(ctx, user.ID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("s.requestRepo.FindByOrganizerID -> %w", err)
	}

	engaged := false
	for _, request := range requests {
		if request.ProviderID == review.ProviderID {
			engaged = true
			break
		}
	}
	if !engaged {
		return domain.Review{}, ErrNotReviewable
	}

	review.OrganizerID = user.ID
	review.AuthorName = user.Name
	review.Reply = ""
	review.RepliedAt = nil

	created, err := s.repo.Create(ctx, review)
	if err != nil {
		if errors.Is(err, repository.ErrReviewExists) {
			return domain.Review{}, ErrReviewExists
		}

		return domain.Review{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ReviewService) GetProviderReviews(ctx context.Context, providerID uint) ([]domain.Review, error) {
	reviews, err := s.repo.FindByProviderID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByProviderID -> %w", err)
	}

	return reviews, nil
}

func (s *ReviewService) GetRatingSummary(ctx context.Context, providerID uint) (domain.RatingSummary, error) {
	summary, err := s.repo.Summarize(ctx, providerID)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("s.repo.Summarize -> %w", err)
	}

	return summary, nil
}

// ReplyToReview records the provider's answer on one of its reviews. Reviews
// of other providers read as not found so ownership is not leaked.
func (s *ReviewService) ReplyToReview(ctx context.Context, providerID, reviewID uint, reply string) (domain.Review, error) {
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return domain.Review{}, ErrReviewNotFound
		}

		return domain.Review{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if review.ProviderID != providerID {
		return domain.Review{}, ErrReviewNotFound
	}

	updated, err := s.repo.SetReply(ctx, reviewID, reply)
	if err != nil {
		return domain.Review{}, fmt.Errorf("s.repo.SetReply -> %w", err)
	}

	return updated, nil
}
