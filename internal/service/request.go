package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/notification"
	"github.com/centralevents/central-events-api/internal/repository"
)

var (
	ErrRequestNotFound = repository.ErrRequestNotFound
	ErrNotRequestParty = errors.New("user is not a party to this request")
	ErrInvalidStatus   = errors.New("invalid request status")
	ErrRequestArchived = errors.New("request is archived")
)

type RequestRepository interface {
	Create(ctx context.Context, request domain.QuoteRequest) (domain.QuoteRequest, error)
	FindByID(ctx context.Context, id uint) (domain.QuoteRequest, error)
	FindByProviderID(ctx context.Context, providerID uint) ([]domain.QuoteRequest, error)
	FindByOrganizerID(ctx context.Context, organizerID uint) ([]domain.QuoteRequest, error)
	UpdateStatus(ctx context.Context, requestID uint, status domain.RequestStatus) (domain.QuoteRequest, error)
	UpdateStatusCharged(ctx context.Context, requestID, providerID uint, status domain.RequestStatus) (domain.QuoteRequest, error)
	CreateMessage(ctx context.Context, message domain.Message) (domain.Message, error)
	CreateProviderMessage(ctx context.Context, message domain.Message, providerID uint) (domain.Message, error)
}

type RequestProviderRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Provider, error)
	FindByUserID(ctx context.Context, userID uint) (domain.Provider, error)
}

type RequestUserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

type RequestService struct {
	repo         RequestRepository
	providerRepo RequestProviderRepository
	userRepo     RequestUserRepository
	notifier     notification.Notifier
}

func NewRequestService(repo RequestRepository, providerRepo RequestProviderRepository, userRepo RequestUserRepository, notifier notification.Notifier) *RequestService {
	return &RequestService{
		repo:         repo,
		providerRepo: providerRepo,
		userRepo:     userRepo,
		notifier:     notifier,
	}
}

// CreateRequest stores a new PENDING quote request. The organizer identity
// must already be resolved (see UserService.ResolveOrganizer). The provider
// notification is best-effort and never fails the submission.
func (s *RequestService) CreateRequest(ctx context.Context, request domain.QuoteRequest) (domain.QuoteRequest, error) {
	provider, err := s.providerRepo.FindByID(ctx, request.ProviderID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return domain.QuoteRequest{}, ErrProviderNotFound
		}

		return domain.QuoteRequest{}, fmt.Errorf("s.providerRepo.FindByID -> %w", err)
	}

	created, err := s.repo.Create(ctx, request)
	if err != nil {
		return domain.QuoteRequest{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.notifyProvider(ctx, provider, created)

	return created, nil
}

func (s *RequestService) GetRequestsForUser(ctx context.Context, user domain.User) ([]domain.QuoteRequest, error) {
	if user.Role == domain.RoleProvider {
		provider, err := s.providerRepo.FindByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("s.providerRepo.FindByUserID -> %w", err)
		}

		requests, err := s.repo.FindByProviderID(ctx, provider.ID)
		if err != nil {
			return nil, fmt.Errorf("s.repo.FindByProviderID -> %w", err)
		}

		return requests, nil
	}

	requests, err := s.repo.FindByOrganizerID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByOrganizerID -> %w", err)
	}

	return requests, nil
}

// GetRequest loads a request for one of its parties. Requests outside the
// caller's visibility read as not found rather than forbidden, so existence
// is not leaked.
func (s *RequestService) GetRequest(ctx context.Context, user domain.User, requestID uint) (domain.QuoteRequest, error) {
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return domain.QuoteRequest{}, ErrRequestNotFound
		}

		return domain.QuoteRequest{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if _, err = s.requireParty(ctx, user, request); err != nil {
		return domain.QuoteRequest{}, err
	}

	return request, nil
}

// UpdateStatus applies a provider decision to the request. Transitions into
// an engaging status (RESPONDED, ACCEPTED) pass the unlock gate first and
// fail atomically on insufficient tokens; REFUSED and ARCHIVED are free.
func (s *RequestService) UpdateStatus(ctx context.Context, user domain.User, requestID uint, status domain.RequestStatus) (domain.QuoteRequest, error) {
	if !status.IsValid() || status == domain.StatusPending {
		return domain.QuoteRequest{}, ErrInvalidStatus
	}

	provider, err := s.providerRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return domain.QuoteRequest{}, ErrNotRequestParty
		}

		return domain.QuoteRequest{}, fmt.Errorf("s.providerRepo.FindByUserID -> %w", err)
	}

	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return domain.QuoteRequest{}, ErrRequestNotFound
		}

		return domain.QuoteRequest{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if request.ProviderID != provider.ID {
		return domain.QuoteRequest{}, ErrRequestNotFound
	}

	if request.Status.IsTerminal() {
		return domain.QuoteRequest{}, ErrRequestArchived
	}

	if status.RequiresToken() {
		updated, err := s.repo.UpdateStatusCharged(ctx, requestID, provider.ID, status)
		if err != nil {
			return domain.QuoteRequest{}, fmt.Errorf("s.repo.UpdateStatusCharged -> %w", err)
		}

		return updated, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, requestID, status)
	if err != nil {
		return domain.QuoteRequest{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	return updated, nil
}

// PostMessage appends to the request thread. A provider's message passes the
// unlock gate (first one charges a token) and flips PENDING to RESPONDED; an
// organizer's message is free. On insufficient tokens nothing is stored.
func (s *RequestService) PostMessage(ctx context.Context, user domain.User, requestID uint, content string) (domain.Message, error) {
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return domain.Message{}, ErrRequestNotFound
		}

		return domain.Message{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	provider, err := s.requireParty(ctx, user, request)
	if err != nil {
		return domain.Message{}, err
	}

	message := domain.Message{
		RequestID: requestID,
		AuthorID:  user.ID,
		Content:   content,
	}

	if provider != nil {
		created, err := s.repo.CreateProviderMessage(ctx, message, provider.ID)
		if err != nil {
			return domain.Message{}, fmt.Errorf("s.repo.CreateProviderMessage -> %w", err)
		}

		return created, nil
	}

	created, err := s.repo.CreateMessage(ctx, message)
	if err != nil {
		return domain.Message{}, fmt.Errorf("s.repo.CreateMessage -> %w", err)
	}

	return created, nil
}

// requireParty checks the user is the owning organizer or the owning
// provider. It returns the provider when the user acts as one, nil for the
// organizer side, and ErrRequestNotFound for outsiders.
func (s *RequestService) requireParty(ctx context.Context, user domain.User, request domain.QuoteRequest) (*domain.Provider, error) {
	if request.OrganizerID == user.ID {
		return nil, nil
	}

	if user.Role == domain.RoleProvider {
		provider, err := s.providerRepo.FindByUserID(ctx, user.ID)
		if err != nil {
			if errors.Is(err, repository.ErrProviderNotFound) {
				return nil, ErrRequestNotFound
			}

			return nil, fmt.Errorf("s.providerRepo.FindByUserID -> %w", err)
		}

		if provider.ID == request.ProviderID {
			return &provider, nil
		}
	}

	return nil, ErrRequestNotFound
}

func (s *RequestService) notifyProvider(ctx context.Context, provider domain.Provider, request domain.QuoteRequest) {
	providerUser, err := s.userRepo.FindByID(ctx, provider.UserID)
	if err != nil {
		zap.L().Warn("failed to load provider user for notification",
			zap.Uint("provider_id", provider.ID), zap.Error(err))
		return
	}

	if err = s.notifier.NotifyNewRequest(ctx, providerUser.Email, provider.CompanyName, request); err != nil {
		zap.L().Warn("new request notification failed",
			zap.Uint("request_id", request.ID), zap.Error(err))
	}
}
