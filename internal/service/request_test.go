package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/repository"
)

// fakeRequestRepository wires the in-memory ledger fake into the charged
// mutation paths, mirroring how the store runs the unlock gate and the write
// in one transaction.
type fakeRequestRepository struct {
	requests map[uint]domain.QuoteRequest
	messages []domain.Message
	tokens   *fakeTokenRepository
	nextID   uint
}

func newFakeRequestRepository(tokens *fakeTokenRepository) *fakeRequestRepository {
	return &fakeRequestRepository{
		requests: make(map[uint]domain.QuoteRequest),
		tokens:   tokens,
	}
}

func (f *fakeRequestRepository) Create(_ context.Context, request domain.QuoteRequest) (domain.QuoteRequest, error) {
	f.nextID++
	request.ID = f.nextID
	request.Status = domain.StatusPending
	f.requests[request.ID] = request

	return request, nil
}

func (f *fakeRequestRepository) FindByID(_ context.Context, id uint) (domain.QuoteRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return domain.QuoteRequest{}, repository.ErrRequestNotFound
	}

	return request, nil
}

func (f *fakeRequestRepository) FindByProviderID(_ context.Context, providerID uint) ([]domain.QuoteRequest, error) {
	var found []domain.QuoteRequest
	for _, r := range f.requests {
		if r.ProviderID == providerID {
			found = append(found, r)
		}
	}

	return found, nil
}

func (f *fakeRequestRepository) FindByOrganizerID(_ context.Context, organizerID uint) ([]domain.QuoteRequest, error) {
	var found []domain.QuoteRequest
	for _, r := range f.requests {
		if r.OrganizerID == organizerID {
			found = append(found, r)
		}
	}

	return found, nil
}

func (f *fakeRequestRepository) UpdateStatus(_ context.Context, requestID uint, status domain.RequestStatus) (domain.QuoteRequest, error) {
	request, ok := f.requests[requestID]
	if !ok {
		return domain.QuoteRequest{}, repository.ErrRequestNotFound
	}

	request.Status = status
	f.requests[requestID] = request

	return request, nil
}

func (f *fakeRequestRepository) UpdateStatusCharged(ctx context.Context, requestID, providerID uint, status domain.RequestStatus) (domain.QuoteRequest, error) {
	if _, err := f.tokens.EnsureUnlocked(ctx, providerID, requestID); err != nil {
		return domain.QuoteRequest{}, err
	}

	return f.UpdateStatus(ctx, requestID, status)
}

func (f *fakeRequestRepository) CreateMessage(_ context.Context, message domain.Message) (domain.Message, error) {
	message.ID = uint(len(f.messages) + 1)
	f.messages = append(f.messages, message)

	return message, nil
}

func (f *fakeRequestRepository) CreateProviderMessage(ctx context.Context, message domain.Message, providerID uint) (domain.Message, error) {
	if _, err := f.tokens.EnsureUnlocked(ctx, providerID, message.RequestID); err != nil {
		return domain.Message{}, err
	}

	created, err := f.CreateMessage(ctx, message)
	if err != nil {
		return domain.Message{}, err
	}

	if request, ok := f.requests[message.RequestID]; ok && request.Status == domain.StatusPending {
		request.Status = domain.StatusResponded
		f.requests[message.RequestID] = request
	}

	return created, nil
}

type fakeProviderRepository struct {
	byID   map[uint]domain.Provider
	byUser map[uint]domain.Provider
}

func newFakeProviderRepository(providers ...domain.Provider) *fakeProviderRepository {
	f := &fakeProviderRepository{
		byID:   make(map[uint]domain.Provider),
		byUser: make(map[uint]domain.Provider),
	}
	for _, p := range providers {
		f.byID[p.ID] = p
		f.byUser[p.UserID] = p
	}

	return f
}

func (f *fakeProviderRepository) FindByID(_ context.Context, id uint) (domain.Provider, error) {
	provider, ok := f.byID[id]
	if !ok {
		return domain.Provider{}, repository.ErrProviderNotFound
	}

	return provider, nil
}

func (f *fakeProviderRepository) FindByUserID(_ context.Context, userID uint) (domain.Provider, error) {
	provider, ok := f.byUser[userID]
	if !ok {
		return domain.Provider{}, repository.ErrProviderNotFound
	}

	return provider, nil
}

type fakeUserRepository struct {
	users map[uint]domain.User
}

func (f *fakeUserRepository) FindByID(_ context.Context, id uint) (domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

type fakeNotifier struct {
	notified []uint
	err      error
}

func (f *fakeNotifier) NotifyNewRequest(_ context.Context, _, _ string, request domain.QuoteRequest) error {
	f.notified = append(f.notified, request.ID)

	return f.err
}

type requestFixture struct {
	svc      *RequestService
	repo     *fakeRequestRepository
	tokens   *fakeTokenRepository
	notifier *fakeNotifier

	organizer domain.User
	provider  domain.User
	outsider  domain.User
}

// newRequestFixture builds a service around one provider (user 2, provider 10)
// and one organizer (user 1).
func newRequestFixture(t *testing.T, providerBalance int) *requestFixture {
	t.Helper()

	tokens := newFakeTokenRepository()
	tokens.balances[10] = providerBalance

	repo := newFakeRequestRepository(tokens)
	providers := newFakeProviderRepository(domain.Provider{ID: 10, UserID: 2, CompanyName: "Delice Traiteur"})
	users := &fakeUserRepository{users: map[uint]domain.User{
		1: {ID: 1, Email: "orga@example.com", Role: domain.RoleOrganizer},
		2: {ID: 2, Email: "pro@example.com", Role: domain.RoleProvider},
		3: {ID: 3, Email: "other@example.com", Role: domain.RoleProvider},
	}}
	notifier := &fakeNotifier{}

	return &requestFixture{
		svc:       NewRequestService(repo, providers, users, notifier),
		repo:      repo,
		tokens:    tokens,
		notifier:  notifier,
		organizer: domain.User{ID: 1, Role: domain.RoleOrganizer},
		provider:  domain.User{ID: 2, Role: domain.RoleProvider},
		outsider:  domain.User{ID: 3, Role: domain.RoleProvider},
	}
}

func (fx *requestFixture) submit(t *testing.T) domain.QuoteRequest {
	t.Helper()

	created, err := fx.svc.CreateRequest(context.Background(), domain.QuoteRequest{
		OrganizerID: fx.organizer.ID,
		ProviderID:  10,
		ContactName: "Alice Martin",
		Email:       "orga@example.com",
		EventType:   "wedding",
		Message:     "Looking for a caterer for 80 guests.",
	})
	require.NoError(t, err)

	return created
}

func TestRequestService_CreateRequest(t *testing.T) {
	t.Run("stores a pending request and notifies the provider", func(t *testing.T) {
		fx := newRequestFixture(t, 0)

		created := fx.submit(t)

		assert.Equal(t, domain.StatusPending, created.Status)
		assert.Equal(t, []uint{created.ID}, fx.notifier.notified)
	})

	t.Run("unknown provider", func(t *testing.T) {
		fx := newRequestFixture(t, 0)

		_, err := fx.svc.CreateRequest(context.Background(), domain.QuoteRequest{
			OrganizerID: fx.organizer.ID,
			ProviderID:  999,
			Message:     "anyone there?",
		})

		assert.ErrorIs(t, err, ErrProviderNotFound)
	})

	t.Run("notification failure does not fail the submission", func(t *testing.T) {
		fx := newRequestFixture(t, 0)
		fx.notifier.err = errors.New("smtp down")

		created := fx.submit(t)

		assert.NotZero(t, created.ID)
	})
}

func TestRequestService_UpdateStatus(t *testing.T) {
	t.Run("accepting with no tokens fails and leaves the request pending", func(t *testing.T) {
		fx := newRequestFixture(t, 0)
		created := fx.submit(t)

		_, err := fx.svc.UpdateStatus(context.Background(), fx.provider, created.ID, domain.StatusAccepted)

		var insufficientErr *InsufficientTokensError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, 0, insufficientErr.Balance)

		request, err := fx.svc.GetRequest(context.Background(), fx.provider, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, request.Status)
		assert.Empty(t, fx.tokens.transactions)
	})

	t.Run("accepting charges one token exactly once", func(t *testing.T) {
		fx := newRequestFixture(t, 5)
		created := fx.submit(t)

		updated, err := fx.svc.UpdateStatus(context.Background(), fx.provider, created.ID, domain.StatusAccepted)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusAccepted, updated.Status)
		assert.Equal(t, 4, fx.tokens.balances[10])

		// The pair is unlocked, switching status again is free.
		updated, err = fx.svc.UpdateStatus(context.Background(), fx.provider, created.ID, domain.StatusResponded)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusResponded, updated.Status)
		assert.Equal(t, 4, fx.tokens.balances[10])
		require.Len(t, fx.tokens.transactions, 1)
		assert.Equal(t, domain.TransactionSpend, fx.tokens.transactions[0].Type)
		assert.Equal(t, -1, fx.tokens.transactions[0].Amount)
	})

	t.Run("refusing is free", func(t *testing.T) {
		fx := newRequestFixture(t, 0)
		created := fx.submit(t)

		updated, err := fx.svc.UpdateStatus(context.Background(), fx.provider, created.ID, domain.StatusRefused)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusRefused, updated.Status)
		assert.Empty(t, fx.tokens.transactions)
	})

	t.Run("archiving is free and terminal", func(t *testing.T) {
		fx := newRequestFixture(t, 5)
		created := fx.submit(t)

		_, err := fx.svc.UpdateStatus(context.Background(), fx.provider, created.ID, domain.StatusArchived)
		require.NoError(t, err)

		_, err = fx.svc.UpdateStatus(context.Background(), fx.provider, created.ID, domain.StatusAccepted)
		assert.ErrorIs(t, err, ErrRequestArchived)
		assert.Equal(t, 5, fx.tokens.balances[10])
	})

	t.Run("rejects invalid target statuses", func(t *testing.T) {
		fx := newRequestFixture(t, 5)
		created := fx.submit(t)

		_, err := fx.svc.UpdateStatus(context.Background(), fx.provider, created.ID, domain.StatusPending)
		assert.ErrorIs(t, err, ErrInvalidStatus)

		_, err = fx.svc.UpdateStatus(context.Background(), fx.provider, created.ID, domain.RequestStatus("DELETED"))
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("another provider cannot touch the request", func(t *testing.T) {
		fx := newRequestFixture(t, 5)
		created := fx.submit(t)

		_, err := fx.svc.UpdateStatus(context.Background(), fx.outsider, created.ID, domain.StatusAccepted)

		assert.ErrorIs(t, err, ErrNotRequestParty)
	})
}

func TestRequestService_PostMessage(t *testing.T) {
	t.Run("provider's first message charges a token and flips the status", func(t *testing.T) {
		fx := newRequestFixture(t, 3)
		created := fx.submit(t)

		_, err := fx.svc.PostMessage(context.Background(), fx.provider, created.ID, "Hi, happy to help!")
		require.NoError(t, err)

		request, err := fx.svc.GetRequest(context.Background(), fx.provider, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusResponded, request.Status)
		assert.Equal(t, 2, fx.tokens.balances[10])

		// Follow-up messages on the same request are free.
		_, err = fx.svc.PostMessage(context.Background(), fx.provider, created.ID, "Here is the menu.")
		require.NoError(t, err)
		assert.Equal(t, 2, fx.tokens.balances[10])
		require.Len(t, fx.tokens.transactions, 1)
	})

	t.Run("provider message with no tokens stores nothing", func(t *testing.T) {
		fx := newRequestFixture(t, 0)
		created := fx.submit(t)

		_, err := fx.svc.PostMessage(context.Background(), fx.provider, created.ID, "Hi!")

		var insufficientErr *InsufficientTokensError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Empty(t, fx.repo.messages)
	})

	t.Run("organizer messages are always free", func(t *testing.T) {
		fx := newRequestFixture(t, 0)
		created := fx.submit(t)

		_, err := fx.svc.PostMessage(context.Background(), fx.organizer, created.ID, "Any update?")

		require.NoError(t, err)
		assert.Empty(t, fx.tokens.transactions)
	})

	t.Run("outsiders read as not found", func(t *testing.T) {
		fx := newRequestFixture(t, 5)
		created := fx.submit(t)

		_, err := fx.svc.PostMessage(context.Background(), fx.outsider, created.ID, "let me in")

		assert.ErrorIs(t, err, ErrRequestNotFound)
	})
}

func TestRequestService_GetRequest(t *testing.T) {
	fx := newRequestFixture(t, 5)
	created := fx.submit(t)

	t.Run("visible to both parties", func(t *testing.T) {
		for _, user := range []domain.User{fx.organizer, fx.provider} {
			found, err := fx.svc.GetRequest(context.Background(), user, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.ID, found.ID)
		}
	})

	t.Run("outsider gets not found", func(t *testing.T) {
		_, err := fx.svc.GetRequest(context.Background(), fx.outsider, created.ID)
		assert.ErrorIs(t, err, ErrRequestNotFound)
	})

	t.Run("missing request", func(t *testing.T) {
		_, err := fx.svc.GetRequest(context.Background(), fx.organizer, 999)
		assert.ErrorIs(t, err, ErrRequestNotFound)
	})
}

func TestRequestService_GetRequestsForUser(t *testing.T) {
	fx := newRequestFixture(t, 5)
	first := fx.submit(t)
	second := fx.submit(t)

	t.Run("provider sees inbound requests", func(t *testing.T) {
		requests, err := fx.svc.GetRequestsForUser(context.Background(), fx.provider)
		require.NoError(t, err)
		assert.Len(t, requests, 2)
	})

	t.Run("organizer sees own submissions", func(t *testing.T) {
		requests, err := fx.svc.GetRequestsForUser(context.Background(), fx.organizer)
		require.NoError(t, err)
		require.Len(t, requests, 2)

		ids := []uint{requests[0].ID, requests[1].ID}
		assert.ElementsMatch(t, []uint{first.ID, second.ID}, ids)
	})
}
