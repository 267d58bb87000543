package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/repository"
)

type fakeFullUserRepository struct {
	byID    map[uint]domain.User
	byEmail map[string]domain.User
	nextID  uint

	// When set, the next Create fails as if a concurrent insert won.
	raceOnce *domain.User
}

func newFakeFullUserRepository() *fakeFullUserRepository {
	return &fakeFullUserRepository{
		byID:    make(map[uint]domain.User),
		byEmail: make(map[string]domain.User),
	}
}

func (f *fakeFullUserRepository) Create(_ context.Context, user domain.User) (domain.User, error) {
	if f.raceOnce != nil {
		winner := *f.raceOnce
		f.raceOnce = nil
		f.byID[winner.ID] = winner
		f.byEmail[winner.Email] = winner

		return domain.User{}, repository.ErrUserEmailExists
	}

	if _, exists := f.byEmail[user.Email]; exists {
		return domain.User{}, repository.ErrUserEmailExists
	}

	f.nextID++
	user.ID = f.nextID
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user

	return user, nil
}

func (f *fakeFullUserRepository) FindByID(_ context.Context, id uint) (domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

func (f *fakeFullUserRepository) FindByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

func (f *fakeFullUserRepository) UpdateName(_ context.Context, id uint, name string) (domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	user.Name = name
	f.byID[id] = user
	f.byEmail[user.Email] = user

	return user, nil
}

func (f *fakeFullUserRepository) UpdatePassword(_ context.Context, id uint, hashedPassword string) error {
	user, ok := f.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}

	user.Password = hashedPassword
	f.byID[id] = user
	f.byEmail[user.Email] = user

	return nil
}

func TestUserService_ResolveOrganizer(t *testing.T) {
	t.Run("creates a passwordless organizer for a new email", func(t *testing.T) {
		repo := newFakeFullUserRepository()
		svc := NewUserService(repo)

		user, err := svc.ResolveOrganizer(context.Background(), "new@example.com", "Alice Martin")

		require.NoError(t, err)
		assert.Equal(t, domain.RoleOrganizer, user.Role)
		assert.Empty(t, user.Password)
		assert.NotZero(t, user.ID)
	})

	t.Run("reuses the existing identity", func(t *testing.T) {
		repo := newFakeFullUserRepository()
		svc := NewUserService(repo)

		first, err := svc.ResolveOrganizer(context.Background(), "alice@example.com", "Alice")
		require.NoError(t, err)
		second, err := svc.ResolveOrganizer(context.Background(), "alice@example.com", "Alice M.")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Len(t, repo.byID, 1)
	})

	t.Run("falls back to lookup when a concurrent insert wins", func(t *testing.T) {
		repo := newFakeFullUserRepository()
		repo.raceOnce = &domain.User{ID: 42, Email: "race@example.com", Role: domain.RoleOrganizer}
		svc := NewUserService(repo)

		user, err := svc.ResolveOrganizer(context.Background(), "race@example.com", "Racer")

		require.NoError(t, err)
		assert.Equal(t, uint(42), user.ID)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	repo := newFakeFullUserRepository()
	created, err := repo.Create(context.Background(), domain.User{Email: "alice@example.com", Name: "Alice"})
	require.NoError(t, err)

	svc := NewUserService(repo)

	updated, err := svc.UpdateProfile(context.Background(), created.ID, "Alice Martin")
	require.NoError(t, err)
	assert.Equal(t, "Alice Martin", updated.Name)
	assert.Equal(t, created.Email, updated.Email)

	_, err = svc.UpdateProfile(context.Background(), 999, "Ghost")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserService_ChangePassword(t *testing.T) {
	t.Run("stores a hash that verifies against the new password", func(t *testing.T) {
		repo := newFakeFullUserRepository()
		created, err := repo.Create(context.Background(), domain.User{Email: "alice@example.com"})
		require.NoError(t, err)

		svc := NewUserService(repo)

		require.NoError(t, svc.ChangePassword(context.Background(), created.ID, "s3cret-pass"))

		stored := repo.byID[created.ID].Password
		assert.NotEqual(t, "s3cret-pass", stored)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("s3cret-pass")))
	})

	t.Run("sets a first password for an anonymous organizer", func(t *testing.T) {
		repo := newFakeFullUserRepository()
		svc := NewUserService(repo)

		organizer, err := svc.ResolveOrganizer(context.Background(), "anon@example.com", "Anon")
		require.NoError(t, err)
		require.Empty(t, organizer.Password)

		require.NoError(t, svc.ChangePassword(context.Background(), organizer.ID, "br4nd-new-pass"))
		assert.NotEmpty(t, repo.byID[organizer.ID].Password)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := newFakeFullUserRepository()
		svc := NewUserService(repo)

		err := svc.ChangePassword(context.Background(), 999, "wh4tever-pass")
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})
}

func TestUserService_GetUser(t *testing.T) {
	repo := newFakeFullUserRepository()
	created, err := repo.Create(context.Background(), domain.User{Email: "someone@example.com"})
	require.NoError(t, err)

	svc := NewUserService(repo)

	found, err := svc.GetUser(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, found.Email)

	_, err = svc.GetUser(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
