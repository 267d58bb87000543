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

type fakeAuthUserRepository struct {
	byEmail map[string]domain.User
	nextID  uint
}

func newFakeAuthUserRepository() *fakeAuthUserRepository {
	return &fakeAuthUserRepository{
		byEmail: make(map[string]domain.User),
	}
}

func (f *fakeAuthUserRepository) Create(_ context.Context, user domain.User) (domain.User, error) {
	if _, exists := f.byEmail[user.Email]; exists {
		return domain.User{}, repository.ErrUserEmailExists
	}

	f.nextID++
	user.ID = f.nextID
	f.byEmail[user.Email] = user

	return user, nil
}

func (f *fakeAuthUserRepository) FindByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

type fakeAuthProviderRepository struct {
	created []domain.Provider
}

func (f *fakeAuthProviderRepository) Create(_ context.Context, provider domain.Provider) (domain.Provider, error) {
	provider.ID = uint(len(f.created) + 1)
	f.created = append(f.created, provider)

	return provider, nil
}

func TestAuthService_SignupProvider(t *testing.T) {
	users := newFakeAuthUserRepository()
	providers := &fakeAuthProviderRepository{}
	svc := NewAuthService(users, providers)

	user, err := svc.SignupProvider(context.Background(), domain.User{
		Email:    "pro@example.com",
		Password: "supersecret1",
		Name:     "Max Dupont",
	}, domain.Provider{
		CompanyName: "DJ Max Events",
		Category:    "dj",
		City:        "Lyon",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleProvider, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("supersecret1")))

	require.Len(t, providers.created, 1)
	assert.Equal(t, user.ID, providers.created[0].UserID)
	assert.Equal(t, "dj-max-events", providers.created[0].Slug)
	assert.Zero(t, providers.created[0].TokenBalance)
}

func TestAuthService_SignupOrganizer(t *testing.T) {
	users := newFakeAuthUserRepository()
	svc := NewAuthService(users, &fakeAuthProviderRepository{})

	user, err := svc.SignupOrganizer(context.Background(), domain.User{
		Email:    "orga@example.com",
		Password: "supersecret1",
		Name:     "Alice Martin",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleOrganizer, user.Role)

	_, err = svc.SignupOrganizer(context.Background(), domain.User{
		Email:    "orga@example.com",
		Password: "supersecret1",
	})
	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestAuthService_Login(t *testing.T) {
	users := newFakeAuthUserRepository()
	svc := NewAuthService(users, &fakeAuthProviderRepository{})

	_, err := svc.SignupOrganizer(context.Background(), domain.User{
		Email:    "orga@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Login(context.Background(), "orga@example.com", "supersecret1")
		require.NoError(t, err)
		assert.Equal(t, "orga@example.com", user.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "orga@example.com", "nope")
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "ghost@example.com", "supersecret1")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "DJ Max Events", want: "dj-max-events"},
		{name: "extra whitespace", in: "  Delice   Traiteur  ", want: "delice-traiteur"},
		{name: "special characters dropped", in: "Café & Co!", want: "caf-co"},
		{name: "underscores", in: "la_belle_salle", want: "la-belle-salle"},
		{name: "already a slug", in: "studio-photo-13", want: "studio-photo-13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
