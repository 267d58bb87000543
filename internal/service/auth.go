package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/repository"
)

var (
	ErrUserEmailExists = repository.ErrUserEmailExists
	ErrWrongPassword   = errors.New("wrong password")
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

type AuthProviderRepository interface {
	Create(ctx context.Context, provider domain.Provider) (domain.Provider, error)
}

type AuthService struct {
	repo         AuthUserRepository
	providerRepo AuthProviderRepository
}

func NewAuthService(repo AuthUserRepository, providerRepo AuthProviderRepository) *AuthService {
	return &AuthService{
		repo:         repo,
		providerRepo: providerRepo,
	}
}

func (s *AuthService) SignupOrganizer(ctx context.Context, user domain.User) (domain.User, error) {
	hashedPassword, err := hashPassword(user.Password)
	if err != nil {
		return domain.User{}, err
	}
	user.Password = hashedPassword
	user.Role = domain.RoleOrganizer

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *AuthService) SignupProvider(ctx context.Context, user domain.User, provider domain.Provider) (domain.User, error) {
	hashedPassword, err := hashPassword(user.Password)
	if err != nil {
		return domain.User{}, err
	}
	user.Password = hashedPassword
	user.Role = domain.RoleProvider

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	provider.UserID = created.ID
	if provider.Slug == "" {
		provider.Slug = Slugify(provider.CompanyName)
	}

	if _, err = s.providerRepo.Create(ctx, provider); err != nil {
		return domain.User{}, fmt.Errorf("s.providerRepo.Create -> %w", err)
	}

	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongPassword
	}

	return user, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Slugify derives a URL slug from a company name. Collisions are left to the
// unique index; signup asks for a different name rather than suffixing.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		}
		return -1
	}, slug)

	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	return strings.Trim(slug, "-")
}
