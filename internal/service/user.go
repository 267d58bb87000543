package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/repository"
)

var ErrUserNotFound = repository.ErrUserNotFound

type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateName(ctx context.Context, id uint, name string) (domain.User, error)
	UpdatePassword(ctx context.Context, id uint, hashedPassword string) error
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, name string) (domain.User, error) {
	updated, err := s.repo.UpdateName(ctx, userID, name)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.UpdateName -> %w", err)
	}

	return updated, nil
}

// ChangePassword replaces the user's password. Anonymous organizers created
// from a quote submission have no password yet; setting one here upgrades
// them to a full account.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, password string) error {
	hashedPassword, err := hashPassword(password)
	if err != nil {
		return err
	}

	if err = s.repo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return fmt.Errorf("s.repo.UpdatePassword -> %w", err)
	}

	return nil
}

// ResolveOrganizer finds or creates a lightweight organizer identity by
// contact email. Anonymous quote submissions go through here so the request
// lifecycle only ever sees a concrete organizer ID.
func (s *UserService) ResolveOrganizer(ctx context.Context, email, name string) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	created, err := s.repo.Create(ctx, domain.User{
		Email: email,
		Name:  name,
		Role:  domain.RoleOrganizer,
	})
	if err != nil {
		// A concurrent submission with the same email may have won the insert.
		if errors.Is(err, repository.ErrUserEmailExists) {
			return s.repo.FindByEmail(ctx, email)
		}

		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}
