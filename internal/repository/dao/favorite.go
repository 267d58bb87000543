package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrFavoriteExists   = errors.New("favorite already exists")
	ErrFavoriteNotFound = errors.New("favorite not found")
)

// Favorite bookmarks a provider for a user. One row per (user, provider).
type Favorite struct {
	ID uint `gorm:"primaryKey"`

	UserID     uint `gorm:"not null;uniqueIndex:idx_favorites_user_provider"`
	ProviderID uint `gorm:"not null;uniqueIndex:idx_favorites_user_provider"`

	CreatedAt time.Time `gorm:"not null"`
}

type FavoriteDAO struct {
	db *gorm.DB
}

func NewFavoriteDAO(db *gorm.DB) *FavoriteDAO {
	return &FavoriteDAO{
		db: db,
	}
}

func (d *FavoriteDAO) Insert(ctx context.Context, userID, providerID uint) error {
	favorite := Favorite{UserID: userID, ProviderID: providerID}

	result := d.db.WithContext(ctx).Create(&favorite)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrFavoriteExists
		}

		return result.Error
	}

	return nil
}

func (d *FavoriteDAO) Delete(ctx context.Context, userID, providerID uint) error {
	result := d.db.WithContext(ctx).
		Where("user_id = ? AND provider_id = ?", userID, providerID).
		Delete(&Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFavoriteNotFound
	}

	return nil
}

func (d *FavoriteDAO) Exists(ctx context.Context, userID, providerID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&Favorite{}).
		Where("user_id = ? AND provider_id = ?", userID, providerID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// ListProviders returns the user's bookmarked providers, newest bookmark
// first.
func (d *FavoriteDAO) ListProviders(ctx context.Context, userID uint) ([]Provider, error) {
	var providers []Provider

	result := d.db.WithContext(ctx).
		Joins("JOIN favorites ON favorites.provider_id = providers.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at desc").
		Find(&providers)
	if result.Error != nil {
		return nil, result.Error
	}

	return providers, nil
}
