package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrReviewExists   = errors.New("review already exists")
)

type Review struct {
	ID uint `gorm:"primaryKey"`

	ProviderID  uint `gorm:"not null;uniqueIndex:idx_reviews_provider_organizer"`
	OrganizerID uint `gorm:"not null;uniqueIndex:idx_reviews_provider_organizer"`

	// Denormalized so public listings never join on users.
	AuthorName string `gorm:"not null"`

	Rating  int    `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment string `gorm:"not null"`

	Reply     string
	RepliedAt *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// RatingSummary is the aggregate row for a provider's review listing.
type RatingSummary struct {
	Average float64
	Count   int64
}

type ReviewDAO struct {
	db *gorm.DB
}

func NewReviewDAO(db *gorm.DB) *ReviewDAO {
	return &ReviewDAO{
		db: db,
	}
}

func (d *ReviewDAO) Insert(ctx context.Context, review Review) (Review, error) {
	result := d.db.WithContext(ctx).Create(&review)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return Review{}, ErrReviewExists
		}

		return Review{}, result.Error
	}

	return review, nil
}

func (d *ReviewDAO) FindByID(ctx context.Context, id uint) (Review, error) {
	var review Review

	result := d.db.WithContext(ctx).First(&review, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Review{}, ErrReviewNotFound
		}

		return Review{}, result.Error
	}

	return review, nil
}

func (d *ReviewDAO) FindByProviderID(ctx context.Context, providerID uint) ([]Review, error) {
	var reviews []Review

	result := d.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at desc, id desc").
		Find(&reviews)
	if result.Error != nil {
		return nil, result.Error
	}

	return reviews, nil
}

// SetReply records the provider's answer on a review.
func (d *ReviewDAO) SetReply(ctx context.Context, reviewID uint, reply string) (Review, error) {
	now := time.Now()

	result := d.db.WithContext(ctx).
		Model(&Review{}).
		Where("id = ?", reviewID).
		Updates(map[string]any{"reply": reply, "replied_at": now})
	if result.Error != nil {
		return Review{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Review{}, ErrReviewNotFound
	}

	return d.FindByID(ctx, reviewID)
}

func (d *ReviewDAO) Summarize(ctx context.Context, providerID uint) (RatingSummary, error) {
	var summary RatingSummary

	result := d.db.WithContext(ctx).
		Model(&Review{}).
		Select("coalesce(avg(rating), 0) as average, count(*) as count").
		Where("provider_id = ?", providerID).
		Scan(&summary)
	if result.Error != nil {
		return RatingSummary{}, result.Error
	}

	return summary, nil
}
