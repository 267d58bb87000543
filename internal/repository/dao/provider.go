package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrProviderNotFound = errors.New("provider not found")

type Provider struct {
	ID uint `gorm:"primaryKey"`

	UserID uint `gorm:"uniqueIndex;not null"`
	User   User `gorm:"foreignKey:UserID"`

	Slug        string `gorm:"uniqueIndex;not null"`
	CompanyName string `gorm:"not null"`
	Category    string `gorm:"not null"` // "caterer", "photographer", "dj", "venue", ...
	City        string
	Description string

	// Projection of token_transactions; written only inside RecordTransaction
	// and the unlock gate, never independently.
	TokenBalance int `gorm:"not null;default:0;check:token_balance >= 0"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ProviderBalance is the admin list-balances row.
type ProviderBalance struct {
	ProviderID  uint
	CompanyName string
	Email       string
	Balance     int
}

type ProviderDAO struct {
	db *gorm.DB
}

func NewProviderDAO(db *gorm.DB) *ProviderDAO {
	return &ProviderDAO{
		db: db,
	}
}

func (d *ProviderDAO) Insert(ctx context.Context, provider Provider) (Provider, error) {
	result := d.db.WithContext(ctx).Create(&provider)
	if result.Error != nil {
		return Provider{}, result.Error
	}

	return provider, nil
}

func (d *ProviderDAO) FindByID(ctx context.Context, id uint) (Provider, error) {
	var provider Provider

	result := d.db.WithContext(ctx).First(&provider, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Provider{}, ErrProviderNotFound
		}

		return Provider{}, result.Error
	}

	return provider, nil
}

func (d *ProviderDAO) FindByUserID(ctx context.Context, userID uint) (Provider, error) {
	var provider Provider

	result := d.db.WithContext(ctx).First(&provider, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Provider{}, ErrProviderNotFound
		}

		return Provider{}, result.Error
	}

	return provider, nil
}

func (d *ProviderDAO) FindBySlug(ctx context.Context, slug string) (Provider, error) {
	var provider Provider

	result := d.db.WithContext(ctx).First(&provider, "slug = ?", slug)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Provider{}, ErrProviderNotFound
		}

		return Provider{}, result.Error
	}

	return provider, nil
}

func (d *ProviderDAO) List(ctx context.Context) ([]Provider, error) {
	var providers []Provider

	result := d.db.WithContext(ctx).Order("company_name asc").Find(&providers)
	if result.Error != nil {
		return nil, result.Error
	}

	return providers, nil
}

func (d *ProviderDAO) ListBalances(ctx context.Context) ([]ProviderBalance, error) {
	var balances []ProviderBalance

	result := d.db.WithContext(ctx).
		Model(&Provider{}).
		Select("providers.id as provider_id, providers.company_name, users.email, providers.token_balance as balance").
		Joins("JOIN users ON users.id = providers.user_id").
		Order("providers.company_name asc").
		Scan(&balances)
	if result.Error != nil {
		return nil, result.Error
	}

	return balances, nil
}
