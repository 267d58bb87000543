package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrRequestNotFound = errors.New("request not found")

type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusResponded RequestStatus = "RESPONDED"
	StatusAccepted  RequestStatus = "ACCEPTED"
	StatusRefused   RequestStatus = "REFUSED"
	StatusArchived  RequestStatus = "ARCHIVED"
)

type QuoteRequest struct {
	ID uint `gorm:"primaryKey"`

	OrganizerID uint `gorm:"index;not null"`
	Organizer   User `gorm:"foreignKey:OrganizerID"`
	ProviderID  uint `gorm:"index;not null"`

	ContactName string `gorm:"not null"`
	Email       string `gorm:"not null"`
	Phone       string
	EventType   string `gorm:"not null"`
	EventDate   *time.Time
	GuestCount  *int
	BudgetMin   *int
	BudgetMax   *int
	Message     string `gorm:"not null"`

	Status RequestStatus `gorm:"not null;default:PENDING"`

	Messages []Message `gorm:"foreignKey:RequestID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (QuoteRequest) TableName() string {
	return "quote_requests"
}

type Message struct {
	ID        uint   `gorm:"primaryKey"`
	RequestID uint   `gorm:"index;not null"`
	AuthorID  uint   `gorm:"not null"`
	Author    User   `gorm:"foreignKey:AuthorID"`
	Content   string `gorm:"not null"`
	CreatedAt time.Time
}

type RequestDAO struct {
	db *gorm.DB
}

func NewRequestDAO(db *gorm.DB) *RequestDAO {
	return &RequestDAO{
		db: db,
	}
}

func (d *RequestDAO) Insert(ctx context.Context, request QuoteRequest) (QuoteRequest, error) {
	request.Status = StatusPending

	result := d.db.WithContext(ctx).Create(&request)
	if result.Error != nil {
		return QuoteRequest{}, result.Error
	}

	return request, nil
}

func (d *RequestDAO) FindByID(ctx context.Context, id uint) (QuoteRequest, error) {
	var request QuoteRequest

	result := d.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at asc")
		}).
		Preload("Messages.Author").
		First(&request, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return QuoteRequest{}, ErrRequestNotFound
		}

		return QuoteRequest{}, result.Error
	}

	return request, nil
}

func (d *RequestDAO) FindByProviderID(ctx context.Context, providerID uint) ([]QuoteRequest, error) {
	var requests []QuoteRequest

	result := d.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Preload("Organizer").
		Order("created_at desc").
		Find(&requests)
	if result.Error != nil {
		return nil, result.Error
	}

	return requests, nil
}

func (d *RequestDAO) FindByOrganizerID(ctx context.Context, organizerID uint) ([]QuoteRequest, error) {
	var requests []QuoteRequest

	result := d.db.WithContext(ctx).
		Where("organizer_id = ?", organizerID).
		Order("created_at desc").
		Find(&requests)
	if result.Error != nil {
		return nil, result.Error
	}

	return requests, nil
}

// UpdateStatus sets the status without touching the ledger. Used for the free
// transitions (REFUSED, ARCHIVED).
func (d *RequestDAO) UpdateStatus(ctx context.Context, requestID uint, status RequestStatus) (QuoteRequest, error) {
	var request QuoteRequest

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		request.Status = status
		return tx.Model(&QuoteRequest{}).Where("id = ?", requestID).
			Update("status", status).Error
	})
	if err != nil {
		return QuoteRequest{}, err
	}

	return request, nil
}

// UpdateStatusCharged passes the unlock gate and sets the status in one
// transaction. If the gate fails the status is untouched.
func (d *RequestDAO) UpdateStatusCharged(ctx context.Context, requestID, providerID uint, status RequestStatus) (QuoteRequest, error) {
	var request QuoteRequest

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ensureUnlocked(tx, providerID, requestID); err != nil {
			return err
		}

		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		request.Status = status
		return tx.Model(&QuoteRequest{}).Where("id = ?", requestID).
			Update("status", status).Error
	})
	if err != nil {
		return QuoteRequest{}, err
	}

	return request, nil
}

// InsertMessage stores an organizer message. No ledger involvement.
func (d *RequestDAO) InsertMessage(ctx context.Context, message Message) (Message, error) {
	result := d.db.WithContext(ctx).Create(&message)
	if result.Error != nil {
		return Message{}, result.Error
	}

	return message, nil
}

// InsertProviderMessage passes the unlock gate, stores the message and, when
// the request is still PENDING, marks it RESPONDED, all in one transaction.
// If the gate fails nothing is stored and no status changes.
func (d *RequestDAO) InsertProviderMessage(ctx context.Context, message Message, providerID uint) (Message, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ensureUnlocked(tx, providerID, message.RequestID); err != nil {
			return err
		}

		if err := tx.Create(&message).Error; err != nil {
			return err
		}

		return tx.Model(&QuoteRequest{}).
			Where("id = ? AND status = ?", message.RequestID, StatusPending).
			Update("status", StatusResponded).Error
	})
	if err != nil {
		return Message{}, err
	}

	return message, nil
}
