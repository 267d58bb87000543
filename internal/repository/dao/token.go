package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultHistoryPageSize = 20
	maxHistoryPageSize     = 100
)

type TransactionType string

const (
	TransactionPurchase TransactionType = "PURCHASE"
	TransactionSpend    TransactionType = "SPEND"
	TransactionGrant    TransactionType = "GRANT"
	TransactionRefund   TransactionType = "REFUND"
)

// InsufficientTokensError carries the balance observed at the time of the
// failed spend so callers can surface it (HTTP 402 with the current balance).
type InsufficientTokensError struct {
	Balance int
}

func (e *InsufficientTokensError) Error() string {
	return fmt.Sprintf("insufficient token balance: %d", e.Balance)
}

type TokenTransaction struct {
	ID           uint            `gorm:"primaryKey"`
	ProviderID   uint            `gorm:"index;not null"`
	Amount       int             `gorm:"not null"`
	BalanceAfter int             `gorm:"not null"`
	Type         TransactionType `gorm:"not null"`
	Description  string          `gorm:"not null"`
	RequestID    *uint
	CreatedAt    time.Time `gorm:"not null"`
}

func (TokenTransaction) TableName() string {
	return "token_transactions"
}

type RequestUnlock struct {
	ID         uint      `gorm:"primaryKey"`
	ProviderID uint      `gorm:"not null;uniqueIndex:idx_unlocks_provider_request"`
	RequestID  uint      `gorm:"not null;uniqueIndex:idx_unlocks_provider_request"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (RequestUnlock) TableName() string {
	return "request_unlocks"
}

// UnlockOutcome reports whether passing the gate charged a token and the
// provider balance after the call.
type UnlockOutcome struct {
	Balance int
	Charged bool
}

type TokenDAO struct {
	db *gorm.DB
}

func NewTokenDAO(db *gorm.DB) *TokenDAO {
	return &TokenDAO{
		db: db,
	}
}

// RecordTransaction applies a signed amount to the provider balance and
// appends the matching ledger entry in one transaction. The provider row is
// locked for the duration of the check-and-write, so concurrent mutations
// against the same provider never read a stale balance.
func (d *TokenDAO) RecordTransaction(ctx context.Context, providerID uint, amount int, txnType TransactionType, description string, requestID *uint) (TokenTransaction, error) {
	var created TokenTransaction

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		provider, err := lockProvider(tx, providerID)
		if err != nil {
			return err
		}

		newBalance := provider.TokenBalance + amount
		if newBalance < 0 {
			return &InsufficientTokensError{Balance: provider.TokenBalance}
		}

		if err = tx.Model(&Provider{}).Where("id = ?", providerID).
			Update("token_balance", newBalance).Error; err != nil {
			return err
		}

		created = TokenTransaction{
			ProviderID:   providerID,
			Amount:       amount,
			BalanceAfter: newBalance,
			Type:         txnType,
			Description:  description,
			RequestID:    requestID,
		}

		return tx.Create(&created).Error
	})
	if err != nil {
		return TokenTransaction{}, err
	}

	return created, nil
}

func (d *TokenDAO) GetBalance(ctx context.Context, providerID uint) (int, error) {
	var provider Provider

	result := d.db.WithContext(ctx).First(&provider, providerID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, ErrProviderNotFound
		}

		return 0, result.Error
	}

	return provider.TokenBalance, nil
}

// ListTransactions returns the provider's ledger entries newest-first.
// A non-positive limit falls back to the default page size; oversized limits
// are capped.
func (d *TokenDAO) ListTransactions(ctx context.Context, providerID uint, limit int) ([]TokenTransaction, error) {
	limit = normalizeHistoryLimit(limit)

	var transactions []TokenTransaction
	result := d.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&transactions)
	if result.Error != nil {
		return nil, result.Error
	}

	return transactions, nil
}

// EnsureUnlocked runs the unlock gate in its own transaction.
func (d *TokenDAO) EnsureUnlocked(ctx context.Context, providerID, requestID uint) (UnlockOutcome, error) {
	var outcome UnlockOutcome

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		outcome, err = ensureUnlocked(tx, providerID, requestID)
		return err
	})
	if err != nil {
		return UnlockOutcome{}, err
	}

	return outcome, nil
}

func (d *TokenDAO) IsUnlocked(ctx context.Context, providerID, requestID uint) (bool, error) {
	var unlock RequestUnlock

	result := d.db.WithContext(ctx).
		Where("provider_id = ? AND request_id = ?", providerID, requestID).
		Take(&unlock)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return false, nil
		}

		return false, result.Error
	}

	return true, nil
}

// ensureUnlocked enforces "one token per (provider, request) pair, charged at
// most once" inside the caller's transaction. The fast path returns without
// locking when the pair is already unlocked. Otherwise the provider row lock
// serializes concurrent spends, and the unlock existence is re-checked under
// the lock before charging.
func ensureUnlocked(tx *gorm.DB, providerID, requestID uint) (UnlockOutcome, error) {
	var unlock RequestUnlock

	err := tx.Where("provider_id = ? AND request_id = ?", providerID, requestID).
		Take(&unlock).Error
	if err == nil {
		balance, err := readBalance(tx, providerID)
		if err != nil {
			return UnlockOutcome{}, err
		}
		return UnlockOutcome{Balance: balance}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return UnlockOutcome{}, err
	}

	provider, err := lockProvider(tx, providerID)
	if err != nil {
		return UnlockOutcome{}, err
	}

	// A concurrent caller may have unlocked the pair while we waited for the
	// row lock; their commit is visible here.
	err = tx.Where("provider_id = ? AND request_id = ?", providerID, requestID).
		Take(&unlock).Error
	if err == nil {
		return UnlockOutcome{Balance: provider.TokenBalance}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return UnlockOutcome{}, err
	}

	if provider.TokenBalance < 1 {
		return UnlockOutcome{}, &InsufficientTokensError{Balance: provider.TokenBalance}
	}

	// The composite unique index is the backstop for writers that raced past
	// both existence checks; under snapshot isolation the re-check above can
	// read a pre-lock snapshot and miss a committed unlock. A failed insert
	// aborts the whole postgres transaction, so the insert runs under a
	// savepoint that lets the caller's surrounding statements proceed.
	if err = tx.SavePoint("before_unlock").Error; err != nil {
		return UnlockOutcome{}, err
	}

	unlock = RequestUnlock{ProviderID: providerID, RequestID: requestID}
	if err = tx.Create(&unlock).Error; err != nil {
		if isUniqueViolation(err) {
			// Losing the race means the pair is already paid.
			if err = tx.RollbackTo("before_unlock").Error; err != nil {
				return UnlockOutcome{}, err
			}

			return UnlockOutcome{Balance: provider.TokenBalance}, nil
		}

		return UnlockOutcome{}, err
	}

	newBalance := provider.TokenBalance - 1
	if err = tx.Model(&Provider{}).Where("id = ?", providerID).
		Update("token_balance", newBalance).Error; err != nil {
		return UnlockOutcome{}, err
	}

	spend := TokenTransaction{
		ProviderID:   providerID,
		Amount:       -1,
		BalanceAfter: newBalance,
		Type:         TransactionSpend,
		Description:  fmt.Sprintf("Response to request #%d", requestID),
		RequestID:    &requestID,
	}
	if err = tx.Create(&spend).Error; err != nil {
		return UnlockOutcome{}, err
	}

	return UnlockOutcome{Balance: newBalance, Charged: true}, nil
}

func lockProvider(tx *gorm.DB, providerID uint) (Provider, error) {
	var provider Provider

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&provider, providerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Provider{}, ErrProviderNotFound
		}

		return Provider{}, err
	}

	return provider, nil
}

func readBalance(tx *gorm.DB, providerID uint) (int, error) {
	var provider Provider

	if err := tx.First(&provider, providerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrProviderNotFound
		}

		return 0, err
	}

	return provider.TokenBalance, nil
}

// normalizeHistoryLimit clamps a caller-supplied page size. The value comes
// straight from a query parameter, so an unbounded limit would let a single
// call drag the whole ledger.
func normalizeHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultHistoryPageSize
	case limit > maxHistoryPageSize:
		return maxHistoryPageSize
	}

	return limit
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
