package repository

import (
	"context"
	"fmt"

	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/repository/dao"
)

// InsufficientTokensError is surfaced unchanged up the stack so the transport
// layer can render it as 402 with the current balance.
type InsufficientTokensError = dao.InsufficientTokensError

type TokenDAO interface {
	RecordTransaction(ctx context.Context, providerID uint, amount int, txnType dao.TransactionType, description string, requestID *uint) (dao.TokenTransaction, error)
	GetBalance(ctx context.Context, providerID uint) (int, error)
	ListTransactions(ctx context.Context, providerID uint, limit int) ([]dao.TokenTransaction, error)
	EnsureUnlocked(ctx context.Context, providerID, requestID uint) (dao.UnlockOutcome, error)
	IsUnlocked(ctx context.Context, providerID, requestID uint) (bool, error)
}

type TokenRepository struct {
	dao TokenDAO
}

func NewTokenRepository(dao TokenDAO) *TokenRepository {
	return &TokenRepository{
		dao: dao,
	}
}

func (r *TokenRepository) RecordTransaction(ctx context.Context, providerID uint, amount int, txnType domain.TransactionType, description string, requestID *uint) (domain.TokenTransaction, error) {
	created, err := r.dao.RecordTransaction(ctx, providerID, amount, dao.TransactionType(txnType), description, requestID)
	if err != nil {
		return domain.TokenTransaction{}, fmt.Errorf("r.dao.RecordTransaction -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *TokenRepository) GetBalance(ctx context.Context, providerID uint) (int, error) {
	balance, err := r.dao.GetBalance(ctx, providerID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.GetBalance -> %w", err)
	}

	return balance, nil
}

func (r *TokenRepository) ListTransactions(ctx context.Context, providerID uint, limit int) ([]domain.TokenTransaction, error) {
	found, err := r.dao.ListTransactions(ctx, providerID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListTransactions -> %w", err)
	}

	transactions := make([]domain.TokenTransaction, len(found))
	for i, t := range found {
		transactions[i] = r.daoToDomain(t)
	}

	return transactions, nil
}

func (r *TokenRepository) EnsureUnlocked(ctx context.Context, providerID, requestID uint) (domain.UnlockResult, error) {
	outcome, err := r.dao.EnsureUnlocked(ctx, providerID, requestID)
	if err != nil {
		return domain.UnlockResult{}, fmt.Errorf("r.dao.EnsureUnlocked -> %w", err)
	}

	return domain.UnlockResult{Balance: outcome.Balance, Charged: outcome.Charged}, nil
}

func (r *TokenRepository) IsUnlocked(ctx context.Context, providerID, requestID uint) (bool, error) {
	unlocked, err := r.dao.IsUnlocked(ctx, providerID, requestID)
	if err != nil {
		return false, fmt.Errorf("r.dao.IsUnlocked -> %w", err)
	}

	return unlocked, nil
}

func (r *TokenRepository) daoToDomain(t dao.TokenTransaction) domain.TokenTransaction {
	return domain.TokenTransaction{
		ID:           t.ID,
		ProviderID:   t.ProviderID,
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		Type:         domain.TransactionType(t.Type),
		Description:  t.Description,
		RequestID:    t.RequestID,
		CreatedAt:    t.CreatedAt,
	}
}
