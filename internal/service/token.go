package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/centralevents/central-events-api/internal/domain"
	"github.com/centralevents/central-events-api/internal/repository"
)

// InsufficientTokensError is re-exported so handlers can errors.As against
// the service package only.
type InsufficientTokensError = repository.InsufficientTokensError

var (
	ErrInvalidGrantAmount = errors.New("grant amount must be between 1 and 100")
	ErrUnknownPackage     = errors.New("unknown token package")
)

// TokenPackage is a fixed top-up offer. The price is informational and only
// recorded in the transaction description; no payment is captured here.
type TokenPackage struct {
	Key    string  `json:"key"`
	Tokens int     `json:"tokens"`
	Price  float64 `json:"price"`
}

// Packages is the purchase catalog, keyed by packageKey.
var Packages = map[string]TokenPackage{
	"starter": {Key: "starter", Tokens: 5, Price: 9.99},
	"popular": {Key: "popular", Tokens: 15, Price: 24.99},
	"pro":     {Key: "pro", Tokens: 30, Price: 44.99},
}

type TokenRepository interface {
	RecordTransaction(ctx context.Context, providerID uint, amount int, txnType domain.TransactionType, description string, requestID *uint) (domain.TokenTransaction, error)
	GetBalance(ctx context.Context, providerID uint) (int, error)
	ListTransactions(ctx context.Context, providerID uint, limit int) ([]domain.TokenTransaction, error)
	EnsureUnlocked(ctx context.Context, providerID, requestID uint) (domain.UnlockResult, error)
	IsUnlocked(ctx context.Context, providerID, requestID uint) (bool, error)
}

type BalanceLister interface {
	ListBalances(ctx context.Context) ([]domain.ProviderBalance, error)
}

type TokenService struct {
	repo         TokenRepository
	providerRepo BalanceLister
}

func NewTokenService(repo TokenRepository, providerRepo BalanceLister) *TokenService {
	return &TokenService{
		repo:         repo,
		providerRepo: providerRepo,
	}
}

// Grant credits tokens without payment. Admin only; enforced at the boundary.
func (s *TokenService) Grant(ctx context.Context, providerID uint, amount int, reason string) (int, error) {
	if amount < 1 || amount > 100 {
		return 0, ErrInvalidGrantAmount
	}

	transaction, err := s.repo.RecordTransaction(ctx, providerID, amount,
		domain.TransactionGrant, fmt.Sprintf("Admin: %s", reason), nil)
	if err != nil {
		return 0, fmt.Errorf("s.repo.RecordTransaction -> %w", err)
	}

	return transaction.BalanceAfter, nil
}

// Purchase resolves a package key from the catalog and credits its tokens.
// Payment is treated as externally authorized.
func (s *TokenService) Purchase(ctx context.Context, providerID uint, packageKey string) (int, error) {
	pkg, ok := Packages[packageKey]
	if !ok {
		return 0, ErrUnknownPackage
	}

	description := fmt.Sprintf("Purchase of %d tokens (€%.2f)", pkg.Tokens, pkg.Price)
	transaction, err := s.repo.RecordTransaction(ctx, providerID, pkg.Tokens,
		domain.TransactionPurchase, description, nil)
	if err != nil {
		return 0, fmt.Errorf("s.repo.RecordTransaction -> %w", err)
	}

	return transaction.BalanceAfter, nil
}

func (s *TokenService) GetBalance(ctx context.Context, providerID uint) (int, error) {
	balance, err := s.repo.GetBalance(ctx, providerID)
	if err != nil {
		return 0, fmt.Errorf("s.repo.GetBalance -> %w", err)
	}

	return balance, nil
}

func (s *TokenService) GetTransactions(ctx context.Context, providerID uint, limit int) ([]domain.TokenTransaction, error) {
	transactions, err := s.repo.ListTransactions(ctx, providerID, limit)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListTransactions -> %w", err)
	}

	return transactions, nil
}

func (s *TokenService) ListBalances(ctx context.Context) ([]domain.ProviderBalance, error) {
	balances, err := s.providerRepo.ListBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.providerRepo.ListBalances -> %w", err)
	}

	return balances, nil
}

func (s *TokenService) IsUnlocked(ctx context.Context, providerID, requestID uint) (bool, error) {
	unlocked, err := s.repo.IsUnlocked(ctx, providerID, requestID)
	if err != nil {
		return false, fmt.Errorf("s.repo.IsUnlocked -> %w", err)
	}

	return unlocked, nil
}
