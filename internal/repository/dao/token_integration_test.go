package dao

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	testDB     *gorm.DB
	fixtureSeq uint32
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("dockertest.NewPool -> %v", err)
	}

	resource, err := pool.Run("postgres", "16-alpine", []string{
		"POSTGRES_USER=postgres",
		"POSTGRES_PASSWORD=postgres",
		"POSTGRES_DB=central_events_test",
	})
	if err != nil {
		log.Fatalf("pool.Run -> %v", err)
	}

	if err = pool.Retry(func() error {
		dsn := fmt.Sprintf(
			"host=localhost port=%s user=postgres password=postgres dbname=central_events_test sslmode=disable",
			resource.GetPort("5432/tcp"),
		)

		testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return err
		}

		sqlDB, err := testDB.DB()
		if err != nil {
			return err
		}

		return sqlDB.Ping()
	}); err != nil {
		log.Fatalf("could not connect to postgres -> %v", err)
	}

	if err = InitTables(testDB); err != nil {
		log.Fatalf("dao.InitTables -> %v", err)
	}

	code := m.Run()

	if err = pool.Purge(resource); err != nil {
		log.Fatalf("pool.Purge -> %v", err)
	}

	os.Exit(code)
}

func requireDB(t *testing.T) *gorm.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	return testDB
}

// createProvider inserts a user and provider pair with the given starting
// balance and returns the provider ID.
func createProvider(t *testing.T, db *gorm.DB, balance int) uint {
	t.Helper()

	seq := atomic.AddUint32(&fixtureSeq, 1)

	user := User{
		Email: fmt.Sprintf("provider%d@example.com", seq),
		Name:  fmt.Sprintf("Provider %d", seq),
		Role:  "provider",
	}
	require.NoError(t, db.Create(&user).Error)

	provider := Provider{
		UserID:       user.ID,
		Slug:         fmt.Sprintf("provider-%d", seq),
		CompanyName:  fmt.Sprintf("Provider %d", seq),
		Category:     "caterer",
		TokenBalance: balance,
	}
	require.NoError(t, db.Create(&provider).Error)

	return provider.ID
}

func createRequest(t *testing.T, db *gorm.DB, providerID uint) uint {
	t.Helper()

	seq := atomic.AddUint32(&fixtureSeq, 1)

	organizer := User{
		Email: fmt.Sprintf("organizer%d@example.com", seq),
		Role:  "organizer",
	}
	require.NoError(t, db.Create(&organizer).Error)

	request := QuoteRequest{
		OrganizerID: organizer.ID,
		ProviderID:  providerID,
		ContactName: "Alice Martin",
		Email:       organizer.Email,
		EventType:   "wedding",
		Message:     "Looking for a caterer for 80 guests.",
		Status:      StatusPending,
	}
	require.NoError(t, db.Create(&request).Error)

	return request.ID
}

func TestTokenDAO_RecordTransaction(t *testing.T) {
	db := requireDB(t)
	tokenDAO := NewTokenDAO(db)
	ctx := context.Background()

	providerID := createProvider(t, db, 0)

	grant, err := tokenDAO.RecordTransaction(ctx, providerID, 5, TransactionGrant, "Admin: seed", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, grant.BalanceAfter)

	spend, err := tokenDAO.RecordTransaction(ctx, providerID, -2, TransactionSpend, "manual adjustment", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, spend.BalanceAfter)

	balance, err := tokenDAO.GetBalance(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, 3, balance)

	t.Run("overdraw is rejected and leaves no trace", func(t *testing.T) {
		_, err := tokenDAO.RecordTransaction(ctx, providerID, -10, TransactionSpend, "too much", nil)

		var insufficientErr *InsufficientTokensError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, 3, insufficientErr.Balance)

		balance, err := tokenDAO.GetBalance(ctx, providerID)
		require.NoError(t, err)
		assert.Equal(t, 3, balance)

		transactions, err := tokenDAO.ListTransactions(ctx, providerID, 10)
		require.NoError(t, err)
		assert.Len(t, transactions, 2)
	})

	t.Run("history is newest first with balance snapshots", func(t *testing.T) {
		transactions, err := tokenDAO.ListTransactions(ctx, providerID, 10)
		require.NoError(t, err)
		require.Len(t, transactions, 2)

		assert.Equal(t, TransactionSpend, transactions[0].Type)
		assert.Equal(t, 3, transactions[0].BalanceAfter)
		assert.Equal(t, TransactionGrant, transactions[1].Type)
		assert.Equal(t, 5, transactions[1].BalanceAfter)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := tokenDAO.RecordTransaction(ctx, 999999, 5, TransactionGrant, "ghost", nil)
		assert.ErrorIs(t, err, ErrProviderNotFound)
	})
}

func TestTokenDAO_EnsureUnlocked_ChargesAtMostOnce(t *testing.T) {
	db := requireDB(t)
	tokenDAO := NewTokenDAO(db)
	ctx := context.Background()

	providerID := createProvider(t, db, 3)
	requestID := createRequest(t, db, providerID)

	const workers = 8

	var wg sync.WaitGroup
	var charged atomic.Int32
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			outcome, err := tokenDAO.EnsureUnlocked(ctx, providerID, requestID)
			if err != nil {
				errs <- err
				return
			}
			if outcome.Charged {
				charged.Add(1)
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), charged.Load())

	balance, err := tokenDAO.GetBalance(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, 2, balance)

	transactions, err := tokenDAO.ListTransactions(ctx, providerID, 10)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, TransactionSpend, transactions[0].Type)
	assert.Equal(t, -1, transactions[0].Amount)
	require.NotNil(t, transactions[0].RequestID)
	assert.Equal(t, requestID, *transactions[0].RequestID)

	unlocked, err := tokenDAO.IsUnlocked(ctx, providerID, requestID)
	require.NoError(t, err)
	assert.True(t, unlocked)
}

// A writer can slip between the existence checks and the unlock insert when
// the surrounding transaction runs on a snapshot pinned before the writer
// committed. The loser must recover inside the same transaction instead of
// aborting it.
func TestEnsureUnlocked_DuplicateInsertKeepsTransactionUsable(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()

	providerID := createProvider(t, db, 3)
	requestID := createRequest(t, db, providerID)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SET TRANSACTION ISOLATION LEVEL REPEATABLE READ").Error; err != nil {
			return err
		}

		// Pin the snapshot before the concurrent writer commits.
		var count int64
		if err := tx.Model(&RequestUnlock{}).
			Where("provider_id = ? AND request_id = ?", providerID, requestID).
			Count(&count).Error; err != nil {
			return err
		}
		require.Zero(t, count)

		// Another connection unlocks the pair and commits. The pinned snapshot
		// cannot see the row, so both existence checks miss it and the insert
		// lands on the composite unique index.
		require.NoError(t, db.Create(&RequestUnlock{ProviderID: providerID, RequestID: requestID}).Error)

		outcome, err := ensureUnlocked(tx, providerID, requestID)
		require.NoError(t, err)
		assert.False(t, outcome.Charged)
		assert.Equal(t, 3, outcome.Balance)

		// The transaction must still accept statements after the recovery.
		return tx.Model(&QuoteRequest{}).
			Where("id = ?", requestID).
			Update("status", StatusAccepted).Error
	})
	require.NoError(t, err)

	requestDAO := NewRequestDAO(db)
	request, err := requestDAO.FindByID(ctx, requestID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, request.Status)

	tokenDAO := NewTokenDAO(db)
	balance, err := tokenDAO.GetBalance(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, 3, balance)

	transactions, err := tokenDAO.ListTransactions(ctx, providerID, 10)
	require.NoError(t, err)
	assert.Empty(t, transactions)

	var unlocks int64
	require.NoError(t, db.Model(&RequestUnlock{}).
		Where("provider_id = ? AND request_id = ?", providerID, requestID).
		Count(&unlocks).Error)
	assert.EqualValues(t, 1, unlocks)
}

func TestTokenDAO_EnsureUnlocked_InsufficientBalance(t *testing.T) {
	db := requireDB(t)
	tokenDAO := NewTokenDAO(db)
	ctx := context.Background()

	providerID := createProvider(t, db, 0)
	requestID := createRequest(t, db, providerID)

	_, err := tokenDAO.EnsureUnlocked(ctx, providerID, requestID)

	var insufficientErr *InsufficientTokensError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 0, insufficientErr.Balance)

	unlocked, err := tokenDAO.IsUnlocked(ctx, providerID, requestID)
	require.NoError(t, err)
	assert.False(t, unlocked)
}

func TestRequestDAO_UpdateStatusCharged(t *testing.T) {
	db := requireDB(t)
	requestDAO := NewRequestDAO(db)
	tokenDAO := NewTokenDAO(db)
	ctx := context.Background()

	t.Run("insufficient balance leaves the request untouched", func(t *testing.T) {
		providerID := createProvider(t, db, 0)
		requestID := createRequest(t, db, providerID)

		_, err := requestDAO.UpdateStatusCharged(ctx, requestID, providerID, StatusAccepted)

		var insufficientErr *InsufficientTokensError
		require.ErrorAs(t, err, &insufficientErr)

		request, err := requestDAO.FindByID(ctx, requestID)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, request.Status)
	})

	t.Run("charges once across repeated transitions", func(t *testing.T) {
		providerID := createProvider(t, db, 2)
		requestID := createRequest(t, db, providerID)

		updated, err := requestDAO.UpdateStatusCharged(ctx, requestID, providerID, StatusAccepted)
		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, updated.Status)

		updated, err = requestDAO.UpdateStatusCharged(ctx, requestID, providerID, StatusResponded)
		require.NoError(t, err)
		assert.Equal(t, StatusResponded, updated.Status)

		balance, err := tokenDAO.GetBalance(ctx, providerID)
		require.NoError(t, err)
		assert.Equal(t, 1, balance)
	})
}

func TestRequestDAO_InsertProviderMessage(t *testing.T) {
	db := requireDB(t)
	requestDAO := NewRequestDAO(db)
	tokenDAO := NewTokenDAO(db)
	ctx := context.Background()

	providerID := createProvider(t, db, 1)
	requestID := createRequest(t, db, providerID)

	var provider Provider
	require.NoError(t, db.First(&provider, providerID).Error)

	first := Message{RequestID: requestID, AuthorID: provider.UserID, Content: "Hi, happy to help!"}
	_, err := requestDAO.InsertProviderMessage(ctx, first, providerID)
	require.NoError(t, err)

	request, err := requestDAO.FindByID(ctx, requestID)
	require.NoError(t, err)
	assert.Equal(t, StatusResponded, request.Status)
	require.Len(t, request.Messages, 1)

	balance, err := tokenDAO.GetBalance(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)

	// The pair is unlocked; follow-ups cost nothing even at zero balance.
	second := Message{RequestID: requestID, AuthorID: provider.UserID, Content: "Here is the menu."}
	_, err = requestDAO.InsertProviderMessage(ctx, second, providerID)
	require.NoError(t, err)

	balance, err = tokenDAO.GetBalance(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}
