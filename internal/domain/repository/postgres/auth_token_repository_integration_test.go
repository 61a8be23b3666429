// File: internal/domain/repository/postgres/auth_token_repository_integration_test.go
package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainErrors "github.com/balancy/login-via-telegram/internal/domain/errors"
	"github.com/balancy/login-via-telegram/internal/domain/models"
)

// testPool is shared by the integration tests in this package. It is nil
// when AUTH_TEST_DATABASE_DSN is not set; tests skip in that case. The
// target database must have the migrations applied.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	dsn := os.Getenv("AUTH_TEST_DATABASE_DSN")
	if dsn != "" {
		pool, err := pgxpool.New(context.Background(), dsn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect to test database: %v\n", err)
			os.Exit(1)
		}
		testPool = pool
	}

	code := m.Run()
	if testPool != nil {
		testPool.Close()
	}
	os.Exit(code)
}

func requireTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testPool == nil {
		t.Skip("AUTH_TEST_DATABASE_DSN not set, skipping postgres integration tests")
	}
	return testPool
}

// clearTokenTestTables empties the tables touched by these tests. Order
// matters for the claimed_by foreign key.
func clearTokenTestTables(t *testing.T) {
	t.Helper()
	for _, table := range []string{"auth_tokens", "telegram_identities", "users"} {
		_, err := testPool.Exec(context.Background(), fmt.Sprintf("DELETE FROM %s", table))
		require.NoError(t, err, "Failed to clear table %s", table)
	}
}

func createTestUserForTokenTests(ctx context.Context, t *testing.T) *models.User {
	t.Helper()
	userRepo := NewUserRepositoryPostgres(testPool, zap.NewNop())
	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Username:     fmt.Sprintf("user_tok_%s", uuid.NewString()[:8]),
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$dGVzdHNhbHQ$dGVzdGhhc2g",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, userRepo.Create(ctx, user))
	return user
}

func createTestToken(ctx context.Context, t *testing.T, repo *AuthTokenRepositoryPostgres, ttl time.Duration) *models.AuthToken {
	t.Helper()
	now := time.Now().UTC()
	token := &models.AuthToken{
		ID:        uuid.New(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	require.NoError(t, repo.Create(ctx, token))
	return token
}

func TestAuthTokenRepository_ConcurrentClaim_SingleWinner(t *testing.T) {
	pool := requireTestPool(t)
	ctx := context.Background()
	repo := NewAuthTokenRepositoryPostgres(pool, zap.NewNop())
	clearTokenTestTables(t)

	userA := createTestUserForTokenTests(ctx, t)
	userB := createTestUserForTokenTests(ctx, t)
	token := createTestToken(ctx, t, repo, 10*time.Minute)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i, userID := range []uuid.UUID{userA.ID, userB.ID} {
		go func(i int, userID uuid.UUID) {
			defer wg.Done()
			errs[i] = repo.Claim(ctx, token.ID, userID)
		}(i, userID)
	}
	wg.Wait()

	// Exactly one claim wins, the other observes the claimed state.
	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, domainErrors.ErrTokenAlreadyClaimed)
		}
	}
	assert.Equal(t, 1, winners)

	stored, err := repo.GetByID(ctx, token.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ClaimedBy)
	assert.Contains(t, []uuid.UUID{userA.ID, userB.ID}, *stored.ClaimedBy)
	require.NotNil(t, stored.ClaimedAt)
}

func TestAuthTokenRepository_Claim_Expired(t *testing.T) {
	pool := requireTestPool(t)
	ctx := context.Background()
	repo := NewAuthTokenRepositoryPostgres(pool, zap.NewNop())
	clearTokenTestTables(t)

	user := createTestUserForTokenTests(ctx, t)
	token := createTestToken(ctx, t, repo, -time.Minute)

	err := repo.Claim(ctx, token.ID, user.ID)
	assert.ErrorIs(t, err, domainErrors.ErrTokenExpired)

	stored, err := repo.GetByID(ctx, token.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ClaimedBy)
}

func TestAuthTokenRepository_ConsumeClaimed_ExactlyOnce(t *testing.T) {
	pool := requireTestPool(t)
	ctx := context.Background()
	repo := NewAuthTokenRepositoryPostgres(pool, zap.NewNop())
	clearTokenTestTables(t)

	user := createTestUserForTokenTests(ctx, t)
	token := createTestToken(ctx, t, repo, 10*time.Minute)
	require.NoError(t, repo.Claim(ctx, token.ID, user.ID))

	userID, err := repo.ConsumeClaimed(ctx, token.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	// The row is gone; a second exchange finds nothing.
	_, err = repo.ConsumeClaimed(ctx, token.ID)
	assert.ErrorIs(t, err, domainErrors.ErrTokenNotFound)
}

func TestAuthTokenRepository_ConsumeClaimed_Unclaimed(t *testing.T) {
	pool := requireTestPool(t)
	ctx := context.Background()
	repo := NewAuthTokenRepositoryPostgres(pool, zap.NewNop())
	clearTokenTestTables(t)

	token := createTestToken(ctx, t, repo, 10*time.Minute)

	_, err := repo.ConsumeClaimed(ctx, token.ID)
	assert.ErrorIs(t, err, domainErrors.ErrTokenNotClaimed)

	// The unclaimed token survives the failed exchange.
	_, err = repo.GetByID(ctx, token.ID)
	assert.NoError(t, err)
}

func TestAuthTokenRepository_DeleteExpiredUnclaimed(t *testing.T) {
	pool := requireTestPool(t)
	ctx := context.Background()
	repo := NewAuthTokenRepositoryPostgres(pool, zap.NewNop())
	clearTokenTestTables(t)

	user := createTestUserForTokenTests(ctx, t)

	expiredUnclaimed := createTestToken(ctx, t, repo, -time.Minute)
	expiredClaimed := createTestToken(ctx, t, repo, time.Second)
	require.NoError(t, repo.Claim(ctx, expiredClaimed.ID, user.ID))
	fresh := createTestToken(ctx, t, repo, 10*time.Minute)

	// Let the claimed token pass its expiry before sweeping.
	time.Sleep(1100 * time.Millisecond)

	count, err := repo.DeleteExpiredUnclaimed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = repo.GetByID(ctx, expiredUnclaimed.ID)
	assert.ErrorIs(t, err, domainErrors.ErrTokenNotFound)

	// Claimed-but-unconsumed and fresh tokens are left alone.
	_, err = repo.GetByID(ctx, expiredClaimed.ID)
	assert.NoError(t, err)
	_, err = repo.GetByID(ctx, fresh.ID)
	assert.NoError(t, err)
}
