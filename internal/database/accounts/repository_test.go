package accounts

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/uploadauth/internal/apperrors"
	"github.com/mrlokans/uploadauth/internal/database"
	"github.com/mrlokans/uploadauth/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *database.Database) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB), db
}

func newAccount(email string) *entities.Account {
	return &entities.Account{Email: email, PasswordHash: "hash", IsActive: true}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	acct := newAccount(" Alice@Example.com ")
	require.NoError(t, repo.Create(ctx, acct))
	assert.NotZero(t, acct.ID)
	assert.Equal(t, "alice@example.com", acct.Email)

	byID, err := repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)
	assert.True(t, byID.IsActive)
	assert.False(t, byID.IsAdmin)

	byEmail, err := repo.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, byEmail.ID)
}

func TestRepository_CreateInactive(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	acct := &entities.Account{Email: "off@example.com", PasswordHash: "hash", IsActive: false}
	require.NoError(t, repo.Create(ctx, acct))

	got, err := repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestRepository_GetMissing(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRepository_DuplicateEmail(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newAccount("dup@example.com")))
	err := repo.Create(ctx, newAccount("DUP@example.com"))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
}

func TestRepository_ConcurrentCreateSameEmail(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, newAccount("race@example.com"))
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, dup)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRepository_List(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		require.NoError(t, repo.Create(ctx, newAccount(email)))
	}

	accts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, accts, 3)
	assert.Equal(t, "c@x.com", accts[0].Email)
	assert.Equal(t, "a@x.com", accts[2].Email)
}

func TestRepository_Update(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	acct := newAccount("a@x.com")
	acct.IsAdmin = true
	require.NoError(t, repo.Create(ctx, acct))
	require.NoError(t, repo.Create(ctx, newAccount("b@x.com")))

	acct.Email = "renamed@x.com"
	acct.IsActive = false
	acct.IsAdmin = false
	require.NoError(t, repo.Update(ctx, acct))

	got, err := repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed@x.com", got.Email)
	assert.False(t, got.IsActive)
	assert.False(t, got.IsAdmin)

	t.Run("email taken by another account", func(t *testing.T) {
		acct.Email = "b@x.com"
		assert.ErrorIs(t, repo.Update(ctx, acct), apperrors.ErrDuplicateEmail)
	})

	t.Run("missing account", func(t *testing.T) {
		ghost := newAccount("ghost@x.com")
		ghost.ID = 999
		assert.ErrorIs(t, repo.Update(ctx, ghost), apperrors.ErrNotFound)
	})
}

func TestRepository_DeleteCascadesLoginEvents(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	keep := newAccount("keep@x.com")
	gone := newAccount("gone@x.com")
	require.NoError(t, repo.Create(ctx, keep))
	require.NoError(t, repo.Create(ctx, gone))

	for _, id := range []uint{keep.ID, gone.ID, gone.ID} {
		require.NoError(t, db.DB.Create(&entities.LoginEvent{AccountID: id, Success: true}).Error)
	}

	require.NoError(t, repo.Delete(ctx, gone.ID))

	_, err := repo.GetByID(ctx, gone.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	var remaining []entities.LoginEvent
	require.NoError(t, db.DB.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, keep.ID, remaining[0].AccountID)

	assert.ErrorIs(t, repo.Delete(ctx, gone.ID), apperrors.ErrNotFound)
}
