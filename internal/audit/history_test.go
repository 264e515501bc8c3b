package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/uploadauth/internal/apperrors"
	"github.com/mrlokans/uploadauth/internal/database/loginevents"
	"github.com/mrlokans/uploadauth/internal/entities"
)

func TestHistory_ForAccount(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []uint{1, 1, 2, 1} {
		require.NoError(t, repo.Append(ctx, &entities.LoginEvent{
			AccountID: id,
			IPAddress: "10.0.0.1",
			Success:   true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	h := NewHistory(repo)
	page, err := h.ForAccount(ctx, 1, loginevents.Filter{AccountID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, loginevents.DefaultPageSize, page.PageSize)
	for _, e := range page.Events {
		assert.Equal(t, uint(1), e.AccountID)
	}
	assert.True(t, page.Events[0].CreatedAt.After(page.Events[1].CreatedAt))
}

func TestHistory_RejectsInvertedRange(t *testing.T) {
	h := NewHistory(setupTestRepo(t))
	now := time.Now()

	_, err := h.List(context.Background(), loginevents.Filter{Since: now, Until: now.Add(-time.Hour)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestHistory_Prune(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, age := range []int{1, 29, 31, 400} {
		require.NoError(t, repo.Append(ctx, &entities.LoginEvent{
			AccountID: 1,
			Success:   true,
			CreatedAt: now.AddDate(0, 0, -age),
		}))
	}

	h := NewHistory(repo)
	h.now = func() time.Time { return now }

	deleted, err := h.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	deleted, err = h.Prune(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	page, err := h.List(ctx, loginevents.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}
