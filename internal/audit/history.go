package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/mrlokans/uploadauth/internal/apperrors"
	"github.com/mrlokans/uploadauth/internal/database/loginevents"
)

// HistoryStore is the read and retention side of the login history.
type HistoryStore interface {
	List(ctx context.Context, f loginevents.Filter) (*loginevents.Page, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// History answers login history queries and prunes old entries.
type History struct {
	store HistoryStore
	now   func() time.Time
}

func NewHistory(store HistoryStore) *History {
	return &History{store: store, now: time.Now}
}

// ForAccount lists one account's history; any AccountID in f is overridden.
func (h *History) ForAccount(ctx context.Context, accountID uint, f loginevents.Filter) (*loginevents.Page, error) {
	f.AccountID = accountID
	return h.List(ctx, f)
}

func (h *History) List(ctx context.Context, f loginevents.Filter) (*loginevents.Page, error) {
	if !f.Since.IsZero() && !f.Until.IsZero() && f.Until.Before(f.Since) {
		return nil, fmt.Errorf("%w: until must not be before since", apperrors.ErrValidation)
	}
	return h.store.List(ctx, f.Normalized())
}

// Prune deletes events older than retentionDays. A non-positive retention
// keeps everything.
func (h *History) Prune(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := h.now().AddDate(0, 0, -retentionDays)
	deleted, err := h.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete login events before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return deleted, nil
}
