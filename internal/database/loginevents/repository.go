// Package loginevents stores the append-only login history and serves its
// filtered, paginated queries.
package loginevents

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/uploadauth/internal/entities"
)

const (
	MinPageSize     = 5
	MaxPageSize     = 100
	DefaultPageSize = 20
)

// Filter narrows a history query. Zero values mean "no constraint".
type Filter struct {
	AccountID uint
	Since     time.Time
	Until     time.Time
	IP        string // substring match on the recorded address
	Page      int    // 1-based
	PageSize  int
}

// Normalized clamps paging into range: page >= 1, page size within
// [MinPageSize, MaxPageSize], DefaultPageSize when unset.
func (f Filter) Normalized() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.PageSize == 0:
		f.PageSize = DefaultPageSize
	case f.PageSize < MinPageSize:
		f.PageSize = MinPageSize
	case f.PageSize > MaxPageSize:
		f.PageSize = MaxPageSize
	}
	return f
}

// Page is one slice of history plus the total matching the filter.
type Page struct {
	Events   []entities.LoginEvent
	Total    int64
	Page     int
	PageSize int
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append saves a login event. CreatedAt defaults to now, stored in UTC so
// range filters compare consistently.
func (r *Repository) Append(ctx context.Context, event *entities.LoginEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	event.CreatedAt = event.CreatedAt.UTC()
	return r.db.WithContext(ctx).Create(event).Error
}

// List returns the events matching f, newest first.
func (r *Repository) List(ctx context.Context, f Filter) (*Page, error) {
	f = f.Normalized()

	query := r.db.WithContext(ctx).Model(&entities.LoginEvent{})
	if f.AccountID > 0 {
		query = query.Where("account_id = ?", f.AccountID)
	}
	if !f.Since.IsZero() {
		query = query.Where("created_at >= ?", f.Since.UTC())
	}
	if !f.Until.IsZero() {
		query = query.Where("created_at <= ?", f.Until.UTC())
	}
	if ip := strings.TrimSpace(f.IP); ip != "" {
		query = query.Where(`ip_address LIKE ? ESCAPE '\'`, "%"+escapeLike(ip)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	events := make([]entities.LoginEvent, 0, f.PageSize)
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(f.PageSize).
		Offset((f.Page - 1) * f.PageSize).
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	return &Page{Events: events, Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}

// DeleteOlderThan removes events created before cutoff and returns how many were deleted.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff.UTC()).Delete(&entities.LoginEvent{})
	return result.RowsAffected, result.Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
