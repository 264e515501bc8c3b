// Package audit records successful logins and serves the login history.
package audit

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/uploadauth/internal/entities"
	"github.com/mrlokans/uploadauth/internal/logging"
	"github.com/mrlokans/uploadauth/internal/metrics"
)

const (
	maxUserAgentLength = 500
	maxIPLength        = 45
)

// LoginEventStore is the write side of the login history.
type LoginEventStore interface {
	Append(ctx context.Context, event *entities.LoginEvent) error
}

// Recorder appends a LoginEvent per successful login. Write failures are
// logged and counted, never returned.
type Recorder struct {
	store   LoginEventStore
	log     logging.Logger
	metrics *metrics.Registry
	now     func() time.Time
}

func NewRecorder(store LoginEventStore, log logging.Logger, m *metrics.Registry) *Recorder {
	if log == nil {
		log = logging.Nop()
	}
	return &Recorder{
		store:   store,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

func (r *Recorder) RecordLogin(ctx context.Context, accountID uint, ip, userAgent string) {
	event := &entities.LoginEvent{
		AccountID: accountID,
		IPAddress: truncate(ip, maxIPLength),
		UserAgent: truncate(userAgent, maxUserAgentLength),
		Success:   true,
		CreatedAt: r.now(),
	}

	if err := r.store.Append(ctx, event); err != nil {
		r.metrics.LoginEventWriteFailed()
		r.log.Error(ctx, "failed to record login event", "account_id", accountID, "ip", ip, "error", err)
	}
}

// truncate shortens s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
