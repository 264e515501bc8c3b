package audit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/uploadauth/internal/database"
	"github.com/mrlokans/uploadauth/internal/database/loginevents"
	"github.com/mrlokans/uploadauth/internal/entities"
	"github.com/mrlokans/uploadauth/internal/logging"
	"github.com/mrlokans/uploadauth/internal/metrics"
)

func setupTestRepo(t *testing.T) *loginevents.Repository {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return loginevents.NewRepository(db.DB)
}

type failingStore struct{}

func (failingStore) Append(context.Context, *entities.LoginEvent) error {
	return errors.New("database is locked")
}

func TestRecorder_RecordLogin(t *testing.T) {
	repo := setupTestRepo(t)
	rec := NewRecorder(repo, logging.Nop(), nil)
	ctx := context.Background()

	rec.RecordLogin(ctx, 7, "192.0.2.1", "Mozilla/5.0")

	page, err := repo.List(ctx, loginevents.Filter{AccountID: 7})
	require.NoError(t, err)
	require.Len(t, page.Events, 1)

	event := page.Events[0]
	assert.Equal(t, uint(7), event.AccountID)
	assert.Equal(t, "192.0.2.1", event.IPAddress)
	assert.Equal(t, "Mozilla/5.0", event.UserAgent)
	assert.True(t, event.Success)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, time.Minute)
}

func TestRecorder_TruncatesUserAgent(t *testing.T) {
	repo := setupTestRepo(t)
	rec := NewRecorder(repo, logging.Nop(), nil)
	ctx := context.Background()

	rec.RecordLogin(ctx, 1, "192.0.2.1", strings.Repeat("a", 2000))

	page, err := repo.List(ctx, loginevents.Filter{AccountID: 1})
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Len(t, page.Events[0].UserAgent, maxUserAgentLength)
	assert.True(t, strings.HasSuffix(page.Events[0].UserAgent, "..."))
}

func TestRecorder_WriteFailureIsSwallowed(t *testing.T) {
	var logs strings.Builder
	reg := metrics.NewRegistry()
	rec := NewRecorder(failingStore{}, logging.New("info", "text", &logs), reg)

	assert.NotPanics(t, func() {
		rec.RecordLogin(context.Background(), 1, "192.0.2.1", "ua")
	})
	assert.Contains(t, logs.String(), "failed to record login event")
	assert.Contains(t, logs.String(), "database is locked")

	body := scrape(t, reg)
	assert.Contains(t, body, "uploadauth_login_event_write_failures_total 1")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", truncate(strings.Repeat("é", 6), 10))

	ua := truncate(strings.Repeat("é", 300), maxUserAgentLength)
	assert.True(t, utf8.ValidString(ua))
	assert.LessOrEqual(t, len(ua), maxUserAgentLength)
	assert.True(t, strings.HasSuffix(ua, "..."))
}

func scrape(t *testing.T, reg *metrics.Registry) string {
	t.Helper()
	w := httptest.NewRecorder()
	reg.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}
