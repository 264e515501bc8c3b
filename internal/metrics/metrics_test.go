package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestRegistry_Counters(t *testing.T) {
	r := NewRegistry()

	r.Login(LoginSuccess)
	r.Login(LoginSuccess)
	r.Login(LoginInvalidCredentials)
	r.LoginEventWriteFailed()
	r.TokenRejected(RejectExpired)
	r.UploadToken(UploadMisconfigured)
	r.LoginEventsCleanedUp(3)
	r.LoginEventsCleanedUp(0)
	r.HTTPRequest(http.MethodGet, "/api/me", 200)
	r.HTTPRequest(http.MethodGet, "", 404)

	body := scrape(t, r)
	for _, want := range []string{
		`uploadauth_logins_total{result="success"} 2`,
		`uploadauth_logins_total{result="invalid_credentials"} 1`,
		`uploadauth_login_event_write_failures_total 1`,
		`uploadauth_token_rejections_total{reason="expired"} 1`,
		`uploadauth_upload_tokens_total{result="misconfigured"} 1`,
		`uploadauth_login_events_cleaned_up_total 3`,
		`uploadauth_http_requests_total{method="GET",route="/api/me",status="200"} 1`,
		`uploadauth_http_requests_total{method="GET",route="unmatched",status="404"} 1`,
		"go_goroutines",
	} {
		assert.Contains(t, body, want)
	}
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var r *Registry
	r.Login(LoginSuccess)
	r.LoginEventWriteFailed()
	r.TokenRejected(RejectMissing)
	r.UploadToken(UploadIssued)
	r.LoginEventsCleanedUp(5)
	r.HTTPRequest("GET", "", 404)
}
