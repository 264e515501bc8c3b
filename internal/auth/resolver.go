package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mrlokans/uploadauth/internal/apperrors"
	"github.com/mrlokans/uploadauth/internal/entities"
	"github.com/mrlokans/uploadauth/internal/logging"
	"github.com/mrlokans/uploadauth/internal/metrics"
)

// CookieName is the cookie that carries "Bearer <token>" for browser clients.
const CookieName = "access_token"

// AccountLookup is the read side of the account store the resolver needs.
type AccountLookup interface {
	GetByID(ctx context.Context, id uint) (*entities.Account, error)
}

// Resolver turns the credential on an incoming request into an active account.
type Resolver struct {
	issuer   *Issuer
	accounts AccountLookup
	log      logging.Logger
	metrics  *metrics.Registry
}

func NewResolver(issuer *Issuer, accounts AccountLookup, log logging.Logger, m *metrics.Registry) *Resolver {
	if log == nil {
		log = logging.Nop()
	}
	return &Resolver{
		issuer:   issuer,
		accounts: accounts,
		log:      log,
		metrics:  m,
	}
}

// TokenFromRequest extracts a bearer token. The Authorization header wins over
// the cookie when both are present.
func TokenFromRequest(r *http.Request) (string, bool) {
	if token, ok := parseBearer(r.Header.Get("Authorization")); ok {
		return token, true
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		if token, ok := parseBearer(cookie.Value); ok {
			return token, true
		}
	}
	return "", false
}

func parseBearer(value string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Resolve returns the active account behind the request's token. Every
// credential problem is reported as apperrors.ErrUnauthenticated; only
// storage failures come back unwrapped.
func (r *Resolver) Resolve(req *http.Request) (*entities.Account, error) {
	ctx := req.Context()

	token, ok := TokenFromRequest(req)
	if !ok {
		r.metrics.TokenRejected(metrics.RejectMissing)
		return nil, fmt.Errorf("%w: no bearer token", apperrors.ErrUnauthenticated)
	}

	claims, err := r.issuer.Verify(token)
	if err != nil {
		r.metrics.TokenRejected(rejectReason(err))
		r.log.Info(ctx, "rejected access token", "error", err)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthenticated, err)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		r.metrics.TokenRejected(metrics.RejectMalformed)
		return nil, fmt.Errorf("%w: subject %q is not an account id", apperrors.ErrUnauthenticated, claims.Subject)
	}

	acct, err := r.accounts.GetByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			r.metrics.TokenRejected(metrics.RejectUnknownAccount)
			return nil, fmt.Errorf("%w: account %d no longer exists", apperrors.ErrUnauthenticated, id)
		}
		return nil, fmt.Errorf("load account %d: %w", id, err)
	}
	if !acct.IsActive {
		r.metrics.TokenRejected(metrics.RejectInactive)
		return nil, fmt.Errorf("%w: account %d is inactive", apperrors.ErrUnauthenticated, id)
	}
	return acct, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return metrics.RejectExpired
	case errors.Is(err, ErrInvalidSignature):
		return metrics.RejectInvalidSignature
	default:
		return metrics.RejectMalformed
	}
}

// SetAccessCookie stores the token as "Bearer <token>" so the cookie and the
// Authorization header share one format.
func SetAccessCookie(w http.ResponseWriter, token string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "Bearer " + token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAccessCookie expires the access cookie on the client.
func ClearAccessCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
