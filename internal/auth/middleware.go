package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/uploadauth/internal/apperrors"
	"github.com/mrlokans/uploadauth/internal/entities"
	"github.com/mrlokans/uploadauth/internal/logging"
)

// ContextKeyAccount holds the resolved *entities.Account for the request.
const ContextKeyAccount = "auth_account"

// Middleware gates routes on a resolved, active account.
type Middleware struct {
	resolver *Resolver
	log      logging.Logger
}

func NewMiddleware(resolver *Resolver, log logging.Logger) *Middleware {
	if log == nil {
		log = logging.Nop()
	}
	return &Middleware{resolver: resolver, log: log}
}

// RequireAuthenticated rejects the request with 401 unless it carries a
// valid token for an active account.
func (m *Middleware) RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		acct, err := m.resolver.Resolve(c.Request)
		if err != nil {
			if errors.Is(err, apperrors.ErrUnauthenticated) {
				abort(c, http.StatusUnauthorized, apperrors.ErrUnauthenticated)
				return
			}
			m.log.Error(c.Request.Context(), "failed to resolve account", "error", err)
			abort(c, http.StatusInternalServerError, err)
			return
		}

		c.Set(ContextKeyAccount, acct)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuthenticated. A non-admin account gets
// 403, never 401.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		acct, ok := CurrentAccount(c)
		if !ok {
			abort(c, http.StatusUnauthorized, apperrors.ErrUnauthenticated)
			return
		}
		if !acct.IsAdmin {
			abort(c, http.StatusForbidden, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, status int, err error) {
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": msg,
		"code":  apperrors.Code(err),
	})
}

// CurrentAccount returns the account set by RequireAuthenticated.
func CurrentAccount(c *gin.Context) (*entities.Account, bool) {
	v, exists := c.Get(ContextKeyAccount)
	if !exists {
		return nil, false
	}
	acct, ok := v.(*entities.Account)
	return acct, ok && acct != nil
}

// GetAccountID returns the current account's ID, or 0 when unauthenticated.
func GetAccountID(c *gin.Context) uint {
	if acct, ok := CurrentAccount(c); ok {
		return acct.ID
	}
	return 0
}
