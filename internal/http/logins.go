package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/uploadauth/internal/auth"
	"github.com/mrlokans/uploadauth/internal/logging"
)

// LoginHistoryController serves paginated login history.
type LoginHistoryController struct {
	history  LoginHistory
	accounts AccountService
	log      logging.Logger
}

func NewLoginHistoryController(history LoginHistory, accounts AccountService, log logging.Logger) *LoginHistoryController {
	return &LoginHistoryController{history: history, accounts: accounts, log: log}
}

// Mine returns the caller's own logins
// GET /api/me/logins
func (lc *LoginHistoryController) Mine(c *gin.Context) {
	acct, ok := auth.CurrentAccount(c)
	if !ok {
		respondAppError(c, lc.log, errNoAccountInContext, "list own logins")
		return
	}
	f, ok := parseHistoryFilter(c)
	if !ok {
		return
	}

	page, err := lc.history.ForAccount(c.Request.Context(), acct.ID, f)
	if err != nil {
		respondAppError(c, lc.log, err, "list own logins")
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(page))
}

// ForAccount returns one account's logins; 404 when the account is unknown
// GET /admin/users/:id/logins
func (lc *LoginHistoryController) ForAccount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	f, ok := parseHistoryFilter(c)
	if !ok {
		return
	}

	if _, err := lc.accounts.GetAccount(c.Request.Context(), id); err != nil {
		respondAppError(c, lc.log, err, "list account logins")
		return
	}

	page, err := lc.history.ForAccount(c.Request.Context(), id, f)
	if err != nil {
		respondAppError(c, lc.log, err, "list account logins")
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(page))
}

// All returns every login, optionally filtered by account_id
// GET /admin/logins
func (lc *LoginHistoryController) All(c *gin.Context) {
	f, ok := parseHistoryFilter(c)
	if !ok {
		return
	}

	page, err := lc.history.List(c.Request.Context(), f)
	if err != nil {
		respondAppError(c, lc.log, err, "list logins")
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(page))
}
