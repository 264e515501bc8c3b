package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/uploadauth/internal/auth"
	"github.com/mrlokans/uploadauth/internal/logging"
)

type createAccountRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

type updateAccountRequest struct {
	Email    string  `json:"email" binding:"required"`
	Password *string `json:"password"`
	IsAdmin  bool    `json:"is_admin"`
	IsActive *bool   `json:"is_active"`
}

// AdminController manages accounts. Every route sits behind RequireAdmin.
type AdminController struct {
	accounts AccountService
	log      logging.Logger
}

func NewAdminController(accounts AccountService, log logging.Logger) *AdminController {
	return &AdminController{accounts: accounts, log: log}
}

// ListUsers returns all accounts, newest first
// GET /admin/users
func (ac *AdminController) ListUsers(c *gin.Context) {
	accounts, err := ac.accounts.ListAccounts(c.Request.Context())
	if err != nil {
		respondInternalError(c, ac.log, err, "list accounts")
		return
	}
	c.JSON(http.StatusOK, newAccountResponses(accounts))
}

// CreateUser creates an active account
// POST /admin/users
func (ac *AdminController) CreateUser(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	acct, err := ac.accounts.CreateAccount(c.Request.Context(), req.Email, req.Password, req.IsAdmin)
	if err != nil {
		respondAppError(c, ac.log, err, "create account")
		return
	}
	respondCreated(c, newAccountResponse(acct))
}

// GetUser returns one account
// GET /admin/users/:id
func (ac *AdminController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	acct, err := ac.accounts.GetAccount(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, ac.log, err, "get account")
		return
	}
	c.JSON(http.StatusOK, newAccountResponse(acct))
}

// UpdateUser replaces email and flags, and the password when one is given.
// is_active defaults to true when omitted.
// PUT /admin/users/:id
func (ac *AdminController) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email is required")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	acct, err := ac.accounts.UpdateAccount(c.Request.Context(), id, auth.AccountUpdate{
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
		IsActive: isActive,
	})
	if err != nil {
		respondAppError(c, ac.log, err, "update account")
		return
	}
	c.JSON(http.StatusOK, newAccountResponse(acct))
}

// DeleteUser removes an account and its login history
// DELETE /admin/users/:id
func (ac *AdminController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ac.accounts.DeleteAccount(c.Request.Context(), id); err != nil {
		respondAppError(c, ac.log, err, "delete account")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "account deleted"})
}
