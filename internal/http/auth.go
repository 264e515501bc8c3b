package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/uploadauth/internal/auth"
	"github.com/mrlokans/uploadauth/internal/logging"
)

type credentialsRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// TokenResponse is returned by both login endpoints.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AuthController handles registration, login and the caller's own profile.
type AuthController struct {
	accounts      AccountService
	log           logging.Logger
	secureCookies bool
}

func NewAuthController(accounts AccountService, log logging.Logger, secureCookies bool) *AuthController {
	return &AuthController{
		accounts:      accounts,
		log:           log,
		secureCookies: secureCookies,
	}
}

// Register creates a regular account
// POST /api/register
func (ac *AuthController) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	acct, err := ac.accounts.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondAppError(c, ac.log, err, "register")
		return
	}
	respondCreated(c, newAccountResponse(acct))
}

// Login issues an access token and sets it as a cookie
// POST /api/login
func (ac *AuthController) Login(c *gin.Context) {
	ac.login(c, false)
}

// AdminLogin is Login restricted to admin accounts
// POST /admin/login
func (ac *AuthController) AdminLogin(c *gin.Context) {
	ac.login(c, true)
}

func (ac *AuthController) login(c *gin.Context, adminOnly bool) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	res, err := ac.accounts.Login(c.Request.Context(), auth.LoginRequest{
		Email:     req.Email,
		Password:  req.Password,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		AdminOnly: adminOnly,
	})
	if err != nil {
		respondAppError(c, ac.log, err, "login")
		return
	}

	expiresIn := int(res.ExpiresIn.Seconds())
	auth.SetAccessCookie(c.Writer, res.Token, expiresIn, ac.secureCookies)
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: res.Token,
		TokenType:   "bearer",
		ExpiresIn:   expiresIn,
	})
}

// Logout clears the access cookie. Issued tokens stay valid until they expire.
// POST /api/logout
func (ac *AuthController) Logout(c *gin.Context) {
	auth.ClearAccessCookie(c.Writer, ac.secureCookies)
	c.JSON(http.StatusOK, SuccessResponse{Message: "logged out"})
}

// Me returns the authenticated account
// GET /api/me
func (ac *AuthController) Me(c *gin.Context) {
	acct, ok := auth.CurrentAccount(c)
	if !ok {
		respondAppError(c, ac.log, errNoAccountInContext, "me")
		return
	}
	c.JSON(http.StatusOK, newAccountResponse(acct))
}

// BootstrapAdmin creates the configured admin account if it is missing
// POST /api/bootstrap-admin
func (ac *AuthController) BootstrapAdmin(c *gin.Context) {
	created, acct, err := ac.accounts.BootstrapAdmin(c.Request.Context())
	if err != nil {
		respondAppError(c, ac.log, err, "bootstrap admin")
		return
	}
	if !created {
		c.JSON(http.StatusOK, SuccessResponse{Message: "admin already exists"})
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Message: "admin created", Data: newAccountResponse(acct)})
}
