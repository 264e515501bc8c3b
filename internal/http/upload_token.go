package http

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/uploadauth/internal/auth"
	"github.com/mrlokans/uploadauth/internal/config"
	"github.com/mrlokans/uploadauth/internal/logging"
	"github.com/mrlokans/uploadauth/internal/storage"
)

type uploadTokenRequest struct {
	Key     string         `json:"key"`
	Expires *int           `json:"expires"`
	Policy  map[string]any `json:"policy"`
}

// UploadTokenController hands authenticated callers object storage upload tokens.
type UploadTokenController struct {
	uploads UploadIssuer
	log     logging.Logger
}

func NewUploadTokenController(uploads UploadIssuer, log logging.Logger) *UploadTokenController {
	return &UploadTokenController{uploads: uploads, log: log}
}

// Get issues a token from query parameters
// GET /api/upload-token?key=...&expires=3600
func (uc *UploadTokenController) Get(c *gin.Context) {
	expires := config.DefaultUploadExpiresSeconds
	if v := c.Query("expires"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondBadRequest(c, "invalid expires")
			return
		}
		expires = n
	}

	tok, ok := uc.issue(c, expires, storage.UploadRequest{Key: c.Query("key")})
	if ok {
		c.JSON(http.StatusOK, tok)
	}
}

// Post issues a token with an optional upload policy
// POST /api/upload-token
func (uc *UploadTokenController) Post(c *gin.Context) {
	var req uploadTokenRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	expires := config.DefaultUploadExpiresSeconds
	if req.Expires != nil {
		expires = *req.Expires
	}
	policy := req.Policy
	if policy == nil {
		policy = map[string]any{}
	}

	tok, ok := uc.issue(c, expires, storage.UploadRequest{Key: req.Key, Policy: policy})
	if !ok {
		return
	}
	// The policy is always echoed, even when empty.
	c.JSON(http.StatusOK, struct {
		*storage.UploadToken
		Policy map[string]any `json:"policy"`
	}{tok, policy})
}

// maxExpiresSeconds is the largest expiry that converts to a time.Duration
// without overflowing.
const maxExpiresSeconds = math.MaxInt64 / int64(time.Second)

func (uc *UploadTokenController) issue(c *gin.Context, expires int, req storage.UploadRequest) (*storage.UploadToken, bool) {
	if expires <= 0 {
		respondBadRequest(c, "expires must be positive")
		return nil, false
	}
	if int64(expires) > maxExpiresSeconds {
		respondBadRequest(c, "expires is too large")
		return nil, false
	}
	req.Expires = time.Duration(expires) * time.Second

	tok, err := uc.uploads.Issue(c.Request.Context(), auth.GetAccountID(c), req)
	if err != nil {
		respondAppError(c, uc.log, err, "issue upload token")
		return nil, false
	}
	return tok, true
}
