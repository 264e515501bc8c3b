package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/uploadauth/internal/apperrors"
	"github.com/mrlokans/uploadauth/internal/auth"
	"github.com/mrlokans/uploadauth/internal/database/loginevents"
	"github.com/mrlokans/uploadauth/internal/logging"
)

// errNoAccountInContext means a handler behind RequireAuthenticated ran
// without an account set; treated as unauthenticated.
var errNoAccountInContext = fmt.Errorf("%w: no account in request context", apperrors.ErrUnauthenticated)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages"`
}

func newPaginatedResponse(page *loginevents.Page) PaginatedResponse {
	totalPages := int((page.Total + int64(page.PageSize) - 1) / int64(page.PageSize))
	return PaginatedResponse{
		Data:       page.Events,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		HasMore:    page.Page < totalPages,
		TotalPages: totalPages,
	}
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: apperrors.Code(apperrors.ErrValidation)})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, log logging.Logger, err error, op string) {
	log.Error(c.Request.Context(), "internal error", "op", op, "error", err, "request_id", GetRequestID(c))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: apperrors.Code(err)})
}

// respondAppError maps errors from the service layer onto status codes.
// Anything outside the apperrors taxonomy is a 500.
func respondAppError(c *gin.Context, log logging.Logger, err error, op string) {
	var status int
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperrors.ErrDuplicateEmail), errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrTooManyAttempts):
		status = http.StatusTooManyRequests
		var retry *auth.RetryAfterError
		if errors.As(err, &retry) {
			c.Header("Retry-After", strconv.Itoa(int(retry.RetryAfter.Round(time.Second)/time.Second)))
		}
	case errors.Is(err, apperrors.ErrMisconfigured):
		log.Error(c.Request.Context(), "service misconfigured", "op", op, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: apperrors.Code(err)})
		return
	default:
		respondInternalError(c, log, err, op)
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: apperrors.Code(err)})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseHistoryFilter reads page, page_size, since, until, ip and account_id
// from the query string. Paging is clamped by the store, not rejected here.
func parseHistoryFilter(c *gin.Context) (loginevents.Filter, bool) {
	var f loginevents.Filter

	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondBadRequest(c, "invalid page")
			return f, false
		}
		f.Page = n
	}
	if v := c.Query("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondBadRequest(c, "invalid page_size")
			return f, false
		}
		f.PageSize = n
	}
	for name, dst := range map[string]*time.Time{"since": &f.Since, "until": &f.Until} {
		if v := c.Query(name); v != "" {
			ts, err := time.Parse(time.RFC3339, v)
			if err != nil {
				respondBadRequest(c, "invalid "+name+": expected RFC3339 timestamp")
				return f, false
			}
			*dst = ts
		}
	}
	if v := c.Query("account_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid account_id")
			return f, false
		}
		f.AccountID = uint(id)
	}
	f.IP = c.Query("ip")

	return f.Normalized(), true
}
