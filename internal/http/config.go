package http

import (
	"github.com/mrlokans/uploadauth/internal/auth"
	"github.com/mrlokans/uploadauth/internal/logging"
	"github.com/mrlokans/uploadauth/internal/metrics"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Accounts AccountService
	History  LoginHistory
	Uploads  UploadIssuer
	Database Pinger

	// Authentication
	Middleware    *auth.Middleware
	Resolver      *auth.Resolver
	SecureCookies bool
	CSRFSecret    []byte // CSRF on /admin is off when empty

	// Observability. Metrics may be nil.
	Metrics *metrics.Registry
	Logger  logging.Logger

	// Application info
	AppName string
	Version string
}
