package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/uploadauth/internal/audit"
	"github.com/mrlokans/uploadauth/internal/auth"
	"github.com/mrlokans/uploadauth/internal/database"
	"github.com/mrlokans/uploadauth/internal/database/accounts"
	"github.com/mrlokans/uploadauth/internal/database/loginevents"
	"github.com/mrlokans/uploadauth/internal/http"
	"github.com/mrlokans/uploadauth/internal/logging"
	"github.com/mrlokans/uploadauth/internal/scheduler"
	"github.com/mrlokans/uploadauth/internal/storage"
	"github.com/mrlokans/uploadauth/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ auth.AccountStore = (*accounts.Repository)(nil)
var _ auth.AccountLookup = (*accounts.Repository)(nil)

var _ audit.LoginEventStore = (*loginevents.Repository)(nil)
var _ audit.HistoryStore = (*loginevents.Repository)(nil)

var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Services
// =============================================================================

var _ auth.LoginRecorder = (*audit.Recorder)(nil)

var _ http.AccountService = (*auth.Service)(nil)
var _ http.LoginHistory = (*audit.History)(nil)
var _ http.UploadIssuer = (*storage.UploadService)(nil)

// =============================================================================
// External Services
// =============================================================================

var _ storage.Minter = (*storage.S3Minter)(nil)

// =============================================================================
// Background Jobs
// =============================================================================

var _ tasks.LoginHistoryPruner = (*audit.History)(nil)
var _ scheduler.CleanupTrigger = (*tasks.Client)(nil)
var _ scheduler.CleanupTrigger = scheduler.CleanupFunc(nil)

// =============================================================================
// Ambient
// =============================================================================

var _ logging.Logger = (*logging.SlogLogger)(nil)
