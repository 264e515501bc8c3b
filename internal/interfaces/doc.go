// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - AccountStore: Account persistence (internal/auth/service.go)
//   - AccountLookup: Account lookup during token resolution (internal/auth/resolver.go)
//   - LoginEventStore: Append-only login history writes (internal/audit/recorder.go)
//   - HistoryStore: Login history queries and pruning (internal/audit/history.go)
//
// ## Service Interfaces
//
//   - AccountService, LoginHistory, UploadIssuer, Pinger: what the HTTP
//     controllers depend on (internal/http/stores.go)
//   - LoginRecorder: Best-effort audit of successful logins (internal/auth/service.go)
//
// ## External Service Interfaces
//
//   - Minter: Presigned upload URLs from object storage (internal/storage/minter.go)
//
// ## Background Job Interfaces
//
//   - LoginHistoryPruner: Retention cleanup run by the task queue (internal/tasks/cleanup_logins.go)
//   - CleanupTrigger: What the cron scheduler fires (internal/scheduler/login_history_cleanup.go)
//
// # Adding a New Storage Backend
//
// To mint upload tokens from another object store (e.g., GCS):
//
//  1. Implement Minter in internal/storage/
//
//     type GCSMinter struct {
//         client *gcs.Client
//     }
//
//     func (m *GCSMinter) Mint(ctx context.Context, req MintRequest) (string, error)
//
//  2. Add a compile-time check to checks.go:
//
//     var _ storage.Minter = (*storage.GCSMinter)(nil)
//
//  3. Select it in entrypoint.go
//
// # Adding a New Background Job
//
//  1. Define the task and its processor in internal/tasks/
//
//     type RotateKeysTask struct{}
//
//     func (t RotateKeysTask) Config() backlite.QueueConfig
//
//  2. Register its queue in entrypoint.go
//
//  3. Optionally schedule it from internal/scheduler/
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
