// Package database provides the data access layer for the service.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup, SQLite pragmas, migrations
//	├── accounts/        # Account CRUD keyed by id and by unique email
//	└── loginevents/     # Append-only login history with filtered pagination
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./data.db")
//
//	accountRepo := accounts.NewRepository(db.DB)
//	historyRepo := loginevents.NewRepository(db.DB)
//
//	acct, err := accountRepo.GetByEmail(ctx, "a@x.com")
//	page, err := historyRepo.List(ctx, loginevents.Filter{AccountID: acct.ID})
//
// # Concurrency
//
// Uniqueness of account emails is enforced by the unique index, not by
// check-then-insert. The SQLite DSN enables WAL, a busy timeout and immediate
// transactions so concurrent writers queue at the store instead of failing
// with "database is locked".
package database
