package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/uploadauth/internal/audit"
	"github.com/mrlokans/uploadauth/internal/auth"
	"github.com/mrlokans/uploadauth/internal/config"
	"github.com/mrlokans/uploadauth/internal/database"
	"github.com/mrlokans/uploadauth/internal/database/accounts"
	"github.com/mrlokans/uploadauth/internal/database/loginevents"
	"github.com/mrlokans/uploadauth/internal/logging"
)

// services is what the operator commands need from the database.
type services struct {
	db      *database.Database
	auth    *auth.Service
	history *audit.History
}

func openServices(dbPath string, cfg config.Config, admin config.Admin) (*services, error) {
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		return nil, err
	}

	issuer, err := auth.NewIssuer(cfg.Token)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("invalid token settings: %w", err)
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	return &services{
		db: db,
		auth: auth.NewService(auth.Dependencies{
			Accounts: accounts.NewRepository(db.DB),
			Hasher:   auth.NewHasher(cfg.Auth.BcryptCost, cfg.Auth.MinPasswordLength),
			Issuer:   issuer,
			Admin:    admin,
			Logger:   log,
		}),
		history: audit.NewHistory(loginevents.NewRepository(db.DB)),
	}, nil
}

func (s *services) Close() error {
	return s.db.Close()
}

func output(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
