package http

import (
	"context"

	"github.com/mrlokans/uploadauth/internal/auth"
	"github.com/mrlokans/uploadauth/internal/database/loginevents"
	"github.com/mrlokans/uploadauth/internal/entities"
	"github.com/mrlokans/uploadauth/internal/storage"
)

// This file consolidates the service interfaces used by HTTP controllers.

// AccountService covers registration, login and account administration.
type AccountService interface {
	Register(ctx context.Context, email, password string) (*entities.Account, error)
	Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResult, error)
	BootstrapAdmin(ctx context.Context) (bool, *entities.Account, error)

	CreateAccount(ctx context.Context, email, password string, isAdmin bool) (*entities.Account, error)
	GetAccount(ctx context.Context, id uint) (*entities.Account, error)
	ListAccounts(ctx context.Context) ([]entities.Account, error)
	UpdateAccount(ctx context.Context, id uint, upd auth.AccountUpdate) (*entities.Account, error)
	DeleteAccount(ctx context.Context, id uint) error
}

// LoginHistory serves paginated login event queries.
type LoginHistory interface {
	List(ctx context.Context, f loginevents.Filter) (*loginevents.Page, error)
	ForAccount(ctx context.Context, accountID uint, f loginevents.Filter) (*loginevents.Page, error)
}

// UploadIssuer mints object storage upload tokens.
type UploadIssuer interface {
	Issue(ctx context.Context, accountID uint, req storage.UploadRequest) (*storage.UploadToken, error)
}

// Pinger reports database reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}
