package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/mrlokans/uploadauth/internal/apperrors"
	"github.com/mrlokans/uploadauth/internal/config"
	"github.com/mrlokans/uploadauth/internal/entities"
	"github.com/mrlokans/uploadauth/internal/logging"
	"github.com/mrlokans/uploadauth/internal/metrics"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const maxEmailLength = 254

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthenticated)
	ErrEmailInvalid       = fmt.Errorf("%w: invalid email format", apperrors.ErrValidation)
	ErrPasswordRequired   = fmt.Errorf("%w: password is required", apperrors.ErrValidation)
)

// RetryAfterError is returned by Login while the caller is locked out.
type RetryAfterError struct {
	RetryAfter time.Duration
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("%s, retry after %s", apperrors.ErrTooManyAttempts, e.RetryAfter.Round(time.Second))
}

func (e *RetryAfterError) Unwrap() error {
	return apperrors.ErrTooManyAttempts
}

// AccountStore is the persistence the service needs for accounts.
type AccountStore interface {
	Create(ctx context.Context, acct *entities.Account) error
	GetByID(ctx context.Context, id uint) (*entities.Account, error)
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)
	List(ctx context.Context) ([]entities.Account, error)
	Update(ctx context.Context, acct *entities.Account) error
	Delete(ctx context.Context, id uint) error
}

// LoginRecorder writes the audit trail of successful logins. It must not fail
// the login, so it has no error result.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, accountID uint, ip, userAgent string)
}

// Dependencies are the collaborators of Service. Recorder, Limiter, Metrics
// and Logger are optional.
type Dependencies struct {
	Accounts AccountStore
	Hasher   *Hasher
	Issuer   *Issuer
	Recorder LoginRecorder
	Limiter  *RateLimiter
	Admin    config.Admin
	Metrics  *metrics.Registry
	Logger   logging.Logger
}

// Service handles registration, login and account administration.
type Service struct {
	accounts AccountStore
	hasher   *Hasher
	issuer   *Issuer
	recorder LoginRecorder
	limiter  *RateLimiter
	admin    config.Admin
	metrics  *metrics.Registry
	log      logging.Logger
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		accounts: deps.Accounts,
		hasher:   deps.Hasher,
		issuer:   deps.Issuer,
		recorder: deps.Recorder,
		limiter:  deps.Limiter,
		admin:    deps.Admin,
		metrics:  deps.Metrics,
		log:      log,
	}
}

type LoginRequest struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
	// AdminOnly rejects valid credentials of non-admin accounts as invalid.
	AdminOnly bool
}

type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
	Account   *entities.Account
}

// AccountUpdate replaces the mutable fields of an account. A nil Password
// keeps the current one.
type AccountUpdate struct {
	Email    string
	Password *string
	IsAdmin  bool
	IsActive bool
}

// Register creates an active, non-admin account.
func (s *Service) Register(ctx context.Context, email, password string) (*entities.Account, error) {
	return s.CreateAccount(ctx, email, password, false)
}

// CreateAccount creates an active account with the given admin bit.
func (s *Service) CreateAccount(ctx context.Context, email, password string, isAdmin bool) (*entities.Account, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	acct := &entities.Account{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsAdmin:      isAdmin,
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "account created", "account_id", acct.ID, "is_admin", isAdmin)
	return acct, nil
}

// Login checks credentials and issues an access token. Wrong email, wrong
// password and inactive accounts all fail with ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := entities.NormalizeEmail(req.Email)

	if s.limiter != nil {
		if allowed, retryAfter := s.limiter.Allow(req.IP, email); !allowed {
			s.metrics.Login(metrics.LoginThrottled)
			s.log.Warn(ctx, "login throttled", "email", email, "ip", req.IP, "retry_after", retryAfter)
			return nil, &RetryAfterError{RetryAfter: retryAfter}
		}
	}

	acct, err := s.accounts.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	switch {
	case acct == nil:
		s.hasher.VerifyMissing(req.Password)
		return nil, s.loginFailed(ctx, email, req.IP, metrics.LoginInvalidCredentials)
	case !s.hasher.Verify(req.Password, acct.PasswordHash):
		return nil, s.loginFailed(ctx, email, req.IP, metrics.LoginInvalidCredentials)
	case !acct.IsActive:
		return nil, s.loginFailed(ctx, email, req.IP, metrics.LoginInactive)
	case req.AdminOnly && !acct.IsAdmin:
		return nil, s.loginFailed(ctx, email, req.IP, metrics.LoginInvalidCredentials)
	}

	token, err := s.issuer.Issue(acct.Subject(), 0)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if s.limiter != nil {
		s.limiter.RecordSuccess(req.IP, email)
	}
	s.metrics.Login(metrics.LoginSuccess)
	if s.recorder != nil {
		s.recorder.RecordLogin(ctx, acct.ID, req.IP, req.UserAgent)
	}
	s.log.Info(ctx, "login succeeded", "account_id", acct.ID, "ip", req.IP)

	return &LoginResult{
		Token:     token,
		ExpiresIn: s.issuer.TTL(),
		Account:   acct,
	}, nil
}

func (s *Service) loginFailed(ctx context.Context, email, ip, reason string) error {
	if s.limiter != nil {
		if locked, lockout := s.limiter.RecordFailure(ip, email); locked {
			s.log.Warn(ctx, "login locked out", "email", email, "ip", ip, "lockout", lockout)
		}
	}
	s.metrics.Login(reason)
	s.log.Warn(ctx, "login failed", "email", email, "ip", ip, "reason", reason)
	return ErrInvalidCredentials
}

// BootstrapAdmin creates the configured admin account unless an account with
// that email already exists. created is false in the latter case.
func (s *Service) BootstrapAdmin(ctx context.Context) (bool, *entities.Account, error) {
	existing, err := s.accounts.GetByEmail(ctx, s.admin.Email)
	if err == nil {
		return false, existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return false, nil, err
	}

	acct, err := s.CreateAccount(ctx, s.admin.Email, s.admin.Password, true)
	if errors.Is(err, apperrors.ErrDuplicateEmail) {
		// Lost a race with a concurrent bootstrap.
		existing, err = s.accounts.GetByEmail(ctx, s.admin.Email)
		return false, existing, err
	}
	if err != nil {
		return false, nil, err
	}
	return true, acct, nil
}

func (s *Service) GetAccount(ctx context.Context, id uint) (*entities.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

func (s *Service) ListAccounts(ctx context.Context) ([]entities.Account, error) {
	return s.accounts.List(ctx)
}

// UpdateAccount applies upd to the account with the given id.
func (s *Service) UpdateAccount(ctx context.Context, id uint, upd AccountUpdate) (*entities.Account, error) {
	acct, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	email, err := validateEmail(upd.Email)
	if err != nil {
		return nil, err
	}
	acct.Email = email
	acct.IsAdmin = upd.IsAdmin
	acct.IsActive = upd.IsActive

	if upd.Password != nil && *upd.Password != "" {
		hash, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, err
		}
		acct.PasswordHash = hash
	}

	if err := s.accounts.Update(ctx, acct); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "account updated", "account_id", acct.ID)
	return acct, nil
}

// DeleteAccount removes the account together with its login history.
func (s *Service) DeleteAccount(ctx context.Context, id uint) error {
	if err := s.accounts.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "account deleted", "account_id", id)
	return nil
}

// IssueToken mints a token for an existing active account without a
// password check. It backs the operator CLI.
func (s *Service) IssueToken(ctx context.Context, email string, ttl time.Duration) (string, *entities.Account, error) {
	acct, err := s.accounts.GetByEmail(ctx, entities.NormalizeEmail(email))
	if err != nil {
		return "", nil, err
	}
	if !acct.IsActive {
		return "", nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, acct.Email)
	}
	token, err := s.issuer.Issue(acct.Subject(), ttl)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, acct, nil
}

func validateEmail(email string) (string, error) {
	email = entities.NormalizeEmail(email)
	if email == "" || len(email) > maxEmailLength || !emailPattern.MatchString(email) {
		return "", ErrEmailInvalid
	}
	return email, nil
}
