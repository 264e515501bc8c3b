package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/uploadauth/internal/apperrors"
	"github.com/mrlokans/uploadauth/internal/config"
	"github.com/mrlokans/uploadauth/internal/logging"
	"github.com/mrlokans/uploadauth/internal/metrics"
)

// UploadRequest is what an authenticated caller asks for. Zero Expires
// means the configured default; an empty Key is generated.
type UploadRequest struct {
	Key     string
	Expires time.Duration
	Policy  map[string]any
}

type UploadToken struct {
	Token   string         `json:"upload_token"`
	Bucket  string         `json:"bucket"`
	Key     string         `json:"key"`
	Expires int            `json:"expires"`
	Policy  map[string]any `json:"policy,omitempty"`
}

// UploadService validates upload requests and forwards them to the Minter.
type UploadService struct {
	cfg     config.Storage
	minter  Minter
	metrics *metrics.Registry
	log     logging.Logger
	now     func() time.Time
}

// NewUploadService accepts a nil minter; Issue then reports ErrMisconfigured.
func NewUploadService(cfg config.Storage, minter Minter, m *metrics.Registry, log logging.Logger) *UploadService {
	if log == nil {
		log = logging.Nop()
	}
	if cfg.DefaultExpires <= 0 {
		cfg.DefaultExpires = config.DefaultUploadExpiresSeconds * time.Second
	}
	if cfg.MaxExpires <= 0 {
		cfg.MaxExpires = config.MaxUploadExpiresSeconds * time.Second
	}
	return &UploadService{
		cfg:     cfg,
		minter:  minter,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// Issue mints an upload token for accountID.
func (s *UploadService) Issue(ctx context.Context, accountID uint, req UploadRequest) (*UploadToken, error) {
	if !s.cfg.Configured() || s.minter == nil {
		s.metrics.UploadToken(metrics.UploadMisconfigured)
		s.log.Error(ctx, "upload token requested but object storage is not configured", "account_id", accountID)
		return nil, apperrors.ErrMisconfigured
	}

	expires := req.Expires
	if expires == 0 {
		expires = s.cfg.DefaultExpires
	}
	if expires < time.Second || expires > s.cfg.MaxExpires {
		return nil, fmt.Errorf("%w: expires must be between 1 and %d seconds", apperrors.ErrValidation, int(s.cfg.MaxExpires.Seconds()))
	}

	key := strings.TrimLeft(strings.TrimSpace(req.Key), "/")
	if key == "" {
		key = s.generateKey()
	}

	token, err := s.minter.Mint(ctx, MintRequest{
		Bucket:  s.cfg.Bucket,
		Key:     key,
		Expires: expires,
		Policy:  req.Policy,
	})
	if err != nil {
		s.metrics.UploadToken(metrics.UploadFailed)
		return nil, fmt.Errorf("mint upload token: %w", err)
	}

	s.metrics.UploadToken(metrics.UploadIssued)
	s.log.Info(ctx, "upload token issued", "account_id", accountID, "bucket", s.cfg.Bucket, "key", key, "expires", expires)

	return &UploadToken{
		Token:   token,
		Bucket:  s.cfg.Bucket,
		Key:     key,
		Expires: int(expires / time.Second),
		Policy:  req.Policy,
	}, nil
}

// generateKey returns <prefix>/<yyyy>/<mm>/<dd>/<uuid>.
func (s *UploadService) generateKey() string {
	now := s.now().UTC()
	return path.Join(
		s.cfg.KeyPrefix,
		fmt.Sprintf("%04d/%02d/%02d", now.Year(), now.Month(), now.Day()),
		uuid.New().String(),
	)
}
