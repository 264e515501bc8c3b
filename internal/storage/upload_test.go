package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/uploadauth/internal/apperrors"
	"github.com/mrlokans/uploadauth/internal/config"
	"github.com/mrlokans/uploadauth/internal/logging"
	"github.com/mrlokans/uploadauth/internal/metrics"
)

type fakeMinter struct {
	got MintRequest
	err error
}

func (f *fakeMinter) Mint(_ context.Context, req MintRequest) (string, error) {
	f.got = req
	if f.err != nil {
		return "", f.err
	}
	return "signed:" + req.Bucket + "/" + req.Key, nil
}

func TestUploadService_Issue(t *testing.T) {
	minter := &fakeMinter{}
	svc := NewUploadService(testStorageConfig(), minter, nil, logging.Nop())

	policy := map[string]any{"contentType": "image/png", "maxSize": float64(1024)}
	tok, err := svc.Issue(context.Background(), 1, UploadRequest{
		Key:     "/photos/cat.png",
		Expires: 10 * time.Minute,
		Policy:  policy,
	})
	require.NoError(t, err)

	assert.Equal(t, "signed:uploads/photos/cat.png", tok.Token)
	assert.Equal(t, "uploads", tok.Bucket)
	assert.Equal(t, "photos/cat.png", tok.Key)
	assert.Equal(t, 600, tok.Expires)
	assert.Equal(t, policy, tok.Policy, "unknown policy keys are echoed back")
	assert.Equal(t, 10*time.Minute, minter.got.Expires)
}

func TestUploadService_DefaultsAndGeneratedKey(t *testing.T) {
	minter := &fakeMinter{}
	svc := NewUploadService(testStorageConfig(), minter, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 2, 3, 23, 0, 0, 0, time.UTC) }

	tok, err := svc.Issue(context.Background(), 1, UploadRequest{})
	require.NoError(t, err)

	assert.Equal(t, 3600, tok.Expires)
	assert.Regexp(t, regexp.MustCompile(`^uploads/2026/02/03/[0-9a-f-]{36}$`), tok.Key)
	assert.Nil(t, tok.Policy)
}

func TestUploadService_Misconfigured(t *testing.T) {
	reg := metrics.NewRegistry()

	cfg := testStorageConfig()
	cfg.SecretKey = ""
	svc := NewUploadService(cfg, &fakeMinter{}, reg, nil)
	_, err := svc.Issue(context.Background(), 1, UploadRequest{})
	assert.ErrorIs(t, err, apperrors.ErrMisconfigured)

	svc = NewUploadService(testStorageConfig(), nil, reg, nil)
	_, err = svc.Issue(context.Background(), 1, UploadRequest{})
	assert.ErrorIs(t, err, apperrors.ErrMisconfigured)
}

func TestUploadService_ExpiresValidation(t *testing.T) {
	svc := NewUploadService(testStorageConfig(), &fakeMinter{}, nil, nil)

	for _, expires := range []time.Duration{-time.Second, 500 * time.Millisecond, 8 * 24 * time.Hour} {
		_, err := svc.Issue(context.Background(), 1, UploadRequest{Expires: expires})
		assert.ErrorIs(t, err, apperrors.ErrValidation, "expires=%s", expires)
	}

	_, err := svc.Issue(context.Background(), 1, UploadRequest{Expires: 7 * 24 * time.Hour})
	assert.NoError(t, err)
}

func TestUploadService_MinterError(t *testing.T) {
	boom := errors.New("signer unavailable")
	svc := NewUploadService(testStorageConfig(), &fakeMinter{err: boom}, nil, nil)

	_, err := svc.Issue(context.Background(), 1, UploadRequest{Key: "a"})
	assert.ErrorIs(t, err, boom)
}
