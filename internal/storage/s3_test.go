package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/uploadauth/internal/config"
)

func testStorageConfig() config.Storage {
	return config.Storage{
		AccessKey:      "minioadmin",
		SecretKey:      "minioadmin",
		Bucket:         "uploads",
		Region:         "us-east-1",
		Endpoint:       "http://127.0.0.1:9000",
		KeyPrefix:      "uploads",
		DefaultExpires: time.Hour,
		MaxExpires:     7 * 24 * time.Hour,
	}
}

func TestS3Minter_PresignsPut(t *testing.T) {
	minter, err := NewS3Minter(context.Background(), testStorageConfig())
	require.NoError(t, err)

	token, err := minter.Mint(context.Background(), MintRequest{
		Bucket:  "uploads",
		Key:     "avatars/me.png",
		Expires: 15 * time.Minute,
		Policy:  map[string]any{"contentType": "image/png"},
	})
	require.NoError(t, err)

	u, err := url.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/uploads/avatars/me.png", u.Path)

	q := u.Query()
	assert.Equal(t, "900", q.Get("X-Amz-Expires"))
	assert.True(t, strings.HasPrefix(q.Get("X-Amz-Credential"), "minioadmin/"))
	assert.Contains(t, q.Get("X-Amz-SignedHeaders"), "content-type")
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))
}

func TestS3Minter_PresignError(t *testing.T) {
	orig := presignPutObject
	t.Cleanup(func() { presignPutObject = orig })

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-put-fail")
	}

	minter, err := NewS3Minter(context.Background(), testStorageConfig())
	require.NoError(t, err)

	_, err = minter.Mint(context.Background(), MintRequest{Bucket: "b", Key: "k", Expires: time.Minute})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "presign-put-fail")
}

func TestApplyPolicy(t *testing.T) {
	input := &s3.PutObjectInput{}
	applyPolicy(input, map[string]any{
		"contentType":        "text/plain",
		"cacheControl":       "no-cache",
		"contentDisposition": "attachment",
		"metadata":           map[string]any{"owner": "7", "skipped": 3},
		"unknown":            true,
	})

	require.NotNil(t, input.ContentType)
	assert.Equal(t, "text/plain", *input.ContentType)
	assert.Equal(t, "no-cache", *input.CacheControl)
	assert.Equal(t, "attachment", *input.ContentDisposition)
	assert.Equal(t, map[string]string{"owner": "7"}, input.Metadata)

	empty := &s3.PutObjectInput{}
	applyPolicy(empty, nil)
	assert.Nil(t, empty.ContentType)
	assert.Nil(t, empty.Metadata)
}
