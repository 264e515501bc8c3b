package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mrlokans/uploadauth/internal/config"
)

// Seams for tests.
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
	newS3PresignClient    = func(c *s3.Client) *s3.PresignClient { return s3.NewPresignClient(c) }
	presignPutObject      = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// S3Minter mints presigned PUT URLs against S3 or an S3-compatible store.
type S3Minter struct {
	presigner *s3.PresignClient
}

// NewS3Minter builds a presign client from static credentials. No network
// call is made; presigning is local.
func NewS3Minter(ctx context.Context, cfg config.Storage) (*S3Minter, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Minter{presigner: newS3PresignClient(client)}, nil
}

// Mint returns a presigned PUT URL. Recognised policy keys are
// contentType, cacheControl, contentDisposition and metadata; the uploader
// must send matching headers.
func (m *S3Minter) Mint(ctx context.Context, req MintRequest) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(req.Bucket),
		Key:    aws.String(req.Key),
	}
	applyPolicy(input, req.Policy)

	presigned, err := presignPutObject(m.presigner, ctx, input, s3.WithPresignExpires(req.Expires))
	if err != nil {
		return "", fmt.Errorf("presign put %s/%s: %w", req.Bucket, req.Key, err)
	}
	return presigned.URL, nil
}

func applyPolicy(input *s3.PutObjectInput, policy map[string]any) {
	if v, ok := policy["contentType"].(string); ok && v != "" {
		input.ContentType = aws.String(v)
	}
	if v, ok := policy["cacheControl"].(string); ok && v != "" {
		input.CacheControl = aws.String(v)
	}
	if v, ok := policy["contentDisposition"].(string); ok && v != "" {
		input.ContentDisposition = aws.String(v)
	}
	if raw, ok := policy["metadata"].(map[string]any); ok {
		meta := make(map[string]string, len(raw))
		for k, v := range raw {
			if s, ok := v.(string); ok {
				meta[k] = s
			}
		}
		if len(meta) > 0 {
			input.Metadata = meta
		}
	}
}
