// Package storage hands out presigned S3 URLs for profile images. Image
// bytes never pass through the directory server.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const keyPrefix = "avatars/"

// S3Config describes an S3-compatible endpoint such as MinIO.
type S3Config struct {
	User         string
	Password     string
	Bucket       string
	Region       string
	BaseEndpoint string
	URLValidity  time.Duration
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

type S3Avatars struct {
	presign  *s3.PresignClient
	bucket   string
	validity time.Duration
}

func NewS3Avatars(ctx context.Context, cfg S3Config) (*S3Avatars, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.User, cfg.Password, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	validity := cfg.URLValidity
	if validity <= 0 {
		validity = 15 * time.Minute
	}

	return &S3Avatars{presign: s3.NewPresignClient(client), bucket: cfg.Bucket, validity: validity}, nil
}

// NewKey returns a fresh object key for a profile image of userID.
func NewKey(userID string) string {
	return keyPrefix + userID + "/" + uuid.NewString()
}

// OwnedBy reports whether key was issued for userID by NewKey.
func OwnedBy(key, userID string) bool {
	return userID != "" && strings.HasPrefix(key, keyPrefix+userID+"/")
}

func (a *S3Avatars) UploadURL(ctx context.Context, key string) (string, error) {
	req, err := presignPutObject(a.presign, ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(a.validity))
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}
	return req.URL, nil
}

func (a *S3Avatars) DownloadURL(ctx context.Context, key string) (string, error) {
	req, err := presignGetObject(a.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(a.validity))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}
