package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// DefaultSignedURLTTL bounds the validity window of signed download URLs
// when the caller passes no expiry.
const DefaultSignedURLTTL = time.Hour

// S3Config describes the primary provider: a main bucket plus an optional
// best-effort backup bucket in the same region. Endpoint is set for
// S3-compatible stores (MinIO) in development.
type S3Config struct {
	Region          string
	Bucket          string
	BackupBucket    string
	Endpoint        string
	ForcePathStyle  bool
	AccessKeyID     string
	SecretAccessKey string
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type s3PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Client is the primary object-store client. Every upload is written to
// the main bucket with server-side encryption and tagged with the tenant
// context; a best-effort copy goes to the backup bucket when one is
// configured. Safe for concurrent use: all state is immutable configuration.
type S3Client struct {
	cfg     S3Config
	api     s3API
	presign s3PresignAPI
}

// NewS3Client builds a client from static credentials. Region and bucket
// are required; everything else has defaults.
func NewS3Client(ctx context.Context, cfg S3Config) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	if cfg.Region == "" {
		return nil, errors.New("s3 region required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return newS3ClientWithAPI(cfg, client, s3.NewPresignClient(client)), nil
}

func newS3ClientWithAPI(cfg S3Config, api s3API, presign s3PresignAPI) *S3Client {
	return &S3Client{cfg: cfg, api: api, presign: presign}
}

// Upload writes the file to the main bucket and, on success, replays the
// same write against the backup bucket. A backup failure is logged and
// swallowed: it must never fail the caller-visible operation. No retries.
func (c *S3Client) Upload(ctx context.Context, file FileInfo, uctx UploadContext, progress ProgressFunc) (*UploadResult, error) {
	data, err := io.ReadAll(file.Body)
	if err != nil {
		return nil, newError(CodeUploadFailed, ProviderPrimary, "read upload body", err)
	}

	storedName := GeneratedName(file.Name)
	key := PrimaryKey(uctx, storedName)

	if progress != nil {
		progress(0, file.Size)
	}

	if err := c.putObject(ctx, c.cfg.Bucket, key, data, file, uctx); err != nil {
		return nil, newError(CodeUploadFailed, ProviderPrimary,
			fmt.Sprintf("upload %s", key), err)
	}

	if progress != nil {
		progress(file.Size, file.Size)
	}

	result := &UploadResult{
		ID:          uuid.NewString(),
		Provider:    ProviderPrimary,
		Key:         key,
		URL:         c.publicURL(c.cfg.Bucket, key),
		Name:        file.Name,
		ContentType: file.ContentType,
		Size:        file.Size,
		CreatedAt:   time.Now(),
	}

	if c.cfg.BackupBucket != "" {
		if err := c.putObject(ctx, c.cfg.BackupBucket, key, data, file, uctx); err != nil {
			log.Printf("s3 backup upload failed bucket=%s key=%s error=%v", c.cfg.BackupBucket, key, err)
		} else {
			result.BackupURL = c.publicURL(c.cfg.BackupBucket, key)
		}
	}

	return result, nil
}

// UploadMany uploads files one at a time, stopping at the first failure.
// Results for files uploaded before the failure are returned alongside the
// error.
func (c *S3Client) UploadMany(ctx context.Context, files []FileInfo, uctx UploadContext, progress ProgressFunc) ([]*UploadResult, error) {
	results := make([]*UploadResult, 0, len(files))
	for _, f := range files {
		res, err := c.Upload(ctx, f, uctx, progress)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Delete removes the object from the main bucket and then from the backup
// bucket. A backup deletion failure leaves an orphaned object behind; it is
// logged with the key so the backupaudit tool can reconcile, but does not
// fail the call.
func (c *S3Client) Delete(ctx context.Context, key string) error {
	if err := c.deleteObject(ctx, c.cfg.Bucket, key); err != nil {
		return newError(CodeDeleteFailed, ProviderPrimary, fmt.Sprintf("delete %s", key), err)
	}
	if c.cfg.BackupBucket != "" {
		if err := c.deleteObject(ctx, c.cfg.BackupBucket, key); err != nil {
			log.Printf("s3 backup delete failed, object orphaned bucket=%s key=%s error=%v",
				c.cfg.BackupBucket, key, err)
		}
	}
	return nil
}

// SignedURL issues a time-limited GET URL for a key in the main bucket.
func (c *S3Client) SignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultSignedURLTTL
	}
	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", newError(CodeSignFailed, ProviderPrimary, fmt.Sprintf("sign %s", key), err)
	}
	return req.URL, nil
}

// List returns objects under prefix in the main bucket.
func (c *S3Client) List(ctx context.Context, prefix string) ([]Object, error) {
	return c.listBucket(ctx, c.cfg.Bucket, prefix)
}

// ListBackup returns objects under prefix in the backup bucket.
func (c *S3Client) ListBackup(ctx context.Context, prefix string) ([]Object, error) {
	if c.cfg.BackupBucket == "" {
		return nil, errors.New("no backup bucket configured")
	}
	return c.listBucket(ctx, c.cfg.BackupBucket, prefix)
}

func (c *S3Client) listBucket(ctx context.Context, bucket, prefix string) ([]Object, error) {
	paginator := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	out := make([]Object, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects %s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			size := int64(0)
			if obj.Size != nil {
				size = *obj.Size
			}
			out = append(out, Object{Key: *obj.Key, Size: size})
		}
	}
	return out, nil
}

// Ping issues a single-key list against the main bucket.
func (c *S3Client) Ping(ctx context.Context) error {
	_, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.cfg.Bucket),
		MaxKeys: aws.Int32(1),
	})
	return err
}

func (c *S3Client) putObject(ctx context.Context, bucket, key string, data []byte, file FileInfo, uctx UploadContext) error {
	input := &s3.PutObjectInput{
		Bucket:               aws.String(bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(data),
		ContentType:          aws.String(file.ContentType),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
		Metadata: map[string]string{
			"tenant-id":     uctx.TenantID,
			"kit-id":        uctx.KitID,
			"client-id":     uctx.ClientID,
			"step-id":       uctx.StepID,
			"original-name": file.Name,
		},
	}
	_, err := c.api.PutObject(ctx, input)
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (c *S3Client) deleteObject(ctx context.Context, bucket, key string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		// deleting an already-gone object is a success
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (c *S3Client) publicURL(bucket, key string) string {
	if c.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(c.cfg.Endpoint, "/"), bucket, escapeKey(key))
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, c.cfg.Region, escapeKey(key))
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
