package minio

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/pkg/errors"
)

// MinIOAPI is the subset of *minio.Client used here.
type MinIOAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// Config configures the batch report archive.
type Config struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	Region          string        `mapstructure:"region"`
	ReportBucket    string        `mapstructure:"report_bucket"`
	ReportPrefix    string        `mapstructure:"report_prefix"`
	RetentionDays   int           `mapstructure:"retention_days"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

func applyDefaults(cfg *Config) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.ReportBucket == "" {
		cfg.ReportBucket = "chemcheck-reports"
	}
	if cfg.ReportPrefix == "" {
		cfg.ReportPrefix = "batches/"
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = 30
	}
	if cfg.PresignExpiry == 0 {
		cfg.PresignExpiry = time.Hour
	}
}

// Client owns the MinIO connection and the report bucket.
type Client struct {
	api    MinIOAPI
	cfg    Config
	logger logging.Logger
}

// NewClient connects, creates the report bucket if missing and installs
// its expiry rule.
func NewClient(ctx context.Context, cfg Config, log logging.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New(errors.ErrCodeValidation, "minio endpoint required")
	}
	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to create minio client")
	}
	return NewClientWithAPI(ctx, api, cfg, log)
}

// NewClientWithAPI is NewClient over an existing API, typically a mock.
func NewClientWithAPI(ctx context.Context, api MinIOAPI, cfg Config, log logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	applyDefaults(&cfg)
	c := &Client{api: api, cfg: cfg, logger: log}

	if err := c.ensureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("minio client ready",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.ReportBucket))
	return c, nil
}

func (c *Client) Config() Config { return c.cfg }

func (c *Client) ensureBucket(ctx context.Context) error {
	bucket := c.cfg.ReportBucket
	exists, err := c.api.BucketExists(ctx, bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to check bucket").WithDetail(bucket)
	}
	if !exists {
		if err := c.api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.cfg.Region}); err != nil {
			return errors.Wrap(err, errors.ErrCodeStorageError, "failed to create bucket").WithDetail(bucket)
		}
		c.logger.Info("created bucket", logging.String("bucket", bucket))
	}

	rules := lifecycle.NewConfiguration()
	rules.Rules = []lifecycle.Rule{{
		ID:         "report-expiry",
		Status:     "Enabled",
		RuleFilter: lifecycle.Filter{Prefix: c.cfg.ReportPrefix},
		Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(c.cfg.RetentionDays)},
	}}
	if err := c.api.SetBucketLifecycle(ctx, bucket, rules); err != nil {
		// Some S3-compatible stores reject lifecycle rules; reports then live
		// until removed by hand.
		c.logger.Warn("failed to set report lifecycle", logging.String("bucket", bucket), logging.Err(err))
	}
	return nil
}

// HealthCheck verifies the report bucket is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.api.BucketExists(ctx, c.cfg.ReportBucket); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "minio health check failed")
	}
	return nil
}
