package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/pkg/errors"
)

var ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")

// StoredReport describes an archived report.
type StoredReport struct {
	Bucket     string
	Key        string
	ETag       string
	Size       int64
	URL        string
	UploadedAt time.Time
}

// ReportStore archives batch check reports as JSON objects.
type ReportStore struct {
	client *Client
	logger logging.Logger
}

func NewReportStore(client *Client, log logging.Logger) *ReportStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ReportStore{client: client, logger: log}
}

// ObjectKey places a report under the configured prefix, partitioned by day.
func (s *ReportStore) ObjectKey(id string, at time.Time) string {
	return path.Join(s.client.cfg.ReportPrefix, at.UTC().Format("2006/01/02"), id+".json")
}

// PutJSON stores report under id and returns a presigned download URL.
func (s *ReportStore) PutJSON(ctx context.Context, id string, report interface{}) (*StoredReport, error) {
	if id == "" {
		return nil, errors.New(errors.ErrCodeValidation, "report id required")
	}
	data, err := json.Marshal(report)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode report")
	}

	now := time.Now()
	key := s.ObjectKey(id, now)
	bucket := s.client.cfg.ReportBucket
	info, err := s.client.api.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  "application/json",
		UserMetadata: map[string]string{"report-id": id},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to upload report").WithDetail(key)
	}

	url, err := s.PresignedURL(ctx, key)
	if err != nil {
		return nil, err
	}
	s.logger.Info("report archived", logging.String("key", key), logging.Int64("size", info.Size))
	return &StoredReport{
		Bucket:     bucket,
		Key:        key,
		ETag:       info.ETag,
		Size:       info.Size,
		URL:        url,
		UploadedAt: now.UTC(),
	}, nil
}

// PresignedURL returns a time-limited download link for key.
func (s *ReportStore) PresignedURL(ctx context.Context, key string) (string, error) {
	u, err := s.client.api.PresignedGetObject(ctx, s.client.cfg.ReportBucket, key, s.client.cfg.PresignExpiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to presign report url").WithDetail(key)
	}
	return u.String(), nil
}

func (s *ReportStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.api.StatObject(ctx, s.client.cfg.ReportBucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat report").WithDetail(key)
}

func (s *ReportStore) Delete(ctx context.Context, key string) error {
	if err := s.client.api.RemoveObject(ctx, s.client.cfg.ReportBucket, key, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ErrObjectNotFound
		}
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to delete report").WithDetail(key)
	}
	return nil
}
