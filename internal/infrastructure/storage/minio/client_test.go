package minio

import (
	"context"
	stderrors "errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/pkg/errors"
)

type MockMinIOAPI struct {
	mock.Mock
}

func (m *MockMinIOAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockMinIOAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucketName, opts).Error(0)
}

func (m *MockMinIOAPI) SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error {
	return m.Called(ctx, bucketName, config).Error(0)
}

func (m *MockMinIOAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *MockMinIOAPI) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *MockMinIOAPI) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return m.Called(ctx, bucketName, objectName, opts).Error(0)
}

func (m *MockMinIOAPI) PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
	args := m.Called(ctx, bucketName, objectName, expiry, reqParams)
	u, _ := args.Get(0).(*url.URL)
	return u, args.Error(1)
}

func testConfig() Config {
	return Config{Enabled: true, Endpoint: "localhost:9000", ReportBucket: "reports"}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	applyDefaults(&cfg)

	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, "chemcheck-reports", cfg.ReportBucket)
	assert.Equal(t, "batches/", cfg.ReportPrefix)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Equal(t, time.Hour, cfg.PresignExpiry)
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(context.Background(), Config{}, logging.NewNopLogger())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestNewClientWithAPI_CreatesMissingBucket(t *testing.T) {
	api := new(MockMinIOAPI)
	api.On("BucketExists", mock.Anything, "reports").Return(false, nil)
	api.On("MakeBucket", mock.Anything, "reports", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil)
	api.On("SetBucketLifecycle", mock.Anything, "reports", mock.MatchedBy(func(c *lifecycle.Configuration) bool {
		return len(c.Rules) == 1 && c.Rules[0].RuleFilter.Prefix == "batches/"
	})).Return(nil)

	c, err := NewClientWithAPI(context.Background(), api, testConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, "reports", c.Config().ReportBucket)
	api.AssertExpectations(t)
}

func TestNewClientWithAPI_ExistingBucket(t *testing.T) {
	api := new(MockMinIOAPI)
	api.On("BucketExists", mock.Anything, "reports").Return(true, nil)
	api.On("SetBucketLifecycle", mock.Anything, "reports", mock.Anything).Return(stderrors.New("not implemented"))

	_, err := NewClientWithAPI(context.Background(), api, testConfig(), nil)
	require.NoError(t, err, "lifecycle failure is only logged")
	api.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewClientWithAPI_BucketCheckFails(t *testing.T) {
	api := new(MockMinIOAPI)
	api.On("BucketExists", mock.Anything, "reports").Return(false, stderrors.New("connection refused"))

	_, err := NewClientWithAPI(context.Background(), api, testConfig(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeStorageError))
}

func TestHealthCheck(t *testing.T) {
	api := new(MockMinIOAPI)
	api.On("BucketExists", mock.Anything, "reports").Return(true, nil).Once()
	api.On("SetBucketLifecycle", mock.Anything, "reports", mock.Anything).Return(nil)
	c, err := NewClientWithAPI(context.Background(), api, testConfig(), nil)
	require.NoError(t, err)

	api.On("BucketExists", mock.Anything, "reports").Return(false, stderrors.New("down")).Once()
	err = c.HealthCheck(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrCodeStorageError))
}
