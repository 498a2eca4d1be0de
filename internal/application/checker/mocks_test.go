package checker

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/ChemCheck/internal/domain/submission"
	"github.com/turtacn/ChemCheck/internal/infrastructure/storage/minio"
	"github.com/turtacn/ChemCheck/pkg/types/common"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Save(ctx context.Context, s *submission.Submission) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*submission.Submission, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*submission.Submission)
	return s, args.Error(1)
}

func (m *mockRepository) List(ctx context.Context, f submission.ListFilter) ([]*submission.Submission, error) {
	args := m.Called(ctx, f)
	s, _ := args.Get(0).([]*submission.Submission)
	return s, args.Error(1)
}

func (m *mockRepository) Stats(ctx context.Context) (*submission.Stats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*submission.Stats)
	return s, args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, msg *common.ProducerMessage) error {
	return m.Called(ctx, msg).Error(0)
}

type mockArchive struct {
	mock.Mock
}

func (m *mockArchive) PutJSON(ctx context.Context, id string, report interface{}) (*minio.StoredReport, error) {
	args := m.Called(ctx, id, report)
	r, _ := args.Get(0).(*minio.StoredReport)
	return r, args.Error(1)
}

type mockSubscriber struct {
	mock.Mock
}

func (m *mockSubscriber) Subscribe(topic string, handler common.MessageHandler) {
	m.Called(topic, handler)
}

func (m *mockSubscriber) Start(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *mockSubscriber) Close() error { return m.Called().Error(0) }
