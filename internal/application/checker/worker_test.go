package checker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemCheck/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ChemCheck/pkg/errors"
	types "github.com/turtacn/ChemCheck/pkg/types/chem"
	"github.com/turtacn/ChemCheck/pkg/types/common"
)

func requestedMessage(t *testing.T, eventType string, payload interface{}) *common.Message {
	t.Helper()
	env, err := kafka.NewEventEnvelope(eventType, "test", payload)
	require.NoError(t, err)
	env.RequestID = "req-42"
	pm, err := env.ToMessage(kafka.TopicCheckRequested, "req-42")
	require.NoError(t, err)
	return &common.Message{Topic: pm.Topic, Key: pm.Key, Value: pm.Value, Headers: pm.Headers}
}

func TestWorker_HandleCheckRequested(t *testing.T) {
	pub := new(mockPublisher)
	var completed *common.ProducerMessage
	pub.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { completed = args.Get(1).(*common.ProducerMessage) }).
		Return(nil)
	w := NewWorker(NewService(Config{}, nil, WithPublisher(pub)), nil, nil)

	msg := requestedMessage(t, kafka.EventCheckRequested,
		types.CheckRequestedEvent{Target: combustion, Test: "H2 + O2 -> H2O"})
	require.NoError(t, w.HandleCheckRequested(context.Background(), msg))

	require.NotNil(t, completed)
	assert.Equal(t, kafka.TopicCheckCompleted, completed.Topic)
	env, err := kafka.MessageToEventEnvelope(&common.Message{Value: completed.Value})
	require.NoError(t, err)
	var ev types.CheckCompletedEvent
	require.NoError(t, env.DecodePayload(&ev))
	assert.Equal(t, "req-42", ev.RequestID, "request id falls back to the envelope")
	assert.Equal(t, "unbalanced_atoms", ev.Reason)
}

func TestWorker_AcknowledgesUnprocessableEvents(t *testing.T) {
	w := NewWorker(NewService(Config{}, nil), nil, nil)
	ctx := context.Background()

	assert.NoError(t, w.HandleCheckRequested(ctx, &common.Message{Value: []byte("not json")}))
	assert.NoError(t, w.HandleCheckRequested(ctx,
		requestedMessage(t, kafka.EventCheckCompleted, types.CheckCompletedEvent{})))
	assert.NoError(t, w.HandleCheckRequested(ctx,
		requestedMessage(t, kafka.EventCheckRequested, json.RawMessage("null"))))
	assert.NoError(t, w.HandleCheckRequested(ctx,
		requestedMessage(t, kafka.EventCheckRequested, types.CheckRequestedEvent{Target: "H2 + Xy -> H2", Test: "H2"})))
}

type erroringService struct{ Service }

func (erroringService) Check(context.Context, *types.CheckRequest) (*types.CheckResultView, error) {
	return nil, errors.New(errors.ErrCodeCacheError, "cache down")
}

func TestWorker_ReturnsRetryableErrors(t *testing.T) {
	w := NewWorker(erroringService{}, nil, nil)
	msg := requestedMessage(t, kafka.EventCheckRequested, types.CheckRequestedEvent{Target: combustion, Test: combustion})
	err := w.HandleCheckRequested(context.Background(), msg)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheError))
}

func TestWorker_Run(t *testing.T) {
	sub := new(mockSubscriber)
	sub.On("Subscribe", kafka.TopicCheckRequested, mock.Anything).Once()
	sub.On("Start", mock.Anything).Return(nil)
	sub.On("Close").Return(nil)
	w := NewWorker(NewService(Config{}, nil), sub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	sub.AssertExpectations(t)
}
