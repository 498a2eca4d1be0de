package checker

import (
	"context"

	"github.com/turtacn/ChemCheck/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/pkg/errors"
	types "github.com/turtacn/ChemCheck/pkg/types/chem"
	"github.com/turtacn/ChemCheck/pkg/types/common"
)

// Subscriber is satisfied by kafka.Consumer.
type Subscriber interface {
	Subscribe(topic string, handler common.MessageHandler)
	Start(ctx context.Context) error
	Close() error
}

// Worker grades answers queued on the check.requested topic. The service
// publishes each verdict to check.completed.
type Worker struct {
	svc      Service
	consumer Subscriber
	logger   logging.Logger
}

func NewWorker(svc Service, consumer Subscriber, logger logging.Logger) *Worker {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Worker{svc: svc, consumer: consumer, logger: logger.Named("worker")}
}

// Run subscribes and blocks until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	w.consumer.Subscribe(kafka.TopicCheckRequested, w.HandleCheckRequested)
	if err := w.consumer.Start(ctx); err != nil {
		return err
	}
	w.logger.Info("worker running", logging.String("topic", kafka.TopicCheckRequested))
	<-ctx.Done()
	return w.consumer.Close()
}

// HandleCheckRequested decodes one event and checks it. Malformed events
// and invalid targets cannot succeed on retry, so they are logged and
// acknowledged; other failures are returned for redelivery.
func (w *Worker) HandleCheckRequested(ctx context.Context, msg *common.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		w.logger.Warn("dropping malformed event", logging.Int64("offset", msg.Offset), logging.Err(err))
		return nil
	}
	if env.EventType != kafka.EventCheckRequested {
		w.logger.Warn("unexpected event type", logging.String("event_type", env.EventType))
		return nil
	}
	var ev types.CheckRequestedEvent
	if err := env.DecodePayload(&ev); err != nil {
		w.logger.Warn("dropping event with bad payload", logging.String("event_id", env.EventID), logging.Err(err))
		return nil
	}
	if ev.RequestID == "" {
		ev.RequestID = env.RequestID
	}

	ctx = logging.ContextWithRequestID(ctx, ev.RequestID)
	res, err := w.svc.Check(ctx, &types.CheckRequest{Target: ev.Target, Test: ev.Test, RequestID: ev.RequestID})
	if err != nil {
		if errors.IsCode(err, errors.CodeInvalidParam) {
			w.logger.WithContext(ctx).Warn("rejecting check with invalid target", logging.Err(err))
			return nil
		}
		return err
	}
	w.logger.WithContext(ctx).Info("check completed",
		logging.String("submission_id", res.SubmissionID),
		logging.String("reason", res.Reason))
	return nil
}
