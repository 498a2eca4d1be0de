package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/pkg/errors"
	"github.com/turtacn/ChemCheck/pkg/types/common"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
)

// Dead-letter headers added to a message that exhausted its retries.
const (
	HeaderOriginalTopic = "original_topic"
	HeaderErrorMessage  = "error_message"
)

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher is the subset of Producer the consumer needs for dead letters.
type Publisher interface {
	Publish(ctx context.Context, msg *common.ProducerMessage) error
}

// RetryPolicy controls redelivery of a failing message.
type RetryPolicy struct {
	MaxRetries      int
	Backoff         time.Duration
	MaxBackoff      time.Duration
	DeadLetterTopic string
}

// ConsumerStats is a snapshot of consumer counters.
type ConsumerStats struct {
	Consumed     int64
	Processed    int64
	Failed       int64
	Retried      int64
	DeadLettered int64
}

// Consumer dispatches messages from a consumer group to per-topic handlers.
// Offsets are committed after the handler succeeds or the message has been
// dead-lettered.
type Consumer struct {
	reader     ReaderInterface
	deadLetter Publisher
	retry      RetryPolicy
	groupID    string
	logger     logging.Logger

	mu       sync.RWMutex
	handlers map[string]common.MessageHandler

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	consumed, processed, failed, retried, deadLettered atomic.Int64
}

// NewConsumer joins cfg.GroupID on topics. deadLetter may be nil, in which
// case messages that exhaust their retries are dropped after logging.
func NewConsumer(cfg Config, topics []string, retry RetryPolicy, deadLetter Publisher, logger logging.Logger) (*Consumer, error) {
	if err := validateBrokerConfig(cfg); err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "at least one topic required")
	}
	applyDefaults(&cfg)

	tlsConfig, mech, err := securityFor(cfg)
	if err != nil {
		return nil, err
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10 << 20,
		MaxWait:     500 * time.Millisecond,
		StartOffset: kafka.FirstOffset,
		Dialer: &kafka.Dialer{
			Timeout:       10 * time.Second,
			DualStack:     true,
			TLS:           tlsConfig,
			SASLMechanism: mech,
		},
	})

	if retry.MaxRetries == 0 {
		retry.MaxRetries = cfg.MaxRetries
	}
	if retry.Backoff == 0 {
		retry.Backoff = cfg.RetryBackoff
	}
	if retry.MaxBackoff == 0 {
		retry.MaxBackoff = cfg.MaxRetryBackoff
	}
	return newConsumerWithReader(reader, cfg.GroupID, retry, deadLetter, logger), nil
}

func newConsumerWithReader(r ReaderInterface, groupID string, retry RetryPolicy, deadLetter Publisher, logger logging.Logger) *Consumer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if retry.MaxRetries < 0 {
		retry.MaxRetries = 0
	}
	if retry.Backoff <= 0 {
		retry.Backoff = 500 * time.Millisecond
	}
	if retry.MaxBackoff < retry.Backoff {
		retry.MaxBackoff = retry.Backoff
	}
	return &Consumer{
		reader:     r,
		deadLetter: deadLetter,
		retry:      retry,
		groupID:    groupID,
		logger:     logger,
		handlers:   make(map[string]common.MessageHandler),
	}
}

// Subscribe registers handler for topic, replacing any previous one.
func (c *Consumer) Subscribe(topic string, handler common.MessageHandler) {
	c.mu.Lock()
	c.handlers[topic] = handler
	c.mu.Unlock()
	c.logger.Info("subscribed to topic", logging.String("topic", topic))
}

// Start runs the fetch loop in the background until ctx ends or Close.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.consumeLoop(ctx)

	c.logger.Info("kafka consumer started", logging.String("group", c.groupID))
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()

	for ctx.Err() == nil {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch failed", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		c.consumed.Add(1)

		msg := fromKafkaMessage(m)
		c.mu.RLock()
		handler, ok := c.handlers[m.Topic]
		c.mu.RUnlock()

		switch {
		case !ok:
			c.logger.Warn("no handler for topic", logging.String("topic", m.Topic))
		case c.process(ctx, msg, handler):
			c.processed.Add(1)
		default:
			c.failed.Add(1)
		}

		if ctx.Err() != nil {
			return
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit failed", logging.Int64("offset", m.Offset), logging.Err(err))
		}
	}
}

// process reports whether handler eventually succeeded.
func (c *Consumer) process(ctx context.Context, msg *common.Message, handler common.MessageHandler) bool {
	err := handler(ctx, msg)
	backoff := c.retry.Backoff
	for attempt := 0; err != nil && attempt < c.retry.MaxRetries; attempt++ {
		c.retried.Add(1)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		err = handler(ctx, msg)
		backoff *= 2
		if backoff > c.retry.MaxBackoff {
			backoff = c.retry.MaxBackoff
		}
	}
	if err == nil {
		return true
	}

	c.logger.Error("message processing failed after retries",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.Err(err))
	c.sendToDeadLetter(ctx, msg, err)
	return false
}

func (c *Consumer) sendToDeadLetter(ctx context.Context, msg *common.Message, cause error) {
	if c.deadLetter == nil || c.retry.DeadLetterTopic == "" {
		return
	}
	headers := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[HeaderOriginalTopic] = msg.Topic
	headers[HeaderErrorMessage] = cause.Error()

	dl := &common.ProducerMessage{
		Topic:   c.retry.DeadLetterTopic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
	if err := c.deadLetter.Publish(ctx, dl); err != nil {
		c.logger.Error("failed to publish dead letter", logging.Err(err))
		return
	}
	c.deadLettered.Add(1)
}

func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Consumed:     c.consumed.Load(),
		Processed:    c.processed.Load(),
		Failed:       c.failed.Load(),
		Retried:      c.retried.Load(),
		DeadLettered: c.deadLettered.Load(),
	}
}

// Close stops the loop and closes the reader. It is safe to call twice.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	err := c.reader.Close()
	c.logger.Info("kafka consumer closed", logging.Int64("consumed", c.consumed.Load()))
	return err
}

func fromKafkaMessage(m kafka.Message) *common.Message {
	msg := &common.Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Timestamp: m.Time,
		Headers:   make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}
