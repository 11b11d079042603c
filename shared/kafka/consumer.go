package kafka

import (
	"context"
	"time"

	skafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Reader is the subset of kafka.Reader the consumer loop needs.
type Reader interface {
	FetchMessage(ctx context.Context) (skafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Handler processes one message. A failing message is retried in place up to
// MaxAttempts times; after that it is logged and committed so one poison
// message cannot stall the partition.
type Handler func(ctx context.Context, key []byte, value []byte) error

// Consumer runs a fetch, handle, commit loop over one topic.
type Consumer struct {
	reader         Reader
	logger         *zap.Logger
	handlerTimeout time.Duration
	retryDelay     time.Duration
	MaxAttempts    int
}

// NewConsumer joins the given consumer group. Running several copies of a
// service with the same groupID splits the partitions between them.
func NewConsumer(brokers []string, topic, groupID string, logger *zap.Logger) *Consumer {
	r := skafka.NewReader(skafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
	return NewConsumerWithReader(r, logger)
}

// NewConsumerWithReader allows injecting a test reader.
func NewConsumerWithReader(r Reader, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{
		reader:         r,
		logger:         logger,
		handlerTimeout: 10 * time.Second,
		retryDelay:     time.Second,
		MaxAttempts:    5,
	}
}

// Start blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, handler Handler) {
	c.logger.Info("kafka consumer started")

	for {
		if ctx.Err() != nil {
			return
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("kafka fetch failed", zap.Error(err))
			if !sleep(ctx, c.retryDelay) {
				return
			}
			continue
		}

		if !c.handle(ctx, handler, m) {
			return
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("kafka commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

// handle runs the handler with retries. It returns false only when ctx was
// cancelled before the message could be settled.
func (c *Consumer) handle(ctx context.Context, handler Handler, m skafka.Message) bool {
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 1; i <= attempts; i++ {
		processCtx, cancel := context.WithTimeout(ctx, c.handlerTimeout)
		err := handler(processCtx, m.Key, m.Value)
		cancel()
		if err == nil {
			return true
		}
		c.logger.Error("kafka message handling failed",
			zap.Int64("offset", m.Offset),
			zap.Int("partition", m.Partition),
			zap.Int("attempt", i),
			zap.Error(err))
		if i < attempts && !sleep(ctx, c.retryDelay) {
			return false
		}
	}
	c.logger.Error("kafka message skipped after retries", zap.Int64("offset", m.Offset))
	return ctx.Err() == nil
}

// Close disconnects from the server.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
