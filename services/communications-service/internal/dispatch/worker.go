package dispatch

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer is the subset of the RabbitMQ client a worker needs.
type Consumer interface {
	Consume(queueName string) (<-chan amqp.Delivery, error)
}

// EmailSender delivers one e-mail job.
type EmailSender interface {
	SendEmail(ctx context.Context, job EmailJob) error
}

// SMSSender delivers one SMS job.
type SMSSender interface {
	SendSMS(ctx context.Context, job SMSJob) error
}

// Worker drains one queue. Jobs are acked after handling, rejected without
// requeue when they cannot be decoded, and requeued when delivery fails.
type Worker struct {
	queue  string
	source Consumer
	handle func(ctx context.Context, body []byte) (bool, error)
	logger *zap.Logger
}

func NewEmailWorker(source Consumer, sender EmailSender, logger *zap.Logger) *Worker {
	return newWorker(EmailQueue, source, logger, func(ctx context.Context, body []byte) (bool, error) {
		var job EmailJob
		if err := json.Unmarshal(body, &job); err != nil {
			return false, err
		}
		return true, sender.SendEmail(ctx, job)
	})
}

func NewSMSWorker(source Consumer, sender SMSSender, logger *zap.Logger) *Worker {
	return newWorker(SMSQueue, source, logger, func(ctx context.Context, body []byte) (bool, error) {
		var job SMSJob
		if err := json.Unmarshal(body, &job); err != nil {
			return false, err
		}
		return true, sender.SendSMS(ctx, job)
	})
}

func newWorker(queue string, source Consumer, logger *zap.Logger, handle func(context.Context, []byte) (bool, error)) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{queue: queue, source: source, handle: handle, logger: logger.With(zap.String("queue", queue))}
}

// Run blocks until ctx is done or the delivery channel closes.
func (w *Worker) Run(ctx context.Context) error {
	msgs, err := w.source.Consume(w.queue)
	if err != nil {
		return err
	}
	w.logger.Info("worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopping")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			w.process(ctx, d)
		}
	}
}

func (w *Worker) process(ctx context.Context, d amqp.Delivery) {
	decoded, err := w.handle(ctx, d.Body)
	switch {
	case err == nil:
		if err := d.Ack(false); err != nil {
			w.logger.Error("failed to ack job", zap.Error(err))
		}
	case !decoded:
		w.logger.Error("rejecting malformed job", zap.Error(err))
		if err := d.Reject(false); err != nil {
			w.logger.Error("failed to reject job", zap.Error(err))
		}
	default:
		w.logger.Warn("job failed, requeueing", zap.Error(err))
		if err := d.Nack(false, true); err != nil {
			w.logger.Error("failed to requeue job", zap.Error(err))
		}
	}
}

// LogSender stands in for the e-mail and SMS providers by logging each job.
type LogSender struct {
	Logger *zap.Logger
}

func (s LogSender) SendEmail(ctx context.Context, job EmailJob) error {
	s.Logger.Info("email sent",
		zap.String("type", job.Type),
		zap.String("to", job.To),
		zap.String("subject", job.Subject))
	return nil
}

func (s LogSender) SendSMS(ctx context.Context, job SMSJob) error {
	s.Logger.Info("sms sent",
		zap.String("type", job.Type),
		zap.String("to", job.To),
		zap.String("tracking_number", job.TrackingNumber))
	return nil
}
