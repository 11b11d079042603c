package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/globaledge/globaledge/shared/contracts"
	pkgrabbit "github.com/globaledge/globaledge/shared/rabbitmq"
)

// Bridge translates domain events from Kafka into notification jobs on
// RabbitMQ. Its Handle method is a kafka.Handler.
type Bridge struct {
	jobs         pkgrabbit.Publisher
	supportEmail string
	logger       *zap.Logger
}

func NewBridge(jobs pkgrabbit.Publisher, supportEmail string, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{jobs: jobs, supportEmail: supportEmail, logger: logger}
}

// Handle returns an error only when publishing fails, so the consumer
// retries. Messages that cannot be decoded are logged and skipped.
func (b *Bridge) Handle(ctx context.Context, key, value []byte) error {
	var env contracts.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		b.logger.Error("dropping undecodable event", zap.ByteString("key", key), zap.Error(err))
		return nil
	}

	switch env.Event {
	case contracts.EventShipmentCreated:
		var s contracts.Shipment
		if !b.decode(env, &s) {
			return nil
		}
		return b.shipmentCreated(ctx, s)
	case contracts.EventStatusChanged:
		var sc contracts.StatusChange
		if !b.decode(env, &sc) {
			return nil
		}
		return b.statusChanged(ctx, sc)
	case contracts.EventContactSubmitted:
		var msg contracts.ContactMessage
		if !b.decode(env, &msg) {
			return nil
		}
		return b.contactSubmitted(ctx, msg)
	default:
		b.logger.Debug("ignoring event", zap.String("event", env.Event))
		return nil
	}
}

func (b *Bridge) decode(env contracts.Envelope, v interface{}) bool {
	if err := json.Unmarshal(env.Payload, v); err != nil {
		b.logger.Error("dropping event with bad payload", zap.String("event", env.Event), zap.Error(err))
		return false
	}
	return true
}

func (b *Bridge) shipmentCreated(ctx context.Context, s contracts.Shipment) error {
	if s.Sender.Email != "" {
		job := EmailJob{
			Type:           JobReceiptEmail,
			To:             s.Sender.Email,
			Subject:        "Your GlobalEdge receipt " + s.TrackingNumber,
			Body:           receiptBody(s),
			TrackingNumber: s.TrackingNumber,
		}
		if err := pkgrabbit.PublishJSON(ctx, b.jobs, EmailQueue, job); err != nil {
			return err
		}
	}
	if s.Recipient.Phone != "" {
		job := SMSJob{
			Type:           JobSMSAlert,
			To:             s.Recipient.Phone,
			Text:           fmt.Sprintf("GlobalEdge: a parcel from %s is on its way to you. Track it with %s.", s.Sender.Name, s.TrackingNumber),
			TrackingNumber: s.TrackingNumber,
		}
		if err := pkgrabbit.PublishJSON(ctx, b.jobs, SMSQueue, job); err != nil {
			return err
		}
	}
	b.logger.Info("booking notifications queued", zap.String("tracking_number", s.TrackingNumber))
	return nil
}

func (b *Bridge) statusChanged(ctx context.Context, sc contracts.StatusChange) error {
	if sc.RecipientPhone == "" {
		return nil
	}
	text := fmt.Sprintf("GlobalEdge %s: %s", sc.TrackingNumber, statusLabel(sc.To))
	if sc.Note != "" {
		text += " (" + sc.Note + ")"
	}
	return pkgrabbit.PublishJSON(ctx, b.jobs, SMSQueue, SMSJob{
		Type:           JobSMSAlert,
		To:             sc.RecipientPhone,
		Text:           text,
		TrackingNumber: sc.TrackingNumber,
	})
}

func (b *Bridge) contactSubmitted(ctx context.Context, msg contracts.ContactMessage) error {
	if b.supportEmail == "" {
		b.logger.Warn("no support address configured, contact message dropped", zap.String("from", msg.Email))
		return nil
	}
	return pkgrabbit.PublishJSON(ctx, b.jobs, EmailQueue, EmailJob{
		Type:    JobSupportEmail,
		To:      b.supportEmail,
		ReplyTo: msg.Email,
		Subject: "[contact] " + msg.Subject,
		Body:    fmt.Sprintf("From: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message),
	})
}

func receiptBody(s contracts.Shipment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hello %s,\n\n", s.Sender.Name)
	fmt.Fprintf(&sb, "Thank you for shipping with GlobalEdge. Your tracking number is %s.\n\n", s.TrackingNumber)
	fmt.Fprintf(&sb, "Route:     %s -> %s\n", s.Origin, s.Destination)
	fmt.Fprintf(&sb, "Recipient: %s\n", s.Recipient.Name)
	fmt.Fprintf(&sb, "Total:     %.2f %s\n", s.Quote.TotalPrice, s.Quote.Currency)
	fmt.Fprintf(&sb, "Estimate:  %s\n", s.Quote.ETAText)
	return sb.String()
}

func statusLabel(s contracts.ShipmentStatus) string {
	switch s {
	case contracts.StatusPreTransit:
		return "label created, awaiting pickup"
	case contracts.StatusInTransit:
		return "in transit"
	case contracts.StatusOutForDelivery:
		return "out for delivery today"
	case contracts.StatusDelivered:
		return "delivered"
	case contracts.StatusCancelled:
		return "cancelled"
	default:
		return strings.ToLower(string(s))
	}
}
