// service/shipment.service.go
package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/globaledge/globaledge/services/shipment-service/store"
	"github.com/globaledge/globaledge/shared/contracts"
	"github.com/globaledge/globaledge/shared/kafka"
)

// ShipmentService handles the staff and customer views of booked shipments.
type ShipmentService struct {
	store    store.ShipmentStore
	producer kafka.Publisher
	logger   *zap.Logger
	now      func() time.Time
}

func NewShipmentService(s store.ShipmentStore, producer kafka.Publisher, logger *zap.Logger) *ShipmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if producer == nil {
		producer = kafka.NopPublisher{Logger: logger}
	}
	return &ShipmentService{store: s, producer: producer, logger: logger, now: time.Now}
}

// WithClock replaces the clock used to stamp status events.
func (s *ShipmentService) WithClock(now func() time.Time) *ShipmentService {
	s.now = now
	return s
}

// ListShipments backs the admin panel.
func (s *ShipmentService) ListShipments(ctx context.Context, filter store.ShipmentFilter) ([]contracts.Shipment, error) {
	return s.store.GetShipments(ctx, filter.Normalize())
}

// DashboardShipments lists the shipments a customer sent.
func (s *ShipmentService) DashboardShipments(ctx context.Context, email string, limit, offset int32) ([]contracts.Shipment, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	return s.store.GetShipments(ctx, store.ShipmentFilter{SenderEmail: email, Limit: limit, Offset: offset}.Normalize())
}

func (s *ShipmentService) GetShipment(ctx context.Context, id string) (contracts.Shipment, error) {
	return s.store.GetShipment(ctx, id)
}

// UpdateStatus moves a shipment to a new status and announces it. Delivered
// and cancelled shipments are final. Setting the current status again is a no-op.
func (s *ShipmentService) UpdateStatus(ctx context.Context, id string, status contracts.ShipmentStatus, note string) (contracts.Shipment, error) {
	if _, ok := contracts.ParseShipmentStatus(string(status)); !ok {
		return contracts.Shipment{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	at := s.now().UTC()
	updated, previous, err := s.store.UpdateStatus(ctx, id, status, strings.TrimSpace(note), at)
	if err != nil {
		return contracts.Shipment{}, err
	}
	if previous == status {
		return updated, nil
	}

	change := contracts.StatusChange{
		ShipmentID:     updated.ID,
		TrackingNumber: updated.TrackingNumber,
		From:           previous,
		To:             updated.Status,
		Note:           strings.TrimSpace(note),
		SenderEmail:    updated.Sender.Email,
		RecipientPhone: updated.Recipient.Phone,
		ChangedAt:      at,
	}
	// The status is stored; a lost event only delays the customer's SMS.
	if err := s.producer.Publish(ctx, updated.ID, contracts.NewEvent(contracts.EventStatusChanged, change, at)); err != nil {
		s.logger.Warn("failed to publish status change", zap.String("shipment_id", updated.ID), zap.Error(err))
	}
	return updated, nil
}
