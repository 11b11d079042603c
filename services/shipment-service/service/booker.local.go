package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/globaledge/globaledge/shared/contracts"
)

// Booker turns a paid-for draft into a stored shipment.
type Booker interface {
	Book(ctx context.Context, req contracts.BookingRequest) (contracts.Shipment, error)
}

// LocalBooker runs the booking steps in the request goroutine. Used when no
// Temporal cluster is configured.
type LocalBooker struct {
	steps  *Steps
	logger *zap.Logger
}

func NewLocalBooker(steps *Steps, logger *zap.Logger) *LocalBooker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalBooker{steps: steps, logger: logger}
}

func (b *LocalBooker) Book(ctx context.Context, req contracts.BookingRequest) (contracts.Shipment, error) {
	plan, err := b.steps.Prepare(ctx, req.DraftID)
	if err != nil {
		return contracts.Shipment{}, err
	}
	charge, err := b.steps.Charge(ctx, plan, req.Payment)
	if err != nil {
		return contracts.Shipment{}, err
	}
	shipment, err := b.steps.Persist(ctx, plan, *charge)
	if err != nil {
		b.logger.Error("shipment paid but not stored",
			zap.String("shipment_id", plan.ShipmentID),
			zap.String("payment_ref", charge.TransactionID),
			zap.Error(err))
		return contracts.Shipment{}, err
	}

	// The booking stands from here on; later failures are only logged.
	if err := b.steps.Announce(ctx, shipment); err != nil {
		b.logger.Warn("failed to publish shipment.created", zap.String("shipment_id", shipment.ID), zap.Error(err))
	}
	if err := b.steps.Cleanup(ctx, req.DraftID); err != nil {
		b.logger.Warn("failed to delete booking draft", zap.String("draft_id", req.DraftID), zap.Error(err))
	}
	return shipment, nil
}
