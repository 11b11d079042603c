package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/globaledge/globaledge/pkg/quote"
	"github.com/globaledge/globaledge/services/shipment-service/payment"
	"github.com/globaledge/globaledge/services/shipment-service/store"
	"github.com/globaledge/globaledge/shared/contracts"
	"github.com/globaledge/globaledge/shared/kafka"
)

// Steps are the individual stages of a booking confirmation. The local
// booker runs them back to back; the workflow orchestrator runs each one as
// a Temporal activity. Every step is safe to repeat.
type Steps struct {
	Drafts    store.DraftStore
	Shipments store.ShipmentStore
	Gateway   payment.Gateway
	Events    kafka.Publisher
	Now       func() time.Time
}

func (s *Steps) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Prepare loads the draft, reprices it and fixes the shipment identity.
func (s *Steps) Prepare(ctx context.Context, draftID string) (contracts.BookingPlan, error) {
	draft, err := s.Drafts.GetDraft(ctx, draftID)
	if err != nil {
		return contracts.BookingPlan{}, err
	}
	if draft.Sender == nil || draft.Recipient == nil {
		return contracts.BookingPlan{}, ErrDetailsMissing
	}
	q, ok := draft.Input.Compute()
	if !ok {
		return contracts.BookingPlan{}, ErrQuoteUnavailable
	}
	shipmentID := shipmentIDForDraft(draft.ID)
	return contracts.BookingPlan{
		DraftID:        draft.ID,
		ShipmentID:     shipmentID,
		TrackingNumber: trackingNumberFor(shipmentID),
		Draft:          draft,
		Quote:          q,
		AmountCents:    q.TotalCents(),
	}, nil
}

// Charge takes the payment, keyed on the shipment ID.
func (s *Steps) Charge(ctx context.Context, plan contracts.BookingPlan, details contracts.PaymentDetails) (*payment.ChargeResult, error) {
	res, err := s.Gateway.Charge(ctx, payment.ChargeRequest{
		ReferenceID: plan.ShipmentID,
		AmountCents: plan.AmountCents,
		Currency:    quote.Currency,
		Description: "GlobalEdge shipment " + plan.TrackingNumber,
		Details:     details,
		Metadata: map[string]string{
			"tracking_number": plan.TrackingNumber,
			"draft_id":        plan.DraftID,
		},
	})
	if err != nil {
		return nil, mapPaymentError(err)
	}
	return res, nil
}

// Persist stores the paid shipment with status PRE_TRANSIT.
func (s *Steps) Persist(ctx context.Context, plan contracts.BookingPlan, charge payment.ChargeResult) (contracts.Shipment, error) {
	at := charge.PaidAt
	if at.IsZero() {
		at = s.now()
	}
	draft := plan.Draft
	route := draft.Input.Request().Route
	shipment := contracts.Shipment{
		ID:             plan.ShipmentID,
		TrackingNumber: plan.TrackingNumber,
		ServiceType:    plan.Quote.ServiceType,
		Origin:         route.From,
		Destination:    route.To,
		Description:    draft.Description,
		Input:          draft.Input,
		Quote:          plan.Quote,
		Status:         contracts.StatusPreTransit,
		PaymentRef:     charge.TransactionID,
		PhotoURL:       draft.PhotoURL,
		CreatedAt:      at.UTC(),
	}
	if draft.Sender != nil {
		shipment.Sender = *draft.Sender
	}
	if draft.Recipient != nil {
		shipment.Recipient = *draft.Recipient
	}
	created, err := s.Shipments.CreateShipment(ctx, shipment)
	if err != nil {
		return contracts.Shipment{}, fmt.Errorf("failed to store shipment: %w", err)
	}
	return created, nil
}

// Announce publishes shipment.created keyed by shipment ID.
func (s *Steps) Announce(ctx context.Context, shipment contracts.Shipment) error {
	if s.Events == nil {
		return nil
	}
	event := contracts.NewEvent(contracts.EventShipmentCreated, shipment, s.now())
	return s.Events.Publish(ctx, shipment.ID, event)
}

// Cleanup removes the draft. A draft that is already gone is not an error.
func (s *Steps) Cleanup(ctx context.Context, draftID string) error {
	err := s.Drafts.DeleteDraft(ctx, draftID)
	if errors.Is(err, store.ErrDraftNotFound) {
		return nil
	}
	return err
}

func mapPaymentError(err error) error {
	switch {
	case errors.Is(err, payment.ErrPaymentFailed):
		return fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
	case errors.Is(err, payment.ErrInvalidCard),
		errors.Is(err, payment.ErrNoPaymentMethod),
		errors.Is(err, payment.ErrInvalidAmount):
		return fmt.Errorf("%w: %v", ErrInvalidPayment, err)
	default:
		return fmt.Errorf("payment: %w", err)
	}
}
