package activities

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/globaledge/globaledge/services/shipment-service/payment"
	"github.com/globaledge/globaledge/services/shipment-service/service"
	"github.com/globaledge/globaledge/shared/contracts"
)

// Activity names as registered on the worker and called by the workflow.
const (
	PrepareBooking   = "PrepareBooking"
	ChargePayment    = "ChargePayment"
	PersistShipment  = "PersistShipment"
	AnnounceShipment = "AnnounceShipment"
	CleanupDraft     = "CleanupDraft"
)

type ChargeInput struct {
	Plan    contracts.BookingPlan    `json:"plan"`
	Payment contracts.PaymentDetails `json:"payment"`
}

type PersistInput struct {
	Plan   contracts.BookingPlan `json:"plan"`
	Charge payment.ChargeResult  `json:"charge"`
}

// BookingActivities run the shipment service's booking steps inside the
// worker. Business failures leave as non-retryable application errors.
type BookingActivities struct {
	Steps *service.Steps
}

func (a *BookingActivities) PrepareBooking(ctx context.Context, draftID string) (contracts.BookingPlan, error) {
	plan, err := a.Steps.Prepare(ctx, draftID)
	return plan, service.ToApplicationError(err)
}

func (a *BookingActivities) ChargePayment(ctx context.Context, in ChargeInput) (payment.ChargeResult, error) {
	activity.GetLogger(ctx).Info("charging booking", "shipment_id", in.Plan.ShipmentID, "amount_cents", in.Plan.AmountCents)
	res, err := a.Steps.Charge(ctx, in.Plan, in.Payment)
	if err != nil {
		return payment.ChargeResult{}, service.ToApplicationError(err)
	}
	return *res, nil
}

func (a *BookingActivities) PersistShipment(ctx context.Context, in PersistInput) (contracts.Shipment, error) {
	shipment, err := a.Steps.Persist(ctx, in.Plan, in.Charge)
	return shipment, service.ToApplicationError(err)
}

func (a *BookingActivities) AnnounceShipment(ctx context.Context, shipment contracts.Shipment) error {
	return a.Steps.Announce(ctx, shipment)
}

func (a *BookingActivities) CleanupDraft(ctx context.Context, draftID string) error {
	return a.Steps.Cleanup(ctx, draftID)
}
