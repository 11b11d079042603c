package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/globaledge/globaledge/services/shipment-service/payment"
	"github.com/globaledge/globaledge/services/shipment-service/service"
	"github.com/globaledge/globaledge/services/workflow-orchestrator/internal/activities"
	"github.com/globaledge/globaledge/shared/contracts"
)

// ConfirmBookingWorkflow charges the customer and stores the shipment.
// Steps up to PersistShipment must succeed; the announcement and the draft
// cleanup afterwards are best effort.
func ConfirmBookingWorkflow(ctx workflow.Context, req contracts.BookingRequest) (contracts.Shipment, error) {
	logger := workflow.GetLogger(ctx)

	retryPolicy := &temporal.RetryPolicy{
		InitialInterval:        time.Second,
		BackoffCoefficient:     2.0,
		MaximumInterval:        30 * time.Second,
		MaximumAttempts:        5,
		NonRetryableErrorTypes: service.NonRetryableErrorTypes(),
	}
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 15 * time.Second,
		RetryPolicy:         retryPolicy,
	})

	var plan contracts.BookingPlan
	if err := workflow.ExecuteActivity(ctx, activities.PrepareBooking, req.DraftID).Get(ctx, &plan); err != nil {
		return contracts.Shipment{}, err
	}

	var charge payment.ChargeResult
	err := workflow.ExecuteActivity(ctx, activities.ChargePayment, activities.ChargeInput{Plan: plan, Payment: req.Payment}).Get(ctx, &charge)
	if err != nil {
		return contracts.Shipment{}, err
	}

	var shipment contracts.Shipment
	err = workflow.ExecuteActivity(ctx, activities.PersistShipment, activities.PersistInput{Plan: plan, Charge: charge}).Get(ctx, &shipment)
	if err != nil {
		logger.Error("shipment paid but not stored", "shipment_id", plan.ShipmentID, "payment_ref", charge.TransactionID, "error", err)
		return contracts.Shipment{}, err
	}

	if err := workflow.ExecuteActivity(ctx, activities.AnnounceShipment, shipment).Get(ctx, nil); err != nil {
		logger.Warn("failed to publish shipment.created", "shipment_id", shipment.ID, "error", err)
	}
	if err := workflow.ExecuteActivity(ctx, activities.CleanupDraft, req.DraftID).Get(ctx, nil); err != nil {
		logger.Warn("failed to delete booking draft", "draft_id", req.DraftID, "error", err)
	}
	return shipment, nil
}
