package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/globaledge/globaledge/shared/contracts"
)

// ConfirmBookingWorkflowName is the name the orchestrator registers the
// booking workflow under.
const ConfirmBookingWorkflowName = "ConfirmBookingWorkflow"

// Application error types carried across the workflow boundary.
const (
	ErrTypeQuoteUnavailable = "QuoteUnavailable"
	ErrTypeDraftNotFound    = "DraftNotFound"
	ErrTypeDetailsMissing   = "DetailsMissing"
	ErrTypePaymentDeclined  = "PaymentDeclined"
	ErrTypeInvalidPayment   = "InvalidPayment"
)

var businessErrors = map[string]error{
	ErrTypeQuoteUnavailable: ErrQuoteUnavailable,
	ErrTypeDraftNotFound:    ErrDraftNotFound,
	ErrTypeDetailsMissing:   ErrDetailsMissing,
	ErrTypePaymentDeclined:  ErrPaymentDeclined,
	ErrTypeInvalidPayment:   ErrInvalidPayment,
}

// NonRetryableErrorTypes lists the types a workflow retry policy must not retry.
func NonRetryableErrorTypes() []string {
	return []string{
		ErrTypeQuoteUnavailable, ErrTypeDraftNotFound, ErrTypeDetailsMissing,
		ErrTypePaymentDeclined, ErrTypeInvalidPayment,
	}
}

// ToApplicationError marks business failures as non-retryable. Other
// errors are returned unchanged and retried by Temporal.
func ToApplicationError(err error) error {
	if err == nil {
		return nil
	}
	for typ, sentinel := range businessErrors {
		if errors.Is(err, sentinel) {
			return temporal.NewNonRetryableApplicationError(err.Error(), typ, err)
		}
	}
	return err
}

// FromWorkflowError maps a failed workflow back onto the sentinel errors.
func FromWorkflowError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		if sentinel, ok := businessErrors[appErr.Type()]; ok {
			return fmt.Errorf("%w: %s", sentinel, appErr.Error())
		}
	}
	return fmt.Errorf("booking workflow failed: %w", err)
}

// TemporalBooker hands the confirmation to the workflow orchestrator and
// waits for the result.
type TemporalBooker struct {
	client    client.Client
	taskQueue string
	timeout   time.Duration
}

func NewTemporalBooker(c client.Client, taskQueue string) *TemporalBooker {
	return &TemporalBooker{client: c, taskQueue: taskQueue, timeout: 2 * time.Minute}
}

func (b *TemporalBooker) Book(ctx context.Context, req contracts.BookingRequest) (contracts.Shipment, error) {
	opts := client.StartWorkflowOptions{
		// one workflow per draft: a double submit joins the running booking
		ID:                       "booking-" + req.DraftID,
		TaskQueue:                b.taskQueue,
		WorkflowExecutionTimeout: b.timeout,
	}
	run, err := b.client.ExecuteWorkflow(ctx, opts, ConfirmBookingWorkflowName, req)
	if err != nil {
		return contracts.Shipment{}, fmt.Errorf("failed to start booking workflow: %w", err)
	}
	var shipment contracts.Shipment
	if err := run.Get(ctx, &shipment); err != nil {
		return contracts.Shipment{}, FromWorkflowError(err)
	}
	return shipment, nil
}
