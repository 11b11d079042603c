// services/shipment-service/payment/payment.models.go
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/globaledge/globaledge/shared/contracts"
)

var (
	ErrPaymentFailed   = errors.New("payment gateway rejected the transaction")
	ErrInvalidAmount   = errors.New("invalid payment amount")
	ErrInvalidCard     = errors.New("invalid card details")
	ErrNoPaymentMethod = errors.New("no payment method supplied")
	ErrProviderDown    = errors.New("payment provider is currently unavailable")
)

// Gateway moves the money for one booking. Implementations must treat
// ReferenceID as an idempotency key: charging the same reference twice
// returns the first result.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

type ChargeRequest struct {
	ReferenceID string // the shipment ID
	AmountCents int64
	Currency    string
	Description string // appears on the card statement
	Details     contracts.PaymentDetails
	Metadata    map[string]string
}

type ChargeStatus string

const (
	ChargeSucceeded      ChargeStatus = "SUCCEEDED"
	ChargeFailed         ChargeStatus = "FAILED"
	ChargeRequiresAction ChargeStatus = "REQUIRES_ACTION"
)

type ChargeResult struct {
	TransactionID string
	Status        ChargeStatus
	Last4         string
	PaidAt        time.Time
}
