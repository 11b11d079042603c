//services/shipment-service/payment/stripe_gateway.go

package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeGateway confirms a PaymentIntent for a payment method the browser
// tokenised with Stripe.js. Raw card numbers never reach this gateway.
type StripeGateway struct {
	client *client.API
}

func NewStripeGateway(apiKey string) *StripeGateway {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &StripeGateway{client: sc}
}

// Charge creates and confirms a PaymentIntent in one call.
func (sg *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.Details.PaymentMethodID == "" {
		return nil, ErrNoPaymentMethod
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountCents),
		Currency:           stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod:      stripe.String(req.Details.PaymentMethodID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
		Description:        stripe.String(req.Description),
	}
	// Same shipment, same intent: a retried booking cannot charge twice.
	if req.ReferenceID != "" {
		params.IdempotencyKey = stripe.String("booking-" + req.ReferenceID)
	}
	if len(req.Metadata) > 0 {
		params.Metadata = make(map[string]string, len(req.Metadata))
		for k, v := range req.Metadata {
			params.Metadata[k] = v
		}
	}
	params.Context = ctx

	pi, err := sg.client.PaymentIntents.New(params)
	if err != nil {
		return nil, sg.mapStripeError(err)
	}

	res := &ChargeResult{TransactionID: pi.ID, PaidAt: time.Now().UTC()}
	if pi.PaymentMethod != nil && pi.PaymentMethod.Card != nil {
		res.Last4 = pi.PaymentMethod.Card.Last4
	}
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		res.Status = ChargeSucceeded
		return res, nil
	case stripe.PaymentIntentStatusRequiresAction:
		res.Status = ChargeRequiresAction
		return res, fmt.Errorf("%w: card requires authentication", ErrPaymentFailed)
	default:
		res.Status = ChargeFailed
		return res, fmt.Errorf("%w: status is %s", ErrPaymentFailed, pi.Status)
	}
}

// mapStripeError converts library errors into payment errors so stripe-go
// types never leak into the booking service.
func (sg *StripeGateway) mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Code {
		case stripe.ErrorCodeCardDeclined:
			return fmt.Errorf("%w: card was declined (%s)", ErrPaymentFailed, stripeErr.Msg)
		case stripe.ErrorCodeExpiredCard:
			return fmt.Errorf("%w: card has expired", ErrPaymentFailed)
		case stripe.ErrorCodeIncorrectCVC, stripe.ErrorCodeIncorrectNumber, stripe.ErrorCodeInvalidExpiryMonth, stripe.ErrorCodeInvalidExpiryYear:
			return fmt.Errorf("%w: %s", ErrInvalidCard, stripeErr.Msg)
		case stripe.ErrorCodeIdempotencyKeyInUse:
			return fmt.Errorf("%w: concurrent charge for the same booking", ErrProviderDown)
		}
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError {
			return ErrProviderDown
		}
	}
	return fmt.Errorf("gateway internal error: %w", err)
}
