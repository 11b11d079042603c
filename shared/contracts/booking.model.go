package contracts

import (
	"time"

	"github.com/globaledge/globaledge/pkg/quote"
)

// BookingDraft is the in-progress booking a customer builds across the quote,
// details and payment steps. It lives in the draft store until confirmed or expired.
type BookingDraft struct {
	ID          string       `json:"id"`
	Input       quote.Input  `json:"input"`
	Quote       *quote.Quote `json:"quote"`
	Sender      *Party       `json:"sender,omitempty"`
	Recipient   *Party       `json:"recipient,omitempty"`
	Description string       `json:"description,omitempty"`
	PhotoURL    string       `json:"photoUrl,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

// PaymentDetails is what the checkout form submits. Either a card or a
// provider payment method ID is required, depending on the active gateway.
type PaymentDetails struct {
	CardholderName  string `json:"cardholderName" validate:"required_without=PaymentMethodID,max=120"`
	CardNumber      string `json:"cardNumber" validate:"required_without=PaymentMethodID,omitempty,min=12,max=23"`
	ExpMonth        int    `json:"expMonth" validate:"required_without=PaymentMethodID,omitempty,min=1,max=12"`
	ExpYear         int    `json:"expYear" validate:"required_without=PaymentMethodID,omitempty,min=2000,max=2100"`
	CVC             string `json:"cvc" validate:"required_without=PaymentMethodID,omitempty,numeric,min=3,max=4"`
	PaymentMethodID string `json:"paymentMethodId,omitempty"`
}

// Last4 returns the last four digits of the card number, if any.
func (p PaymentDetails) Last4() string {
	digits := make([]byte, 0, len(p.CardNumber))
	for i := 0; i < len(p.CardNumber); i++ {
		if c := p.CardNumber[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) < 4 {
		return ""
	}
	return string(digits[len(digits)-4:])
}

// BookingRequest starts a booking confirmation, in process or as a workflow.
type BookingRequest struct {
	DraftID string         `json:"draftId"`
	Payment PaymentDetails `json:"payment"`
}

// BookingPlan is everything decided before money moves. IDs are fixed here so
// that retried steps stay idempotent.
type BookingPlan struct {
	DraftID        string       `json:"draftId"`
	ShipmentID     string       `json:"shipmentId"`
	TrackingNumber string       `json:"trackingNumber"`
	Draft          BookingDraft `json:"draft"`
	Quote          quote.Quote  `json:"quote"`
	AmountCents    int64        `json:"amountCents"`
}

// Receipt is what the customer sees after paying, and what the receipt page reloads.
type Receipt struct {
	TrackingNumber string            `json:"trackingNumber"`
	ShipmentID     string            `json:"shipmentId"`
	ServiceType    quote.ServiceType `json:"serviceType"`
	Origin         string            `json:"origin"`
	Destination    string            `json:"destination"`
	Sender         Party             `json:"sender"`
	Recipient      Party             `json:"recipient"`
	Quote          quote.Quote       `json:"quote"`
	AmountCents    int64             `json:"amountCents"`
	Currency       string            `json:"currency"`
	ETAText        string            `json:"etaText"`
	Status         ShipmentStatus    `json:"status"`
	PaymentRef     string            `json:"paymentRef"`
	BookedAt       time.Time         `json:"bookedAt"`
}

// ReceiptFromShipment rebuilds the receipt of a stored shipment.
func ReceiptFromShipment(s Shipment) Receipt {
	return Receipt{
		TrackingNumber: s.TrackingNumber,
		ShipmentID:     s.ID,
		ServiceType:    s.ServiceType,
		Origin:         s.Origin,
		Destination:    s.Destination,
		Sender:         s.Sender,
		Recipient:      s.Recipient,
		Quote:          s.Quote,
		AmountCents:    s.Quote.TotalCents(),
		Currency:       s.Quote.Currency,
		ETAText:        s.Quote.ETAText,
		Status:         s.Status,
		PaymentRef:     s.PaymentRef,
		BookedAt:       s.CreatedAt,
	}
}

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	Name        string    `json:"name" validate:"required,max=120"`
	Email       string    `json:"email" validate:"required,email"`
	Subject     string    `json:"subject" validate:"required,max=200"`
	Message     string    `json:"message" validate:"required,max=5000"`
	SubmittedAt time.Time `json:"submittedAt"`
}
