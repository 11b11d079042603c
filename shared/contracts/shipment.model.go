package contracts

import (
	"strings"
	"time"

	"github.com/globaledge/globaledge/pkg/quote"
)

// ShipmentStatus is the lifecycle state of a booked shipment.
type ShipmentStatus string

const (
	StatusPending        ShipmentStatus = "PENDING"
	StatusPreTransit     ShipmentStatus = "PRE_TRANSIT"
	StatusInTransit      ShipmentStatus = "IN_TRANSIT"
	StatusOutForDelivery ShipmentStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      ShipmentStatus = "DELIVERED"
	StatusCancelled      ShipmentStatus = "CANCELLED"
)

// NoteBooked is attached to the status event written when a shipment is created.
const NoteBooked = "Shipment booked"

var allStatuses = []ShipmentStatus{
	StatusPending, StatusPreTransit, StatusInTransit, StatusOutForDelivery, StatusDelivered, StatusCancelled,
}

// ParseShipmentStatus is case-insensitive and accepts dashes or spaces for underscores.
func ParseShipmentStatus(s string) (ShipmentStatus, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for _, st := range allStatuses {
		if string(st) == norm {
			return st, true
		}
	}
	return "", false
}

// Terminal statuses accept no further transitions.
func (s ShipmentStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Party is a sender or recipient as captured on the booking form.
type Party struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address string `json:"address" validate:"required,max=300"`
}

// Shipment is the single source of truth for a booked shipment. Every
// service (shipment, workflow, communications) uses this struct.
type Shipment struct {
	ID             string            `json:"id"`
	TrackingNumber string            `json:"trackingNumber"`
	ServiceType    quote.ServiceType `json:"serviceType"`
	Origin         string            `json:"origin"`
	Destination    string            `json:"destination"`
	Sender         Party             `json:"sender"`
	Recipient      Party             `json:"recipient"`
	Description    string            `json:"description,omitempty"`
	Input          quote.Input       `json:"input"`
	Quote          quote.Quote       `json:"quote"`
	Status         ShipmentStatus    `json:"status"`
	PaymentRef     string            `json:"paymentRef"`
	PhotoURL       string            `json:"photoUrl,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// StatusEvent is one entry of a shipment's tracking history.
type StatusEvent struct {
	ID         string         `json:"id"`
	ShipmentID string         `json:"shipmentId"`
	Status     ShipmentStatus `json:"status"`
	Note       string         `json:"note,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
