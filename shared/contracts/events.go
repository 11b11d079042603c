package contracts

import (
	"encoding/json"
	"time"
)

// Event names carried on the events topic.
const (
	EventShipmentCreated  = "shipment.created"
	EventStatusChanged    = "shipment.status_changed"
	EventContactSubmitted = "contact.submitted"
)

// Event is the envelope every producer writes.
type Event struct {
	Event      string      `json:"event"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// Envelope is the consumer-side view of Event with the payload left raw.
type Envelope struct {
	Event      string          `json:"event"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

func NewEvent(name string, payload interface{}, at time.Time) Event {
	return Event{Event: name, OccurredAt: at.UTC(), Payload: payload}
}

// StatusChange is the payload of EventStatusChanged.
type StatusChange struct {
	ShipmentID     string         `json:"shipmentId"`
	TrackingNumber string         `json:"trackingNumber"`
	From           ShipmentStatus `json:"from"`
	To             ShipmentStatus `json:"to"`
	Note           string         `json:"note,omitempty"`
	SenderEmail    string         `json:"senderEmail"`
	RecipientPhone string         `json:"recipientPhone,omitempty"`
	ChangedAt      time.Time      `json:"changedAt"`
}
