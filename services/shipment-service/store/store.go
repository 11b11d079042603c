// store/store.go
package store

import (
	"context"
	"errors"
	"time"

	"github.com/globaledge/globaledge/shared/contracts"
)

var (
	ErrShipmentNotFound  = errors.New("shipment not found")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrDraftNotFound     = errors.New("booking draft not found or expired")
)

// DefaultPageSize applies when a filter carries no limit; MaxPageSize caps it.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// ShipmentFilter narrows GetShipments. Empty fields match everything.
type ShipmentFilter struct {
	Origin      string
	Destination string
	Status      contracts.ShipmentStatus
	SenderEmail string
	Limit       int32
	Offset      int32
}

// Normalize clamps pagination into range.
func (f ShipmentFilter) Normalize() ShipmentFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ShipmentStore is the persistence port for booked shipments and their history.
type ShipmentStore interface {
	// CreateShipment stores the shipment and its first status event. Creating
	// a shipment whose tracking number already exists returns the stored one,
	// which keeps retried bookings idempotent.
	CreateShipment(ctx context.Context, shipment contracts.Shipment) (contracts.Shipment, error)

	GetShipment(ctx context.Context, id string) (contracts.Shipment, error)
	GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (contracts.Shipment, error)

	// GetShipments returns newest first.
	GetShipments(ctx context.Context, filter ShipmentFilter) ([]contracts.Shipment, error)

	// UpdateStatus sets the status and appends the matching event atomically,
	// returning the shipment and the status it had before. Delivered and
	// cancelled shipments are final and yield ErrInvalidTransition. Setting
	// the current status again changes nothing and records no event.
	UpdateStatus(ctx context.Context, id string, status contracts.ShipmentStatus, note string, at time.Time) (contracts.Shipment, contracts.ShipmentStatus, error)

	// ListEvents returns the history oldest first.
	ListEvents(ctx context.Context, shipmentID string) ([]contracts.StatusEvent, error)
}

// DraftStore keeps booking drafts for a limited time.
type DraftStore interface {
	SaveDraft(ctx context.Context, draft contracts.BookingDraft) error
	GetDraft(ctx context.Context, id string) (contracts.BookingDraft, error)
	DeleteDraft(ctx context.Context, id string) error
}
