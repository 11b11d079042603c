package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/globaledge/globaledge/shared/contracts"
	"github.com/google/uuid"
)

// MemoryStore is the ShipmentStore used in tests and when no database is configured.
type MemoryStore struct {
	mu         sync.RWMutex
	shipments  map[string]contracts.Shipment
	byTracking map[string]string // tracking number -> id
	events     map[string][]contracts.StatusEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shipments:  make(map[string]contracts.Shipment),
		byTracking: make(map[string]string),
		events:     make(map[string][]contracts.StatusEvent),
	}
}

func (s *MemoryStore) CreateShipment(ctx context.Context, shipment contracts.Shipment) (contracts.Shipment, error) {
	// Check if the context is canceled or timed out
	select {
	case <-ctx.Done():
		return contracts.Shipment{}, ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byTracking[shipment.TrackingNumber]; ok && shipment.TrackingNumber != "" {
		return s.shipments[id], nil
	}
	if shipment.ID == "" {
		shipment.ID = uuid.NewString()
	}
	if shipment.CreatedAt.IsZero() {
		shipment.CreatedAt = time.Now().UTC()
	}
	shipment.UpdatedAt = shipment.CreatedAt

	s.shipments[shipment.ID] = shipment
	s.byTracking[shipment.TrackingNumber] = shipment.ID
	s.events[shipment.ID] = []contracts.StatusEvent{{
		ID:         uuid.NewString(),
		ShipmentID: shipment.ID,
		Status:     shipment.Status,
		Note:       contracts.NoteBooked,
		CreatedAt:  shipment.CreatedAt,
	}}
	return shipment, nil
}

func (s *MemoryStore) GetShipment(ctx context.Context, id string) (contracts.Shipment, error) {
	select {
	case <-ctx.Done():
		return contracts.Shipment{}, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shipments[id]
	if !ok {
		return contracts.Shipment{}, ErrShipmentNotFound
	}
	return sh, nil
}

func (s *MemoryStore) GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (contracts.Shipment, error) {
	select {
	case <-ctx.Done():
		return contracts.Shipment{}, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byTracking[strings.ToUpper(strings.TrimSpace(trackingNumber))]
	if !ok {
		return contracts.Shipment{}, ErrShipmentNotFound
	}
	return s.shipments[id], nil
}

func (s *MemoryStore) GetShipments(ctx context.Context, filter ShipmentFilter) ([]contracts.Shipment, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	filter = filter.Normalize()

	s.mu.RLock()
	var result []contracts.Shipment
	for _, sh := range s.shipments {
		if (filter.Origin == "" || strings.EqualFold(sh.Origin, filter.Origin)) &&
			(filter.Destination == "" || strings.EqualFold(sh.Destination, filter.Destination)) &&
			(filter.Status == "" || sh.Status == filter.Status) &&
			(filter.SenderEmail == "" || strings.EqualFold(sh.Sender.Email, filter.SenderEmail)) {
			result = append(result, sh)
		}
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	// Apply pagination
	start := int(filter.Offset)
	if start >= len(result) {
		return []contracts.Shipment{}, nil
	}
	end := start + int(filter.Limit)
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, status contracts.ShipmentStatus, note string, at time.Time) (contracts.Shipment, contracts.ShipmentStatus, error) {
	select {
	case <-ctx.Done():
		return contracts.Shipment{}, "", ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shipments[id]
	if !ok {
		return contracts.Shipment{}, "", ErrShipmentNotFound
	}
	previous := sh.Status
	if previous == status {
		return sh, previous, nil
	}
	if previous.Terminal() {
		return contracts.Shipment{}, previous, fmt.Errorf("%w: shipment is %s", ErrInvalidTransition, previous)
	}
	sh.Status = status
	sh.UpdatedAt = at
	s.shipments[id] = sh
	s.events[id] = append(s.events[id], contracts.StatusEvent{
		ID:         uuid.NewString(),
		ShipmentID: id,
		Status:     status,
		Note:       note,
		CreatedAt:  at,
	})
	return sh, previous, nil
}

func (s *MemoryStore) ListEvents(ctx context.Context, shipmentID string) ([]contracts.StatusEvent, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.shipments[shipmentID]; !ok {
		return nil, ErrShipmentNotFound
	}
	return append([]contracts.StatusEvent(nil), s.events[shipmentID]...), nil
}
