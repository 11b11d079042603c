package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/globaledge/globaledge/services/shipment-service/internal/geo"
	"github.com/globaledge/globaledge/services/shipment-service/store"
	"github.com/globaledge/globaledge/shared/contracts"
)

// PlaceResolver returns nil for places it cannot locate.
type PlaceResolver interface {
	Resolve(ctx context.Context, place string) *geo.Point
}

// Tracking is everything the tracking page renders, map pins included.
type Tracking struct {
	Shipment    contracts.Shipment      `json:"shipment"`
	Events      []contracts.StatusEvent `json:"events"`
	Origin      *geo.Point              `json:"origin"`
	Destination *geo.Point              `json:"destination"`
}

type TrackingService struct {
	store    store.ShipmentStore
	resolver PlaceResolver
}

func NewTrackingService(s store.ShipmentStore, resolver PlaceResolver) *TrackingService {
	return &TrackingService{store: s, resolver: resolver}
}

// Track loads the shipment, then its history and both map points in parallel.
func (t *TrackingService) Track(ctx context.Context, trackingNumber string) (Tracking, error) {
	shipment, err := t.store.GetShipmentByTrackingNumber(ctx, NormalizeTrackingNumber(trackingNumber))
	if err != nil {
		return Tracking{}, err
	}
	out := Tracking{Shipment: shipment}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events, err := t.store.ListEvents(gctx, shipment.ID)
		if err != nil {
			return err
		}
		out.Events = events
		return nil
	})
	if t.resolver != nil {
		g.Go(func() error {
			out.Origin = t.resolver.Resolve(gctx, shipment.Origin)
			return nil
		})
		g.Go(func() error {
			out.Destination = t.resolver.Resolve(gctx, shipment.Destination)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Tracking{}, err
	}
	if out.Events == nil {
		out.Events = []contracts.StatusEvent{}
	}
	return out, nil
}
