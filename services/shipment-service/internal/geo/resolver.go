package geo

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultLookupTimeout bounds one shared upstream lookup.
const DefaultLookupTimeout = 10 * time.Second

// Resolver memoises a Geocoder and collapses concurrent lookups of the same
// place into one call. Only hits and definitive misses are cached; transport
// failures are retried on the next request.
type Resolver struct {
	geocoder Geocoder
	logger   *zap.Logger
	group    singleflight.Group
	timeout  time.Duration
	memo     sync.Map // normalized place -> *Point (nil for a known miss)
}

func NewResolver(g Geocoder, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{geocoder: g, logger: logger, timeout: DefaultLookupTimeout}
}

// Resolve never fails: a place that cannot be resolved yields nil.
func (r *Resolver) Resolve(ctx context.Context, place string) *Point {
	key := normalize(place)
	if key == "" {
		return nil
	}
	if v, ok := r.memo.Load(key); ok {
		return copyPoint(v.(*Point))
	}

	// The shared lookup outlives any single caller, so one cancelled request
	// does not fail the others waiting on the same place.
	ch := r.group.DoChan(key, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		p, err := r.geocoder.Geocode(lctx, place)
		switch {
		case err == nil:
			pt := &p
			r.memo.Store(key, pt)
			return pt, nil
		case errors.Is(err, ErrNotFound) && lctx.Err() == nil:
			r.memo.Store(key, (*Point)(nil))
			return (*Point)(nil), nil
		default:
			return nil, err
		}
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			r.logger.Warn("geocoding failed", zap.String("place", place), zap.Error(res.Err))
			return nil
		}
		return copyPoint(res.Val.(*Point))
	case <-ctx.Done():
		return nil
	}
}

func copyPoint(p *Point) *Point {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
