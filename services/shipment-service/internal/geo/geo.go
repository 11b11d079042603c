// Package geo turns the free-text "City, Country" places of a shipment into
// map coordinates for the tracking page.
package geo

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("place not found")

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geocoder resolves one place. It returns ErrNotFound when the place is
// unknown to it, and any other error when the lookup itself failed.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (Point, error)
}

// Chain tries each geocoder in order and returns the first hit.
type Chain []Geocoder

func (c Chain) Geocode(ctx context.Context, place string) (Point, error) {
	var errs []error
	for _, g := range c {
		if g == nil {
			continue
		}
		p, err := g.Geocode(ctx, place)
		if err == nil {
			return p, nil
		}
		if ctx.Err() != nil {
			return Point{}, ctx.Err()
		}
		if !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return Point{}, errors.Join(errs...)
	}
	return Point{}, ErrNotFound
}

// normalize lower-cases and collapses the whitespace of a place so that
// "  brussels ,belgium" and "Brussels, Belgium" share a cache entry.
func normalize(place string) string {
	parts := strings.Split(place, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Join(strings.Fields(strings.ToLower(p)), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
