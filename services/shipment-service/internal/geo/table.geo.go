package geo

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

//go:embed cities.csv
var citiesCSV []byte

type tableEntry struct {
	country string
	point   Point
}

// Table is the offline fallback: a fixed list of cities shipped in the binary.
type Table struct {
	byCity map[string][]tableEntry
}

// NewTable loads the embedded city list.
func NewTable() (*Table, error) {
	return ParseTable(bytes.NewReader(citiesCSV))
}

// ParseTable reads "city,country,lat,lon" rows with a header line.
func ParseTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read city table: %w", err)
	}
	t := &Table{byCity: make(map[string][]tableEntry, len(records))}
	for i, rec := range records {
		if i == 0 && strings.EqualFold(rec[0], "city") {
			continue
		}
		lat, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("city table line %d: bad latitude %q", i+1, rec[2])
		}
		lon, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("city table line %d: bad longitude %q", i+1, rec[3])
		}
		city := normalize(rec[0])
		t.byCity[city] = append(t.byCity[city], tableEntry{country: normalize(rec[1]), point: Point{Lat: lat, Lon: lon}})
	}
	return t, nil
}

// Geocode matches the first comma token as the city and, when given, the
// last token as the country.
func (t *Table) Geocode(_ context.Context, place string) (Point, error) {
	tokens := strings.Split(normalize(place), ", ")
	if len(tokens) == 0 || tokens[0] == "" {
		return Point{}, ErrNotFound
	}
	entries := t.byCity[tokens[0]]
	if len(entries) == 0 {
		return Point{}, ErrNotFound
	}
	if len(tokens) == 1 {
		return entries[0].point, nil
	}
	country := tokens[len(tokens)-1]
	for _, e := range entries {
		if e.country == country {
			return e.point, nil
		}
	}
	return Point{}, ErrNotFound
}

func (t *Table) Len() int {
	n := 0
	for _, e := range t.byCity {
		n += len(e)
	}
	return n
}
