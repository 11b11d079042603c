package contracts

import (
	"testing"
	"time"

	"github.com/globaledge/globaledge/pkg/quote"
)

func TestParseShipmentStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   ShipmentStatus
		wantOK bool
	}{
		{"IN_TRANSIT", StatusInTransit, true},
		{"in-transit", StatusInTransit, true},
		{" out for delivery ", StatusOutForDelivery, true},
		{"delivered", StatusDelivered, true},
		{"lost", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseShipmentStatus(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseShipmentStatus(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range allStatuses {
		want := s == StatusDelivered || s == StatusCancelled
		if s.Terminal() != want {
			t.Errorf("%s.Terminal() = %v", s, !want)
		}
	}
}

func TestLast4(t *testing.T) {
	tests := map[string]string{
		"4242 4242 4242 4242": "4242",
		"4000-0000-0000-0002": "0002",
		"12":                  "",
		"":                    "",
	}
	for in, want := range tests {
		if got := (PaymentDetails{CardNumber: in}).Last4(); got != want {
			t.Errorf("Last4(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReceiptFromShipment(t *testing.T) {
	booked := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := Shipment{
		ID:             "id-1",
		TrackingNumber: "GE0123456789",
		ServiceType:    quote.ServiceParcel,
		Origin:         "Brussels, Belgium",
		Destination:    "London, United Kingdom",
		Quote:          quote.Quote{TotalPrice: 71.88, Currency: quote.Currency, ETAText: "24–72 hours"},
		Status:         StatusPreTransit,
		PaymentRef:     "sim_abc",
		CreatedAt:      booked,
	}
	r := ReceiptFromShipment(s)
	if r.AmountCents != 7188 || r.Currency != "EUR" || r.ETAText != "24–72 hours" {
		t.Errorf("unexpected receipt amounts: %+v", r)
	}
	if r.TrackingNumber != s.TrackingNumber || !r.BookedAt.Equal(booked) {
		t.Errorf("unexpected receipt identity: %+v", r)
	}
}
