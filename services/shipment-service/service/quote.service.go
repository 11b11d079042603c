package service

import (
	"github.com/globaledge/globaledge/pkg/quote"
	"github.com/globaledge/globaledge/services/shipment-service/internal/observability"
)

// QuoteService fronts the rate engine for the transports and records
// what it computed.
type QuoteService struct {
	metrics *observability.Metrics
}

func NewQuoteService(metrics *observability.Metrics) *QuoteService {
	return &QuoteService{metrics: metrics}
}

// Compute never fails. ok is false when the input cannot be priced.
func (s *QuoteService) Compute(in quote.Input) (quote.Quote, bool) {
	req := in.Request()
	q, ok := quote.Compute(req)
	s.metrics.ObserveQuote(string(req.ServiceType), ok, q.TotalPrice)
	return q, ok
}
