package observability

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Metrics bundles the shipment service's Prometheus collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	Quotes        *prometheus.CounterVec
	QuoteTotals   *prometheus.HistogramVec
	Bookings      *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
	RPCRequests   *prometheus.CounterVec
}

// NewMetrics registers against reg, defaulting to the global registry when nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	m := &Metrics{gatherer: gatherer}
	var err error

	if m.Quotes, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globaledge_quotes_total",
		Help: "Quote computations, labeled by service type and whether a quote was available.",
	}, []string{"service_type", "available"})); err != nil {
		return nil, err
	}
	if m.QuoteTotals, err = registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "globaledge_quote_total_eur",
		Help:    "Distribution of quoted totals in EUR.",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"service_type"})); err != nil {
		return nil, err
	}
	if m.Bookings, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globaledge_bookings_total",
		Help: "Booking confirmations, labeled by outcome.",
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	if m.HTTPRequests, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globaledge_http_requests_total",
		Help: "Handled HTTP requests, labeled by method, route and status code.",
	}, []string{"method", "route", "code"})); err != nil {
		return nil, err
	}
	if m.HTTPDurations, err = registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "globaledge_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"method", "route"})); err != nil {
		return nil, err
	}
	if m.RPCRequests, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globaledge_grpc_requests_total",
		Help: "Handled gRPC calls, labeled by method and status code.",
	}, []string{"method", "code"})); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveQuote records one engine call.
func (m *Metrics) ObserveQuote(serviceType string, available bool, total float64) {
	if m == nil {
		return
	}
	if serviceType == "" {
		serviceType = "unknown"
	}
	m.Quotes.WithLabelValues(serviceType, strconv.FormatBool(available)).Inc()
	if available {
		m.QuoteTotals.WithLabelValues(serviceType).Observe(total)
	}
}

// ObserveBooking records a confirmation outcome such as "confirmed" or "payment_failed".
func (m *Metrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.Bookings.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDurations.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// UnaryServerInterceptor counts unary RPCs by method and status code.
func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if m != nil && info != nil {
			method := info.FullMethod
			if i := strings.LastIndex(method, "/"); i >= 0 {
				method = method[i+1:]
			}
			m.RPCRequests.WithLabelValues(method, status.Code(err).String()).Inc()
		}
		return resp, err
	}
}

// Handler serves the registry this collector was registered against.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func registerHistogramVec(reg prometheus.Registerer, h *prometheus.HistogramVec) (*prometheus.HistogramVec, error) {
	if err := reg.Register(h); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return h, nil
}
