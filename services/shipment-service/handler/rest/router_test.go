package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globaledge/globaledge/services/shipment-service/internal/crypto"
	"github.com/globaledge/globaledge/services/shipment-service/internal/geo"
	"github.com/globaledge/globaledge/services/shipment-service/internal/observability"
	"github.com/globaledge/globaledge/services/shipment-service/payment"
	"github.com/globaledge/globaledge/services/shipment-service/service"
	"github.com/globaledge/globaledge/services/shipment-service/store"
	"github.com/globaledge/globaledge/shared/contracts"
	"github.com/globaledge/globaledge/shared/kafka"
)

const adminToken = "let-me-in"

type stubUploader struct{}

func (stubUploader) Upload(ctx context.Context, r io.Reader, publicID string) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	return "https://cdn.example/" + publicID + ".jpg", nil
}

type testServer struct {
	router    *gin.Engine
	shipments *store.MemoryStore
	metrics   *observability.Metrics
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hasher := crypto.NewArgon2Hasher(&crypto.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	hash, err := hasher.HashToken(context.Background(), adminToken)
	require.NoError(t, err)

	metrics, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	drafts := store.NewMemoryDraftStore()
	shipments := store.NewMemoryStore()
	events := kafka.NopPublisher{}
	steps := &service.Steps{Drafts: drafts, Shipments: shipments, Gateway: payment.NewSimulatedGateway(), Events: events}
	table, err := geo.NewTable()
	require.NoError(t, err)

	router := NewRouter(Deps{
		Quotes: service.NewQuoteService(metrics),
		Bookings: service.NewBookingService(service.BookingDeps{
			Drafts:    drafts,
			Shipments: shipments,
			Booker:    service.NewLocalBooker(steps, nil),
			Uploader:  stubUploader{},
			Events:    events,
			Metrics:   metrics,
		}),
		Shipments:       service.NewShipmentService(shipments, events, nil),
		Tracking:        service.NewTrackingService(shipments, geo.NewResolver(table, nil)),
		Hasher:          hasher,
		AdminTokenHash:  hash,
		Metrics:         metrics,
		CORSOrigins:     []string{"http://localhost:5173"},
		RateLimitPerMin: rateLimit,
		Checks: map[string]HealthCheck{
			"store": func(ctx context.Context) error { return nil },
		},
	})
	return &testServer{router: router, shipments: shipments, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

var parcelBody = map[string]interface{}{
	"serviceType": "parcel",
	"from":        "Brussels, Belgium",
	"to":          "New York, United States",
	"weightKg":    "2.5",
	"lengthCm":    40,
	"widthCm":     30,
	"heightCm":    25,
	"level":       "express",
}

func TestQuotes(t *testing.T) {
	s := newTestServer(t, 0)

	tests := []struct {
		name      string
		method    string
		path      string
		body      interface{}
		available bool
		total     float64
	}{
		{"json body", http.MethodPost, "/api/v1/quotes", parcelBody, true, 71.88},
		{"query string", http.MethodGet, "/api/v1/quotes?serviceType=parcel&from=Lagos,%20Nigeria&to=Abuja,%20Nigeria&weightKg=0,2&level=standard", nil, true, 12.59},
		{"overflowing weight", http.MethodGet, "/api/v1/quotes?serviceType=parcel&from=A,%20X&to=B,%20Y&weightKg=1e308", nil, false, 0},
		{"overflowing dimensions", http.MethodPost, "/api/v1/quotes", map[string]interface{}{
			"serviceType": "parcel", "from": "A, X", "to": "B, Y", "lengthCm": 1e120, "widthCm": 1e120, "heightCm": 1e120,
		}, false, 0},
		{"garbage numbers coerce to zero", http.MethodGet, "/api/v1/quotes?serviceType=parcel&from=A&to=B&weightKg=abc", nil, false, 0},
		{"missing destination", http.MethodPost, "/api/v1/quotes", map[string]interface{}{"serviceType": "parcel", "from": "Brussels, Belgium", "weightKg": 2}, false, 0},
		{"freight", http.MethodPost, "/api/v1/quotes", map[string]interface{}{
			"serviceType": "cargo", "from": "Brussels, Belgium", "to": "Lagos, Nigeria",
			"mode": "AIR", "pallets": "2", "weightKgPerPallet": 100, "lengthCm": 100, "widthCm": 100, "heightCm": 100,
		}, true, 1054.33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp struct {
				Available bool `json:"available"`
				Quote     *struct {
					TotalPrice float64 `json:"totalPrice"`
					Currency   string  `json:"currency"`
				} `json:"quote"`
			}
			decode(t, rec, &resp)
			assert.Equal(t, tt.available, resp.Available)
			if !tt.available {
				assert.Nil(t, resp.Quote)
				return
			}
			require.NotNil(t, resp.Quote)
			assert.Equal(t, tt.total, resp.Quote.TotalPrice)
			assert.Equal(t, "EUR", resp.Quote.Currency)
		})
	}

	rec := s.do(t, http.MethodPost, "/api/v1/quotes", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t, 0)

	rec := s.do(t, http.MethodPost, "/api/v1/drafts", map[string]interface{}{
		"input":       parcelBody,
		"sender":      map[string]string{"name": "Ada Obi", "email": "ada@example.com", "address": "Rue Neuve 1, Brussels"},
		"recipient":   map[string]string{"name": "Sam Lee", "email": "sam@example.com", "phone": "+12125550100", "address": "5th Ave 10, New York"},
		"description": "Books",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var draft contracts.BookingDraft
	decode(t, rec, &draft)
	require.NotEmpty(t, draft.ID)
	assert.Equal(t, 71.88, draft.Quote.TotalPrice)

	rec = s.do(t, http.MethodGet, "/api/v1/drafts/"+draft.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.uploadPhoto(t, draft.ID, "image/jpeg")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &draft)
	assert.Equal(t, "https://cdn.example/draft-"+draft.ID+".jpg", draft.PhotoURL)

	rec = s.uploadPhoto(t, draft.ID, "application/pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	declined := map[string]interface{}{"payment": map[string]interface{}{
		"cardholderName": "Ada Obi", "cardNumber": "4000000000000002", "expMonth": 12, "expYear": 2099, "cvc": "123",
	}}
	rec = s.do(t, http.MethodPost, "/api/v1/drafts/"+draft.ID+"/confirm", declined)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code, rec.Body.String())

	good := map[string]interface{}{"payment": map[string]interface{}{
		"cardholderName": "Ada Obi", "cardNumber": "4242 4242 4242 4242", "expMonth": 12, "expYear": 2099, "cvc": "123",
	}}
	rec = s.do(t, http.MethodPost, "/api/v1/drafts/"+draft.ID+"/confirm", good)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var receipt contracts.Receipt
	decode(t, rec, &receipt)
	assert.Regexp(t, `^GE[0-9A-F]{10}$`, receipt.TrackingNumber)
	assert.Equal(t, int64(7188), receipt.AmountCents)

	rec = s.do(t, http.MethodGet, "/api/v1/receipts/"+receipt.TrackingNumber, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/tracking/"+receipt.TrackingNumber, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tr service.Tracking
	decode(t, rec, &tr)
	assert.Len(t, tr.Events, 1)
	require.NotNil(t, tr.Origin)
	require.NotNil(t, tr.Destination)
	assert.InDelta(t, 40.71, tr.Destination.Lat, 0.01)

	rec = s.do(t, http.MethodGet, "/api/v1/dashboard/shipments?email=ada@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash struct {
		Shipments []contracts.Shipment `json:"shipments"`
	}
	decode(t, rec, &dash)
	assert.Len(t, dash.Shipments, 1)

	rec = s.do(t, http.MethodGet, "/api/v1/drafts/"+draft.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func (s *testServer) uploadPhoto(t *testing.T, draftID, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="photo"; filename="parcel.jpg"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, _ = part.Write([]byte("\xff\xd8\xff fake jpeg"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/drafts/"+draftID+"/photo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestErrorResponses(t *testing.T) {
	s := newTestServer(t, 0)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"unknown draft", http.MethodGet, "/api/v1/drafts/nope", nil, http.StatusNotFound, "DRAFT_NOT_FOUND"},
		{"unpriceable draft", http.MethodPost, "/api/v1/drafts", map[string]interface{}{"input": map[string]interface{}{"serviceType": "parcel"}}, http.StatusUnprocessableEntity, "QUOTE_UNAVAILABLE"},
		{"unknown receipt", http.MethodGet, "/api/v1/receipts/GE0000000000", nil, http.StatusNotFound, "SHIPMENT_NOT_FOUND"},
		{"dashboard without email", http.MethodGet, "/api/v1/dashboard/shipments", nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad pagination", http.MethodGet, "/api/v1/dashboard/shipments?email=a@b.co&limit=-1", nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"invalid contact", http.MethodPost, "/api/v1/contact", map[string]string{"name": "A", "email": "x", "subject": "s", "message": "m"}, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			var body errorBody
			decode(t, rec, &body)
			assert.Equal(t, tt.code, body.Code)
		})
	}

	rec := s.do(t, http.MethodPost, "/api/v1/contact", map[string]string{"name": "Ada", "email": "ada@example.com", "subject": "Hi", "message": "Hello"})
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t, 0)
	sh, err := s.shipments.CreateShipment(context.Background(), contracts.Shipment{
		TrackingNumber: "GE00000000AA",
		Origin:         "Brussels, Belgium",
		Destination:    "Paris, France",
		Sender:         contracts.Party{Email: "ada@example.com"},
		Status:         contracts.StatusPreTransit,
		CreatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	auth := []string{"Authorization", "Bearer " + adminToken}

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/admin/shipments", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/admin/shipments", nil, "Authorization", "Bearer wrong").Code)

	rec := s.do(t, http.MethodGet, "/api/v1/admin/shipments?status=pre-transit", nil, auth...)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Shipments []contracts.Shipment `json:"shipments"`
	}
	decode(t, rec, &list)
	assert.Len(t, list.Shipments, 1)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/admin/shipments?status=lost", nil, auth...).Code)

	path := "/api/v1/admin/shipments/" + sh.ID + "/status"
	rec = s.do(t, http.MethodPatch, path, map[string]string{"status": "delivered", "note": "Signed by J."}, auth...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPatch, path, map[string]string{"status": "IN_TRANSIT"}, auth...)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPatch, path, map[string]string{"note": "x"}, auth...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/admin/shipments/"+sh.ID, nil, auth...)
	require.Equal(t, http.StatusOK, rec.Code)
	var got contracts.Shipment
	decode(t, rec, &got)
	assert.Equal(t, contracts.StatusDelivered, got.Status)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, 2)
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/quotes", parcelBody).Code)
	}
	rec := s.do(t, http.MethodPost, "/api/v1/quotes", parcelBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// probes are not limited
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz", nil).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, 0)
	s.do(t, http.MethodPost, "/api/v1/quotes", parcelBody)

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `globaledge_quotes_total{available="true",service_type="parcel"} 1`)
	assert.Contains(t, rec.Body.String(), `route="/api/v1/quotes"`)

	gin.SetMode(gin.TestMode)
	r := NewRouter(Deps{Checks: map[string]HealthCheck{"db": func(context.Context) error { return errors.New("down") }}})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	out := httptest.NewRecorder()
	r.ServeHTTP(out, req)
	assert.Equal(t, http.StatusServiceUnavailable, out.Code)
	assert.Contains(t, out.Body.String(), "degraded")
}
