package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/globaledge/globaledge/pkg/quote"
	"github.com/globaledge/globaledge/services/shipment-service/internal/media"
	"github.com/globaledge/globaledge/services/shipment-service/internal/observability"
	"github.com/globaledge/globaledge/services/shipment-service/store"
	"github.com/globaledge/globaledge/shared/contracts"
	"github.com/globaledge/globaledge/shared/kafka"
)

// DefaultDraftTTL is how long an untouched draft survives.
const DefaultDraftTTL = 2 * time.Hour

// DraftInput is what the booking pages send when creating or updating a draft.
type DraftInput struct {
	Input       quote.Input      `json:"input"`
	Sender      *contracts.Party `json:"sender,omitempty"`
	Recipient   *contracts.Party `json:"recipient,omitempty"`
	Description string           `json:"description,omitempty"`
}

// BookingDeps wires a BookingService. Uploader, Events and Metrics are optional.
type BookingDeps struct {
	Drafts    store.DraftStore
	Shipments store.ShipmentStore
	Booker    Booker
	Uploader  media.Uploader
	Events    kafka.Publisher
	Metrics   *observability.Metrics
	Logger    *zap.Logger
	DraftTTL  time.Duration
	Now       func() time.Time
}

// BookingService owns the customer side of a booking: drafts, payment
// confirmation, receipts and the contact form.
type BookingService struct {
	drafts    store.DraftStore
	shipments store.ShipmentStore
	booker    Booker
	quotes    *QuoteService
	uploader  media.Uploader
	events    kafka.Publisher
	metrics   *observability.Metrics
	logger    *zap.Logger
	validate  *validator.Validate
	draftTTL  time.Duration
	now       func() time.Time
}

func NewBookingService(d BookingDeps) *BookingService {
	s := &BookingService{
		drafts:    d.Drafts,
		shipments: d.Shipments,
		booker:    d.Booker,
		quotes:    NewQuoteService(d.Metrics),
		uploader:  d.Uploader,
		events:    d.Events,
		metrics:   d.Metrics,
		logger:    d.Logger,
		validate:  validator.New(),
		draftTTL:  d.DraftTTL,
		now:       d.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.events == nil {
		s.events = kafka.NopPublisher{Logger: s.logger}
	}
	if s.draftTTL <= 0 {
		s.draftTTL = DefaultDraftTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CreateDraft prices the input and stores a new draft.
func (s *BookingService) CreateDraft(ctx context.Context, in DraftInput) (contracts.BookingDraft, error) {
	if err := s.validateParties(in); err != nil {
		return contracts.BookingDraft{}, err
	}
	q, ok := s.quotes.Compute(in.Input)
	if !ok {
		return contracts.BookingDraft{}, ErrQuoteUnavailable
	}
	now := s.now().UTC()
	draft := contracts.BookingDraft{
		ID:          uuid.NewString(),
		Input:       in.Input,
		Quote:       &q,
		Sender:      in.Sender,
		Recipient:   in.Recipient,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(s.draftTTL),
	}
	if err := s.drafts.SaveDraft(ctx, draft); err != nil {
		return contracts.BookingDraft{}, fmt.Errorf("failed to save draft: %w", err)
	}
	return draft, nil
}

// UpdateDraft replaces the input, reprices it and renews the expiry. Parties
// and description are only replaced when supplied.
func (s *BookingService) UpdateDraft(ctx context.Context, id string, in DraftInput) (contracts.BookingDraft, error) {
	if err := s.validateParties(in); err != nil {
		return contracts.BookingDraft{}, err
	}
	draft, err := s.drafts.GetDraft(ctx, id)
	if err != nil {
		return contracts.BookingDraft{}, err
	}
	q, ok := s.quotes.Compute(in.Input)
	if !ok {
		return contracts.BookingDraft{}, ErrQuoteUnavailable
	}
	draft.Input = in.Input
	draft.Quote = &q
	if in.Sender != nil {
		draft.Sender = in.Sender
	}
	if in.Recipient != nil {
		draft.Recipient = in.Recipient
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		draft.Description = d
	}
	return s.touch(ctx, draft)
}

func (s *BookingService) GetDraft(ctx context.Context, id string) (contracts.BookingDraft, error) {
	return s.drafts.GetDraft(ctx, id)
}

// AttachPhoto uploads a parcel photo and records its URL on the draft.
func (s *BookingService) AttachPhoto(ctx context.Context, id string, photo io.Reader) (contracts.BookingDraft, error) {
	if s.uploader == nil {
		return contracts.BookingDraft{}, ErrPhotoStorageDisabled
	}
	draft, err := s.drafts.GetDraft(ctx, id)
	if err != nil {
		return contracts.BookingDraft{}, err
	}
	url, err := s.uploader.Upload(ctx, photo, "draft-"+draft.ID)
	if err != nil {
		return contracts.BookingDraft{}, err
	}
	draft.PhotoURL = url
	return s.touch(ctx, draft)
}

// ConfirmBooking charges the customer and books the shipment.
func (s *BookingService) ConfirmBooking(ctx context.Context, req contracts.BookingRequest) (contracts.Receipt, error) {
	if err := s.validate.Struct(req.Payment); err != nil {
		s.metrics.ObserveBooking("invalid_payment")
		return contracts.Receipt{}, fmt.Errorf("%w: %s", ErrInvalidPayment, err.Error())
	}
	shipment, err := s.booker.Book(ctx, req)
	if err != nil {
		s.metrics.ObserveBooking(bookingOutcome(err))
		return contracts.Receipt{}, err
	}
	s.metrics.ObserveBooking("confirmed")
	s.logger.Info("shipment booked",
		zap.String("shipment_id", shipment.ID),
		zap.String("tracking_number", shipment.TrackingNumber),
		zap.Float64("total_eur", shipment.Quote.TotalPrice))
	return contracts.ReceiptFromShipment(shipment), nil
}

// GetReceipt rebuilds the receipt of a booked shipment.
func (s *BookingService) GetReceipt(ctx context.Context, trackingNumber string) (contracts.Receipt, error) {
	shipment, err := s.shipments.GetShipmentByTrackingNumber(ctx, NormalizeTrackingNumber(trackingNumber))
	if err != nil {
		return contracts.Receipt{}, err
	}
	return contracts.ReceiptFromShipment(shipment), nil
}

// SubmitContact validates a contact-form message and publishes it.
func (s *BookingService) SubmitContact(ctx context.Context, msg contracts.ContactMessage) (contracts.ContactMessage, error) {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.Message = strings.TrimSpace(msg.Message)
	if err := s.validate.Struct(msg); err != nil {
		return contracts.ContactMessage{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	msg.SubmittedAt = s.now().UTC()
	event := contracts.NewEvent(contracts.EventContactSubmitted, msg, msg.SubmittedAt)
	if err := s.events.Publish(ctx, strings.ToLower(msg.Email), event); err != nil {
		return contracts.ContactMessage{}, fmt.Errorf("failed to publish contact message: %w", err)
	}
	return msg, nil
}

func (s *BookingService) touch(ctx context.Context, draft contracts.BookingDraft) (contracts.BookingDraft, error) {
	now := s.now().UTC()
	draft.UpdatedAt = now
	draft.ExpiresAt = now.Add(s.draftTTL)
	if err := s.drafts.SaveDraft(ctx, draft); err != nil {
		return contracts.BookingDraft{}, fmt.Errorf("failed to save draft: %w", err)
	}
	return draft, nil
}

func (s *BookingService) validateParties(in DraftInput) error {
	for _, p := range []*contracts.Party{in.Sender, in.Recipient} {
		if p == nil {
			continue
		}
		if err := s.validate.Struct(p); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
		}
	}
	return nil
}

func bookingOutcome(err error) string {
	switch {
	case errors.Is(err, ErrPaymentDeclined):
		return "payment_declined"
	case errors.Is(err, ErrInvalidPayment):
		return "invalid_payment"
	case errors.Is(err, ErrDraftNotFound):
		return "draft_not_found"
	case errors.Is(err, ErrQuoteUnavailable), errors.Is(err, ErrDetailsMissing):
		return "rejected"
	default:
		return "error"
	}
}
