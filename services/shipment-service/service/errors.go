package service

import (
	"errors"

	"github.com/globaledge/globaledge/services/shipment-service/store"
)

// Sentinel errors returned by the services. Transports map them to status
// codes; anything else is an internal error.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrQuoteUnavailable     = errors.New("no quote is available for this shipment")
	ErrDetailsMissing       = errors.New("sender and recipient details are required before payment")
	ErrPaymentDeclined      = errors.New("payment was declined")
	ErrInvalidPayment       = errors.New("invalid payment details")
	ErrPhotoStorageDisabled = errors.New("photo storage is not configured")

	ErrDraftNotFound     = store.ErrDraftNotFound
	ErrShipmentNotFound  = store.ErrShipmentNotFound
	ErrInvalidTransition = store.ErrInvalidTransition
)
