package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/globaledge/globaledge/services/shipment-service/internal/media"
	"github.com/globaledge/globaledge/services/shipment-service/service"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{service.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{service.ErrQuoteUnavailable, http.StatusUnprocessableEntity, "QUOTE_UNAVAILABLE"},
	{service.ErrDetailsMissing, http.StatusUnprocessableEntity, "DETAILS_MISSING"},
	{service.ErrInvalidPayment, http.StatusUnprocessableEntity, "INVALID_PAYMENT"},
	{service.ErrPaymentDeclined, http.StatusPaymentRequired, "PAYMENT_DECLINED"},
	{service.ErrDraftNotFound, http.StatusNotFound, "DRAFT_NOT_FOUND"},
	{service.ErrShipmentNotFound, http.StatusNotFound, "SHIPMENT_NOT_FOUND"},
	{service.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{service.ErrPhotoStorageDisabled, http.StatusServiceUnavailable, "PHOTO_STORAGE_DISABLED"},
	{media.ErrUploadFailed, http.StatusBadGateway, "UPLOAD_FAILED"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "TIMEOUT"},
}

// writeError maps service errors to a status. Client errors carry their
// message; anything unmapped is logged and hidden behind a generic 500.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	_ = c.Error(err)
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			msg := err.Error()
			if m.status >= http.StatusInternalServerError {
				msg = m.target.Error()
			}
			c.AbortWithStatusJSON(m.status, errorBody{Error: msg, Code: m.code})
			return
		}
	}
	logger.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: "internal error", Code: "INTERNAL"})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: msg, Code: "INVALID_INPUT"})
}
