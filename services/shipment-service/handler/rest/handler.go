package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/globaledge/globaledge/pkg/quote"
	"github.com/globaledge/globaledge/services/shipment-service/service"
	"github.com/globaledge/globaledge/services/shipment-service/store"
	"github.com/globaledge/globaledge/shared/contracts"
)

// maxPhotoBytes caps parcel photo uploads.
const maxPhotoBytes = 5 << 20

type Handler struct {
	quotes    *service.QuoteService
	bookings  *service.BookingService
	shipments *service.ShipmentService
	tracking  *service.TrackingService
	logger    *zap.Logger
}

type quoteResponse struct {
	Available bool         `json:"available"`
	Quote     *quote.Quote `json:"quote"`
}

// GetQuote prices query-string input. Unparsable numbers count as zero, so
// the only outcome besides a quote is available=false.
func (h *Handler) GetQuote(c *gin.Context) {
	var in quote.Input
	if err := c.ShouldBindQuery(&in); err != nil {
		badRequest(c, "invalid query")
		return
	}
	h.respondQuote(c, in)
}

func (h *Handler) PostQuote(c *gin.Context) {
	var in quote.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "request body must be a JSON object")
		return
	}
	h.respondQuote(c, in)
}

func (h *Handler) respondQuote(c *gin.Context, in quote.Input) {
	q, ok := h.quotes.Compute(in)
	resp := quoteResponse{Available: ok}
	if ok {
		resp.Quote = &q
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateDraft(c *gin.Context) {
	var in service.DraftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "request body must be a JSON object")
		return
	}
	draft, err := h.bookings.CreateDraft(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

func (h *Handler) GetDraft(c *gin.Context) {
	draft, err := h.bookings.GetDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *Handler) UpdateDraft(c *gin.Context) {
	var in service.DraftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "request body must be a JSON object")
		return
	}
	draft, err := h.bookings.UpdateDraft(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// AttachPhoto takes a multipart "photo" field holding an image.
func (h *Handler) AttachPhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBytes+1<<10)
	fh, err := c.FormFile("photo")
	if err != nil {
		badRequest(c, "a photo file is required (max 5 MB)")
		return
	}
	if fh.Size > maxPhotoBytes {
		badRequest(c, "photo exceeds 5 MB")
		return
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		badRequest(c, "photo must be an image")
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	defer f.Close()

	draft, err := h.bookings.AttachPhoto(c.Request.Context(), c.Param("id"), f)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

type confirmRequest struct {
	Payment contracts.PaymentDetails `json:"payment"`
}

func (h *Handler) ConfirmBooking(c *gin.Context) {
	var body confirmRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "request body must be a JSON object")
		return
	}
	receipt, err := h.bookings.ConfirmBooking(c.Request.Context(), contracts.BookingRequest{
		DraftID: c.Param("id"),
		Payment: body.Payment,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func (h *Handler) GetReceipt(c *gin.Context) {
	receipt, err := h.bookings.GetReceipt(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *Handler) Track(c *gin.Context) {
	tr, err := h.tracking.Track(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tr)
}

func (h *Handler) DashboardShipments(c *gin.Context) {
	limit, offset, err := pagination(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	list, err := h.shipments.DashboardShipments(c.Request.Context(), c.Query("email"), limit, offset)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipments": list})
}

func (h *Handler) SubmitContact(c *gin.Context) {
	var msg contracts.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		badRequest(c, "request body must be a JSON object")
		return
	}
	saved, err := h.bookings.SubmitContact(c.Request.Context(), msg)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, saved)
}

func (h *Handler) ListShipments(c *gin.Context) {
	limit, offset, err := pagination(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	filter := store.ShipmentFilter{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		SenderEmail: c.Query("email"),
		Limit:       limit,
		Offset:      offset,
	}
	if raw := c.Query("status"); raw != "" {
		st, ok := contracts.ParseShipmentStatus(raw)
		if !ok {
			badRequest(c, "unknown status "+strconv.Quote(raw))
			return
		}
		filter.Status = st
	}
	list, err := h.shipments.ListShipments(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipments": list})
}

func (h *Handler) GetShipment(c *gin.Context) {
	sh, err := h.shipments.GetShipment(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sh)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"max=500"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var body statusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "status is required")
		return
	}
	st, ok := contracts.ParseShipmentStatus(body.Status)
	if !ok {
		badRequest(c, "unknown status "+strconv.Quote(body.Status))
		return
	}
	sh, err := h.shipments.UpdateStatus(c.Request.Context(), c.Param("id"), st, body.Note)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sh)
}

func pagination(c *gin.Context) (limit, offset int32, err error) {
	parse := func(name string) (int32, error) {
		raw := c.Query(name)
		if raw == "" {
			return 0, nil
		}
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || v < 0 {
			return 0, errors.New(name + " must be a non-negative integer")
		}
		return int32(v), nil
	}
	if limit, err = parse("limit"); err != nil {
		return 0, 0, err
	}
	if offset, err = parse("offset"); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}
