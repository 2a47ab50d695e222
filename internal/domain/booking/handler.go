package booking

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/staybook/booking-api/internal/pkg/errorhandler"
	"github.com/staybook/booking-api/internal/pkg/response"
	"github.com/staybook/booking-api/internal/pkg/validator"
)

// Handler handles booking HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates booking handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /booking
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON payload")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	resp, err := h.service.Create(r.Context(), &req)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "BOOKING_FAILED", "Booking failed", err)
		return
	}

	response.Created(w, resp)
}

// UpdatePayment handles POST /updatePayment
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req UpdatePaymentRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON payload")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	status, err := h.service.UpdatePaymentStatus(r.Context(), req.BookingID.Value, req.PaymentStatus.Value)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			response.NotFound(w, "Booking not found")
		case errors.Is(err, ErrInvalidBookingID):
			response.BadRequest(w, "Booking_ID is required")
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "PAYMENT_UPDATE_FAILED", "Payment update failed", err)
		}
		return
	}

	response.OK(w, UpdatePaymentResponse{
		BookingID:     req.BookingID.Value,
		PaymentStatus: status,
		Message:       MessagePaymentUpdated,
	})
}

// GetByID handles GET /booking/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			response.NotFound(w, "Booking not found")
		case errors.Is(err, ErrInvalidBookingID):
			response.BadRequest(w, "Booking id is required")
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load booking", err)
		}
		return
	}

	response.OK(w, BookingResponseFromEntity(b))
}
