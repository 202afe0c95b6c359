package registration_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-registration/internal/discount"
	"ms-registration/internal/events"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
	"ms-registration/internal/registration"
	"ms-registration/internal/utils"
)

type Handler struct {
	OrderService    *registration.OrderService
	EventService    *events.Service
	DiscountService *discount.Service
	Logger          *logger.Logger
}

func NewHandler(orderService *registration.OrderService, eventService *events.Service, discountService *discount.Service, log *logger.Logger) *Handler {
	return &Handler{
		OrderService:    orderService,
		EventService:    eventService,
		DiscountService: discountService,
		Logger:          log,
	}
}

// writeServiceError maps the service taxonomy onto HTTP statuses. The
// generic branch never leaks internal detail.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var verr registration.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.WriteError(w, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, registration.ErrOrderNotFound),
		errors.Is(err, registration.ErrEventNotFound),
		errors.Is(err, events.ErrEventNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, registration.ErrOrderNotMutable),
		errors.Is(err, registration.ErrStaleWrite),
		errors.Is(err, registration.ErrOrderNotPaid):
		utils.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.Logger.Error("API", fmt.Sprintf("internal error: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	order, err := h.OrderService.CreateOrder(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateOrder: %v", err))
		h.writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, models.CreateOrderResponse{OrderID: order.OrderID})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	order, err := h.OrderService.GetOrder(r.Context(), orderID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetOrder: %v", err))
		h.writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "orderRef")

	var patch models.OrderPatch
	dec := json.NewDecoder(r.Body)
	// Keys outside the allow-list are rejected, not silently dropped.
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	order, err := h.OrderService.UpdateOrder(r.Context(), ref, patch)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateOrder: %v", err))
		h.writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.UpdateOrderResponse{
		OrderID:   order.OrderID,
		SessionID: order.SessionID,
	})
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "orderRef")

	if err := h.OrderService.CancelOrder(r.Context(), ref); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CancelOrder: %v", err))
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpsertParticipant(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "orderRef")
	numberStr := chi.URLParam(r, "participantNumber")

	number, err := strconv.Atoi(numberStr)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "participant number must be an integer")
		return
	}

	var in models.ParticipantInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	participantID, participants, err := h.OrderService.UpsertParticipant(r.Context(), ref, number, in)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpsertParticipant: %v", err))
		h.writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.UpsertParticipantResponse{
		ParticipantID: participantID,
		Participants:  participants,
	})
}

// ValidateDiscount answers the discount lookup. Failures carry
// valid:false plus a message, at the status the failure class maps to.
func (h *Handler) ValidateDiscount(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")

	result, err := h.DiscountService.Validate(r.Context(), code)
	if err != nil {
		status := http.StatusInternalServerError
		message := "internal error"
		switch {
		case errors.Is(err, discount.ErrEmptyCode):
			status = http.StatusBadRequest
			message = err.Error()
		case errors.Is(err, discount.ErrCodeNotFound):
			status = http.StatusNotFound
			message = err.Error()
		case errors.Is(err, discount.ErrCodeExhausted):
			status = http.StatusConflict
			message = err.Error()
		case errors.Is(err, discount.ErrCodeExpired):
			status = http.StatusGone
			message = err.Error()
		default:
			h.Logger.Error("API", fmt.Sprintf("ValidateDiscount: %v", err))
		}
		utils.WriteJSON(w, status, models.DiscountResult{Valid: false, Message: message})
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.EventService.ListEvents(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.EventService.GetEventByID(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetEvent: %v", err))
		h.writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, event)
}

// GetEventBySlug serves the marketing site, which links events by their
// public slug rather than the store id.
func (h *Handler) GetEventBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	event, err := h.EventService.GetEventBySlug(r.Context(), slug)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetEventBySlug: %v", err))
		h.writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, event)
}
