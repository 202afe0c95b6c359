package registration_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-registration/internal/registration"
	"ms-registration/internal/utils"
)

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type checkoutResponse struct {
	OrderID         string `json:"order_id"`
	Status          string `json:"status"`
	ClientSecret    string `json:"client_secret,omitempty"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
}

// Checkout hands the order to the payment processor. Card checkouts
// return the Stripe client secret the browser completes payment with.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req checkoutRequest
	if r.Body != nil {
		// An empty body means the order's stored payment method decides.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	intent, err := h.OrderService.Checkout(r.Context(), orderID, req.PaymentMethod)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Checkout: %v", err))
		h.writeServiceError(w, err)
		return
	}

	resp := checkoutResponse{OrderID: orderID}
	if intent != nil {
		resp.Status = "pending"
		resp.ClientSecret = intent.ClientSecret
		resp.PaymentIntentID = intent.ID
	} else {
		resp.Status = "pending_invoice"
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// StripeWebhook receives payment events from Stripe.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	if err := h.OrderService.HandleStripeWebhook(r); err != nil {
		h.Logger.Error("API", fmt.Sprintf("StripeWebhook: %v", err))

		var webhookErr *registration.WebhookError
		if errors.As(err, &webhookErr) {
			http.Error(w, webhookErr.PublicError, webhookErr.StatusCode)
			return
		}
		http.Error(w, "Webhook processing error", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// CheckinPasses returns per-participant QR passes for a paid order.
func (h *Handler) CheckinPasses(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	passes, err := h.OrderService.CheckinPasses(r.Context(), orderID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CheckinPasses: %v", err))
		h.writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, passes)
}
