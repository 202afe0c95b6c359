package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/webhook"

	"ms-registration/internal/models"
)

var webhookSecret string

// InitStripe configures the Stripe API key and the webhook signing
// secret.
func InitStripe(secretKey, signingSecret string) {
	stripe.Key = secretKey
	webhookSecret = signingSecret
}

// Stripe SDK calls, replaceable in tests.
var (
	retrievePaymentIntent = func(id string) (*stripe.PaymentIntent, error) {
		return paymentintent.Get(id, nil)
	}
	createPaymentIntent = func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		return paymentintent.New(params)
	}
)

// Checkout hands a finalized order to the payment processor. Card
// payments get a Stripe PaymentIntent and move to pending; invoice
// payments skip the processor and move to pending_invoice. Calling it
// again on a pending card order returns the live intent, so a buyer who
// navigated away mid-payment can resume with the same client secret.
func (s *OrderService) Checkout(ctx context.Context, orderID string, paymentMethod string) (*stripe.PaymentIntent, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.StatusDraft && order.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: status is %s", ErrOrderNotMutable, order.Status)
	}
	if !isValidAmount(order.TotalAmount) {
		return nil, ValidationError{Msg: "order total is not a finite positive amount"}
	}

	if paymentMethod == "" {
		paymentMethod = order.PaymentMethod
	}

	if strings.EqualFold(paymentMethod, "invoice") {
		// Switching to invoice after a payment intent exists is not
		// supported; the invoice path starts from draft.
		if order.Status != models.StatusDraft {
			return nil, fmt.Errorf("%w: status is %s", ErrOrderNotMutable, order.Status)
		}
		order.Status = models.StatusPendingInvoice
		order.PaymentMethod = "invoice"
		order.LastActivityAt = time.Now()
		if err := s.persistUpdate(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to move order %s to pending_invoice: %w", orderID, err)
		}
		if err := s.Kafka.PublishOrderUpdated(*order); err != nil {
			s.logger.Error("KAFKA", fmt.Sprintf("Publish error (checkout): %v", err))
		}
		s.logger.LogOrder("CHECKOUT", order.OrderID, "awaiting invoice payment")
		return nil, nil
	}

	// Reuse a live intent from an earlier checkout attempt.
	if order.PaymentIntentID != "" {
		intent, err := retrievePaymentIntent(order.PaymentIntentID)
		if err != nil {
			s.logger.Error("PAYMENT", fmt.Sprintf("Failed to retrieve payment intent %s: %v", order.PaymentIntentID, err))
		} else if intent.Status != stripe.PaymentIntentStatusCanceled && intent.Status != stripe.PaymentIntentStatusSucceeded {
			s.logger.LogOrder("CHECKOUT", order.OrderID, fmt.Sprintf("reusing payment intent %s", intent.ID))
			return intent, nil
		}
	}

	amountInCents := int64(order.TotalAmount * 100)
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(strings.ToLower(order.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("order_id", order.OrderID)

	intent, err := createPaymentIntent(params)
	if err != nil {
		s.logger.Error("PAYMENT", fmt.Sprintf("Failed to create payment intent for order %s: %v", orderID, err))
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	order.Status = models.StatusPending
	order.PaymentMethod = "card"
	order.PaymentIntentID = intent.ID
	order.LastActivityAt = time.Now()
	if err := s.persistUpdate(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to move order %s to pending: %w", orderID, err)
	}
	if err := s.Kafka.PublishOrderUpdated(*order); err != nil {
		s.logger.Error("KAFKA", fmt.Sprintf("Publish error (checkout): %v", err))
	}

	s.logger.LogOrder("CHECKOUT", order.OrderID, fmt.Sprintf("payment intent %s for %.2f %s", intent.ID, order.TotalAmount, order.Currency))
	return intent, nil
}

// WebhookError distinguishes client-safe messages from internal detail.
type WebhookError struct {
	Category      string // "configuration", "validation", "processing"
	StatusCode    int
	PublicError   string
	InternalError string
	OriginalErr   error
}

func (e *WebhookError) Error() string {
	return e.InternalError
}

// HandleStripeWebhook verifies and processes payment events from Stripe.
func (s *OrderService) HandleStripeWebhook(r *http.Request) error {
	if webhookSecret == "" {
		return &WebhookError{
			Category:      "configuration",
			StatusCode:    http.StatusInternalServerError,
			PublicError:   "Webhook processing error",
			InternalError: "Stripe webhook secret is not configured",
		}
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return &WebhookError{
			Category:      "validation",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid webhook payload",
			InternalError: fmt.Sprintf("Failed to read webhook payload: %v", err),
			OriginalErr:   err,
		}
	}

	opts := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), webhookSecret, opts)
	if err != nil {
		return &WebhookError{
			Category:      "validation",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid webhook signature",
			InternalError: fmt.Sprintf("Webhook signature verification failed: %v", err),
			OriginalErr:   err,
		}
	}

	s.logger.Info("WEBHOOK", fmt.Sprintf("Processing Stripe event: %s", event.Type))

	switch event.Type {
	case "payment_intent.succeeded":
		orderID, werr := orderIDFromEvent(event)
		if werr != nil {
			return werr
		}
		if err := s.MarkOrderPaid(r.Context(), orderID); err != nil {
			return &WebhookError{
				Category:      "processing",
				StatusCode:    http.StatusInternalServerError,
				PublicError:   "Failed to process payment",
				InternalError: fmt.Sprintf("Failed to mark order %s paid: %v", orderID, err),
				OriginalErr:   err,
			}
		}

	case "payment_intent.payment_failed":
		orderID, werr := orderIDFromEvent(event)
		if werr != nil {
			return werr
		}
		if err := s.CancelOrder(r.Context(), orderID); err != nil {
			return &WebhookError{
				Category:      "processing",
				StatusCode:    http.StatusInternalServerError,
				PublicError:   "Failed to process payment failure",
				InternalError: fmt.Sprintf("Failed to cancel order %s: %v", orderID, err),
				OriginalErr:   err,
			}
		}

	default:
		s.logger.Debug("WEBHOOK", fmt.Sprintf("Ignoring Stripe event type: %s", event.Type))
	}

	return nil
}

func orderIDFromEvent(event stripe.Event) (string, *WebhookError) {
	var paymentIntent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &paymentIntent); err != nil {
		return "", &WebhookError{
			Category:      "processing",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid event data",
			InternalError: fmt.Sprintf("Failed to unmarshal payment intent: %v", err),
			OriginalErr:   err,
		}
	}
	orderID, exists := paymentIntent.Metadata["order_id"]
	if !exists {
		return "", &WebhookError{
			Category:      "processing",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid payment intent data",
			InternalError: "Payment intent has no order_id in metadata",
		}
	}
	return orderID, nil
}
