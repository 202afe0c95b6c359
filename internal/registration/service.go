package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"ms-registration/internal/events"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
	regdb "ms-registration/internal/registration/db"
	"ms-registration/internal/utils"
)

type DBLayer interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order) error
}

type Catalog interface {
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
}

type SessionStore interface {
	Put(sessionID, orderID string) error
	Lookup(sessionID string) (string, error)
	Touch(sessionID string) error
	Drop(sessionID string) error
}

type EventPublisher interface {
	PublishOrderCreated(order models.Order) error
	PublishOrderUpdated(order models.Order) error
	PublishOrderCancelled(order models.Order) error
	PublishOrderPaid(order models.Order) error
}

type OrderService struct {
	DB       DBLayer
	Catalog  Catalog
	Sessions SessionStore
	Kafka    EventPublisher
	logger   *logger.Logger
}

func NewOrderService(db DBLayer, catalog Catalog, sessions SessionStore, kafka EventPublisher) *OrderService {
	return &OrderService{
		DB:       db,
		Catalog:  catalog,
		Sessions: sessions,
		Kafka:    kafka,
		logger:   logger.NewLogger(),
	}
}

// CreateOrder resolves the event's schedule, prices the requested seats
// and persists a fresh draft order.
func (s *OrderService) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	if req.EventID == "" {
		return nil, ValidationError{Msg: "event_id is required"}
	}
	if req.EventDateID == "" {
		return nil, ValidationError{Msg: "event_date_id is required"}
	}
	if req.Quantity < 1 {
		return nil, ValidationError{Msg: "quantity must be a positive integer"}
	}

	event, err := s.Catalog.GetEventByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, req.EventID)
		}
		return nil, fmt.Errorf("failed to load event %s: %w", req.EventID, err)
	}

	dateRange := events.ResolveDateRange(event, req.EventDateID)
	if dateRange == nil {
		return nil, ValidationError{Msg: fmt.Sprintf("event date %q not found on event %s", req.EventDateID, req.EventID)}
	}
	if dateRange.StartDate == "" || dateRange.EndDate == "" {
		return nil, ValidationError{Msg: "selected event date is missing its start or end"}
	}

	total := PriceForQuantity(dateRange.StartDate, dateRange.EndDate, req.Quantity)
	if !isValidAmount(total) {
		return nil, ValidationError{Msg: "event duration is not priceable"}
	}

	now := time.Now()
	order := &models.Order{
		OrderID:        uuid.NewString(),
		SessionID:      utils.NewSessionID(),
		Status:         models.StatusDraft,
		EventID:        event.EventID,
		EventTitle:     event.Title,
		EventSlug:      event.Slug,
		EventDateID:    req.EventDateID,
		StartDate:      dateRange.StartDate,
		EndDate:        dateRange.EndDate,
		Quantity:       req.Quantity,
		Currency:       models.CurrencyEUR,
		TotalAmount:    total,
		CustomerEmail:  req.Email,
		Participants:   []models.Participant{},
		CreatedAt:      now,
		LastActivityAt: now,
	}

	if err := s.DB.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.Sessions.Put(order.SessionID, order.OrderID); err != nil {
		s.logger.Warn("SESSION", fmt.Sprintf("Failed to index session %s: %v", order.SessionID, err))
	}
	if err := s.Kafka.PublishOrderCreated(*order); err != nil {
		s.logger.Error("KAFKA", fmt.Sprintf("Publish error (order created): %v", err))
	}

	s.logger.LogOrder("CREATE", order.OrderID, fmt.Sprintf("draft for event %s, %d seat(s), total %.2f %s",
		order.EventID, order.Quantity, order.TotalAmount, order.Currency))
	return order, nil
}

// resolveOrder accepts an order id or a session token and returns the
// stored order. The Redis session index is consulted first, the DB query
// by session_id is the fallback.
func (s *OrderService) resolveOrder(ctx context.Context, ref string) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(ctx, ref)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if orderID, lerr := s.Sessions.Lookup(ref); lerr == nil && orderID != "" {
		order, err = s.DB.GetOrderByID(ctx, orderID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	order, err = s.DB.GetOrderBySessionID(ctx, ref)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, ref)
		}
		return nil, err
	}
	return order, nil
}

// UpdateOrder applies an allow-listed patch to a mutable order. The
// address is merged field-by-field, and the total is recomputed whenever
// a pricing input (quantity, currency, dates) changes.
func (s *OrderService) UpdateOrder(ctx context.Context, ref string, patch models.OrderPatch) (*models.Order, error) {
	if patch.Empty() {
		return nil, ValidationError{Msg: "no valid fields to update"}
	}

	order, err := s.resolveOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !models.IsMutableStatus(order.Status) {
		return nil, fmt.Errorf("%w: status is %s", ErrOrderNotMutable, order.Status)
	}

	oldSessionID := order.SessionID
	repriceNeeded := false

	if patch.EventDateID != nil && *patch.EventDateID != order.EventDateID {
		event, err := s.Catalog.GetEventByID(ctx, order.EventID)
		if err != nil {
			return nil, fmt.Errorf("failed to load event %s: %w", order.EventID, err)
		}
		dateRange := events.ResolveDateRange(event, *patch.EventDateID)
		if dateRange == nil {
			return nil, ValidationError{Msg: fmt.Sprintf("event date %q not found on event %s", *patch.EventDateID, order.EventID)}
		}
		order.EventDateID = *patch.EventDateID
		order.StartDate = dateRange.StartDate
		order.EndDate = dateRange.EndDate
		repriceNeeded = true
	}
	if patch.StartDate != nil {
		order.StartDate = *patch.StartDate
		repriceNeeded = true
	}
	if patch.EndDate != nil {
		order.EndDate = *patch.EndDate
		repriceNeeded = true
	}
	if patch.Quantity != nil {
		if *patch.Quantity < 1 {
			return nil, ValidationError{Msg: "quantity must be a positive integer"}
		}
		order.Quantity = *patch.Quantity
		repriceNeeded = true
	}
	if patch.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*patch.Currency))
		if currency != models.CurrencyEUR && currency != models.CurrencyUSD {
			return nil, ValidationError{Msg: fmt.Sprintf("unsupported currency %q", *patch.Currency)}
		}
		order.Currency = currency
		repriceNeeded = true
	}

	if patch.PaymentMethod != nil {
		order.PaymentMethod = *patch.PaymentMethod
	}
	if patch.CustomerEmail != nil {
		order.CustomerEmail = *patch.CustomerEmail
	}
	if patch.CustomerFirstName != nil {
		order.CustomerFirstName = *patch.CustomerFirstName
	}
	if patch.CustomerLastName != nil {
		order.CustomerLastName = *patch.CustomerLastName
	}
	if patch.CustomerPhone != nil {
		order.CustomerPhone = *patch.CustomerPhone
	}
	if patch.CustomerCompany != nil {
		order.CustomerCompany = *patch.CustomerCompany
	}
	if patch.VATNumber != nil {
		order.VATNumber = *patch.VATNumber
	}
	if patch.PONumber != nil {
		order.PONumber = *patch.PONumber
	}
	if patch.Notes != nil {
		order.Notes = *patch.Notes
	}
	if patch.Address != nil {
		mergeAddress(&order.Address, patch.Address)
	}
	if patch.Participants != nil {
		order.Participants = patch.Participants
	}
	if patch.SessionID != nil && *patch.SessionID != "" {
		order.SessionID = *patch.SessionID
	}

	if repriceNeeded {
		total := PriceForQuantity(order.StartDate, order.EndDate, order.Quantity)
		if !isValidAmount(total) {
			return nil, ValidationError{Msg: "event duration is not priceable"}
		}
		order.TotalAmount = total
	}

	order.LastActivityAt = time.Now()
	if err := s.persistUpdate(ctx, order); err != nil {
		return nil, err
	}

	if order.SessionID != oldSessionID {
		if err := s.Sessions.Drop(oldSessionID); err != nil {
			s.logger.Warn("SESSION", fmt.Sprintf("Failed to drop session %s: %v", oldSessionID, err))
		}
		if err := s.Sessions.Put(order.SessionID, order.OrderID); err != nil {
			s.logger.Warn("SESSION", fmt.Sprintf("Failed to index session %s: %v", order.SessionID, err))
		}
	} else if err := s.Sessions.Touch(order.SessionID); err != nil {
		s.logger.Warn("SESSION", fmt.Sprintf("Failed to refresh session %s: %v", order.SessionID, err))
	}

	if err := s.Kafka.PublishOrderUpdated(*order); err != nil {
		s.logger.Error("KAFKA", fmt.Sprintf("Publish error (order updated): %v", err))
	}

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		return nil, err
	}
	return order, nil
}

// CancelOrder moves any mutable order to cancelled and drops its session
// index entry.
func (s *OrderService) CancelOrder(ctx context.Context, ref string) error {
	order, err := s.resolveOrder(ctx, ref)
	if err != nil {
		return err
	}
	if !models.IsMutableStatus(order.Status) {
		return fmt.Errorf("%w: status is %s", ErrOrderNotMutable, order.Status)
	}

	order.Status = models.StatusCancelled
	order.LastActivityAt = time.Now()
	if err := s.persistUpdate(ctx, order); err != nil {
		return fmt.Errorf("failed to cancel order %s: %w", order.OrderID, err)
	}

	if err := s.Sessions.Drop(order.SessionID); err != nil {
		s.logger.Warn("SESSION", fmt.Sprintf("Failed to drop session %s: %v", order.SessionID, err))
	}
	if err := s.Kafka.PublishOrderCancelled(*order); err != nil {
		s.logger.Error("KAFKA", fmt.Sprintf("Publish error (order cancelled): %v", err))
	}

	s.logger.LogOrder("CANCEL", order.OrderID, "order cancelled")
	return nil
}

// MarkOrderPaid finalizes a pending order after the payment processor
// confirms. Already-paid orders are a no-op so webhook retries stay safe.
func (s *OrderService) MarkOrderPaid(ctx context.Context, orderID string) error {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == models.StatusPaid {
		return nil
	}
	if order.Status != models.StatusPending && order.Status != models.StatusPendingInvoice {
		return fmt.Errorf("%w: status is %s", ErrOrderNotMutable, order.Status)
	}

	order.Status = models.StatusPaid
	order.LastActivityAt = time.Now()
	if err := s.persistUpdate(ctx, order); err != nil {
		return fmt.Errorf("failed to mark order %s paid: %w", orderID, err)
	}

	if err := s.Sessions.Drop(order.SessionID); err != nil {
		s.logger.Warn("SESSION", fmt.Sprintf("Failed to drop session %s: %v", order.SessionID, err))
	}
	if err := s.Kafka.PublishOrderPaid(*order); err != nil {
		s.logger.Error("KAFKA", fmt.Sprintf("Publish error (order paid): %v", err))
	}

	s.logger.LogOrder("PAID", order.OrderID, "payment confirmed")
	return nil
}

// persistUpdate maps the storage layer's version-guard rejection onto the
// service taxonomy.
func (s *OrderService) persistUpdate(ctx context.Context, order *models.Order) error {
	if err := s.DB.UpdateOrder(ctx, order); err != nil {
		if errors.Is(err, regdb.ErrStaleOrder) {
			return fmt.Errorf("%w: order %s", ErrStaleWrite, order.OrderID)
		}
		return err
	}
	return nil
}

func mergeAddress(dst *models.Address, patch *models.AddressPatch) {
	if patch.Line1 != nil {
		dst.Line1 = *patch.Line1
	}
	if patch.Line2 != nil {
		dst.Line2 = *patch.Line2
	}
	if patch.City != nil {
		dst.City = *patch.City
	}
	if patch.PostalCode != nil {
		dst.PostalCode = *patch.PostalCode
	}
	if patch.State != nil {
		dst.State = *patch.State
	}
	if patch.Country != nil {
		dst.Country = *patch.Country
	}
}

func isValidAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
