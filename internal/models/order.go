package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Order status values. Only draft, pending and pending_invoice orders
// accept further mutation.
const (
	StatusDraft          = "draft"
	StatusPending        = "pending"
	StatusPendingInvoice = "pending_invoice"
	StatusPaid           = "paid"
	StatusCancelled      = "cancelled"
)

func IsMutableStatus(status string) bool {
	switch status {
	case StatusDraft, StatusPending, StatusPendingInvoice:
		return true
	}
	return false
}

// Supported currencies.
const (
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
)

type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Participant is one registered attendee slot within an order.
// ParticipantID is "<orderID>-<participantNumber>" and unique per order.
type Participant struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	JobPosition   string `json:"job_position"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	OrderID   string `bun:"order_id,pk" json:"order_id"`
	SessionID string `bun:"session_id,notnull" json:"session_id"`
	Status    string `bun:"status,notnull" json:"status"`

	EventID     string `bun:"event_id,notnull" json:"event_id"`
	EventTitle  string `bun:"event_title" json:"event_title"`
	EventSlug   string `bun:"event_slug" json:"event_slug"`
	EventDateID string `bun:"event_date_id" json:"event_date_id"`
	StartDate   string `bun:"start_date" json:"start_date"`
	EndDate     string `bun:"end_date" json:"end_date"`

	Quantity    int     `bun:"quantity,notnull" json:"quantity"`
	Currency    string  `bun:"currency,notnull" json:"currency"`
	TotalAmount float64 `bun:"total_amount" json:"total_amount"`

	PaymentMethod   string `bun:"payment_method" json:"payment_method,omitempty"`
	PaymentIntentID string `bun:"payment_intent_id,nullzero" json:"payment_intent_id,omitempty"`

	CustomerEmail     string `bun:"customer_email" json:"customer_email,omitempty"`
	CustomerFirstName string `bun:"customer_first_name" json:"customer_first_name,omitempty"`
	CustomerLastName  string `bun:"customer_last_name" json:"customer_last_name,omitempty"`
	CustomerPhone     string `bun:"customer_phone" json:"customer_phone,omitempty"`
	CustomerCompany   string `bun:"customer_company" json:"customer_company,omitempty"`
	VATNumber         string `bun:"vat_number" json:"vat_number,omitempty"`
	PONumber          string `bun:"po_number" json:"po_number,omitempty"`
	Notes             string `bun:"notes" json:"notes,omitempty"`

	Address      Address       `bun:"address,type:jsonb" json:"address"`
	Participants []Participant `bun:"participants,type:jsonb" json:"participants"`

	// Version is checked and incremented on every write to reject stale
	// concurrent updates.
	Version int64 `bun:"version,notnull,default:0" json:"version"`

	CreatedAt      time.Time `bun:"created_at,notnull" json:"created_at"`
	LastActivityAt time.Time `bun:"last_activity_at,notnull" json:"last_activity_at"`
}

type CreateOrderRequest struct {
	EventID     string `json:"event_id"`
	EventDateID string `json:"event_date_id"`
	Quantity    int    `json:"quantity"`
	Email       string `json:"email,omitempty"`
}

type CreateOrderResponse struct {
	OrderID string `json:"order_id"`
}

type UpdateOrderResponse struct {
	OrderID   string `json:"order_id"`
	SessionID string `json:"session_id"`
}

// AddressPatch carries a partial address update. Nil fields keep the
// stored value; the address is merged, never replaced wholesale.
type AddressPatch struct {
	Line1      *string `json:"line1"`
	Line2      *string `json:"line2"`
	City       *string `json:"city"`
	PostalCode *string `json:"postal_code"`
	State      *string `json:"state"`
	Country    *string `json:"country"`
}

// OrderPatch is the allow-list of fields a client may change on an order.
// Handlers decode request bodies into it with unknown fields disallowed,
// so any key outside this set is rejected at the boundary.
type OrderPatch struct {
	Quantity          *int          `json:"quantity"`
	Currency          *string       `json:"currency"`
	EventDateID       *string       `json:"event_date_id"`
	StartDate         *string       `json:"start_date"`
	EndDate           *string       `json:"end_date"`
	PaymentMethod     *string       `json:"payment_method"`
	CustomerEmail     *string       `json:"customer_email"`
	CustomerFirstName *string       `json:"customer_first_name"`
	CustomerLastName  *string       `json:"customer_last_name"`
	CustomerPhone     *string       `json:"customer_phone"`
	CustomerCompany   *string       `json:"customer_company"`
	VATNumber         *string       `json:"vat_number"`
	PONumber          *string       `json:"po_number"`
	Notes             *string       `json:"notes"`
	Address           *AddressPatch `json:"address"`
	Participants      []Participant `json:"participants"`
	SessionID         *string       `json:"session_id"`
}

// Empty reports whether the patch carries no allowed field at all. Such a
// patch is rejected rather than silently persisted as a timestamp bump.
func (p OrderPatch) Empty() bool {
	return p.Quantity == nil &&
		p.Currency == nil &&
		p.EventDateID == nil &&
		p.StartDate == nil &&
		p.EndDate == nil &&
		p.PaymentMethod == nil &&
		p.CustomerEmail == nil &&
		p.CustomerFirstName == nil &&
		p.CustomerLastName == nil &&
		p.CustomerPhone == nil &&
		p.CustomerCompany == nil &&
		p.VATNumber == nil &&
		p.PONumber == nil &&
		p.Notes == nil &&
		p.Address == nil &&
		p.Participants == nil &&
		p.SessionID == nil
}

type ParticipantInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	JobPosition string `json:"job_position"`
}

type UpsertParticipantResponse struct {
	ParticipantID string        `json:"participant_id"`
	Participants  []Participant `json:"participants"`
}

// CheckinPass is a per-participant QR pass issued once an order is paid.
type CheckinPass struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	QRCodePNG     string `json:"qr_code_png"` // base64-encoded PNG
}
