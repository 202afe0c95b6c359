package registration

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEventNotFound = errors.New("event not found")

	// ErrOrderNotMutable rejects writes once an order has left the
	// draft/pending/pending_invoice set.
	ErrOrderNotMutable = errors.New("order is no longer mutable")

	// ErrStaleWrite rejects an update whose version no longer matches
	// the stored order.
	ErrStaleWrite = errors.New("order was modified concurrently")

	// ErrOrderNotPaid guards surfaces that only exist for paid orders,
	// such as check-in passes.
	ErrOrderNotPaid = errors.New("order is not paid")
)

// ValidationError carries a client-safe message for malformed or
// disallowed input. Never retried, always a 400.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string {
	return e.Msg
}
