package registration

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/skip2/go-qrcode"

	"ms-registration/internal/models"
)

type passPayload struct {
	OrderID       string `json:"order_id"`
	ParticipantID string `json:"participant_id"`
	EventID       string `json:"event_id"`
}

// CheckinPasses issues one QR pass per registered participant of a paid
// order. The QR encodes a JSON payload the on-site check-in app scans.
func (s *OrderService) CheckinPasses(ctx context.Context, orderID string) ([]models.CheckinPass, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusPaid {
		return nil, fmt.Errorf("%w: status is %s", ErrOrderNotPaid, order.Status)
	}

	passes := make([]models.CheckinPass, 0, len(order.Participants))
	for _, p := range order.Participants {
		payload, err := json.Marshal(passPayload{
			OrderID:       order.OrderID,
			ParticipantID: p.ParticipantID,
			EventID:       order.EventID,
		})
		if err != nil {
			return nil, err
		}
		png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("failed to encode pass for %s: %w", p.ParticipantID, err)
		}
		passes = append(passes, models.CheckinPass{
			ParticipantID: p.ParticipantID,
			Name:          p.Name,
			QRCodePNG:     base64.StdEncoding.EncodeToString(png),
		})
	}
	return passes, nil
}
