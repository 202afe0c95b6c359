package registration

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"ms-registration/internal/models"
)

// Syntactic local@domain.tld check; deliverability is not our problem.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UpsertParticipant attaches seat data to an order. One record per seat
// index: a second call with the same number field-merges into the
// existing entry instead of appending.
func (s *OrderService) UpsertParticipant(ctx context.Context, ref string, participantNumber int, in models.ParticipantInput) (string, []models.Participant, error) {
	if participantNumber < 1 {
		return "", nil, ValidationError{Msg: "participant number must be a positive integer"}
	}
	if strings.TrimSpace(in.Name) == "" {
		return "", nil, ValidationError{Msg: "participant name is required"}
	}
	if strings.TrimSpace(in.JobPosition) == "" {
		return "", nil, ValidationError{Msg: "participant job position is required"}
	}
	if !emailPattern.MatchString(in.Email) {
		return "", nil, ValidationError{Msg: fmt.Sprintf("invalid participant email %q", in.Email)}
	}

	order, err := s.resolveOrder(ctx, ref)
	if err != nil {
		return "", nil, err
	}
	if !models.IsMutableStatus(order.Status) {
		return "", nil, ValidationError{Msg: fmt.Sprintf("order %s can no longer be modified (status %s)", order.OrderID, order.Status)}
	}

	participantID := fmt.Sprintf("%s-%d", order.OrderID, participantNumber)

	found := false
	for i := range order.Participants {
		if order.Participants[i].ParticipantID != participantID {
			continue
		}
		if in.Name != "" {
			order.Participants[i].Name = in.Name
		}
		if in.Email != "" {
			order.Participants[i].Email = in.Email
		}
		if in.JobPosition != "" {
			order.Participants[i].JobPosition = in.JobPosition
		}
		found = true
		break
	}
	if !found {
		order.Participants = append(order.Participants, models.Participant{
			ParticipantID: participantID,
			Name:          in.Name,
			Email:         in.Email,
			JobPosition:   in.JobPosition,
		})
	}

	order.LastActivityAt = time.Now()
	if err := s.persistUpdate(ctx, order); err != nil {
		return "", nil, err
	}

	if err := s.Sessions.Touch(order.SessionID); err != nil {
		s.logger.Warn("SESSION", fmt.Sprintf("Failed to refresh session %s: %v", order.SessionID, err))
	}
	if err := s.Kafka.PublishOrderUpdated(*order); err != nil {
		s.logger.Error("KAFKA", fmt.Sprintf("Publish error (participant upsert): %v", err))
	}

	s.logger.LogOrder("PARTICIPANT", order.OrderID, fmt.Sprintf("seat %d upserted (%s)", participantNumber, participantID))
	return participantID, order.Participants, nil
}
