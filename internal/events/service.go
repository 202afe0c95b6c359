package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"ms-registration/internal/models"
)

var ErrEventNotFound = errors.New("event not found")

type Store interface {
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
}

// Service exposes read-only catalog lookups. Events are owned by the
// content layer; nothing here writes.
type Service struct {
	DB Store
}

func NewService(db Store) *Service {
	return &Service{DB: db}
}

func (s *Service) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, id)
		}
		return nil, err
	}
	return event, nil
}

func (s *Service) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	event, err := s.DB.GetEventBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, slug)
		}
		return nil, err
	}
	return event, nil
}

func (s *Service) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.DB.ListEvents(ctx)
}

// ResolveDateRange matches a date-range reference against an event's
// schedule. Ranges with an explicit id match on it; ranges without one
// fall back to their position rendered as a decimal string. Returns nil
// when nothing matches.
func ResolveDateRange(event *models.Event, dateID string) *models.EventDate {
	if event == nil || dateID == "" {
		return nil
	}
	for i, d := range event.Dates {
		ref := d.DateID
		if ref == "" {
			ref = strconv.Itoa(i)
		}
		if ref == dateID {
			return d
		}
	}
	return nil
}
