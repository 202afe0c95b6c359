package events_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-registration/internal/events"
	"ms-registration/internal/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockStore) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func scheduledEvent() *models.Event {
	return &models.Event{
		EventID: "evt-1",
		Title:   "Gopher Summit",
		Slug:    "gopher-summit",
		Dates: []*models.EventDate{
			{EventID: "evt-1", StartDate: "2026-03-02", EndDate: "2026-03-03", Position: 0},
			{DateID: "spring", EventID: "evt-1", StartDate: "2026-04-06", EndDate: "2026-04-08", Position: 1},
		},
	}
}

func TestGetEventByID(t *testing.T) {
	store := new(MockStore)
	store.On("GetEventByID", "evt-1").Return(scheduledEvent(), nil)

	svc := events.NewService(store)
	event, err := svc.GetEventByID(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, "gopher-summit", event.Slug)
	store.AssertExpectations(t)
}

func TestGetEventByIDNotFound(t *testing.T) {
	store := new(MockStore)
	store.On("GetEventByID", "nope").Return(nil, sql.ErrNoRows)

	svc := events.NewService(store)
	_, err := svc.GetEventByID(context.Background(), "nope")
	assert.True(t, errors.Is(err, events.ErrEventNotFound))
}

func TestGetEventBySlugNotFound(t *testing.T) {
	store := new(MockStore)
	store.On("GetEventBySlug", "nope").Return(nil, sql.ErrNoRows)

	svc := events.NewService(store)
	_, err := svc.GetEventBySlug(context.Background(), "nope")
	assert.True(t, errors.Is(err, events.ErrEventNotFound))
}

func TestResolveDateRangeByID(t *testing.T) {
	date := events.ResolveDateRange(scheduledEvent(), "spring")
	require.NotNil(t, date)
	assert.Equal(t, "2026-04-06", date.StartDate)
}

func TestResolveDateRangeByPosition(t *testing.T) {
	// The first range carries no id of its own, so it answers to "0".
	date := events.ResolveDateRange(scheduledEvent(), "0")
	require.NotNil(t, date)
	assert.Equal(t, "2026-03-02", date.StartDate)
}

func TestResolveDateRangeNoMatch(t *testing.T) {
	assert.Nil(t, events.ResolveDateRange(scheduledEvent(), "winter"))
	assert.Nil(t, events.ResolveDateRange(scheduledEvent(), "5"))
	assert.Nil(t, events.ResolveDateRange(scheduledEvent(), ""))
	assert.Nil(t, events.ResolveDateRange(nil, "spring"))
}
