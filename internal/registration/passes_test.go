package registration_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-registration/internal/models"
	"ms-registration/internal/registration"
)

func TestCheckinPassesForPaidOrder(t *testing.T) {
	f := newFixture()
	order := draftOrder()
	order.Status = models.StatusPaid
	order.Participants = []models.Participant{
		{ParticipantID: "ord-1-1", Name: "Ada Lovelace", Email: "ada@example.com", JobPosition: "Engineer"},
		{ParticipantID: "ord-1-2", Name: "Alan Turing", Email: "alan@example.com", JobPosition: "Researcher"},
	}
	f.db.On("GetOrderByID", "ord-1").Return(order, nil)

	passes, err := f.service.CheckinPasses(context.Background(), "ord-1")

	require.NoError(t, err)
	require.Len(t, passes, 2)
	assert.Equal(t, "ord-1-1", passes[0].ParticipantID)
	assert.Equal(t, "Ada Lovelace", passes[0].Name)
	assert.Equal(t, "Alan Turing", passes[1].Name)

	// Each pass must be a decodable PNG image.
	for _, pass := range passes {
		raw, err := base64.StdEncoding.DecodeString(pass.QRCodePNG)
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(raw))
		require.NoError(t, err)
		assert.Equal(t, 256, img.Bounds().Dx())
	}
}

func TestCheckinPassesRequirePaidOrder(t *testing.T) {
	for _, status := range []string{models.StatusDraft, models.StatusPending, models.StatusPendingInvoice, models.StatusCancelled} {
		t.Run(status, func(t *testing.T) {
			f := newFixture()
			order := draftOrder()
			order.Status = status
			f.db.On("GetOrderByID", "ord-1").Return(order, nil)

			_, err := f.service.CheckinPasses(context.Background(), "ord-1")

			assert.ErrorIs(t, err, registration.ErrOrderNotPaid)
		})
	}
}

func TestCheckinPassesOrderNotFound(t *testing.T) {
	f := newFixture()
	f.db.On("GetOrderByID", "missing").Return(nil, sql.ErrNoRows)

	_, err := f.service.CheckinPasses(context.Background(), "missing")

	assert.ErrorIs(t, err, registration.ErrOrderNotFound)
}
