package registration_api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-registration/internal/discount"
	"ms-registration/internal/models"
	"ms-registration/internal/registration_api"
)

type MockDiscountStore struct {
	mock.Mock
}

func (m *MockDiscountStore) GetActiveByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DiscountCode), args.Error(1)
}

func discountHandler(store *MockDiscountStore) *registration_api.Handler {
	return registration_api.NewHandler(nil, nil, discount.NewService(store), nil)
}

func TestValidateDiscountOK(t *testing.T) {
	store := new(MockDiscountStore)
	store.On("GetActiveByCode", "EARLYBIRD").Return(&models.DiscountCode{
		Code:   "EARLYBIRD",
		Active: true,
		Type:   models.DiscountPercentage,
		Value:  15,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/discounts/validate?code=EARLYBIRD", nil)
	rec := httptest.NewRecorder()
	discountHandler(store).ValidateDiscount(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result models.DiscountResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Valid)
	assert.Equal(t, models.DiscountPercentage, result.Type)
	assert.EqualValues(t, 15, result.Value)
}

func TestValidateDiscountMissingCode(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/discounts/validate", nil)
	rec := httptest.NewRecorder()
	discountHandler(new(MockDiscountStore)).ValidateDiscount(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var result models.DiscountResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Message)
}

func TestValidateDiscountUnknownCode(t *testing.T) {
	store := new(MockDiscountStore)
	store.On("GetActiveByCode", "NOPE").Return(nil, sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/api/discounts/validate?code=NOPE", nil)
	rec := httptest.NewRecorder()
	discountHandler(store).ValidateDiscount(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var result models.DiscountResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Valid)
}

func TestValidateDiscountExpiredCode(t *testing.T) {
	store := new(MockDiscountStore)
	store.On("GetActiveByCode", "OLD").Return(&models.DiscountCode{
		Code:      "OLD",
		Active:    true,
		ExpiresAt: time.Now().Add(-time.Hour),
		Type:      models.DiscountFlat,
		Value:     100,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/discounts/validate?code=OLD", nil)
	rec := httptest.NewRecorder()
	discountHandler(store).ValidateDiscount(rec, req)

	require.Equal(t, http.StatusGone, rec.Code)
	var result models.DiscountResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Valid)
}

func TestValidateDiscountExhaustedCode(t *testing.T) {
	store := new(MockDiscountStore)
	store.On("GetActiveByCode", "GONE").Return(&models.DiscountCode{
		Code:         "GONE",
		Active:       true,
		LimitedUsage: true,
		UsesLeft:     0,
		Type:         models.DiscountPercentage,
		Value:        10,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/discounts/validate?code=GONE", nil)
	rec := httptest.NewRecorder()
	discountHandler(store).ValidateDiscount(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var result models.DiscountResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Valid)
}

func TestUpdateOrderRejectsUnknownFields(t *testing.T) {
	h := registration_api.NewHandler(nil, nil, nil, nil)

	body := `{"quantity": 2, "total_price": 1}`
	req := httptest.NewRequest(http.MethodPatch, "/api/orders/ord-1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.UpdateOrder(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
