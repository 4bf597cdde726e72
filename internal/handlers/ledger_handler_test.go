// internal/handlers/ledger_handler_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sistemastock/stock-be/internal/core/domain"
	"github.com/sistemastock/stock-be/internal/handlers"
	"github.com/sistemastock/stock-be/test/helpers"
	"github.com/sistemastock/stock-be/test/mocks"
)

func TestLedgerHandler_RecordMovement(t *testing.T) {
	productID := uuid.New()

	tests := []struct {
		name           string
		body           interface{}
		setupMocks     func(*mocks.MockLedgerService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name: "successfully_records_inbound_movement",
			body: handlers.RecordMovementRequest{
				ProductID:    productID.String(),
				MovementType: "inbound",
				Quantity:     25,
				OrderRef:     "PO-1042",
			},
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					Record(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ interface{}, mov *domain.Movement) (*domain.CurrentStock, error) {
						assert.Equal(t, productID, mov.ProductID)
						assert.Equal(t, domain.MovementInbound, mov.MovementType)
						assert.Equal(t, 25, mov.Quantity)
						return &domain.CurrentStock{
							ProductID:          productID,
							Quantity:           25,
							TotalInventoryCost: decimal.NewFromInt(31250),
							LastUpdated:        time.Now(),
						}, nil
					})
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body []byte) {
				var response struct {
					Movement domain.Movement     `json:"movement"`
					Stock    domain.CurrentStock `json:"stock"`
				}
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, 25, response.Stock.Quantity)
				assert.Equal(t, productID, response.Movement.ProductID)
			},
		},
		{
			name: "outbound_may_overdraw_stock",
			body: handlers.RecordMovementRequest{
				ProductID:    productID.String(),
				MovementType: "outbound",
				Quantity:     100,
			},
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					Record(gomock.Any(), gomock.Any()).
					Return(&domain.CurrentStock{
						ProductID: productID,
						Quantity:  -75,
					}, nil)
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body []byte) {
				var response struct {
					Stock domain.CurrentStock `json:"stock"`
				}
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, -75, response.Stock.Quantity)
			},
		},
		{
			name: "unknown_product",
			body: handlers.RecordMovementRequest{
				ProductID:    uuid.New().String(),
				MovementType: "inbound",
				Quantity:     5,
			},
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					Record(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrUnknownProduct)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "contended_stock_row",
			body: handlers.RecordMovementRequest{
				ProductID:    productID.String(),
				MovementType: "adjustment",
				Quantity:     50,
			},
			setupMocks: func(m *mocks.MockLedgerService) {
				m.EXPECT().
					Record(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrConcurrentUpdate)
			},
			expectedStatus: http.StatusConflict,
			validateBody: func(t *testing.T, body []byte) {
				var response map[string]string
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "Stock row is contended, please retry", response["error"])
			},
		},
		{
			name: "invalid_movement_type",
			body: handlers.RecordMovementRequest{
				ProductID:    productID.String(),
				MovementType: "teleport",
				Quantity:     5,
			},
			setupMocks:     func(m *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "zero_quantity",
			body: handlers.RecordMovementRequest{
				ProductID:    productID.String(),
				MovementType: "inbound",
				Quantity:     0,
			},
			setupMocks:     func(m *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "negative_quantity",
			body: handlers.RecordMovementRequest{
				ProductID:    productID.String(),
				MovementType: "outbound",
				Quantity:     -3,
			},
			setupMocks:     func(m *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "product_id_not_uuid",
			body: handlers.RecordMovementRequest{
				ProductID:    "42",
				MovementType: "inbound",
				Quantity:     5,
			},
			setupMocks:     func(m *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed_json",
			body:           "{broken",
			setupMocks:     func(m *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockLedgerService(ctrl)
			cache, manager := newTestCache(t)
			handler := handlers.NewLedgerHandler(mockService, cache, manager, helpers.TestLogger())

			tt.setupMocks(mockService)

			var bodyBytes []byte
			if s, ok := tt.body.(string); ok {
				bodyBytes = []byte(s)
			} else {
				var err error
				bodyBytes, err = json.Marshal(tt.body)
				require.NoError(t, err)
			}

			req := httptest.NewRequest("POST", "/api/v1/movements", bytes.NewReader(bodyBytes))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.RecordMovement(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestLedgerHandler_ListMovements(t *testing.T) {
	product := helpers.CreateTestProduct()
	movements := []domain.MovementWithProduct{
		{
			Movement:    *helpers.CreateTestMovement(product.ProductID),
			ProductName: product.Name,
		},
		{
			Movement: *helpers.CreateTestMovement(product.ProductID, func(m *domain.Movement) {
				m.MovementType = domain.MovementOutbound
				m.Quantity = 4
			}),
			ProductName: product.Name,
		},
	}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockLedgerService(ctrl)
	cache, manager := newTestCache(t)
	handler := handlers.NewLedgerHandler(mockService, cache, manager, helpers.TestLogger())

	mockService.EXPECT().
		History(gomock.Any()).
		Return(movements, nil)

	req := httptest.NewRequest("GET", "/api/v1/movements", nil)
	w := httptest.NewRecorder()

	handler.ListMovements(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Movements []domain.MovementWithProduct `json:"movements"`
		Count     int                          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, product.Name, response.Movements[0].ProductName)
}

func TestLedgerHandler_GetStock(t *testing.T) {
	product := helpers.CreateTestProduct()
	snapshot := []domain.StockRow{
		{
			CurrentStock: domain.CurrentStock{
				ProductID:          product.ProductID,
				Quantity:           12,
				TotalInventoryCost: product.Cost.Mul(decimal.NewFromInt(12)),
				LastUpdated:        time.Now(),
			},
			ProductName: product.Name,
			SKU:         product.SKU,
			UnitCost:    product.Cost,
		},
	}

	t.Run("returns_snapshot", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockService := mocks.NewMockLedgerService(ctrl)
		cache, manager := newTestCache(t)
		handler := handlers.NewLedgerHandler(mockService, cache, manager, helpers.TestLogger())

		mockService.EXPECT().
			Snapshot(gomock.Any()).
			Return(snapshot, nil)

		req := httptest.NewRequest("GET", "/api/v1/stock", nil)
		w := httptest.NewRecorder()

		handler.GetStock(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Stock []domain.StockRow `json:"stock"`
			Count int               `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Equal(t, 1, response.Count)
		assert.Equal(t, product.SKU, response.Stock[0].SKU)
		assert.Equal(t, 12, response.Stock[0].Quantity)
	})

	t.Run("serves_second_read_from_cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockService := mocks.NewMockLedgerService(ctrl)
		cache, manager := newTestCache(t)
		handler := handlers.NewLedgerHandler(mockService, cache, manager, helpers.TestLogger())

		mockService.EXPECT().
			Snapshot(gomock.Any()).
			Return(snapshot, nil).
			Times(1)

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest("GET", "/api/v1/stock", nil)
			w := httptest.NewRecorder()
			handler.GetStock(w, req)
			require.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("service_error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockService := mocks.NewMockLedgerService(ctrl)
		cache, manager := newTestCache(t)
		handler := handlers.NewLedgerHandler(mockService, cache, manager, helpers.TestLogger())

		mockService.EXPECT().
			Snapshot(gomock.Any()).
			Return(nil, errors.New("connection refused"))

		req := httptest.NewRequest("GET", "/api/v1/stock", nil)
		w := httptest.NewRecorder()

		handler.GetStock(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
