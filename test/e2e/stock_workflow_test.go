//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	redis_a "github.com/sistemastock/stock-be/internal/adapters/redis_adapter"
	"github.com/sistemastock/stock-be/internal/core/services"
	"github.com/sistemastock/stock-be/internal/handlers"
	"github.com/sistemastock/stock-be/internal/handlers/middleware"
	"github.com/sistemastock/stock-be/internal/pkg/security"
	"github.com/sistemastock/stock-be/test/helpers"

	"github.com/sistemastock/stock-be/internal/adapters/db"
)

type StockE2ESuite struct {
	suite.Suite
	server    *httptest.Server
	client    *http.Client
	baseURL   string
	testDB    *helpers.TestDB
	testRedis *helpers.TestRedis
	token     string
}

func (s *StockE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"

	s.token = s.registerAndLogin("e2e-admin", "e2e-password", "admin")
}

func (s *StockE2ESuite) TearDownSuite() {
	s.server.Close()
}

func (s *StockE2ESuite) SetupTest() {
	s.testRedis.Server.FlushAll()
}

func (s *StockE2ESuite) TestCompleteStockWorkflow() {
	// 1. Create a product
	createReq := map[string]interface{}{
		"name":            "Yerba Mate E2E 1kg",
		"sku":             "E2E-YRB-001",
		"unit_of_measure": "piece",
		"cost":            "1250.50",
		"sale_price":      "1890.00",
		"category":        "dry_goods",
		"location":        "Depósito E2E",
	}

	resp := s.makeRequest("POST", "/products", createReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	s.decodeResponse(resp, &created)
	productID := created["product_id"].(string)
	s.NotEmpty(productID)

	// 2. Duplicate SKU is refused
	resp = s.makeRequest("POST", "/products", createReq)
	s.Equal(http.StatusConflict, resp.StatusCode)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	// 3. Record an inbound movement
	resp = s.makeRequest("POST", "/movements", map[string]interface{}{
		"product_id":    productID,
		"movement_type": "inbound",
		"quantity":      100,
		"order_ref":     "PO-E2E-1",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var recorded map[string]interface{}
	s.decodeResponse(resp, &recorded)
	stock := recorded["stock"].(map[string]interface{})
	s.EqualValues(100, stock["quantity"])

	// 4. Outbound below zero is allowed
	resp = s.makeRequest("POST", "/movements", map[string]interface{}{
		"product_id":    productID,
		"movement_type": "outbound",
		"quantity":      130,
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	s.decodeResponse(resp, &recorded)
	stock = recorded["stock"].(map[string]interface{})
	s.EqualValues(-30, stock["quantity"])

	// 5. Adjustment resets the absolute level
	resp = s.makeRequest("POST", "/movements", map[string]interface{}{
		"product_id":    productID,
		"movement_type": "adjustment",
		"quantity":      50,
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	s.decodeResponse(resp, &recorded)
	stock = recorded["stock"].(map[string]interface{})
	s.EqualValues(50, stock["quantity"])

	// 6. Stock snapshot reflects the projection
	resp = s.makeRequest("GET", "/stock", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var snapshot map[string]interface{}
	s.decodeResponse(resp, &snapshot)
	s.GreaterOrEqual(int(snapshot["count"].(float64)), 1)

	// 7. Patch the product; untouched fields survive
	resp = s.makeRequest("PATCH", fmt.Sprintf("/products/%s", productID), map[string]interface{}{
		"sale_price": "1990.00",
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	var updated map[string]interface{}
	s.decodeResponse(resp, &updated)
	s.Equal("Yerba Mate E2E 1kg", updated["name"])

	// 8. Movement history lists both entries with the product name
	resp = s.makeRequest("GET", "/movements", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var history map[string]interface{}
	s.decodeResponse(resp, &history)
	s.GreaterOrEqual(int(history["count"].(float64)), 3)

	// 9. Export the stock workbook
	resp = s.makeRequest("GET", "/export/stock.xlsx", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	// 10. Delete cascades movements and stock
	resp = s.makeRequest("DELETE", fmt.Sprintf("/products/%s", productID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	resp = s.makeRequest("GET", fmt.Sprintf("/products/%s", productID), nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func (s *StockE2ESuite) TestForecastWorkflow() {
	// Product with thin history yields the insufficient-data sentinel.
	resp := s.makeRequest("POST", "/products", map[string]interface{}{
		"name":       "Gaseosa E2E 2L",
		"sku":        "E2E-GAS-001",
		"cost":       "980.00",
		"sale_price": "1550.00",
		"category":   "beverages",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	s.decodeResponse(resp, &created)
	productID := created["product_id"].(string)

	resp = s.makeRequest("GET", "/forecasts", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var forecastResp map[string]interface{}
	s.decodeResponse(resp, &forecastResp)
	s.EqualValues(30, forecastResp["horizon_days"])
	forecast := s.findForecast(forecastResp, productID)
	s.Require().NotNil(forecast)
	s.Equal("insufficient data", forecast["message"])

	// Feed a week of growing sales and the sentinel disappears.
	records := make([]map[string]interface{}, 0, 7)
	for i := 7; i > 0; i-- {
		records = append(records, map[string]interface{}{
			"product_id":     productID,
			"record_date":    time.Now().AddDate(0, 0, -i).Format("2006-01-02"),
			"units_sold":     10 + (7-i)*2,
			"avg_sale_price": "1550.00",
		})
	}

	resp = s.makeRequest("POST", "/predictor-records/batch", records)
	s.Equal(http.StatusCreated, resp.StatusCode)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	resp = s.makeRequest("GET", "/forecasts", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	s.decodeResponse(resp, &forecastResp)
	forecast = s.findForecast(forecastResp, productID)
	s.Require().NotNil(forecast)
	s.Empty(forecast["message"])
	s.Equal("increasing", forecast["trend"])
	s.Greater(forecast["prediction"].(float64), float64(0))
}

func (s *StockE2ESuite) TestConcurrentMovements() {
	resp := s.makeRequest("POST", "/products", map[string]interface{}{
		"name":       "Agua E2E 2L",
		"sku":        "E2E-AGU-001",
		"cost":       "380.00",
		"sale_price": "620.00",
		"category":   "beverages",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	s.decodeResponse(resp, &created)
	productID := created["product_id"].(string)

	// Contended writes either succeed or surface the conflict status; the
	// ledger must stay consistent with whatever was accepted.
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp := s.makeRequest("POST", "/movements", map[string]interface{}{
				"product_id":    productID,
				"movement_type": "inbound",
				"quantity":      5,
			})
			defer resp.Body.Close()
			io.Copy(io.Discard, resp.Body)

			s.Contains([]int{http.StatusCreated, http.StatusConflict}, resp.StatusCode)
			if resp.StatusCode == http.StatusCreated {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.testRedis.Server.FlushAll()

	resp = s.makeRequest("GET", "/stock", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var snapshot struct {
		Stock []struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		} `json:"stock"`
	}
	s.decodeResponse(resp, &snapshot)

	for _, row := range snapshot.Stock {
		if row.ProductID == productID {
			s.Equal(accepted*5, row.Quantity)
			return
		}
	}
	s.Fail("product missing from stock snapshot")
}

func (s *StockE2ESuite) TestAuthRequired() {
	req, err := http.NewRequest("GET", s.baseURL+"/products", nil)
	s.NoError(err)

	resp, err := s.client.Do(req)
	s.NoError(err)
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

// Helper methods

func (s *StockE2ESuite) startTestServer() *httptest.Server {
	t := s.T()
	logger := helpers.TestLogger()
	database := s.testDB.Database

	cache := redis_a.NewCache(s.testRedis.Client, 5*time.Minute, logger)
	manager := redis_a.NewCacheManager(cache, logger)
	tokens := security.NewTokenManager("e2e-test-secret", time.Hour)

	catalogRepo := db.NewCatalogRepository(database, logger)
	ledgerRepo := db.NewLedgerRepository(database, logger)
	stockRepo := db.NewStockRepository(database, logger)
	predictorRepo := db.NewPredictorRepository(database, logger)
	userRepo := db.NewUserRepository(database, logger)

	catalogService := services.NewCatalogService(catalogRepo, ledgerRepo, stockRepo, database, logger)
	ledgerService := services.NewLedgerService(catalogRepo, ledgerRepo, stockRepo, database, logger)
	forecastService := services.NewForecastService(catalogRepo, predictorRepo, logger)
	authService := services.NewAuthService(userRepo, tokens, logger)

	catalogHandler := handlers.NewCatalogHandler(catalogService, cache, manager, logger)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService, cache, manager, logger)
	forecastHandler := handlers.NewForecastHandler(forecastService, cache, time.Minute, logger)
	predictorHandler := handlers.NewPredictorHandler(forecastService, manager, logger)
	authHandler := handlers.NewAuthHandler(authService, logger)
	exportHandler := handlers.NewExportHandler(ledgerService, nil, cache, logger)

	auth := middleware.Authenticate(tokens)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	mux.Handle("GET /api/v1/products", auth(http.HandlerFunc(catalogHandler.ListProducts)))
	mux.Handle("GET /api/v1/products/{id}", auth(http.HandlerFunc(catalogHandler.GetProduct)))
	mux.Handle("POST /api/v1/products", auth(http.HandlerFunc(catalogHandler.CreateProduct)))
	mux.Handle("PATCH /api/v1/products/{id}", auth(http.HandlerFunc(catalogHandler.UpdateProduct)))
	mux.Handle("DELETE /api/v1/products/{id}", auth(http.HandlerFunc(catalogHandler.DeleteProduct)))

	mux.Handle("POST /api/v1/movements", auth(http.HandlerFunc(ledgerHandler.RecordMovement)))
	mux.Handle("GET /api/v1/movements", auth(http.HandlerFunc(ledgerHandler.ListMovements)))
	mux.Handle("GET /api/v1/stock", auth(http.HandlerFunc(ledgerHandler.GetStock)))

	mux.Handle("GET /api/v1/forecasts", auth(http.HandlerFunc(forecastHandler.GetForecasts)))
	mux.Handle("POST /api/v1/predictor-records", auth(http.HandlerFunc(predictorHandler.AddRecord)))
	mux.Handle("POST /api/v1/predictor-records/batch", auth(http.HandlerFunc(predictorHandler.AddRecordBatch)))

	mux.Handle("GET /api/v1/export/stock.xlsx", auth(http.HandlerFunc(exportHandler.ExportStockExcel)))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func (s *StockE2ESuite) registerAndLogin(username, password, role string) string {
	resp := s.makeRequest("POST", "/auth/register", map[string]interface{}{
		"username": username,
		"password": password,
		"role":     role,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	resp = s.makeRequest("POST", "/auth/login", map[string]interface{}{
		"username": username,
		"password": password,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var login map[string]string
	s.decodeResponse(resp, &login)
	s.Require().NotEmpty(login["token"])
	return login["token"]
}

func (s *StockE2ESuite) findForecast(response map[string]interface{}, productID string) map[string]interface{} {
	forecasts, ok := response["forecasts"].([]interface{})
	if !ok {
		return nil
	}
	for _, f := range forecasts {
		forecast := f.(map[string]interface{})
		if forecast["product_id"] == productID {
			return forecast
		}
	}
	return nil
}

func (s *StockE2ESuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	s.NoError(err)

	return resp
}

func (s *StockE2ESuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.NoError(err)
}

func TestStockE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(StockE2ESuite))
}
