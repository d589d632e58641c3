package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kainolt/backend/config"
	"github.com/kainolt/backend/internal/infrastructure/pdftext"
	"github.com/kainolt/backend/internal/repository"
	"github.com/kainolt/backend/internal/usecase"
)

type fakeFetcher struct {
	urls []string
	data []byte
	err  error
}

func (f *fakeFetcher) FindFlyerURLs(context.Context, string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.urls, nil
}

func (f *fakeFetcher) DownloadFlyer(context.Context, string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func newTestRouter(fetcher FlyerFetcher) (*gin.Engine, *usecase.Analyzer) {
	gin.SetMode(gin.TestMode)

	acquirer := pdftext.NewAcquirer(pdftext.PlainExtractor{}, nil, pdftext.Config{})
	analyzer := usecase.NewAnalyzer(repository.NewMemoryRepository(), acquirer, usecase.AnalyzerConfig{})
	handler := NewHandler(analyzer, fetcher)

	cfg := &config.Config{}
	cfg.Server.Environment = "test"
	cfg.Server.AllowedOrigins = []string{"*"}

	return SetupRouter(cfg, handler), analyzer
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func loadSession(t *testing.T, router *gin.Engine) {
	t.Helper()
	w := postJSON(t, router, "/api/v1/flyers/parse", gin.H{
		"retailer": "Maxima",
		"source":   "test.txt",
		"text":     "Pienas DVARO 1,39 € 0,99 €\nSūris Džiugas -30% 2,99 €\nDuona juoda 1,09 EUR",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := get(router, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Contains(t, w.Body.String(), "kainolt-backend")
}

func TestParseFlyer(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := postJSON(t, router, "/api/v1/flyers/parse", gin.H{
		"retailer": "Maxima",
		"text":     "Pienas DVARO 1,39 € 0,99 €",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestParseFlyer_MissingRetailer(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := postJSON(t, router, "/api/v1/flyers/parse", gin.H{"text": "Pienas 0,99 €"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseFlyer_UnknownRetailer(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := postJSON(t, router, "/api/v1/flyers/parse", gin.H{
		"retailer": "Tesco",
		"text":     "Pienas 0,99 €",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported retailer")
}

func TestParseFlyer_NoTextOrData(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := postJSON(t, router, "/api/v1/flyers/parse", gin.H{"retailer": "Maxima"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFetchFlyer_NotConfigured(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := postJSON(t, router, "/api/v1/flyers/fetch", gin.H{"retailer": "Maxima"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestFetchFlyer(t *testing.T) {
	fetcher := &fakeFetcher{
		urls: []string{"https://www.maxima.lt/flyers/savaite.pdf"},
		data: []byte("Pienas DVARO 1,39 € 0,99 €"),
	}
	router, _ := newTestRouter(fetcher)

	w := postJSON(t, router, "/api/v1/flyers/fetch", gin.H{"retailer": "Maxima"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "savaite.pdf")
}

func TestImportOffers(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := postJSON(t, router, "/api/v1/offers/import", gin.H{
		"rows": []gin.H{
			{"retailer": "Maxima", "product_name": "Pienas", "base_price": "1,39", "final_price": "0,99"},
			{"retailer": "Tesco", "product_name": "Pienas", "base_price": "1,00", "final_price": "0,90"},
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Imported int      `json:"imported"`
		Errors   []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Imported)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "retailer")
}

func TestImportCSV(t *testing.T) {
	router, _ := newTestRouter(nil)

	csvBody := "retailer,product_name,category,base_price,final_price,discount_pct\n" +
		"Maxima,Pienas dvaro,,1.39,0.99,\n"
	req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/import/csv", strings.NewReader(csvBody))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"imported":1`)
}

func TestBestDeals(t *testing.T) {
	router, _ := newTestRouter(nil)
	loadSession(t, router)

	w := get(router, "/api/v1/deals?top=5")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Deals []json.RawMessage `json:"deals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Deals, 2, "only promotional offers rank")
}

func TestBestDeals_EmptySession(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := get(router, "/api/v1/deals")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBestDeals_BadTopParam(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := get(router, "/api/v1/deals?top=daug")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompare(t *testing.T) {
	router, _ := newTestRouter(nil)
	loadSession(t, router)

	w := get(router, "/api/v1/compare?q=pienas")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pienas dvaro")
}

func TestCompare_MissingQuery(t *testing.T) {
	router, _ := newTestRouter(nil)
	loadSession(t, router)

	w := get(router, "/api/v1/compare")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptimizeCart(t *testing.T) {
	router, _ := newTestRouter(nil)
	loadSession(t, router)

	w := postJSON(t, router, "/api/v1/cart/optimize", gin.H{
		"requirements": []gin.H{{"category": "Pieno produktai", "quantity": 1}},
		"budget":       5.0,
		"strategy":     "max_savings",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items     []json.RawMessage `json:"items"`
		TotalCost float64           `json:"totalCost"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)
	assert.LessOrEqual(t, resp.TotalCost, 5.0)
}

func TestOptimizeCart_UnknownStrategy(t *testing.T) {
	router, _ := newTestRouter(nil)
	loadSession(t, router)

	w := postJSON(t, router, "/api/v1/cart/optimize", gin.H{
		"requirements": []gin.H{{"category": "Pieno produktai", "quantity": 1}},
		"budget":       5.0,
		"strategy":     "cheapest_friday",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShoppingList(t *testing.T) {
	router, _ := newTestRouter(nil)
	loadSession(t, router)

	w := get(router, "/api/v1/cart/list?budget=10&strategy=variety")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "items")
}

func TestShoppingList_BadBudget(t *testing.T) {
	router, _ := newTestRouter(nil)

	w := get(router, "/api/v1/cart/list?budget=daug")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummary(t *testing.T) {
	router, _ := newTestRouter(nil)
	loadSession(t, router)

	w := get(router, "/api/v1/summary")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Maxima")
}

func TestShoppingGuide(t *testing.T) {
	router, _ := newTestRouter(nil)
	loadSession(t, router)

	w := get(router, "/api/v1/guide")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "APSIPIRKIMO VADOVAS")
}

func TestCORSHeaders(t *testing.T) {
	router, _ := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/deals", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
