package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"currency-exchange-cli/internal/adapter/cache"
	"currency-exchange-cli/internal/domain/model"
	"currency-exchange-cli/internal/domain/ports"
	"currency-exchange-cli/internal/metrics"
	"currency-exchange-cli/internal/service"
	"currency-exchange-cli/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	err error
}

func (s stubProvider) FetchLatestTable(ctx context.Context, apiKey string, base model.Currency) (*model.RateTable, error) {
	if s.err != nil {
		return nil, s.err
	}
	return model.NewRateTable(base, map[string]float32{"EUR": 0.94, "JPY": 130}, model.Provenance{TimeLastUpdateUnix: 1585267200}, time.Now()), nil
}

func newTestRouter(provider ports.RateProvider) (http.Handler, *metrics.Metrics) {
	log := logger.NewNop()
	m := metrics.NewMetrics()
	svc := service.NewExchangeService(cache.NewMemoryCache(provider, "key", log, m), log, m)
	return NewRouter(NewHandler(svc, log), log, m).SetupRoutes(), m
}

func doRequest(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var resp Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestRouter_Convert(t *testing.T) {
	h, m := newTestRouter(stubProvider{})

	rec, resp := doRequest(t, h, "/api/v1/convert?from=usd&to=eur&amount=100")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "USD", data["from_currency"])
	assert.Equal(t, "EUR", data["to_currency"])
	assert.InDelta(t, 94, data["to_amount"], 0.0001)
	assert.Equal(t, "100 USD will be 94 in EUR.\nExchange rate used for the conversion: 0.94.", data["message"])

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/api/v1/convert", http.MethodGet, "2xx")))
}

func TestRouter_ConvertErrors(t *testing.T) {
	testCases := []struct {
		name     string
		provider stubProvider
		target   string
		status   int
		message  string
	}{
		{
			name:   "Missing parameters",
			target: "/api/v1/convert?from=USD",
			status: http.StatusBadRequest,
		},
		{
			name:   "Invalid amount",
			target: "/api/v1/convert?from=USD&to=EUR&amount=lots",
			status: http.StatusBadRequest,
		},
		{
			name:    "Unknown currency",
			target:  "/api/v1/convert?from=USD&to=ZZZ&amount=1",
			status:  http.StatusNotFound,
			message: service.MsgUnknownCurrency,
		},
		{
			name:     "Rejected key",
			provider: stubProvider{err: fmt.Errorf("%w: status 401", ports.ErrAuthFailure)},
			target:   "/api/v1/convert?from=USD&to=EUR&amount=1",
			status:   http.StatusBadGateway,
			message:  service.MsgAuthFailure,
		},
		{
			name:     "Provider down",
			provider: stubProvider{err: fmt.Errorf("%w: status 500", ports.ErrFetchFailure)},
			target:   "/api/v1/convert?from=USD&to=EUR&amount=1",
			status:   http.StatusServiceUnavailable,
			message:  service.MsgNoData,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newTestRouter(tc.provider)

			rec, resp := doRequest(t, h, tc.target)
			assert.Equal(t, tc.status, rec.Code)
			assert.False(t, resp.Success)
			if tc.message != "" {
				assert.Equal(t, tc.message, resp.Error)
			}
		})
	}
}

func TestRouter_ListRates(t *testing.T) {
	h, _ := newTestRouter(stubProvider{})

	rec, resp := doRequest(t, h, "/api/v1/rates")
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "USD", data["base"])
	assert.Equal(t, "2020-03-27T00:00:00Z", data["last_updated"])
	rates := data["rates"].([]interface{})
	require.Len(t, rates, 2)
	assert.Equal(t, "EUR", rates[0].(map[string]interface{})["currency"])
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h, _ := newTestRouter(stubProvider{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	doRequest(t, h, "/api/v1/rates")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate_list_requests_total 1")
	assert.Contains(t, rec.Body.String(), `rate_fetches_total{outcome="success"} 1`)
}

func TestMetricsRoutes(t *testing.T) {
	m := metrics.NewMetrics()
	m.CacheHitsTotal.Inc()
	h := MetricsRoutes(m)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "rate_cache_hits_total 1")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rates", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
