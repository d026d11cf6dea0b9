package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"currency-exchange-cli/internal/domain/model"
	"currency-exchange-cli/internal/domain/ports"
	"currency-exchange-cli/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usdPayload = `{
	"result": "success",
	"documentation": "https://www.exchangerate-api.com/docs",
	"terms_of_use": "https://www.exchangerate-api.com/terms",
	"time_last_update_unix": 1585267200,
	"time_last_update_utc": "Fri, 27 Mar 2020 00:00:00 +0000",
	"time_next_update_unix": 1585353700,
	"time_next_update_utc": "Sat, 28 Mar 2020 00:00:00 +0000",
	"base_code": "USD",
	"conversion_rates": {"USD": 1, "EUR": 0.94, "JPY": 130.0},
	"extra_field": "ignored"
}`

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &gotPath
}

func TestExchangeAPI_FetchLatestTable_Success(t *testing.T) {
	srv, gotPath := newTestServer(t, http.StatusOK, usdPayload)
	fetchedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	api := NewExchangeAPI(srv.URL+"/v6/", time.Second, logger.NewNop())
	api.now = func() time.Time { return fetchedAt }

	table, err := api.FetchLatestTable(context.Background(), "secret-key", model.USD)
	require.NoError(t, err)

	assert.Equal(t, "/v6/secret-key/latest/USD", *gotPath)
	assert.Equal(t, model.USD, table.Base())
	assert.Equal(t, 3, table.Len())

	eur, ok := table.Rate("EUR")
	require.True(t, ok)
	assert.Equal(t, float32(0.94), eur)

	prov := table.Provenance()
	assert.Equal(t, "success", prov.Result)
	assert.Equal(t, "https://www.exchangerate-api.com/docs", prov.Documentation)
	assert.Equal(t, int64(1585267200), prov.TimeLastUpdateUnix)
	assert.Equal(t, "Sat, 28 Mar 2020 00:00:00 +0000", prov.TimeNextUpdateUTC)
	assert.Equal(t, fetchedAt, table.FetchedAt())
}

func TestExchangeAPI_FetchLatestTable_Failures(t *testing.T) {
	testCases := []struct {
		name          string
		status        int
		body          string
		expectedError error
	}{
		{
			name:          "Unauthorized",
			status:        http.StatusUnauthorized,
			body:          `{}`,
			expectedError: ports.ErrAuthFailure,
		},
		{
			name:          "Invalid key payload",
			status:        http.StatusForbidden,
			body:          `{"result":"error","error-type":"invalid-key"}`,
			expectedError: ports.ErrAuthFailure,
		},
		{
			name:          "Inactive account on OK status",
			status:        http.StatusOK,
			body:          `{"result":"error","error-type":"inactive-account"}`,
			expectedError: ports.ErrAuthFailure,
		},
		{
			name:          "Unsupported code on OK status",
			status:        http.StatusOK,
			body:          `{"result":"error","error-type":"unsupported-code"}`,
			expectedError: ports.ErrFetchFailure,
		},
		{
			name:          "Server error",
			status:        http.StatusInternalServerError,
			body:          `oops`,
			expectedError: ports.ErrFetchFailure,
		},
		{
			name:          "Rate limited",
			status:        http.StatusTooManyRequests,
			body:          `{"result":"error","error-type":"quota-reached"}`,
			expectedError: ports.ErrFetchFailure,
		},
		{
			name:          "Malformed body",
			status:        http.StatusOK,
			body:          `{"result": "success", "conversion_rates": [}`,
			expectedError: ports.ErrFetchFailure,
		},
		{
			name:          "Missing required field",
			status:        http.StatusOK,
			body:          `{"result":"success","base_code":"USD","conversion_rates":{"EUR":0.94}}`,
			expectedError: ports.ErrFetchFailure,
		},
		{
			name:          "Mismatched base",
			status:        http.StatusOK,
			body:          `{"result":"success","documentation":"","terms_of_use":"","time_last_update_unix":0,"time_last_update_utc":"","time_next_update_unix":0,"time_next_update_utc":"","base_code":"EUR","conversion_rates":{"USD":1.06}}`,
			expectedError: ports.ErrFetchFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tc.status, tc.body)
			api := NewExchangeAPI(srv.URL, time.Second, logger.NewNop())

			table, err := api.FetchLatestTable(context.Background(), "key", model.USD)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expectedError)
			assert.Nil(t, table)
		})
	}
}

func TestExchangeAPI_FetchLatestTable_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	api := NewExchangeAPI(baseURL, time.Second, logger.NewNop())
	_, err := api.FetchLatestTable(context.Background(), "super-secret", model.USD)

	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrFetchFailure)
	assert.NotContains(t, err.Error(), "super-secret")
}

func TestExchangeAPI_FetchLatestTable_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	api := NewExchangeAPI(srv.URL, 50*time.Millisecond, logger.NewNop())
	_, err := api.FetchLatestTable(context.Background(), "key", model.USD)

	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrFetchFailure)
}
