package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"currency-exchange-cli/internal/domain/model"
	"currency-exchange-cli/internal/domain/ports"
	"currency-exchange-cli/pkg/logger"
)

// Upstream error types that mean the key itself is unusable.
var authErrorTypes = map[string]bool{
	"invalid-key":      true,
	"inactive-account": true,
}

// ExchangeAPI talks to the ExchangeRate-API v6 "latest" endpoint.
type ExchangeAPI struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
	now        func() time.Time
}

// latestResponse mirrors the v6 payload. Pointers let decode tell a missing
// field from a zero value; every field except the error type is required.
type latestResponse struct {
	Result             *string             `json:"result"`
	Documentation      *string             `json:"documentation"`
	TermsOfUse         *string             `json:"terms_of_use"`
	TimeLastUpdateUnix *int64              `json:"time_last_update_unix"`
	TimeLastUpdateUTC  *string             `json:"time_last_update_utc"`
	TimeNextUpdateUnix *int64              `json:"time_next_update_unix"`
	TimeNextUpdateUTC  *string             `json:"time_next_update_utc"`
	BaseCode           *string             `json:"base_code"`
	ConversionRates    *map[string]float32 `json:"conversion_rates"`
}

type errorResponse struct {
	Result    string `json:"result"`
	ErrorType string `json:"error-type"`
}

func NewExchangeAPI(baseURL string, timeout time.Duration, log *logger.Logger) *ExchangeAPI {
	return &ExchangeAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
		now: time.Now,
	}
}

// FetchLatestTable issues one GET <base>/<apiKey>/latest/<base currency>.
func (e *ExchangeAPI) FetchLatestTable(ctx context.Context, apiKey string, base model.Currency) (*model.RateTable, error) {
	endpoint := fmt.Sprintf("%s/%s/latest/%s", e.baseURL, url.PathEscape(apiKey), url.PathEscape(base.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ports.ErrFetchFailure, err)
	}

	e.log.Debug("Requesting rate table", "base", base.String())
	resp, err := e.httpClient.Do(req)
	if err != nil {
		// The URL carries the key, so report only the underlying cause.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%w: failed to send request: %v", ports.ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ports.ErrFetchFailure, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: API returned status %d", ports.ErrAuthFailure, resp.StatusCode)
	default:
		if errType := upstreamErrorType(body); authErrorTypes[errType] {
			return nil, fmt.Errorf("%w: API returned status %d (%s)", ports.ErrAuthFailure, resp.StatusCode, errType)
		}
		return nil, fmt.Errorf("%w: API returned non-OK status: %d", ports.ErrFetchFailure, resp.StatusCode)
	}

	if errType := upstreamErrorType(body); errType != "" {
		if authErrorTypes[errType] {
			return nil, fmt.Errorf("%w: API reported %s", ports.ErrAuthFailure, errType)
		}
		return nil, fmt.Errorf("%w: API reported %s", ports.ErrFetchFailure, errType)
	}

	var apiResp latestResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ports.ErrFetchFailure, err)
	}
	if missing := apiResp.missingFields(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: response missing fields: %s", ports.ErrFetchFailure, strings.Join(missing, ", "))
	}

	if got := model.NormalizeCurrency(*apiResp.BaseCode); got != base {
		return nil, fmt.Errorf("%w: requested base %s, got %s", ports.ErrFetchFailure, base, got)
	}

	table := model.NewRateTable(
		base,
		*apiResp.ConversionRates,
		model.Provenance{
			Result:             *apiResp.Result,
			Documentation:      *apiResp.Documentation,
			TermsOfUse:         *apiResp.TermsOfUse,
			TimeLastUpdateUnix: *apiResp.TimeLastUpdateUnix,
			TimeLastUpdateUTC:  *apiResp.TimeLastUpdateUTC,
			TimeNextUpdateUnix: *apiResp.TimeNextUpdateUnix,
			TimeNextUpdateUTC:  *apiResp.TimeNextUpdateUTC,
		},
		e.now(),
	)

	e.log.Info("Fetched rate table", "base", table.Base().String(), "count", table.Len())
	return table, nil
}

// upstreamErrorType returns the v6 "error-type" when the body is an error
// payload ({"result":"error",...}), or "" otherwise.
func upstreamErrorType(body []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return ""
	}
	if errResp.Result != "error" {
		return ""
	}
	if errResp.ErrorType == "" {
		return "unknown-error"
	}
	return errResp.ErrorType
}

func (r latestResponse) missingFields() []string {
	var missing []string
	check := func(name string, present bool) {
		if !present {
			missing = append(missing, name)
		}
	}
	check("result", r.Result != nil)
	check("documentation", r.Documentation != nil)
	check("terms_of_use", r.TermsOfUse != nil)
	check("time_last_update_unix", r.TimeLastUpdateUnix != nil)
	check("time_last_update_utc", r.TimeLastUpdateUTC != nil)
	check("time_next_update_unix", r.TimeNextUpdateUnix != nil)
	check("time_next_update_utc", r.TimeNextUpdateUTC != nil)
	check("base_code", r.BaseCode != nil)
	check("conversion_rates", r.ConversionRates != nil && *r.ConversionRates != nil)
	return missing
}

var _ ports.RateProvider = (*ExchangeAPI)(nil)
