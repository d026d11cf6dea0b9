package service

import (
	"context"
	"errors"
	"fmt"

	"currency-exchange-cli/internal/domain/model"
	"currency-exchange-cli/internal/domain/ports"
	"currency-exchange-cli/internal/metrics"
	"currency-exchange-cli/pkg/logger"
	"currency-exchange-cli/pkg/utils"
)

var (
	ErrNoData          = errors.New("no currency data available")
	ErrUnknownCurrency = errors.New("no such currency")
)

// User-facing messages for the failure kinds a query can end in.
const (
	MsgNoData          = "There is no data on currencies. Refresh the data."
	MsgAuthFailure     = "The API key was rejected. Enter a new API key and try again."
	MsgUnknownCurrency = "There is no such currency."
)

// ExchangeService answers conversion and listing queries from the rate cache.
// It never talks to the network itself.
type ExchangeService struct {
	cache   ports.RateCache
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewExchangeService(cache ports.RateCache, log *logger.Logger, m *metrics.Metrics) *ExchangeService {
	return &ExchangeService{
		cache:   cache,
		log:     log,
		metrics: m,
	}
}

// Convert converts amount from source to target using the table for source.
// Codes are trimmed and uppercased first.
func (s *ExchangeService) Convert(ctx context.Context, source, target string, amount float32) (*model.Conversion, error) {
	s.metrics.ConversionRequestsTotal.Inc()

	from := model.NormalizeCurrency(source)
	to := model.NormalizeCurrency(target)

	table, err := s.cache.EnsureFresh(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoData, err)
	}
	if table == nil {
		return nil, ErrNoData
	}

	rate, ok := table.Rate(to)
	if !ok {
		s.log.Info("Target currency not in table", "base", from.String(), "target", to.String())
		return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}

	return &model.Conversion{
		FromCurrency: from,
		ToCurrency:   to,
		FromAmount:   amount,
		ToAmount:     amount * rate,
		Rate:         rate,
	}, nil
}

// Exchange is Convert rendered as a message. Every failure becomes text.
func (s *ExchangeService) Exchange(ctx context.Context, source, target string, amount float32) string {
	conversion, err := s.Convert(ctx, source, target, amount)
	if err != nil {
		return FailureMessage(err)
	}
	return FormatConversion(conversion)
}

// ListRates returns every rate relative to USD, sorted by currency code,
// with the update time of the same table.
func (s *ExchangeService) ListRates(ctx context.Context) (*model.RateListing, error) {
	s.metrics.ListRequestsTotal.Inc()

	table, err := s.cache.EnsureFresh(ctx, model.USD)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoData, err)
	}
	if table == nil {
		return nil, ErrNoData
	}
	return table.Listing(), nil
}

func (s *ExchangeService) SetCredential(apiKey string) {
	s.cache.SetCredential(apiKey)
}

// FormatConversion renders a successful conversion, amounts and rate printed
// in their shortest exact form.
func FormatConversion(c *model.Conversion) string {
	return fmt.Sprintf("%s %s will be %s in %s.\nExchange rate used for the conversion: %s.",
		utils.FormatAmount(c.FromAmount),
		c.FromCurrency,
		utils.FormatAmount(c.ToAmount),
		c.ToCurrency,
		utils.FormatAmount(c.Rate),
	)
}

// FailureMessage maps a service error to what the user should read.
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, ports.ErrAuthFailure):
		return MsgAuthFailure
	case errors.Is(err, ErrUnknownCurrency):
		return MsgUnknownCurrency
	default:
		return MsgNoData
	}
}

var _ ports.ConversionService = (*ExchangeService)(nil)
