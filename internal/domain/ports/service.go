package ports

import (
	"context"

	"currency-exchange-cli/internal/domain/model"
)

type ConversionService interface {
	Convert(ctx context.Context, source, target string, amount float32) (*model.Conversion, error)
	Exchange(ctx context.Context, source, target string, amount float32) string
	ListRates(ctx context.Context) (*model.RateListing, error)
	SetCredential(apiKey string)
}
