package ports

import (
	"context"
	"errors"

	"currency-exchange-cli/internal/domain/model"
)

var (
	// ErrAuthFailure means the provider rejected the credential.
	ErrAuthFailure = errors.New("credential rejected by rate provider")
	// ErrFetchFailure covers every other transport, status or parse failure.
	ErrFetchFailure = errors.New("failed to fetch rate table")
)

// RateProvider fetches the complete rate table for base using apiKey.
// Implementations wrap ErrAuthFailure or ErrFetchFailure on failure.
type RateProvider interface {
	FetchLatestTable(ctx context.Context, apiKey string, base model.Currency) (*model.RateTable, error)
}
