package ports

import (
	"context"

	"currency-exchange-cli/internal/domain/model"
)

// RateCache holds the credential and at most one rate table.
type RateCache interface {
	// EnsureFresh makes the cached table's base equal code, fetching only
	// when it does not already, and returns that table. Callers must use the
	// returned table rather than Current, which another caller may have
	// replaced since. The cache is left untouched on error.
	EnsureFresh(ctx context.Context, code model.Currency) (*model.RateTable, error)
	SetCredential(apiKey string)
	Current() *model.RateTable
}
