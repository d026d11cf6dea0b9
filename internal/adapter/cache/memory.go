package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"currency-exchange-cli/internal/domain/model"
	"currency-exchange-cli/internal/domain/ports"
	"currency-exchange-cli/internal/metrics"
	"currency-exchange-cli/pkg/logger"
)

// MemoryCache keeps a single rate table in memory. A request for another base
// replaces it wholesale; nothing expires on its own.
type MemoryCache struct {
	provider ports.RateProvider
	log      *logger.Logger
	metrics  *metrics.Metrics

	// mutex is held for the whole of EnsureFresh so two callers never fetch
	// at once and nobody observes a half-replaced table.
	mutex  sync.Mutex
	apiKey string
	table  *model.RateTable
}

func NewMemoryCache(provider ports.RateProvider, apiKey string, log *logger.Logger, m *metrics.Metrics) *MemoryCache {
	return &MemoryCache{
		provider: provider,
		apiKey:   apiKey,
		log:      log,
		metrics:  m,
	}
}

// EnsureFresh returns the table for code, fetching it only when the cached
// table has another base. The returned table is the one that was current
// while the lock was held.
func (c *MemoryCache) EnsureFresh(ctx context.Context, code model.Currency) (*model.RateTable, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.table != nil && c.table.Base() == code {
		c.log.Debug("Cache hit", "base", code.String())
		c.metrics.CacheHitsTotal.Inc()
		return c.table, nil
	}

	c.log.Debug("Cache miss", "base", code.String())
	start := time.Now()
	table, err := c.provider.FetchLatestTable(ctx, c.apiKey, code)
	c.metrics.RateFetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := metrics.OutcomeFetchFailure
		if errors.Is(err, ports.ErrAuthFailure) {
			outcome = metrics.OutcomeAuthFailure
			c.log.Warn("Rate provider rejected the API key", "base", code.String(), "error", err)
		} else {
			c.log.Error("Failed to fetch rate table", "base", code.String(), "error", err)
		}
		c.metrics.RateFetchesTotal.WithLabelValues(outcome).Inc()
		return nil, classify(err)
	}
	if table == nil || table.Base() != code {
		c.metrics.RateFetchesTotal.WithLabelValues(metrics.OutcomeFetchFailure).Inc()
		return nil, fmt.Errorf("%w: provider returned no table for %s", ports.ErrFetchFailure, code)
	}

	c.metrics.RateFetchesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	c.table = table
	c.log.Info("Rate table replaced", "base", code.String(), "count", table.Len())
	return table, nil
}

// SetCredential swaps the key used by the next fetch. The cached table stays.
func (c *MemoryCache) SetCredential(apiKey string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.apiKey = apiKey
	c.log.Info("API key replaced")
}

func (c *MemoryCache) Current() *model.RateTable {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.table
}

// classify makes sure every provider error matches one of the two failure
// sentinels, even when a provider forgot to wrap.
func classify(err error) error {
	if errors.Is(err, ports.ErrAuthFailure) || errors.Is(err, ports.ErrFetchFailure) {
		return err
	}
	return fmt.Errorf("%w: %v", ports.ErrFetchFailure, err)
}

var _ ports.RateCache = (*MemoryCache)(nil)
