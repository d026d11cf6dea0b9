package model

import (
	"sort"
	"time"
)

// Provenance is the metadata the rate provider sends alongside a table. It is
// carried through untouched and only surfaced on request.
type Provenance struct {
	Result             string `json:"result"`
	Documentation      string `json:"documentation"`
	TermsOfUse         string `json:"terms_of_use"`
	TimeLastUpdateUnix int64  `json:"time_last_update_unix"`
	TimeLastUpdateUTC  string `json:"time_last_update_utc"`
	TimeNextUpdateUnix int64  `json:"time_next_update_unix"`
	TimeNextUpdateUTC  string `json:"time_next_update_utc"`
}

// LastUpdated returns the provider's last update time, or the zero time when
// the provider did not send one.
func (p Provenance) LastUpdated() time.Time {
	if p.TimeLastUpdateUnix == 0 {
		return time.Time{}
	}
	return time.Unix(p.TimeLastUpdateUnix, 0).UTC()
}

// RateTable is an immutable snapshot of every rate relative to one base
// currency. The rates map is copied on construction and never handed out.
type RateTable struct {
	base       Currency
	rates      map[Currency]float32
	provenance Provenance
	fetchedAt  time.Time
}

// NewRateTable builds a table for base from rates. Keys are normalized.
func NewRateTable(base Currency, rates map[string]float32, provenance Provenance, fetchedAt time.Time) *RateTable {
	copied := make(map[Currency]float32, len(rates))
	for code, rate := range rates {
		copied[NormalizeCurrency(code)] = rate
	}
	return &RateTable{
		base:       base,
		rates:      copied,
		provenance: provenance,
		fetchedAt:  fetchedAt,
	}
}

func (t *RateTable) Base() Currency {
	return t.base
}

// Rate returns the rate for target relative to the table's base.
func (t *RateTable) Rate(target Currency) (float32, bool) {
	rate, ok := t.rates[target]
	return rate, ok
}

func (t *RateTable) Len() int {
	return len(t.rates)
}

func (t *RateTable) Provenance() Provenance {
	return t.provenance
}

// FetchedAt is the local time the table was received.
func (t *RateTable) FetchedAt() time.Time {
	return t.fetchedAt
}

// Entries returns every (code, rate) pair sorted by code. The provider sends
// an unordered mapping; sorting only makes repeated listings stable.
func (t *RateTable) Entries() []RateEntry {
	entries := make([]RateEntry, 0, len(t.rates))
	for code, rate := range t.rates {
		entries = append(entries, RateEntry{Currency: code, Rate: rate})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Currency < entries[j].Currency
	})
	return entries
}

type RateEntry struct {
	Currency Currency `json:"currency"`
	Rate     float32  `json:"rate"`
}

// RateListing is every rate of one table together with the table's base and
// upstream update time, all taken from the same snapshot.
type RateListing struct {
	Base        Currency    `json:"base"`
	LastUpdated time.Time   `json:"last_updated"`
	Rates       []RateEntry `json:"rates"`
}

// Listing snapshots the table into a RateListing.
func (t *RateTable) Listing() *RateListing {
	return &RateListing{
		Base:        t.base,
		LastUpdated: t.provenance.LastUpdated(),
		Rates:       t.Entries(),
	}
}

type Conversion struct {
	FromCurrency Currency `json:"from_currency"`
	ToCurrency   Currency `json:"to_currency"`
	FromAmount   float32  `json:"from_amount"`
	ToAmount     float32  `json:"to_amount"`
	Rate         float32  `json:"rate"`
}
