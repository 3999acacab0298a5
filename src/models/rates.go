package models

import "github.com/shopspring/decimal"

// RateTable maps an ISO calendar date (YYYY-MM-DD) to the ECB reference rate
// for that day, quoted as "1 EUR = X foreign units". Converting a foreign
// amount to EUR is therefore amount / rate. Entries are only ever added,
// never overwritten once cached for a past year.
type RateTable map[string]decimal.Decimal

// Merge copies entries from other into the table without overwriting
// existing dates, so higher-priority sources win when layered first.
func (rt RateTable) Merge(other RateTable) {
	for date, rate := range other {
		if _, ok := rt[date]; !ok {
			rt[date] = rate
		}
	}
}

// RateResolution is the always-returned, best-effort outcome of resolving a
// set of dates. MissingDates lists requested dates with no usable rate even
// after backward fallback; Errors carries non-fatal fetch diagnostics.
type RateResolution struct {
	Rates        RateTable `json:"rates"`
	MissingDates []string  `json:"missing_dates"`
	Errors       []string  `json:"errors"`
}

// Complete reports whether every requested date resolved to a rate.
func (r RateResolution) Complete() bool {
	return len(r.MissingDates) == 0
}

// CachedRateSeries is the persisted form of one calendar year of rates:
// the raw date→rate map plus the wall-clock instant it was fetched, used to
// expire current-year entries.
type CachedRateSeries struct {
	Rates     map[string]float64 `json:"rates"`
	FetchedAt int64              `json:"fetchedAt"` // unix milliseconds
}
