package services

import "context"

// RateService fetches one calendar year of ECB reference rates in a single
// request. The returned map is keyed by ISO date; values follow the ECB
// convention "1 EUR = X foreign units". Any transport, status or decode
// problem is returned as an error the caller treats as a soft, per-year
// failure, never a reason to abort resolution of other years.
type RateService interface {
	FetchYear(ctx context.Context, year int) (map[string]float64, error)
}
