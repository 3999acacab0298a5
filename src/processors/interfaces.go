package processors

import (
	"context"

	"github.com/username/fursio/src/models"
)

// RateCacheStore is the persistence seam of the rate resolver: a plain
// get/set key-value store holding one fetched rate series per calendar year.
// Implementations must treat their own failures as misses.
type RateCacheStore interface {
	Get(key string) (*models.CachedRateSeries, bool)
	Set(key string, series *models.CachedRateSeries)
}

// RateResolver turns a set of ISO calendar dates into verified conversion
// rates. Resolution never fails outright: the result always carries
// best-effort rates plus explicit missing-date and error lists.
type RateResolver interface {
	Resolve(ctx context.Context, dates []string) models.RateResolution
}

// CurrencyProcessor restates an export's foreign-currency amounts in EUR.
type CurrencyProcessor interface {
	Normalize(ctx context.Context, export *models.StatementExport) *models.StatementExport
}
