package processors

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/username/fursio/src/logger"
	"github.com/username/fursio/src/models"
	"github.com/username/fursio/src/services"
	"github.com/username/fursio/src/utils"
)

const (
	// CacheKeyPrefix scopes rate cache entries; one entry per calendar year.
	CacheKeyPrefix = "ecb-rates-"

	// maxRateLookbackDays bounds the backward walk for dates without a
	// published rate (weekends, ECB holidays). Fixed at 7 in the upstream
	// policy; confirm against the authority's banking-day calendar before
	// changing.
	maxRateLookbackDays = 7
)

//go:embed data/ecb-rates-usd.json
var staticRateData []byte

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	staticRatesOnce sync.Once
	staticRates     models.RateTable
)

// loadStaticRates decodes the bundled ECB series once. It is the lowest
// priority source, layered beneath cached and freshly fetched data so that
// resolution still works with the network fully unavailable.
func loadStaticRates() models.RateTable {
	staticRatesOnce.Do(func() {
		var raw map[string]float64
		if err := json.Unmarshal(staticRateData, &raw); err != nil {
			panic("processors: invalid embedded rate table: " + err.Error())
		}
		staticRates = make(models.RateTable, len(raw))
		for date, rate := range raw {
			staticRates[date] = decimal.NewFromFloat(rate)
		}
	})
	return staticRates
}

// rateResolver resolves dates against three layered sources: a two-level
// cache (in-memory in front of the injected persistent store), the remote
// rate service, and the bundled static table.
type rateResolver struct {
	service services.RateService
	store   RateCacheStore
	memory  *cache.Cache
	ttl     time.Duration
	now     func() time.Time
}

// NewRateResolver builds a resolver. ttl applies to current-year cache
// entries only; past years never expire.
func NewRateResolver(service services.RateService, store RateCacheStore, ttl time.Duration) RateResolver {
	return &rateResolver{
		service: service,
		store:   store,
		memory:  cache.New(ttl, 2*ttl),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Resolve implements the always-succeeds contract: every requested date ends
// up either in Rates or in MissingDates, and per-year fetch failures are
// reported in Errors without aborting the other years.
func (r *rateResolver) Resolve(ctx context.Context, dates []string) models.RateResolution {
	result := models.RateResolution{
		Rates:        models.RateTable{},
		MissingDates: []string{},
		Errors:       []string{},
	}
	if len(dates) == 0 {
		return result
	}

	unique := dedupeSorted(dates)
	years := yearsOf(unique)

	combined := models.RateTable{}
	for _, year := range years {
		series := r.cachedSeries(year)
		if series == nil {
			fetched, err := r.service.FetchYear(ctx, year)
			if err != nil {
				logger.L.Warn("Rate fetch failed, falling back to static data", "year", year, "error", err)
				result.Errors = append(result.Errors, fmt.Sprintf("Napaka pri pridobivanju tečajev za leto %d: %v", year, err))
				continue
			}
			r.saveSeries(year, fetched)
			series = fetched
		}
		for date, rate := range series {
			combined[date] = decimal.NewFromFloat(rate)
		}
	}

	// Static data sits beneath everything already resolved.
	combined.Merge(loadStaticRates())

	for _, date := range unique {
		rate, ok := findRateForDate(date, combined)
		if !ok {
			result.MissingDates = append(result.MissingDates, date)
			continue
		}
		result.Rates[date] = rate
	}
	return result
}

// cachedSeries consults the in-memory layer, then the persistent store.
// Current-year entries older than the TTL are treated as absent. A
// persistent hit is promoted into memory.
func (r *rateResolver) cachedSeries(year int) map[string]float64 {
	key := CacheKeyPrefix + strconv.Itoa(year)

	if v, ok := r.memory.Get(key); ok {
		return v.(map[string]float64)
	}

	series, ok := r.store.Get(key)
	if !ok {
		return nil
	}
	if r.expired(year, series.FetchedAt) {
		return nil
	}
	r.memory.Set(key, series.Rates, r.memoryTTL(year))
	return series.Rates
}

func (r *rateResolver) saveSeries(year int, rates map[string]float64) {
	key := CacheKeyPrefix + strconv.Itoa(year)
	r.memory.Set(key, rates, r.memoryTTL(year))
	r.store.Set(key, &models.CachedRateSeries{
		Rates:     rates,
		FetchedAt: r.now().UnixMilli(),
	})
}

// expired: a past year's series is final and never expires; the current
// year's series goes stale after the configured TTL because new trading days
// keep appearing.
func (r *rateResolver) expired(year int, fetchedAtMillis int64) bool {
	if year != r.now().Year() {
		return false
	}
	fetchedAt := time.UnixMilli(fetchedAtMillis)
	return r.now().Sub(fetchedAt) > r.ttl
}

func (r *rateResolver) memoryTTL(year int) time.Duration {
	if year == r.now().Year() {
		return r.ttl
	}
	return cache.NoExpiration
}

// findRateForDate looks up the exact date first, then walks backward up to
// maxRateLookbackDays calendar days for the nearest earlier published rate.
// Non-positive table entries are invalid and skipped: they must never be
// used for division.
func findRateForDate(date string, table models.RateTable) (decimal.Decimal, bool) {
	if rate, ok := table[date]; ok && rate.IsPositive() {
		return rate, true
	}

	t, err := time.Parse(utils.ISODateFormat, date)
	if err != nil {
		return decimal.Zero, false
	}
	for i := 1; i <= maxRateLookbackDays; i++ {
		prev := t.AddDate(0, 0, -i).Format(utils.ISODateFormat)
		if rate, ok := table[prev]; ok && rate.IsPositive() {
			return rate, true
		}
	}
	return decimal.Zero, false
}

func dedupeSorted(dates []string) []string {
	seen := make(map[string]struct{}, len(dates))
	unique := make([]string, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		unique = append(unique, d)
	}
	sort.Strings(unique)
	return unique
}

func yearsOf(dates []string) []int {
	seen := map[int]struct{}{}
	var years []int
	for _, d := range dates {
		year, err := strconv.Atoi(utils.YearOf(d))
		if err != nil {
			continue // malformed date, reported missing by the lookup pass
		}
		if _, ok := seen[year]; !ok {
			seen[year] = struct{}{}
			years = append(years, year)
		}
	}
	sort.Ints(years)
	return years
}
