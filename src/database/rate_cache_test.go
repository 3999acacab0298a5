package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/username/fursio/src/logger"
	"github.com/username/fursio/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

// Tests share the package-level DB handle, so they run sequentially.
func newTestStore(t *testing.T) *SQLRateCacheStore {
	t.Helper()
	InitDB(filepath.Join(t.TempDir(), "rates.db"))
	t.Cleanup(func() { DB.Close() })
	return NewSQLRateCacheStore(DB)
}

func TestRateCacheRoundTrip(t *testing.T) {
	store := newTestStore(t)

	in := &models.CachedRateSeries{
		Rates:     map[string]float64{"2024-03-07": 1.0915, "2024-03-08": 1.0936},
		FetchedAt: 1709800000000,
	}
	store.Set("ecb-rates-2024", in)

	out, ok := store.Get("ecb-rates-2024")
	require.True(t, ok)
	require.Equal(t, in.FetchedAt, out.FetchedAt)
	require.Equal(t, in.Rates, out.Rates)
}

func TestRateCacheMissOnAbsentKey(t *testing.T) {
	store := newTestStore(t)

	_, ok := store.Get("ecb-rates-1999")
	require.False(t, ok)
}

func TestRateCacheSetOverwrites(t *testing.T) {
	store := newTestStore(t)

	store.Set("ecb-rates-2024", &models.CachedRateSeries{
		Rates:     map[string]float64{"2024-01-02": 1.09},
		FetchedAt: 1,
	})
	store.Set("ecb-rates-2024", &models.CachedRateSeries{
		Rates:     map[string]float64{"2024-01-02": 1.0956},
		FetchedAt: 2,
	})

	out, ok := store.Get("ecb-rates-2024")
	require.True(t, ok)
	require.Equal(t, int64(2), out.FetchedAt)
	require.Equal(t, 1.0956, out.Rates["2024-01-02"])
}

func TestRateCacheCorruptEntryIsMiss(t *testing.T) {
	store := newTestStore(t)

	_, err := DB.Exec(
		`INSERT INTO rate_cache (cache_key, rates_json, fetched_at) VALUES (?, ?, ?)`,
		"ecb-rates-2023", "{not json", 1)
	require.NoError(t, err)

	_, ok := store.Get("ecb-rates-2023")
	require.False(t, ok)
}
