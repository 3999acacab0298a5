package processors

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/username/fursio/src/models"
)

type fakeResolver struct {
	resolution models.RateResolution
	calls      int
}

func (f *fakeResolver) Resolve(ctx context.Context, dates []string) models.RateResolution {
	f.calls++
	return f.resolution
}

func usdTrade() models.Trade {
	return models.Trade{
		DateAcquired:  "2020-04-09",
		DateSold:      "2024-03-07",
		Symbol:        "NVDA",
		ISIN:          "US67066G1040",
		Quantity:      decimal.NewFromInt(4),
		CostBasis:     decimal.RequireFromString("269.84"),
		GrossProceeds: decimal.RequireFromString("3654.20"),
		GrossPnL:      decimal.RequireFromString("3384.36"),
		Currency:      "USD",
	}
}

func TestNormalizeAllEURIsUntouched(t *testing.T) {
	t.Parallel()
	resolver := &fakeResolver{}
	p := NewCurrencyProcessor(resolver)

	export := &models.StatementExport{
		Trades: []models.Trade{{
			Symbol: "SAP", DateAcquired: "2023-01-02", DateSold: "2024-02-01",
			Quantity: decimal.NewFromInt(1), Currency: "EUR",
		}},
	}
	got := p.Normalize(context.Background(), export)

	require.False(t, got.ConversionApplied)
	require.Nil(t, got.Trades[0].Converted)
	require.Zero(t, resolver.calls, "no dates to resolve means no resolver call")
}

func TestNormalizeConvertsTrade(t *testing.T) {
	t.Parallel()
	resolver := &fakeResolver{resolution: models.RateResolution{
		Rates: models.RateTable{
			"2020-04-09": decimal.RequireFromString("1.0867"),
			"2024-03-07": decimal.RequireFromString("1.0915"),
		},
	}}
	p := NewCurrencyProcessor(resolver)

	export := &models.StatementExport{Trades: []models.Trade{usdTrade()}}
	got := p.Normalize(context.Background(), export)

	require.True(t, got.ConversionApplied)
	conv := got.Trades[0].Converted
	require.NotNil(t, conv)
	require.Equal(t, "1.0867", conv.RateAcquired.String())
	require.Equal(t, "1.0915", conv.RateSold.String())
	require.Equal(t, "248.31", conv.CostBasisEUR.Round(2).String())
	require.Equal(t, "3347.87", conv.GrossProceedsEUR.Round(2).String())
	// The converted PnL is recomputed from the converted legs, so the three
	// reported figures are always mutually consistent.
	require.True(t, conv.GrossPnLEUR.Equal(conv.GrossProceedsEUR.Sub(conv.CostBasisEUR)))
}

func TestNormalizeLeavesTradeUnconvertedOnMissingRate(t *testing.T) {
	t.Parallel()
	resolver := &fakeResolver{resolution: models.RateResolution{
		Rates:        models.RateTable{"2024-03-07": decimal.RequireFromString("1.0915")},
		MissingDates: []string{"2020-04-09"},
	}}
	p := NewCurrencyProcessor(resolver)

	export := &models.StatementExport{Trades: []models.Trade{usdTrade()}}
	got := p.Normalize(context.Background(), export)

	require.True(t, got.ConversionApplied)
	require.Nil(t, got.Trades[0].Converted, "partial rates must not produce a half-converted trade")
	require.Equal(t, []string{"2020-04-09"}, got.MissingRateDates)
}

func TestNormalizeEURRecordGetsIdentityRate(t *testing.T) {
	t.Parallel()
	resolver := &fakeResolver{resolution: models.RateResolution{
		Rates: models.RateTable{"2024-01-10": decimal.RequireFromString("1.0946")},
	}}
	p := NewCurrencyProcessor(resolver)

	export := &models.StatementExport{Dividends: []models.Dividend{
		{Date: "2024-01-10", Symbol: "TSM", GrossAmount: decimal.RequireFromString("16.92"),
			WithholdingTax: decimal.RequireFromString("3.55"), Currency: "USD"},
		{Date: "2024-02-01", Symbol: "SAP", GrossAmount: decimal.RequireFromString("2.00"),
			WithholdingTax: decimal.Zero, Currency: "EUR"},
	}}
	got := p.Normalize(context.Background(), export)

	usd := got.Dividends[0].Converted
	require.NotNil(t, usd)
	require.Equal(t, "15.46", usd.GrossAmountEUR.Round(2).String())
	require.Equal(t, "3.24", usd.WithholdingTaxEUR.Round(2).String())

	eur := got.Dividends[1].Converted
	require.NotNil(t, eur)
	require.Equal(t, "1", eur.Rate.String())
	require.True(t, eur.GrossAmountEUR.Equal(decimal.RequireFromString("2.00")))
}

func TestNormalizeAttachesResolverDiagnostics(t *testing.T) {
	t.Parallel()
	resolver := &fakeResolver{resolution: models.RateResolution{
		Rates:        models.RateTable{},
		MissingDates: []string{"2024-05-01"},
		Errors:       []string{"Napaka pri pridobivanju tečajev za leto 2024: boom"},
	}}
	p := NewCurrencyProcessor(resolver)

	export := &models.StatementExport{Dividends: []models.Dividend{
		{Date: "2024-05-01", Symbol: "KO", GrossAmount: decimal.RequireFromString("1.00"), Currency: "USD"},
	}}
	got := p.Normalize(context.Background(), export)

	require.True(t, got.ConversionApplied)
	require.Nil(t, got.Dividends[0].Converted)
	require.Len(t, got.MissingRateDates, 1)
	require.Len(t, got.ConversionErrors, 1)
}
