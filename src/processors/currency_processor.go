package processors

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/username/fursio/src/logger"
	"github.com/username/fursio/src/models"
)

// ReportingCurrency is the currency the tax authority requires amounts in.
const ReportingCurrency = "EUR"

// currencyProcessor restates foreign-currency trade and dividend amounts in
// EUR. It is pure apart from the one batched call into the rate resolver.
type currencyProcessor struct {
	resolver RateResolver
}

func NewCurrencyProcessor(resolver RateResolver) CurrencyProcessor {
	return &currencyProcessor{resolver: resolver}
}

// Normalize fills the Converted fields of every record it can and attaches
// the resolver's diagnostics to the export. Records whose dates could not be
// resolved keep Converted == nil, meaning conversion incomplete, not zero.
func (p *currencyProcessor) Normalize(ctx context.Context, export *models.StatementExport) *models.StatementExport {
	dates := conversionDates(export)
	if len(dates) == 0 {
		export.ConversionApplied = false
		return export
	}

	resolution := p.resolver.Resolve(ctx, dates)

	for i := range export.Trades {
		convertTrade(&export.Trades[i], resolution.Rates)
	}
	for i := range export.Dividends {
		convertDividend(&export.Dividends[i], resolution.Rates)
	}

	export.ConversionApplied = true
	export.MissingRateDates = resolution.MissingDates
	export.ConversionErrors = resolution.Errors

	if !resolution.Complete() {
		logger.L.Warn("Currency conversion incomplete",
			"missingDates", len(resolution.MissingDates),
			"errors", len(resolution.Errors))
	}
	return export
}

// conversionDates collects every date that belongs to a record not already
// in the reporting currency.
func conversionDates(export *models.StatementExport) []string {
	var dates []string
	for _, t := range export.Trades {
		if t.Currency == ReportingCurrency {
			continue
		}
		dates = append(dates, t.DateAcquired, t.DateSold)
	}
	for _, d := range export.Dividends {
		if d.Currency == ReportingCurrency {
			continue
		}
		dates = append(dates, d.Date)
	}
	return dates
}

func convertTrade(t *models.Trade, rates models.RateTable) {
	if t.Currency == ReportingCurrency {
		// Identity conversion: native values restated under rate 1 so the
		// generators see a uniform shape.
		t.Converted = &models.ConvertedTrade{
			RateAcquired:     decimal.New(1, 0),
			RateSold:         decimal.New(1, 0),
			CostBasisEUR:     t.CostBasis,
			GrossProceedsEUR: t.GrossProceeds,
			GrossPnLEUR:      t.GrossPnL,
		}
		return
	}

	rateAcquired, okAcquired := rates[t.DateAcquired]
	rateSold, okSold := rates[t.DateSold]
	if !okAcquired || !okSold {
		return // conversion incomplete for this trade
	}

	costBasisEUR := t.CostBasis.Div(rateAcquired)
	grossProceedsEUR := t.GrossProceeds.Div(rateSold)
	t.Converted = &models.ConvertedTrade{
		RateAcquired:     rateAcquired,
		RateSold:         rateSold,
		CostBasisEUR:     costBasisEUR,
		GrossProceedsEUR: grossProceedsEUR,
		// Recomputed from the converted legs rather than converting the
		// native PnL, so the reported gain always equals the difference of
		// the reported components.
		GrossPnLEUR: grossProceedsEUR.Sub(costBasisEUR),
	}
}

func convertDividend(d *models.Dividend, rates models.RateTable) {
	if d.Currency == ReportingCurrency {
		d.Converted = &models.ConvertedDividend{
			Rate:              decimal.New(1, 0),
			GrossAmountEUR:    d.GrossAmount,
			WithholdingTaxEUR: d.WithholdingTax,
		}
		return
	}

	rate, ok := rates[d.Date]
	if !ok {
		return
	}
	d.Converted = &models.ConvertedDividend{
		Rate:              rate,
		GrossAmountEUR:    d.GrossAmount.Div(rate),
		WithholdingTaxEUR: d.WithholdingTax.Div(rate),
	}
}
