package parsers

import (
	"strconv"

	"github.com/username/fursio/src/models"
	"github.com/username/fursio/src/utils"
)

// FilterByYear retains trades disposed in the given year and dividends paid
// in it. Conversion metadata passes through unchanged. The operation is pure
// and idempotent: filtering an already-filtered export is a no-op.
func FilterByYear(export *models.StatementExport, year int) *models.StatementExport {
	yearStr := strconv.Itoa(year)

	filtered := &models.StatementExport{
		Trades:            make([]models.Trade, 0, len(export.Trades)),
		Dividends:         make([]models.Dividend, 0, len(export.Dividends)),
		ConversionApplied: export.ConversionApplied,
		MissingRateDates:  export.MissingRateDates,
		ConversionErrors:  export.ConversionErrors,
	}
	for _, t := range export.Trades {
		if utils.YearOf(t.DateSold) == yearStr {
			filtered.Trades = append(filtered.Trades, t)
		}
	}
	for _, d := range export.Dividends {
		if utils.YearOf(d.Date) == yearStr {
			filtered.Dividends = append(filtered.Dividends, d)
		}
	}
	return filtered
}
