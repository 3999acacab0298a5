package models

import "github.com/shopspring/decimal"

// Trade is a closed round-trip position taken from the "Income from Sells"
// section of a Revolut statement. Dates are ISO strings (YYYY-MM-DD, day
// granularity). Amounts stay in the transaction currency; Converted carries
// the EUR restatement once the currency processor has run.
type Trade struct {
	DateAcquired  string          `json:"date_acquired"`
	DateSold      string          `json:"date_sold"`
	Symbol        string          `json:"symbol"`
	SecurityName  string          `json:"security_name"`
	ISIN          string          `json:"isin"`
	Country       string          `json:"country"`
	Quantity      decimal.Decimal `json:"quantity"`
	CostBasis     decimal.Decimal `json:"cost_basis"`
	GrossProceeds decimal.Decimal `json:"gross_proceeds"`
	GrossPnL      decimal.Decimal `json:"gross_pnl"`
	Currency      string          `json:"currency"`

	// Converted is nil until conversion succeeds for both trade dates.
	// A nil value means "conversion not attempted or incomplete", which is
	// deliberately distinct from converted-to-zero.
	Converted *ConvertedTrade `json:"converted,omitempty"`
}

// ConvertedTrade holds the EUR equivalents of a trade. Rates follow the ECB
// convention "1 EUR = rate foreign units" and are always positive.
type ConvertedTrade struct {
	RateAcquired     decimal.Decimal `json:"rate_acquired"`
	RateSold         decimal.Decimal `json:"rate_sold"`
	CostBasisEUR     decimal.Decimal `json:"cost_basis_eur"`
	GrossProceedsEUR decimal.Decimal `json:"gross_proceeds_eur"`
	GrossPnLEUR      decimal.Decimal `json:"gross_pnl_eur"`
}

// Dividend is a single dividend payment. GrossAmount is strictly positive;
// negative rows in the statement are fee reversals and never reach this type.
type Dividend struct {
	Date           string          `json:"date"`
	Symbol         string          `json:"symbol"`
	SecurityName   string          `json:"security_name"`
	ISIN           string          `json:"isin"`
	Country        string          `json:"country"`
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	WithholdingTax decimal.Decimal `json:"withholding_tax"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	Currency       string          `json:"currency"`

	Converted *ConvertedDividend `json:"converted,omitempty"`
}

// ConvertedDividend holds the EUR equivalents of a dividend.
type ConvertedDividend struct {
	Rate              decimal.Decimal `json:"rate"`
	GrossAmountEUR    decimal.Decimal `json:"gross_amount_eur"`
	WithholdingTaxEUR decimal.Decimal `json:"withholding_tax_eur"`
}

// StatementExport is the result of one parse/convert pipeline run. It is
// owned by that run: the currency processor fills conversion fields in place,
// after which the export is read-only input to the report generators.
type StatementExport struct {
	Trades    []Trade    `json:"trades"`
	Dividends []Dividend `json:"dividends"`

	// ConversionApplied is false when no record needed conversion (or the
	// processor was never invoked).
	ConversionApplied bool     `json:"conversion_applied"`
	MissingRateDates  []string `json:"missing_rate_dates,omitempty"`
	ConversionErrors  []string `json:"conversion_errors,omitempty"`
}

// GroupKey identifies the security a trade belongs to for report grouping:
// the ISIN when present, the symbol otherwise.
func (t *Trade) GroupKey() string {
	if t.ISIN != "" {
		return t.ISIN
	}
	return t.Symbol
}

// SecurityKey is the dividend counterpart of Trade.GroupKey.
func (d *Dividend) SecurityKey() string {
	if d.ISIN != "" {
		return d.ISIN
	}
	return d.Symbol
}
