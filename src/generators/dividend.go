package generators

import (
	"fmt"
	"sort"
	"strings"

	"github.com/username/fursio/src/models"
	"github.com/username/fursio/src/processors"
	"github.com/username/fursio/src/utils"
)

// dividendIncomeType is the eDavki income classification code for dividends.
const dividendIncomeType = "1230"

// dividendRow pairs a dividend with its disambiguating sequence index.
// Seq is 0 for the first dividend of a (date, security) pair, rendered as an
// empty field, and 2, 3, ... for later ones, because the output schema has no
// other multiplicity key for same-day payments of one security.
type dividendRow struct {
	div models.Dividend
	seq int
}

// prepareDividendRows drops non-positive amounts (callers may feed exports
// the parser never saw), sorts by date ascending and assigns sequence
// indices in a single scan after the final sort.
func prepareDividendRows(dividends []models.Dividend) []dividendRow {
	kept := make([]models.Dividend, 0, len(dividends))
	for _, d := range dividends {
		if d.GrossAmount.IsPositive() {
			kept = append(kept, d)
		}
	}
	sort.SliceStable(kept, func(a, b int) bool {
		return kept[a].Date < kept[b].Date
	})

	counts := map[string]int{}
	rows := make([]dividendRow, 0, len(kept))
	for _, d := range kept {
		pair := d.Date + "|" + d.SecurityKey()
		counts[pair]++
		seq := 0
		if counts[pair] > 1 {
			seq = counts[pair]
		}
		rows = append(rows, dividendRow{div: d, seq: seq})
	}
	return rows
}

// payerCountry resolves the alpha-2 country for a dividend, preferring the
// statement's country column and falling back to the ISIN prefix.
func payerCountry(d models.Dividend) string {
	if code := utils.NormalizeCountryCode(d.Country); code != "" {
		return code
	}
	return utils.CountryFromISIN(d.ISIN)
}

// grossValue returns the reported gross amount: the EUR equivalent when
// conversion succeeded, the native amount otherwise.
func grossValue(d models.Dividend) string {
	if d.Converted != nil {
		return formatAmount(d.Converted.GrossAmountEUR)
	}
	return formatAmount(d.GrossAmount)
}

// withholdingValue returns the foreign-tax field. Dividends already paid in
// the reporting currency emit an empty field, not "0.00": the schema treats
// empty (no foreign tax applies) and zero (foreign tax of zero was withheld)
// differently.
func withholdingValue(d models.Dividend) string {
	if d.Currency == processors.ReportingCurrency {
		return ""
	}
	if d.Converted != nil {
		return formatAmount(d.Converted.WithholdingTaxEUR)
	}
	return formatAmount(d.WithholdingTax)
}

// GenerateDivCSV renders the semicolon-delimited Doh-Div import file: a
// two-line form-identification header followed by one data row per dividend.
// Dates leave their internal ISO form only here, reformatted to the
// day.month.year convention of the text format.
func GenerateDivCSV(dividends []models.Dividend, year int, identity models.TaxpayerIdentity, testMode bool) string {
	rows := prepareDividendRows(dividends)

	var b strings.Builder
	fmt.Fprintf(&b, "#FORM-CODE;DOH-DIV;%d;%s;%s\n", year, csvEscape(identity.TaxNumber), workflowID(testMode))
	b.WriteString("Datum prejema;Zap. st.;ISIN;Naziv izplacevalca;Drzava izplacevalca;Vrsta dohodka;Znesek dividend;Tuji davek;Drzava vira\n")

	for _, row := range rows {
		d := row.div
		seq := ""
		if row.seq > 0 {
			seq = fmt.Sprintf("%d", row.seq)
		}
		country := payerCountry(d)
		fields := []string{
			utils.FormatEDavkiDate(d.Date),
			seq,
			csvEscape(d.ISIN),
			csvEscape(d.SecurityName),
			csvEscape(country),
			dividendIncomeType,
			grossValue(d),
			withholdingValue(d),
			csvEscape(country),
		}
		b.WriteString(strings.Join(fields, ";"))
		b.WriteByte('\n')
	}
	return b.String()
}

// GenerateDivXML renders the XML variant of the dividend declaration: the
// same envelope as the KDVP document with one Dividend element per payment.
func GenerateDivXML(dividends []models.Dividend, year int, identity models.TaxpayerIdentity, testMode bool) string {
	rows := prepareDividendRows(dividends)

	var b strings.Builder
	edavkiEnvelopeOpen(&b, "Doh_Div", "3", identity)

	b.WriteString("  <body>\n")
	b.WriteString("    <Doh_Div>\n")
	fmt.Fprintf(&b, "      <Period>%d</Period>\n", year)
	fmt.Fprintf(&b, "      <DocumentWorkflowID>%s</DocumentWorkflowID>\n", workflowID(testMode))
	b.WriteString("    </Doh_Div>\n")

	for _, row := range rows {
		d := row.div
		country := payerCountry(d)
		b.WriteString("    <Dividend>\n")
		fmt.Fprintf(&b, "      <Date>%s</Date>\n", d.Date)
		if row.seq > 0 {
			fmt.Fprintf(&b, "      <SequenceNumber>%d</SequenceNumber>\n", row.seq)
		}
		fmt.Fprintf(&b, "      <PayerIdentificationNumber>%s</PayerIdentificationNumber>\n", xmlEscape(d.ISIN))
		fmt.Fprintf(&b, "      <PayerName>%s</PayerName>\n", xmlEscape(d.SecurityName))
		fmt.Fprintf(&b, "      <PayerCountry>%s</PayerCountry>\n", xmlEscape(country))
		fmt.Fprintf(&b, "      <Type>%s</Type>\n", dividendIncomeType)
		fmt.Fprintf(&b, "      <Value>%s</Value>\n", grossValue(d))
		fmt.Fprintf(&b, "      <ForeignTax>%s</ForeignTax>\n", withholdingValue(d))
		fmt.Fprintf(&b, "      <Country>%s</Country>\n", xmlEscape(country))
		b.WriteString("    </Dividend>\n")
	}

	b.WriteString("  </body>\n")
	edavkiEnvelopeClose(&b)
	return b.String()
}
