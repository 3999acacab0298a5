package generators

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/username/fursio/src/models"
)

func tsmDividend() models.Dividend {
	return models.Dividend{
		Date:           "2024-01-10",
		Symbol:         "TSM",
		SecurityName:   "Taiwan Semiconductor",
		ISIN:           "US8740391003",
		Country:        "United States",
		GrossAmount:    decimal.RequireFromString("16.92"),
		WithholdingTax: decimal.RequireFromString("3.55"),
		Currency:       "USD",
	}
}

func TestGenerateDivCSVLayout(t *testing.T) {
	t.Parallel()
	csv := GenerateDivCSV([]models.Dividend{tsmDividend()}, 2024, testIdentity, false)
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")

	// Two-line form identification header, then one row per dividend.
	require.Len(t, lines, 3)
	require.Equal(t, "#FORM-CODE;DOH-DIV;2024;12345678;O", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "Datum prejema;"))

	fields := strings.Split(lines[2], ";")
	require.Equal(t, "10.01.2024", fields[0], "dates leave ISO form at emission")
	require.Equal(t, "", fields[1], "first occurrence gets no sequence index")
	require.Equal(t, "US8740391003", fields[2])
	require.Equal(t, "US", fields[4], "free-text country maps to alpha-2")
	require.Equal(t, "1230", fields[5])
	require.Equal(t, "16.92", fields[6])
	require.Equal(t, "3.55", fields[7])
}

func TestGenerateDivCSVSequenceIndex(t *testing.T) {
	t.Parallel()
	first := tsmDividend()
	first.GrossAmount = decimal.RequireFromString("5.00")
	first.Currency = "EUR"
	second := tsmDividend()
	second.GrossAmount = decimal.RequireFromString("7.00")
	second.Currency = "EUR"

	csv := GenerateDivCSV([]models.Dividend{first, second}, 2024, testIdentity, false)
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	require.Len(t, lines, 4)

	require.Equal(t, "", strings.Split(lines[2], ";")[1])
	require.Equal(t, "2", strings.Split(lines[3], ";")[1])
}

func TestGenerateDivCSVDomesticWithholdingEmpty(t *testing.T) {
	t.Parallel()
	domestic := tsmDividend()
	domestic.Currency = "EUR"
	domestic.WithholdingTax = decimal.Zero

	csv := GenerateDivCSV([]models.Dividend{domestic}, 2024, testIdentity, false)
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	fields := strings.Split(lines[2], ";")
	require.Equal(t, "", fields[7], "domestic dividends emit an empty withholding field, not 0.00")
}

func TestGenerateDivCSVSortsByDate(t *testing.T) {
	t.Parallel()
	late := tsmDividend()
	late.Date = "2024-09-02"
	early := tsmDividend()
	early.Date = "2024-01-03"

	csv := GenerateDivCSV([]models.Dividend{late, early}, 2024, testIdentity, false)
	require.Less(t, strings.Index(csv, "03.01.2024"), strings.Index(csv, "02.09.2024"))
}

func TestGenerateDivCSVDropsNonPositive(t *testing.T) {
	t.Parallel()
	bad := tsmDividend()
	bad.GrossAmount = decimal.RequireFromString("-1.20")

	csv := GenerateDivCSV([]models.Dividend{bad}, 2024, testIdentity, false)
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	require.Len(t, lines, 2, "non-positive amounts never reach the output")
}

func TestGenerateDivCSVEscaping(t *testing.T) {
	t.Parallel()
	tricky := tsmDividend()
	tricky.SecurityName = `Semis; "TSMC" Ltd`

	csv := GenerateDivCSV([]models.Dividend{tricky}, 2024, testIdentity, false)
	require.Contains(t, csv, `"Semis; ""TSMC"" Ltd"`)
}

func TestGenerateDivCSVUsesConvertedAmounts(t *testing.T) {
	t.Parallel()
	div := tsmDividend()
	div.Converted = &models.ConvertedDividend{
		Rate:              decimal.RequireFromString("1.0946"),
		GrossAmountEUR:    decimal.RequireFromString("15.46"),
		WithholdingTaxEUR: decimal.RequireFromString("3.24"),
	}
	csv := GenerateDivCSV([]models.Dividend{div}, 2024, testIdentity, false)
	fields := strings.Split(strings.Split(strings.TrimRight(csv, "\n"), "\n")[2], ";")
	require.Equal(t, "15.46", fields[6])
	require.Equal(t, "3.24", fields[7])
}

func TestGenerateDivXML(t *testing.T) {
	t.Parallel()
	div := tsmDividend()
	xml := GenerateDivXML([]models.Dividend{div}, 2024, testIdentity, true)

	require.Contains(t, xml, "<Period>2024</Period>")
	require.Contains(t, xml, "<DocumentWorkflowID>I</DocumentWorkflowID>")
	require.Contains(t, xml, "<Date>2024-01-10</Date>")
	require.Contains(t, xml, "<PayerIdentificationNumber>US8740391003</PayerIdentificationNumber>")
	require.Contains(t, xml, "<PayerName>Taiwan Semiconductor</PayerName>")
	require.Contains(t, xml, "<PayerCountry>US</PayerCountry>")
	require.Contains(t, xml, "<Value>16.92</Value>")
	require.Contains(t, xml, "<ForeignTax>3.55</ForeignTax>")
	require.NotContains(t, xml, "<SequenceNumber>")
}

func TestGenerateDivXMLSequenceNumber(t *testing.T) {
	t.Parallel()
	first := tsmDividend()
	second := tsmDividend()
	xml := GenerateDivXML([]models.Dividend{first, second}, 2024, testIdentity, false)
	require.Equal(t, 1, strings.Count(xml, "<SequenceNumber>2</SequenceNumber>"))
}

func TestGenerateDivXMLDomesticForeignTaxEmpty(t *testing.T) {
	t.Parallel()
	domestic := tsmDividend()
	domestic.Currency = "EUR"
	xml := GenerateDivXML([]models.Dividend{domestic}, 2024, testIdentity, false)
	require.Contains(t, xml, "<ForeignTax></ForeignTax>")
}

func TestPayerCountryFallsBackToISIN(t *testing.T) {
	t.Parallel()
	div := tsmDividend()
	div.Country = ""
	require.Equal(t, "US", payerCountry(div))

	div.Country = "Atlantis"
	require.Equal(t, "Atlantis", payerCountry(div), "unknown values pass through unchanged")
}
