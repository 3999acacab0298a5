package revolut

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/username/fursio/src/logger"
	"github.com/username/fursio/src/models"
)

// RevolutParser extracts trades and dividends from a Revolut brokerage
// statement export: a single CSV file holding several titled sections at
// variable positions, each with its own header row.
type RevolutParser struct {
	sections *SectionConfig
}

func NewParser() *RevolutParser {
	cfg := activeConfig
	if cfg == nil {
		cfg = DefaultSectionConfig()
	}
	return &RevolutParser{sections: cfg}
}

// NewParserWithSections builds a parser with a custom section alias list.
func NewParserWithSections(cfg *SectionConfig) *RevolutParser {
	return &RevolutParser{sections: cfg}
}

// Parse reads the whole statement and returns the typed export. Content that
// cannot be classified is dropped silently; a statement with no recognizable
// sections yields empty collections, never an error. The error return only
// covers failures reading from file.
func (p *RevolutParser) Parse(file io.Reader) (*models.StatementExport, error) {
	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return p.ParseString(string(raw)), nil
}

// ParseString is the pure core of Parse.
func (p *RevolutParser) ParseString(raw string) *models.StatementExport {
	content := strings.ReplaceAll(raw, "\r\n", "\n")

	sellsStart := findSection(content, p.sections.AliasesFor(sectionSells))
	dividendsStart := findSection(content, p.sections.AliasesFor(sectionDividends))

	// The dividend section runs to end of input; the sells section runs to
	// the dividend marker when one exists.
	sellsEnd := len(content)
	if dividendsStart != -1 {
		sellsEnd = dividendsStart
	}

	export := &models.StatementExport{
		Trades:    parseSection(content, sellsStart, sellsEnd, mapTradeRow),
		Dividends: parseSection(content, dividendsStart, len(content), mapDividendRow),
	}
	if logger.L != nil {
		logger.L.Debug("Parsed Revolut statement",
			"trades", len(export.Trades),
			"dividends", len(export.Dividends))
	}
	return export
}

// findSection returns the byte offset of the first alias found in the
// content, or -1 when none matches. Matching is case-insensitive.
func findSection(content string, aliases []string) int {
	lower := strings.ToLower(content)
	for _, alias := range aliases {
		if idx := strings.Index(lower, strings.ToLower(alias)); idx != -1 {
			return idx
		}
	}
	return -1
}

// parseSection cuts the [start,end) block out of the statement, drops the
// title line, and feeds the remaining CSV through mapper. Rows the mapper
// rejects (returns nil for) are discarded without comment: brokerage exports
// routinely contain subtotal and filler rows.
func parseSection[T any](content string, start, end int, mapper func(row map[string]string) *T) []T {
	results := []T{}
	if start == -1 || end <= start {
		return results
	}

	block := strings.TrimSpace(content[start:end])
	newline := strings.IndexByte(block, '\n')
	if newline == -1 {
		return results // title with no rows at all
	}
	csvData := strings.TrimSpace(block[newline+1:])
	if csvData == "" {
		return results
	}

	reader := csv.NewReader(strings.NewReader(csvData))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return results
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // malformed row, not data
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[strings.TrimSpace(name)] = record[i]
			}
		}
		if mapped := mapper(row); mapped != nil {
			results = append(results, *mapped)
		}
	}
	return results
}

// mapTradeRow accepts a sells-section row as a trade only when it carries a
// symbol and a disposal date.
func mapTradeRow(row map[string]string) *models.Trade {
	if row["Symbol"] == "" || row["Date sold"] == "" {
		return nil
	}
	return &models.Trade{
		DateAcquired:  dateOnly(row["Date acquired"]),
		DateSold:      dateOnly(row["Date sold"]),
		Symbol:        row["Symbol"],
		SecurityName:  row["Security name"],
		ISIN:          row["ISIN"],
		Country:       row["Country"],
		Quantity:      parseAmount(row["Quantity"]),
		CostBasis:     parseAmount(row["Cost basis"]),
		GrossProceeds: parseAmount(row["Gross proceeds"]),
		GrossPnL:      parseAmount(row["Gross PnL"]),
		Currency:      row["Currency"],
	}
}

// mapDividendRow accepts a dividend-section row only with a symbol, an ISIN
// and a strictly positive gross amount. Negative amounts in this section are
// fee reversals, not dividends.
func mapDividendRow(row map[string]string) *models.Dividend {
	symbol := row["Symbol"]
	isin := row["ISIN"]
	gross := parseAmount(row["Gross amount"])

	if symbol == "" || isin == "" || !gross.IsPositive() {
		return nil
	}

	net := row["Net Amount"]
	if net == "" {
		net = row["Net amount"]
	}

	return &models.Dividend{
		Date:           dateOnly(row["Date"]),
		Symbol:         symbol,
		SecurityName:   row["Security name"],
		ISIN:           isin,
		Country:        row["Country"],
		GrossAmount:    gross,
		WithholdingTax: parseAmount(row["Withholding tax"]),
		NetAmount:      parseAmount(net),
		Currency:       row["Currency"],
	}
}

var amountCleaner = strings.NewReplacer("€", "", "$", "", "£", "", ",", "")

// parseAmount strips currency symbols and group separators, then parses the
// remainder as a decimal. Unparsable values become zero.
func parseAmount(value string) decimal.Decimal {
	clean := strings.TrimSpace(amountCleaner.Replace(value))
	if clean == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// dateOnly keeps the date portion of a "YYYY-MM-DD hh:mm:ss" value.
func dateOnly(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
