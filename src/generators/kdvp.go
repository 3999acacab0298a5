package generators

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/username/fursio/src/models"
)

// GenerateKDVP renders the Doh-KDVP capital gains declaration. Trades are
// grouped into one security block per ISIN (symbol when the ISIN is absent);
// inside a block every closed round-trip contributes a purchase row and a
// sale row with a running quantity balance between them. EUR-converted
// amounts are used when conversion succeeded, native amounts otherwise. A
// missing conversion degrades the values, never the document.
func GenerateKDVP(trades []models.Trade, year int, identity models.TaxpayerIdentity, testMode bool) string {
	groups := groupTrades(trades)

	var b strings.Builder
	edavkiEnvelopeOpen(&b, "Doh_KDVP", "9", identity)

	b.WriteString("  <body>\n")
	b.WriteString("    <Doh_KDVP>\n")
	b.WriteString("      <KDVP>\n")
	fmt.Fprintf(&b, "        <DocumentWorkflowID>%s</DocumentWorkflowID>\n", workflowID(testMode))
	fmt.Fprintf(&b, "        <Year>%d</Year>\n", year)
	fmt.Fprintf(&b, "        <PeriodStart>%d-01-01</PeriodStart>\n", year)
	fmt.Fprintf(&b, "        <PeriodEnd>%d-12-31</PeriodEnd>\n", year)
	b.WriteString("        <IsResident>true</IsResident>\n")
	// SecurityCount is derived, never supplied: it must equal the number of
	// distinct security blocks below.
	fmt.Fprintf(&b, "        <SecurityCount>%d</SecurityCount>\n", len(groups))
	b.WriteString("        <SecurityShortCount>0</SecurityShortCount>\n")
	b.WriteString("        <SecurityWithContractCount>0</SecurityWithContractCount>\n")
	b.WriteString("        <ShareCount>0</ShareCount>\n")
	b.WriteString("      </KDVP>\n")

	for _, group := range groups {
		writeKDVPItem(&b, group)
	}

	b.WriteString("    </Doh_KDVP>\n")
	b.WriteString("  </body>\n")
	edavkiEnvelopeClose(&b)
	return b.String()
}

type tradeGroup struct {
	key    string
	trades []models.Trade
}

// groupTrades buckets trades by security, keeping groups in order of first
// appearance and sorting each group by disposal date ascending.
func groupTrades(trades []models.Trade) []tradeGroup {
	index := map[string]int{}
	var groups []tradeGroup
	for _, t := range trades {
		key := t.GroupKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, tradeGroup{key: key})
		}
		groups[i].trades = append(groups[i].trades, t)
	}
	for i := range groups {
		sort.SliceStable(groups[i].trades, func(a, b int) bool {
			return groups[i].trades[a].DateSold < groups[i].trades[b].DateSold
		})
	}
	return groups
}

func writeKDVPItem(b *strings.Builder, group tradeGroup) {
	first := group.trades[0]

	b.WriteString("      <KDVPItem>\n")
	b.WriteString("        <InventoryListType>PLVP</InventoryListType>\n")
	fmt.Fprintf(b, "        <Name>%s</Name>\n", xmlEscape(first.Symbol))
	b.WriteString("        <HasForeignTax>false</HasForeignTax>\n")
	b.WriteString("        <HasLossTransfer>false</HasLossTransfer>\n")
	b.WriteString("        <ForeignTransfer>false</ForeignTransfer>\n")
	b.WriteString("        <TaxDecreaseConformance>false</TaxDecreaseConformance>\n")
	b.WriteString("        <Securities>\n")
	fmt.Fprintf(b, "          <ISIN>%s</ISIN>\n", xmlEscape(first.ISIN))
	fmt.Fprintf(b, "          <Code>%s</Code>\n", xmlEscape(first.Symbol))
	fmt.Fprintf(b, "          <Name>%s</Name>\n", xmlEscape(first.SecurityName))
	b.WriteString("          <IsFond>false</IsFond>\n")

	// Each trade is an already-closed position: the balance rises by the
	// quantity on the purchase row and falls back on the paired sale row.
	balance := decimal.Zero
	rowID := 0
	for _, t := range group.trades {
		costBasis, proceeds := t.CostBasis, t.GrossProceeds
		if t.Converted != nil {
			costBasis = t.Converted.CostBasisEUR
			proceeds = t.Converted.GrossProceedsEUR
		}

		balance = balance.Add(t.Quantity)
		b.WriteString("          <Row>\n")
		fmt.Fprintf(b, "            <ID>%d</ID>\n", rowID)
		b.WriteString("            <Purchase>\n")
		fmt.Fprintf(b, "              <F1>%s</F1>\n", t.DateAcquired)
		b.WriteString("              <F2>B</F2>\n")
		fmt.Fprintf(b, "              <F3>%s</F3>\n", formatUnit(t.Quantity))
		fmt.Fprintf(b, "              <F4>%s</F4>\n", formatUnit(divideSafe(costBasis, t.Quantity)))
		b.WriteString("            </Purchase>\n")
		fmt.Fprintf(b, "            <F8>%s</F8>\n", formatUnit(balance))
		b.WriteString("          </Row>\n")
		rowID++

		balance = balance.Sub(t.Quantity)
		b.WriteString("          <Row>\n")
		fmt.Fprintf(b, "            <ID>%d</ID>\n", rowID)
		b.WriteString("            <Sale>\n")
		fmt.Fprintf(b, "              <F6>%s</F6>\n", t.DateSold)
		fmt.Fprintf(b, "              <F7>%s</F7>\n", formatUnit(t.Quantity))
		fmt.Fprintf(b, "              <F9>%s</F9>\n", formatUnit(divideSafe(proceeds, t.Quantity)))
		b.WriteString("            </Sale>\n")
		fmt.Fprintf(b, "            <F8>%s</F8>\n", formatUnit(balance))
		b.WriteString("          </Row>\n")
		rowID++
	}

	b.WriteString("        </Securities>\n")
	b.WriteString("      </KDVPItem>\n")
}
