package generators

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/username/fursio/src/models"
)

// Document workflow modes understood by eDavki: an original submission or an
// informative (trial) one. The caller decides; the generators never infer.
const (
	workflowOriginal      = "O"
	workflowInformational = "I"
)

func workflowID(testMode bool) string {
	if testMode {
		return workflowInformational
	}
	return workflowOriginal
}

// xmlEscape encodes a value for use in XML element content.
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}

// csvEscape applies the wrap-and-double-quote rule of the delimited format:
// values containing the delimiter, a quote or a newline are wrapped in
// double quotes with inner quotes doubled.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ";\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// formatAmount renders a monetary amount at the 2 decimal places report
// fields carry.
func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// formatUnit renders per-unit prices and quantities at the 4 decimal places
// the inventory rows require.
func formatUnit(d decimal.Decimal) string {
	return d.StringFixed(4)
}

// divideSafe returns numerator/denominator, or zero when the denominator is
// not strictly positive. Schema fields derived by division must never
// propagate a division by zero or a negative rate.
func divideSafe(numerator, denominator decimal.Decimal) decimal.Decimal {
	if !denominator.IsPositive() {
		return decimal.Zero
	}
	return numerator.Div(denominator)
}

// edavkiEnvelopeOpen writes the fixed eDavki envelope and the taxpayer
// header block. Optional identity fields render as empty elements rather
// than being omitted; the schema treats empty and absent alike for them and
// empty keeps the layout stable.
func edavkiEnvelopeOpen(b *strings.Builder, formName string, schemaVersion string, identity models.TaxpayerIdentity) {
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(b, `<Envelope xmlns="http://edavki.durs.si/Documents/Schemas/%s_%s.xsd" xmlns:edp="http://edavki.durs.si/Documents/Schemas/EDP-Common-1.xsd">`+"\n", formName, schemaVersion)
	b.WriteString("  <edp:Header>\n")
	b.WriteString("    <edp:taxpayer>\n")
	fmt.Fprintf(b, "      <edp:taxNumber>%s</edp:taxNumber>\n", xmlEscape(identity.TaxNumber))
	b.WriteString("      <edp:taxpayerType>FO</edp:taxpayerType>\n")
	fmt.Fprintf(b, "      <edp:name>%s</edp:name>\n", xmlEscape(identity.Name))
	fmt.Fprintf(b, "      <edp:address1>%s</edp:address1>\n", xmlEscape(identity.Address))
	fmt.Fprintf(b, "      <edp:city>%s</edp:city>\n", xmlEscape(identity.City))
	fmt.Fprintf(b, "      <edp:postNumber>%s</edp:postNumber>\n", xmlEscape(identity.PostNumber))
	fmt.Fprintf(b, "      <edp:postName>%s</edp:postName>\n", xmlEscape(identity.PostName))
	fmt.Fprintf(b, "      <edp:email>%s</edp:email>\n", xmlEscape(identity.Email))
	fmt.Fprintf(b, "      <edp:telephoneNumber>%s</edp:telephoneNumber>\n", xmlEscape(identity.Phone))
	b.WriteString("    </edp:taxpayer>\n")
	b.WriteString("  </edp:Header>\n")
	b.WriteString("  <edp:AttachmentList/>\n")
	b.WriteString("  <edp:Signatures/>\n")
}

func edavkiEnvelopeClose(b *strings.Builder) {
	b.WriteString("</Envelope>\n")
}
