package parser

import (
	"regexp"
	"strings"

	"github.com/facturas-tools/extractor/internal/invoice"
	"github.com/facturas-tools/extractor/internal/normalize"
)

var (
	// OCR renders the "º" of "Factura Nº" as "*" or "%"
	alcampoNum    = regexp.MustCompile(`FACTURA\s+N[\*%]?:\s*([0-9]{6,})`)
	alcampoBase   = regexp.MustCompile(`TOTAL\s+BASE\s+IMPONIBLE\s*([0-9][0-9.,]*)`)
	alcampoTax    = regexp.MustCompile(`TOTAL\s+IMPUESTO\s*([0-9][0-9.,]*)`)
	alcampoTotal  = regexp.MustCompile(`TOTAL\s+FACTURA\s*([0-9][0-9.,]*)`)
	alcampoBase2  = regexp.MustCompile(`BASE\s+IMP\.?\s*([0-9][0-9.,]*)\s*€`)
	alcampoTax2   = regexp.MustCompile(`IMPUESTO\s*([0-9][0-9.,]*)\s*€`)
	alcampoTotal2 = regexp.MustCompile(`IMP\.\s*L[IÍ]QUIDO\.?\s*([0-9][0-9.,]*)\s*€`)
)

// Alcampo parses the hypermarket's fixed layout: totals in the footer block,
// with a secondary per-line block as fallback.
type Alcampo struct{}

func (*Alcampo) Name() string { return "ALCAMPO" }

func (*Alcampo) Detect(text string) bool {
	up := strings.ToUpper(text)
	return strings.Contains(up, "ALCAMPO S.A") ||
		strings.Contains(up, "FAT ALCAMPO") ||
		strings.Contains(up, "HIPERMERCADO UTEBO")
}

func (*Alcampo) Parse(text, path string) []invoice.Row {
	up := strings.ToUpper(text)

	number := findString(alcampoNum, up)
	if number == "" {
		number = Stem(path)
	}

	base := findMoney(alcampoBase, up)
	tax := findMoney(alcampoTax, up)
	total := findMoney(alcampoTotal, up)
	if base == nil {
		base = findMoney(alcampoBase2, up)
	}
	if tax == nil {
		tax = findMoney(alcampoTax2, up)
	}
	if total == nil {
		total = findMoney(alcampoTotal2, up)
	}

	total = deriveTotal(base, tax, total)

	return []invoice.Row{{
		InvoiceDate:   normalize.ParseDate(text),
		InvoiceNumber: number,
		VendorName:    "ALCAMPO S.A.",
		VendorTaxID:   "A28581882",
		TaxBase:       base,
		TaxRate:       deriveRate(base, tax),
		TaxAmount:     tax,
		TotalAmount:   total,
	}}
}
