package parser

import (
	"regexp"
	"strings"

	"github.com/facturas-tools/extractor/internal/invoice"
	"github.com/facturas-tools/extractor/internal/normalize"
)

var (
	mercadaizNum   = regexp.MustCompile(`FA\s*[-/]\s*([0-9]{3,})`)
	mercadaizBase  = regexp.MustCompile(`BASE\s+IMPONIBLE\s*([0-9][0-9.,]*)`)
	mercadaizTax   = regexp.MustCompile(`TOTAL\s+I\.?V\.?A\.?\s*([0-9][0-9.,]*)`)
	mercadaizTotal = regexp.MustCompile(`TOTAL\s+FACTURA\s*([0-9][0-9.,]*)`)
)

// Mercadaiz is the fuel distributor; invoice numbers are prefixed "FA-".
type Mercadaiz struct{}

func (*Mercadaiz) Name() string { return "MERCADAIZ" }

func (*Mercadaiz) Detect(text string) bool {
	up := strings.ToUpper(text)
	return strings.Contains(up, "VIUDA DE LONDAIZ") ||
		strings.Contains(up, "GASOLEOS MERCADAIZ")
}

func (*Mercadaiz) Parse(text, path string) []invoice.Row {
	up := strings.ToUpper(text)

	number := findString(mercadaizNum, up)
	if number != "" {
		number = "FA-" + number
	} else {
		number = Stem(path)
	}

	base := findMoney(mercadaizBase, up)
	tax := findMoney(mercadaizTax, up)
	total := findMoney(mercadaizTotal, up)
	total = deriveTotal(base, tax, total)

	return []invoice.Row{{
		InvoiceDate:   normalize.ParseDate(text),
		InvoiceNumber: number,
		VendorName:    "VIUDA DE LONDAIZ Y SOBRINOS DE L. MERCADER, S.A.",
		VendorTaxID:   "A20004008",
		TaxBase:       base,
		TaxRate:       deriveRate(base, tax),
		TaxAmount:     tax,
		TotalAmount:   total,
	}}
}
