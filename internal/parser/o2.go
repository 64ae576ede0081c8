package parser

import (
	"regexp"
	"strings"

	"github.com/facturas-tools/extractor/internal/invoice"
	"github.com/facturas-tools/extractor/internal/normalize"
)

var (
	o2Num   = regexp.MustCompile(`FACTURA\s+N[ÚU]M\s*[:#]?\s*([A-Z0-9]+)`)
	o2Base  = regexp.MustCompile(`BASE\s+IMPONIBLE\s*([0-9][0-9.,]*)\s*€`)
	o2Tax   = regexp.MustCompile(`IVA\s*\(\s*21\.?00\s*%\s*\)\s*SOBRE\s*[0-9][0-9.,]*\s*€\s*([0-9][0-9.,]*)\s*€`)
	o2Total = regexp.MustCompile(`TOTAL\s+FACTURA\s*([0-9][0-9.,]*)\s*€`)
)

// O2 is the Telefónica fiber/mobile brand; a flat 21% layout.
type O2 struct{}

func (*O2) Name() string { return "O2" }

func (*O2) Detect(text string) bool {
	up := strings.ToUpper(text)
	return strings.Contains(up, "TELEFÓNICA DE ESPAÑA") ||
		strings.Contains(up, "FACTURA NÚM") ||
		strings.Contains(up, "O2")
}

func (*O2) Parse(text, path string) []invoice.Row {
	up := strings.ToUpper(text)

	number := findString(o2Num, up)
	if number == "" {
		number = Stem(path)
	}

	base := findMoney(o2Base, up)
	tax := findMoney(o2Tax, up)
	total := findMoney(o2Total, up)
	total = deriveTotal(base, tax, total)

	var rate *float64
	if base != nil && tax != nil {
		rate = invoice.Num(0.21)
	}

	return []invoice.Row{{
		InvoiceDate:   normalize.ParseDate(text),
		InvoiceNumber: number,
		VendorName:    "TELEFÓNICA DE ESPAÑA, S.A.U.",
		VendorTaxID:   "A82018474",
		TaxBase:       base,
		TaxRate:       rate,
		TaxAmount:     tax,
		TotalAmount:   total,
	}}
}
