package parser

import (
	"regexp"
	"strings"

	"github.com/facturas-tools/extractor/internal/invoice"
	"github.com/facturas-tools/extractor/internal/normalize"
)

var (
	indusanNum   = regexp.MustCompile(`FACTURA[\s\S]*?([0-9]{3,})`)
	indusanBase  = regexp.MustCompile(`BASE\s+IMPONIBLE[\s\S]*?([0-9][0-9.,]*)`)
	indusanTax   = regexp.MustCompile(`IVA\s*%\s*21[\s\S]*?([0-9][0-9.,]*)`)
	indusanTotal = regexp.MustCompile(`TOTAL\s+FACTURA[\s\S]*?([0-9][0-9.,]*)`)
)

// Indusan invoices always carry a single 21% line.
type Indusan struct{}

func (*Indusan) Name() string { return "INDUSAN" }

func (*Indusan) Detect(text string) bool {
	up := strings.ToUpper(text)
	return strings.Contains(up, "INDUSTRIAS REUNIDAS SANITARIAS") ||
		strings.Contains(up, "INDUSAN")
}

func (*Indusan) Parse(text, path string) []invoice.Row {
	up := strings.ToUpper(text)

	number := findString(indusanNum, up)
	if number == "" {
		number = Stem(path)
	}

	base := findMoney(indusanBase, up)
	tax := findMoney(indusanTax, up)
	total := findMoney(indusanTotal, up)
	total = deriveTotal(base, tax, total)

	var rate *float64
	if base != nil && tax != nil {
		rate = invoice.Num(0.21)
	}

	return []invoice.Row{{
		InvoiceDate:   normalize.ParseDate(text),
		InvoiceNumber: number,
		VendorName:    "INDUSTRIAS REUNIDAS SANITARIAS S.L.",
		VendorTaxID:   "B50040005",
		TaxBase:       base,
		TaxRate:       rate,
		TaxAmount:     tax,
		TotalAmount:   total,
	}}
}
