package parser

import (
	"regexp"
	"strings"

	"github.com/facturas-tools/extractor/internal/invoice"
	"github.com/facturas-tools/extractor/internal/normalize"
)

var (
	supercontableNum = regexp.MustCompile(`FACTURA\s+(PO[0-9]+/[0-9]+)`)
	// one-line summary: "<qty> <base> 21 % <tax> <total> EUR"
	supercontableRow = regexp.MustCompile(`\b([0-9]{1,3}[0-9.,]*)\s+([0-9]{1,3}[0-9.,]*)\s+21\s*%\s+([0-9]{1,3}[0-9.,]*)\s+([0-9]{1,3}[0-9.,]*)\s*EUR`)
)

// Supercontable is the accounting software subscription (RCR Proyectos).
type Supercontable struct{}

func (*Supercontable) Name() string { return "SUPERCONTABLE" }

func (*Supercontable) Detect(text string) bool {
	up := strings.ToUpper(text)
	return strings.Contains(up, "SUPERCONTABLE") ||
		strings.Contains(up, "RCR PROYECTOS DE SOFTWARE")
}

func (*Supercontable) Parse(text, path string) []invoice.Row {
	up := strings.ToUpper(text)

	number := findString(supercontableNum, up)
	if number == "" {
		number = Stem(path)
	}

	var base, tax, total *float64
	if m := supercontableRow.FindStringSubmatch(up); m != nil {
		if v, ok := normalize.ParseMoney(m[2]); ok {
			base = &v
		}
		if v, ok := normalize.ParseMoney(m[3]); ok {
			tax = &v
		}
		if v, ok := normalize.ParseMoney(m[4]); ok {
			total = &v
		}
	}
	total = deriveTotal(base, tax, total)

	var rate *float64
	if base != nil && tax != nil {
		rate = invoice.Num(0.21)
	}

	return []invoice.Row{{
		InvoiceDate:   normalize.ParseDate(text),
		InvoiceNumber: number,
		VendorName:    "RCR PROYECTOS DE SOFTWARE, S.L.U.",
		TaxBase:       base,
		TaxRate:       rate,
		TaxAmount:     tax,
		TotalAmount:   total,
	}}
}
