package parser

import (
	"regexp"
	"strings"

	"github.com/facturas-tools/extractor/internal/invoice"
	"github.com/facturas-tools/extractor/internal/normalize"
)

var (
	sorpresaNum = regexp.MustCompile(`N\s*\*\s*FAC\s*[:#]?\s*([0-9]{3,12})`)
	// "TOTAL: 21%: <base> 0%: <exempt> <total>" block printed by the register
	sorpresaBlock = regexp.MustCompile(`TOTAL\s*:\s*([0-9]{1,2}(?:[.,][0-9]{1,2})?)%\s*:\s*([0-9][0-9.,]*)\s*([0-9]{1,2}(?:[.,][0-9]{1,2})?)%\s*:\s*([0-9][0-9.,]*)\s*([0-9][0-9.,]*)`)
)

// Sorpresa is a household-goods store with a register-slip style invoice.
type Sorpresa struct{}

func (*Sorpresa) Name() string { return "SORPRESA" }

func (*Sorpresa) Detect(text string) bool {
	up := strings.ToUpper(text)
	return strings.Contains(up, "SORPRESA HOGAR") ||
		strings.Contains(up, "XIAOJIE WANG")
}

func (*Sorpresa) Parse(text, path string) []invoice.Row {
	up := strings.ToUpper(text)

	number := findString(sorpresaNum, up)
	if number == "" {
		number = Stem(path)
	}

	var base, tax, total, rate *float64
	if m := sorpresaBlock.FindStringSubmatch(up); m != nil {
		if r, ok := normalize.ParsePercent(m[1]); ok {
			rate = &r
		}
		if v, ok := normalize.ParseMoney(m[2]); ok {
			base = &v
		}
		if v, ok := normalize.ParseMoney(m[4]); ok {
			tax = &v
		}
		if v, ok := normalize.ParseMoney(m[5]); ok {
			total = &v
		}
	}
	total = deriveTotal(base, tax, total)

	return []invoice.Row{{
		InvoiceNumber: number,
		VendorName:    "SORPRESA HOGAR",
		VendorTaxID:   "X6526242S",
		TaxBase:       base,
		TaxRate:       rate,
		TaxAmount:     tax,
		TotalAmount:   total,
	}}
}
