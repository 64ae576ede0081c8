package parser

import (
	"regexp"
	"strings"

	"github.com/facturas-tools/extractor/internal/invoice"
)

var (
	repsolNum   = regexp.MustCompile(`(?i)N[ºo]\s*Factura\s*[:#]?\s*([0-9/]+)`)
	repsolDate  = regexp.MustCompile(`(?i)Fecha\s*[:#]?\s*([0-9]{2}/[0-9]{2}/[0-9]{4})`)
	repsolBase  = regexp.MustCompile(`(?i)Importe\s+del\s+producto\s*\(\s*Base\s+Imponible\s*\)\s*([0-9.,]+)`)
	repsolTax   = regexp.MustCompile(`(?i)IVA\s*[0-9]{1,2}[.,][0-9]{2}%\s*de\s*[0-9.,]+\s*€\s*([0-9.,]+)`)
	repsolTotal = regexp.MustCompile(`(?i)TOTAL\s+FACTURA\s+EUROS[^0-9]*([0-9.,]+)\s*€`)
)

// Repsol energy invoices; the brand invoices under several group companies so
// the tax ID is left to the resolver when the layout omits it.
type Repsol struct{}

func (*Repsol) Name() string { return "REPSOL" }

func (*Repsol) Detect(text string) bool {
	up := strings.ToUpper(text)
	return strings.Contains(up, "REPSOL SOLUCIONES ENERGETICAS") ||
		strings.Contains(up, "TOTAL FACTURA EUROS")
}

func (*Repsol) Parse(text, path string) []invoice.Row {
	number := findString(repsolNum, text)
	if number == "" {
		number = Stem(path)
	}

	date := ""
	if raw := findString(repsolDate, text); raw != "" {
		date = isoFromSlashDate(raw)
	}

	base := findMoney(repsolBase, text)
	tax := findMoney(repsolTax, text)
	total := findMoney(repsolTotal, text)
	total = deriveTotal(base, tax, total)

	return []invoice.Row{{
		InvoiceDate:   date,
		InvoiceNumber: number,
		VendorName:    "REPSOL SOLUCIONES ENERGETICAS, S.A.",
		TaxBase:       base,
		TaxRate:       deriveRate(base, tax),
		TaxAmount:     tax,
		TotalAmount:   total,
	}}
}

// isoFromSlashDate converts dd/mm/yyyy to ISO; returns "" on nonsense.
func isoFromSlashDate(s string) string {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return ""
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}
