package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/facturas-tools/extractor/constants"
	"github.com/facturas-tools/extractor/internal/invoice"
	"github.com/facturas-tools/extractor/internal/normalize"
)

var (
	// OCR variants render "Nº" as "N*" or "N*2"
	itvNum   = regexp.MustCompile(`FACTURA\s+N\*?[0-9]*\s*([0-9]{6,}/[0-9A-Z]+)`)
	itvBase  = regexp.MustCompile(`BASE\s+IMPONIBLE\s*[:\s]*([0-9][0-9.,]*)`)
	itvTotal = regexp.MustCompile(`TOTAL\s+FACTURA\s*[:\s]*([0-9][0-9.,]*)`)
	itvFee   = []*regexp.Regexp{
		regexp.MustCompile(`TASA\s+TR[ÁA]FICO\s*[:\s]*([0-9][0-9.,]*)`),
		regexp.MustCompile(`TASA\s+T[RÁA]FICO\s*[:\s]*([0-9][0-9.,]*)`),
	}
)

// ITV inspections invoice a VAT-bearing service line plus a zero-rated
// government traffic fee, so one document becomes two rows.
type ITV struct{}

func (*ITV) Name() string { return "ARAGONESA DE SERVICIOS ITV" }

func (*ITV) Detect(text string) bool {
	up := strings.ToUpper(text)
	return strings.Contains(up, "ARAGONESA DE SERVICIOS ITV") ||
		strings.Contains(up, "SERVICIOS ITV, S.A.")
}

func (*ITV) Parse(text, path string) []invoice.Row {
	up := strings.ToUpper(text)

	number := findString(itvNum, up)
	if number == "" {
		number = Stem(path)
	}
	date := normalize.ParseDate(text)

	base := findMoney(itvBase, up)
	total := findMoney(itvTotal, up)
	var fee *float64
	for _, re := range itvFee {
		if fee = findMoney(re, up); fee != nil {
			break
		}
	}

	// the VAT amount is never printed; derive it from the remainder
	var tax *float64
	if base != nil && total != nil {
		v := invoice.Round2(*total - *base - deref(fee))
		if v >= 0 {
			tax = &v
		}
	}
	rate := deriveRate(base, tax)

	notes := constants.NoteMultiVAT
	if total != nil {
		notes = fmt.Sprintf("%s + TOTAL %.2f", constants.NoteMultiVAT, *total)
	}

	service := invoice.Row{
		InvoiceDate:   date,
		InvoiceNumber: number,
		VendorName:    "ARAGONESA DE SERVICIOS ITV, S.A.",
		VendorTaxID:   "A18096511",
		TaxBase:       base,
		TaxRate:       rate,
		TaxAmount:     tax,
		Notes:         notes,
	}
	if base != nil && tax != nil {
		service.TotalAmount = invoice.Num(invoice.Round2(*base + *tax))
	}

	feeRow := invoice.Row{
		InvoiceDate:   date,
		InvoiceNumber: number,
		VendorName:    "ARAGONESA DE SERVICIOS ITV, S.A.",
		VendorTaxID:   "A18096511",
		TaxBase:       fee,
		TotalAmount:   fee,
		Notes:         notes,
	}
	if fee != nil {
		feeRow.TaxRate = invoice.Num(0)
		feeRow.TaxAmount = invoice.Num(0)
	}

	return []invoice.Row{service, feeRow}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
