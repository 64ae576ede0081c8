package parser

import (
	"strings"
	"testing"
)

func TestITVTwoRows(t *testing.T) {
	text := strings.Join([]string{
		"ARAGONESA DE SERVICIOS ITV, S.A.",
		"FACTURA N* 000001743/50072024F",
		"Fecha Factura: 15/03/2024",
		"BASE IMPONIBLE: 35,54",
		"TASA TRAFICO: 4,10",
		"TOTAL FACTURA: 47,10",
	}, "\n")

	p := &ITV{}
	if !p.Detect(text) {
		t.Fatal("Detect = false")
	}
	rows := p.Parse(text, "/in/itv.pdf")
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want service line + fee line", len(rows))
	}

	service, fee := rows[0], rows[1]
	if service.InvoiceNumber != "000001743/50072024F" {
		t.Errorf("InvoiceNumber = %q", service.InvoiceNumber)
	}
	if service.InvoiceDate != "2024-03-15" {
		t.Errorf("InvoiceDate = %q, want 2024-03-15", service.InvoiceDate)
	}
	approx(t, "service.TaxBase", service.TaxBase, 35.54)
	// VAT derived from the remainder: 47.10 - 35.54 - 4.10
	approx(t, "service.TaxAmount", service.TaxAmount, 7.46)
	approx(t, "service.TotalAmount", service.TotalAmount, 43.00)

	approx(t, "fee.TaxBase", fee.TaxBase, 4.10)
	approx(t, "fee.TaxRate", fee.TaxRate, 0)
	approx(t, "fee.TaxAmount", fee.TaxAmount, 0)
	approx(t, "fee.TotalAmount", fee.TotalAmount, 4.10)

	for i, r := range rows {
		if !strings.Contains(r.Notes, "VARIOS IVAS") {
			t.Errorf("row %d Notes = %q, want multi-VAT marker", i, r.Notes)
		}
	}
}

func TestITVNegativeDerivedVATDropped(t *testing.T) {
	text := "ARAGONESA DE SERVICIOS ITV\nBASE IMPONIBLE: 50,00\nTOTAL FACTURA: 30,00"
	rows := (&ITV{}).Parse(text, "/in/itv.pdf")
	if rows[0].TaxAmount != nil {
		t.Errorf("TaxAmount = %v, want nil when the remainder is negative", *rows[0].TaxAmount)
	}
}
