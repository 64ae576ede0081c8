package parser

import (
	"math"
	"strings"
	"testing"

	"github.com/facturas-tools/extractor/internal/invoice"
)

func approx(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s = nil, want %v", name, want)
	}
	if math.Abs(*got-want) > 0.005 {
		t.Errorf("%s = %v, want %v", name, *got, want)
	}
}

func TestGenericLabelScenario(t *testing.T) {
	text := strings.Join([]string{
		"BASE IMPONIBLE 100,00",
		"IVA 21,00",
		"TOTAL FACTURA 121,00",
	}, "\n")
	rows := (&Generic{}).Parse(text, "/in/f001.pdf")
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	r := rows[0]
	approx(t, "TaxBase", r.TaxBase, 100.00)
	approx(t, "TaxAmount", r.TaxAmount, 21.00)
	approx(t, "TotalAmount", r.TotalAmount, 121.00)
	approx(t, "TaxRate", r.TaxRate, 0.21)
	if r.InvoiceNumber != "f001" {
		t.Errorf("InvoiceNumber = %q, want filename stem", r.InvoiceNumber)
	}
}

func TestGenericCurrencySymbolBeatsBareNumber(t *testing.T) {
	// the quantity 3 sits on the label line; the real amount carries €
	text := "SUBTOTAL 3 unidades €45,90"
	rows := (&Generic{}).Parse(text, "/in/x.pdf")
	approx(t, "TaxBase", rows[0].TaxBase, 45.90)
}

func TestGenericValueOnFollowingLine(t *testing.T) {
	text := "BASE IMPONIBLE\n\n\n88,50"
	rows := (&Generic{}).Parse(text, "/in/x.pdf")
	approx(t, "TaxBase", rows[0].TaxBase, 88.50)
}

func TestGenericMisreadRateGuard(t *testing.T) {
	text := strings.Join([]string{
		"BASE IMPONIBLE 200,00",
		"IVA 21",
		"TOTAL 242,00",
	}, "\n")
	rows := (&Generic{}).Parse(text, "/in/x.pdf")
	r := rows[0]
	if r.TaxAmount != nil {
		t.Errorf("TaxAmount = %v, want nil (21 is a misread rate)", *r.TaxAmount)
	}
	approx(t, "TaxRate", r.TaxRate, 0.21)
	approx(t, "TotalAmount", r.TotalAmount, 242.00)
}

func TestGenericVATBreakdownTable(t *testing.T) {
	text := strings.Join([]string{
		"DESGLOSE IVA",
		"10% 100,00 10,00",
		"21% 200,00 42,00",
		"TOTAL 352,00",
	}, "\n")
	rows := (&Generic{}).Parse(text, "/in/x.pdf")
	r := rows[0]
	approx(t, "TaxBase", r.TaxBase, 300.00)
	approx(t, "TaxAmount", r.TaxAmount, 52.00)
	approx(t, "TotalAmount", r.TotalAmount, 352.00)
	if !strings.Contains(r.Notes, "VARIOS IVAS") || !strings.Contains(r.Notes, "10%+21%") {
		t.Errorf("Notes = %q, want multi-rate listing", r.Notes)
	}
}

func TestGenericDistrustsTotalBelowBase(t *testing.T) {
	text := strings.Join([]string{
		"BASE IMPONIBLE 500,00",
		"CUOTA IVA 105,00",
		"TOTAL 1,00",
	}, "\n")
	rows := (&Generic{}).Parse(text, "/in/x.pdf")
	approx(t, "TotalAmount", rows[0].TotalAmount, 605.00)
}

func TestGenericDerivedTotalRoundTrip(t *testing.T) {
	text := "BASE IMPONIBLE 123,45\nCUOTA IVA 25,92"
	rows := (&Generic{}).Parse(text, "/in/x.pdf")
	r := rows[0]
	if r.TotalAmount == nil || r.TaxBase == nil || r.TaxAmount == nil {
		t.Fatal("expected base, tax and derived total")
	}
	if *r.TotalAmount != invoice.Round2(*r.TaxBase+*r.TaxAmount) {
		t.Errorf("derived total %v != round(base+tax) %v", *r.TotalAmount, invoice.Round2(*r.TaxBase+*r.TaxAmount))
	}
}

func TestGenericZeroTaxLeavesRateOpen(t *testing.T) {
	text := strings.Join([]string{
		"BASE IMPONIBLE 100,00",
		"CUOTA IVA 0,00",
		"TOTAL 100,00",
	}, "\n")
	rows := (&Generic{}).Parse(text, "/in/x.pdf")
	r := rows[0]
	approx(t, "TaxAmount", r.TaxAmount, 0)
	if r.TaxRate != nil {
		t.Errorf("TaxRate = %v, want absent when the tax amount is zero", *r.TaxRate)
	}
	approx(t, "TotalAmount", r.TotalAmount, 100.00)
}

func TestGenericEmptyTextStillYieldsRow(t *testing.T) {
	rows := (&Generic{}).Parse("", "/in/escaneo_042.pdf")
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].InvoiceNumber != "escaneo_042" {
		t.Errorf("InvoiceNumber = %q, want stem fallback", rows[0].InvoiceNumber)
	}
	if rows[0].TaxBase != nil || rows[0].TotalAmount != nil {
		t.Error("empty text must not invent amounts")
	}
}

func TestScoreCandidateWeights(t *testing.T) {
	base := 100.0
	tests := []struct {
		name   string
		c      moneyCandidate
		r      role
		h      scoreHints
		higher moneyCandidate
	}{
		{
			name:   "currency symbol outranks decimals",
			c:      moneyCandidate{value: 10, hasDecimals: true},
			r:      roleBase,
			higher: moneyCandidate{value: 10, hasCurrency: true},
		},
		{
			name:   "plausible VAT ratio outranks big number",
			c:      moneyCandidate{value: 95, hasDecimals: true},
			r:      roleTax,
			h:      scoreHints{base: &base},
			higher: moneyCandidate{value: 21, hasDecimals: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if scoreCandidate(tt.higher, tt.r, tt.h) <= scoreCandidate(tt.c, tt.r, tt.h) {
				t.Errorf("expected %+v to outscore %+v", tt.higher, tt.c)
			}
		})
	}
}

func TestScoreTotalCloseness(t *testing.T) {
	base, tax := 100.0, 21.0
	h := scoreHints{base: &base, tax: &tax}
	exact := moneyCandidate{value: 121.00}
	far := moneyCandidate{value: 500.00}
	if scoreCandidate(exact, roleTotal, h) <= scoreCandidate(far, roleTotal, h) {
		t.Error("candidate near base+tax must outscore a distant one")
	}
}
