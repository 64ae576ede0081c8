package invoice

import (
	"math"
	"strings"
)

// Row is one extracted invoice record. A single PDF may produce more than one
// row (e.g. a service line plus a zero-rated fee line). Optional monetary
// fields are pointers so "absent" and "0.00" stay distinguishable all the way
// into the spreadsheet. JSON tags double as the wire format between the batch
// driver and its isolated worker process.
type Row struct {
	InvoiceDate   string   `json:"invoice_date,omitempty"` // ISO yyyy-mm-dd, "" when undetectable
	InvoiceNumber string   `json:"invoice_number,omitempty"`
	VendorName    string   `json:"vendor_name,omitempty"`
	VendorTaxID   string   `json:"vendor_tax_id,omitempty"`
	TaxBase       *float64 `json:"tax_base,omitempty"`
	TaxRate       *float64 `json:"tax_rate,omitempty"` // fraction in [0,1]
	TaxAmount     *float64 `json:"tax_amount,omitempty"`
	TotalAmount   *float64 `json:"total_amount,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// AppendNote adds a diagnostic flag to the semicolon-joined notes field.
func (r *Row) AppendNote(note string) {
	if note == "" {
		return
	}
	if r.Notes == "" {
		r.Notes = note
		return
	}
	r.Notes = r.Notes + "; " + note
}

// HasNote reports whether the notes field already carries the given flag.
func (r *Row) HasNote(note string) bool {
	for _, n := range strings.Split(r.Notes, ";") {
		if strings.TrimSpace(n) == note {
			return true
		}
	}
	return false
}

// Num returns a pointer to v, for filling optional fields.
func Num(v float64) *float64 { return &v }

// Round2 rounds to cents.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// Round6 rounds to six decimals, used for VAT fractions.
func Round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
