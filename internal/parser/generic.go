package parser

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/facturas-tools/extractor/constants"
	"github.com/facturas-tools/extractor/internal/invoice"
	"github.com/facturas-tools/extractor/internal/normalize"
)

// Label tables for the three monetary roles. Tried in order; the number may
// sit on the label line or within the next few lines.
var (
	baseLabels = compileAll(
		`BASE\s+IMPONIBLE`,
		`IMPORTE\s+BASE`,
		`\bBI\b`,
		`NETO`,
		`SUBTOTAL`,
		`TOTAL\s+BASE\s+IMPONIBLE`,
	)
	taxLabels = compileAll(
		`CUOTA\s*IVA`,
		`IMPORTE\s*IVA`,
		`\bIVA\b`,
		`TOTAL\s*IVA\b`,
		`TOTAL\s+IMPUESTO`,
	)
	totalLabels = compileAll(
		`TOTAL\s*(?:FACTURA|A\s*PAGAR|EUR|€)?\b`,
		`\bTOTAL\b`,
		`TOTAL\s+DE\s+LA\s+FACTURA`,
	)
)

var (
	// money candidates; a trailing % marks a rate, not an amount
	reMoney = regexp.MustCompile(`(€?[0-9][0-9.,]*)(\s*%)?`)
	// standalone rate like "21%" or "10,5 %"
	rePct = regexp.MustCompile(`([0-9]{1,2}(?:[.,][0-9]{1,2})?)\s*%`)
	// one row of a VAT breakdown table: rate% ... base ... tax
	reVATRow = regexp.MustCompile(`([0-9]{1,2}(?:[.,][0-9]{1,2})?)\s*%[\s\S]*?([0-9][0-9.,]*)[\s\S]*?([0-9][0-9.,]*)`)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// Monetary roles for candidate scoring.
type role int

const (
	roleBase role = iota
	roleTax
	roleTotal
)

// Named scoring weights (kept explicit so the heuristic stays unit-testable).
const (
	weightCurrencySymbol   = 3.0 // "€" prefix: almost certainly money
	weightExplicitDecimals = 1.0 // bare integers are often quantities
	weightPlausibleRatio   = 3.0 // tax candidate within the VAT ratio ceiling
	weightTotalCloseness   = 3.0 // total candidate near base*(1+rate) or base+tax
	maxVATRatio            = 0.35
)

type moneyCandidate struct {
	value       float64
	hasCurrency bool
	hasDecimals bool
}

type scoreHints struct {
	base *float64
	tax  *float64
	rate *float64
}

// scoreCandidate rates one numeric candidate for a monetary role.
func scoreCandidate(c moneyCandidate, r role, h scoreHints) float64 {
	s := 0.0
	if c.hasCurrency {
		s += weightCurrencySymbol
	}
	if c.hasDecimals {
		s += weightExplicitDecimals
	}
	if r == roleTax && h.base != nil && *h.base > 0 && c.value <= *h.base*maxVATRatio {
		s += weightPlausibleRatio
	}
	if r == roleTotal {
		var target float64
		switch {
		case h.base != nil && h.rate != nil:
			target = *h.base * (1.0 + *h.rate)
		case h.base != nil && h.tax != nil:
			target = *h.base + *h.tax
		}
		if target > 0 {
			closeness := weightTotalCloseness - math.Abs(c.value-target)/math.Max(1.0, target)*10
			if closeness > 0 {
				s += closeness
			}
		}
	}
	return s
}

func pickCandidate(cands []moneyCandidate, r role, h scoreHints) *moneyCandidate {
	if len(cands) == 0 {
		return nil
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return scoreCandidate(cands[i], r, h) > scoreCandidate(cands[j], r, h)
	})
	return &cands[0]
}

// Generic is the terminal fallback parser: label proximity plus candidate
// scoring, with a VAT breakdown table override for multi-rate invoices.
type Generic struct{}

func (*Generic) Name() string { return "GENERIC" }

// Detect always matches; the generic parser is the registry's last entry.
func (*Generic) Detect(string) bool { return true }

func (g *Generic) Parse(text, path string) []invoice.Row {
	lines := nonEmptyLines(text)

	tableBase, tableTax, tableRates := vatTable(text)

	var rate *float64
	if m := rePct.FindStringSubmatch(text); m != nil {
		if v, ok := normalize.ParsePercent(m[1]); ok {
			rate = &v
		}
	}

	base := tableBase
	if base == nil {
		if c := findByLabel(lines, baseLabels, roleBase, scoreHints{}); c != nil {
			base = invoice.Num(c.value)
		}
	}
	tax := tableTax
	var taxBareInteger bool
	if tax == nil {
		if c := findByLabel(lines, taxLabels, roleTax, scoreHints{base: base, rate: rate}); c != nil {
			tax = invoice.Num(c.value)
			taxBareInteger = !c.hasDecimals
		}
	}
	var total *float64
	if c := findByLabel(lines, totalLabels, roleTotal, scoreHints{base: base, tax: tax, rate: rate}); c != nil {
		total = invoice.Num(c.value)
	}

	// A bare integer equal to a canonical VAT percentage next to the tax
	// label is a misread rate, not an amount ("IVA 21" vs "IVA 21,00");
	// reassign it and force the amount to be re-derived.
	if tax != nil && taxBareInteger && isCanonicalRateValue(*tax) {
		if rate == nil {
			rate = invoice.Num(*tax / 100.0)
		}
		tax = nil
	}

	if rate == nil {
		rate = deriveRate(base, tax)
	}
	total = deriveTotal(base, tax, total)

	// A found total smaller than the base is a mis-extraction; rebuild it.
	if base != nil && total != nil && *total < *base {
		switch {
		case rate != nil:
			total = invoice.Num(invoice.Round2(*base * (1.0 + *rate)))
		case tax != nil:
			total = invoice.Num(invoice.Round2(*base + *tax))
		}
	}

	row := invoice.Row{
		InvoiceDate:   normalize.ParseDate(text),
		InvoiceNumber: Stem(path),
		TaxBase:       base,
		TaxRate:       rate,
		TaxAmount:     tax,
		TotalAmount:   total,
	}
	if len(tableRates) > 1 {
		row.AppendNote(constants.NoteMultiVAT + ": " + formatRates(tableRates))
	}
	return []invoice.Row{row}
}

// vatTable sums base and tax across all matched breakdown rows; on multi-rate
// invoices this beats any single label-proximity candidate. Returns the
// distinct rates in first-seen order.
func vatTable(text string) (base, tax *float64, rates []float64) {
	var sumBase, sumTax float64
	var found bool
	seen := make(map[float64]struct{})
	for _, m := range reVATRow.FindAllStringSubmatch(text, -1) {
		b, okB := normalize.ParseMoney(m[2])
		c, okC := normalize.ParseMoney(m[3])
		if !okB || !okC {
			continue
		}
		sumBase += b
		sumTax += c
		found = true
		if r, ok := normalize.ParsePercent(m[1]); ok {
			if _, dup := seen[r]; !dup {
				seen[r] = struct{}{}
				rates = append(rates, r)
			}
		}
	}
	if !found {
		return nil, nil, nil
	}
	return invoice.Num(invoice.Round2(sumBase)), invoice.Num(invoice.Round2(sumTax)), rates
}

// findByLabel scans for a label and collects numeric candidates from the
// label line plus a small lookahead window, then picks the best-scoring one.
func findByLabel(lines []string, labels []*regexp.Regexp, r role, h scoreHints) *moneyCandidate {
	for _, label := range labels {
		for i, ln := range lines {
			if !label.MatchString(ln) {
				continue
			}
			window := lines[i:min(i+5, len(lines))]
			var cands []moneyCandidate
			for _, w := range window {
				hasCurrency := strings.Contains(w, "€")
				for _, m := range reMoney.FindAllStringSubmatch(w, -1) {
					if m[2] != "" {
						continue // percentage, not money
					}
					v, ok := normalize.ParseMoney(m[1])
					if !ok {
						continue
					}
					cands = append(cands, moneyCandidate{
						value:       v,
						hasCurrency: hasCurrency,
						hasDecimals: strings.ContainsAny(m[1], ".,"),
					})
				}
			}
			if c := pickCandidate(cands, r, h); c != nil {
				return c
			}
		}
	}
	return nil
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(ln); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isCanonicalRateValue(v float64) bool {
	if v != math.Trunc(v) {
		return false
	}
	for _, r := range constants.CanonicalVATRates {
		if int(v) == r {
			return true
		}
	}
	return false
}

func formatRates(rates []float64) string {
	parts := make([]string, 0, len(rates))
	for _, r := range rates {
		pct := r * 100
		if pct == math.Trunc(pct) {
			parts = append(parts, fmt.Sprintf("%d%%", int(pct)))
		} else {
			parts = append(parts, fmt.Sprintf("%.2f%%", pct))
		}
	}
	return strings.Join(parts, "+")
}
