// Package parser turns raw invoice text into structured rows. Vendor-specific
// parsers encode the fixed layouts of known suppliers and are tried in
// priority order; the generic label-and-score parser always matches and runs
// last, so every document yields at least one row.
package parser

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/facturas-tools/extractor/internal/invoice"
	"github.com/facturas-tools/extractor/internal/normalize"
)

// Parser is one {detect, parse} capability. Detect is a cheap predicate over
// the document text; Parse emits one or more rows.
type Parser interface {
	Name() string
	Detect(text string) bool
	Parse(text, path string) []invoice.Row
}

// Registry returns the parsers in detection priority order: specific vendors
// first, the always-matching generic parser last.
func Registry() []Parser {
	return []Parser{
		&Alcampo{},
		&Indusan{},
		&ITV{},
		&Mercadaiz{},
		&O2{},
		&Repsol{},
		&Sorpresa{},
		&Supercontable{},
		&Generic{},
	}
}

// Dispatch runs the first parser whose Detect matches. With the generic
// parser in the registry this always returns at least one row; a nil return
// is only possible with a custom parser list.
func Dispatch(parsers []Parser, text, path string) []invoice.Row {
	for _, p := range parsers {
		if p.Detect(text) {
			return p.Parse(text, path)
		}
	}
	return nil
}

// Stem returns the filename without directory or extension, the fallback
// invoice number for unparseable documents.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// findMoney applies re to text and parses its first capture group as a
// monetary amount.
func findMoney(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, ok := normalize.ParseMoney(m[1])
	if !ok {
		return nil
	}
	return &v
}

// findString applies re to text and returns its first capture group.
func findString(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// deriveTotal fills total = base + tax when both parts are known.
func deriveTotal(base, tax, total *float64) *float64 {
	if total == nil && base != nil && tax != nil {
		return invoice.Num(invoice.Round2(*base + *tax))
	}
	return total
}

// deriveRate fills rate = tax/base when both parts are known and positive.
// A zero tax amount leaves the rate open: genuinely zero-rated lines state
// their rate explicitly, anything else is just a missing figure.
func deriveRate(base, tax *float64) *float64 {
	if base != nil && tax != nil && *base > 0 && *tax > 0 {
		return invoice.Num(invoice.Round6(*tax / *base))
	}
	return nil
}
