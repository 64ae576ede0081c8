package normalize

import (
	"math"
	"strconv"
	"strings"
)

// currency tokens stripped before numeric parsing. The non-breaking and
// narrow-no-break spaces show up in OCR output of Spanish invoices.
var moneyStrip = []string{"€", "EUR", " ", " ", " "}

// ParseMoney parses a Spanish or English formatted amount. When both "," and
// "." appear, the last-occurring separator is the decimal one and the other
// is thousands; a lone comma is decimal. Returns ok=false on anything that is
// not a number.
func ParseMoney(s string) (float64, bool) {
	st := strings.TrimSpace(s)
	if st == "" {
		return 0, false
	}
	for _, sym := range moneyStrip {
		st = strings.ReplaceAll(st, sym, "")
	}
	st = strings.ReplaceAll(st, "%", "")
	if st == "" {
		return 0, false
	}
	lastComma := strings.LastIndex(st, ",")
	lastDot := strings.LastIndex(st, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			st = strings.ReplaceAll(st, ".", "")
			st = strings.Replace(st, ",", ".", 1)
		} else {
			st = strings.ReplaceAll(st, ",", "")
		}
	case lastComma >= 0:
		st = strings.Replace(st, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(st, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParsePercent parses "21", "21%", "21,00 %" into a fraction (0.21). Values
// above 1.0 are whole-number percents and divided by 100; values at or below
// 1.0 are assumed to be fractions already.
func ParsePercent(s string) (float64, bool) {
	st := strings.TrimSpace(s)
	st = strings.TrimSuffix(st, "%")
	st = strings.ReplaceAll(st, " ", "")
	st = strings.ReplaceAll(st, " ", "")
	st = strings.ReplaceAll(st, ",", ".")
	v, err := strconv.ParseFloat(st, 64)
	if err != nil {
		return 0, false
	}
	return FractionFromPercent(v), true
}

// FractionFromPercent converts a possibly whole-number percent to a fraction:
// 21 -> 0.21, 0.21 -> 0.21.
func FractionFromPercent(v float64) float64 {
	if v > 1.0 {
		v = v / 100.0
	}
	return round6(v)
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
