package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MinYear rejects implausibly old dates; anything a generic pattern matches
// before this year is treated as noise (order references, expiry dates of
// old card imprints and the like).
const MinYear = 2018

var monthsES = map[string]time.Month{
	"ENERO":      time.January,
	"FEBRERO":    time.February,
	"MARZO":      time.March,
	"ABRIL":      time.April,
	"MAYO":       time.May,
	"JUNIO":      time.June,
	"JULIO":      time.July,
	"AGOSTO":     time.August,
	"SEPTIEMBRE": time.September,
	"SETIEMBRE":  time.September,
	"OCTUBRE":    time.October,
	"NOVIEMBRE":  time.November,
	"DICIEMBRE":  time.December,
}

var (
	reDateLabeled = regexp.MustCompile(`(?i)Fecha\s+Factura\s*[:#]?\s*(\d{1,2})/(\d{1,2})/(\d{4})`)
	reDateSlash   = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	reDateDash    = regexp.MustCompile(`(\d{1,2})-(\d{1,2})-(\d{4})`)
	reDateDot     = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})`)
	reDateTextual = regexp.MustCompile(`(?i)(\d{1,2})\s+de\s+(\p{L}+)\s+de\s+(\d{4})`)
)

// ParseDate extracts the invoice date from free text and returns it in ISO
// form (yyyy-mm-dd), or "" when nothing plausible matches. Resolution order:
// an explicit "Fecha Factura" label wins; otherwise all generic day/month/year
// matches are collected and the most recent valid one is picked (invoices
// often carry an older order or delivery date next to the invoice date);
// finally the textual "21 de Junio de 2025" form is tried.
func ParseDate(text string) string {
	if m := reDateLabeled.FindStringSubmatch(text); m != nil {
		if d, ok := buildDate(m[3], m[2], m[1]); ok {
			return d.Format("2006-01-02")
		}
	}

	var candidates []time.Time
	for _, re := range []*regexp.Regexp{reDateSlash, reDateDash, reDateDot} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if d, ok := buildDate(m[3], m[2], m[1]); ok {
				candidates = append(candidates, d)
			}
		}
	}
	if len(candidates) > 0 {
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.After(best) {
				best = c
			}
		}
		return best.Format("2006-01-02")
	}

	if m := reDateTextual.FindStringSubmatch(text); m != nil {
		mon, ok := monthsES[CleanCompany(m[2])]
		if ok {
			if d, err := buildTextualDate(m[3], mon, m[1]); err == nil {
				return d.Format("2006-01-02")
			}
		}
	}
	return ""
}

func buildDate(year, month, day string) (time.Time, bool) {
	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	if mo < 1 || mo > 12 || y < MinYear || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 31/02 into March; reject such overflow
	if t.Day() != d || t.Month() != time.Month(mo) {
		return time.Time{}, false
	}
	return t, true
}

func buildTextualDate(year string, mon time.Month, day string) (time.Time, error) {
	y, _ := strconv.Atoi(year)
	d, _ := strconv.Atoi(day)
	if y < MinYear {
		return time.Time{}, fmt.Errorf("year %d before cutoff", y)
	}
	t := time.Date(y, mon, d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || t.Month() != mon {
		return time.Time{}, fmt.Errorf("invalid day %d for %s", d, mon)
	}
	return t, nil
}

// SortKey turns an ISO date into a sortable value; empty dates sort last so
// undated diagnostic rows end up at the bottom of the sheet.
func SortKey(isoDate string) string {
	if strings.TrimSpace(isoDate) == "" {
		return "9999-99-99"
	}
	return isoDate
}
