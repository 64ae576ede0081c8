package ocr

import "regexp"

var (
	reArtifactDate = regexp.MustCompile(`\b\d{1,2}[/.-]\d{1,2}[/.-]20\d{2}\b`)
	reArtifactEuro = regexp.MustCompile(`(?i)€|\bEUR\b`)
	reArtifactIVA  = regexp.MustCompile(`(?i)\b(iva|base imponible|total|factura)\b`)
	reArtifactAmt  = regexp.MustCompile(`\b\d{1,3}(\.\d{3})*,\d{2}\b|\b\d+[.,]\d{2}\b`)
)

// Confidence is a cheap heuristic over the acquired text: it looks for the
// artifacts every Spanish invoice carries (a date, euro amounts, the usual
// labels). A page of recognition noise scores low.
func Confidence(text string) float32 {
	score := float32(0.2) // base
	if reArtifactDate.MatchString(text) {
		score += 0.2
	}
	if reArtifactEuro.MatchString(text) {
		score += 0.15
	}
	if reArtifactIVA.MatchString(text) {
		score += 0.2
	}
	if reArtifactAmt.MatchString(text) {
		score += 0.15
	}
	if len(text) > 200 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// LowConfidence marks text worth a manual review note.
func LowConfidence(text string) bool {
	return Confidence(text) < 0.5
}
