package constants

import "strings"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsPDF reports whether ext names a PDF file (case-insensitive, dot optional).
func IsPDF(ext string) bool {
	return NormalizeExt(ext) == "pdf"
}
