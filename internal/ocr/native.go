package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// nativeText reads the embedded text layer, in-process first and through
// pdftotext when the library cannot cope with the file.
func (e *Extractor) nativeText(ctx context.Context, path string) string {
	text, err := textLayer(path)
	if err == nil && strings.TrimSpace(text) != "" {
		return text
	}
	if err != nil {
		e.logger.Debug("pdf text layer failed", "path", path, "error", err)
	}

	text, err = e.pdftotext(ctx, path)
	if err != nil {
		return ""
	}
	return text
}

// textLayer joins the plain text of every page. The pdf package panics on
// some malformed files, so the whole read is fenced.
func textLayer(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf text layer: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		txt, perr := p.GetPlainText(nil)
		if perr != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
	}
	return b.String(), nil
}

func (e *Extractor) pdftotext(ctx context.Context, path string) (string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, _, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
