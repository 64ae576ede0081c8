package ocr

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang         string // default "spa+eng"
	DPI          int    // rasterization DPI for scanned PDFs, default 150, floor 72
	MaxPages     int    // 0 = no limit
	MinNativeLen int    // text layer shorter than this is treated as unusable, default 80

	EnableOCR      bool
	DetectRotation bool // run an orientation pass per page and straighten
	ZoneOCR        bool // recognize header/footer/margin/totals crops on top of the full page

	PageSleep   time.Duration // pause between page recognitions
	TessdataDir string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "spa+eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 150
	}
	if cfg.DPI < 72 {
		cfg.DPI = 72
	}
	if cfg.MinNativeLen <= 0 {
		cfg.MinNativeLen = 80
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// GetText returns the document text and whether OCR produced it. Acquisition
// never fails: a document we cannot read yields "" and the caller decides
// what a row without text looks like.
func (e *Extractor) GetText(ctx context.Context, path string) (string, bool) {
	start := time.Now()

	text := e.nativeText(ctx, path)
	if len(strings.TrimSpace(text)) >= e.cfg.MinNativeLen {
		e.logger.Debug("native text layer ok",
			"path", path,
			"chars", len(text),
			"duration_ms", time.Since(start).Milliseconds())
		return text, false
	}

	if !e.cfg.EnableOCR {
		e.logger.Debug("native text short, ocr disabled", "path", path, "chars", len(text))
		return text, false
	}

	e.logger.Info("native text short, falling back to ocr", "path", path, "chars", len(text))
	text = e.ocrText(ctx, path)
	e.logger.Debug("ocr done",
		"path", path,
		"chars", len(text),
		"duration_ms", time.Since(start).Milliseconds())
	return text, true
}
