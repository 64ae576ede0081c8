package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/facturas-tools/extractor/constants"
	"github.com/facturas-tools/extractor/internal/invoice"
	"github.com/facturas-tools/extractor/internal/ocr"
	"github.com/facturas-tools/extractor/internal/parser"
	"github.com/facturas-tools/extractor/internal/vendor"
)

// TextAcquirer is the acquisition side of the pipeline. *ocr.Extractor
// implements it; tests inject canned text.
type TextAcquirer interface {
	GetText(ctx context.Context, path string) (text string, ocrUsed bool)
}

// Orchestrator runs one document through acquisition, parser dispatch and
// vendor resolution.
type Orchestrator struct {
	acq      TextAcquirer
	parsers  []parser.Parser
	resolver *vendor.Resolver
	logger   *slog.Logger
}

func NewOrchestrator(acq TextAcquirer, parsers []parser.Parser, resolver *vendor.Resolver, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{acq: acq, parsers: parsers, resolver: resolver, logger: logger}
}

// Extract never fails: whatever goes wrong inside a document degrades to a
// single diagnostic row so one bad PDF cannot take the batch down.
func (o *Orchestrator) Extract(ctx context.Context, path string) (rows []invoice.Row) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("extraction panicked", "path", path, "panic", r)
			rows = []invoice.Row{{
				InvoiceNumber: parser.Stem(path),
				Notes:         fmt.Sprintf("Error: %v", r),
			}}
		}
	}()

	text, ocrUsed := o.acq.GetText(ctx, path)

	rows = parser.Dispatch(o.parsers, text, path)
	if len(rows) == 0 {
		rows = []invoice.Row{{InvoiceNumber: parser.Stem(path), Notes: constants.NoteNoParser}}
	}

	res := o.resolver.Resolve(text)
	lowQuality := ocrUsed && text != "" && ocr.LowConfidence(text)

	for i := range rows {
		r := &rows[i]

		// the resolver only fills what a parser left open
		filled := false
		if r.VendorName == "" && res.Name != "" {
			r.VendorName = res.Name
			filled = true
		}
		if r.VendorTaxID == "" && res.TaxID != "" {
			r.VendorTaxID = res.TaxID
			filled = true
		}
		if filled {
			for _, n := range res.Notes {
				r.AppendNote(n)
			}
		}

		if r.TotalAmount == nil && r.TaxBase != nil && r.TaxAmount != nil {
			r.TotalAmount = invoice.Num(invoice.Round2(*r.TaxBase + *r.TaxAmount))
		}

		if ocrUsed {
			r.AppendNote(constants.NoteOCR)
		}
		if lowQuality {
			r.AppendNote(constants.NoteLowQuality)
		}
	}

	o.logger.Info("document extracted",
		"path", path,
		"rows", len(rows),
		"ocr", ocrUsed,
		"confidence", ocr.Confidence(text))
	return rows
}
