package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/facturas-tools/extractor/constants"
	"github.com/facturas-tools/extractor/internal/invoice"
	"github.com/facturas-tools/extractor/internal/normalize"
	"github.com/facturas-tools/extractor/internal/parser"
)

// Spawner runs one document in isolation and returns its rows.
type Spawner interface {
	Extract(ctx context.Context, path string) ([]invoice.Row, error)
}

type Config struct {
	ChildTimeout  time.Duration // wall clock per document, default 60s, floor 30s
	ThrottleEvery int           // pause after this many documents, default 6
	ThrottleSleep time.Duration // length of the pause, default 800ms
}

// Driver feeds documents to workers one at a time and aggregates their rows.
type Driver struct {
	cfg     Config
	spawner Spawner
	logger  *slog.Logger
}

func NewDriver(cfg Config, spawner Spawner, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ChildTimeout <= 0 {
		cfg.ChildTimeout = 60 * time.Second
	}
	if cfg.ChildTimeout < 30*time.Second {
		cfg.ChildTimeout = 30 * time.Second
	}
	if cfg.ThrottleEvery <= 0 {
		cfg.ThrottleEvery = 6
	}
	if cfg.ThrottleSleep <= 0 {
		cfg.ThrottleSleep = 800 * time.Millisecond
	}
	return &Driver{cfg: cfg, spawner: spawner, logger: logger}
}

// FindPDFs walks root and returns every .pdf path, case-insensitive, sorted.
func FindPDFs(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if constants.IsPDF(filepath.Ext(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Run processes the documents strictly in order. A document that times out
// or yields nothing becomes a single diagnostic row; the batch always runs
// to the end.
func (d *Driver) Run(ctx context.Context, paths []string) []invoice.Row {
	runID := uuid.NewString()
	d.logger.Info("batch started", "run_id", runID, "documents", len(paths))

	var all []invoice.Row
	for i, path := range paths {
		log := d.logger.With("run_id", runID, "job_id", uuid.NewString(), "path", path)
		all = append(all, d.processOne(ctx, log, path)...)

		// scanned batches hammer the CPU through tesseract; breathe a little
		if (i+1)%d.cfg.ThrottleEvery == 0 && i < len(paths)-1 {
			select {
			case <-ctx.Done():
				d.logger.Warn("batch cancelled", "run_id", runID, "processed", i+1)
				return sortRows(all)
			case <-time.After(d.cfg.ThrottleSleep):
			}
		}
	}

	d.logger.Info("batch finished", "run_id", runID, "rows", len(all))
	return sortRows(all)
}

func (d *Driver) processOne(ctx context.Context, log *slog.Logger, path string) []invoice.Row {
	cctx, cancel := context.WithTimeout(ctx, d.cfg.ChildTimeout)
	defer cancel()

	start := time.Now()
	rows, err := d.spawner.Extract(cctx, path)

	switch {
	case errors.Is(cctx.Err(), context.DeadlineExceeded):
		secs := int(d.cfg.ChildTimeout.Seconds())
		log.Warn("worker timed out", "timeout_s", secs)
		return []invoice.Row{{
			InvoiceNumber: parser.Stem(path),
			Notes:         fmt.Sprintf("Timeout %ds", secs),
		}}
	case err != nil || len(rows) == 0:
		log.Warn("worker returned no usable rows",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return []invoice.Row{{
			InvoiceNumber: parser.Stem(path),
			Notes:         constants.NoteNoChildData,
		}}
	}

	log.Debug("worker ok", "rows", len(rows), "duration_ms", time.Since(start).Milliseconds())
	return rows
}

// sortRows orders the final table by invoice date, undated rows last, ties
// broken by invoice number.
func sortRows(rows []invoice.Row) []invoice.Row {
	sort.SliceStable(rows, func(i, j int) bool {
		ki, kj := normalize.SortKey(rows[i].InvoiceDate), normalize.SortKey(rows[j].InvoiceDate)
		if ki != kj {
			return ki < kj
		}
		return rows[i].InvoiceNumber < rows[j].InvoiceNumber
	})
	return rows
}
