package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/facturas-tools/extractor/constants"
	"github.com/facturas-tools/extractor/internal/batch"
	"github.com/facturas-tools/extractor/internal/catalog"
	"github.com/facturas-tools/extractor/internal/common"
	"github.com/facturas-tools/extractor/internal/export"
	"github.com/facturas-tools/extractor/internal/extract"
	"github.com/facturas-tools/extractor/internal/ocr"
	"github.com/facturas-tools/extractor/internal/parser"
	"github.com/facturas-tools/extractor/internal/vendor"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == batch.WorkerCommand {
		os.Exit(runWorker(os.Args[2:]))
	}
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	cfg := common.LoadConfig()

	fs := flag.NewFlagSet("facturas", flag.ExitOnError)
	input := fs.String("input", "", "directory with the PDF invoices (required)")
	output := fs.String("output", "", "output XLSX path (default <input>/"+constants.DefaultOutputName+")")
	ocrMode := fs.String("ocr", boolWord(cfg.OCR.Enabled), "OCR fallback for scanned documents: on|off")
	dpi := fs.Int("dpi", cfg.OCR.DPI, "render DPI for OCR (floor 72)")
	poppler := fs.String("poppler", cfg.OCR.PopplerDir, "directory with pdftotext/pdftoppm (default $PATH)")
	tesseract := fs.String("tesseract", cfg.OCR.Tesseract, "tesseract binary")
	sleepMS := fs.Int("sleep-ms", int(cfg.OCR.PageSleep.Milliseconds()), "pause between OCR pages, milliseconds")
	throttleEvery := fs.Int("throttle-every", cfg.Batch.ThrottleEvery, "documents between throttle pauses")
	throttleMS := fs.Int("throttle-ms", int(cfg.Batch.ThrottleSleep.Milliseconds()), "throttle pause, milliseconds")
	childTimeout := fs.Int("child-timeout-s", int(cfg.Batch.ChildTimeout.Seconds()), "per-document timeout, seconds (floor 30)")
	catalogPath := fs.String("catalog", cfg.Catalog, "vendor catalog JSON (default embedded)")
	logLevel := fs.String("log", "info", "log level: debug|info|warn|error")
	_ = fs.Parse(argv)

	cfg.InputDir = *input
	cfg.OutputPath = *output
	cfg.Catalog = *catalogPath
	cfg.OCR.Enabled = *ocrMode != "off"
	cfg.OCR.DPI = *dpi
	cfg.OCR.PopplerDir = *poppler
	cfg.OCR.Tesseract = *tesseract
	cfg.OCR.PageSleep = time.Duration(*sleepMS) * time.Millisecond
	cfg.Batch.ThrottleEvery = *throttleEvery
	cfg.Batch.ThrottleSleep = time.Duration(*throttleMS) * time.Millisecond
	cfg.Batch.ChildTimeout = time.Duration(*childTimeout) * time.Second
	cfg.LogLevel = common.ParseLogLevel(*logLevel)
	cfg.Clamp()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	// validate the catalog before spending minutes on OCR; workers load it again
	if _, err := loadCatalog(cfg.Catalog); err != nil {
		fmt.Fprintln(os.Stderr, common.NewAppError("CONFIG_ERROR", err.Error(), common.ErrBadCatalog))
		return 1
	}

	paths, err := batch.FindPDFs(cfg.InputDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, common.WrapError(err, "scan input directory"))
		return 1
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, common.NewAppError("CONFIG_ERROR", "no PDF files under "+cfg.InputDir, common.ErrNoDocuments))
		return 1
	}

	outPath := cfg.OutputPath
	if outPath == "" {
		outPath = filepath.Join(cfg.InputDir, constants.DefaultOutputName)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spawner := batch.NewProcessSpawner(workerArgs(cfg, *logLevel), logger)
	driver := batch.NewDriver(batch.Config{
		ChildTimeout:  cfg.Batch.ChildTimeout,
		ThrottleEvery: cfg.Batch.ThrottleEvery,
		ThrottleSleep: cfg.Batch.ThrottleSleep,
	}, spawner, logger)

	rows := driver.Run(ctx, paths)
	if err := export.WriteXLSX(rows, outPath, logger); err != nil {
		fmt.Fprintln(os.Stderr, common.WrapError(err, "write output"))
		return 1
	}
	return 0
}

// workerArgs forwards the acquisition settings so every child behaves like
// the parent was configured.
func workerArgs(cfg *common.Config, logLevel string) []string {
	args := []string{
		"-ocr", boolWord(cfg.OCR.Enabled),
		"-dpi", strconv.Itoa(cfg.OCR.DPI),
		"-tesseract", cfg.OCR.Tesseract,
		"-sleep-ms", strconv.Itoa(int(cfg.OCR.PageSleep.Milliseconds())),
		"-log", logLevel,
	}
	if cfg.OCR.PopplerDir != "" {
		args = append(args, "-poppler", cfg.OCR.PopplerDir)
	}
	if cfg.Catalog != "" {
		args = append(args, "-catalog", cfg.Catalog)
	}
	return args
}

// runWorker is the hidden child entrypoint: one document in, one JSON row
// list on stdout. Logs go to stderr so they never mix with the result.
func runWorker(argv []string) int {
	fs := flag.NewFlagSet("facturas worker", flag.ExitOnError)
	ocrMode := fs.String("ocr", "on", "")
	dpi := fs.Int("dpi", 150, "")
	poppler := fs.String("poppler", "", "")
	tesseract := fs.String("tesseract", "tesseract", "")
	sleepMS := fs.Int("sleep-ms", 0, "")
	catalogPath := fs.String("catalog", "", "")
	logLevel := fs.String("log", "info", "")
	_ = fs.Parse(argv)

	path := fs.Arg(0)
	if path == "" {
		fmt.Fprintln(os.Stderr, "worker: missing document path")
		return 2
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: common.ParseLogLevel(*logLevel)}))
	slog.SetDefault(logger)

	cat, err := loadCatalog(*catalogPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, common.WrapError(err, "worker: vendor catalog"))
		return 2
	}

	acq := ocr.NewExtractor(ocr.Config{
		Pdftotext:      toolPath(*poppler, "pdftotext"),
		Pdftoppm:       toolPath(*poppler, "pdftoppm"),
		Tesseract:      *tesseract,
		DPI:            *dpi,
		EnableOCR:      *ocrMode != "off",
		DetectRotation: true,
		ZoneOCR:        true,
		PageSleep:      time.Duration(*sleepMS) * time.Millisecond,
		TessdataDir:    os.Getenv("TESSDATA_PREFIX"),
	}, logger)

	o := extract.NewOrchestrator(acq, parser.Registry(), vendor.NewResolver(cat, logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := batch.RunWorker(ctx, o, path, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, common.WrapError(err, "worker: encode result"))
		return 2
	}
	return 0
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

func toolPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

func boolWord(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
