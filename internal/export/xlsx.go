package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/facturas-tools/extractor/constants"
	"github.com/facturas-tools/extractor/internal/invoice"
)

const (
	dateFmt     = "dd/mm/yyyy"
	currencyFmt = `"€"#,##0.00`
	percentFmt  = "0.00%"
)

// WriteXLSX writes the consolidated invoice table to path, one sheet, the
// fixed column order from constants.Columns.
func WriteXLSX(rows []invoice.Row, path string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	sheet := constants.SheetName
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	styles, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("build styles: %w", err)
	}

	for i, h := range constants.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, styles.header)
	}

	for i, r := range rows {
		writeRow(f, sheet, i+2, r, styles)
	}

	for col, width := range map[string]float64{
		"A": 12, "B": 22, "C": 40, "D": 14,
		"E": 12, "F": 10, "G": 12, "H": 12, "I": 44,
	} {
		_ = f.SetColWidth(sheet, col, col, width)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	logger.Info("xlsx written",
		"path", path,
		"rows", len(rows),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

type cellStyles struct {
	header   int
	date     int
	currency int
	percent  int
}

func newStyles(f *excelize.File) (cellStyles, error) {
	var s cellStyles
	var err error

	if s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, err
	}
	date, currency, percent := dateFmt, currencyFmt, percentFmt
	if s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &date}); err != nil {
		return s, err
	}
	if s.currency, err = f.NewStyle(&excelize.Style{CustomNumFmt: &currency}); err != nil {
		return s, err
	}
	if s.percent, err = f.NewStyle(&excelize.Style{CustomNumFmt: &percent}); err != nil {
		return s, err
	}
	return s, nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, r invoice.Row, styles cellStyles) {
	write := func(col int, v any, style int) {
		cell, _ := excelize.CoordinatesToCellName(col, rowNum)
		_ = f.SetCellValue(sheet, cell, v)
		if style != 0 {
			_ = f.SetCellStyle(sheet, cell, cell, style)
		}
	}
	writeMoney := func(col int, v *float64) {
		if v != nil {
			write(col, *v, styles.currency)
		}
	}

	// real dates get a date cell so the sheet sorts chronologically;
	// anything unparseable stays text
	if t, err := time.Parse("2006-01-02", r.InvoiceDate); err == nil {
		write(1, t, styles.date)
	} else {
		write(1, r.InvoiceDate, 0)
	}

	write(2, r.InvoiceNumber, 0)
	write(3, r.VendorName, 0)
	write(4, r.VendorTaxID, 0)
	writeMoney(5, r.TaxBase)
	if r.TaxRate != nil {
		write(6, *r.TaxRate, styles.percent)
	}
	writeMoney(7, r.TaxAmount)
	writeMoney(8, r.TotalAmount)
	write(9, r.Notes, 0)
}
