package constants

// Columns is the fixed output column order of the export sheet.
var Columns = []string{
	"invoice_date",
	"invoice_number",
	"vendor_name",
	"vendor_tax_id",
	"tax_base",
	"tax_rate",
	"tax_amount",
	"total_amount",
	"notes",
}

// SheetName is the single sheet written by the exporter.
const SheetName = "Facturas"

// DefaultOutputName is used when no output path is given (written inside the
// input directory, same as the historical tool).
const DefaultOutputName = "facturas_datos_extraidos.xlsx"

// Diagnostic note texts. These surface in the notes column and are the only
// channel for degraded-confidence information, so they are fixed strings.
const (
	NoteOCR         = "OCR"
	NoteNoParser    = "Sin parser"
	NoteNoChildData = "Sin datos del hijo"
	NoteLowQuality  = "revisar: texto de baja calidad"
	NoteMultiVAT    = "VARIOS IVAS"
)

// CanonicalVATRates are the Spanish VAT percentages. A bare integer equal to
// one of these is far more likely a misread rate label than a tax amount.
var CanonicalVATRates = []int{4, 10, 21}
