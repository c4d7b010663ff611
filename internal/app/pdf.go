package app

import (
    "fmt"
    "time"

    "github.com/jung-kurt/gofpdf"

    "github.com/hyperifyio/gopnl/internal/money"
)

// writeSummaryPDF renders a one-page summary of rec. The page URL, when
// present, is a clickable link.
func writeSummaryPDF(rec Record, outPath string) error {
    pdf := gofpdf.New("P", "mm", "A4", "")
    pdf.SetTitle("7D Realized PnL", true)
    pdf.AddPage()
    // Core fonts are cp1252; translate UTF-8 input.
    tr := pdf.UnicodeTranslatorFromDescriptor("")

    pdf.SetFont("Helvetica", "B", 14)
    pdf.CellFormat(0, 8, tr("7D Realized PnL: "+rec.Wallet), "", 1, "L", false, 0, "")
    pdf.Ln(2)

    value := "not found"
    if rec.PnL7D != nil {
        value = money.FormatUSD(*rec.PnL7D)
    }
    pdf.SetFont("Helvetica", "B", 22)
    pdf.CellFormat(0, 12, value, "", 1, "L", false, 0, "")
    pdf.Ln(2)

    pdf.SetFont("Helvetica", "", 11)
    line := func(k, v string) {
        if v == "" {
            return
        }
        pdf.SetFont("Helvetica", "B", 11)
        pdf.CellFormat(35, 6, k, "", 0, "L", false, 0, "")
        pdf.SetFont("Helvetica", "", 11)
        pdf.MultiCell(0, 6, tr(v), "", "L", false)
    }
    line("Strategy", rec.Strategy)
    line("Confidence", fmt.Sprintf("%.2f", rec.Confidence))
    line("Currency", rec.Currency)
    if rec.TextValue != nil {
        line("Matched text", *rec.TextValue)
    }
    if rec.File != nil {
        line("File", *rec.File)
    }
    if rec.URL != nil {
        pdf.SetFont("Helvetica", "B", 11)
        pdf.CellFormat(35, 6, "URL", "", 0, "L", false, 0, "")
        pdf.SetFont("Helvetica", "U", 11)
        pdf.WriteLinkString(6, *rec.URL, *rec.URL)
        pdf.Ln(6)
        pdf.SetFont("Helvetica", "", 11)
    }
    if rec.DebugContext != nil {
        pdf.Ln(2)
        line("Context", *rec.DebugContext)
    }
    pdf.Ln(4)
    pdf.SetFont("Helvetica", "I", 9)
    pdf.CellFormat(0, 5, "Generated "+time.Now().UTC().Format(time.RFC3339), "", 1, "L", false, 0, "")

    return pdf.OutputFileAndClose(outPath)
}
