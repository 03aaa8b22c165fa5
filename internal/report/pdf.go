package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFOptions controls the rendering of the session summary.
type PDFOptions struct {
	Language Language
	// QRSize is the pixel size of the fingerprint QR code; 0 uses the
	// default and a negative value leaves the code out.
	QRSize int
}

// SavePDF renders the summary of a decoded dump into a PDF document.
func SavePDF(sum Summary, out string, opts PDFOptions) error {
	tr := NewTranslator(opts.Language)
	pdf := gofpdf.New("P", "mm", "A4", "")
	utf := pdf.UnicodeTranslatorFromDescriptor("")
	label := func(key string) string { return utf(tr.T(key)) }

	pdf.SetTitle(tr.T("title"), true)
	pdf.SetAuthor("tdrctl", false)
	pdf.SetCreator("tdrctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, label("title"))
	pdf.Ln(12)

	addSummarySection(pdf, sum, label)
	if opts.QRSize >= 0 && sum.SHA256 != "" {
		if err := addFingerprintQR(pdf, sum.SHA256, opts.QRSize); err != nil {
			return err
		}
	}
	addSessionTable(pdf, sum.Sessions, label)
	addFailures(pdf, sum, tr, utf)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addSummarySection(pdf *gofpdf.Fpdf, sum Summary, label func(string) string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, label("summary"))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	items := []struct {
		key   string
		value string
	}{
		{"source", emptyFallback(sum.Source, "-")},
		{"sha256", emptyFallback(sum.SHA256, "-")},
		{"generated", sum.Generated.Format(time.RFC3339)},
		{"sessions", strconv.Itoa(len(sum.Sessions))},
		{"hrSamples", strconv.FormatInt(sum.Metrics.HRSamples, 10)},
		{"gpsFixes", strconv.FormatInt(sum.Metrics.GPSFixes, 10)},
		{"packetErrors", strconv.FormatInt(sum.Metrics.PacketErrors, 10)},
		{"failures", strconv.Itoa(len(sum.Failures))},
	}
	for _, item := range items {
		pdf.CellFormat(40, 6, label(item.key), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addFingerprintQR(pdf *gofpdf.Fpdf, hash string, size int) error {
	png, err := FingerprintQR(hash, size)
	if err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("fingerprint", opts, bytes.NewReader(png))
	pageW, _ := pdf.GetPageSize()
	_, _, right, _ := pdf.GetMargins()
	pdf.ImageOptions("fingerprint", pageW-right-30, 30, 30, 30, false, opts, 0, "")
	return nil
}

func addSessionTable(pdf *gofpdf.Fpdf, rows []SessionRow, label func(string) string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, label("sessions"))
	pdf.Ln(9)

	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, label("noSessions"), "", "L", false)
		return
	}

	headers := []string{"col.index", "col.kind", "col.start", "col.end", "col.samples", "col.errors", "col.distance"}
	widths := []float64{10, 30, 38, 38, 20, 16, 28}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, label(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		values := []string{
			strconv.Itoa(row.Index),
			kindLabel(row, label),
			row.Start.Format("2006-01-02 15:04:05"),
			row.End.Format("2006-01-02 15:04:05"),
			strconv.Itoa(row.Samples),
			strconv.Itoa(row.PacketErrors),
			distanceLabel(row),
		}
		renderTableRow(pdf, widths, values, 5)
	}
	pdf.Ln(4)
}

func addFailures(pdf *gofpdf.Fpdf, sum Summary, tr Translator, utf func(string) string) {
	if len(sum.Failures) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, utf(tr.T("failures")))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 9)
	for _, f := range sum.Failures {
		pdf.MultiCell(0, 5, utf(tr.Format("failure", f.Session, f.Offset, f.Error)), "", "L", false)
	}
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		lines := pdf.SplitText(emptyFallback(val, "-"), widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		pdf.MultiCell(widths[i], lineHeight, strings.Join(lines, "\n"), "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

func kindLabel(row SessionRow, label func(string) string) string {
	parts := []string{strings.ToUpper(row.Kind)}
	if row.Combined {
		parts = append(parts, label("combined"))
	}
	if row.Incomplete {
		parts = append(parts, label("incomplete"))
	}
	return strings.Join(parts, ", ")
}

func distanceLabel(row SessionRow) string {
	if row.Units == "" {
		return "-"
	}
	return fmt.Sprintf("%.3f %s", row.Distance, row.Units)
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
