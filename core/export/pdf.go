package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core/report"
)

var (
	pdfColWidths = []float64{60, 35, 25, 25, 30}
	pdfHeader    = []string{"Subject", "Exam", "Marks", "Max", "Percentage"}
)

// ReportPDF renders an A4 page with the student details, the marks table and the totals.
func ReportPDF(r report.Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Result - %s", r.Student.Roll), true)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("") // core fonts are cp1252
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Student Result", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr("Name: "+r.Student.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Roll: "+r.Student.Roll), "", 1, "L", false, 0, "")
	if r.Student.Class != "" {
		pdf.CellFormat(0, 6, tr("Class: "+r.Student.Class), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range pdfHeader {
		pdf.CellFormat(pdfColWidths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, l := range r.Lines {
		cells := []string{tr(l.Subject), tr(l.ExamType), strconv.Itoa(l.Score), strconv.Itoa(l.MaxScore), formatPct(l.Percentage)}
		for i, c := range cells {
			align := "R"
			if i < 2 {
				align = "L"
			}
			pdf.CellFormat(pdfColWidths[i], 7, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total: %d / %d", r.Total, r.TotalMax), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Percentage: %s%%", formatPct(r.Percentage)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Grade: "+r.Grade, "", 1, "L", false, 0, "")
	if r.Rank > 0 {
		pdf.CellFormat(0, 6, fmt.Sprintf("Rank: %d of %d", r.Rank, r.ClassSize), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "rendering pdf report")
	}
	return buf.Bytes(), nil
}
