// Package export renders reports and mark lists as downloadable documents.
// Renderers are pure: the same input always yields the same content (PDF metadata aside).
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/mark"
	"github.com/nawanshu18/student-result-management-system/core/report"
)

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

var (
	// errors
	ErrNoData        = errors.New("nothing to export")
	ErrUnknownFormat = errors.New("unknown export format")

	reportFormats = []Format{FormatCSV, FormatXLSX, FormatHTML, FormatPDF}
	marksFormats  = []Format{FormatCSV, FormatXLSX}

	reportHeader = []string{"Roll", "Name", "Subject", "Exam", "Marks", "Max", "Percentage"}
	marksHeader  = []string{"ID", "Roll", "Subject", "Exam", "Marks", "Max", "Percentage"}
	totalLabel   = "TOTAL"
)

type Format string

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// ParseFormat validates s against the formats a document kind supports.
func parseFormat(s string, supported []Format) (Format, error) {
	f := Format(core.CleanString(s, true /* lower */))
	if f == "" {
		f = FormatCSV
	}
	for _, sf := range supported {
		if f == sf {
			return f, nil
		}
	}
	names := make([]string, 0, len(supported))
	for _, sf := range supported {
		names = append(names, string(sf))
	}
	return "", core.NewValidationError(ErrUnknownFormat, core.FieldError{
		Field: "format",
		Error: "format must be one of " + strings.Join(names, ", "),
	})
}

// ParseReportFormat accepts csv (default), xlsx, html and pdf.
func ParseReportFormat(s string) (Format, error) { return parseFormat(s, reportFormats) }

// ParseMarksFormat accepts csv (default) and xlsx.
func ParseMarksFormat(s string) (Format, error) { return parseFormat(s, marksFormats) }

// ReportFilename is the download name of a student's report.
func ReportFilename(r report.Report, f Format) string {
	return fmt.Sprintf("result_%s.%s", sanitize(r.Student.Roll), f)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ' ':
			return '_'
		}
		return r
	}, s)
}

// Report renders r in format f. A student without marks still gets a document with zero totals;
// ErrNoData is only returned for a report without a student.
func Report(r report.Report, f Format) ([]byte, error) {
	if r.Student.Roll == "" {
		return nil, ErrNoData
	}
	switch f {
	case FormatCSV:
		return ReportCSV(r)
	case FormatXLSX:
		return ReportXLSX(r)
	case FormatHTML:
		return ReportHTML(r)
	case FormatPDF:
		return ReportPDF(r)
	default:
		return nil, ErrUnknownFormat
	}
}

// Marks renders a list of marks in format f. ErrNoData when marks is empty.
func Marks(marks []mark.Mark, f Format) ([]byte, error) {
	if len(marks) == 0 {
		return nil, ErrNoData
	}
	switch f {
	case FormatCSV:
		return MarksCSV(marks)
	case FormatXLSX:
		return MarksXLSX(marks)
	default:
		return nil, ErrUnknownFormat
	}
}

func formatPct(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// reportRows lays out a report as a table: one row per mark then the totals row.
func reportRows(r report.Report) [][]string {
	rows := make([][]string, 0, len(r.Lines)+1)
	for _, l := range r.Lines {
		rows = append(rows, []string{
			r.Student.Roll, r.Student.Name, l.Subject, l.ExamType,
			strconv.Itoa(l.Score), strconv.Itoa(l.MaxScore), formatPct(l.Percentage),
		})
	}
	rows = append(rows, []string{
		r.Student.Roll, r.Student.Name, totalLabel, "",
		strconv.Itoa(r.Total), strconv.Itoa(r.TotalMax), formatPct(r.Percentage),
	})
	return rows
}

func marksRows(marks []mark.Mark) [][]string {
	rows := make([][]string, 0, len(marks))
	for _, m := range marks {
		rows = append(rows, []string{
			strconv.FormatInt(m.ID, 10), m.Roll, m.Subject, m.ExamType,
			strconv.Itoa(m.Score), strconv.Itoa(m.MaxScore), formatPct(report.Round2(m.Percentage())),
		})
	}
	return rows
}
