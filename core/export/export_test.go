package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/mark"
	"github.com/nawanshu18/student-result-management-system/core/report"
	"github.com/nawanshu18/student-result-management-system/core/student"
)

func sampleReport() report.Report {
	r := report.Build(
		student.Student{Roll: "S-01", Name: "Asha Rao", Class: "10A"},
		[]mark.Mark{
			{Roll: "S-01", Subject: "Maths", ExamType: "final", Score: 80, MaxScore: 100},
			{Roll: "S-01", Subject: "Physics", ExamType: "final", Score: 30, MaxScore: 50},
		},
	)
	r.Rank, r.ClassSize = 2, 3
	return r
}

func TestParseFormat(t *testing.T) {
	f, err := ParseReportFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseReportFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseMarksFormat("pdf")
	require.Error(t, err)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, ErrUnknownFormat, vErr.Err)
	assert.Equal(t, "format", vErr.Fields[0].Field)
}

func TestReport_noData(t *testing.T) {
	for _, f := range reportFormats {
		_, err := Report(report.Report{}, f)
		assert.Equal(t, ErrNoData, err, "format %s", f)
	}
	_, err := Marks(nil, FormatCSV)
	assert.Equal(t, ErrNoData, err)
}

func TestReport_withoutMarks(t *testing.T) {
	r := report.Build(student.Student{Roll: "S-02", Name: "Bilal Khan", Class: "10A"}, nil)
	for _, f := range reportFormats {
		data, err := Report(r, f)
		require.NoError(t, err, "format %s", f)
		assert.NotEmpty(t, data, "format %s", f)
	}

	data, err := Report(r, FormatCSV)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Roll", "Name", "Subject", "Exam", "Marks", "Max", "Percentage"},
		{"S-02", "Bilal Khan", "TOTAL", "", "0", "0", "0.00"},
	}, rows)

	data, err = Report(r, FormatHTML)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total: 0 / 0")
	assert.Contains(t, string(data), "Grade: F")
}

func TestReportCSV(t *testing.T) {
	r := sampleReport()
	data, err := Report(r, FormatCSV)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Roll", "Name", "Subject", "Exam", "Marks", "Max", "Percentage"},
		{"S-01", "Asha Rao", "Maths", "final", "80", "100", "80.00"},
		{"S-01", "Asha Rao", "Physics", "final", "30", "50", "60.00"},
		{"S-01", "Asha Rao", "TOTAL", "", "110", "150", "73.33"},
	}, rows)

	// deterministic
	again, err := Report(r, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestReportHTML(t *testing.T) {
	data, err := Report(sampleReport(), FormatHTML)
	require.NoError(t, err)

	html := string(data)
	assert.Contains(t, html, "<td>Physics</td>")
	assert.Contains(t, html, "Total: 110 / 150")
	assert.Contains(t, html, "Percentage: 73.33%")
	assert.Contains(t, html, "Grade: B")
	assert.Contains(t, html, "Rank: 2 of 3")

	unranked := sampleReport()
	unranked.Rank, unranked.ClassSize = 0, 0
	data, err = Report(unranked, FormatHTML)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Rank:")
}

func TestReportXLSX(t *testing.T) {
	data, err := Report(sampleReport(), FormatXLSX)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	total, err := f.GetCellValue(sheet, "C4")
	require.NoError(t, err)
	assert.Equal(t, "TOTAL", total)
	pct, err := f.GetCellValue(sheet, "G4")
	require.NoError(t, err)
	assert.Equal(t, "73.33", pct)
}

func TestReportPDF(t *testing.T) {
	data, err := Report(sampleReport(), FormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestMarksCSV(t *testing.T) {
	data, err := Marks([]mark.Mark{
		{ID: 7, Roll: "S-01", Subject: "Art", ExamType: "midterm", Score: 7, MaxScore: 9},
	}, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "ID,Roll,Subject,Exam,Marks,Max,Percentage\n7,S-01,Art,midterm,7,9,77.78\n", string(data))
}

func TestReportFilename(t *testing.T) {
	r := report.Report{Student: student.Student{Roll: "10A/07"}}
	assert.Equal(t, "result_10A_07.pdf", ReportFilename(r, FormatPDF))
}
