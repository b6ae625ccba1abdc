package export

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/nawanshu18/student-result-management-system/core/mark"
	"github.com/nawanshu18/student-result-management-system/core/report"
)

// numericCols are the 0-based columns written as numbers rather than text.
var numericCols = map[int]bool{4: true, 5: true, 6: true}

// ReportXLSX renders the same table as ReportCSV on a single sheet, followed by the grade and rank.
func ReportXLSX(r report.Report) ([]byte, error) {
	extra := [][]interface{}{
		{},
		{"Grade", r.Grade},
	}
	if r.Rank > 0 {
		extra = append(extra, []interface{}{"Rank", r.Rank, "of", r.ClassSize})
	}
	return writeXLSX(reportHeader, reportRows(r), extra...)
}

func MarksXLSX(marks []mark.Mark) ([]byte, error) {
	return writeXLSX(marksHeader, marksRows(marks))
}

func writeXLSX(header []string, rows [][]string, extra ...[]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	setRow := func(rowIdx int, values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheet, cell, &values)
	}

	hdr := make([]interface{}, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := setRow(1, hdr); err != nil {
		return nil, errors.Wrap(err, "writing xlsx header")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, errors.Wrap(err, "creating xlsx style")
	}
	lastHdrCell, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, errors.Wrap(err, "writing xlsx header")
	}
	if err = f.SetCellStyle(sheet, "A1", lastHdrCell, bold); err != nil {
		return nil, errors.Wrap(err, "styling xlsx header")
	}

	rowIdx := 2
	for _, row := range rows {
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = v
			if numericCols[i] && v != "" {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					values[i] = n
				}
			}
		}
		if err := setRow(rowIdx, values); err != nil {
			return nil, errors.Wrap(err, "writing xlsx row")
		}
		rowIdx++
	}
	for _, values := range extra {
		if len(values) > 0 {
			if err := setRow(rowIdx, values); err != nil {
				return nil, errors.Wrap(err, "writing xlsx row")
			}
		}
		rowIdx++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "writing xlsx")
	}
	return buf.Bytes(), nil
}
