package export

import (
	"bytes"
	"encoding/csv"

	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core/mark"
	"github.com/nawanshu18/student-result-management-system/core/report"
)

// ReportCSV renders one row per mark followed by a TOTAL row.
func ReportCSV(r report.Report) ([]byte, error) {
	return writeCSV(reportHeader, reportRows(r))
}

func MarksCSV(marks []mark.Mark) ([]byte, error) {
	return writeCSV(marksHeader, marksRows(marks))
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, errors.Wrap(err, "writing csv header")
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, errors.Wrap(err, "writing csv rows")
	}
	return buf.Bytes(), nil
}
