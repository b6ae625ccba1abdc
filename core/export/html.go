package export

import (
	"bytes"
	"html/template"

	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core/report"
	appfs "github.com/nawanshu18/student-result-management-system/fs"
)

var reportTmpl = template.Must(
	template.New("report.gohtml").
		Funcs(template.FuncMap{"pct": formatPct}).
		ParseFS(appfs.FS, "templates/report/report.gohtml"),
)

// ReportHTML renders a standalone HTML page: the marks table then the totals.
func ReportHTML(r report.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, r); err != nil {
		return nil, errors.Wrap(err, "rendering html report")
	}
	return buf.Bytes(), nil
}
