// Package importer loads students or marks in bulk from CSV files.
// Rows are independent: a malformed row is skipped and reported, the others are imported.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/mark"
	"github.com/nawanshu18/student-result-management-system/core/student"
)

const (
	KindStudents Kind = "students"
	KindMarks    Kind = "marks"
)

var (
	// errors
	ErrUnknownHeader = errors.New("unrecognized csv header: expected roll,name,class,dob or roll,subject,exam_type,marks,max_marks")
	ErrEmptyFile     = errors.New("empty csv file")

	// header aliases -> canonical column
	columnAliases = map[string]string{
		"roll":        "roll",
		"roll_no":     "roll",
		"roll_number": "roll",
		"name":        "name",
		"class":       "class",
		"dob":         "dob",
		"subject":     "subject",
		"exam":        "exam_type",
		"exam_type":   "exam_type",
		"marks":       "score",
		"score":       "score",
		"max_marks":   "max_score",
		"max_score":   "max_score",
	}
)

type (
	Kind string

	RowError struct {
		Line  int    `json:"line"`
		Error string `json:"error"`
	}

	Summary struct {
		BatchID  string     `json:"batch_id"`
		Kind     Kind       `json:"kind"`
		Total    int        `json:"total"`
		Imported int        `json:"imported"`
		Failed   []RowError `json:"failed"`
	}

	Importer struct {
		validate   *validator.Validate
		translator ut.Translator
		students   student.Service
		marks      mark.Service
	}

	columns map[string]int // canonical column -> index
)

func New(validate *validator.Validate, translator ut.Translator, students student.Service, marks mark.Service) *Importer {
	return &Importer{
		validate:   validate,
		translator: translator,
		students:   students,
		marks:      marks,
	}
}

func (c columns) has(names ...string) bool {
	for _, n := range names {
		if _, ok := c[n]; !ok {
			return false
		}
	}
	return true
}

func (c columns) get(record []string, name string) string {
	if i, ok := c[name]; ok && i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

// detectKind decides from the header whether a file holds students or marks.
func detectKind(header []string) (Kind, columns, error) {
	cols := make(columns, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		h = strings.Join(strings.Fields(h), "_") // "Roll No" -> roll_no
		if canonical, ok := columnAliases[h]; ok {
			if _, dup := cols[canonical]; !dup {
				cols[canonical] = i
			}
		}
	}
	switch {
	case cols.has("roll", "subject", "score"):
		return KindMarks, cols, nil
	case cols.has("roll", "name"):
		return KindStudents, cols, nil
	default:
		return "", nil, core.NewValidationError(ErrUnknownHeader)
	}
}

// Import reads a CSV file with a header row and saves every valid row.
// It only fails as a whole when the file cannot be read or its header is not recognized.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Summary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // checked per row
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return Summary{}, core.NewValidationError(ErrEmptyFile)
	} else if err != nil {
		return Summary{}, core.NewValidationError(errors.Wrap(err, "reading csv header"))
	}
	kind, cols, err := detectKind(header)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		BatchID: uuid.New().String(),
		Kind:    kind,
		Failed:  make([]RowError, 0),
	}
	fail := func(line int, err error) {
		summary.Failed = append(summary.Failed, RowError{
			Line:  line,
			Error: strings.Join(core.TranslateErrors(errors.Cause(err), im.translator), "; "),
		})
	}

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pErr *csv.ParseError
			if errors.As(err, &pErr) {
				summary.Total++
				fail(pErr.StartLine, pErr.Err)
				continue
			}
			return summary, errors.Wrap(err, "reading csv")
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}
		summary.Total++

		if len(record) != len(header) {
			fail(line, fmt.Errorf("expected %d fields, got %d", len(header), len(record)))
			continue
		}

		if kind == KindStudents {
			err = im.importStudent(ctx, cols, record)
		} else {
			err = im.importMark(ctx, cols, record)
		}
		if err != nil {
			if !isRowError(err) {
				return summary, errors.Wrapf(err, "importing line %d", line)
			}
			fail(line, err)
			continue
		}
		summary.Imported++
	}
	return summary, nil
}

func (im *Importer) importStudent(ctx context.Context, cols columns, record []string) error {
	ns := student.NewStudent{
		Roll:  cols.get(record, "roll"),
		Name:  cols.get(record, "name"),
		Class: cols.get(record, "class"),
		DOB:   cols.get(record, "dob"),
	}
	if err := ns.Validate(im.validate); err != nil {
		return err
	}
	_, err := im.students.Save(ctx, ns)
	return err
}

func (im *Importer) importMark(ctx context.Context, cols columns, record []string) error {
	score, err := parseInt(cols.get(record, "score"), "score")
	if err != nil {
		return err
	}
	maxScore := 0 // defaulted by NewMark.Validate
	if v := cols.get(record, "max_score"); v != "" {
		if maxScore, err = parseInt(v, "max_score"); err != nil {
			return err
		}
	}

	nm := mark.NewMark{
		Roll:     cols.get(record, "roll"),
		Subject:  cols.get(record, "subject"),
		ExamType: cols.get(record, "exam_type"),
		Score:    score,
		MaxScore: maxScore,
	}
	if err := nm.Validate(im.validate); err != nil {
		return err
	}
	_, err = im.marks.Save(ctx, nm)
	return err
}

func parseInt(s, field string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, core.NewValidationError(nil, core.FieldError{Field: field, Error: "must be a whole number"})
	}
	return n, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// isRowError tells the errors caused by the row content apart from storage failures.
func isRowError(err error) bool {
	switch errors.Cause(err).(type) {
	case validator.ValidationErrors, *core.ValidationError:
		return true
	}
	return false
}
