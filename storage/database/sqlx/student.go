package sqlxrepos

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/student"
)

var (
	studentColumns       = []string{"roll", "name", "class", "dob", "created_at", "updated_at"}
	studentOrderingAllow = map[string]bool{
		"roll": true, "name": true, "class": true, "dob": true, "created_at": true, "updated_at": true,
	}
)

// likeEscaper makes search input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type studentRow struct {
	Roll      string      `db:"roll"`
	Name      string      `db:"name"`
	Class     string      `db:"class"`
	DOB       null.String `db:"dob"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

func (repo studentRepository) toRow(s student.Student) studentRow {
	return studentRow{
		Roll:      s.Roll,
		Name:      s.Name,
		Class:     s.Class,
		DOB:       null.NewString(s.DOB, s.DOB != ""),
		CreatedAt: s.CreatedAt.UTC(),
		UpdatedAt: s.UpdatedAt.UTC(),
	}
}

func (repo studentRepository) fromRow(row studentRow) student.Student {
	return student.Student{
		Roll:      row.Roll,
		Name:      row.Name,
		Class:     row.Class,
		DOB:       row.DOB.String,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

func (repo studentRepository) values(row studentRow) []interface{} {
	return []interface{}{row.Roll, row.Name, row.Class, row.DOB, row.CreatedAt, row.UpdatedAt}
}

func (repo studentRepository) CreateStudent(ctx context.Context, s student.Student, exec ...core.DBExecutor) (student.Student, error) {
	e := getExec(repo.exec, exec)
	q, args, err := builder(e).
		Insert("students").
		Columns(studentColumns...).
		Values(repo.values(repo.toRow(s))...).
		ToSql()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "building query")
	}
	if _, err = e.ExecContext(ctx, q, args...); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return repo.GetStudent(ctx, s.Roll, e)
}

func (repo studentRepository) UpsertStudent(ctx context.Context, s student.Student, exec ...core.DBExecutor) (student.Student, error) {
	e := getExec(repo.exec, exec)
	q, args, err := builder(e).
		Insert("students").
		Columns(studentColumns...).
		Values(repo.values(repo.toRow(s))...).
		Suffix("ON CONFLICT (roll) DO UPDATE SET " +
			"name = excluded.name, class = excluded.class, dob = excluded.dob, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "building query")
	}
	if _, err = e.ExecContext(ctx, q, args...); err != nil {
		return student.Student{}, errors.Wrap(err, "upserting student")
	}
	return repo.GetStudent(ctx, s.Roll, e)
}

func (repo studentRepository) QueryStudents(
	ctx context.Context,
	filter *student.QueryFilter,
	ordering []core.DBOrdering,
	exec ...core.DBExecutor,
) ([]student.Student, error) {
	e := getExec(repo.exec, exec)
	qb := builder(e).
		Select(studentColumns...).
		From("students").
		OrderBy(orderBy(ordering, studentOrderingAllow, "roll ASC")...)

	if filter != nil {
		if filter.Search != "" {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(filter.Search)) + "%"
			qb = qb.Where(sq.Or{
				sq.Expr(`LOWER(roll) LIKE ? ESCAPE '\'`, pattern),
				sq.Expr(`LOWER(name) LIKE ? ESCAPE '\'`, pattern),
			})
		}
		if filter.Class != "" {
			qb = qb.Where(sq.Eq{"class": filter.Class})
		}
	}

	q, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []studentRow
	if err = e.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}

	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, repo.fromRow(row))
	}
	return students, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, roll string, exec ...core.DBExecutor) (student.Student, error) {
	e := getExec(repo.exec, exec)
	q, args, err := builder(e).
		Select(studentColumns...).
		From("students").
		Where(sq.Eq{"roll": roll}).
		ToSql()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "building query")
	}
	var row studentRow
	if err = e.GetContext(ctx, &row, q, args...); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound)
	}
	return repo.fromRow(row), nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, roll string, s student.Student, exec ...core.DBExecutor) (student.Student, error) {
	e := getExec(repo.exec, exec)
	row := repo.toRow(s)
	q, args, err := builder(e).
		Update("students").
		SetMap(map[string]interface{}{
			"roll":       row.Roll,
			"name":       row.Name,
			"class":      row.Class,
			"dob":        row.DOB,
			"updated_at": row.UpdatedAt,
		}).
		Where(sq.Eq{"roll": roll}).
		ToSql()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "building query")
	}
	res, err := e.ExecContext(ctx, q, args...)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudent(ctx, s.Roll, e)
}

func (repo studentRepository) DeleteStudentsByRoll(ctx context.Context, rolls []string, exec ...core.DBExecutor) (int64, error) {
	if len(rolls) == 0 {
		return 0, nil
	}
	e := getExec(repo.exec, exec)
	q, args, err := builder(e).
		Delete("students").
		Where(sq.Eq{"roll": rolls}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := e.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting students")
	}
	return res.RowsAffected()
}

func (repo studentRepository) CountStudents(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	e := getExec(repo.exec, exec)
	var n int
	err := e.GetContext(ctx, &n, "SELECT COUNT(*) FROM students")
	return n, errors.Wrap(err, "counting students")
}
