package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/mark"
)

var (
	markColumns       = []string{"id", "roll", "subject", "exam_type", "score", "max_score", "created_at", "updated_at"}
	markOrderingAllow = map[string]bool{
		"id": true, "roll": true, "subject": true, "exam_type": true, "score": true, "max_score": true,
		"created_at": true, "updated_at": true,
	}
)

type markRow struct {
	ID        int64     `db:"id"`
	Roll      string    `db:"roll"`
	Subject   string    `db:"subject"`
	ExamType  string    `db:"exam_type"`
	Score     int       `db:"score"`
	MaxScore  int       `db:"max_score"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type markRepository struct {
	exec core.DBExecutor
}

var _ mark.Repository = (*markRepository)(nil) // interface compliance check

func NewMarkRepository(exec core.DBExecutor) *markRepository {
	return &markRepository{exec: exec}
}

func (repo markRepository) fromRow(row markRow) mark.Mark {
	return mark.Mark{
		ID:        row.ID,
		Roll:      row.Roll,
		Subject:   row.Subject,
		ExamType:  row.ExamType,
		Score:     row.Score,
		MaxScore:  row.MaxScore,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

func (repo markRepository) get(ctx context.Context, e core.DBExecutor, where sq.Sqlizer) (mark.Mark, error) {
	q, args, err := builder(e).
		Select(markColumns...).
		From("marks").
		Where(where).
		ToSql()
	if err != nil {
		return mark.Mark{}, errors.Wrap(err, "building query")
	}
	var row markRow
	if err = e.GetContext(ctx, &row, q, args...); err != nil {
		return mark.Mark{}, trapNoRowsErr(err, mark.ErrNotFound)
	}
	return repo.fromRow(row), nil
}

func (repo markRepository) UpsertMark(ctx context.Context, m mark.Mark, exec ...core.DBExecutor) (mark.Mark, error) {
	e := getExec(repo.exec, exec)
	q, args, err := builder(e).
		Insert("marks").
		Columns(markColumns[1:]...).
		Values(m.Roll, m.Subject, m.ExamType, m.Score, m.MaxScore, m.CreatedAt.UTC(), m.UpdatedAt.UTC()).
		Suffix("ON CONFLICT (roll, subject, exam_type) DO UPDATE SET " +
			"score = excluded.score, max_score = excluded.max_score, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return mark.Mark{}, errors.Wrap(err, "building query")
	}
	if _, err = e.ExecContext(ctx, q, args...); err != nil {
		return mark.Mark{}, errors.Wrap(err, "upserting mark")
	}
	return repo.get(ctx, e, sq.Eq{"roll": m.Roll, "subject": m.Subject, "exam_type": m.ExamType})
}

func (repo markRepository) QueryMarks(
	ctx context.Context,
	filter *mark.QueryFilter,
	ordering []core.DBOrdering,
	exec ...core.DBExecutor,
) ([]mark.Mark, error) {
	e := getExec(repo.exec, exec)
	qb := builder(e).
		Select(markColumns...).
		From("marks").
		OrderBy(orderBy(ordering, markOrderingAllow, "roll ASC", "subject ASC", "exam_type ASC", "id ASC")...)

	if filter != nil {
		eq := sq.Eq{}
		if filter.Roll != "" {
			eq["roll"] = filter.Roll
		}
		if filter.Subject != "" {
			eq["subject"] = filter.Subject
		}
		if filter.ExamType != "" {
			eq["exam_type"] = filter.ExamType
		}
		if len(eq) > 0 {
			qb = qb.Where(eq)
		}
	}

	q, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []markRow
	if err = e.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting marks")
	}

	marks := make([]mark.Mark, 0, len(rows))
	for _, row := range rows {
		marks = append(marks, repo.fromRow(row))
	}
	return marks, nil
}

func (repo markRepository) GetMark(ctx context.Context, id int64, exec ...core.DBExecutor) (mark.Mark, error) {
	return repo.get(ctx, getExec(repo.exec, exec), sq.Eq{"id": id})
}

func (repo markRepository) UpdateMark(ctx context.Context, m mark.Mark, exec ...core.DBExecutor) (mark.Mark, error) {
	e := getExec(repo.exec, exec)
	q, args, err := builder(e).
		Update("marks").
		Set("score", m.Score).
		Set("max_score", m.MaxScore).
		Set("updated_at", m.UpdatedAt.UTC()).
		Where(sq.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		return mark.Mark{}, errors.Wrap(err, "building query")
	}
	res, err := e.ExecContext(ctx, q, args...)
	if err != nil {
		return mark.Mark{}, errors.Wrap(err, "updating mark")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return mark.Mark{}, mark.ErrNotFound
	}
	return repo.get(ctx, e, sq.Eq{"id": m.ID})
}

func (repo markRepository) deleteWhere(ctx context.Context, e core.DBExecutor, where sq.Sqlizer) (int64, error) {
	q, args, err := builder(e).
		Delete("marks").
		Where(where).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := e.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting marks")
	}
	return res.RowsAffected()
}

func (repo markRepository) DeleteMarksByID(ctx context.Context, ids []int64, exec ...core.DBExecutor) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return repo.deleteWhere(ctx, getExec(repo.exec, exec), sq.Eq{"id": ids})
}

func (repo markRepository) DeleteMarksByRoll(ctx context.Context, rolls []string, exec ...core.DBExecutor) (int64, error) {
	if len(rolls) == 0 {
		return 0, nil
	}
	return repo.deleteWhere(ctx, getExec(repo.exec, exec), sq.Eq{"roll": rolls})
}

func (repo markRepository) CountMarksByRoll(ctx context.Context, roll string, exec ...core.DBExecutor) (int, error) {
	e := getExec(repo.exec, exec)
	var n int
	err := e.GetContext(ctx, &n, e.Rebind("SELECT COUNT(*) FROM marks WHERE roll = ?"), roll)
	return n, errors.Wrap(err, "counting marks")
}

func (repo markRepository) CountMarks(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	e := getExec(repo.exec, exec)
	var n int
	err := e.GetContext(ctx, &n, "SELECT COUNT(*) FROM marks")
	return n, errors.Wrap(err, "counting marks")
}
