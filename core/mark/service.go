package mark

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/student"
)

var (
	// errors
	ErrNotFound        = errors.New("mark not found")
	ErrStudentNotFound = errors.New("no student with this roll")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// UpsertMark inserts the Mark or replaces the scores of the one with the same (roll, subject, exam type).
		UpsertMark(ctx context.Context, m Mark, exec ...core.DBExecutor) (Mark, error)
		// QueryMarks applies AND operation on available QueryFilter fields (exact matches).
		QueryMarks(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Mark, error)
		GetMark(ctx context.Context, id int64, exec ...core.DBExecutor) (Mark, error)
		UpdateMark(ctx context.Context, m Mark, exec ...core.DBExecutor) (Mark, error)
		DeleteMarksByID(ctx context.Context, ids []int64, exec ...core.DBExecutor) (int64, error)
		DeleteMarksByRoll(ctx context.Context, rolls []string, exec ...core.DBExecutor) (int64, error)
		CountMarksByRoll(ctx context.Context, roll string, exec ...core.DBExecutor) (int, error)
		CountMarks(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	// StudentFinder looks up the Student a Mark refers to.
	StudentFinder interface {
		GetStudent(ctx context.Context, roll string, exec ...core.DBExecutor) (student.Student, error)
	}

	Service interface {
		// Save records a Mark for an existing Student, replacing any previous scores for the same subject and exam.
		Save(ctx context.Context, nm NewMark) (Mark, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Mark, error)
		GetByID(ctx context.Context, id int64) (Mark, error)
		Update(ctx context.Context, orig Mark, um UpdateMark) (Mark, error)
		Delete(ctx context.Context, ids ...int64) error
		Count(ctx context.Context) (int, error)
	}

	service struct {
		db       core.DB
		repo     Repository
		students StudentFinder
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository, students StudentFinder) Service {
	return &service{
		db:       db,
		repo:     repo,
		students: students,
	}
}

func (svc *service) Save(ctx context.Context, nm NewMark) (Mark, error) {
	var m Mark
	err := core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if _, err := svc.students.GetStudent(ctx, nm.Roll, tx); err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				return core.NewValidationError(ErrStudentNotFound, core.FieldError{Field: "roll", Error: ErrStudentNotFound.Error()})
			}
			return errors.Wrap(err, "getting student")
		}

		now := NowFunc().UTC()
		var err error
		m, err = svc.repo.UpsertMark(ctx, Mark{
			Roll:      nm.Roll,
			Subject:   nm.Subject,
			ExamType:  nm.ExamType,
			Score:     nm.Score,
			MaxScore:  nm.MaxScore,
			CreatedAt: now,
			UpdatedAt: now,
		}, tx)
		return errors.Wrap(err, "upserting mark")
	})
	return m, err
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Mark, error) {
	marks, err := svc.repo.QueryMarks(ctx, filter, ordering)
	return marks, errors.Wrap(err, "querying marks")
}

func (svc *service) GetByID(ctx context.Context, id int64) (Mark, error) {
	m, err := svc.repo.GetMark(ctx, id)
	return m, errors.Wrap(err, "getting mark")
}

// Update expects um to have been validated against orig.
func (svc *service) Update(ctx context.Context, orig Mark, um UpdateMark) (Mark, error) {
	m := orig
	m.Score = um.score
	m.MaxScore = um.maxScore
	m.UpdatedAt = NowFunc().UTC()
	m, err := svc.repo.UpdateMark(ctx, m)
	return m, errors.Wrap(err, "updating mark")
}

func (svc *service) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := svc.repo.DeleteMarksByID(ctx, ids)
	return errors.Wrap(err, "deleting marks")
}

func (svc *service) Count(ctx context.Context) (int, error) {
	n, err := svc.repo.CountMarks(ctx)
	return n, errors.Wrap(err, "counting marks")
}
