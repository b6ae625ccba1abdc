package student

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core"
)

var (
	// errors
	ErrNotFound      = errors.New("student not found")
	ErrRollExists    = errors.New("a student with this roll already exists")
	ErrRollImmutable = errors.New("roll cannot be changed once marks are recorded")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student, exec ...core.DBExecutor) (Student, error)
		// UpsertStudent creates the Student or replaces the name, class and DOB of the existing one.
		UpsertStudent(ctx context.Context, s Student, exec ...core.DBExecutor) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Student.Roll or Student.Name.
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Student, error)
		GetStudent(ctx context.Context, roll string, exec ...core.DBExecutor) (Student, error)
		// UpdateStudent saves s over the Student identified by roll (s.Roll may differ to rename it).
		UpdateStudent(ctx context.Context, roll string, s Student, exec ...core.DBExecutor) (Student, error)
		DeleteStudentsByRoll(ctx context.Context, rolls []string, exec ...core.DBExecutor) (int64, error)
		CountStudents(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	// MarkRepository is the part of the marks storage students depend on: cascading deletes and roll immutability.
	MarkRepository interface {
		DeleteMarksByRoll(ctx context.Context, rolls []string, exec ...core.DBExecutor) (int64, error)
		CountMarksByRoll(ctx context.Context, roll string, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		CheckRollUniqueness(roll string, exclude ...Student) error
		Create(ctx context.Context, ns NewStudent) (Student, error)
		// Save creates or updates the Student with ns.Roll.
		Save(ctx context.Context, ns NewStudent) (Student, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		GetByRoll(ctx context.Context, roll string) (Student, error)
		Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error)
		// Delete removes the students and, in the same transaction, all their marks.
		Delete(ctx context.Context, rolls ...string) error
		Count(ctx context.Context) (int, error)
		// Authenticate checks a roll and date of birth pair. Any mismatch is core.ErrAuthenticationFailed.
		Authenticate(ctx context.Context, roll, dob string) (Student, error)
	}

	service struct {
		db    core.DB
		repo  Repository
		marks MarkRepository
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository, marks MarkRepository) Service {
	return &service{
		db:    db,
		repo:  repo,
		marks: marks,
	}
}

func (svc *service) CheckRollUniqueness(roll string, exclude ...Student) error {
	for _, s := range exclude {
		if s.Roll == roll {
			return nil
		}
	}
	_, err := svc.repo.GetStudent(context.Background(), roll)
	switch errors.Cause(err) {
	case nil:
		return core.NewValidationError(ErrRollExists, core.FieldError{Field: "roll", Error: ErrRollExists.Error()})
	case ErrNotFound:
		return nil
	default:
		return errors.Wrap(err, "checking roll uniqueness")
	}
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := svc.CheckRollUniqueness(ns.Roll); err != nil {
		return Student{}, err
	}
	now := NowFunc().UTC()
	s, err := svc.repo.CreateStudent(ctx, Student{
		Roll:      ns.Roll,
		Name:      ns.Name,
		Class:     ns.Class,
		DOB:       ns.DOB,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return s, errors.Wrap(err, "creating student")
}

func (svc *service) Save(ctx context.Context, ns NewStudent) (Student, error) {
	now := NowFunc().UTC()
	s, err := svc.repo.UpsertStudent(ctx, Student{
		Roll:      ns.Roll,
		Name:      ns.Name,
		Class:     ns.Class,
		DOB:       ns.DOB,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return s, errors.Wrap(err, "saving student")
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	students, err := svc.repo.QueryStudents(ctx, filter, ordering)
	return students, errors.Wrap(err, "querying students")
}

func (svc *service) GetByRoll(ctx context.Context, roll string) (Student, error) {
	s, err := svc.repo.GetStudent(ctx, NormalizeRoll(roll))
	return s, errors.Wrap(err, "getting student")
}

func (svc *service) Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	var updated Student
	err := core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if us.Roll != orig.Roll {
			n, err := svc.marks.CountMarksByRoll(ctx, orig.Roll, tx)
			if err != nil {
				return errors.Wrap(err, "counting marks")
			}
			if n > 0 {
				return core.NewValidationError(ErrRollImmutable, core.FieldError{Field: "roll", Error: ErrRollImmutable.Error()})
			}
		}

		s := orig
		s.Roll = us.Roll
		s.Name = us.Name
		s.Class = us.Class
		s.DOB = us.DOB
		s.UpdatedAt = NowFunc().UTC()

		var err error
		updated, err = svc.repo.UpdateStudent(ctx, orig.Roll, s, tx)
		return err
	})
	return updated, errors.Wrap(err, "updating student")
}

func (svc *service) Delete(ctx context.Context, rolls ...string) error {
	if len(rolls) == 0 {
		return nil
	}
	return core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if _, err := svc.marks.DeleteMarksByRoll(ctx, rolls, tx); err != nil {
			return errors.Wrap(err, "deleting marks")
		}
		_, err := svc.repo.DeleteStudentsByRoll(ctx, rolls, tx)
		return errors.Wrap(err, "deleting students")
	})
}

func (svc *service) Count(ctx context.Context) (int, error) {
	n, err := svc.repo.CountStudents(ctx)
	return n, errors.Wrap(err, "counting students")
}

func (svc *service) Authenticate(ctx context.Context, roll, dob string) (Student, error) {
	s, err := svc.repo.GetStudent(ctx, NormalizeRoll(roll))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Student{}, core.ErrAuthenticationFailed
		}
		return Student{}, errors.Wrap(err, "getting student")
	}

	// students without a recorded DOB cannot log in
	dob, ok := NormalizeDOB(dob)
	if !ok || s.DOB == "" || subtle.ConstantTimeCompare([]byte(s.DOB), []byte(dob)) == 0 {
		return Student{}, core.ErrAuthenticationFailed
	}
	return s, nil
}
