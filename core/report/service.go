package report

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/mark"
	"github.com/nawanshu18/student-result-management-system/core/student"
)

var defaultMarkOrdering = []core.DBOrdering{
	{Field: "roll", Ascending: true},
	{Field: "subject", Ascending: true},
	{Field: "exam_type", Ascending: true},
}

type (
	StudentFinder interface {
		GetStudent(ctx context.Context, roll string, exec ...core.DBExecutor) (student.Student, error)
	}

	MarkLister interface {
		QueryMarks(ctx context.Context, filter *mark.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]mark.Mark, error)
	}

	// Service recomputes reports from the stored marks on every call.
	Service interface {
		// StudentReport builds the Report of the student with roll.
		// With withRank, the student is also ranked among all students with marks.
		StudentReport(ctx context.Context, roll string, withRank bool) (Report, error)
		ClassSummary(ctx context.Context, bucketWidth int) (Summary, error)
		SubjectAverages(ctx context.Context) ([]SubjectAverage, error)
	}

	service struct {
		students StudentFinder
		marks    MarkLister
	}
)

var _ Service = (*service)(nil)

func NewService(students StudentFinder, marks MarkLister) Service {
	return &service{
		students: students,
		marks:    marks,
	}
}

func (svc *service) StudentReport(ctx context.Context, roll string, withRank bool) (Report, error) {
	s, err := svc.students.GetStudent(ctx, student.NormalizeRoll(roll))
	if err != nil {
		return Report{}, errors.Wrap(err, "getting student")
	}

	if !withRank {
		own, err := svc.marks.QueryMarks(ctx, &mark.QueryFilter{Roll: s.Roll}, defaultMarkOrdering)
		if err != nil {
			return Report{}, errors.Wrap(err, "querying marks")
		}
		return Build(s, own), nil
	}

	all, err := svc.marks.QueryMarks(ctx, nil, defaultMarkOrdering)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying marks")
	}
	own := make([]mark.Mark, 0)
	for _, m := range all {
		if m.Roll == s.Roll {
			own = append(own, m)
		}
	}

	r := Build(s, own)
	if r.HasMarks() {
		r.Rank, r.ClassSize = Rank(Standings(all), s.Roll)
	}
	return r, nil
}

func (svc *service) ClassSummary(ctx context.Context, bucketWidth int) (Summary, error) {
	all, err := svc.marks.QueryMarks(ctx, nil, defaultMarkOrdering)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying marks")
	}
	summary, err := Summarize(Standings(all), bucketWidth)
	return summary, errors.Wrap(err, "summarizing")
}

func (svc *service) SubjectAverages(ctx context.Context) ([]SubjectAverage, error) {
	all, err := svc.marks.QueryMarks(ctx, nil, defaultMarkOrdering)
	if err != nil {
		return nil, errors.Wrap(err, "querying marks")
	}
	return SubjectAverages(all), nil
}
