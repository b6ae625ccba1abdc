package mark_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/mark"
	testutil "github.com/nawanshu18/student-result-management-system/tests"
)

var ctxBg = context.Background()

func setup(t *testing.T) (mark.Service, testutil.Repos) {
	db := testutil.PrepareDB(t)
	repos := testutil.NewRepos(db)
	testutil.CreateStudent(t, repos.Students, "S-01", "Asha Rao", "10A", "15-08-2005")
	return mark.NewService(db, repos.Marks, repos.Students), repos
}

func intPtr(i int) *int { return &i }

func TestNewMark_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()

	nm := mark.NewMark{Roll: " S-01 ", Subject: " Maths ", ExamType: " MidTerm ", Score: 45}
	require.NoError(t, nm.Validate(validate))
	assert.Equal(t, "S-01", nm.Roll)
	assert.Equal(t, "Maths", nm.Subject)
	assert.Equal(t, "midterm", nm.ExamType)
	assert.Equal(t, mark.DefaultMaxScore, nm.MaxScore)

	tests := []struct {
		name string
		nm   mark.NewMark
	}{
		{name: "score above max", nm: mark.NewMark{Roll: "S-01", Subject: "Maths", Score: 51, MaxScore: 50}},
		{name: "negative score", nm: mark.NewMark{Roll: "S-01", Subject: "Maths", Score: -1}},
		{name: "negative max", nm: mark.NewMark{Roll: "S-01", Subject: "Maths", MaxScore: -10}},
		{name: "blank subject", nm: mark.NewMark{Roll: "S-01", Subject: "  ", Score: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.nm.Validate(validate))
		})
	}
}

func TestUpdateMark_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()
	orig := mark.Mark{Score: 40, MaxScore: 50}

	um := mark.UpdateMark{Score: intPtr(51)}
	err := um.Validate(orig, validate)
	_, ok := errors.Cause(err).(*core.ValidationError)
	assert.True(t, ok, "error = %v", err)

	um = mark.UpdateMark{Score: intPtr(51), MaxScore: intPtr(60)}
	assert.NoError(t, um.Validate(orig, validate))
}

func Test_service_Save(t *testing.T) {
	svc, repos := setup(t)

	t.Run("unknown student", func(t *testing.T) {
		_, err := svc.Save(ctxBg, mark.NewMark{Roll: "S-09", Subject: "Maths", ExamType: "final", Score: 1, MaxScore: 10})
		vErr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok, "error = %v", err)
		assert.Equal(t, mark.ErrStudentNotFound, vErr.Err)
	})

	t.Run("upsert", func(t *testing.T) {
		first, err := svc.Save(ctxBg, mark.NewMark{Roll: "S-01", Subject: "Maths", ExamType: "final", Score: 70, MaxScore: 100})
		require.NoError(t, err)

		mark.NowFunc = func() time.Time { return time.Now().Add(time.Hour) }
		defer func() { mark.NowFunc = time.Now }()

		second, err := svc.Save(ctxBg, mark.NewMark{Roll: "S-01", Subject: "Maths", ExamType: "final", Score: 45, MaxScore: 50})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 45, second.Score)
		assert.Equal(t, 50, second.MaxScore)
		assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
		assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())

		n, err := repos.Marks.CountMarks(ctxBg)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func Test_service_UpdateDelete(t *testing.T) {
	svc, repos := setup(t)
	m := testutil.CreateMark(t, repos.Marks, "S-01", "Physics", "", 30, 50)

	validate, _ := testutil.NewValidator()
	um := mark.UpdateMark{Score: intPtr(35)}
	require.NoError(t, um.Validate(m, validate))
	updated, err := svc.Update(ctxBg, m, um)
	require.NoError(t, err)
	assert.Equal(t, 35, updated.Score)
	assert.Equal(t, 50, updated.MaxScore)

	require.NoError(t, svc.Delete(ctxBg, m.ID))
	_, err = svc.GetByID(ctxBg, m.ID)
	assert.Equal(t, mark.ErrNotFound, errors.Cause(err))
}
