package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/admin"
	"github.com/nawanshu18/student-result-management-system/core/mark"
	"github.com/nawanshu18/student-result-management-system/core/student"
	testutil "github.com/nawanshu18/student-result-management-system/tests"
)

var ctxBg = context.Background()

func rolls(students []student.Student) []string {
	out := make([]string, 0, len(students))
	for _, s := range students {
		out = append(out, s.Roll)
	}
	return out
}

func Test_studentRepository(t *testing.T) {
	repos := testutil.NewRepos(testutil.PrepareDB(t))
	testutil.CreateStudent(t, repos.Students, "S-02", "Dev Patel", "10B", "")
	testutil.CreateStudent(t, repos.Students, "S-01", "Asha Rao", "10A", "15-08-2005")
	testutil.CreateStudent(t, repos.Students, "S-03", "Chen Li", "10A", "01-02-2006")

	tests := []struct {
		name     string
		filter   *student.QueryFilter
		ordering []core.DBOrdering
		want     []string
	}{
		{name: "all, by roll", want: []string{"S-01", "S-02", "S-03"}},
		{name: "search name", filter: &student.QueryFilter{Search: "ASHA"}, want: []string{"S-01"}},
		{name: "search roll", filter: &student.QueryFilter{Search: "s-0"}, want: []string{"S-01", "S-02", "S-03"}},
		{name: "class", filter: &student.QueryFilter{Class: "10A"}, want: []string{"S-01", "S-03"}},
		{name: "order by name desc", ordering: []core.DBOrdering{{Field: "name"}}, want: []string{"S-02", "S-03", "S-01"}},
		{name: "unknown ordering ignored", ordering: []core.DBOrdering{{Field: "name; DROP TABLE students"}}, want: []string{"S-01", "S-02", "S-03"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			students, err := repos.Students.QueryStudents(ctxBg, tt.filter, tt.ordering)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rolls(students))
		})
	}

	t.Run("get", func(t *testing.T) {
		s, err := repos.Students.GetStudent(ctxBg, "S-02")
		require.NoError(t, err)
		assert.Equal(t, "", s.DOB)

		_, err = repos.Students.GetStudent(ctxBg, "s-02")
		assert.Equal(t, student.ErrNotFound, err)
	})

	t.Run("update unknown", func(t *testing.T) {
		_, err := repos.Students.UpdateStudent(ctxBg, "S-09", student.Student{Roll: "S-09", Name: "x"})
		assert.Equal(t, student.ErrNotFound, err)
	})

	t.Run("delete", func(t *testing.T) {
		n, err := repos.Students.DeleteStudentsByRoll(ctxBg, []string{"S-02", "S-09"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = repos.Students.DeleteStudentsByRoll(ctxBg, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})
}

func Test_studentRepository_searchLiteral(t *testing.T) {
	repos := testutil.NewRepos(testutil.PrepareDB(t))
	testutil.CreateStudent(t, repos.Students, "S_1", "Asha Rao", "10A", "")
	testutil.CreateStudent(t, repos.Students, "SX1", "Bilal Khan", "10A", "")
	testutil.CreateStudent(t, repos.Students, "S-2", "Chen 100% Li", "10A", "")
	testutil.CreateStudent(t, repos.Students, "S-3", "Dev 1000 Patel", "10A", "")
	testutil.CreateStudent(t, repos.Students, `S\4`, "Esha Nair", "10A", "")

	tests := []struct {
		search string
		want   []string
	}{
		{search: "s_1", want: []string{"S_1"}},
		{search: "_", want: []string{"S_1"}},
		{search: "100%", want: []string{"S-2"}},
		{search: "%", want: []string{"S-2"}},
		{search: `s\4`, want: []string{`S\4`}},
		{search: "s", want: []string{"S-2", "S-3", "SX1", `S\4`, "S_1"}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			students, err := repos.Students.QueryStudents(ctxBg, &student.QueryFilter{Search: tt.search}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rolls(students))
		})
	}
}

func Test_markRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	repos := testutil.NewRepos(db)
	testutil.CreateStudent(t, repos.Students, "S-01", "Asha Rao", "10A", "")
	testutil.CreateStudent(t, repos.Students, "S-02", "Dev Patel", "10A", "")
	maths := testutil.CreateMark(t, repos.Marks, "S-01", "Maths", "final", 80, 100)
	testutil.CreateMark(t, repos.Marks, "S-01", "Maths", "midterm", 40, 50)
	testutil.CreateMark(t, repos.Marks, "S-02", "Maths", "final", 60, 100)

	t.Run("unique per roll, subject and exam", func(t *testing.T) {
		m := testutil.CreateMark(t, repos.Marks, "S-01", "Maths", "final", 85, 100)
		assert.Equal(t, maths.ID, m.ID)
		assert.Equal(t, 85, m.Score)

		n, err := repos.Marks.CountMarks(ctxBg)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("query", func(t *testing.T) {
		marks, err := repos.Marks.QueryMarks(ctxBg, &mark.QueryFilter{Roll: "S-01"}, nil)
		require.NoError(t, err)
		require.Len(t, marks, 2)
		assert.Equal(t, "final", marks[0].ExamType)

		marks, err = repos.Marks.QueryMarks(ctxBg, &mark.QueryFilter{ExamType: "final"}, []core.DBOrdering{{Field: "score"}})
		require.NoError(t, err)
		require.Len(t, marks, 2)
		assert.Equal(t, 85, marks[0].Score)
	})

	t.Run("count by roll", func(t *testing.T) {
		n, err := repos.Marks.CountMarksByRoll(ctxBg, "S-01")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("inside a transaction", func(t *testing.T) {
		err := core.RunInTx(ctxBg, db, func(tx core.DBExecutor) error {
			if _, err := repos.Marks.DeleteMarksByRoll(ctxBg, []string{"S-02"}, tx); err != nil {
				return err
			}
			return student.ErrNotFound // roll back
		})
		assert.Equal(t, student.ErrNotFound, err)

		n, err := repos.Marks.CountMarksByRoll(ctxBg, "S-02")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("get deleted", func(t *testing.T) {
		n, err := repos.Marks.DeleteMarksByID(ctxBg, []int64{maths.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = repos.Marks.GetMark(ctxBg, maths.ID)
		assert.Equal(t, mark.ErrNotFound, err)
	})
}

func Test_adminRepository(t *testing.T) {
	repos := testutil.NewRepos(testutil.PrepareDB(t))
	adm := testutil.CreateAdmin(t, repos.Admins, "registrar", "", "s3cret-pass", "", "")
	assert.Empty(t, adm.SecurityAnswerHash)
	assert.True(t, adm.LastLogin.IsZero())

	expires := time.Now().UTC().Add(5 * time.Minute).Truncate(time.Second)
	adm.Email = "registrar@school.test"
	adm.OTPHash = []byte{1, 2, 3}
	adm.OTPExpiresAt = expires
	adm.LastLogin = time.Now().UTC()
	updated, err := repos.Admins.UpdateAdmin(ctxBg, adm)
	require.NoError(t, err)
	assert.Equal(t, "registrar@school.test", updated.Email)
	assert.Equal(t, []byte{1, 2, 3}, updated.OTPHash)
	assert.True(t, expires.Equal(updated.OTPExpiresAt))
	assert.False(t, updated.LastLogin.IsZero())

	_, err = repos.Admins.GetAdmin(ctxBg, "nobody")
	assert.Equal(t, admin.ErrNotFound, err)

	n, err := repos.Admins.CountAdmins(ctxBg)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
