package tests

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nawanshu18/student-result-management-system/core/mark"
	testutil "github.com/nawanshu18/student-result-management-system/tests"
)

func Test_markApi_save(t *testing.T) {
	env := setup(t)
	adm := testutil.CreateAdmin(t, env.repos.Admins, "admin", "", "s3cret-pass", "", "")
	testutil.CreateStudent(t, env.repos.Students, "S-01", "Asha Rao", "10A", "")
	token := env.adminToken(t, adm)

	tests := []httpTest{
		{
			name: "unknown student", method: http.MethodPost, path: "/v1/marks", token: token,
			body:     []byte(`{"roll": "S-99", "subject": "Maths", "score": 50}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"roll": "no student with this roll"}`),
		},
		{
			name: "score above max", method: http.MethodPost, path: "/v1/marks", token: token,
			body:     []byte(`{"roll": "S-01", "subject": "Maths", "score": 120, "max_score": 100}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"score": "score cannot be greater than max_score"}`),
		},
		{
			name: "negative score", method: http.MethodPost, path: "/v1/marks", token: token,
			body:     []byte(`{"roll": "S-01", "subject": "Maths", "score": -1}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "blank subject", method: http.MethodPost, path: "/v1/marks", token: token,
			body:     []byte(`{"roll": "S-01", "subject": "   ", "score": 10}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"subject": "this field is required"}`),
		},
	}
	runHTTPTests(t, env, tests)

	var first mark.Mark
	t.Run("defaults", func(t *testing.T) {
		rec := env.do(httpTest{
			method: http.MethodPost, path: "/v1/marks", token: token,
			body: []byte(`{"roll": "S-01", "subject": "Maths", "score": 72}`),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		unmarshal(t, rec, &first)
		assert.Equal(t, mark.DefaultExamType, first.ExamType)
		assert.Equal(t, mark.DefaultMaxScore, first.MaxScore)
		assert.Equal(t, 72, first.Score)
	})

	t.Run("same subject and exam is an upsert", func(t *testing.T) {
		rec := env.do(httpTest{
			method: http.MethodPost, path: "/v1/marks", token: token,
			body: []byte(`{"roll": "S-01", "subject": "Maths", "exam_type": "FINAL", "score": 40, "max_score": 50}`),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var m mark.Mark
		unmarshal(t, rec, &m)
		assert.Equal(t, first.ID, m.ID)
		assert.Equal(t, 40, m.Score)
		assert.Equal(t, 50, m.MaxScore)

		n, err := env.repos.Marks.CountMarks(ctxBg)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func Test_markApi_queryAndDetail(t *testing.T) {
	env := setup(t)
	adm := testutil.CreateAdmin(t, env.repos.Admins, "admin", "", "s3cret-pass", "", "")
	testutil.CreateStudent(t, env.repos.Students, "S-01", "Asha Rao", "10A", "")
	testutil.CreateStudent(t, env.repos.Students, "S-02", "Bilal Khan", "10B", "")
	m1 := testutil.CreateMark(t, env.repos.Marks, "S-01", "Maths", "", 80, 100)
	m2 := testutil.CreateMark(t, env.repos.Marks, "S-01", "Physics", "midterm", 30, 50)
	m3 := testutil.CreateMark(t, env.repos.Marks, "S-02", "Maths", "", 65, 100)
	token := env.adminToken(t, adm)

	detail := func(m mark.Mark) string { return fmt.Sprintf("/v1/marks/%d", m.ID) }

	runHTTPTests(t, env, []httpTest{
		{name: "get all", path: "/v1/marks", token: token, wantData: marchallList(t, m1, m2, m3)},
		{name: "by roll", path: "/v1/marks?roll=S-01", token: token, wantData: marchallList(t, m1, m2)},
		{name: "by subject", path: "/v1/marks?subject=Maths", token: token, wantData: marchallList(t, m1, m3)},
		{name: "by exam type", path: "/v1/marks?exam_type=Midterm", token: token, wantData: marchallList(t, m2)},
		{name: "order by -score", path: "/v1/marks?ordering=-score", token: token, wantData: marchallList(t, m1, m3, m2)},
		{name: "retrieve", path: detail(m2), token: token, wantData: marchallObj(t, m2)},
		{name: "not found", path: "/v1/marks/999", token: token, wantCode: http.StatusNotFound},
		{name: "bad id", path: "/v1/marks/abc", token: token, wantCode: http.StatusNotFound},
		{
			name: "update above max", method: http.MethodPut, path: detail(m2), token: token,
			body: []byte(`{"score": 51}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"score": "score cannot be greater than max_score"}`),
		},
	})

	t.Run("update", func(t *testing.T) {
		rec := env.do(httpTest{method: http.MethodPut, path: detail(m2), token: token, body: []byte(`{"score": 45}`)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var m mark.Mark
		unmarshal(t, rec, &m)
		assert.Equal(t, 45, m.Score)
		assert.Equal(t, 50, m.MaxScore)
	})

	t.Run("delete", func(t *testing.T) {
		rec := env.do(httpTest{method: http.MethodDelete, path: detail(m3), token: token})
		require.Equal(t, http.StatusNoContent, rec.Code)
		_, err := env.repos.Marks.GetMark(ctxBg, m3.ID)
		assert.Equal(t, mark.ErrNotFound, err)
	})
}

func Test_markApi_export(t *testing.T) {
	env := setup(t)
	adm := testutil.CreateAdmin(t, env.repos.Admins, "admin", "", "s3cret-pass", "", "")
	token := env.adminToken(t, adm)

	runHTTPTests(t, env, []httpTest{
		{name: "nothing to export", path: "/v1/marks/export", token: token, wantCode: http.StatusNotFound},
		{
			name: "unsupported format", path: "/v1/marks/export?format=pdf", token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"format": "format must be one of csv, xlsx"}`),
		},
	})

	testutil.CreateStudent(t, env.repos.Students, "S-01", "Asha Rao", "10A", "")
	testutil.CreateMark(t, env.repos.Marks, "S-01", "Maths", "", 80, 100)
	testutil.CreateMark(t, env.repos.Marks, "S-01", "Physics", "", 33, 40)

	t.Run("csv", func(t *testing.T) {
		rec := env.do(httpTest{path: "/v1/marks/export?format=csv", token: token})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="marks.csv"`)

		rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"S-01", "Physics", "final", "33", "40", "82.50"}, rows[2][1:])
	})

	t.Run("xlsx", func(t *testing.T) {
		rec := env.do(httpTest{path: "/v1/marks/export?format=xlsx", token: token})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"), "xlsx files are zip archives")
	})
}
