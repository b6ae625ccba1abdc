package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nawanshu18/student-result-management-system/core/admin"
	testutil "github.com/nawanshu18/student-result-management-system/tests"
)

func Test_adminApi_settings(t *testing.T) {
	env := setup(t)
	adm := testutil.CreateAdmin(t, env.repos.Admins, "registrar", "", "s3cret-pass", "", "")
	token := env.adminToken(t, adm)
	s := testutil.CreateStudent(t, env.repos.Students, "S-01", "Asha Rao", "10A", "15-08-2005")
	studentToken := env.studentToken(t, s)

	tests := []httpTest{
		{name: "no token", path: "/v1/admin/settings", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "student token", path: "/v1/admin/settings", token: studentToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied)},
		{
			name: "invalid email", method: http.MethodPut, path: "/v1/admin/settings", token: token,
			body:     []byte(`{"email": "not-an-email"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"email": "email must be a valid email address"}`),
		},
		{
			name: "question without answer", method: http.MethodPut, path: "/v1/admin/settings", token: token,
			body:     []byte(`{"security_question": "First pet?"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"security_answer": "this field is required"}`),
		},
	}
	runHTTPTests(t, env, tests)

	t.Run("update", func(t *testing.T) {
		rec := env.do(httpTest{
			method: http.MethodPut, path: "/v1/admin/settings", token: token,
			body: []byte(`{"email": " Registrar@School.test ", "security_question": "First pet?", "security_answer": "Rex"}`),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got admin.Admin
		unmarshal(t, rec, &got)
		assert.Equal(t, "registrar@school.test", got.Email)
		assert.Equal(t, "First pet?", got.SecurityQuestion)

		stored, err := env.repos.Admins.GetAdmin(ctxBg, "registrar")
		require.NoError(t, err)
		assert.NoError(t, stored.CheckSecurityAnswer("rex"))
	})
}

func Test_adminApi_changePassword(t *testing.T) {
	env := setup(t)
	adm := testutil.CreateAdmin(t, env.repos.Admins, "registrar", "", "s3cret-pass", "", "")
	token := env.adminToken(t, adm)
	path := "/v1/admin/settings/password"

	tests := []httpTest{
		{
			name: "wrong old password", method: http.MethodPost, path: path, token: token,
			body:     []byte(`{"old_password": "nope", "password": "Xk9-lattice", "password_confirm": "Xk9-lattice"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"old_password": "wrong password"}`),
		},
		{
			name: "common password", method: http.MethodPost, path: path, token: token,
			body:     []byte(`{"old_password": "s3cret-pass", "password": "Password123", "password_confirm": "Password123"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"password": "password is too common"}`),
		},
		{
			name: "mismatch", method: http.MethodPost, path: path, token: token,
			body:     []byte(`{"old_password": "s3cret-pass", "password": "Xk9-lattice", "password_confirm": "Xk9"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "success", method: http.MethodPost, path: path, token: token,
			body:     []byte(`{"old_password": "s3cret-pass", "password": "Xk9-lattice", "password_confirm": "Xk9-lattice"}`),
			wantData: []byte(`{"success": "Password has been changed."}`),
		},
	}
	runHTTPTests(t, env, tests)

	stored, err := env.repos.Admins.GetAdmin(ctxBg, "registrar")
	require.NoError(t, err)
	assert.NoError(t, stored.CheckPassword("Xk9-lattice"))
}
