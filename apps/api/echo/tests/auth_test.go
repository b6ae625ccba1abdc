package tests

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/nawanshu18/student-result-management-system/apps/api/echo"
	"github.com/nawanshu18/student-result-management-system/core/admin"
	testutil "github.com/nawanshu18/student-result-management-system/tests"
)

var (
	errAuthFailed = httpErr{Error: "authentication failed"}
	otpCodeRegex  = regexp.MustCompile(`one-time password is: (\d+)`)
)

func Test_authApi_adminLogin(t *testing.T) {
	env := setup(t)
	testutil.CreateAdmin(t, env.repos.Admins, "admin", "admin@school.test", "s3cret-pass", "", "")

	tests := []httpTest{
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/auth/admin/login",
			body:     []byte(`{"username": "admin", "password": "nope"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, errAuthFailed),
		},
		{
			name: "unknown admin", method: http.MethodPost, path: "/v1/auth/admin/login",
			body:     []byte(`{"username": "ghost", "password": "s3cret-pass"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, errAuthFailed),
		},
		{
			name: "missing password", method: http.MethodPost, path: "/v1/auth/admin/login",
			body:     []byte(`{"username": "admin"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"password": "this field is required"}`),
		},
		{
			name: "missing username", method: http.MethodPost, path: "/v1/auth/admin/login",
			body:     []byte(`{"password": "s3cret-pass"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"username": "this field is required"}`),
		},
	}
	runHTTPTests(t, env, tests)

	t.Run("success (case-insensitive username)", func(t *testing.T) {
		rec := env.do(httpTest{
			method: http.MethodPost, path: "/v1/auth/admin/login",
			body: []byte(`{"username": " ADMIN ", "password": "s3cret-pass"}`),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res LoginResponse
		unmarshal(t, rec, &res)
		assert.NotEmpty(t, res.Token)

		adm, err := env.repos.Admins.GetAdmin(ctxBg, "admin")
		require.NoError(t, err)
		assert.False(t, adm.LastLogin.IsZero(), "last login should be set")
	})
}

func Test_authApi_studentLogin(t *testing.T) {
	env := setup(t)
	testutil.CreateStudent(t, env.repos.Students, "S-01", "Asha Rao", "10A", "15-08-2005")
	testutil.CreateStudent(t, env.repos.Students, "S-02", "No Birthday", "10A", "")

	path := "/v1/auth/student/login"
	tests := []httpTest{
		{
			name: "wrong dob", method: http.MethodPost, path: path,
			body:     []byte(`{"roll": "S-01", "dob": "16-08-2005"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, errAuthFailed),
		},
		{
			name: "unknown roll", method: http.MethodPost, path: path,
			body:     []byte(`{"roll": "S-99", "dob": "15-08-2005"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, errAuthFailed),
		},
		{
			name: "rolls are case-sensitive", method: http.MethodPost, path: path,
			body:     []byte(`{"roll": "s-01", "dob": "15-08-2005"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, errAuthFailed),
		},
		{
			name: "student without dob", method: http.MethodPost, path: path,
			body:     []byte(`{"roll": "S-02", "dob": "15-08-2005"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, errAuthFailed),
		},
		{
			name: "not a date", method: http.MethodPost, path: path,
			body:     []byte(`{"roll": "S-01", "dob": "yesterday"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, errAuthFailed),
		},
		{
			name: "missing dob", method: http.MethodPost, path: path,
			body:     []byte(`{"roll": "S-01"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"dob": "this field is required"}`),
		},
	}
	runHTTPTests(t, env, tests)

	for _, dob := range []string{"15-08-2005", "15/08/2005", " 15-8-2005 "} {
		t.Run("success "+dob, func(t *testing.T) {
			rec := env.do(httpTest{
				method: http.MethodPost, path: path,
				body: marchallObj(t, map[string]string{"roll": " S-01", "dob": dob}),
			})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var res LoginResponse
			unmarshal(t, rec, &res)
			assert.NotEmpty(t, res.Token)
		})
	}
}

func Test_authApi_otp(t *testing.T) {
	env := setup(t)
	testutil.CreateAdmin(t, env.repos.Admins, "admin", "admin@school.test", "s3cret-pass", "", "")
	testutil.CreateAdmin(t, env.repos.Admins, "mailless", "", "s3cret-pass", "", "")

	requested := marchallObj(t, SuccessResponse{
		Success: "If the account exists and has an email address, a one-time password has been sent to it.",
	})
	request := func(t *testing.T, username string) {
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: requested}, env.do(httpTest{
			method: http.MethodPost, path: "/v1/auth/admin/otp",
			body: marchallObj(t, map[string]string{"username": username}),
		}))
	}
	verify := func(username, code string) httpTest {
		return httpTest{
			method: http.MethodPost, path: "/v1/auth/admin/otp/verify",
			body: marchallObj(t, map[string]string{"username": username, "otp": code}),
		}
	}
	lastCode := func(t *testing.T) string {
		sent := env.mailSvc.SentMessages()
		require.NotEmpty(t, sent)
		match := otpCodeRegex.FindStringSubmatch(sent[len(sent)-1].TextContent)
		require.Len(t, match, 2, "no otp in %q", sent[len(sent)-1].TextContent)
		assert.Len(t, match[1], env.conf.Auth.OTPLength)
		return match[1]
	}

	t.Run("unknown admin or no email: same response, no email", func(t *testing.T) {
		request(t, "ghost")
		request(t, "mailless")
		assert.Empty(t, env.mailSvc.SentMessages())
	})

	t.Run("verify without a pending otp", func(t *testing.T) {
		rec := env.do(verify("admin", "123456"))
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, errAuthFailed)}, rec)
	})

	t.Run("single use", func(t *testing.T) {
		request(t, "admin")
		sent := env.mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "admin@school.test", sent[0].To[0].Address)
		code := lastCode(t)

		wrong := "000000"
		if code == wrong {
			wrong = "111111"
		}
		rec := env.do(verify("admin", wrong))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = env.do(verify("admin", code))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res LoginResponse
		unmarshal(t, rec, &res)
		assert.NotEmpty(t, res.Token)

		rec = env.do(verify("admin", code))
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, errAuthFailed)}, rec)
	})

	t.Run("expired", func(t *testing.T) {
		request(t, "admin")
		code := lastCode(t)

		admin.NowFunc = func() time.Time { return time.Now().Add(env.conf.Auth.OTPTimeoutDelta + time.Minute) }
		rec := env.do(verify("admin", code))
		admin.NowFunc = time.Now
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		// cleared on expiry
		rec = env.do(verify("admin", code))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		adm, err := env.repos.Admins.GetAdmin(ctxBg, "admin")
		require.NoError(t, err)
		assert.Empty(t, adm.OTPHash)
	})
}

func Test_authApi_securityQuestion(t *testing.T) {
	env := setup(t)
	testutil.CreateAdmin(t, env.repos.Admins, "admin", "", "s3cret-pass", "Name of your first pet?", "Rex")
	testutil.CreateAdmin(t, env.repos.Admins, "other", "", "s3cret-pass", "", "")

	verifyPath := "/v1/auth/admin/security-question/verify"
	tests := []httpTest{
		{
			name: "question", path: "/v1/auth/admin/security-question?username=Admin",
			wantData: marchallObj(t, SecurityQuestionResponse{Username: "admin", Question: "Name of your first pet?"}),
		},
		{
			name: "no question set", path: "/v1/auth/admin/security-question?username=other",
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, errAuthFailed),
		},
		{
			name: "unknown admin", path: "/v1/auth/admin/security-question?username=ghost",
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, errAuthFailed),
		},
		{
			name: "username required", path: "/v1/auth/admin/security-question",
			wantCode: http.StatusBadRequest, wantData: []byte(`{"username": "this field is required"}`),
		},
		{
			name: "wrong answer", method: http.MethodPost, path: verifyPath,
			body:     []byte(`{"username": "admin", "answer": "Max"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, errAuthFailed),
		},
		{
			name: "answer without question", method: http.MethodPost, path: verifyPath,
			body:     []byte(`{"username": "other", "answer": "Rex"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, errAuthFailed),
		},
		{
			name: "missing answer", method: http.MethodPost, path: verifyPath,
			body:     []byte(`{"username": "admin"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"answer": "this field is required"}`),
		},
	}
	runHTTPTests(t, env, tests)

	t.Run("answer is normalized", func(t *testing.T) {
		rec := env.do(httpTest{method: http.MethodPost, path: verifyPath, body: []byte(`{"username": "admin", "answer": "  rEX "}`)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
}

func Test_authApi_refreshToken(t *testing.T) {
	env := setup(t)
	adm := testutil.CreateAdmin(t, env.repos.Admins, "admin", "", "s3cret-pass", "", "")
	s := testutil.CreateStudent(t, env.repos.Students, "S-01", "Asha Rao", "10A", "15-08-2005")

	path := "/v1/auth/token-refresh"
	runHTTPTests(t, env, []httpTest{
		{name: "auth required", method: http.MethodPost, path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
	})

	for name, token := range map[string]string{"admin": env.adminToken(t, adm), "student": env.studentToken(t, s)} {
		t.Run(name, func(t *testing.T) {
			rec := env.do(httpTest{method: http.MethodPost, path: path, token: token})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var res LoginResponse
			unmarshal(t, rec, &res)
			assert.NotEmpty(t, res.Token)
		})
	}

	t.Run("refresh window expired", func(t *testing.T) {
		claims := NewAdminClaims(env.conf, adm, time.Now().Add(-env.conf.Server.JWTRefreshExpirationDelta-time.Hour).Unix())
		token, err := GenerateToken(claims, env.conf.SecretKey)
		require.NoError(t, err)
		rec := env.do(httpTest{method: http.MethodPost, path: path, token: token})
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})}, rec)
	})

	t.Run("student deleted", func(t *testing.T) {
		token := env.studentToken(t, s)
		_, err := env.repos.Students.DeleteStudentsByRoll(ctxBg, []string{s.Roll})
		require.NoError(t, err)
		rec := env.do(httpTest{method: http.MethodPost, path: path, token: token})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
