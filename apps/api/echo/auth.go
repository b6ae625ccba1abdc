package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/admin"
	"github.com/nawanshu18/student-result-management-system/core/student"
)

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"

	contextTokenKey   = "userToken"
	contextAdminKey   = "admin"
	contextStudentKey = "student"
	contextObjectKey  = "object"
)

// Claims represents the authorization claims transmitted via a JWT.
// Subject is the admin username or the student roll, depending on Role.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Role         string `json:"role"`
	Name         string `json:"name,omitempty"`
}

func (c Claims) IsAdmin() bool   { return c.Role == RoleAdmin }
func (c Claims) IsStudent() bool { return c.Role == RoleStudent }

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func newClaims(conf *core.Config, role, subject, name string, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   subject,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Role:         role,
		Name:         name,
	}
}

func NewAdminClaims(conf *core.Config, adm admin.Admin, origIat ...int64) *Claims {
	return newClaims(conf, RoleAdmin, adm.Username, adm.Username, origIat...)
}

func NewStudentClaims(conf *core.Config, s student.Student, origIat ...int64) *Claims {
	return newClaims(conf, RoleStudent, s.Roll, s.Name, origIat...)
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextAdmin loads the authenticated Admin once per request.
func getContextAdmin(ctx echo.Context, svc admin.Service) (admin.Admin, error) {
	if adm, ok := ctx.Get(contextAdminKey).(admin.Admin); ok {
		return adm, nil
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return admin.Admin{}, err
	}
	if !claims.IsAdmin() {
		return admin.Admin{}, errHttpForbidden
	}

	adm, err := svc.GetByUsername(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == admin.ErrNotFound {
			return admin.Admin{}, errUnauthorized
		}
		return admin.Admin{}, errors.Wrap(err, "getting admin")
	}
	ctx.Set(contextAdminKey, adm)
	return adm, nil
}

// getContextStudent loads the authenticated Student once per request.
func getContextStudent(ctx echo.Context, svc student.Service) (student.Student, error) {
	if s, ok := ctx.Get(contextStudentKey).(student.Student); ok {
		return s, nil
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return student.Student{}, err
	}
	if !claims.IsStudent() {
		return student.Student{}, errHttpForbidden
	}

	s, err := svc.GetByRoll(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return student.Student{}, errUnauthorized
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	ctx.Set(contextStudentKey, s)
	return s, nil
}

// refreshToken issues a new token for the same subject while the original login is within the refresh window.
func refreshToken(ctx echo.Context, deps ServerDeps) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(deps.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	// the subject must still exist
	var newClaims *Claims
	switch claims.Role {
	case RoleAdmin:
		adm, err := getContextAdmin(ctx, deps.AdminSvc)
		if err != nil {
			return "", errors.Wrap(err, "getting context admin")
		}
		newClaims = NewAdminClaims(deps.Conf, adm, claims.OrigIssuedAt)
	case RoleStudent:
		s, err := getContextStudent(ctx, deps.StudentSvc)
		if err != nil {
			return "", errors.Wrap(err, "getting context student")
		}
		newClaims = NewStudentClaims(deps.Conf, s, claims.OrigIssuedAt)
	default:
		return "", errUnauthorized
	}

	token, err := GenerateToken(newClaims, deps.Conf.SecretKey)
	return token, errors.Wrap(err, "generating token")
}
