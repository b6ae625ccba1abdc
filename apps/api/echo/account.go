package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/admin"
	"github.com/nawanshu18/student-result-management-system/core/student"
)

const otpRequestedText = "If the account exists and has an email address, a one-time password has been sent to it."

type authApi struct {
	deps       ServerDeps
	adminSvc   admin.Service
	studentSvc student.Service
	validate   *validator.Validate
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := authApi{
		deps:       deps,
		adminSvc:   deps.AdminSvc,
		studentSvc: deps.StudentSvc,
		validate:   deps.Validate,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/admin/login", api.adminLogin(admin.MethodPassword))
	ag.POST("/admin/otp", api.requestOTP)
	ag.POST("/admin/otp/verify", api.adminLogin(admin.MethodOTP))
	ag.GET("/admin/security-question", api.securityQuestion)
	ag.POST("/admin/security-question/verify", api.adminLogin(admin.MethodSecurityQuestion))
	ag.POST("/student/login", api.studentLogin)

	// authed endpoints
	ag.POST("/token-refresh", api.refreshToken, jwt)
}

func (api *authApi) respondWithToken(ctx echo.Context, claims *Claims) error {
	token, err := GenerateToken(claims, api.deps.Conf.SecretKey)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authApi) adminLogin(method admin.Method) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var data admin.Credentials
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to Credentials")
		}
		if err := data.Validate(method, api.validate); err != nil {
			return err
		}

		adm, err := api.adminSvc.Authenticate(ctx.Request().Context(), method, data)
		if err != nil {
			return errors.Wrap(err, "authenticating admin")
		}
		return api.respondWithToken(ctx, NewAdminClaims(api.deps.Conf, adm))
	}
}

func (api *authApi) requestOTP(ctx echo.Context) error {
	var data OTPRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to OTPRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	err := api.adminSvc.RequestOTP(ctx.Request().Context(), data.Username)
	switch errors.Cause(err) {
	case nil, admin.ErrNotFound, admin.ErrNoEmail:
		// do not tell attackers which accounts exist
	default:
		api.deps.Logger.Error("requesting otp", errors.Wrap(err, "requesting otp"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: otpRequestedText})
}

func (api *authApi) securityQuestion(ctx echo.Context) error {
	username := core.CleanString(ctx.QueryParam("username"), true /* lower */)
	if username == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "username", Error: "this field is required"})
	}

	question, err := api.adminSvc.GetSecurityQuestion(ctx.Request().Context(), username)
	if err != nil {
		return errors.Wrap(err, "getting security question")
	}
	return ctx.JSON(http.StatusOK, SecurityQuestionResponse{Username: username, Question: question})
}

func (api *authApi) studentLogin(ctx echo.Context) error {
	var data StudentLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentLoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.studentSvc.Authenticate(ctx.Request().Context(), data.Roll, data.DOB)
	if err != nil {
		return errors.Wrap(err, "authenticating student")
	}
	return api.respondWithToken(ctx, NewStudentClaims(api.deps.Conf, s))
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.deps)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

type adminApi struct {
	svc      admin.Service
	validate *validator.Validate
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := adminApi{
		svc:      deps.AdminSvc,
		validate: deps.Validate,
	}

	sg := g.Group("/admin/settings", jwt, adminMiddleware())
	sg.GET("", api.retrieveSettings)
	sg.PUT("", api.updateSettings)
	sg.POST("/password", api.changePassword)
}

func (api *adminApi) retrieveSettings(ctx echo.Context) error {
	adm, err := getContextAdmin(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context admin")
	}
	return ctx.JSON(http.StatusOK, adm)
}

func (api *adminApi) updateSettings(ctx echo.Context) error {
	adm, err := getContextAdmin(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context admin")
	}

	var data admin.UpdateSettings
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSettings")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	adm, err = api.svc.UpdateSettings(ctx.Request().Context(), adm, data)
	if err != nil {
		return errors.Wrap(err, "updating settings")
	}
	return ctx.JSON(http.StatusOK, adm)
}

func (api *adminApi) changePassword(ctx echo.Context) error {
	adm, err := getContextAdmin(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context admin")
	}

	var data admin.ChangePassword
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	if err = data.Validate(adm, api.validate); err != nil {
		return err
	}

	if _, err = api.svc.ChangePassword(ctx.Request().Context(), adm, data); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been changed."})
}
