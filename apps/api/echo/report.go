package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/export"
	"github.com/nawanshu18/student-result-management-system/core/mark"
	"github.com/nawanshu18/student-result-management-system/core/report"
	"github.com/nawanshu18/student-result-management-system/core/student"
)

type reportApi struct {
	svc        report.Service
	studentSvc student.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := reportApi{
		svc:        deps.ReportSvc,
		studentSvc: deps.StudentSvc,
	}

	rg := g.Group("/reports/:roll", jwt, ownerOrAdminMiddleware())
	rg.GET("", api.retrieve)
	rg.GET("/export", api.export)

	mg := g.Group("/me", jwt, studentMiddleware())
	mg.GET("/report", api.retrieve)
	mg.GET("/report/export", api.export)
}

// roll is the :roll param, or the authenticated student's roll on /me routes.
func (api *reportApi) roll(ctx echo.Context) (string, error) {
	if roll := ctx.Param("roll"); roll != "" {
		return roll, nil
	}
	s, err := getContextStudent(ctx, api.studentSvc)
	if err != nil {
		return "", errors.Wrap(err, "getting context student")
	}
	return s.Roll, nil
}

func (api *reportApi) build(ctx echo.Context) (report.Report, error) {
	roll, err := api.roll(ctx)
	if err != nil {
		return report.Report{}, err
	}
	r, err := api.svc.StudentReport(ctx.Request().Context(), roll, queryBool(ctx, "rank", true))
	if err != nil {
		return report.Report{}, errors.Wrap(err, "building report")
	}
	return r, nil
}

func (api *reportApi) retrieve(ctx echo.Context) error {
	r, err := api.build(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reportApi) export(ctx echo.Context) error {
	f, err := export.ParseReportFormat(ctx.QueryParam("format"))
	if err != nil {
		return err
	}
	r, err := api.build(ctx)
	if err != nil {
		return err
	}

	data, err := export.Report(r, f)
	if err != nil {
		return errors.Wrap(err, "exporting report")
	}
	return sendDocument(ctx, data, f, export.ReportFilename(r, f))
}

type analyticsApi struct {
	conf       *core.Config
	svc        report.Service
	studentSvc student.Service
	markSvc    mark.Service
}

func registerAnalyticsAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := analyticsApi{
		conf:       deps.Conf,
		svc:        deps.ReportSvc,
		studentSvc: deps.StudentSvc,
		markSvc:    deps.MarkSvc,
	}

	ag := g.Group("/analytics", jwt, adminMiddleware())
	ag.GET("/summary", api.summary)
	ag.GET("/subjects", api.subjects)

	g.GET("/stats", api.stats, jwt, adminMiddleware())
}

func (api *analyticsApi) summary(ctx echo.Context) error {
	width := api.conf.BucketWidth
	if v := ctx.QueryParam("bucket"); v != "" {
		w, err := strconv.Atoi(v)
		if err != nil || w <= 0 || w > 100 {
			return core.NewValidationError(nil, core.FieldError{Field: "bucket", Error: "must be a whole number between 1 and 100"})
		}
		width = w
	}

	summary, err := api.svc.ClassSummary(ctx.Request().Context(), width)
	if err != nil {
		return errors.Wrap(err, "summarizing")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *analyticsApi) subjects(ctx echo.Context) error {
	avgs, err := api.svc.SubjectAverages(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing subject averages")
	}
	if avgs == nil {
		avgs = []report.SubjectAverage{}
	}
	return ctx.JSON(http.StatusOK, avgs)
}

func (api *analyticsApi) stats(ctx echo.Context) error {
	students, err := api.studentSvc.Count(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "counting students")
	}
	marks, err := api.markSvc.Count(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "counting marks")
	}
	return ctx.JSON(http.StatusOK, StatsResponse{Students: students, Marks: marks})
}
