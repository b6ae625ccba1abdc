package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core/export"
	"github.com/nawanshu18/student-result-management-system/core/mark"
)

var errMarkNotFoundInCtx = errors.New("mark object not found in echo.Context")

type markApi struct {
	svc      mark.Service
	validate *validator.Validate
}

func registerMarkAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := markApi{
		svc:      deps.MarkSvc,
		validate: deps.Validate,
	}

	mg := g.Group("/marks", jwt, adminMiddleware())
	mg.POST("", api.save)
	mg.GET("", api.query)
	mg.GET("/export", api.export)

	// detail endpoints
	dg := mg.Group("/:id", markObjectMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// save records a mark; an existing (roll, subject, exam type) is overwritten.
func (api *markApi) save(ctx echo.Context) error {
	var data mark.NewMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMark")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.Save(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving mark")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *markApi) list(ctx echo.Context) ([]mark.Mark, error) {
	filter := new(mark.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return []mark.Mark{}, nil
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	marks, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return nil, errors.Wrap(err, "querying marks")
	}
	if marks == nil {
		marks = []mark.Mark{}
	}
	return marks, nil
}

func (api *markApi) query(ctx echo.Context) error {
	marks, err := api.list(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, marks)
}

func (api *markApi) export(ctx echo.Context) error {
	f, err := export.ParseMarksFormat(ctx.QueryParam("format"))
	if err != nil {
		return err
	}
	marks, err := api.list(ctx)
	if err != nil {
		return err
	}

	data, err := export.Marks(marks, f)
	if err != nil {
		return errors.Wrap(err, "exporting marks")
	}
	return sendDocument(ctx, data, f, "marks."+string(f))
}

func (api *markApi) retrieve(ctx echo.Context) error {
	m, ok := ctx.Get(contextObjectKey).(mark.Mark)
	if !ok {
		return errors.Wrap(errMarkNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *markApi) update(ctx echo.Context) error {
	m, ok := ctx.Get(contextObjectKey).(mark.Mark)
	if !ok {
		return errors.Wrap(errMarkNotFoundInCtx, "retrieving object from context")
	}

	var data mark.UpdateMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMark")
	}
	if err := data.Validate(m, api.validate); err != nil {
		return err
	}

	m, err := api.svc.Update(ctx.Request().Context(), m, data)
	if err != nil {
		return errors.Wrap(err, "updating mark")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *markApi) destroy(ctx echo.Context) error {
	m, ok := ctx.Get(contextObjectKey).(mark.Mark)
	if !ok {
		return errors.Wrap(errMarkNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), m.ID); err != nil {
		return errors.Wrap(err, "deleting mark")
	}
	return ctx.NoContent(http.StatusNoContent)
}
