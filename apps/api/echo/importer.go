package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/importer"
)

const importFileField = "file"

type importApi struct {
	importer *importer.Importer
}

func registerImportAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := importApi{importer: deps.Importer}

	g.POST("/import", api.create, jwt, adminMiddleware())
}

// create imports an uploaded CSV. Rejected rows are listed in the summary, the others are saved.
func (api *importApi) create(ctx echo.Context) error {
	fh, err := ctx.FormFile(importFileField)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: importFileField, Error: "this field is required"})
	}
	file, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer file.Close()

	summary, err := api.importer.Import(ctx.Request().Context(), file)
	if err != nil {
		return errors.Wrap(err, "importing")
	}
	return ctx.JSON(http.StatusOK, summary)
}
