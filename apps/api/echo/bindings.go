package echoapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/nawanshu18/student-result-management-system/core"
	"github.com/nawanshu18/student-result-management-system/core/export"
	"github.com/nawanshu18/student-result-management-system/core/student"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field != "" {
			ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
}

// queryBool reads a boolean query param, def when absent or unparsable.
func queryBool(ctx echo.Context, name string, def bool) bool {
	if b, err := strconv.ParseBool(ctx.QueryParam(name)); err == nil {
		return b
	}
	return def
}

// sendDocument responds with data as a file download.
func sendDocument(ctx echo.Context, data []byte, f export.Format, filename string) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, f.ContentType(), data)
}

type (
	OTPRequest struct {
		Username string `json:"username" validate:"required"`
	}

	SecurityQuestionResponse struct {
		Username string `json:"username"`
		Question string `json:"question"`
	}

	StudentLoginRequest struct {
		Roll string `json:"roll" validate:"required"`
		DOB  string `json:"dob" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	DestroyMultipleRequest struct {
		Rolls []string `query:"roll"`
	}

	StatsResponse struct {
		Students int `json:"students"`
		Marks    int `json:"marks"`
	}
)

func (or *OTPRequest) Validate(validate *validator.Validate) error {
	or.Username = core.CleanString(or.Username, true /* lower */)
	return validate.Struct(or)
}

func (slr *StudentLoginRequest) Validate(validate *validator.Validate) error {
	slr.Roll = student.NormalizeRoll(slr.Roll)
	slr.DOB = core.CleanString(slr.DOB)
	return validate.Struct(slr)
}
