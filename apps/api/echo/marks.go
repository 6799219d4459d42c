package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markbook/core"
	"github.com/trezcool/markbook/core/marks"
	"github.com/trezcool/markbook/core/teacher"
)

type (
	loginRequest struct {
		TeacherID flexString `json:"teacherId" validate:"required,notblank"`
		PIN       flexString `json:"pin" validate:"required"`
	}

	loginResponse struct {
		Success bool             `json:"success"`
		Teacher teacher.Identity `json:"teacher"`
	}

	submitRequest struct {
		RowID         flexNumber `json:"rowId"`
		ObtainedMarks flexNumber `json:"obtainedMarks"`
	}

	submitResponse struct {
		Success bool         `json:"success"`
		Message string       `json:"message"`
		Record  marks.Record `json:"record"`
	}
)

type marksApi struct {
	teacherSvc teacher.Service
	marksSvc   marks.Service
	validate   *validator.Validate
}

func registerMarksAPI(g *echo.Group, teacherSvc teacher.Service, marksSvc marks.Service, validate *validator.Validate) {
	api := marksApi{
		teacherSvc: teacherSvc,
		marksSvc:   marksSvc,
		validate:   validate,
	}

	g.POST("/login", api.login)
	g.GET("/students", api.listPending)
	g.POST("/submit", api.submit)
}

// Handlers

func (api *marksApi) login(ctx echo.Context) error {
	var data loginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to loginRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	id, err := api.teacherSvc.Authenticate(ctx.Request().Context(), core.CleanString(string(data.TeacherID)), string(data.PIN))
	if err != nil {
		return errors.Wrap(err, "authenticating teacher")
	}
	return ctx.JSON(http.StatusOK, loginResponse{Success: true, Teacher: id})
}

func (api *marksApi) listPending(ctx echo.Context) error {
	teacherID := core.CleanString(ctx.QueryParam("teacherId"))
	if teacherID == "" {
		return errTeacherIDRequired
	}

	records, err := api.marksSvc.ListPending(ctx.Request().Context(), teacherID)
	if err != nil {
		return errors.Wrap(err, "listing pending records")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *marksApi) submit(ctx echo.Context) error {
	var data submitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to submitRequest")
	}
	if !data.RowID.Set || data.RowID.Value == 0 || !data.ObtainedMarks.Set {
		return errMissingSubmission
	}
	rowID, ok := data.RowID.Int()
	if !ok { // no row can be addressed by a fractional id
		return marks.ErrNotFound
	}

	rec, err := api.marksSvc.Submit(ctx.Request().Context(), rowID, data.ObtainedMarks.Value)
	if err != nil {
		return errors.Wrapf(err, "submitting marks for RowID %d", rowID)
	}
	return ctx.JSON(http.StatusOK, submitResponse{
		Success: true,
		Message: "Marks saved successfully",
		Record:  rec,
	})
}
