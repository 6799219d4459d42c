package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markbook/core"
	"github.com/trezcool/markbook/core/marks"
	"github.com/trezcool/markbook/core/teacher"
)

var (
	errTeacherIDRequired = echo.NewHTTPError(http.StatusBadRequest, "Teacher ID required")
	errMissingSubmission = echo.NewHTTPError(http.StatusBadRequest, "Missing RowID or Marks")
)

const (
	msgInvalidRequest     = "Invalid request"
	msgInvalidCredentials = "Invalid Credentials"
	msgRecordNotFound     = "Student record not found"
	msgAlreadySubmitted   = "Marks already submitted for this student"
	msgServerError        = "Server Error"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		resp := errorResponse{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if msg, ok := origErr.Message.(string); ok {
				resp.Message = msg
			} else {
				resp.Message = http.StatusText(code)
			}
		case validator.ValidationErrors:
			resp.Errors = make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				resp.Errors[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			resp.Message = msgInvalidRequest
		case *core.ValidationError:
			if origErr.Fields != nil {
				resp.Errors = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					resp.Errors[fErr.Field] = fErr.Error
				}
			}
			code = http.StatusBadRequest
			resp.Message = origErr.Error()
		default:
			switch {
			case errors.Is(err, teacher.ErrNotFound):
				code = http.StatusUnauthorized
				resp.Message = msgInvalidCredentials
			case errors.Is(err, marks.ErrNotFound):
				code = http.StatusNotFound
				resp.Message = msgRecordNotFound
			case errors.Is(err, marks.ErrAlreadySubmitted):
				code = http.StatusBadRequest
				resp.Message = msgAlreadySubmitted
			default: // any other error is a server error
				code = http.StatusInternalServerError
				resp.Message = msgServerError

				logger.Error(msgServerError, errors.Wrap(err, msgServerError), map[string]interface{}{
					"method":     ctx.Request().Method,
					"path":       ctx.Request().URL.Path,
					"requestId":  ctx.Response().Header().Get(echo.HeaderXRequestID),
					"storeError": core.IsStoreError(err),
				})

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
				if ctx.Echo().Debug {
					resp.Message = err.Error()
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
