package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/user"
)

type errorResponse struct {
	Msg     string      `json:"msg"`
	Details interface{} `json:"details,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			appErr  *core.Error
			vErrs   validator.ValidationErrors
			valErr  *core.ValidationError
			httpErr *echo.HTTPError
		)

		switch {
		case errors.As(err, &appErr):
		case errors.As(err, &vErrs):
			appErr = core.ErrInvalidData.WithDetails(core.TranslateErrors(vErrs, translator))
		case errors.As(err, &valErr):
			if flds := valErr.FieldMap(); flds != nil {
				appErr = core.ErrInvalidData.WithDetails(flds)
			} else {
				appErr = core.NewInvalidDataError(valErr.Error())
			}
		case errors.As(err, &httpErr):
			if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
				httpErr = herr
			}
			switch httpErr.Code {
			case http.StatusBadRequest: // malformed body or params
				appErr = core.ErrInvalidData.WithDetails(fmt.Sprint(httpErr.Message))
			case http.StatusNotFound:
				appErr = core.ErrEntityNotFound
			default:
				appErr = &core.Error{
					Kind:    core.KindBadRequest,
					Message: fmt.Sprint(httpErr.Message),
					Status:  httpErr.Code,
				}
			}
		default: // any other error is a server error
			msg := http.StatusText(http.StatusInternalServerError)
			appErr = &core.Error{Message: msg, Status: http.StatusInternalServerError}

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		res := errorResponse{Msg: appErr.Error(), Details: appErr.Details}
		if appErr.Kind == "" {
			res.Msg = appErr.Message
			if ctx.Echo().Debug {
				res.Details = fmt.Sprintf("%+v", err)
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(appErr.Status)
			} else {
				err = ctx.JSON(appErr.Status, res)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
