package errors

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	apierr "github.com/protocaas/protocaas/pkg/api/types/errors"
	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
)

type ErrorMessageOption func(in *apierr.ErrorMessage) *apierr.ErrorMessage

func WithError(err error) ErrorMessageOption {
	return func(in *apierr.ErrorMessage) *apierr.ErrorMessage {
		if err != nil {
			in.Cause = err
		}
		return in
	}
}

func NewErrorMessage(code int, message string, opts ...ErrorMessageOption) *echo.HTTPError {
	msg := apierr.ErrorMessage{Message: message}
	for _, opt := range opts {
		msg = *opt(&msg)
	}
	return echo.NewHTTPError(code, msg).SetInternal(msg)
}

// Unauthorized does not tell which part of credentials is wrong.
func Unauthorized(err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusUnauthorized, "unauthorized", WithError(err))
}

func Forbidden(err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusForbidden, "forbidden", WithError(err))
}

func NotFound(err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusNotFound, "not found", WithError(err))
}

func BadRequest(message string, err error) *echo.HTTPError {
	if message == "" {
		message = "bad request"
	}
	return NewErrorMessage(http.StatusBadRequest, message, WithError(err))
}

func Conflict(message string, err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusConflict, message, WithError(err))
}

func BadGateway(message string, err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusBadGateway, message, WithError(err))
}

func InternalServerError(err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusInternalServerError, "unexpected error", WithError(err))
}

// From translates an error from domain operations into a HTTP error.
//
// Messages of client errors are the reason of the domain error,
// without locations where it is wrapped.
func From(err error) *echo.HTTPError {
	if err == nil {
		return nil
	}
	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		return herr
	}

	reason := func(sentinel error) string {
		// domain errors are formatted as "sentinel: detail".
		// Walk down the chain to the outermost error which is not a location marker.
		for e := err; e != nil; e = errors.Unwrap(e) {
			if _, ok := e.(interface{ Func() string }); ok {
				continue
			}
			return e.Error()
		}
		return sentinel.Error()
	}

	switch {
	case errors.Is(err, domerr.ErrUnauthorized):
		return Unauthorized(err)
	case errors.Is(err, domerr.ErrForbidden):
		return NewErrorMessage(http.StatusForbidden, reason(domerr.ErrForbidden), WithError(err))
	case errors.Is(err, domerr.ErrMissing):
		return NewErrorMessage(http.StatusNotFound, reason(domerr.ErrMissing), WithError(err))
	case errors.Is(err, domerr.ErrInvalidJobStateChanging):
		return Conflict(reason(domerr.ErrInvalidJobStateChanging), err)
	case errors.Is(err, domerr.ErrInputFileMissing):
		return BadRequest(reason(domerr.ErrInputFileMissing), err)
	case errors.Is(err, domerr.ErrNoComputeResource):
		return Conflict(reason(domerr.ErrNoComputeResource), err)
	case errors.Is(err, domerr.ErrSizeUnavailable):
		return BadGateway(reason(domerr.ErrSizeUnavailable), err)
	case errors.Is(err, domerr.ErrConflict):
		return Conflict(reason(domerr.ErrConflict), err)
	case errors.Is(err, domerr.ErrInvalidArgument):
		return BadRequest(reason(domerr.ErrInvalidArgument), err)
	default:
		return InternalServerError(err)
	}
}

// ErrorHandler renders errors as ErrorMessage, for echo.Echo.HTTPErrorHandler.
//
// When the error is an *echo.HTTPError whose message is not an ErrorMessage
// (routing failures and so on), its message is converted.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		herr := From(err)
		msg, ok := herr.Message.(apierr.ErrorMessage)
		if !ok {
			msg = apierr.ErrorMessage{Message: http.StatusText(herr.Code)}
			if s, isString := herr.Message.(string); isString {
				msg.Message = s
			}
		}
		if herr.Code >= http.StatusInternalServerError {
			e.Logger.Error(err)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(herr.Code)
		} else {
			werr = c.JSON(herr.Code, msg)
		}
		if werr != nil {
			e.Logger.Error(werr)
		}
	}
}
