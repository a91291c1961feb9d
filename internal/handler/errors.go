package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandler renders echo's own errors (unknown route, wrong method,
// oversized body, unsupported media type) in the same {"error","message"}
// shape the handlers use.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
		}
		if code >= http.StatusInternalServerError {
			log.Error("request failed", zap.Error(err), zap.String("path", c.Path()))
			msg = http.StatusText(code)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, echo.Map{"error": errorCode(code), "message": msg})
		}
		if werr != nil {
			log.Warn("write error response failed", zap.Error(werr))
		}
	}
}

// errorCode turns a status into a snake_case identifier, e.g. 404 -> "not_found".
func errorCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "error"
	}
	return strings.ToLower(strings.ReplaceAll(text, " ", "_"))
}
