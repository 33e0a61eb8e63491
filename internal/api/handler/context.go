package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/todo-api/internal/api/middleware"
	"github.com/taskflow/todo-api/internal/core/domain"
)

// ctxSubject returns the user id set by the Auth middleware. An empty value
// means the route was mounted without the guard.
func ctxSubject(c echo.Context) (string, error) {
	subject := middleware.Subject(c)
	if subject == "" {
		return "", domain.ErrUnauthorized
	}
	return subject, nil
}

// bindAndValidate binds the request body and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
