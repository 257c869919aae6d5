package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	binderr "github.com/protocaas/protocaas/pkg/api-types-binding/errors"
	apijobs "github.com/protocaas/protocaas/pkg/api/types/jobs"
	kschema "github.com/protocaas/protocaas/pkg/domain/schema/db"
)

// HealthzHandler responds OK when the database is reachable and its schema is up to date.
func HealthzHandler(schema kschema.SchemaInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		current, err := schema.Version(c.Request().Context())
		if err != nil {
			return binderr.NewErrorMessage(
				http.StatusServiceUnavailable, "database is unavailable", binderr.WithError(err),
			)
		}
		latest, err := schema.Latest()
		if err != nil {
			return binderr.InternalServerError(err)
		}
		if current != latest {
			return binderr.NewErrorMessage(
				http.StatusServiceUnavailable,
				fmt.Sprintf("database schema is version %d, but %d is required", current, latest),
			)
		}
		return c.JSON(http.StatusOK, apijobs.SuccessResponse{Success: true})
	}
}
