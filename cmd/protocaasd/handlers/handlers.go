package handlers

import (
	"encoding/json"
	"net/url"

	"github.com/labstack/echo/v4"
	binderr "github.com/protocaas/protocaas/pkg/api-types-binding/errors"
)

// decode reads the request body as JSON into v.
func decode(c echo.Context, v any) error {
	decoder := json.NewDecoder(c.Request().Body)
	if err := decoder.Decode(v); err != nil {
		return binderr.BadRequest("request body should be a JSON object", err)
	}
	return nil
}

// wildcard returns the path matched with "*", unescaped.
func wildcard(c echo.Context) (string, error) {
	raw := c.Param("*")
	p, err := url.PathUnescape(raw)
	if err != nil {
		return "", binderr.BadRequest("malformed path", err)
	}
	if p == "" {
		return "", binderr.BadRequest("file name is required", nil)
	}
	return p, nil
}
