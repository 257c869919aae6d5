package auth

import (
	"errors"

	"github.com/labstack/echo/v4"
	binderr "github.com/protocaas/protocaas/pkg/api-types-binding/errors"
	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
	"github.com/protocaas/protocaas/pkg/metrics"
)

const (
	SchemeComputeResource = "compute-resource"
	SchemeJob             = "job"
	SchemeGithub          = "github"
)

const userIdKey = "protocaas.user-id"

// UserIdOf returns the user id set by the middleware of Users. Empty means anonymous.
func UserIdOf(c echo.Context) string {
	if s, ok := c.Get(userIdKey).(string); ok {
		return s
	}
	return ""
}

func fail(m metrics.Metrics, scheme string, err error) error {
	if errors.Is(err, domerr.ErrUnauthorized) {
		m.IncAuthFailures(scheme)
		return binderr.Unauthorized(err)
	}
	return binderr.InternalServerError(err)
}

// Middleware for routes of compute resources.
//
// The path parameter named as param is the id of the compute resource,
// and the request path is the payload to be signed.
func (cr *ComputeResources) Middleware(param string, m metrics.Metrics) echo.MiddlewareFunc {
	if m == nil {
		m = metrics.Nop{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if err := cr.Verify(req.Context(), req.Header, c.Param(param), req.URL.Path); err != nil {
				return fail(m, SchemeComputeResource, err)
			}
			return next(c)
		}
	}
}

// Middleware for routes of job processes.
//
// The path parameter named as param is the id of the job.
func (jk *JobKeys) Middleware(param string, m metrics.Metrics) echo.MiddlewareFunc {
	if m == nil {
		m = metrics.Nop{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if err := jk.Verify(req.Context(), c.Param(param), req.Header.Get(HeaderJobPrivateKey)); err != nil {
				return fail(m, SchemeJob, err)
			}
			return next(c)
		}
	}
}

// Middleware for routes of GUI users.
//
// When required is false, requests without tokens pass as anonymous.
// Use UserIdOf to get the user in handlers.
func (u *Users) Middleware(required bool, m metrics.Metrics) echo.MiddlewareFunc {
	if m == nil {
		m = metrics.Nop{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			userId, err := u.UserId(req.Context(), req.Header)
			if err != nil {
				return fail(m, SchemeGithub, err)
			}
			if userId == "" && required {
				return fail(m, SchemeGithub, domerr.ErrUnauthorized)
			}
			c.Set(userIdKey, userId)
			return next(c)
		}
	}
}
