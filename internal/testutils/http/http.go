// Package http builds echo.Context for handler tests.
//
//	c, resp := httptestutil.Post(e, "/api/gui/jobs", body, httptestutil.ContentType("application/json"))
//	err := handler(c)
package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
)

type RequestOption func(*http.Request) *http.Request

func WithContext(ctx context.Context) RequestOption {
	return func(r *http.Request) *http.Request { return r.WithContext(ctx) }
}

// WithHeader appends values to the header key.
func WithHeader(key string, value string, more ...string) RequestOption {
	return func(r *http.Request) *http.Request {
		for _, v := range append([]string{value}, more...) {
			r.Header.Add(key, v)
		}
		return r
	}
}

func ContentType(ctyp string) RequestOption {
	return WithHeader(echo.HeaderContentType, ctyp)
}

// Request makes a context for the request, and a recorder of the response to it.
func Request(e *echo.Echo, method string, target string, body io.Reader, opts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	for _, opt := range opts {
		req = opt(req)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func Get(e *echo.Echo, target string, opts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return Request(e, http.MethodGet, target, nil, opts...)
}

func Post(e *echo.Echo, target string, body io.Reader, opts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return Request(e, http.MethodPost, target, body, opts...)
}

func Put(e *echo.Echo, target string, body io.Reader, opts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return Request(e, http.MethodPut, target, body, opts...)
}

func Delete(e *echo.Echo, target string, opts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return Request(e, http.MethodDelete, target, nil, opts...)
}
