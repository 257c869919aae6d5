package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	httptestutil "github.com/protocaas/protocaas/internal/testutils/http"
	"github.com/protocaas/protocaas/pkg/auth"
	"github.com/protocaas/protocaas/pkg/domain"
	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
	"github.com/protocaas/protocaas/pkg/domain/protocaas/db/memory"
	"github.com/protocaas/protocaas/pkg/gateway"
	"github.com/protocaas/protocaas/pkg/lifecycle"
	"github.com/protocaas/protocaas/pkg/pubsub"
	"github.com/protocaas/protocaas/pkg/signature"
)

var now = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

var master = []byte("0123456789abcdef0123456789abcdef")

const baseURL = "https://bucket.example.com/protocaas"

type sizes map[string]int64

func (s sizes) Size(_ context.Context, url string) (int64, error) {
	if n, ok := s[url]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("%w: %s", domerr.ErrSizeUnavailable, url)
}

type bucket struct{}

func (bucket) PresignPut(_ context.Context, key string, expiry time.Duration) (string, error) {
	return "https://upload.example.com/" + key + "?expiry=" + expiry.String(), nil
}

func (bucket) Stat(context.Context, string) (int64, error) {
	return 0, domerr.ErrSizeUnavailable
}

type env struct {
	db     *memory.Database
	engine *lifecycle.Engine
	gw     *gateway.Gateway
	users  *auth.Users
	sizes  sizes
	e      *echo.Echo
}

// setup builds a server core on the memory database.
//
// Workspace ws-1 is owned by "github|owner", with "github|editor" and "github|viewer".
// Project pj-1 is in ws-1, and jobs there go to the compute resource cr-1 owned by "github|owner".
func setup(t *testing.T) *env {
	t.Helper()
	db := memory.New()
	db.PutWorkspace(domain.Workspace{
		WorkspaceId: "ws-1",
		OwnerId:     "github|owner",
		Users: []domain.WorkspaceUser{
			{UserId: "github|editor", Role: domain.RoleEditor},
			{UserId: "github|viewer", Role: domain.RoleViewer},
		},
		ComputeResourceId: "cr-1",
	})
	db.PutProject(domain.Project{ProjectId: "pj-1", WorkspaceId: "ws-1"})
	if err := db.ComputeResources().Register(context.Background(), "cr-1", "github|owner", "lab", now); err != nil {
		t.Fatal(err)
	}

	s := sizes{}
	clock := func() time.Time { return now }
	engine := lifecycle.New(
		db,
		lifecycle.WithClock(clock),
		lifecycle.WithOutputs(lifecycle.Outputs{BaseURL: baseURL, Bucket: bucket{}, Prober: s}),
	)
	gw := gateway.New(
		db, signature.New(signature.StaticKey(master)),
		gateway.WithClock(clock),
		gateway.WithSubscriptions(pubsub.NewPubnub(pubsub.PubnubConfig{PublishKey: "pub", SubscribeKey: "sub"})),
	)
	users := auth.NewUsers(auth.NewSessionCache(auth.ResolverFunc(
		func(ctx context.Context, token string) (string, error) {
			if token == "bad" {
				return "", domerr.ErrUnauthorized
			}
			return "github|" + token, nil
		},
	)))
	return &env{db: db, engine: engine, gw: gw, users: users, sizes: s, e: echo.New()}
}

// as wraps the handler with the user middleware.
func (env *env) as(h echo.HandlerFunc) echo.HandlerFunc {
	return env.users.Middleware(false, nil)(h)
}

func user(name string) httptestutil.RequestOption {
	return httptestutil.WithHeader(auth.HeaderGithubAccessToken, name)
}

// params sets path parameters as name-value pairs.
func params(c echo.Context, nameAndValues ...string) echo.Context {
	names := []string{}
	values := []string{}
	for i := 0; i+1 < len(nameAndValues); i += 2 {
		names = append(names, nameAndValues[i])
		values = append(values, nameAndValues[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return http.StatusOK
	}
	herr := new(echo.HTTPError)
	if !errors.As(err, &herr) {
		t.Fatalf("error is not HTTPError: %v", err)
	}
	return herr.Code
}

func body[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(resp.Body.Bytes(), &v); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, resp.Body.String())
	}
	return v
}
