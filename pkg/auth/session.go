package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v66/github"
	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
	xe "github.com/protocaas/protocaas/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// DefaultSessionTTL is how long a resolved access token is trusted.
const DefaultSessionTTL = time.Hour

// Resolver finds out the user of an access token.
type Resolver interface {
	// Resolve returns the user id.
	//
	// Returns
	//
	// - error: ErrUnauthorized when the token is rejected.
	Resolve(ctx context.Context, token string) (string, error)
}

type ResolverFunc func(ctx context.Context, token string) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

type session struct {
	userId  string
	expires time.Time
}

// SessionCache remembers users of access tokens for a while.
//
// Concurrent lookups of a token not cached share one resolution.
// Failures are not cached.
type SessionCache struct {
	resolver Resolver
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]session
	group    singleflight.Group
}

type SessionOption func(*SessionCache) *SessionCache

func WithTTL(ttl time.Duration) SessionOption {
	return func(c *SessionCache) *SessionCache {
		c.ttl = ttl
		return c
	}
}

func WithClock(now func() time.Time) SessionOption {
	return func(c *SessionCache) *SessionCache {
		c.now = now
		return c
	}
}

func NewSessionCache(resolver Resolver, options ...SessionOption) *SessionCache {
	c := &SessionCache{
		resolver: resolver,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		sessions: map[string]session{},
	}
	for _, opt := range options {
		c = opt(c)
	}
	return c
}

// UserId of the token.
func (c *SessionCache) UserId(ctx context.Context, token string) (string, error) {
	if userId, ok := c.lookup(token); ok {
		return userId, nil
	}

	ch := c.group.DoChan(token, func() (any, error) {
		userId, err := c.resolver.Resolve(context.WithoutCancel(ctx), token)
		if err != nil {
			return "", err
		}
		c.store(token, userId)
		return userId, nil
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	}
}

// Invalidate forgets the token.
func (c *SessionCache) Invalidate(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, token)
}

// Len is the number of sessions cached, including expired ones not swept yet.
func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

func (c *SessionCache) lookup(token string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[token]
	if !ok {
		return "", false
	}
	if !c.now().Before(s.expires) {
		delete(c.sessions, token)
		return "", false
	}
	return s.userId, true
}

func (c *SessionCache) store(token string, userId string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for t, s := range c.sessions {
		if !now.Before(s.expires) {
			delete(c.sessions, t)
		}
	}
	c.sessions[token] = session{userId: userId, expires: now.Add(c.ttl)}
}

const DefaultGitHubAPI = "https://api.github.com"

// GitHub resolves GitHub access tokens to "github|<login>".
type GitHub struct {
	// BaseURL of the GitHub API. Default is DefaultGitHubAPI.
	BaseURL string

	Client *http.Client
}

func (g GitHub) Resolve(ctx context.Context, token string) (string, error) {
	base := g.BaseURL
	if base == "" {
		base = DefaultGitHubAPI
	}
	baseURL, err := url.Parse(strings.TrimSuffix(base, "/") + "/")
	if err != nil {
		return "", xe.Wrap(err)
	}

	octx := ctx
	if g.Client != nil {
		octx = context.WithValue(ctx, oauth2.HTTPClient, g.Client)
	}
	hc := oauth2.NewClient(octx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	if g.Client != nil {
		hc.Timeout = g.Client.Timeout
	}
	client := github.NewClient(hc)
	client.BaseURL = baseURL

	user, resp, err := client.Users.Get(ctx, "")
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return "", xe.Wrap(fmt.Errorf("%w: github rejected the token", domerr.ErrUnauthorized))
		}
		return "", xe.Wrap(fmt.Errorf("github: %w", err))
	}
	login := user.GetLogin()
	if login == "" {
		return "", xe.Wrap(fmt.Errorf("%w: github returned no login", domerr.ErrUnauthorized))
	}
	return "github|" + login, nil
}
