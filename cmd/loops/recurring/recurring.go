// Package recurring turns a sweep into a loop task, driven by a policy.
package recurring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/protocaas/protocaas/pkg/loop"
)

// Task is a sweep step.
//
// Returns
//
// - T: the cursor for the next step.
//
// - bool: true when the step did something and more backlog can remain.
//
// - error: failure of the step.
type Task[T any] func(context.Context, T) (T, bool, error)

// Applied makes loop.Task which runs rt and asks p what to do next.
func (rt Task[T]) Applied(p Policy) loop.Task[T] {
	return func(ctx context.Context, t T) (T, loop.Next) {
		next, more, err := rt(ctx, t)
		return next, p.Next(more, err)
	}
}

// ParsePolicy parses "forever", "forever:COOLDOWN" or "backlog".
func ParsePolicy(s string) (Policy, error) {
	name, param, hasParam := strings.Cut(s, ":")
	switch name {
	case "forever":
		if !hasParam || param == "" {
			return Forever(0), nil
		}
		cooldown, err := time.ParseDuration(param)
		if err != nil {
			return nil, fmt.Errorf(`%s is not "forever:COOLDOWN": %w`, s, err)
		}
		if cooldown < 0 {
			return nil, fmt.Errorf("cooldown should not be negative: %s", s)
		}
		return Forever(cooldown), nil
	case "backlog":
		if hasParam {
			return nil, fmt.Errorf("backlog takes no parameters: %s", s)
		}
		return Backlog(), nil
	}
	return nil, fmt.Errorf("unknown policy: %q (should be forever[:COOLDOWN] or backlog)", s)
}

// Policy decides what a loop does after each step.
type Policy interface {
	Next(more bool, err error) loop.Next
	String() string
}

// Forever continues immediately while backlog remains, and otherwise after cooldown.
//
// Errors are ignored. Wrap it with UntilError or ReportErrors.
func Forever(cooldown time.Duration) Policy {
	return forever(cooldown)
}

type forever time.Duration

func (f forever) String() string {
	return "forever:" + time.Duration(f).String()
}

func (f forever) Next(more bool, _ error) loop.Next {
	if more {
		return loop.Continue(0)
	}
	return loop.Continue(time.Duration(f))
}

// Backlog continues while backlog remains, and stops after that.
func Backlog() Policy {
	return backlog{}
}

type backlog struct{}

func (backlog) String() string {
	return "backlog"
}

func (backlog) Next(more bool, _ error) loop.Next {
	if more {
		return loop.Continue(0)
	}
	return loop.Break(nil)
}

// UntilError stops the loop with the first error.
func UntilError(p Policy) Policy {
	return untilError{base: p}
}

type untilError struct {
	base Policy
}

func (u untilError) String() string {
	return u.base.String() + " (until error)"
}

func (u untilError) Next(more bool, err error) loop.Next {
	if err != nil {
		return loop.Break(err)
	}
	return u.base.Next(more, nil)
}

// ReportErrors passes errors to report, and goes on as if the step left no backlog.
func ReportErrors(p Policy, report func(error)) Policy {
	return reportErrors{base: p, report: report}
}

type reportErrors struct {
	base   Policy
	report func(error)
}

func (r reportErrors) String() string {
	return r.base.String() + " (reporting errors)"
}

func (r reportErrors) Next(more bool, err error) loop.Next {
	if err != nil {
		r.report(err)
		return r.base.Next(false, nil)
	}
	return r.base.Next(more, nil)
}
