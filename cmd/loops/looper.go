package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/protocaas/protocaas/cmd/loops/recurring"
	"github.com/protocaas/protocaas/cmd/loops/tasks/housekeeping"
	"github.com/protocaas/protocaas/cmd/loops/tasks/integrity"
	dbInterface "github.com/protocaas/protocaas/pkg/domain/protocaas/db"
	kintegrity "github.com/protocaas/protocaas/pkg/integrity"
	"github.com/protocaas/protocaas/pkg/loop"
	"github.com/protocaas/protocaas/pkg/metrics"
)

type LoopType string

const (
	Integrity    LoopType = "integrity"
	Housekeeping LoopType = "housekeeping"
)

func (t LoopType) String() string {
	return string(t)
}

func AsLoopType(s string) (LoopType, error) {
	switch t := LoopType(s); t {
	case Integrity, Housekeeping:
		return t, nil
	}
	return "", fmt.Errorf("unknown loop type: %q (should be one of integrity|housekeeping)", s)
}

// prefixed copies the logger with the prefix.
func prefixed(l *log.Logger, prefix string) *log.Logger {
	return log.New(l.Writer(), prefix, l.Flags()|log.Ldate|log.Ltime|log.Lmicroseconds)
}

// monitor logs start and end of each step of the task.
func monitor[T any](logger *log.Logger, task loop.Task[T]) loop.Task[T] {
	var counter uint64
	return func(ctx context.Context, t T) (ret T, next loop.Next) {
		counter += 1
		begin := time.Now()
		logger.Printf("step start: #%d", counter)
		defer func() {
			logger.Printf("step end: #%d (takes %s): %s", counter, time.Since(begin), next)
		}()

		ret, next = task(ctx, t)
		return
	}
}

type LoopManifest struct {
	Type   LoopType
	Policy recurring.Policy

	// NodeTTL is for housekeeping loop.
	NodeTTL time.Duration
}

// StartLoop runs the loop of the type until it stops.
func StartLoop(ctx context.Context, logger *log.Logger, db dbInterface.Database, m metrics.Metrics, manifest LoopManifest) error {
	switch manifest.Type {
	case Integrity:
		l := prefixed(logger, "[integrity loop] ")
		_, err := loop.Start(
			ctx, integrity.Seed(),
			monitor(l, integrity.Task(
				l, db.Workspaces(), kintegrity.New(db.Jobs(), db.Files(), m),
			).Applied(manifest.Policy)),
			loop.WithTimeout(5*time.Minute),
		)
		return err
	case Housekeeping:
		l := prefixed(logger, "[housekeeping loop] ")
		_, err := loop.Start(
			ctx, housekeeping.Seed(manifest.NodeTTL),
			monitor(l, housekeeping.Task(l, db.ComputeResources(), time.Now).Applied(manifest.Policy)),
			loop.WithTimeout(30*time.Second),
		)
		return err
	}
	return fmt.Errorf("unknown loop type: %s", manifest.Type)
}
