// Package housekeeping forgets compute resource nodes which stopped polling.
package housekeeping

import (
	"context"
	"log"
	"time"

	"github.com/protocaas/protocaas/cmd/loops/recurring"
)

type Cursor struct {
	// NodeTTL is how long a silent node is remembered.
	NodeTTL time.Duration
}

func Seed(nodeTTL time.Duration) Cursor {
	return Cursor{NodeTTL: nodeTTL}
}

type Nodes interface {
	PruneNodes(ctx context.Context, before time.Time) (int, error)
}

// Task prunes nodes whose last heartbeat is older than the TTL.
//
// It never reports backlog. One prune covers every node.
func Task(logger *log.Logger, nodes Nodes, now func() time.Time) recurring.Task[Cursor] {
	return func(ctx context.Context, cursor Cursor) (Cursor, bool, error) {
		n, err := nodes.PruneNodes(ctx, now().Add(-cursor.NodeTTL))
		if err != nil {
			return cursor, false, err
		}
		if 0 < n {
			logger.Printf("%d nodes are pruned", n)
		}
		return cursor, false, nil
	}
}
