package filewatch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/protocaas/protocaas/pkg/utils/filewatch"
)

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context is not canceled")
	}
}

func TestUntilModifyContext(t *testing.T) {
	t.Run("when a file is created in a watched directory, it cancels context", func(t *testing.T) {
		dir := t.TempDir()
		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), dir)
		if err != nil {
			t.Fatal(err)
		}
		defer cancel()

		if err := ctx.Err(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "file"), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
		waitDone(t, ctx)
		if context.Cause(ctx) == nil {
			t.Error("cause is not set")
		}
	})

	t.Run("when a watched file is written, it cancels context", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "key")
		if err := os.WriteFile(file, []byte("before"), 0600); err != nil {
			t.Fatal(err)
		}
		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), file)
		if err != nil {
			t.Fatal(err)
		}
		defer cancel()

		if err := os.WriteFile(file, []byte("after"), 0600); err != nil {
			t.Fatal(err)
		}
		waitDone(t, ctx)
	})

	t.Run("when the target does not exist, it returns error", func(t *testing.T) {
		_, _, err := filewatch.UntilModifyContext(
			context.Background(), filepath.Join(t.TempDir(), "no-such-file"),
		)
		if err == nil {
			t.Error("expected error, but got nil")
		}
	})

	t.Run("cancel function cancels context without cause", func(t *testing.T) {
		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		cancel()
		waitDone(t, ctx)
		if ctx.Err() != context.Canceled {
			t.Errorf("unexpected error: %v", ctx.Err())
		}
	})
}
