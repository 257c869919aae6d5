package loop_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/protocaas/protocaas/pkg/loop"
)

func TestStart(t *testing.T) {
	t.Run("it repeats the task until it breaks", func(t *testing.T) {
		actual, err := loop.Start(
			context.Background(), 1,
			func(_ context.Context, v int) (int, loop.Next) {
				if 10 <= v {
					return v, loop.Break(nil)
				}
				return v + 1, loop.Continue(0)
			},
		)
		if err != nil {
			t.Fatal(err)
		}
		if actual != 10 {
			t.Errorf("actual = %d", actual)
		}
	})

	t.Run("it returns error given to Break with the last value", func(t *testing.T) {
		expectedErr := errors.New("fake")
		actual, err := loop.Start(
			context.Background(), 0,
			func(_ context.Context, v int) (int, loop.Next) {
				return v + 1, loop.Break(expectedErr)
			},
		)
		if !errors.Is(err, expectedErr) {
			t.Errorf("unexpected error: %v", err)
		}
		if actual != 1 {
			t.Errorf("actual = %d", actual)
		}
	})

	t.Run("it stops when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		count, err := loop.Start(
			ctx, 0,
			func(_ context.Context, v int) (int, loop.Next) {
				return v + 1, loop.Continue(10 * time.Millisecond)
			},
		)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("unexpected error: %v", err)
		}
		if count < 1 || 6 < count {
			t.Errorf("task runs %d times", count)
		}
	})

	t.Run("it does not start the task with done context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		_, err := loop.Start(ctx, 0, func(_ context.Context, v int) (int, loop.Next) {
			called = true
			return v, loop.Break(nil)
		})
		if !errors.Is(err, context.Canceled) || called {
			t.Errorf("err = %v, called = %v", err, called)
		}
	})

	t.Run("WithTimeout limits each iteration", func(t *testing.T) {
		_, err := loop.Start(
			context.Background(), 0,
			func(ctx context.Context, v int) (int, loop.Next) {
				<-ctx.Done()
				return v, loop.Break(ctx.Err())
			},
			loop.WithTimeout(10*time.Millisecond),
		)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
