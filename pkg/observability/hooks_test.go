package observability

import (
	"context"
	"testing"
	"time"
)

type recordingSolveHooks struct {
	starts, stages, completes int
}

func (h *recordingSolveHooks) OnSolveStart(context.Context, int) { h.starts++ }
func (h *recordingSolveHooks) OnStageComplete(context.Context, string, time.Duration, error) {
	h.stages++
}
func (h *recordingSolveHooks) OnSolveComplete(context.Context, int, time.Duration, error) {
	h.completes++
}

func TestDefaultHooksAreNoops(t *testing.T) {
	// Must not panic.
	ctx := context.Background()
	Solve().OnSolveStart(ctx, 4)
	Solve().OnStageComplete(ctx, "search", time.Second, nil)
	Solve().OnSolveComplete(ctx, 6, time.Second, nil)
	Cache().OnCacheHit(ctx, "solve")
	Cache().OnCacheMiss(ctx, "solve")
	Cache().OnCacheSet(ctx, "solve", 128)
}

func TestSetSolveHooks(t *testing.T) {
	t.Cleanup(func() { SetSolveHooks(NoopSolveHooks{}) })

	h := &recordingSolveHooks{}
	SetSolveHooks(h)

	ctx := context.Background()
	Solve().OnSolveStart(ctx, 4)
	Solve().OnStageComplete(ctx, "tabulate", time.Millisecond, nil)
	Solve().OnStageComplete(ctx, "search", time.Millisecond, nil)
	Solve().OnSolveComplete(ctx, 5, time.Millisecond, nil)

	if h.starts != 1 || h.stages != 2 || h.completes != 1 {
		t.Errorf("recorded %d/%d/%d events, want 1/2/1", h.starts, h.stages, h.completes)
	}
}

func TestSetNilHooksKeepsPrevious(t *testing.T) {
	t.Cleanup(func() { SetSolveHooks(NoopSolveHooks{}) })

	h := &recordingSolveHooks{}
	SetSolveHooks(h)
	SetSolveHooks(nil)

	Solve().OnSolveStart(context.Background(), 2)
	if h.starts != 1 {
		t.Error("nil registration should not replace existing hooks")
	}
}
