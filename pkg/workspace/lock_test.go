package workspace

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/lessonflow/pkg/adapters/memory"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 2000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("flow-%d", i)
		_ = mgr.WithLock(ctx, id, func(context.Context) error { return nil })
		_ = mgr.Delete(ctx, id)
	}

	if n := len(mgr.locks); n != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", n)
	}
}
