package memory_test

import (
	"testing"

	"github.com/aretw0/lessonflow/pkg/adapters/memory"
	"github.com/aretw0/lessonflow/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunFlowStoreContract(t, store)
}
