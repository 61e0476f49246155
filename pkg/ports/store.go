package ports

import (
	"context"

	"github.com/aretw0/lessonflow/pkg/domain"
)

// FlowStore defines the interface for persisting flows.
// Flows are stored in their exported form, keyed by FlowFile.ID.
type FlowStore interface {
	// Save persists the flow, replacing any previous version with the same id.
	Save(ctx context.Context, flow domain.FlowFile) error

	// Load retrieves the flow with the given id.
	// Returns domain.ErrFlowNotFound if the flow does not exist.
	Load(ctx context.Context, id string) (domain.FlowFile, error)

	// Delete removes the flow. Deleting a missing flow is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of all stored flows.
	List(ctx context.Context) ([]string, error)
}
