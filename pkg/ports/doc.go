/*
Package ports defines the driven ports (interfaces) of the lessonflow editor.

These interfaces decouple the editing core from external implementations, so
the same Editor works with any storage backend or canvas renderer.

# Key Interfaces

  - FlowStore: Persists and loads flows in the exported file format.
  - Renderer: Receives the restored nodes and edges after undo, redo or import.
  - DistributedLocker: Coordinates concurrent access to a flow across instances.
*/
package ports
