/*
Package domain contains the core domain models of the lessonflow editor.

It defines the flow graph (Nodes and Edges), the ordered Blocks owned by each node,
the Document aggregate and the history Snapshots taken from it. This package is kept
pure and free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Node: A typed vertex of the flow (Start, End, Setup, Lecture or Condition).
  - Edge: A connection between nodes. Condition edges carry their branch id.
  - Block: A typed content/config unit, owned by exactly one node.
  - Document: The aggregate root (nodes, edges, per-node blocks, version).
  - Snapshot: A deep copy of a Document recorded in the undo/redo history.
  - FlowFile: The persisted JSON representation of a flow.
*/
package domain
