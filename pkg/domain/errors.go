package domain

import "errors"

// ErrNodeNotFound is returned when a node id does not exist in the document.
var ErrNodeNotFound = errors.New("node not found")

// ErrBlockNotFound is returned when a block id does not exist in the node.
var ErrBlockNotFound = errors.New("block not found")

// ErrFlowNotFound is returned when a flow id cannot be found in the store.
var ErrFlowNotFound = errors.New("flow not found")

// ErrInvalidDocument is returned when an imported document fails validation.
var ErrInvalidDocument = errors.New("invalid document")

// ErrProtectedNode is returned when removing a node the flow cannot live without.
var ErrProtectedNode = errors.New("node cannot be removed")

// ErrDuplicateStart is returned when creating a second Start node.
var ErrDuplicateStart = errors.New("flow already has a start node")

// ErrIndexOutOfRange is returned for reorder and history jumps outside bounds.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrInvalidBlockType is returned for unknown block types or blocks placed on
// a node that cannot own them.
var ErrInvalidBlockType = errors.New("invalid block type")
