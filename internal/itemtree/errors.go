package itemtree

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIndex is returned when an index does not address a node (or,
	// for positions, lies past the end of the sequence).
	ErrInvalidIndex = errors.New("invalid index")
	// ErrInvalidLevel is returned when the requested level is not legal at
	// the requested position.
	ErrInvalidLevel = errors.New("invalid level")
	// ErrCircularMove is returned when a subtree would be moved into itself.
	ErrCircularMove = errors.New("circular move")
	// ErrLevelTooDeep is returned when a level shift would push a node past
	// MaxLevel.
	ErrLevelTooDeep = errors.New("level too deep")
	// ErrCorruptTree is returned when a persisted node list breaks the depth
	// invariant.
	ErrCorruptTree = errors.New("corrupt tree")
)

// CorruptTreeError pinpoints the first node of a persisted sequence that
// breaks the depth invariant.
type CorruptTreeError struct {
	Index ItemIndex
	Level uint8
}

func (e *CorruptTreeError) Error() string {
	return fmt.Sprintf("corrupt tree: node %d has level %d", e.Index, e.Level)
}

func (e *CorruptTreeError) Unwrap() error {
	return ErrCorruptTree
}
