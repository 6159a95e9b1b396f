package session

import (
	"errors"
	"fmt"

	"wavetree-cli/internal/itemtree"
)

var (
	ErrNoFocus        = errors.New("no focused item")
	ErrNothingToGroup = errors.New("nothing to group")
)

type NotFoundError struct {
	Ref itemtree.ItemRef
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("item not found: %d", e.Ref)
}

type NotGroupError struct {
	Ref itemtree.ItemRef
}

func (e NotGroupError) Error() string {
	return fmt.Sprintf("item %d is not a group", e.Ref)
}
