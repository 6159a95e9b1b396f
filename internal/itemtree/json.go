package itemtree

import "github.com/goccy/go-json"

// MarshalJSON writes the tree as its ordered node list.
func (t *Tree) MarshalJSON() ([]byte, error) {
	nodes := t.nodes
	if nodes == nil {
		nodes = []Node{}
	}
	return json.Marshal(nodes)
}

// UnmarshalJSON reads an ordered node list and rejects lists that are not
// shaped like a tree.
func (t *Tree) UnmarshalJSON(b []byte) error {
	var nodes []Node
	if err := json.Unmarshal(b, &nodes); err != nil {
		return err
	}
	if err := validate(nodes); err != nil {
		return err
	}
	t.nodes = nodes
	return nil
}
