package session

import (
	"io"
	"time"

	"wavetree-cli/internal/history"
	"wavetree-cli/internal/itemtree"
	"wavetree-cli/internal/model"

	"github.com/sirupsen/logrus"
)

// Snapshot is everything undo restores.
type Snapshot struct {
	Nodes   []itemtree.Node            `json:"nodes" cbor:"1,keyasint"`
	Items   []model.Item               `json:"items" cbor:"2,keyasint"`
	NextRef itemtree.ItemRef           `json:"nextRef" cbor:"3,keyasint"`
	Focused *itemtree.VisibleItemIndex `json:"focused,omitempty" cbor:"4,keyasint,omitempty"`
}

type Options struct {
	UndoLimit int
	Logger    logrus.FieldLogger
	Now       func() time.Time
}

// Session owns one item tree, the content behind its refs, the keyboard
// focus and the undo history. It is not safe for concurrent use.
type Session struct {
	Tree    *itemtree.Tree
	Items   model.Items
	NextRef itemtree.ItemRef
	Focused *itemtree.VisibleItemIndex
	History *history.Stack[Snapshot]

	log logrus.FieldLogger
	now func() time.Time
}

func New(opts Options) *Session {
	s := &Session{
		Tree:    itemtree.New(),
		Items:   model.Items{},
		History: history.New[Snapshot](opts.UndoLimit),
		log:     opts.Logger,
		now:     opts.Now,
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Session) Snapshot() Snapshot {
	var focused *itemtree.VisibleItemIndex
	if s.Focused != nil {
		f := *s.Focused
		focused = &f
	}
	return Snapshot{
		Nodes:   s.Tree.Nodes(),
		Items:   s.Items.Sorted(),
		NextRef: s.NextRef,
		Focused: focused,
	}
}

// Restore replaces the live state with snap. The node list is validated;
// the history is left alone.
func (s *Session) Restore(snap Snapshot) error {
	tree, err := itemtree.FromNodes(snap.Nodes)
	if err != nil {
		return err
	}
	items := model.Items{}
	for _, it := range snap.Items {
		items.Put(it)
	}
	s.Tree = tree
	s.Items = items
	s.NextRef = snap.NextRef
	s.Focused = nil
	if snap.Focused != nil && int(*snap.Focused) < tree.VisibleCount() {
		f := *snap.Focused
		s.Focused = &f
	}
	return nil
}

// apply runs fn as one undoable operation named msg. When fn fails the
// session is put back exactly as it was.
func (s *Session) apply(msg string, fn func() error) error {
	before := s.Snapshot()
	if err := fn(); err != nil {
		_ = s.Restore(before)
		return err
	}
	s.History.Push(msg, before)
	s.log.WithField("op", msg).Debug("applied")
	return nil
}

// Import replaces the whole session with snap as one undoable step.
func (s *Session) Import(snap Snapshot) error {
	return s.apply("Import session", func() error {
		return s.Restore(snap)
	})
}

// Undo reverts up to count operations and returns how many were reverted.
func (s *Session) Undo(count int) int {
	prev, n := s.History.Undo(s.Snapshot(), count)
	if n > 0 {
		_ = s.Restore(prev)
	}
	return n
}

func (s *Session) Redo(count int) int {
	next, n := s.History.Redo(s.Snapshot(), count)
	if n > 0 {
		_ = s.Restore(next)
	}
	return n
}

func (s *Session) nextRef() itemtree.ItemRef {
	s.NextRef++
	return s.NextRef
}

func (s *Session) canHaveChildren(n itemtree.Node) bool {
	return s.Items.CanHaveChildren(n)
}

// Item returns the content behind the visible node vidx.
func (s *Session) Item(vidx itemtree.VisibleItemIndex) (model.Item, itemtree.Info, bool) {
	info, ok := s.Tree.GetVisibleInfo(vidx)
	if !ok {
		return model.Item{}, info, false
	}
	it, ok := s.Items.Get(info.Node.ItemRef)
	return it, info, ok
}

// Row is a flattened view of one node for listings.
type Row struct {
	Index        itemtree.ItemIndex         `json:"index"`
	VisibleIndex *itemtree.VisibleItemIndex `json:"visibleIndex,omitempty"`
	Ref          itemtree.ItemRef           `json:"ref"`
	Level        uint8                      `json:"level"`
	Kind         model.ItemKind             `json:"kind"`
	Name         string                     `json:"name"`
	Unfolded     bool                       `json:"unfolded"`
	Selected     bool                       `json:"selected"`
	HasChildren  bool                       `json:"hasChildren"`
	Focused      bool                       `json:"focused,omitempty"`
}

// Rows lists the visible nodes, or every node when all is set.
func (s *Session) Rows(all bool) []Row {
	visible := map[itemtree.ItemIndex]itemtree.VisibleItemIndex{}
	for info := range s.Tree.VisibleInfo() {
		visible[info.Index] = info.VisibleIndex
	}

	var out []Row
	for i, n := range s.Tree.All() {
		vidx, shown := visible[i]
		if !shown && !all {
			continue
		}
		it, _ := s.Items.Get(n.ItemRef)
		r := Row{
			Index:       i,
			Ref:         n.ItemRef,
			Level:       n.Level,
			Kind:        it.Kind,
			Name:        it.DisplayName(),
			Unfolded:    n.Unfolded,
			Selected:    n.Selected,
			HasChildren: int(i)+1 < s.Tree.Len() && s.nodeLevel(i+1) > n.Level,
		}
		if shown {
			v := vidx
			r.VisibleIndex = &v
			r.Focused = s.Focused != nil && *s.Focused == vidx
		}
		out = append(out, r)
	}
	return out
}

func (s *Session) nodeLevel(i itemtree.ItemIndex) uint8 {
	n, _ := s.Tree.Get(i)
	return n.Level
}
