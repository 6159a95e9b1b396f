package history

// DefaultLimit is the undo depth used when none is configured.
const DefaultLimit = 100

// Entry is one restorable state plus the label of the operation that
// replaced it.
type Entry[T any] struct {
	Message string `json:"message" cbor:"1,keyasint"`
	State   T      `json:"state" cbor:"2,keyasint"`
}

// Stack is a bounded undo/redo history of whole-state snapshots. Recording
// a new state drops the redo side.
type Stack[T any] struct {
	limit int
	undo  []Entry[T]
	redo  []Entry[T]
}

func New[T any](limit int) *Stack[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Stack[T]{limit: limit}
}

func (s *Stack[T]) Limit() int {
	return s.limit
}

// Push records the state that is about to be replaced by the operation
// named msg.
func (s *Stack[T]) Push(msg string, state T) {
	s.undo = append(s.undo, Entry[T]{Message: msg, State: state})
	if len(s.undo) > s.limit {
		s.undo = s.undo[len(s.undo)-s.limit:]
	}
	s.redo = nil
}

// Undo steps back up to count times. current is the live state; it is kept
// on the redo side so the step can be taken again. The restored state is
// returned together with the number of steps actually taken.
func (s *Stack[T]) Undo(current T, count int) (T, int) {
	return step(&s.undo, &s.redo, current, count)
}

// Redo is the inverse of Undo.
func (s *Stack[T]) Redo(current T, count int) (T, int) {
	return step(&s.redo, &s.undo, current, count)
}

func step[T any](from, to *[]Entry[T], current T, count int) (T, int) {
	n := 0
	for ; n < count && len(*from) > 0; n++ {
		last := (*from)[len(*from)-1]
		*from = (*from)[:len(*from)-1]
		*to = append(*to, Entry[T]{Message: last.Message, State: current})
		current = last.State
	}
	return current, n
}

// PeekUndo returns the label of the operation Undo would revert.
func (s *Stack[T]) PeekUndo() (string, bool) {
	if len(s.undo) == 0 {
		return "", false
	}
	return s.undo[len(s.undo)-1].Message, true
}

func (s *Stack[T]) PeekRedo() (string, bool) {
	if len(s.redo) == 0 {
		return "", false
	}
	return s.redo[len(s.redo)-1].Message, true
}

func (s *Stack[T]) Len() (undo, redo int) {
	return len(s.undo), len(s.redo)
}

// Entries returns both sides, oldest first, for persistence.
func (s *Stack[T]) Entries() (undo, redo []Entry[T]) {
	return append([]Entry[T](nil), s.undo...), append([]Entry[T](nil), s.redo...)
}

// Restore replaces both sides, trimming the undo side to the limit.
func (s *Stack[T]) Restore(undo, redo []Entry[T]) {
	if len(undo) > s.limit {
		undo = undo[len(undo)-s.limit:]
	}
	s.undo = append([]Entry[T](nil), undo...)
	s.redo = append([]Entry[T](nil), redo...)
}
