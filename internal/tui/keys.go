package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	ExtendUp   key.Binding
	ExtendDown key.Binding
	MoveUp     key.Binding
	MoveDown   key.Binding
	Drag       key.Binding
	Shallower  key.Binding
	Deeper     key.Binding
	Fold       key.Binding
	FoldAll    key.Binding
	UnfoldAll  key.Binding
	Select     key.Binding
	Deselect   key.Binding
	Group      key.Binding
	Dissolve   key.Binding
	Remove     key.Binding
	Rename     key.Binding
	Undo       key.Binding
	Redo       key.Binding
	Find       key.Binding
	NextMatch  key.Binding
	Copy       key.Binding
	Reload     key.Binding
	Help       key.Binding
	Footer     key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		ExtendUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "extend up")),
		ExtendDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "extend down")),
		MoveUp:     key.NewBinding(key.WithKeys("alt+k", "ctrl+up"), key.WithHelp("alt+k", "move item up")),
		MoveDown:   key.NewBinding(key.WithKeys("alt+j", "ctrl+down"), key.WithHelp("alt+j", "move item down")),
		Drag:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "pick up / drop below")),
		Shallower:  key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "drop shallower")),
		Deeper:     key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "drop deeper")),
		Fold:       key.NewBinding(key.WithKeys("enter", "tab"), key.WithHelp("enter", "fold")),
		FoldAll:    key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "fold all")),
		UnfoldAll:  key.NewBinding(key.WithKeys("Z"), key.WithHelp("Z", "unfold all")),
		Select:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "select")),
		Deselect:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
		Group:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "group")),
		Dissolve:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dissolve")),
		Remove:     key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		Rename:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename")),
		Undo:       key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Redo:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "redo")),
		Find:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "find")),
		NextMatch:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next match")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy name")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Footer:     key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "more keys")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Fold, k.Select, k.MoveDown, k.Undo, k.Find, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.ExtendUp, k.ExtendDown, k.MoveUp, k.MoveDown},
		{k.Drag, k.Shallower, k.Deeper},
		{k.Fold, k.FoldAll, k.UnfoldAll, k.Select, k.Deselect},
		{k.Group, k.Dissolve, k.Remove, k.Rename, k.Undo, k.Redo},
		{k.Find, k.NextMatch, k.Copy, k.Reload, k.Help, k.Footer, k.Quit},
	}
}
