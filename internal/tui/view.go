package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"wavetree-cli/internal/itemtree"
	"wavetree-cli/internal/model"
)

func (m appModel) View() string {
	if m.showHelp {
		return m.helpView.View() + "\n" + styleMuted().Render("esc: close  ↑/↓: scroll")
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteByte('\n')

	rows := m.renderRows()
	body := m.bodyHeight()
	if body <= 0 {
		body = len(rows)
	}
	end := min(m.offset+body, len(rows))
	for i := m.offset; i < end; i++ {
		b.WriteString(rows[i])
		b.WriteByte('\n')
	}
	if len(rows) == 0 {
		b.WriteString(styleMuted().Render("(empty: add items with `wavetree add`)"))
		b.WriteByte('\n')
	}
	// Pad so the footer stays at the bottom.
	for i := max(end-m.offset, 1); i < body; i++ {
		b.WriteByte('\n')
	}

	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m appModel) header() string {
	title := styleTitle().Render("wavetree")
	undo, redo := m.sess.History.Len()
	meta := fmt.Sprintf("  %d items  %d visible  undo %d  redo %d",
		m.sess.Tree.Len(), m.sess.Tree.VisibleCount(), undo, redo)
	return m.fit(title + styleMuted().Render(meta))
}

func (m appModel) statusLine() string {
	switch {
	case m.prompt != promptNone:
		return m.input.View()
	case m.statusErr:
		return m.fit(styleError().Render(m.status))
	case m.status != "":
		return m.fit(m.status)
	case m.drag != nil:
		if target, _, err := m.dropTarget(); err == nil {
			return m.fit(styleFocus().Render(fmt.Sprintf("drop below focus at level %d (m: drop, </>: level, esc: cancel)", target.Level)))
		}
	}
	if msg, ok := m.sess.History.PeekUndo(); ok {
		return m.fit(styleMuted().Render("last: " + msg))
	}
	return ""
}

// bodyHeight is the number of tree rows that fit between header and
// footer. Zero means the terminal size is not known yet.
func (m appModel) bodyHeight() int {
	if m.height <= 0 {
		return 0
	}
	footer := lipgloss.Height(m.help.View(m.keys))
	return max(m.height-2-footer, 1)
}

// clampScroll keeps the focused row inside the window.
func (m *appModel) clampScroll() {
	body := m.bodyHeight()
	total := m.sess.Tree.VisibleCount()
	if body <= 0 {
		m.offset = 0
		return
	}
	if m.sess.Focused != nil {
		f := int(*m.sess.Focused)
		if f < m.offset {
			m.offset = f
		}
		if f >= m.offset+body {
			m.offset = f - body + 1
		}
	}
	m.offset = max(min(m.offset, total-body), 0)
}

func (m appModel) renderRows() []string {
	var infos []itemtree.Info
	for info := range m.sess.Tree.VisibleInfo() {
		infos = append(infos, info)
	}

	out := make([]string, 0, len(infos))
	for i, info := range infos {
		last := i == len(infos)-1 || infos[i+1].Node.Level < info.Node.Level
		it, _ := m.sess.Items.Get(info.Node.ItemRef)
		focused := m.sess.Focused != nil && *m.sess.Focused == info.VisibleIndex
		out = append(out, m.renderRow(info, it, last, focused))
	}
	return out
}

func (m appModel) renderRow(info itemtree.Info, it model.Item, last, focused bool) string {
	var b strings.Builder

	switch {
	case focused:
		b.WriteString(styleFocus().Render(glyphFocus()))
	default:
		b.WriteByte(' ')
	}
	if info.Node.Selected {
		b.WriteString(glyphSelected())
	} else {
		b.WriteByte(' ')
	}
	b.WriteByte(' ')

	if lvl := int(info.Node.Level); lvl > 0 {
		b.WriteString(strings.Repeat("  ", lvl-1))
		b.WriteString(styleMuted().Render(glyphBranch(last)))
	}

	// Only rows with children get a twisty; empty groups show none.
	switch {
	case info.HasChildren && info.Node.Unfolded:
		b.WriteString(glyphTwistyExpanded())
	case info.HasChildren:
		b.WriteString(glyphTwistyCollapsed())
	default:
		b.WriteByte(' ')
	}
	b.WriteByte(' ')

	b.WriteString(kindStyle(it).Render(it.DisplayName()))
	if it.Kind == model.KindVariable || it.Kind == model.KindPlaceholder {
		if it.Path != "" && it.Path != it.DisplayName() {
			b.WriteString(styleMuted().Render("  " + it.Path))
		}
	}

	line := m.fit(b.String())
	if info.Node.Selected {
		return styleSelected().Render(line)
	}
	return line
}

func kindStyle(it model.Item) lipgloss.Style {
	st := lipgloss.NewStyle()
	switch it.Kind {
	case model.KindGroup:
		st = st.Foreground(colorGroup).Bold(true)
	case model.KindMarker:
		st = st.Foreground(colorMarker)
	case model.KindPlaceholder:
		st = st.Foreground(colorPlaceholder).Italic(true)
	case model.KindDivider:
		st = st.Foreground(colorDivider)
	}
	if c, ok := namedColor(it.Color); ok {
		st = st.Foreground(c)
	}
	if c, ok := namedColor(it.Background); ok {
		st = st.Background(c)
	}
	return st
}

// fit truncates s to the terminal width, keeping escape sequences intact.
func (m appModel) fit(s string) string {
	if m.width <= 0 {
		return s
	}
	return ansi.Truncate(s, m.width, "…")
}

func (m appModel) focusedItem() (model.Item, itemtree.Info, bool) {
	if m.sess.Focused == nil {
		return model.Item{}, itemtree.Info{}, false
	}
	return m.sess.Item(*m.sess.Focused)
}
