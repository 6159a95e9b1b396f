package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"wavetree-cli/internal/docs"
	"wavetree-cli/internal/itemtree"
	"wavetree-cli/internal/session"
	"wavetree-cli/internal/store"
	"wavetree-cli/internal/watch"
)

// ownWriteGrace is how long change notifications are ignored after the
// viewer saved, so it doesn't reload its own writes.
const ownWriteGrace = time.Second

type promptMode int

const (
	promptNone promptMode = iota
	promptFind
	promptRename
	promptGroup
)

type reloadMsg struct{}

// dragState is an item picked up with the drag key. level is the drop level
// chosen with the shallower/deeper keys; nil lines the drop up with the row
// above the drop slot.
type dragState struct {
	source itemtree.ItemRef
	level  *uint8
}

type appModel struct {
	ctx     context.Context
	store   store.Store
	sess    *session.Session
	opts    Options
	log     logrus.FieldLogger
	watcher *watch.Watcher
	ui      *store.TUIState

	keys     keyMap
	help     help.Model
	input    textinput.Model
	prompt   promptMode
	helpView viewport.Model
	showHelp bool

	matchIdx int
	drag     *dragState

	status    string
	statusErr bool

	width  int
	height int
	offset int

	// dirty is set by focus and selection changes, which are saved lazily.
	dirty    bool
	lastSave time.Time
	now      func() time.Time
}

func newModel(ctx context.Context, st store.Store, sess *session.Session, opts Options, log logrus.FieldLogger) appModel {
	ui, err := st.LoadTUIState()
	if err != nil {
		log.WithError(err).Warn("load tui state")
		ui = &store.TUIState{Version: 1}
	}

	in := textinput.New()
	in.CharLimit = 256

	h := help.New()
	h.ShowAll = ui.ShowHelp

	return appModel{
		ctx:      ctx,
		store:    st,
		sess:     sess,
		opts:     opts,
		log:      log,
		ui:       ui,
		keys:     defaultKeyMap(),
		help:     h,
		input:    in,
		helpView: viewport.New(0, 0),
		matchIdx: -1,
		now:      time.Now,
	}
}

func (m appModel) Init() tea.Cmd {
	return m.waitForChange()
}

// waitForChange blocks on the session watcher and turns its next
// notification into a reloadMsg.
func (m appModel) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ch := m.watcher.Changed()
	return func() tea.Msg {
		<-ch
		return reloadMsg{}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.helpView.Width = msg.Width
		m.helpView.Height = max(msg.Height-1, 1)
		m.input.Width = max(msg.Width-12, 10)
		if m.showHelp {
			m.renderHelp()
		}
		m.clampScroll()
		return m, nil

	case reloadMsg:
		if m.now().Sub(m.lastSave) >= ownWriteGrace {
			m.reload()
			m.clampScroll()
		}
		return m, m.waitForChange()

	case tea.KeyMsg:
		var cmd tea.Cmd
		switch {
		case m.prompt != promptNone:
			m, cmd = m.updatePrompt(msg)
		case m.showHelp:
			m, cmd = m.updateHelp(msg)
		default:
			m, cmd = m.updateTree(msg)
		}
		m.clampScroll()
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateTree(msg tea.KeyMsg) (appModel, tea.Cmd) {
	m.status, m.statusErr = "", false
	k := m.keys

	switch {
	case key.Matches(msg, k.Quit):
		if m.dirty {
			m.save()
		}
		m.saveUIState()
		return m, tea.Quit

	case key.Matches(msg, k.Up):
		m.sess.MoveFocus(itemtree.MoveUp, 1, false)
		m.dirty = true
	case key.Matches(msg, k.Down):
		m.sess.MoveFocus(itemtree.MoveDown, 1, false)
		m.dirty = true
	case key.Matches(msg, k.ExtendUp):
		m.sess.MoveFocus(itemtree.MoveUp, 1, true)
		m.dirty = true
	case key.Matches(msg, k.ExtendDown):
		m.sess.MoveFocus(itemtree.MoveDown, 1, true)
		m.dirty = true

	case key.Matches(msg, k.MoveUp):
		m.moveFocused(itemtree.MoveUp)
	case key.Matches(msg, k.MoveDown):
		m.moveFocused(itemtree.MoveDown)

	case key.Matches(msg, k.Fold):
		ref, ok := m.focusedRef()
		m.mutate("item.fold", ref, map[string]any{"toggle": true}, func() error {
			if !ok {
				return session.ErrNoFocus
			}
			return m.sess.ToggleFold(&ref)
		})
	case key.Matches(msg, k.FoldAll):
		m.mutate("tree.fold_all", 0, map[string]any{"unfolded": false}, func() error {
			return m.sess.FoldAll(false)
		})
	case key.Matches(msg, k.UnfoldAll):
		m.mutate("tree.fold_all", 0, map[string]any{"unfolded": true}, func() error {
			return m.sess.FoldAll(true)
		})

	case key.Matches(msg, k.Select):
		if err := m.sess.ToggleSelected(nil); err != nil {
			m.fail(err)
		} else {
			m.dirty = true
		}
	case key.Matches(msg, k.Deselect):
		if m.drag != nil {
			m.drag = nil
			m.status = "drag cancelled"
			break
		}
		m.sess.ClearSelection()
		m.dirty = true

	case key.Matches(msg, k.Drag):
		m.toggleDrag()
	case key.Matches(msg, k.Shallower):
		m.shiftDropLevel(-1)
	case key.Matches(msg, k.Deeper):
		m.shiftDropLevel(1)

	case key.Matches(msg, k.Group):
		return m.openPrompt(promptGroup, "Group: ", "Group")
	case key.Matches(msg, k.Dissolve):
		ref, _ := m.focusedRef()
		m.mutate("group.dissolve", ref, nil, func() error {
			return m.sess.DissolveGroup(nil)
		})
	case key.Matches(msg, k.Remove):
		m.remove()
	case key.Matches(msg, k.Rename):
		it, _, ok := m.focusedItem()
		if !ok {
			m.fail(session.ErrNoFocus)
			break
		}
		return m.openPrompt(promptRename, "Rename: ", it.DisplayName())

	case key.Matches(msg, k.Undo):
		m.stepHistory(true)
	case key.Matches(msg, k.Redo):
		m.stepHistory(false)

	case key.Matches(msg, k.Find):
		return m.openPrompt(promptFind, "/", m.ui.LastSearch)
	case key.Matches(msg, k.NextMatch):
		m.nextMatch()

	case key.Matches(msg, k.Copy):
		it, _, ok := m.focusedItem()
		if !ok {
			m.fail(session.ErrNoFocus)
			break
		}
		if err := copyToClipboard(it.DisplayName()); err != nil {
			m.fail(err)
			break
		}
		m.status = "copied " + it.DisplayName()

	case key.Matches(msg, k.Reload):
		m.reload()
	case key.Matches(msg, k.Help):
		m.showHelp = true
		m.renderHelp()
	case key.Matches(msg, k.Footer):
		m.help.ShowAll = !m.help.ShowAll
		m.ui.ShowHelp = m.help.ShowAll
		m.saveUIState()
	}
	return m, nil
}

func (m appModel) openPrompt(mode promptMode, label, value string) (appModel, tea.Cmd) {
	m.prompt = mode
	m.input.Prompt = label
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m appModel) updatePrompt(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = promptNone
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		mode := m.prompt
		val := strings.TrimSpace(m.input.Value())
		m.prompt = promptNone
		m.input.Blur()
		m.submitPrompt(mode, val)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *appModel) submitPrompt(mode promptMode, val string) {
	switch mode {
	case promptFind:
		m.ui.LastSearch = val
		m.saveUIState()
		m.matchIdx = -1
		m.nextMatch()
	case promptRename:
		ref, ok := m.focusedRef()
		m.mutate("item.rename", ref, map[string]any{"name": val}, func() error {
			if !ok {
				return session.ErrNoFocus
			}
			return m.sess.Rename(ref, val)
		})
	case promptGroup:
		var group itemtree.ItemRef
		m.mutate("group.create", 0, map[string]any{"name": val}, func() error {
			var err error
			group, err = m.sess.GroupItems(val, nil, nil)
			return err
		})
		if group != 0 && !m.statusErr {
			m.status = "created group " + val
		}
	}
}

func (m appModel) updateHelp(msg tea.KeyMsg) (appModel, tea.Cmd) {
	if msg.Type == tea.KeyEsc || key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Quit) {
		m.showHelp = false
		return m, nil
	}
	var cmd tea.Cmd
	m.helpView, cmd = m.helpView.Update(msg)
	return m, cmd
}

func (m *appModel) renderHelp() {
	md, _ := docs.Get("keys")
	out, err := docs.Render(md, m.width, glamourStyle())
	if err != nil {
		m.log.WithError(err).Debug("render help")
		out = md
	}
	m.helpView.SetContent(out)
	m.helpView.GotoTop()
}

func (m *appModel) moveFocused(dir itemtree.MoveDir) {
	ref, _ := m.focusedRef()
	m.mutate("item.step", ref, map[string]any{"dir": dir.String(), "count": 1}, func() error {
		return m.sess.MoveFocusedItem(dir, 1)
	})
}

// remove drops the selected rows, or the focused row when nothing is
// selected.
func (m *appModel) remove() {
	refs := m.sess.SelectedRefs()
	if len(refs) == 0 {
		ref, ok := m.focusedRef()
		if !ok {
			m.fail(session.ErrNoFocus)
			return
		}
		refs = []itemtree.ItemRef{ref}
	}
	m.mutate("item.remove", refs[0], map[string]any{"refs": refs}, func() error {
		return m.sess.RemoveItems(refs)
	})
}

// dropSlot is the visible slot right below the focused row.
func (m appModel) dropSlot() (itemtree.VisibleItemIndex, bool) {
	if m.sess.Focused == nil {
		return 0, false
	}
	return *m.sess.Focused + 1, true
}

// dropTarget resolves the pending drop. A chosen level that the current
// slot no longer allows falls back to lining up with the row above.
func (m appModel) dropTarget() (itemtree.TargetPosition, itemtree.LevelRange, error) {
	slot, ok := m.dropSlot()
	if !ok {
		return itemtree.TargetPosition{}, itemtree.LevelRange{}, session.ErrNoFocus
	}
	valid := m.sess.DropLevels(slot)
	level := m.drag.level
	if level != nil && !valid.Contains(int(*level)) {
		level = nil
	}
	target, err := m.sess.DropTarget(slot, level)
	return target, valid, err
}

func (m *appModel) toggleDrag() {
	if m.drag == nil {
		ref, ok := m.focusedRef()
		if !ok {
			m.fail(session.ErrNoFocus)
			return
		}
		m.drag = &dragState{source: ref}
		m.status = "dragging: move focus, m drops below the focused row, esc cancels"
		return
	}

	drag := m.drag
	source, ok := m.visibleIndexOf(drag.source)
	if !ok {
		m.drag = nil
		m.fail(fmt.Errorf("dragged item %d is hidden", drag.source))
		return
	}
	target, _, err := m.dropTarget()
	if err != nil {
		m.fail(err)
		return
	}
	m.drag = nil
	m.mutate("item.move", drag.source, map[string]any{"before": target.Before, "level": target.Level}, func() error {
		return m.sess.DropSelection(source, target)
	})
}

func (m *appModel) shiftDropLevel(delta int) {
	if m.drag == nil {
		return
	}
	target, valid, err := m.dropTarget()
	if err != nil {
		m.fail(err)
		return
	}
	next := int(target.Level) + delta
	if !valid.Contains(next) {
		m.status = fmt.Sprintf("drop level stays %d", target.Level)
		return
	}
	l := uint8(next)
	m.drag.level = &l
	m.status = fmt.Sprintf("drop at level %d", l)
}

func (m appModel) visibleIndexOf(ref itemtree.ItemRef) (itemtree.VisibleItemIndex, bool) {
	for info := range m.sess.Tree.VisibleInfo() {
		if info.Node.ItemRef == ref {
			return info.VisibleIndex, true
		}
	}
	return 0, false
}

func (m *appModel) stepHistory(undo bool) {
	var (
		msg string
		n   int
		typ string
	)
	if undo {
		msg, _ = m.sess.History.PeekUndo()
		n, typ = m.sess.Undo(1), "history.undo"
	} else {
		msg, _ = m.sess.History.PeekRedo()
		n, typ = m.sess.Redo(1), "history.redo"
	}
	if n == 0 {
		m.status = "nothing to " + strings.TrimPrefix(typ, "history.")
		return
	}
	m.commit(typ, 0, map[string]any{"count": n, "message": msg})
	m.status = strings.TrimPrefix(typ, "history.") + ": " + msg
}

// nextMatch focuses the next hit of the last search. Matches are recomputed
// each time so they follow the current visible rows.
func (m *appModel) nextMatch() {
	q := m.ui.LastSearch
	if q == "" {
		m.status = "no search"
		return
	}
	matches := m.sess.Find(q)
	if len(matches) == 0 {
		m.fail(errors.New("no match for " + q))
		return
	}
	m.matchIdx = (m.matchIdx + 1) % len(matches)
	if m.matchIdx < 0 {
		m.matchIdx = 0
	}
	hit := matches[m.matchIdx]
	if err := m.sess.Focus(hit.VisibleIndex); err != nil {
		m.fail(err)
		return
	}
	m.dirty = true
	m.status = hit.Name
}

// mutate runs an undoable session operation and persists it.
func (m *appModel) mutate(typ string, ref itemtree.ItemRef, payload any, fn func() error) {
	if err := fn(); err != nil {
		m.fail(err)
		return
	}
	m.commit(typ, ref, payload)
}

func (m *appModel) commit(typ string, ref itemtree.ItemRef, payload any) {
	if !m.save() {
		return
	}
	if _, err := m.store.AppendEvent(m.ctx, typ, ref, payload); err != nil {
		m.log.WithError(err).WithField("op", typ).Warn("append event")
	}
	m.log.WithFields(logrus.Fields{"op": typ, "ref": ref}).Debug("committed")
}

func (m *appModel) save() bool {
	m.lastSave = m.now()
	if err := m.store.Save(m.ctx, m.sess); err != nil {
		m.log.WithError(err).Error("save session")
		m.fail(err)
		return false
	}
	m.dirty = false
	return true
}

func (m *appModel) saveUIState() {
	if err := m.store.SaveTUIState(m.ui); err != nil {
		m.log.WithError(err).Warn("save tui state")
	}
}

// reload replaces the session with what is on disk, keeping the focus on
// the same item when it is still visible.
func (m *appModel) reload() {
	ref, had := m.focusedRef()
	sess, err := m.store.Load(m.ctx, session.Options{UndoLimit: m.opts.UndoLimit, Logger: m.log})
	if err != nil {
		m.log.WithError(err).Error("reload session")
		m.fail(err)
		return
	}
	m.sess = sess
	m.dirty = false
	if had {
		if vidx, ok := m.visibleIndexOf(ref); ok {
			_ = sess.Focus(vidx)
		}
	}
	m.status = "reloaded"
}

func (m *appModel) fail(err error) {
	m.status, m.statusErr = err.Error(), true
}

func (m appModel) focusedRef() (itemtree.ItemRef, bool) {
	i, ok := m.sess.FocusedIndex()
	if !ok {
		return 0, false
	}
	n, _ := m.sess.Tree.Get(i)
	return n.ItemRef, true
}
