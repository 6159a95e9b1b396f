package publish

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wavetree-cli/internal/itemtree"
	"wavetree-cli/internal/model"
	"wavetree-cli/internal/session"
)

type RenderOptions struct {
	// Title heads the index page. Defaults to "Items".
	Title string
	// IncludeFolded lists the children of folded groups too.
	IncludeFolded bool
	// Links points each index entry at its item page.
	Links bool
}

// RenderIndexMarkdown renders the tree as a nested Markdown list.
func RenderIndexMarkdown(sess *session.Session, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	title := strings.TrimSpace(opt.Title)
	if title == "" {
		title = "Items"
	}
	writeLn("# " + title)
	writeLn("")

	rows := sess.Rows(opt.IncludeFolded)
	if len(rows) == 0 {
		writeLn("_No items._")
		return buf.String()
	}
	for _, r := range rows {
		it, _ := sess.Items.Get(r.Ref)
		label := escapeInline(it.DisplayName())
		if opt.Links {
			label = "[" + label + "](" + itemPagePath(r.Ref) + ")"
		}
		line := strings.Repeat("  ", int(r.Level)) + "- " + label
		if d := detail(it); d != "" {
			line += " — " + d
		}
		if r.HasChildren && !r.Unfolded {
			line += " _(folded)_"
		}
		writeLn(line)
	}
	return buf.String()
}

// RenderItemMarkdown renders one item and the items nested under it.
func RenderItemMarkdown(sess *session.Session, ref itemtree.ItemRef) (string, error) {
	it, ok := sess.Items.Get(ref)
	if !ok {
		return "", session.NotFoundError{Ref: ref}
	}
	idx, ok := sess.Tree.IndexOf(ref)
	if !ok {
		return "", session.NotFoundError{Ref: ref}
	}
	node, _ := sess.Tree.Get(idx)

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + escapeInline(it.DisplayName()))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- Ref: " + strconv.FormatUint(uint64(ref), 10))
	writeLn("- Kind: " + string(it.Kind))
	writeLn(fmt.Sprintf("- Position: %d (level %d)", idx, node.Level))
	if it.Path != "" {
		writeLn("- Path: `" + it.Path + "`")
	}
	if it.Format != "" {
		writeLn("- Format: " + it.Format)
	}
	if it.Kind == model.KindMarker {
		writeLn(fmt.Sprintf("- Marker: %d", it.MarkerIdx))
	}
	if it.Kind == model.KindStream && it.Rows > 0 {
		writeLn(fmt.Sprintf("- Rows: %d", it.Rows))
	}
	if it.Color != "" {
		writeLn("- Color: " + it.Color)
	}
	if it.Background != "" {
		writeLn("- Background: " + it.Background)
	}
	if it.CanHaveChildren() {
		writeLn("- Unfolded: " + strconv.FormatBool(node.Unfolded))
	}
	if !it.CreatedAt.IsZero() {
		writeLn("- Created: " + it.CreatedAt.UTC().Format(time.RFC3339))
	}

	end := sess.Tree.SubtreeEnd(idx)
	if end > idx+1 {
		writeLn("")
		writeLn("## Children")
		writeLn("")
		for i := idx + 1; i < end; i++ {
			n, _ := sess.Tree.Get(i)
			child, _ := sess.Items.Get(n.ItemRef)
			indent := strings.Repeat("  ", int(n.Level-node.Level-1))
			writeLn(indent + "- " + escapeInline(child.DisplayName()) + " (" + string(child.Kind) + ")")
		}
	}
	return buf.String(), nil
}

func detail(it model.Item) string {
	switch it.Kind {
	case model.KindVariable, model.KindPlaceholder, model.KindStream:
		if it.Path != "" && it.Path != it.DisplayName() {
			return "`" + it.Path + "`"
		}
	case model.KindMarker:
		return fmt.Sprintf("marker %d", it.MarkerIdx)
	}
	return ""
}

var inlineEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"`", "\\`",
)

func escapeInline(s string) string {
	return inlineEscaper.Replace(strings.TrimSpace(s))
}

func itemPagePath(ref itemtree.ItemRef) string {
	return "items/" + strconv.FormatUint(uint64(ref), 10) + ".md"
}
