package tui

import (
	"strings"
	"sync"
)

// Terminal apps can't change the user's actual font. Instead, we can choose
// between Unicode and ASCII glyph sets for tree affordances (twisties,
// branch connectors, the focus marker).

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// applyGlyphPreference reads the tui.glyphs config value. Unknown values are
// ignored.
func applyGlyphPreference(v string) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphTwistyCollapsed() string {
	if glyphs() == glyphSetASCII {
		return ">"
	}
	return "▸"
}

func glyphTwistyExpanded() string {
	if glyphs() == glyphSetASCII {
		return "v"
	}
	return "▾"
}

// glyphBranch connects a nested row to its parent. last marks the final
// sibling before the level drops.
func glyphBranch(last bool) string {
	switch {
	case glyphs() == glyphSetASCII && last:
		return "`-"
	case glyphs() == glyphSetASCII:
		return "|-"
	case last:
		return "╰╴"
	}
	return "├╴"
}

func glyphFocus() string {
	if glyphs() == glyphSetASCII {
		return ">"
	}
	return "▌"
}

func glyphSelected() string {
	if glyphs() == glyphSetASCII {
		return "*"
	}
	return "•"
}
