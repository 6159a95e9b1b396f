package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The viewer must stay readable on light and dark terminals, so colors are
// adaptive and faint styling is only used on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorAccent     lipgloss.TerminalColor = ac("27", "62")
	colorError      lipgloss.TerminalColor = ac("160", "203")

	// Row tints per item kind.
	colorGroup       lipgloss.TerminalColor = ac("25", "111")
	colorMarker      lipgloss.TerminalColor = ac("130", "214")
	colorPlaceholder lipgloss.TerminalColor = ac("244", "240")
	colorDivider     lipgloss.TerminalColor = ac("245", "238")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleSelected() lipgloss.Style {
	return lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg)
}

func styleFocus() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorError)
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
}

// namedColor maps an item's color name onto a terminal color. Unknown names
// are passed through so ANSI numbers and hex values work as well.
func namedColor(name string) (lipgloss.TerminalColor, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return nil, false
	case "red":
		return lipgloss.Color("1"), true
	case "green":
		return lipgloss.Color("2"), true
	case "yellow":
		return lipgloss.Color("3"), true
	case "blue":
		return lipgloss.Color("4"), true
	case "purple", "magenta":
		return lipgloss.Color("5"), true
	case "cyan":
		return lipgloss.Color("6"), true
	case "white":
		return lipgloss.Color("7"), true
	case "gray", "grey":
		return lipgloss.Color("8"), true
	}
	return lipgloss.Color(name), true
}

// applyColorProfilePreference sets Lip Gloss's color profile for the
// interactive viewer.
//
// termenv.EnvColorProfile respects CLICOLOR/CLICOLOR_FORCE, which can
// disable colors in a TUI by accident. Only NO_COLOR is honored here;
// otherwise the terminal's capabilities decide.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection, which some
// terminals don't report reliably.
//
// Priority:
// 1) tui.theme config: light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg")
func applyThemePreference(theme string) {
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}

// glamourStyle picks the help renderer style matching the background.
func glamourStyle() string {
	if lipgloss.ColorProfile() == termenv.Ascii {
		return "notty"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
