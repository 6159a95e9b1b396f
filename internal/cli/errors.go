package cli

import (
	"fmt"
	"strconv"
	"strings"

	"wavetree-cli/internal/itemtree"
)

type noSessionError struct {
	dir string
}

func (e noSessionError) Error() string {
	return fmt.Sprintf("no session in %s (run `wavetree init`)", e.dir)
}

func errNoSession(dir string) error {
	return noSessionError{dir: dir}
}

type badArgError struct {
	what  string
	value string
}

func (e badArgError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.what, e.value)
}

func parseRef(s string) (itemtree.ItemRef, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, badArgError{what: "item ref", value: s}
	}
	return itemtree.ItemRef(n), nil
}

func parseRefs(args []string) ([]itemtree.ItemRef, error) {
	out := make([]itemtree.ItemRef, 0, len(args))
	for _, a := range args {
		r, err := parseRef(a)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseVisibleIndex(s string) (itemtree.VisibleItemIndex, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, badArgError{what: "visible index", value: s}
	}
	return itemtree.VisibleItemIndex(n), nil
}

func parseDir(s string) (itemtree.MoveDir, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return itemtree.MoveUp, nil
	case "down":
		return itemtree.MoveDown, nil
	}
	return 0, badArgError{what: "direction", value: s}
}

func levelArg(level int) (uint8, error) {
	if level < 0 || level > itemtree.MaxLevel {
		return 0, fmt.Errorf("level %d: %w", level, itemtree.ErrInvalidLevel)
	}
	return uint8(level), nil
}
