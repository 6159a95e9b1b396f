package main

import (
	"os"
	"strconv"
	"strings"

	"wavetree-cli/internal/cli"
)

func isItemRef(s string) bool {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	return err == nil && n > 0
}

// rewriteDirectItemLookupArgs makes `wavetree <ref>` work like
// `wavetree item <ref>`.
//
// Cobra treats the first non-flag token as a subcommand, so argv is
// rewritten before parsing. Persistent flags may come first
// (`wavetree --dir ... 3`), so the first positional token is searched for,
// not just argv[1].
func rewriteDirectItemLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":       true,
		"--session":   true,
		"--format":    true,
		"--log-level": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	insert := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "item")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// The subcommand has to come before the terminator.
			if i+1 < len(argv) && isItemRef(argv[i+1]) {
				return insert(i)
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			switch {
			case strings.Contains(a, "="), boolFlags[a]:
			case valueFlags[a]:
				i++
			}
			continue
		}

		if isItemRef(a) {
			return insert(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectItemLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
