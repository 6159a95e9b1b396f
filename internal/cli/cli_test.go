package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"wavetree-cli/internal/store"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// newSessionDir points the config at a temp dir and initialises a session.
func newSessionDir(t *testing.T) string {
	t.Helper()
	t.Setenv("WAVETREE_CONFIG_DIR", t.TempDir())
	dir := filepath.Join(t.TempDir(), "s")
	mustRun(t, dir, "init")
	return dir
}

func mustRun(t *testing.T, dir string, args ...string) map[string]any {
	t.Helper()
	out, errOut, err := runCLI(t, append([]string{"--dir", dir}, args...))
	if err != nil {
		t.Fatalf("%s: %v\nstderr:\n%s", strings.Join(args, " "), err, string(errOut))
	}
	var env map[string]any
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("%s: decode output: %v\n%s", strings.Join(args, " "), err, string(out))
	}
	return env
}

func dataMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	m, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %#v", env["data"])
	}
	return m
}

func dataList(t *testing.T, env map[string]any) []any {
	t.Helper()
	l, ok := env["data"].([]any)
	if !ok {
		t.Fatalf("expected data array, got %#v", env["data"])
	}
	return l
}

// rowRefs lists "ref@level" for each row of an ls result.
func rowRefs(t *testing.T, env map[string]any) string {
	t.Helper()
	var parts []string
	for _, r := range dataList(t, env) {
		m := r.(map[string]any)
		parts = append(parts, jsonNum(m["ref"])+"@"+jsonNum(m["level"]))
	}
	return strings.Join(parts, " ")
}

func jsonNum(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestInit_IsIdempotent(t *testing.T) {
	t.Setenv("WAVETREE_CONFIG_DIR", t.TempDir())
	dir := filepath.Join(t.TempDir(), "s")

	first := dataMap(t, mustRun(t, dir, "init"))
	if first["created"] != true {
		t.Fatalf("expected created=true, got %#v", first)
	}
	second := dataMap(t, mustRun(t, dir, "init"))
	if second["created"] != false {
		t.Fatalf("expected created=false, got %#v", second)
	}
	if _, err := os.Stat(filepath.Join(dir, "index.sqlite")); err != nil {
		t.Fatalf("expected sqlite file: %v", err)
	}
}

func TestCommands_RequireInit(t *testing.T) {
	t.Setenv("WAVETREE_CONFIG_DIR", t.TempDir())
	dir := filepath.Join(t.TempDir(), "missing")

	_, errOut, err := runCLI(t, []string{"--dir", dir, "ls"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(string(errOut), "wavetree init") {
		t.Fatalf("expected init hint, got %q", string(errOut))
	}
}

func TestAddFoldMoveRemove(t *testing.T) {
	dir := newSessionDir(t)

	g := dataMap(t, mustRun(t, dir, "add", "group", "bus"))
	if jsonNum(g["ref"]) != "1" || jsonNum(g["level"]) != "0" {
		t.Fatalf("unexpected group row: %#v", g)
	}
	v := dataMap(t, mustRun(t, dir, "add", "variable", "--path", "top.cpu.clk", "--into", "1"))
	if jsonNum(v["level"]) != "1" || v["name"] != "clk" {
		t.Fatalf("unexpected variable row: %#v", v)
	}
	mustRun(t, dir, "add", "divider")

	if got := rowRefs(t, mustRun(t, dir, "ls")); got != "1@0 2@1 3@0" {
		t.Fatalf("ls: got %q", got)
	}

	mustRun(t, dir, "fold", "1")
	if got := rowRefs(t, mustRun(t, dir, "ls")); got != "1@0 3@0" {
		t.Fatalf("ls after fold: got %q", got)
	}
	if got := rowRefs(t, mustRun(t, dir, "ls", "--all")); got != "1@0 2@1 3@0" {
		t.Fatalf("ls --all after fold: got %q", got)
	}

	undo := dataMap(t, mustRun(t, dir, "undo"))
	if jsonNum(undo["count"]) != "1" {
		t.Fatalf("expected one undo, got %#v", undo)
	}
	if got := rowRefs(t, mustRun(t, dir, "ls")); got != "1@0 2@1 3@0" {
		t.Fatalf("ls after undo: got %q", got)
	}

	mustRun(t, dir, "mv", "3", "--before", "0", "--level", "0")
	if got := rowRefs(t, mustRun(t, dir, "ls")); got != "3@0 1@0 2@1" {
		t.Fatalf("ls after mv: got %q", got)
	}

	rm := dataMap(t, mustRun(t, dir, "rm", "1"))
	if jsonNum(rm["removed"]) != "2" {
		t.Fatalf("expected subtree removal, got %#v", rm)
	}
	if got := rowRefs(t, mustRun(t, dir, "ls")); got != "3@0" {
		t.Fatalf("ls after rm: got %q", got)
	}

	evs := dataList(t, mustRun(t, dir, "events", "--limit", "1"))
	if len(evs) != 1 || evs[0].(map[string]any)["type"] != "item.remove" {
		t.Fatalf("unexpected last event: %#v", evs)
	}
}

func TestMove_IntoOwnSubtreeFails(t *testing.T) {
	dir := newSessionDir(t)
	mustRun(t, dir, "add", "group", "outer")
	mustRun(t, dir, "add", "variable", "--path", "a", "--into", "1")

	_, errOut, err := runCLI(t, []string{"--dir", dir, "mv", "1", "--before", "2", "--level", "1"})
	if err == nil {
		t.Fatalf("expected circular move error")
	}
	if !strings.Contains(string(errOut), "subtree") && !strings.Contains(string(errOut), "circular") {
		t.Fatalf("unexpected stderr: %q", string(errOut))
	}
	if got := rowRefs(t, mustRun(t, dir, "ls")); got != "1@0 2@1" {
		t.Fatalf("tree changed after failed move: %q", got)
	}
}

func TestGroupCreateAndDissolve(t *testing.T) {
	dir := newSessionDir(t)
	mustRun(t, dir, "add", "variable", "--path", "a")
	mustRun(t, dir, "add", "variable", "--path", "b")

	g := dataMap(t, mustRun(t, dir, "group", "create", "pair", "1", "2"))
	if jsonNum(g["ref"]) != "3" {
		t.Fatalf("unexpected group row: %#v", g)
	}
	if got := rowRefs(t, mustRun(t, dir, "ls")); got != "3@0 1@1 2@1" {
		t.Fatalf("ls after group: got %q", got)
	}

	mustRun(t, dir, "group", "dissolve", "3")
	if got := rowRefs(t, mustRun(t, dir, "ls")); got != "1@0 2@0" {
		t.Fatalf("ls after dissolve: got %q", got)
	}

	_, _, err := runCLI(t, []string{"--dir", dir, "group", "dissolve", "1"})
	if err == nil {
		t.Fatalf("expected dissolving a variable to fail")
	}
}

func TestStep_EntersOpenGroupAbove(t *testing.T) {
	dir := newSessionDir(t)
	mustRun(t, dir, "add", "group", "g")
	mustRun(t, dir, "add", "variable", "--path", "x", "--before", "1", "--level", "0")

	mustRun(t, dir, "step", "1", "up")
	if got := rowRefs(t, mustRun(t, dir, "ls")); got != "1@0 2@1" {
		t.Fatalf("ls after step up: got %q", got)
	}
	mustRun(t, dir, "step", "1", "down")
	if got := rowRefs(t, mustRun(t, dir, "ls")); got != "1@0 2@0" {
		t.Fatalf("ls after step down: got %q", got)
	}
}

func TestDrop_PicksLevelFromNeighbours(t *testing.T) {
	dir := newSessionDir(t)
	mustRun(t, dir, "add", "group", "g")
	mustRun(t, dir, "add", "variable", "--path", "x", "--before", "1", "--level", "0")

	env := mustRun(t, dir, "drop", "1", "1", "--level", "1")
	if got := rowRefs(t, mustRun(t, dir, "ls")); got != "1@0 2@1" {
		t.Fatalf("ls after drop into group: got %q", got)
	}
	if levels := jsonNum(env["meta"].(map[string]any)["levels"]); levels != "[0,2]" {
		t.Fatalf("unexpected drop levels: %s", levels)
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "drop", "1", "1", "--level", "3"}); err == nil {
		t.Fatalf("expected level outside the slot's range to fail")
	}

	mustRun(t, dir, "drop", "1", "2", "--level", "0")
	if got := rowRefs(t, mustRun(t, dir, "ls")); got != "1@0 2@0" {
		t.Fatalf("ls after drop at end: got %q", got)
	}
	events := dataList(t, mustRun(t, dir, "events", "-n", "1"))
	if typ := events[0].(map[string]any)["type"]; typ != "item.move" {
		t.Fatalf("expected item.move event, got %v", typ)
	}
}

func TestSelectAndFocus(t *testing.T) {
	dir := newSessionDir(t)
	for _, p := range []string{"a", "b", "c"} {
		mustRun(t, dir, "add", "variable", "--path", p)
	}

	f := dataMap(t, mustRun(t, dir, "focus", "0"))
	if jsonNum(f["ref"]) != "1" {
		t.Fatalf("unexpected focus: %#v", f)
	}
	sel := dataList(t, mustRun(t, dir, "select", "--range", "2"))
	if jsonNum(sel) != "[1,2,3]" {
		t.Fatalf("unexpected range selection: %s", jsonNum(sel))
	}
	sel = dataList(t, mustRun(t, dir, "select", "--deselect", "1"))
	if jsonNum(sel) != "[1,3]" {
		t.Fatalf("unexpected selection: %s", jsonNum(sel))
	}
	sel = dataList(t, mustRun(t, dir, "select", "--clear"))
	if len(sel) != 0 {
		t.Fatalf("expected empty selection, got %v", sel)
	}

	env := mustRun(t, dir, "focus", "--clear")
	if env["data"] != nil {
		t.Fatalf("expected no focus, got %#v", env["data"])
	}
}

func TestRenameFindAndItem(t *testing.T) {
	dir := newSessionDir(t)
	mustRun(t, dir, "add", "variable", "--path", "top.cpu.clk")
	mustRun(t, dir, "add", "variable", "--path", "top.cpu.reset")

	mustRun(t, dir, "rename", "2", "rst_n")
	it := dataMap(t, mustRun(t, dir, "item", "2"))
	item := it["item"].(map[string]any)
	if item["manualName"] != "rst_n" {
		t.Fatalf("rename not stored: %#v", item)
	}

	matches := dataList(t, mustRun(t, dir, "find", "rst"))
	if len(matches) == 0 || jsonNum(matches[0].(map[string]any)["ref"]) != "2" {
		t.Fatalf("unexpected matches: %#v", matches)
	}
}

func TestRemovePlaceholders(t *testing.T) {
	dir := newSessionDir(t)
	mustRun(t, dir, "add", "variable", "--path", "a")
	mustRun(t, dir, "add", "placeholder", "--path", "gone.sig")

	res := dataMap(t, mustRun(t, dir, "rm-placeholders"))
	if jsonNum(res["removed"]) != "[2]" {
		t.Fatalf("unexpected removal: %#v", res)
	}
	if got := rowRefs(t, mustRun(t, dir, "ls")); got != "1@0" {
		t.Fatalf("ls: got %q", got)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := newSessionDir(t)
	mustRun(t, dir, "add", "group", "bus")
	mustRun(t, dir, "add", "variable", "--path", "top.d", "--into", "1")

	file := filepath.Join(t.TempDir(), "session.json")
	mustRun(t, dir, "export", file)

	other := filepath.Join(t.TempDir(), "other")
	mustRun(t, other, "init")
	res := dataMap(t, mustRun(t, other, "import", file))
	if jsonNum(res["items"]) != "2" {
		t.Fatalf("unexpected import result: %#v", res)
	}
	if got := rowRefs(t, mustRun(t, other, "ls")); got != "1@0 2@1" {
		t.Fatalf("ls after import: got %q", got)
	}

	// New refs continue after the imported ones.
	v := dataMap(t, mustRun(t, other, "add", "divider"))
	if jsonNum(v["ref"]) != "3" {
		t.Fatalf("expected ref 3, got %#v", v)
	}

	mustRun(t, other, "undo", "--count", "2")
	if got := rowRefs(t, mustRun(t, other, "ls")); got != "" {
		t.Fatalf("expected empty tree after undoing import, got %q", got)
	}
}

func TestOutputFormats(t *testing.T) {
	dir := newSessionDir(t)
	mustRun(t, dir, "add", "marker", "--marker", "3")

	out, errOut, err := runCLI(t, []string{"--dir", dir, "--format", "yaml", "ls"})
	if err != nil {
		t.Fatalf("ls yaml: %v\n%s", err, string(errOut))
	}
	if !strings.Contains(string(out), "name: Marker 3") {
		t.Fatalf("unexpected yaml:\n%s", string(out))
	}

	out, errOut, err = runCLI(t, []string{"--dir", dir, "--format", "edn", "ls"})
	if err != nil {
		t.Fatalf("ls edn: %v\n%s", err, string(errOut))
	}
	if !strings.Contains(string(out), ":visible-index 0") {
		t.Fatalf("unexpected edn:\n%s", string(out))
	}
}

func TestShow_PrintsTree(t *testing.T) {
	dir := newSessionDir(t)
	mustRun(t, dir, "add", "group", "bus")
	mustRun(t, dir, "add", "variable", "--path", "top.d", "--into", "1")

	out, errOut, err := runCLI(t, []string{"--dir", dir, "show"})
	if err != nil {
		t.Fatalf("show: %v\n%s", err, string(errOut))
	}
	want := "bus   (1)\n├╴d   (2)\n"
	if string(out) != want {
		t.Fatalf("show: got %q want %q", string(out), want)
	}
}

func TestDoctor_HealthyAndMissingSession(t *testing.T) {
	dir := newSessionDir(t)
	mustRun(t, dir, "add", "group", "bus")

	env := mustRun(t, dir, "doctor", "--fail")
	meta := env["meta"].(map[string]any)
	if meta["hasErrors"] != false || jsonNum(meta["issues"]) != "0" {
		t.Fatalf("expected healthy session, got %#v", env)
	}

	missing := filepath.Join(t.TempDir(), "none")
	_, _, err := runCLI(t, []string{"--dir", missing, "doctor", "--fail"})
	if !errors.Is(err, store.ErrDoctorIssuesFound) {
		t.Fatalf("expected ErrDoctorIssuesFound, got %v", err)
	}
}

func TestPublish_StdoutAndDir(t *testing.T) {
	dir := newSessionDir(t)
	mustRun(t, dir, "add", "group", "bus")
	mustRun(t, dir, "add", "variable", "--path", "top.d", "--into", "1")

	out, errOut, err := runCLI(t, []string{"--dir", dir, "publish", "--title", "Waves"})
	if err != nil {
		t.Fatalf("publish: %v\n%s", err, string(errOut))
	}
	want := "# Waves\n\n- bus\n  - d — `top.d`\n"
	if string(out) != want {
		t.Fatalf("publish: got %q want %q", string(out), want)
	}

	to := t.TempDir()
	env := mustRun(t, dir, "publish", "--to", to)
	written := dataMap(t, env)["written"].([]any)
	if len(written) != 3 {
		t.Fatalf("expected 3 files, got %v", written)
	}
	if _, err := os.Stat(filepath.Join(to, "items", "2.md")); err != nil {
		t.Fatalf("stat item page: %v", err)
	}
}
