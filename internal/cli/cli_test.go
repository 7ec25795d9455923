package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/kubetopo/pkg/cache"
	"github.com/matzehuels/kubetopo/pkg/diagram"
	"github.com/matzehuels/kubetopo/pkg/topology"
)

func writeSampleGraph(t *testing.T) string {
	t.Helper()
	g := &topology.Graph{
		Nodes: []topology.Node{
			{UID: "s1", Type: topology.TypeService, Name: "web", Namespace: "shop"},
			{UID: "d1", Type: topology.TypeDeployment, Name: "web", Namespace: "shop"},
			{UID: "p1", Type: topology.TypePod, Name: "web-7f8d9c-abcde", Namespace: "shop"},
			{UID: "h1", Type: topology.TypeHost, Name: "node-1"},
			{UID: "x1", Type: topology.TypeContainer, Name: "nginx"},
		},
		Edges: []topology.Edge{{Source: "h1", Target: "x1"}},
	}
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := topology.WriteGraphFile(g, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := captureStdout(t)
	root := New(out, LogInfo).RootCommand()
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"layout", "render", "serve", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing %q command in %v", want, names)
		}
	}
}

func TestLayoutCommand(t *testing.T) {
	input := writeSampleGraph(t)
	out := filepath.Join(t.TempDir(), "diagram.json")

	if _, err := execute(t, "layout", input, "-o", out, "--no-cache", "--primitive", "grid", "-q"); err != nil {
		t.Fatalf("layout: %v", err)
	}

	d, err := diagram.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3 after grouping", len(d.Nodes))
	}
	d1, ok := d.Node("d1")
	if !ok || d1.Type != topology.TypeService || len(d1.Services) != 1 || len(d1.Pods) != 1 {
		t.Errorf("d1 = %+v", d1)
	}
	if len(d.Edges) != 1 || d.Edges[0].Source != "h1" {
		t.Errorf("edges = %+v", d.Edges)
	}
}

func TestLayoutCommandDefaultOutput(t *testing.T) {
	input := writeSampleGraph(t)
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	if _, err := execute(t, "layout", input, "--primitive", "grid", "-q"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if _, err := os.Stat(strings.TrimSuffix(input, ".json") + ".layout.json"); err != nil {
		t.Errorf("default output missing: %v", err)
	}
}

func TestLayoutCommandConfig(t *testing.T) {
	input := writeSampleGraph(t)
	dir := t.TempDir()
	cfg := filepath.Join(dir, "layout.toml")
	if err := os.WriteFile(cfg, []byte("node_size = 20\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.json")

	if _, err := execute(t, "layout", input, "-o", out, "-c", cfg, "--no-cache", "--primitive", "grid", "-q"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	d, err := diagram.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range d.Sections {
		if s.Kind == "grid" && s.Nodes == 1 && s.Width != 40 {
			t.Errorf("one-node grid section is %v wide, want 40 with node_size 20", s.Width)
		}
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"nodes": [{"uid": "a"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"layout", filepath.Join(dir, "nope.json"), "--no-cache"}},
		{"node without type", []string{"layout", bad, "--no-cache"}},
		{"unknown primitive", []string{"layout", writeSampleGraph(t), "--no-cache", "--primitive", "dot"}},
		{"missing config", []string{"layout", writeSampleGraph(t), "--no-cache", "-c", filepath.Join(dir, "none.toml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRenderCommandJSONFromGraph(t *testing.T) {
	input := writeSampleGraph(t)
	out := filepath.Join(t.TempDir(), "rendered.json")

	if _, err := execute(t, "render", input, "-f", "json", "-o", out, "--no-cache", "--primitive", "grid"); err != nil {
		t.Fatalf("render: %v", err)
	}
	d, err := diagram.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Nodes) != 3 {
		t.Errorf("nodes = %d", len(d.Nodes))
	}
}

func TestRenderCommandRejectsFormat(t *testing.T) {
	if _, err := execute(t, "render", writeSampleGraph(t), "-f", "gif", "--no-cache"); err == nil {
		t.Error("expected an invalid format error")
	}
}

func TestReadInput(t *testing.T) {
	graphPath := writeSampleGraph(t)
	d, g, err := readInput(graphPath)
	if err != nil {
		t.Fatal(err)
	}
	if g == nil || len(d.Nodes) != 0 {
		t.Errorf("graph file read as diagram")
	}

	diagramPath := filepath.Join(t.TempDir(), "d.layout.json")
	want := diagram.Diagram{Width: 100, Height: 100, Nodes: []diagram.Node{{UID: "a", Type: "host"}}}
	if err := diagram.WriteFile(want, diagramPath); err != nil {
		t.Fatal(err)
	}
	d, g, err = readInput(diagramPath)
	if err != nil {
		t.Fatal(err)
	}
	if g != nil || len(d.Nodes) != 1 {
		t.Errorf("diagram file read as graph")
	}
}

func TestUnknownCacheBackend(t *testing.T) {
	_, err := execute(t, "layout", writeSampleGraph(t), "--cache", "memcached://localhost:11211")
	if err == nil || !strings.Contains(err.Error(), "CACHE_UNAVAILABLE") {
		t.Errorf("err = %v, want CACHE_UNAVAILABLE", err)
	}
}

func TestCachePathCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != filepath.Join(xdg, appName) {
		t.Errorf("cache path = %q", out)
	}
}

func TestCacheClearCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	// Populate the cache through a layout run.
	if _, err := execute(t, "layout", writeSampleGraph(t), "--primitive", "grid", "-q"); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(filepath.Join(xdg, appName))
	if len(entries) == 0 {
		t.Fatal("layout left no cache entries")
	}

	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	entries, _ = os.ReadDir(filepath.Join(xdg, appName))
	if len(entries) != 0 {
		t.Errorf("cache still holds %d entries", len(entries))
	}
}

func TestCachePruneCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	if _, err := execute(t, "cache", "prune"); err != nil {
		t.Fatalf("prune on a missing cache: %v", err)
	}
	if _, err := execute(t, "layout", writeSampleGraph(t), "--primitive", "grid", "-q"); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "cache", "prune"); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(filepath.Join(xdg, appName))
	if len(entries) == 0 {
		t.Error("prune removed live entries")
	}
}

func TestCacheKeyer(t *testing.T) {
	opts := cache.LayoutKeyOpts{Primitive: "fdp"}

	t.Setenv(envCacheNamespace, "staging")
	if key := cacheKeyer(&runFlags{}).LayoutKey("g", opts); !strings.HasPrefix(key, "staging:layout:") {
		t.Errorf("env namespace not applied: %s", key)
	}
	if key := cacheKeyer(&runFlags{namespace: "prod"}).LayoutKey("g", opts); !strings.HasPrefix(key, "prod:layout:") {
		t.Errorf("flag should win over env: %s", key)
	}

	t.Setenv(envCacheNamespace, "")
	if key := cacheKeyer(&runFlags{}).LayoutKey("g", opts); !strings.HasPrefix(key, "layout:") {
		t.Errorf("no namespace: %s", key)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, appName) {
		t.Errorf("bash completion does not mention %s", appName)
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("tcsh should be rejected")
	}
}

func TestFlagCompletion(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"__complete", "layout", "x.json", "--primitive", ""}, []string{"fdp", "grid"}},
		{[]string{"__complete", "render", "x.json", "--format", ""}, []string{"svg", "png", "pdf", "json"}},
		{[]string{"__complete", "cache", "path", "--log-format", ""}, []string{"json", "logfmt", "text"}},
	}
	for _, tt := range tests {
		out, err := execute(t, tt.args...)
		if err != nil {
			t.Fatalf("%v: %v", tt.args, err)
		}
		for _, w := range tt.want {
			if !strings.Contains(out, w+"\n") {
				t.Errorf("%v: completions %q missing %q", tt.args, out, w)
			}
		}
	}
}

func TestLogFormatFlag(t *testing.T) {
	if _, err := execute(t, "--log-format", "yaml", "cache", "path"); err == nil {
		t.Error("unknown log format accepted")
	}
	if _, err := execute(t, "--log-format", "json", "-v", "cache", "path"); err != nil {
		t.Errorf("json log format: %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"png", []string{"png"}},
		{"svg,pdf,png", []string{"svg", "pdf", "png"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSectionTable(t *testing.T) {
	d := diagram.Diagram{Sections: []diagram.Section{
		{Kind: "force", Group: "host", Primitive: "fdp", Width: 250, Height: 100, Nodes: 2, Edges: 1},
		{Kind: "grid", Group: "controller", Primitive: "grid", Width: 100, Height: 100, Nodes: 1},
	}}
	out := sectionTable(d)
	for _, want := range []string{"KIND", "PRIMITIVE", "force", "controller", "250x100"} {
		if !strings.Contains(out, want) {
			t.Errorf("section table missing %q:\n%s", want, out)
		}
	}
}
