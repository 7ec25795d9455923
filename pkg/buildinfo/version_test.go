package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func reset(t *testing.T, v, c, d string) {
	t.Helper()
	oldV, oldC, oldD := Version, Commit, Date
	Version, Commit, Date = v, c, d
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })
}

func TestFillFrom(t *testing.T) {
	reset(t, "dev", "none", "unknown")
	fillFrom(&debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})
	if Version != "v0.3.1" || Commit != "abc123" || Date != "2026-01-02T03:04:05Z" {
		t.Errorf("got %s %s %s", Version, Commit, Date)
	}
}

func TestFillFromKeepsLdflags(t *testing.T) {
	reset(t, "v1.0.0", "deadbeef", "yesterday")
	fillFrom(&debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	})
	if Version != "v1.0.0" || Commit != "deadbeef" || Date != "yesterday" {
		t.Errorf("ldflags values overwritten: %s %s %s", Version, Commit, Date)
	}
}

func TestTemplate(t *testing.T) {
	reset(t, "v1.0.0", "deadbeef", "today")
	if got := Template(); !strings.HasPrefix(got, "{{.Name}} v1.0.0\n") {
		t.Errorf("Template() = %q", got)
	}
	if !strings.Contains(String(), "commit: deadbeef") {
		t.Errorf("String() = %q", String())
	}
}
