package cli

import (
	"bytes"
	"strings"
	"testing"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestStatsLine(t *testing.T) {
	tests := []struct {
		name                    string
		nodes, edges, surviving int
		cached                  bool
		want                    []string
		notWant                 string
	}{
		{"fresh", 4, 3, 4, false, []string{"4 nodes", "3 edges", "fresh"}, "after grouping"},
		{"grouped", 10, 9, 3, false, []string{"10 nodes", "3 after grouping"}, "cached"},
		{"cached", 2, 0, 2, true, []string{"2 nodes", "0 edges", "cached"}, "fresh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := statsLine(tt.nodes, tt.edges, tt.surviving, tt.cached)
			for _, w := range tt.want {
				if !strings.Contains(line, w) {
					t.Errorf("%q missing %q", line, w)
				}
			}
			if strings.Contains(line, tt.notWant) {
				t.Errorf("%q should not contain %q", line, tt.notWant)
			}
		})
	}
}

func TestStatusOutput(t *testing.T) {
	buf := captureStdout(t)

	printSuccess("Rendered %d file(s)", 2)
	printWarning("No cache directory")
	printFile("out.svg")
	printKeyValue("address", ":8080")

	out := buf.String()
	for _, want := range []string{"Rendered 2 file(s)", "No cache directory", "out.svg", "address", ":8080"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "\n"); n != 4 {
		t.Errorf("wrote %d lines, want 4", n)
	}
}
