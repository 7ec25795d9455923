package layout

import (
	"strings"
	"testing"

	"github.com/matzehuels/kubetopo/pkg/topology"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "web", "web"},
		{"hash suffix", "web-7f8d9c-abcde", "web-{uid}"},
		{"ten char hash", "api-5d4f8b7c9a-x2x7k", "api-{uid}"},
		{"not a hash", "web-frontend", "web-frontend"},
		{"exactly 21 not wrapped", "abcdefghij-klmnopqrst", "abcdefghij-klmnopqrst"},
		{"wrap at dash", "frontend-service-account-token", "frontend-service-\naccount-token"},
		{"no break char", "abcdefghijklmnopqrstuv", "abcdefghijklmnopqrstuv"},
		{"multiple lines", "aaaa.bbbb.cccc.dddd.eeee.ffff.gggg.hhhh", "aaaa.bbbb.cccc.\ndddd.eeee.ffff.\ngggg.hhhh"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.in); got != tt.want {
				t.Errorf("Label(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLabelTruncates(t *testing.T) {
	name := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRS"
	if len(name) != 45 {
		t.Fatalf("fixture length = %d", len(name))
	}
	want := name[:15] + "..." + name[len(name)-25:]

	if got := truncateLabel(name); got != want {
		t.Errorf("truncateLabel() = %q, want %q", got, want)
	}

	got := Label(name)
	if strings.ReplaceAll(got, "\n", "") != want {
		t.Errorf("Label() = %q, want %q modulo wrapping", got, want)
	}
	if got != name[:15]+"...\n"+name[len(name)-25:] {
		t.Errorf("Label() = %q, want break after the ellipsis", got)
	}
}

func TestTruncateLabelKeepsShortNames(t *testing.T) {
	name := strings.Repeat("x", 40)
	if got := truncateLabel(name); got != name {
		t.Errorf("truncateLabel(40 chars) = %q, want unchanged", got)
	}
}

func TestWrapNeverSplitsAlphanumericRuns(t *testing.T) {
	names := []string{
		"kube-system/coredns-autoscaler-config",
		"istio-ingressgateway.istio-system.svc",
		"very_long_name_with_underscores_everywhere",
		"a.b.c.d.e.f.g.h.i.j.k.l.m.n.o.p.q.r.s.t",
	}
	for _, name := range names {
		lines := strings.Split(wrapLabel(name, DefaultLabelWidth), "\n")
		if strings.Join(lines, "") != name {
			t.Errorf("wrapLabel(%q) lost characters: %q", name, lines)
		}
		for _, line := range lines[:len(lines)-1] {
			r := []rune(line)
			if isAlnum(r[len(r)-1]) {
				t.Errorf("wrapLabel(%q) broke inside a word: %q", name, lines)
			}
		}
	}
}

func TestQName(t *testing.T) {
	n, err := newNamer(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name  string
		node  string
		ns    string
		group string
		want  string
	}{
		{"pod", "web-7f8d9c-abcde", "ns", "pod", "ns/web"},
		{"pod no hash", "web", "ns", "pod", "ns/web"},
		{"service", "web-service", "ns", "service", "ns/web"},
		{"service plain", "web", "ns", "service", "ns/web"},
		{"missing namespace", "web-7f8d9c-abcde", "", "pod", "/web"},
		{"missing name", "", "ns", "service", "ns/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.qname(&topology.Node{Name: tt.node, Namespace: tt.ns}, tt.group)
			if got != tt.want {
				t.Errorf("qname = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNamerAlternationSuffix(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HashSuffix = `abc|[0-9]{3}`
	n, err := newNamer(cfg)
	if err != nil {
		t.Fatal(err)
	}

	qnames := []struct{ node, want string }{
		{"web-abc", "ns/web"},
		{"web-123", "ns/web"},
		{"web-abcdef", "ns/web-abcdef"},
		{"web123", "ns/web123"},
	}
	for _, tt := range qnames {
		got := n.qname(&topology.Node{Name: tt.node, Namespace: "ns"}, topology.TypePod)
		if got != tt.want {
			t.Errorf("qname(%q) = %q, want %q", tt.node, got, tt.want)
		}
	}

	labels := []struct{ name, want string }{
		{"web-123", "web-{uid}"},
		{"web-abc", "web-{uid}"},
		{"abcweb", "abcweb"},
	}
	for _, tt := range labels {
		if got := n.label(tt.name); got != tt.want {
			t.Errorf("label(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
