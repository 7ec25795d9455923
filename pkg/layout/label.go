package layout

import (
	"regexp"
	"strings"

	"github.com/matzehuels/kubetopo/pkg/topology"
)

const (
	maxLabelLen   = 40
	labelHeadLen  = 15
	labelTailLen  = 25
	labelEllipsis = "..."

	// uidPlaceholder replaces a generated name suffix in labels.
	uidPlaceholder = "{uid}"
)

var serviceSuffix = regexp.MustCompile(`-service$`)

// namer derives labels and qualified names from resource names.
type namer struct {
	podSuffix   *regexp.Regexp
	labelSuffix *regexp.Regexp
	width       int
}

func newNamer(cfg Config) (*namer, error) {
	// Group the suffix so the dash and anchor apply to every alternative.
	pod, err := regexp.Compile("-(?:" + cfg.HashSuffix + ")$")
	if err != nil {
		return nil, err
	}
	label, err := regexp.Compile("(?:" + cfg.HashSuffix + ")$")
	if err != nil {
		return nil, err
	}
	return &namer{podSuffix: pod, labelSuffix: label, width: cfg.LabelWidth}, nil
}

var defaultNamer, _ = newNamer(DefaultConfig())

// Label formats a resource name for display using the default config: a
// generated hash suffix becomes "{uid}", names over 40 characters keep their
// first 15 and last 25 characters, and the result is soft wrapped at 18.
func Label(name string) string { return defaultNamer.label(name) }

func (n *namer) label(name string) string {
	label := n.labelSuffix.ReplaceAllLiteralString(name, uidPlaceholder)
	return wrapLabel(truncateLabel(label), n.width)
}

// qname returns the qualified name used to match pods and services with their
// controller. Missing name or namespace degrades to a partial qname that
// simply never matches.
func (n *namer) qname(node *topology.Node, group string) string {
	name := node.Name
	switch group {
	case topology.TypePod:
		name = n.podSuffix.ReplaceAllLiteralString(name, "")
	case topology.TypeService:
		name = serviceSuffix.ReplaceAllLiteralString(name, "")
	}
	return node.Namespace + "/" + name
}

func truncateLabel(label string) string {
	r := []rune(label)
	if len(r) <= maxLabelLen {
		return label
	}
	return string(r[:labelHeadLen]) + labelEllipsis + string(r[len(r)-labelTailLen:])
}

// wrapLabel breaks label into lines of roughly width runes. Each break happens
// at the nearest non-alphanumeric rune at or before width, which stays at the
// end of the upper line. A line with no such rune is left unwrapped.
// Nothing is wrapped unless the line exceeds width by more than 3.
func wrapLabel(label string, width int) string {
	r := []rune(label)
	var b strings.Builder
	for len(r)-width > 3 {
		i := width
		for i > 0 && isAlnum(r[i]) {
			i--
		}
		if i == 0 {
			break
		}
		b.WriteString(string(r[:i+1]))
		b.WriteByte('\n')
		r = r[i+1:]
	}
	b.WriteString(string(r))
	return b.String()
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
