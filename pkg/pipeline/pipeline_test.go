package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/kubetopo/pkg/cache"
	"github.com/matzehuels/kubetopo/pkg/diagram"
	"github.com/matzehuels/kubetopo/pkg/errors"
	"github.com/matzehuels/kubetopo/pkg/topology"
)

func sampleGraph() *topology.Graph {
	return &topology.Graph{
		Nodes: []topology.Node{
			{UID: "i", Type: topology.TypeInternet, Name: "internet"},
			{UID: "s1", Type: topology.TypeService, Name: "web", Namespace: "shop"},
			{UID: "d1", Type: topology.TypeDeployment, Name: "web", Namespace: "shop"},
			{UID: "p1", Type: topology.TypePod, Name: "web-7f8d9c-abcde", Namespace: "shop"},
			{UID: "h1", Type: topology.TypeHost, Name: "node-1"},
			{UID: "h2", Type: topology.TypeHost, Name: "node-2"},
		},
		Edges: []topology.Edge{
			{Source: "i", Target: "d1"},
			{Source: "p1", Target: "h1"},
		},
	}
}

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil)
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidatePrimitive(t *testing.T) {
	for _, p := range []string{"fdp", "grid"} {
		if err := ValidatePrimitive(p); err != nil {
			t.Errorf("ValidatePrimitive(%q) = %v", p, err)
		}
	}
	if err := ValidatePrimitive("cola"); !errors.Is(err, errors.ErrCodeInvalidPrimitive) {
		t.Errorf("ValidatePrimitive(cola) = %v", err)
	}
}

func TestValidateGraph(t *testing.T) {
	tests := []struct {
		name string
		g    *topology.Graph
		code errors.Code
	}{
		{"valid", sampleGraph(), ""},
		{"nil", nil, errors.ErrCodeInvalidGraph},
		{"empty uid", &topology.Graph{Nodes: []topology.Node{{Type: "pod"}}}, errors.ErrCodeInvalidGraph},
		{"bad type", &topology.Graph{Nodes: []topology.Node{{UID: "a", Type: "Pod"}}}, errors.ErrCodeInvalidGraph},
		{"duplicate", &topology.Graph{Nodes: []topology.Node{{UID: "a", Type: "pod"}, {UID: "a", Type: "pod"}}}, errors.ErrCodeInvalidGraph},
		{"too large", sampleGraph(), errors.ErrCodeTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit := 100
			if tt.code == errors.ErrCodeTooLarge {
				limit = 2
			}
			err := ValidateGraph(tt.g, limit)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("ValidateGraph() code = %q (%v), want %q", got, err, tt.code)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Primitive != DefaultPrimitive || o.Scale != DefaultScale || o.MaxNodes != DefaultMaxNodes {
		t.Errorf("defaults = %+v", o)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatSVG {
		t.Errorf("formats = %v", o.Formats)
	}
	if o.Config.NodeSize == 0 {
		t.Error("layout config defaults not applied")
	}

	o = Options{Formats: []string{" SVG", "json", "svg"}}
	if err := o.ValidateForRender(); err != nil {
		t.Fatal(err)
	}
	if strings.Join(o.Formats, ",") != "svg,json" {
		t.Errorf("formats not normalized: %v", o.Formats)
	}
}

func TestLayoutKeyTracksConfig(t *testing.T) {
	a := Options{}
	a.SetLayoutDefaults()
	b := Options{}
	b.Config.NodeSize = 40
	b.SetLayoutDefaults()
	if a.LayoutKeyOpts() == b.LayoutKeyOpts() {
		t.Error("config change should change the layout key")
	}

	c := Options{Primitive: PrimitiveGrid}
	c.SetLayoutDefaults()
	if a.LayoutKeyOpts() == c.LayoutKeyOpts() {
		t.Error("primitive change should change the layout key")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	o := Options{Detailed: true, Scale: 3}
	if k := o.ArtifactKeyOpts(FormatJSON); k.Detailed || k.Scale != 0 {
		t.Errorf("json key should ignore render options: %+v", k)
	}
	if k := o.ArtifactKeyOpts(FormatPNG); !k.Detailed || k.Scale != 3 {
		t.Errorf("png key = %+v", k)
	}
	if k := o.ArtifactKeyOpts(FormatSVG); k.Scale != 0 {
		t.Errorf("svg key should ignore scale: %+v", k)
	}
}

func TestGenerateLayout(t *testing.T) {
	d, err := GenerateLayout(context.Background(), sampleGraph(), Options{Primitive: PrimitiveGrid})
	if err != nil {
		t.Fatal(err)
	}
	if d.ID == "" {
		t.Error("diagram has no pass ID")
	}
	// p1 is absorbed by d1, s1 by d1 as well.
	if len(d.Nodes) != 4 {
		t.Errorf("nodes = %d, want 4", len(d.Nodes))
	}
	d1, ok := d.Node("d1")
	if !ok || d1.Type != topology.TypeService || len(d1.Pods) != 1 || len(d1.Services) != 1 {
		t.Errorf("d1 = %+v", d1)
	}
	if err := d.Validate(); err != nil {
		t.Error(err)
	}
}

func TestGenerateLayoutInvalidConfig(t *testing.T) {
	opts := Options{Primitive: PrimitiveGrid}
	opts.Config.HashSuffix = "("
	_, err := GenerateLayout(context.Background(), sampleGraph(), opts)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestGenerateLayoutCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GenerateLayout(ctx, sampleGraph(), Options{Primitive: PrimitiveGrid})
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Errorf("error = %v, want CANCELED", err)
	}
}

func TestRunnerLayoutCaching(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)
	defer r.Close()
	opts := Options{Primitive: PrimitiveGrid}

	first, hit, err := r.LayoutWithCacheInfo(ctx, sampleGraph(), opts)
	if err != nil || hit {
		t.Fatalf("first run: hit=%v err=%v", hit, err)
	}
	second, hit, err := r.LayoutWithCacheInfo(ctx, sampleGraph(), opts)
	if err != nil || !hit {
		t.Fatalf("second run: hit=%v err=%v", hit, err)
	}
	if second.ID != first.ID {
		t.Errorf("cached diagram ID = %s, want %s", second.ID, first.ID)
	}

	opts.Refresh = true
	third, hit, err := r.LayoutWithCacheInfo(ctx, sampleGraph(), opts)
	if err != nil || hit {
		t.Fatalf("refresh: hit=%v err=%v", hit, err)
	}
	if third.ID == first.ID {
		t.Error("refresh returned the cached diagram")
	}
}

func TestRunnerExecuteJSON(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)
	opts := Options{Primitive: PrimitiveGrid, Formats: []string{FormatJSON}}

	res, err := r.Execute(ctx, sampleGraph(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.RunID == "" || res.GraphHash == "" {
		t.Errorf("result ids = %q %q", res.RunID, res.GraphHash)
	}
	if res.Stats.NodeCount != 6 || res.Stats.Surviving != 4 || res.Stats.SectionCount == 0 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("first run cache info = %+v", res.CacheInfo)
	}
	d, err := diagram.Unmarshal(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != res.Diagram.ID {
		t.Error("json artifact does not match the diagram")
	}

	again, err := r.Execute(ctx, sampleGraph(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.LayoutHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v", again.CacheInfo)
	}
	if again.RunID == res.RunID {
		t.Error("runs share an ID")
	}
}

func TestRunnerExecuteRejectsInvalidInput(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	if _, err := r.Execute(ctx, sampleGraph(), Options{Formats: []string{"gif"}}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format error = %v", err)
	}
	if _, err := r.Execute(ctx, &topology.Graph{Nodes: []topology.Node{{UID: "a"}}}, Options{}); !errors.Is(err, errors.ErrCodeInvalidGraph) {
		t.Errorf("bad graph error = %v", err)
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("runs graphviz")
	}
	d, err := GenerateLayout(context.Background(), sampleGraph(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	artifacts, err := RenderFromDiagram(context.Background(), d, Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact missing")
	}
}
