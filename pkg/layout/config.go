package layout

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kubetopo/pkg/topology"
)

// Defaults for a layout pass.
const (
	DefaultNodeSize    = 50
	DefaultLabelWidth  = 18
	DefaultMaxParallel = 4

	// DefaultHashSuffix matches the generated "<template-hash>-<random>" tail
	// of pod names created by a ReplicaSet.
	DefaultHashSuffix = `[0-9a-fA-F]{6,10}-[0-9a-zA-Z]{4,5}`
)

// DefaultTypeOrder is the canonical section precedence.
var DefaultTypeOrder = []string{
	topology.TypeInternet,
	topology.TypeHost,
	topology.TypeService,
	topology.TypeController,
	topology.TypePod,
	topology.TypeContainer,
	topology.TypeUnmanaged,
}

// DefaultControllerTypes are the workload kinds collapsed into the controller group.
var DefaultControllerTypes = []string{
	topology.TypeDeployment,
	topology.TypeDaemonSet,
	topology.TypeStatefulSet,
	topology.TypeCronJob,
}

// Config controls grouping, partitioning order and section geometry.
// The zero value is valid after SetDefaults.
type Config struct {
	// TypeOrder fixes the order in which type groups are partitioned and
	// turned into sections. Types missing from it follow in lexical order.
	TypeOrder []string `toml:"type_order" json:"type_order,omitempty"`

	// ControllerTypes are normalized to the "controller" group.
	ControllerTypes []string `toml:"controller_types" json:"controller_types,omitempty"`

	// NodeSize is the pixel size every section dimension is derived from.
	NodeSize float64 `toml:"node_size" json:"node_size,omitempty"`

	// Center is the shared origin stamped on every node and edge.
	Center topology.Point `toml:"center" json:"center"`

	// LabelWidth is the soft wrap width of node labels.
	LabelWidth int `toml:"label_width" json:"label_width,omitempty"`

	// HashSuffix is the pattern of generated pod name suffixes (without the
	// leading dash). It is stripped for qualified names and replaced by
	// "{uid}" in labels.
	HashSuffix string `toml:"hash_suffix" json:"hash_suffix,omitempty"`

	// MaxParallel bounds how many sections run through the layout primitive
	// at once. Zero or negative means DefaultMaxParallel.
	MaxParallel int `toml:"max_parallel" json:"max_parallel,omitempty"`
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills unset fields with their defaults.
func (c *Config) SetDefaults() {
	if len(c.TypeOrder) == 0 {
		c.TypeOrder = slices.Clone(DefaultTypeOrder)
	}
	if len(c.ControllerTypes) == 0 {
		c.ControllerTypes = slices.Clone(DefaultControllerTypes)
	}
	if c.NodeSize <= 0 {
		c.NodeSize = DefaultNodeSize
	}
	if c.Center == (topology.Point{}) {
		c.Center = topology.Point{X: 200, Y: 200}
	}
	if c.LabelWidth <= 0 {
		c.LabelWidth = DefaultLabelWidth
	}
	if c.HashSuffix == "" {
		c.HashSuffix = DefaultHashSuffix
	}
	if c.MaxParallel <= 0 {
		c.MaxParallel = DefaultMaxParallel
	}
}

// Validate checks that the configured patterns compile.
func (c *Config) Validate() error {
	if _, err := regexp.Compile(c.HashSuffix); err != nil {
		return fmt.Errorf("hash_suffix: %w", err)
	}
	return nil
}

// LoadConfig reads a TOML config file and applies defaults for anything it
// leaves unset.
//
//	type_order = ["internet", "host", "service", "controller", "pod"]
//	node_size  = 40
//
//	[center]
//	x = 100
//	y = 100
func LoadConfig(path string) (Config, error) {
	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}
