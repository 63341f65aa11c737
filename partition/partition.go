// Package partition carves a scanned tag container into named byte ranges.
//
// Placement nodes come from a hardware description (a device tree or the
// rbcfg YAML file). A node whose address equals a tag ID attaches to that tag
// and may force its size:
//
//	nodes:
//	  - name: hard_config_serial
//	    address: 0x0B
//	  - name: wlan_data
//	    address: 0x16
//	    size: 0x1000
//
// Partitions are named after the container variant and tag ID, for example
// "hard_tag_22" for tag 0x16 of a hard_config container.
package partition

import (
	"github.com/moffa90/go-routerboot/cfgtag"
)

// Node is a placement node.
type Node struct {
	// Name is the label of the node in its hardware description
	Name string `yaml:"name" json:"name"`

	// Address is the tag ID the node attaches to. Zero never matches.
	Address uint32 `yaml:"address" json:"address"`

	// Size forces the partition size when nonzero
	Size uint32 `yaml:"size" json:"size"`
}

// Partition is one named byte range of the container.
type Partition struct {
	// Name is the synthesized partition name, e.g. "hard_tag_07"
	Name string `json:"name"`

	// TagID is the tag the partition covers
	TagID uint16 `json:"tag_id"`

	// Offset is the payload offset from the container start
	Offset int `json:"offset"`

	// Size is the tag length, or the node size when forced
	Size int `json:"size"`

	// Node is the matched placement node, nil when none matched
	Node *Node `json:"node,omitempty"`
}

// Config holds the deriver configuration.
type Config struct {
	// Logger receives matching diagnostics (optional)
	Logger cfgtag.Logger

	// AllTags emits a partition for every tag, not only matched ones
	AllTags bool
}

// Option is a functional option for configuring Derive.
type Option func(*Config)

// WithLogger sets the logger receiving matching diagnostics.
func WithLogger(logger cfgtag.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithAllTags enables or disables emitting unmatched tags.
func WithAllTags(all bool) Option {
	return func(c *Config) {
		c.AllTags = all
	}
}

// Derive matches the container's tags against nodes and returns the
// resulting partitions in tag order.
//
// Without WithAllTags(true), only tags with a matching node produce a
// partition. A repeated tag ID keeps its first occurrence; later ones are
// logged and skipped since they would produce the same name.
func Derive(c *cfgtag.Container, nodes []Node, opts ...Option) []Partition {
	cfg := Config{Logger: cfgtag.NopLogger{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	if c == nil {
		return nil
	}

	cfg.Logger.Debug("deriving partitions", "tags", len(c.Tags), "nodes", len(nodes), "all_tags", cfg.AllTags)

	var parts []Partition
	seen := make(map[uint16]bool, len(c.Tags))

	for _, tag := range c.Tags {
		if seen[tag.ID] {
			cfg.Logger.Warn("repeated tag id, keeping first", "id", tag.ID, "offset", tag.Offset)
			continue
		}
		seen[tag.ID] = true

		node := match(nodes, tag.ID)
		if node == nil && !cfg.AllTags {
			continue
		}

		p := Partition{
			Name:   tag.Name(c.Variant),
			TagID:  tag.ID,
			Offset: tag.Offset,
			Size:   int(tag.Length),
		}
		if node != nil {
			n := *node
			p.Node = &n
			if n.Size != 0 && int(n.Size) != p.Size {
				cfg.Logger.Debug("tag size forced", "id", tag.ID, "from", p.Size, "to", n.Size)
				p.Size = int(n.Size)
			}
		}
		parts = append(parts, p)
	}

	return parts
}

// match returns the first node addressing id.
func match(nodes []Node, id uint16) *Node {
	for i := range nodes {
		if nodes[i].Address == 0 {
			continue
		}
		if nodes[i].Address == uint32(id) {
			return &nodes[i]
		}
	}
	return nil
}
