package config

import (
	"fmt"
	"strings"

	"github.com/moffa90/go-routerboot/cfgtag"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks configuration correctness.
// It performs declarative validation only and does not mutate cfg.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.Image != "" && cfg.MTD != "" {
		return fmt.Errorf("image and mtd are mutually exclusive")
	}

	if cfg.LogLevel != "" && !validLogLevel(cfg.LogLevel) {
		return fmt.Errorf("log_level %q: must be one of %s", cfg.LogLevel, strings.Join(logLevels, ", "))
	}

	if cfg.ArtSize < 0 {
		return fmt.Errorf("art_size must not be negative")
	}
	if cfg.MaxReadSize < 0 {
		return fmt.Errorf("max_read_size must not be negative")
	}
	if cfg.Partitions.MaxTags < 0 {
		return fmt.Errorf("partitions.max_tags must not be negative")
	}
	if cfg.Partitions.MaxTags > cfgtag.MaxTagsLimit {
		return fmt.Errorf("partitions.max_tags %d exceeds %d", cfg.Partitions.MaxTags, cfgtag.MaxTagsLimit)
	}

	// ---- PLACEMENT NODES ----

	owner := make(map[uint32]string)
	for i, n := range cfg.Partitions.Nodes {
		if n.Name == "" {
			return fmt.Errorf("partitions.nodes[%d]: name is required", i)
		}
		if n.Address > 0xFFFF {
			return fmt.Errorf("node %q: address 0x%X is not a tag id", n.Name, n.Address)
		}
		if n.Address == 0 {
			// zero addresses never match; accepted like the device tree does
			continue
		}
		if prev, exists := owner[n.Address]; exists {
			return fmt.Errorf("address 0x%X used by nodes %q and %q", n.Address, prev, n.Name)
		}
		owner[n.Address] = n.Name
	}

	// ---- MAC ASSIGNMENTS ----

	names := make(map[string]bool)
	for i, a := range cfg.MACAssignments {
		if a.Name == "" {
			return fmt.Errorf("mac_assignments[%d]: name is required", i)
		}
		if names[a.Name] {
			return fmt.Errorf("mac assignment %q: duplicate name", a.Name)
		}
		names[a.Name] = true
	}

	return nil
}

func validLogLevel(level string) bool {
	for _, l := range logLevels {
		if strings.EqualFold(level, l) {
			return true
		}
	}
	return false
}
