// Package config loads the rbcfg YAML configuration.
//
// Example file:
//
//	image: /tmp/hard_config.bin.zst
//	log_level: debug
//	art_size: 0x10000
//	partitions:
//	  all_tags: false
//	  nodes:
//	    - name: wlan_data
//	      address: 0x16
//	mac_assignments:
//	  - name: ether1
//	    increment: 0
//	  - name: wlan1
//	    increment: 1
//
// Use Load, then Validate, then Normalize.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/moffa90/go-routerboot/caldata"
	"github.com/moffa90/go-routerboot/cfgtag"
	"github.com/moffa90/go-routerboot/flash"
	"github.com/moffa90/go-routerboot/hardconfig"
	"github.com/moffa90/go-routerboot/partition"
)

// Defaults applied by Normalize.
const (
	DefaultMTD      = "hard_config"
	DefaultLogLevel = "info"
)

type Config struct {
	// Image is a flash dump file; when empty MTD is used
	Image string `yaml:"image"`

	// MTD is the partition name resolved through /proc/mtd
	MTD string `yaml:"mtd"`

	LogLevel string `yaml:"log_level"`

	// ArtSize is the calibration output capacity in bytes
	ArtSize int `yaml:"art_size"`

	// LZORPrefixFile holds the LZOR dictionary prefix (optional)
	LZORPrefixFile string `yaml:"lzor_prefix_file"`

	// MaxReadSize bounds region reads and decompressed images
	MaxReadSize int64 `yaml:"max_read_size"`

	Partitions PartitionsConfig `yaml:"partitions"`

	MACAssignments []hardconfig.Assignment `yaml:"mac_assignments"`
}

// ---- PARTITIONS ----

type PartitionsConfig struct {
	AllTags bool             `yaml:"all_tags"`
	MaxTags int              `yaml:"max_tags"`
	Nodes   []partition.Node `yaml:"nodes"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	Normalize(cfg)
	return cfg
}

// Load reads a configuration file. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LZORPrefix reads the configured prefix file, if any.
func (c *Config) LZORPrefix() ([]byte, error) {
	if c.LZORPrefixFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.LZORPrefixFile)
	if err != nil {
		return nil, fmt.Errorf("read lzor prefix: %w", err)
	}
	return data, nil
}

func defaults(cfg *Config) {
	if cfg.Image == "" && cfg.MTD == "" {
		cfg.MTD = DefaultMTD
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.ArtSize == 0 {
		cfg.ArtSize = caldata.ArtSize
	}
	if cfg.MaxReadSize == 0 {
		cfg.MaxReadSize = flash.DefaultMaxSize
	}
	if cfg.Partitions.MaxTags == 0 {
		cfg.Partitions.MaxTags = cfgtag.DefaultMaxTags
	}
}
