package hardconfig

import (
	"github.com/moffa90/go-routerboot/caldata"
	"github.com/moffa90/go-routerboot/cfgtag"
	"github.com/moffa90/go-routerboot/flash"
)

// Config holds the loader configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger cfgtag.Logger

	// ArtSize is the calibration output capacity
	ArtSize int

	// LZORPrefix is the dictionary prefix for LZOR calibration payloads
	LZORPrefix []byte

	// ReadOptions are passed to flash.ReadAll by Load
	ReadOptions []flash.Option
}

func defaultConfig() Config {
	return Config{
		Logger:  cfgtag.NopLogger{},
		ArtSize: caldata.ArtSize,
	}
}

// Option is a functional option for configuring Load and Parse.
type Option func(*Config)

// WithLogger sets a logger for loading and decoding.
//
// Example:
//
//	hc, err := hardconfig.Load(ctx, dev, hardconfig.WithLogger(slog.Default()))
func WithLogger(logger cfgtag.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithArtSize sets the calibration output capacity. Default is 64 KiB.
func WithArtSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.ArtSize = size
		}
	}
}

// WithLZORPrefix sets the dictionary prefix for LZOR calibration payloads.
func WithLZORPrefix(prefix []byte) Option {
	return func(c *Config) {
		c.LZORPrefix = prefix
	}
}

// WithReadOptions sets options for the flash read done by Load.
//
// Example:
//
//	hc, err := hardconfig.Load(ctx, dev,
//	    hardconfig.WithReadOptions(flash.WithProgressCallback(report)),
//	)
func WithReadOptions(opts ...flash.Option) Option {
	return func(c *Config) {
		c.ReadOptions = append(c.ReadOptions, opts...)
	}
}

func (c *Config) unpackOptions() []caldata.Option {
	opts := []caldata.Option{caldata.WithLogger(c.Logger)}
	if len(c.LZORPrefix) > 0 {
		opts = append(opts, caldata.WithLZORPrefix(c.LZORPrefix))
	}
	return opts
}
