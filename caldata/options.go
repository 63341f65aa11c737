package caldata

import "github.com/moffa90/go-routerboot/cfgtag"

// Config holds the unpacker configuration.
type Config struct {
	// Logger receives decode diagnostics (optional)
	Logger cfgtag.Logger

	// LZORPrefix is prepended to LZOR streams before decompression
	LZORPrefix []byte
}

func defaultConfig() Config {
	return Config{
		Logger: cfgtag.NopLogger{},
	}
}

// Option is a functional option for configuring Unpack.
type Option func(*Config)

// WithLogger sets the logger receiving decode diagnostics.
func WithLogger(logger cfgtag.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithLZORPrefix sets the compressed dictionary prefix for LZOR payloads.
//
// Vendor LZOR streams reference a fixed prefix that is not stored in flash.
// Without it the bytes after the magic are decoded as a self-contained
// stream.
//
// Example:
//
//	prefix, _ := os.ReadFile("/lib/firmware/rb-lzor-prefix.bin")
//	out, err := caldata.Unpack(id, payload, caldata.ArtSize, caldata.WithLZORPrefix(prefix))
func WithLZORPrefix(prefix []byte) Option {
	return func(c *Config) {
		c.LZORPrefix = prefix
	}
}
