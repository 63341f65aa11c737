package flash

import (
	"time"

	"github.com/moffa90/go-routerboot/cfgtag"
)

// Default limits.
const (
	// DefaultChunkSize matches the common 4 KiB NOR erase block
	DefaultChunkSize = 4096

	// DefaultMaxSize bounds whole-region reads and decompressed images
	DefaultMaxSize = 16 << 20
)

// Progress describes how far a region read has got.
type Progress struct {
	// Offset is the number of bytes read so far
	Offset int64

	// Total is the region size
	Total int64

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time since the read started
	ElapsedTime time.Duration
}

// ProgressCallback is called after every chunk. Implementations should
// return quickly.
type ProgressCallback func(Progress)

// Config holds the reader configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger cfgtag.Logger

	// ProgressCallback is called during reads (optional)
	ProgressCallback ProgressCallback

	// ChunkSize is the size of a single ReadAt call
	ChunkSize int

	// MaxSize is the largest region or decompressed image accepted
	MaxSize int64
}

func defaultConfig() Config {
	return Config{
		Logger:    cfgtag.NopLogger{},
		ChunkSize: DefaultChunkSize,
		MaxSize:   DefaultMaxSize,
	}
}

// Option is a functional option for configuring reads and image loading.
type Option func(*Config)

// WithLogger sets a logger for flash operations.
func WithLogger(logger cfgtag.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithProgressCallback sets a callback to track region reads.
//
// Example:
//
//	buf, err := flash.ReadAll(ctx, dev,
//	    flash.WithProgressCallback(func(p flash.Progress) {
//	        log.Printf("%d/%d bytes", p.Offset, p.Total)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithChunkSize sets the size of individual reads. Default is 4096 bytes.
func WithChunkSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.ChunkSize = size
		}
	}
}

// WithMaxSize sets the largest accepted region. Default is 16 MiB.
//
// Example:
//
//	img, err := flash.Open(path, flash.WithMaxSize(64<<20))
func WithMaxSize(size int64) Option {
	return func(c *Config) {
		if size > 0 {
			c.MaxSize = size
		}
	}
}
