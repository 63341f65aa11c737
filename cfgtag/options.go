package cfgtag

// Logger is an optional logging interface shared by the routerboot packages.
// *slog.Logger satisfies it directly.
//
// Example with log/slog:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	c, err := cfgtag.Scan(image, cfgtag.WithLogger(logger))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...any)

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...any)

	// Warn logs a warning with optional key-value pairs
	Warn(msg string, keysAndValues ...any)

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

// Config holds the scanner configuration.
type Config struct {
	// Logger receives scan diagnostics (optional)
	Logger Logger

	// MaxTags is the expected tag count ceiling. Going past it is logged,
	// scanning continues.
	MaxTags int
}

func defaultConfig() Config {
	return Config{
		Logger:  NopLogger{},
		MaxTags: DefaultMaxTags,
	}
}

// Option is a functional option for configuring Scan.
type Option func(*Config)

// WithLogger sets the logger receiving scan diagnostics.
//
// Example:
//
//	c, err := cfgtag.Scan(image, cfgtag.WithLogger(slog.Default()))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithMaxTags sets the soft tag count limit. Default is 30.
//
// Example:
//
//	c, err := cfgtag.Scan(image, cfgtag.WithMaxTags(64))
func WithMaxTags(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxTags = n
		}
	}
}
