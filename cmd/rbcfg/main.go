// rbcfg inspects MikroTik RouterBoot configuration partitions.
//
// It reads a hard_config or soft_config partition from an MTD device or a
// flash dump (plain, zstd or LZ4 compressed), lists its tags, derives
// partitions, shows hard_config fields, extracts WLAN calibration data and
// derives interface MAC addresses.
//
// Usage:
//
//	rbcfg [flags] <command> [args]
//
// Exit status is 0 on success, 1 on operational failure and 2 on usage
// errors.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/moffa90/go-routerboot/config"
)

// These variables are set via -ldflags at build time.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

// usageError is a command line mistake; it exits with status 2.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }
func (e *usageError) ExitCode() int { return 2 }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// options collects the global flags.
type options struct {
	configPath string
	image      string
	mtd        string
	logLevel   string
	allTags    bool
	artSize    int
	lzorPrefix string
	format     string
	output     string
}

// env is what every command runs with.
type env struct {
	cfg    *config.Config
	opts   options
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

var commands = map[string]func(ctx context.Context, e *env, args []string) error{
	"tags":       runTags,
	"partitions": runPartitions,
	"show":       runShow,
	"wlan":       runWLAN,
	"macs":       runMACs,
	"report":     runReport,
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("rbcfg", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	flagSet.StringVarP(&opts.image, "image", "i", "", "read a flash dump instead of an MTD partition")
	flagSet.StringVarP(&opts.mtd, "mtd", "m", "", "MTD partition name (default: hard_config)")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flagSet.BoolVar(&opts.allTags, "all-tags", false, "emit a partition for every tag")
	flagSet.IntVar(&opts.artSize, "art-size", 0, "calibration output capacity in bytes")
	flagSet.StringVar(&opts.lzorPrefix, "lzor-prefix", "", "LZOR dictionary prefix file")
	flagSet.StringVarP(&opts.format, "format", "f", "text", "report format: text, json, cbor")
	flagSet.StringVarP(&opts.output, "output", "o", "", "write command output to this file")
	showVersion := flagSet.Bool("version", false, "print version and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return nil
		}
		return usagef("%v", err)
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stdout, flagSet)
		return nil
	}

	rest := flagSet.Args()
	if *showVersion || (len(rest) > 0 && rest[0] == "version") {
		fmt.Fprintf(stdout, "rbcfg %s (%s)\n", Version, GitCommit)
		return nil
	}
	if len(rest) == 0 {
		printHelp(stderr, flagSet)
		return usagef("missing command")
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		return usagef("unknown command %q", rest[0])
	}

	cfg, err := loadConfig(flagSet, &opts)
	if err != nil {
		return err
	}

	e := &env{
		cfg:    cfg,
		opts:   opts,
		logger: newLogger(stderr, cfg.LogLevel),
		stdout: stdout,
		stderr: stderr,
	}

	return cmd(ctx, e, rest[1:])
}

// loadConfig reads the config file, applies flag overrides, validates and
// normalizes.
func loadConfig(flagSet *pflag.FlagSet, opts *options) (*config.Config, error) {
	cfg := &config.Config{}
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flagSet.Changed("image") {
		cfg.Image, cfg.MTD = opts.image, ""
	}
	if flagSet.Changed("mtd") {
		cfg.MTD, cfg.Image = opts.mtd, ""
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flagSet.Changed("all-tags") {
		cfg.Partitions.AllTags = opts.allTags
	}
	if flagSet.Changed("art-size") {
		cfg.ArtSize = opts.artSize
	}
	if flagSet.Changed("lzor-prefix") {
		cfg.LZORPrefixFile = opts.lzorPrefix
	}

	if err := config.Validate(cfg); err != nil {
		return nil, usagef("invalid configuration: %v", err)
	}
	config.Normalize(cfg)

	return cfg, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `rbcfg inspects MikroTik RouterBoot configuration partitions.

Usage:
  rbcfg [flags] <command> [args]

Commands:
  tags                 list tags and where the scan stopped
  partitions           derive partitions from placement nodes
  show [field...]      show hard_config fields
  wlan [name]          list or extract WLAN calibration data
  macs                 derive interface MAC addresses
  report               full report (--format text|json|cbor)
  version              print version

Flags:
%s`, strings.TrimRight(flagSet.FlagUsages(), "\n")+"\n")
}
