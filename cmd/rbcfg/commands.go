package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/moffa90/go-routerboot/cfgtag"
	"github.com/moffa90/go-routerboot/flash"
	"github.com/moffa90/go-routerboot/hardconfig"
	"github.com/moffa90/go-routerboot/partition"
	"github.com/moffa90/go-routerboot/report"
)

// source returns a display name for where the partition is read from.
func (e *env) source() string {
	if e.cfg.Image != "" {
		return e.cfg.Image
	}
	return "mtd:" + e.cfg.MTD
}

// read loads the whole configured partition into memory.
func (e *env) read(ctx context.Context) ([]byte, error) {
	var (
		dev    flash.Device
		closer io.Closer
	)

	if e.cfg.Image != "" {
		img, err := flash.Open(e.cfg.Image,
			flash.WithLogger(e.logger),
			flash.WithMaxSize(e.cfg.MaxReadSize),
		)
		if err != nil {
			return nil, err
		}
		dev, closer = img, img
	} else {
		part, err := flash.OpenMTD(e.cfg.MTD)
		if err != nil {
			return nil, err
		}
		dev, closer = part, part
	}
	defer closer.Close()

	e.logger.Debug("reading partition", "source", e.source(), "size", dev.Size())

	return flash.ReadAll(ctx, dev,
		flash.WithLogger(e.logger),
		flash.WithMaxSize(e.cfg.MaxReadSize),
	)
}

func (e *env) scan(buf []byte) (*cfgtag.Container, error) {
	return cfgtag.Scan(buf,
		cfgtag.WithLogger(e.logger),
		cfgtag.WithMaxTags(e.cfg.Partitions.MaxTags),
	)
}

func (e *env) hardConfig(buf []byte) (*hardconfig.HardConfig, error) {
	prefix, err := e.cfg.LZORPrefix()
	if err != nil {
		return nil, err
	}
	return hardconfig.Parse(buf,
		hardconfig.WithLogger(e.logger),
		hardconfig.WithArtSize(e.cfg.ArtSize),
		hardconfig.WithLZORPrefix(prefix),
	)
}

func (e *env) loadHardConfig(ctx context.Context) (*hardconfig.HardConfig, error) {
	buf, err := e.read(ctx)
	if err != nil {
		return nil, err
	}
	return e.hardConfig(buf)
}

func (e *env) derive(c *cfgtag.Container) []partition.Partition {
	return partition.Derive(c, e.cfg.Partitions.Nodes,
		partition.WithLogger(e.logger),
		partition.WithAllTags(e.cfg.Partitions.AllTags),
	)
}

// output returns the -o file, or stdout when none was given.
func (e *env) output() (io.Writer, func() error, error) {
	if e.opts.output == "" {
		return e.stdout, func() error { return nil }, nil
	}
	f, err := os.Create(e.opts.output)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}

func noArgs(name string, args []string) error {
	if len(args) > 0 {
		return usagef("%s takes no arguments", name)
	}
	return nil
}

func runTags(ctx context.Context, e *env, args []string) error {
	if err := noArgs("tags", args); err != nil {
		return err
	}
	buf, err := e.read(ctx)
	if err != nil {
		return err
	}
	c, err := e.scan(buf)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s_config, %d bytes, %d tags\n\n", c.Variant, c.Size(), len(c.Tags))
	fmt.Fprintln(tw, "ID\tNAME\tOFFSET\tLENGTH")
	for _, t := range c.Tags {
		fmt.Fprintf(tw, "0x%04X\t%s\t0x%04X\t%d\n", t.ID, t.Name(c.Variant), t.Offset, t.Length)
	}
	fmt.Fprintf(tw, "\nscan stopped at 0x%04X: %s\n", c.End.Offset, c.End.Reason)
	return tw.Flush()
}

func runPartitions(ctx context.Context, e *env, args []string) error {
	if err := noArgs("partitions", args); err != nil {
		return err
	}
	buf, err := e.read(ctx)
	if err != nil {
		return err
	}
	c, err := e.scan(buf)
	if err != nil {
		return err
	}

	parts := e.derive(c)
	if len(parts) == 0 {
		e.logger.Info("no partitions derived", "nodes", len(e.cfg.Partitions.Nodes))
		return nil
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTAG\tOFFSET\tSIZE\tNODE")
	for _, p := range parts {
		node := "-"
		if p.Node != nil {
			node = p.Node.Name
		}
		fmt.Fprintf(tw, "%s\t0x%04X\t0x%04X\t%d\t%s\n", p.Name, p.TagID, p.Offset, p.Size, node)
	}
	return tw.Flush()
}

// runShow prints hard_config fields. With one field the bare value is
// printed; otherwise every value is headed by its name.
func runShow(ctx context.Context, e *env, args []string) error {
	hc, err := e.loadHardConfig(ctx)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		for _, entry := range hc.Entries() {
			if entry.Kind != hardconfig.KindCalibration {
				names = append(names, entry.Name)
			}
		}
	}

	if len(names) == 1 {
		value, err := hc.Show(names[0])
		if err != nil {
			return err
		}
		_, err = io.WriteString(e.stdout, value)
		return err
	}

	var failed error
	for _, name := range names {
		value, err := hc.Show(name)
		if err != nil {
			e.logger.Warn("cannot show field", "name", name, "error", err)
			failed = errors.Join(failed, err)
			continue
		}
		fmt.Fprintf(e.stdout, "%s:\n%s\n", name, value)
	}
	return failed
}

// runWLAN lists calibration blobs, or writes one decoded blob.
func runWLAN(ctx context.Context, e *env, args []string) error {
	if len(args) > 1 {
		return usagef("wlan takes at most one calibration name")
	}
	hc, err := e.loadHardConfig(ctx)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		cals := hc.Calibrations()
		if len(cals) == 0 {
			fmt.Fprintln(e.stdout, "no calibration data")
			return nil
		}
		tw := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tID\tSIZE")
		for _, c := range cals {
			data, err := hc.CalibrationData(c.Name)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t0x%04X\t%d\n", c.Name, c.ID, len(data))
		}
		return tw.Flush()
	}

	data, err := hc.CalibrationData(args[0])
	if err != nil {
		return err
	}
	w, closeOut, err := e.output()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		closeOut()
		return fmt.Errorf("write calibration: %w", err)
	}
	return closeOut()
}

func runMACs(ctx context.Context, e *env, args []string) error {
	if err := noArgs("macs", args); err != nil {
		return err
	}
	hc, err := e.loadHardConfig(ctx)
	if err != nil {
		return err
	}

	base, err := hc.MACBase()
	if err != nil {
		return err
	}
	count, err := hc.MACCount()
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "base %s, count %d\n", base, count)

	if len(e.cfg.MACAssignments) == 0 {
		return nil
	}

	macs, err := hc.AssignMACs(e.cfg.MACAssignments)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nNAME\tINCREMENT\tADDRESS")
	for _, m := range macs {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", m.Name, m.Increment, m.Addr)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(macs) < len(e.cfg.MACAssignments) {
		return fmt.Errorf("%d of %d MAC assignments failed", len(e.cfg.MACAssignments)-len(macs), len(e.cfg.MACAssignments))
	}
	return nil
}

// runReport writes the full report. hard_config fields and MACs are included
// only for hard_config partitions.
func runReport(ctx context.Context, e *env, args []string) error {
	if err := noArgs("report", args); err != nil {
		return err
	}
	format, err := report.ParseFormat(e.opts.format)
	if err != nil {
		return usagef("%v", err)
	}

	buf, err := e.read(ctx)
	if err != nil {
		return err
	}
	c, err := e.scan(buf)
	if err != nil {
		return err
	}

	in := report.Inputs{
		Source:     e.source(),
		Container:  c,
		Partitions: e.derive(c),
	}

	if c.Variant == cfgtag.VariantHard {
		hc, err := e.hardConfig(buf)
		if err != nil {
			return err
		}
		in.HardConfig = hc
		if len(e.cfg.MACAssignments) > 0 {
			macs, err := hc.AssignMACs(e.cfg.MACAssignments)
			if err != nil {
				e.logger.Warn("MAC derivation failed", "error", err)
			}
			in.MACs = macs
		}
	}

	w, closeOut, err := e.output()
	if err != nil {
		return err
	}
	if err := report.Write(w, report.Build(in), format); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}
