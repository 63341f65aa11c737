package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fxamacker/cbor/v2"
)

// Format is an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ParseFormat converts a command line value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatCBOR:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or cbor)", s)
	}
}

// encMode is the CBOR encoder configured with Core Deterministic Encoding
// (RFC 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("report: CBOR encoder initialization failed: " + err.Error())
	}
}

// MarshalCBOR encodes r deterministically.
func (r *Report) MarshalCBOR() ([]byte, error) {
	type plain Report
	return encMode.Marshal((*plain)(r))
}

// Write renders r to w in the given format.
func Write(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatCBOR:
		data, err := r.MarshalCBOR()
		if err != nil {
			return fmt.Errorf("encode cbor: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatText:
		return writeText(w, r)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeText(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "source:\t%s\n", r.Source)
	fmt.Fprintf(tw, "variant:\t%s\n", r.Variant)
	fmt.Fprintf(tw, "size:\t%d\n", r.Size)
	fmt.Fprintf(tw, "scan end:\t0x%X (%s)\n", r.End.Offset, r.End.Reason)

	fmt.Fprintf(tw, "\nTAG\tID\tOFFSET\tLENGTH\n")
	for _, t := range r.Tags {
		fmt.Fprintf(tw, "%s\t0x%02X\t0x%04X\t%d\n", t.Name, t.ID, t.Offset, t.Length)
	}

	if len(r.Fields) > 0 {
		fmt.Fprintf(tw, "\nFIELD\tKIND\tVALUE\n")
		for _, f := range r.Fields {
			value := strings.ReplaceAll(f.Value, "\n", " ")
			if f.Error != "" {
				value = "error: " + f.Error
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, f.Kind, value)
		}
	}

	if len(r.Calibrations) > 0 {
		fmt.Fprintf(tw, "\nCALIBRATION\tID\tFORMAT\tSIZE\tBLAKE3\n")
		for _, c := range r.Calibrations {
			digest := c.BLAKE3
			if c.Error != "" {
				digest = "error: " + c.Error
			}
			fmt.Fprintf(tw, "%s\t0x%04X\t%s\t%d\t%s\n", c.Name, c.ID, c.Format, c.Size, digest)
		}
	}

	if len(r.Partitions) > 0 {
		fmt.Fprintf(tw, "\nPARTITION\tOFFSET\tSIZE\tNODE\n")
		for _, p := range r.Partitions {
			node := "-"
			if p.Node != nil {
				node = p.Node.Name
			}
			fmt.Fprintf(tw, "%s\t0x%04X\t%d\t%s\n", p.Name, p.Offset, p.Size, node)
		}
	}

	if len(r.MACs) > 0 {
		fmt.Fprintf(tw, "\nINTERFACE\tINCREMENT\tADDRESS\n")
		for _, m := range r.MACs {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", m.Name, m.Increment, m.Addr)
		}
	}

	return tw.Flush()
}
