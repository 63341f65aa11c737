// Package report assembles everything known about a configuration partition
// into one document and renders it as text, JSON or CBOR.
//
// CBOR output uses Core Deterministic Encoding: the same partition always
// produces the same bytes. Calibration blobs are summarized by size and
// BLAKE3 digest rather than embedded.
package report

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/moffa90/go-routerboot/caldata"
	"github.com/moffa90/go-routerboot/cfgtag"
	"github.com/moffa90/go-routerboot/hardconfig"
	"github.com/moffa90/go-routerboot/partition"
)

// Report describes one scanned partition.
type Report struct {
	Source       string                `json:"source"`
	Size         int                   `json:"size"`
	Variant      string                `json:"variant"`
	Tags         []Tag                 `json:"tags"`
	End          End                   `json:"end"`
	Fields       []Field               `json:"fields,omitempty"`
	HWOptions    map[string]bool       `json:"hw_options,omitempty"`
	Calibrations []Calibration         `json:"calibrations,omitempty"`
	Partitions   []partition.Partition `json:"partitions,omitempty"`
	MACs         []MAC                 `json:"macs,omitempty"`
}

// Tag is one scanned tag.
type Tag struct {
	ID     uint16 `json:"id"`
	Name   string `json:"name"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// End records where and why the scan stopped.
type End struct {
	Offset int    `json:"offset"`
	Reason string `json:"reason"`
}

// Field is a formatted hard_config field.
type Field struct {
	Name   string `json:"name"`
	ID     uint16 `json:"id"`
	Kind   string `json:"kind"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Value  string `json:"value,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Calibration summarizes one decoded calibration blob.
type Calibration struct {
	Name   string `json:"name"`
	ID     uint16 `json:"id"`
	Format string `json:"format"`
	Size   int    `json:"size"`
	BLAKE3 string `json:"blake3,omitempty"`
	Error  string `json:"error,omitempty"`
}

// MAC is a derived interface address.
type MAC struct {
	Name      string `json:"name"`
	Increment uint32 `json:"increment"`
	Addr      string `json:"addr"`
}

// Inputs groups the pieces a report is built from. Only Container is
// required.
type Inputs struct {
	// Source names where the partition was read from
	Source string

	// Container is the scanned partition
	Container *cfgtag.Container

	// HardConfig adds fields and calibration data (hard_config only)
	HardConfig *hardconfig.HardConfig

	// Partitions are the derived partitions
	Partitions []partition.Partition

	// MACs are the derived addresses
	MACs []hardconfig.AssignedMAC
}

// Build assembles a report. Calibration data is decoded once here to size
// and digest it.
func Build(in Inputs) *Report {
	c := in.Container
	r := &Report{
		Source:     in.Source,
		Size:       c.Size(),
		Variant:    c.Variant.String(),
		Tags:       make([]Tag, 0, len(c.Tags)),
		End:        End{Offset: c.End.Offset, Reason: c.End.Reason.String()},
		Partitions: in.Partitions,
	}

	for _, t := range c.Tags {
		r.Tags = append(r.Tags, Tag{
			ID:     t.ID,
			Name:   t.Name(c.Variant),
			Offset: t.Offset,
			Length: int(t.Length),
		})
	}

	if hc := in.HardConfig; hc != nil {
		r.Fields = fields(hc)
		r.HWOptions = hwOptions(hc)
		r.Calibrations = calibrations(hc)
	}

	for _, m := range in.MACs {
		r.MACs = append(r.MACs, MAC{Name: m.Name, Increment: m.Increment, Addr: m.Addr.String()})
	}

	return r
}

func fields(hc *hardconfig.HardConfig) []Field {
	var out []Field
	for _, e := range hc.Entries() {
		if e.Kind == hardconfig.KindCalibration {
			continue
		}
		f := Field{
			Name:   e.Name,
			ID:     e.ID,
			Kind:   e.Kind.String(),
			Offset: e.Offset,
			Length: e.Length,
		}
		if e.Kind == hardconfig.KindHWOptions {
			if w, err := hc.HWOptions(); err != nil {
				f.Error = err.Error()
			} else {
				f.Value = fmt.Sprintf("0x%08x", w)
			}
		} else if v, err := hc.Show(e.Name); err != nil {
			f.Error = err.Error()
		} else {
			f.Value = strings.TrimSuffix(v, "\n")
		}
		out = append(out, f)
	}
	return out
}

func hwOptions(hc *hardconfig.HardConfig) map[string]bool {
	w, err := hc.HWOptions()
	if err != nil {
		return nil
	}
	return hardconfig.DecodeHWOptions(w)
}

func calibrations(hc *hardconfig.HardConfig) []Calibration {
	payload, err := hc.WLANPayload()
	if err != nil {
		return nil
	}
	format := caldata.Detect(payload).String()

	var out []Calibration
	for _, c := range hc.Calibrations() {
		cal := Calibration{Name: c.Name, ID: c.ID, Format: format}
		data, err := hc.CalibrationData(c.Name)
		if err != nil {
			cal.Error = err.Error()
		} else {
			sum := blake3.Sum256(data)
			cal.Size = len(data)
			cal.BLAKE3 = hex.EncodeToString(sum[:])
		}
		out = append(out, cal)
	}
	return out
}
