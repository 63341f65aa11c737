package hardconfig

import (
	"context"
	"fmt"

	"github.com/moffa90/go-routerboot/caldata"
	"github.com/moffa90/go-routerboot/cfgtag"
	"github.com/moffa90/go-routerboot/flash"
)

// Entry is a field located in the partition.
type Entry struct {
	Field

	// Offset is the payload offset from the partition start
	Offset int

	// Length is the payload length
	Length int
}

// HardConfig is a loaded hard_config partition.
//
// HardConfig is immutable after Load and safe for concurrent use.
type HardConfig struct {
	buf     []byte
	entries []Entry
	wlan    []Calibration
	config  Config
}

// Load reads the whole device and parses it.
//
// A short read fails with *flash.IOError and a missing Hard magic with
// *cfgtag.FormatError; no partial configuration is returned.
//
// Example:
//
//	part, _ := flash.OpenMTD("hard_config")
//	hc, err := hardconfig.Load(ctx, part)
func Load(ctx context.Context, dev flash.Device, opts ...Option) (*HardConfig, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	readOpts := append([]flash.Option{flash.WithLogger(cfg.Logger)}, cfg.ReadOptions...)
	buf, err := flash.ReadAll(ctx, dev, readOpts...)
	if err != nil {
		return nil, fmt.Errorf("read hard_config: %w", err)
	}

	return parse(buf, cfg)
}

// Parse parses a hard_config image held in memory. The buffer is retained
// and must not be modified afterwards.
func Parse(buf []byte, opts ...Option) (*HardConfig, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return parse(buf, cfg)
}

func parse(buf []byte, cfg Config) (*HardConfig, error) {
	magic, ok := cfgtag.Word(buf, 0)
	if !ok || magic != cfgtag.MagicHard {
		return nil, &cfgtag.FormatError{Magic: magic, Size: len(buf)}
	}

	hc := &HardConfig{buf: buf, config: cfg}
	body := buf[cfgtag.NodeSize:]

	for _, f := range fieldTable {
		tag, err := cfgtag.Find(body, f.ID)
		if err != nil {
			continue
		}

		e := Entry{
			Field:  f,
			Offset: tag.Offset + cfgtag.NodeSize,
			Length: int(tag.Length),
		}

		if f.Kind == KindCalibration {
			hc.wlan = hc.probeCalibration(e)
		}
		hc.entries = append(hc.entries, e)
	}

	cfg.Logger.Info("hard_config loaded",
		"size", len(buf),
		"fields", len(hc.entries),
		"calibrations", len(hc.wlan),
	)

	return hc, nil
}

// Size returns the partition size.
func (hc *HardConfig) Size() int {
	return len(hc.buf)
}

// Entries returns the located fields in table order.
func (hc *HardConfig) Entries() []Entry {
	out := make([]Entry, len(hc.entries))
	copy(out, hc.entries)
	return out
}

// Entry returns the located field called name.
func (hc *HardConfig) Entry(name string) (Entry, error) {
	f, ok := FieldByName(name)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	for _, e := range hc.entries {
		if e.ID == f.ID {
			return e, nil
		}
	}
	return Entry{}, &cfgtag.NotFoundError{ID: f.ID}
}

// Attributes lists the published names: formatted fields first, then
// calibration blobs.
func (hc *HardConfig) Attributes() []string {
	var names []string
	for _, e := range hc.entries {
		if e.Kind != KindCalibration {
			names = append(names, e.Name)
		}
	}
	for _, c := range hc.wlan {
		names = append(names, c.Name)
	}
	return names
}

// Raw returns a copy of the payload of the field called name.
func (hc *HardConfig) Raw(name string) ([]byte, error) {
	e, err := hc.Entry(name)
	if err != nil {
		return nil, err
	}
	out := make([]byte, e.Length)
	copy(out, hc.payload(e))
	return out, nil
}

// Show returns the formatted value of the field called name.
//
// Example:
//
//	s, err := hc.Show("hw_options")
//	// raw             : 0x00000004
//	//
//	// no UART         : false
//	// ...
func (hc *HardConfig) Show(name string) (string, error) {
	e, err := hc.Entry(name)
	if err != nil {
		return "", err
	}
	return e.Format(hc.payload(e))
}

// HWOptions returns the raw hw_options word.
func (hc *HardConfig) HWOptions() (uint32, error) {
	e, err := hc.Entry("hw_options")
	if err != nil {
		return 0, err
	}
	return parseHWOptions(e.Name, hc.payload(e))
}

// payload aliases the partition buffer; callers must not write to it.
func (hc *HardConfig) payload(e Entry) []byte {
	return hc.buf[e.Offset : e.Offset+e.Length : e.Offset+e.Length]
}

// WLANPayload returns a copy of the packed calibration tag payload.
func (hc *HardConfig) WLANPayload() ([]byte, error) {
	return hc.Raw(WLANDataName)
}

// unpack decodes calibration id from the WLAN data entry into a fresh buffer.
func (hc *HardConfig) unpack(e Entry, id uint16) ([]byte, error) {
	return caldata.Unpack(id, hc.payload(e), hc.config.ArtSize, hc.config.unpackOptions()...)
}
