package hardconfig

import (
	"fmt"

	"github.com/moffa90/go-routerboot/caldata"
)

// WLANDataName is the field and single-blob calibration name.
const WLANDataName = "wlan_data"

// Calibration is a published calibration blob.
type Calibration struct {
	// Name is "wlan_data" or "wlan_data/<radio>"
	Name string

	// ID is the calibration ID inside the WLAN data tag
	ID uint16
}

// multiRadio lists the per-radio blobs in publishing order.
var multiRadio = []Calibration{
	{Name: WLANDataName + "/data_0", ID: caldata.IDMulti8001},
	{Name: WLANDataName + "/data_2", ID: caldata.IDMulti8201},
}

// probeCalibration decides which blobs the WLAN data tag carries. The solo
// ID is tried first; only when it fails are the per-radio IDs probed.
// Decoded data is discarded.
func (hc *HardConfig) probeCalibration(e Entry) []Calibration {
	log := hc.config.Logger

	_, err := hc.unpack(e, caldata.IDSolo)
	if err == nil {
		log.Debug("calibration found", "name", WLANDataName, "id", caldata.IDSolo)
		return []Calibration{{Name: WLANDataName, ID: caldata.IDSolo}}
	}
	log.Debug("calibration probe failed", "id", caldata.IDSolo, "error", err)

	var found []Calibration
	for _, c := range multiRadio {
		if _, err := hc.unpack(e, c.ID); err != nil {
			log.Debug("calibration probe failed", "id", c.ID, "error", err)
			continue
		}
		log.Debug("calibration found", "name", c.Name, "id", c.ID)
		found = append(found, c)
	}

	if len(found) == 0 {
		log.Warn("WLAN data tag present but no calibration decodes", "length", e.Length)
	}
	return found
}

// Calibrations returns the published calibration blobs.
func (hc *HardConfig) Calibrations() []Calibration {
	out := make([]Calibration, len(hc.wlan))
	copy(out, hc.wlan)
	return out
}

// CalibrationData decodes the calibration blob called name into a new
// buffer. Every call decodes again.
//
// Example:
//
//	for _, c := range hc.Calibrations() {
//	    data, err := hc.CalibrationData(c.Name)
//	    ...
//	}
func (hc *HardConfig) CalibrationData(name string) ([]byte, error) {
	for _, c := range hc.wlan {
		if c.Name != name {
			continue
		}
		e, err := hc.Entry(WLANDataName)
		if err != nil {
			return nil, err
		}
		data, err := hc.unpack(e, c.ID)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// ReadCalibrationAt copies decoded calibration bytes starting at off into p,
// like a read of a published binary file. Reads at or past the end return 0.
func (hc *HardConfig) ReadCalibrationAt(name string, p []byte, off int64) (int, error) {
	data, err := hc.CalibrationData(name)
	if err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= int64(len(data)) {
		return 0, nil
	}
	return copy(p, data[off:]), nil
}
