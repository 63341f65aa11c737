package hardconfig

import (
	"encoding/binary"
	"fmt"
	"net"
)

// Assignment maps a MAC increment to an interface name.
type Assignment struct {
	// Name labels the receiving interface, e.g. "ether1"
	Name string `yaml:"name" json:"name"`

	// Increment is added to the base address
	Increment uint32 `yaml:"increment" json:"increment"`
}

// AssignedMAC is a derived address.
type AssignedMAC struct {
	Assignment

	// Addr is the derived address
	Addr net.HardwareAddr `json:"addr"`
}

// ValidMAC reports whether addr is a usable unicast address: six bytes,
// not multicast, not all zero.
func ValidMAC(addr net.HardwareAddr) bool {
	if len(addr) != 6 || addr[0]&0x01 != 0 {
		return false
	}
	for _, b := range addr {
		if b != 0 {
			return true
		}
	}
	return false
}

// DeriveMAC adds increment to base as a 48-bit number. Base and result must
// be valid unicast addresses and increment must not exceed count.
//
// Example:
//
//	base, _ := net.ParseMAC("48:8f:5a:00:00:10")
//	mac, err := hardconfig.DeriveMAC(base, 5, 2) // 48:8f:5a:00:00:12
func DeriveMAC(base net.HardwareAddr, count, increment uint32) (net.HardwareAddr, error) {
	if !ValidMAC(base) {
		return nil, fmt.Errorf("base %v: %w", base, ErrInvalidMAC)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: no MAC addresses allocated", ErrMACRange)
	}
	if increment > count {
		return nil, fmt.Errorf("%w: %d > %d", ErrMACRange, increment, count)
	}

	var word [8]byte
	copy(word[2:], base)
	v := (binary.BigEndian.Uint64(word[:]) + uint64(increment)) & (1<<48 - 1)
	binary.BigEndian.PutUint64(word[:], v)

	mac := make(net.HardwareAddr, 6)
	copy(mac, word[2:])
	if !ValidMAC(mac) {
		return nil, fmt.Errorf("derived %v: %w", mac, ErrInvalidMAC)
	}
	return mac, nil
}

// MACBase returns the base address from mac_base.
func (hc *HardConfig) MACBase() (net.HardwareAddr, error) {
	e, err := hc.Entry("mac_base")
	if err != nil {
		return nil, err
	}
	return parseMAC(e.Name, hc.payload(e))
}

// MACCount returns the number of addresses allocated to the board.
func (hc *HardConfig) MACCount() (uint32, error) {
	e, err := hc.Entry("mac_count")
	if err != nil {
		return 0, err
	}
	if e.Length < 4 {
		return 0, &PayloadError{Field: e.Name, Length: e.Length, Reason: "expected at least 4 bytes"}
	}
	return binary.NativeEndian.Uint32(hc.payload(e)), nil
}

// AssignMACs derives an address per assignment from the board's MAC base and
// count.
//
// A missing or invalid base, or a zero count, fails the whole call.
// Assignments whose increment exceeds the count or whose result is invalid
// are logged and skipped.
func (hc *HardConfig) AssignMACs(assignments []Assignment) ([]AssignedMAC, error) {
	log := hc.config.Logger

	base, err := hc.MACBase()
	if err != nil {
		return nil, fmt.Errorf("mac base: %w", err)
	}
	if !ValidMAC(base) {
		log.Error("hard_config base MAC is invalid", "base", base.String())
		return nil, fmt.Errorf("base %v: %w", base, ErrInvalidMAC)
	}

	count, err := hc.MACCount()
	if err != nil {
		return nil, fmt.Errorf("mac count: %w", err)
	}
	if count == 0 {
		log.Error("hard_config has no MAC count")
		return nil, fmt.Errorf("%w: no MAC addresses allocated", ErrMACRange)
	}

	log.Info("deriving MAC addresses", "base", base.String(), "count", count)

	var out []AssignedMAC
	for _, a := range assignments {
		mac, err := DeriveMAC(base, count, a.Increment)
		if err != nil {
			log.Error("skipping MAC assignment", "name", a.Name, "increment", a.Increment, "error", err)
			continue
		}
		log.Debug("MAC assigned", "name", a.Name, "addr", mac.String())
		out = append(out, AssignedMAC{Assignment: a, Addr: mac})
	}

	return out, nil
}
