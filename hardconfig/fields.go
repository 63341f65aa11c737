package hardconfig

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"strings"

	"github.com/moffa90/go-routerboot/cfgtag"
)

// Kind selects how a field payload is decoded and shown.
type Kind uint8

const (
	// KindU32s is a list of CPU-endian 32-bit words
	KindU32s Kind = iota

	// KindMAC is an 8-byte MAC address pack
	KindMAC

	// KindString is a NUL-terminated string
	KindString

	// KindHWOptions is the 32-bit hardware option bitmask
	KindHWOptions

	// KindCalibration is packed WLAN calibration data
	KindCalibration
)

func (k Kind) String() string {
	switch k {
	case KindU32s:
		return "u32s"
	case KindMAC:
		return "mac"
	case KindString:
		return "string"
	case KindHWOptions:
		return "hwoptions"
	case KindCalibration:
		return "calibration"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Field is a known hard_config tag.
type Field struct {
	// ID is the tag ID
	ID uint16

	// Name is the published field name
	Name string

	// Kind selects the formatter
	Kind Kind
}

// fieldTable lists the known tags in publishing order.
var fieldTable = []Field{
	{ID: cfgtag.IDFlashInfo, Name: "flash_info", Kind: KindU32s},
	{ID: cfgtag.IDMACAddressPack, Name: "mac_base", Kind: KindMAC},
	{ID: cfgtag.IDBoardProductCode, Name: "board_product_code", Kind: KindString},
	{ID: cfgtag.IDBIOSVersion, Name: "booter_version", Kind: KindString},
	{ID: cfgtag.IDSerialNumber, Name: "board_serial", Kind: KindString},
	{ID: cfgtag.IDMemorySize, Name: "mem_size", Kind: KindU32s},
	{ID: cfgtag.IDMACAddressCount, Name: "mac_count", Kind: KindU32s},
	{ID: cfgtag.IDHWOptions, Name: "hw_options", Kind: KindHWOptions},
	{ID: cfgtag.IDWLANData, Name: WLANDataName, Kind: KindCalibration},
	{ID: cfgtag.IDBoardIdentifier, Name: "board_identifier", Kind: KindString},
	{ID: cfgtag.IDProductName, Name: "product_name", Kind: KindString},
	{ID: cfgtag.IDDefconf, Name: "defconf", Kind: KindString},
	{ID: cfgtag.IDBoardRevision, Name: "board_revision", Kind: KindString},
}

// KnownFields returns the field table.
func KnownFields() []Field {
	out := make([]Field, len(fieldTable))
	copy(out, fieldTable)
	return out
}

// FieldByName returns the known field called name.
func FieldByName(name string) (Field, bool) {
	for _, f := range fieldTable {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Format renders a payload the way the field kind is published.
// Calibration payloads are binary and cannot be formatted.
func (f Field) Format(payload []byte) (string, error) {
	switch f.Kind {
	case KindU32s:
		return formatU32s(f.Name, payload)
	case KindMAC:
		return formatMAC(f.Name, payload)
	case KindString:
		return formatString(payload), nil
	case KindHWOptions:
		return formatHWOptions(f.Name, payload)
	case KindCalibration:
		return "", &PayloadError{Field: f.Name, Length: len(payload), Reason: "binary calibration data"}
	default:
		return "", fmt.Errorf("field %s: unsupported kind %v", f.Name, f.Kind)
	}
}

func formatU32s(name string, payload []byte) (string, error) {
	if len(payload)%4 != 0 {
		return "", &PayloadError{Field: name, Length: len(payload), Reason: "not a multiple of 4"}
	}

	var sb strings.Builder
	for off := 0; off < len(payload); off += 4 {
		fmt.Fprintf(&sb, "0x%08x\n", binary.NativeEndian.Uint32(payload[off:]))
	}
	return sb.String(), nil
}

func formatString(payload []byte) string {
	if i := bytes.IndexByte(payload, 0); i >= 0 {
		payload = payload[:i]
	}
	return string(payload) + "\n"
}

func formatMAC(name string, payload []byte) (string, error) {
	mac, err := parseMAC(name, payload)
	if err != nil {
		return "", err
	}
	return mac.String() + "\n", nil
}

// parseMAC reads the network-order address from the two-word MAC pack.
func parseMAC(name string, payload []byte) (net.HardwareAddr, error) {
	if len(payload) != 8 {
		return nil, &PayloadError{Field: name, Length: len(payload), Reason: "expected 8 bytes"}
	}
	mac := make(net.HardwareAddr, 6)
	copy(mac, payload)
	return mac, nil
}

// HWOption is a known bit of the hw_options field.
type HWOption struct {
	// Bit is the option mask
	Bit uint32

	// Name is the human readable label
	Name string
}

// Hardware option bits.
const (
	HWNoUART         uint32 = 1 << 0
	HWHasVoltage     uint32 = 1 << 1
	HWHasUSB         uint32 = 1 << 2
	HWHasATtiny      uint32 = 1 << 3
	HWPulseDutyCycle uint32 = 1 << 9
	HWNoNAND         uint32 = 1 << 14
	HWHasLCD         uint32 = 1 << 15
	HWHasPoEOut      uint32 = 1 << 16
	HWHasMicroSD     uint32 = 1 << 17
	HWHasSIM         uint32 = 1 << 18
	HWHasSFP         uint32 = 1 << 20
	HWHasWiFi        uint32 = 1 << 21
	HWHasTSForADC    uint32 = 1 << 22
	HWHasPLC         uint32 = 1 << 29
)

// HWOptions lists the bits shown by the hw_options formatter. The pulse duty
// cycle bit is not among them.
var HWOptions = []HWOption{
	{HWNoUART, "no UART"},
	{HWHasVoltage, "has Vreg"},
	{HWHasUSB, "has usb"},
	{HWHasATtiny, "has ATtiny"},
	{HWNoNAND, "no NAND"},
	{HWHasLCD, "has LCD"},
	{HWHasPoEOut, "has POE out"},
	{HWHasMicroSD, "has MicroSD"},
	{HWHasSIM, "has SIM"},
	{HWHasSFP, "has SFP"},
	{HWHasWiFi, "has WiFi"},
	{HWHasTSForADC, "has TS ADC"},
	{HWHasPLC, "has PLC"},
}

// DecodeHWOptions maps every shown option name to its state in raw.
func DecodeHWOptions(raw uint32) map[string]bool {
	out := make(map[string]bool, len(HWOptions))
	for _, opt := range HWOptions {
		out[opt.Name] = raw&opt.Bit != 0
	}
	return out
}

func parseHWOptions(name string, payload []byte) (uint32, error) {
	if len(payload) != 4 {
		return 0, &PayloadError{Field: name, Length: len(payload), Reason: "expected 4 bytes"}
	}
	return binary.NativeEndian.Uint32(payload), nil
}

func formatHWOptions(name string, payload []byte) (string, error) {
	raw, err := parseHWOptions(name, payload)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: 0x%08x\n\n", tabLabel("raw"), raw)
	for _, opt := range HWOptions {
		fmt.Fprintf(&sb, "%s: %t\n", tabLabel(opt.Name), raw&opt.Bit != 0)
	}
	return sb.String(), nil
}

// tabLabel pads a label with tabs to the second 8-column tab stop, the layout
// the sysfs hw_options file uses.
func tabLabel(label string) string {
	if len(label) < 8 {
		return label + "\t\t"
	}
	return label + "\t"
}
