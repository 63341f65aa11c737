package cfgtag

import (
	"encoding/binary"
	"fmt"
)

// Magic words, compared against CPU-endian 32-bit reads.
const (
	// MagicHard starts the factory "hard_config" container ("Hard")
	MagicHard uint32 = 'H' | 'a'<<8 | 'r'<<16 | 'd'<<24

	// MagicSoft starts the user "soft_config" container ("Soft")
	MagicSoft uint32 = 'S' | 'o'<<8 | 'f'<<16 | 't'<<24

	// MagicLZOR marks an LZO-compressed calibration blob ("LZOR")
	MagicLZOR uint32 = 'L' | 'Z'<<8 | 'O'<<16 | 'R'<<24

	// MagicERD marks embedded calibration tag data ("DRE\0" in memory order)
	MagicERD uint32 = 'E'<<16 | 'R'<<8 | 'D'
)

// Tag invariants enforced by Scan.
const (
	// MaxID is the largest tag ID accepted while scanning a container
	MaxID = 0x30

	// MinLength is the smallest accepted payload length
	MinLength = 4

	// MaxLength is the largest accepted payload length
	MaxLength = 0x1000

	// NodeSize is the size of a tag node word (ID + length)
	NodeSize = 4

	// DefaultMaxTags is the soft tag count limit; exceeding it only logs
	DefaultMaxTags = 30

	// MaxTagsLimit is the largest soft limit accepted from configuration
	MaxTagsLimit = 0x1000
)

// Known hard_config tag IDs.
const (
	IDFlashInfo        uint16 = 0x03
	IDMACAddressPack   uint16 = 0x04
	IDBoardProductCode uint16 = 0x05
	IDBIOSVersion      uint16 = 0x06
	IDSerialNumber     uint16 = 0x0B
	IDMemorySize       uint16 = 0x0D
	IDMACAddressCount  uint16 = 0x0E
	IDHWOptions        uint16 = 0x15
	IDWLANData         uint16 = 0x16
	IDBoardIdentifier  uint16 = 0x17
	IDProductName      uint16 = 0x21
	IDDefconf          uint16 = 0x26
	IDBoardRevision    uint16 = 0x27
)

// Variant identifies the container flavour from its start magic.
type Variant uint8

const (
	// VariantHard is the factory container: magic only
	VariantHard Variant = iota + 1

	// VariantSoft is the user container: magic followed by an unchecked CRC32
	VariantSoft
)

// String returns the lower-case variant name used in partition names.
func (v Variant) String() string {
	switch v {
	case VariantHard:
		return "hard"
	case VariantSoft:
		return "soft"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(v))
	}
}

// HeaderLen returns how many bytes precede the first tag node.
func (v Variant) HeaderLen() int {
	if v == VariantSoft {
		return 8
	}
	return 4
}

// Tag locates one record inside the scanned buffer. It holds no payload copy.
type Tag struct {
	// ID is the tag identifier
	ID uint16

	// Length is the payload length in bytes
	Length uint16

	// Offset is the payload offset from the start of the scanned buffer
	Offset int
}

// End returns the offset one past the last payload byte.
func (t Tag) End() int {
	return t.Offset + int(t.Length)
}

// Name returns the deterministic partition name, e.g. "hard_tag_07".
func (t Tag) Name(v Variant) string {
	return fmt.Sprintf("%s_tag_%02d", v, t.ID)
}

// word reads the CPU-endian 32-bit value at off. Callers bound-check.
func word(buf []byte, off int) uint32 {
	return binary.NativeEndian.Uint32(buf[off : off+4])
}

// splitNode splits a node word into tag ID and payload length.
func splitNode(node uint32) (id uint16, length uint16) {
	return uint16(node & 0xFFFF), uint16(node >> 16)
}

// Word reads the CPU-endian 32-bit value at off, reporting false when fewer
// than 4 bytes remain.
func Word(buf []byte, off int) (uint32, bool) {
	if off < 0 || off+4 > len(buf) {
		return 0, false
	}
	return word(buf, off), true
}
