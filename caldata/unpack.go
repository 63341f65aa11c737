package caldata

import (
	"errors"

	"github.com/moffa90/go-routerboot/cfgtag"
	"github.com/moffa90/go-routerboot/lzo"
	"github.com/moffa90/go-routerboot/rle"
)

// Calibration IDs inside the WLAN data tag.
const (
	// IDSolo is the single-radio calibration ID
	IDSolo uint16 = 0x0001

	// IDMulti8001 is the first radio on multi-radio boards
	IDMulti8001 uint16 = 0x8001

	// IDMulti8201 is the second radio on multi-radio boards
	IDMulti8201 uint16 = 0x8201
)

// ArtSize is the default output capacity (the ART partition size).
const ArtSize = 0x10000

// Format is the payload layout detected from the leading magic.
type Format uint8

const (
	// FormatRaw is an RLE stream holding only the solo calibration
	FormatRaw Format = iota

	// FormatLZOR is an LZO-compressed ERD block behind the LZOR magic
	FormatLZOR

	// FormatERD is a list of LZO-compressed tags behind the ERD magic
	FormatERD
)

func (f Format) String() string {
	switch f {
	case FormatLZOR:
		return "lzor"
	case FormatERD:
		return "erd"
	default:
		return "raw"
	}
}

// Detect returns the payload layout.
func Detect(payload []byte) Format {
	magic, ok := cfgtag.Word(payload, 0)
	if !ok {
		return FormatRaw
	}
	switch magic {
	case cfgtag.MagicLZOR:
		return FormatLZOR
	case cfgtag.MagicERD:
		return FormatERD
	default:
		return FormatRaw
	}
}

// Unpack decodes the calibration blob with the given ID from a WLAN data tag
// payload into a fresh buffer of at most capacity bytes.
//
// A missing ID is reported as *cfgtag.NotFoundError, also for raw payloads
// asked for anything but IDSolo. A payload larger than capacity fails with
// *CapacityError before decoding; embedded tags are bounded by the payload
// (or the LZOR scratch buffer) and therefore by capacity too. Codec failures come
// back as *DecodeError.
func Unpack(id uint16, payload []byte, capacity int, opts ...Option) ([]byte, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(payload) > capacity {
		return nil, &CapacityError{Length: len(payload), Capacity: capacity}
	}

	switch Detect(payload) {
	case FormatLZOR:
		return unpackLZOR(id, payload[cfgtag.NodeSize:], capacity, &cfg)
	case FormatERD:
		return unpackERD(id, payload[cfgtag.NodeSize:], capacity, &cfg)
	default:
		if id != IDSolo {
			return nil, &cfgtag.NotFoundError{ID: id}
		}
		return decodeRLE(id, payload, capacity)
	}
}

// unpackERD locates the tag for id and LZO-decompresses it.
func unpackERD(id uint16, data []byte, capacity int, cfg *Config) ([]byte, error) {
	tag, err := cfgtag.Find(data, id)
	if err != nil {
		cfg.Logger.Debug("no ERD data", "id", id)
		return nil, err
	}
	out := make([]byte, capacity)
	n, err := lzo.Decompress(data[tag.Offset:tag.End()], out)
	if err != nil {
		if !errors.Is(err, lzo.ErrInputNotConsumed) {
			return nil, &DecodeError{Stage: StageERD, ID: id, Err: err}
		}
		cfg.Logger.Debug("ERD: LZO end before input end", "id", id, "decoded", n)
	}

	return out[:n], nil
}

// unpackLZOR decompresses the blob, finds the aligned ERD magic and
// RLE-decodes the tag for id that follows it.
func unpackLZOR(id uint16, data []byte, capacity int, cfg *Config) ([]byte, error) {
	src := data
	if len(cfg.LZORPrefix) > 0 {
		src = make([]byte, 0, len(cfg.LZORPrefix)+len(data))
		src = append(src, cfg.LZORPrefix...)
		src = append(src, data...)
	}

	temp := make([]byte, capacity)
	n, err := lzo.Decompress(src, temp)
	if err != nil {
		if !errors.Is(err, lzo.ErrInputNotConsumed) {
			return nil, &DecodeError{Stage: StageLZOR, ID: id, Err: err}
		}
		cfg.Logger.Debug("LZOR: LZO end before input end", "id", id, "decoded", n)
	}
	temp = temp[:n]

	// The marker has only been seen on 4-byte boundaries.
	start := -1
	for off := 0; off+cfgtag.NodeSize <= len(temp); off += cfgtag.NodeSize {
		if w, _ := cfgtag.Word(temp, off); w == cfgtag.MagicERD {
			start = off + cfgtag.NodeSize
			break
		}
	}
	if start < 0 {
		cfg.Logger.Debug("LZOR: ERD magic not found", "id", id, "decoded", n)
		return nil, &DecodeError{Stage: StageLZOR, ID: id, Err: ErrNoMarker}
	}

	embedded := temp[start:]
	tag, err := cfgtag.Find(embedded, id)
	if err != nil {
		cfg.Logger.Debug("LZOR: no RLE data", "id", id)
		return nil, err
	}
	return decodeRLE(id, embedded[tag.Offset:tag.End()], capacity)
}

func decodeRLE(id uint16, src []byte, capacity int) ([]byte, error) {
	out := make([]byte, capacity)
	n, err := rle.Decode(out, src)
	if err != nil {
		return nil, &DecodeError{Stage: StageRLE, ID: id, Err: err}
	}
	return out[:n], nil
}
