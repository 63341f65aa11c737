package cfgtag

import "fmt"

// StopReason tells why a scan ended. None of them is an error.
type StopReason uint8

const (
	// StopEndOfBuffer means fewer than NodeSize bytes were left
	StopEndOfBuffer StopReason = iota

	// StopInvalidID means the node ID exceeded MaxID
	StopInvalidID

	// StopInvalidLength means the node length was out of range or unaligned
	StopInvalidLength

	// StopOverflow means the payload would run past the buffer end
	StopOverflow
)

// String returns a short description of the stop reason.
func (r StopReason) String() string {
	switch r {
	case StopEndOfBuffer:
		return "end of buffer"
	case StopInvalidID:
		return "invalid tag id"
	case StopInvalidLength:
		return "invalid tag length"
	case StopOverflow:
		return "tag overflows buffer"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(r))
	}
}

// Termination records where and why a scan stopped.
type Termination struct {
	// Offset is the offset of the node that ended the scan
	Offset int

	// Reason is why that node ended the scan
	Reason StopReason

	// Node is the raw node word, zero for StopEndOfBuffer
	Node uint32
}

// Container is a scanned tag buffer. The buffer is shared, never copied, and
// must not be modified while the container is in use.
type Container struct {
	// Variant is the start magic flavour
	Variant Variant

	// Tags are the valid tags in ascending offset order, duplicates included
	Tags []Tag

	// End describes the node that terminated the scan
	End Termination

	buf []byte
}

// Size returns the scanned buffer size.
func (c *Container) Size() int {
	return len(c.buf)
}

// Payload returns a read-only view of the tag payload. The returned slice
// aliases the scanned buffer.
func (c *Container) Payload(t Tag) []byte {
	return c.buf[t.Offset:t.End():t.End()]
}

// Lookup returns the first tag carrying id.
func (c *Container) Lookup(id uint16) (Tag, bool) {
	for _, t := range c.Tags {
		if t.ID == id {
			return t, true
		}
	}
	return Tag{}, false
}

// Scan walks buf from its start magic and returns every valid tag.
//
// Scan fails only when buf does not start with MagicHard or MagicSoft; the
// first invalid node simply ends the list. Offsets in the returned tags are
// relative to buf and already account for the magic header.
//
// Example:
//
//	c, err := cfgtag.Scan(image)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d %s tags, stopped at 0x%X (%s)\n",
//	    len(c.Tags), c.Variant, c.End.Offset, c.End.Reason)
func Scan(buf []byte, opts ...Option) (*Container, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.Logger

	magic, ok := Word(buf, 0)
	if !ok {
		return nil, &FormatError{Size: len(buf)}
	}

	var variant Variant
	switch magic {
	case MagicHard:
		variant = VariantHard
	case MagicSoft:
		variant = VariantSoft
	default:
		log.Error("buffer does not start with known magic", "magic", fmt.Sprintf("0x%08X", magic))
		return nil, &FormatError{Magic: magic, Size: len(buf)}
	}

	c := &Container{
		Variant: variant,
		Tags:    make([]Tag, 0, min(cfg.MaxTags, len(buf)/(NodeSize+MinLength))),
		buf:     buf,
	}

	seen := make(map[uint16]struct{}, min(cfg.MaxTags, MaxID+1))
	warnedCount := false
	offset := variant.HeaderLen()

	for {
		node, ok := Word(buf, offset)
		if !ok {
			c.End = Termination{Offset: offset, Reason: StopEndOfBuffer}
			break
		}

		id, length := splitNode(node)
		log.Debug("tag node", "offset", fmt.Sprintf("0x%X", offset),
			"id", fmt.Sprintf("0x%X", id), "len", fmt.Sprintf("0x%X", length))

		if reason, valid := validate(id, length); !valid {
			log.Debug("invalid tag found", "offset", fmt.Sprintf("0x%X", offset), "reason", reason)
			c.End = Termination{Offset: offset, Reason: reason, Node: node}
			break
		}

		payload := offset + NodeSize
		if payload+int(length) > len(buf) {
			log.Warn("tag overflows buffer", "offset", fmt.Sprintf("0x%X", offset),
				"id", id, "len", length, "size", len(buf))
			c.End = Termination{Offset: offset, Reason: StopOverflow, Node: node}
			break
		}

		if len(c.Tags) >= cfg.MaxTags && !warnedCount {
			log.Warn("more tags found than expected", "max", cfg.MaxTags)
			warnedCount = true
		}

		if _, dup := seen[id]; dup {
			log.Warn("repeated tag ID", "offset", fmt.Sprintf("0x%X", offset), "id", id)
		} else {
			seen[id] = struct{}{}
		}

		c.Tags = append(c.Tags, Tag{ID: id, Length: length, Offset: payload})
		offset = payload + int(length)
	}

	return c, nil
}

// validate checks a node against the scan invariants.
func validate(id, length uint16) (StopReason, bool) {
	if id > MaxID {
		return StopInvalidID, false
	}
	if length < MinLength || length > MaxLength || length%MinLength != 0 {
		return StopInvalidLength, false
	}
	return 0, true
}
