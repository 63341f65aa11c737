// Package cfgtag parses MikroTik RouterBoot configuration tag containers.
//
// # Tag Container Format
//
// A container is a flat sequence of self-describing records stored in flash.
// It starts with a 4-byte magic word identifying the variant, followed by tag
// nodes until the first invalid node:
//
//	Hard: [MAGIC(4)][NODE(4)][PAYLOAD(len)][NODE(4)][PAYLOAD(len)]...
//	Soft: [MAGIC(4)][CRC32(4)][NODE(4)][PAYLOAD(len)]...
//
// Every word is stored CPU-endian. A node word splits into:
//
//	bits  0-15 = tag ID
//	bits 16-31 = payload length in bytes
//
// Example (little-endian host):
//
//	48 61 72 64          = "Hard" magic
//	0B 00 08 00          = tag 0x0B, 8 bytes
//	31 32 33 34 35 36 00 00 = "123456" (serial number)
//
// The format has no explicit terminator. Scanning stops at the first node that
// violates the tag invariants (ID above 0x30, length outside [4, 0x1000] or
// not a multiple of 4, payload overflowing the buffer). That is the normal end
// of the list and is reported through [Container.End], not as an error.
//
// # Usage
//
// Scan a whole container to carve it into tags:
//
//	c, err := cfgtag.Scan(image, cfgtag.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err) // *cfgtag.FormatError: bad start magic
//	}
//	for _, tag := range c.Tags {
//	    fmt.Printf("%s at 0x%X, %d bytes\n", tag.Name(c.Variant), tag.Offset, tag.Length)
//	}
//
// Look up a single tag inside an arbitrary sub-buffer (no magic check, no ID
// ceiling, lengths need not be aligned):
//
//	tag, err := cfgtag.Find(image[4:], cfgtag.IDSerialNumber)
//	if cfgtag.IsNotFound(err) {
//	    // field absent
//	}
//
// # Error Handling
//
// The package reports:
//   - FormatError: the buffer does not start with a known magic (fatal)
//   - NotFoundError: [Find] reached an invalid node or the buffer end
//
// Duplicate tag IDs and more tags than the configured maximum are tolerated
// and only logged, since real flash images are known to contain both.
package cfgtag
