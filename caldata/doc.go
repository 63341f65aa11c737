// Package caldata recovers WLAN calibration data from the payload of the
// hard_config WLAN data tag (ID 0x16).
//
// Three payload layouts exist, told apart by the leading magic word:
//
//	LZOR: ["LZOR"][LZO stream]
//	      the stream decodes to a blob containing an aligned ERD magic,
//	      followed by tag nodes locating RLE-encoded calibration data
//
//	ERD:  ["ERD"][tag nodes]
//	      each tag payload is an LZO stream of calibration data
//
//	raw:  [RLE stream]
//	      legacy boards, only meaningful for the solo ID 0x0001
//
// Boards with one radio use the solo ID. Boards with several radios carry one
// blob per radio under IDs 0x8001 and 0x8201.
//
// # Usage
//
//	out, err := caldata.Unpack(caldata.IDSolo, payload, caldata.ArtSize)
//	if cfgtag.IsNotFound(err) {
//	    // try the multi-radio IDs
//	}
//
// Unpack allocates its scratch and output per call and keeps nothing between
// calls; callers needing the data again decode it again.
package caldata
