package cfgtag

// Find returns the first tag with the given ID in buf.
//
// Unlike Scan, Find expects no start magic and applies only the bounds
// rules: a zero node word, a zero length, or a payload running past the
// buffer ends the search. IDs are not capped at MaxID and lengths need not be
// multiples of 4, since embedded calibration data uses IDs with bit 15 set
// and unaligned lengths. Skipped payloads are rounded up to 4 bytes.
//
// The returned offset is relative to buf. Find never reads outside buf.
func Find(buf []byte, id uint16) (Tag, error) {
	if id == 0 {
		return Tag{}, &NotFoundError{ID: id}
	}

	offset := 0
	for {
		node, ok := Word(buf, offset)
		if !ok || node == 0 {
			break
		}

		tagID, length := splitNode(node)
		payload := offset + NodeSize
		if length == 0 || payload+int(length) > len(buf) {
			break
		}

		if tagID == id {
			return Tag{ID: tagID, Length: length, Offset: payload}, nil
		}

		offset = payload + align4(int(length))
	}

	return Tag{}, &NotFoundError{ID: id}
}

func align4(n int) int {
	return (n + 3) &^ 3
}
