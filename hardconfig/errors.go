package hardconfig

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField means the name is not a published field.
	ErrUnknownField = errors.New("unknown field")

	// ErrPayload is matched by every *PayloadError.
	ErrPayload = errors.New("invalid field payload")

	// ErrInvalidMAC means an address is zero or multicast.
	ErrInvalidMAC = errors.New("invalid MAC address")

	// ErrMACRange means an increment exceeds the board's MAC count.
	ErrMACRange = errors.New("MAC increment exceeds allocated count")
)

// PayloadError indicates a field payload its formatter cannot handle.
type PayloadError struct {
	// Field is the field name
	Field string

	// Length is the payload length
	Length int

	// Reason describes the expected layout
	Reason string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("field %s: %d byte payload: %s", e.Field, e.Length, e.Reason)
}

// Is reports whether target is ErrPayload.
func (e *PayloadError) Is(target error) bool {
	return target == ErrPayload
}
