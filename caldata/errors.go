package caldata

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacity is matched by every *CapacityError.
	ErrCapacity = errors.New("calibration data exceeds output capacity")

	// ErrNoMarker means the decompressed LZOR blob holds no ERD magic.
	ErrNoMarker = errors.New("no embedded calibration marker")
)

// CapacityError indicates a declared length larger than the output capacity.
// It is returned before any decompression is attempted.
type CapacityError struct {
	// Length is the declared payload length
	Length int

	// Capacity is the caller's output capacity
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("calibration data length %d exceeds capacity %d", e.Length, e.Capacity)
}

// Is reports whether target is ErrCapacity.
func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacity
}

// Stage names the decode step a DecodeError comes from.
type Stage string

const (
	// StageLZOR is the LZO decompression of a whole LZOR blob
	StageLZOR Stage = "lzor"

	// StageERD is the LZO decompression of one ERD tag
	StageERD Stage = "erd"

	// StageRLE is the run-length decoding of a raw or LZOR tag
	StageRLE Stage = "rle"
)

// DecodeError wraps a codec failure with the step and calibration ID.
type DecodeError struct {
	// Stage is the failing decode step
	Stage Stage

	// ID is the requested calibration ID
	ID uint16

	// Err is the underlying codec error
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s decode of calibration id 0x%04X: %v", e.Stage, e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError returns true if err is or wraps a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
