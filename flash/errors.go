package flash

import (
	"errors"
	"fmt"
)

var (
	// ErrIO is matched by every *IOError.
	ErrIO = errors.New("flash read failed")

	// ErrTooLarge means a region exceeds the configured maximum size.
	ErrTooLarge = errors.New("region exceeds maximum size")

	// ErrNoPartition means no MTD partition carries the requested name.
	ErrNoPartition = errors.New("mtd partition not found")
)

// IOError reports a failed or short read of a flash region.
type IOError struct {
	// Op is the failing operation ("read", "open", "decompress")
	Op string

	// Offset is where the failing read started
	Offset int64

	// Want is the number of bytes requested
	Want int

	// Got is the number of bytes received
	Got int

	// Err is the underlying error
	Err error
}

func (e *IOError) Error() string {
	if e.Want > 0 {
		return fmt.Sprintf("flash %s at 0x%X: got %d of %d bytes: %v",
			e.Op, e.Offset, e.Got, e.Want, e.Err)
	}
	return fmt.Sprintf("flash %s: %v", e.Op, e.Err)
}

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsIOError returns true if err is or wraps an IOError.
func IsIOError(err error) bool {
	return errors.Is(err, ErrIO)
}
