package cfgtag

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is matched by every *FormatError.
	ErrFormat = errors.New("unrecognized tag container")

	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("tag not found")
)

// FormatError indicates that a buffer does not start with a known magic.
// It invalidates the whole buffer: no tags are returned alongside it.
type FormatError struct {
	// Magic is the word found at offset 0
	Magic uint32

	// Size is the buffer size
	Size int
}

func (e *FormatError) Error() string {
	if e.Size < NodeSize {
		return fmt.Sprintf("buffer too short for start magic: %d bytes", e.Size)
	}
	return fmt.Sprintf("unrecognized start magic 0x%08X (expected 0x%08X or 0x%08X)",
		e.Magic, MagicHard, MagicSoft)
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// NotFoundError indicates that a requested tag ID is absent.
type NotFoundError struct {
	// ID is the requested tag ID
	ID uint16
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no data for tag id 0x%04X", e.ID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsNotFound returns true if err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsFormatError returns true if err is or wraps a FormatError.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrFormat)
}
