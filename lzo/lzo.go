// Package lzo adapts github.com/woozymasta/lzo, an LZO1X codec compatible
// with lzo1x_decompress_safe(), to the calibration decoders.
//
// Decompress decodes into a caller-sized buffer whose capacity bounds the
// output. A stream that reaches its end marker before the input is exhausted
// is reported as ErrInputNotConsumed together with the full decoded length:
// containers that pad compressed data to 4-byte boundaries routinely
// produce that outcome.
package lzo

import (
	"errors"
	"fmt"

	lzo1x "github.com/woozymasta/lzo"
)

// MinInputSize is the smallest possible stream: the end marker alone.
const MinInputSize = 3

// Compression levels accepted by Compress.
const (
	// LevelFast selects LZO1X-1
	LevelFast = 1

	// LevelBest selects LZO1X-999 with the deepest match search
	LevelBest = 9
)

var (
	// ErrCorrupted wraps every decoder failure: overruns, bad matches and
	// truncated streams.
	ErrCorrupted = errors.New("lzo: corrupted input data")

	// ErrInputNotConsumed means the end marker was reached with input left
	// over. The decoded output is complete.
	ErrInputNotConsumed = errors.New("lzo: input not fully consumed")
)

// Decompress decompresses LZO1X data from src into dst and returns the
// number of bytes written.
//
// dst must be large enough for the decoded data; otherwise an error wrapping
// ErrCorrupted is returned. src and dst must not overlap.
func Decompress(src, dst []byte) (int, error) {
	if len(src) < MinInputSize {
		return 0, fmt.Errorf("%w: %d byte stream", ErrCorrupted, len(src))
	}

	out, nRead, err := lzo1x.DecompressNInto(src, dst)
	if err != nil {
		return len(out), fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	if nRead < len(src) {
		return len(out), ErrInputNotConsumed
	}
	return len(out), nil
}

// Compress encodes src as an LZO1X stream at the given level (LevelFast to
// LevelBest). It is used to build calibration fixtures.
func Compress(src []byte, level int) ([]byte, error) {
	out, err := lzo1x.Compress(src, &lzo1x.CompressOptions{Level: level})
	if err != nil {
		return nil, fmt.Errorf("lzo compress: %w", err)
	}
	return out, nil
}
