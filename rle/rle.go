// Package rle implements MikroTik's run-length encoding variant used for
// WLAN calibration data.
//
// The stream is a sequence of signed control bytes:
//
//	n > 0:  [n][b]          -> b repeated n times
//	n < 0:  [n][b1 ... b-n] -> the next -n bytes copied verbatim
//	n == 0: invalid
//
// Example:
//
//	05 AB FD 01 02 03 -> AB AB AB AB AB 01 02 03
package rle

import (
	"errors"
	"fmt"
)

// Limits of a single control byte.
const (
	// MaxRun is the longest repeat a positive control byte encodes
	MaxRun = 127

	// MaxLiteral is the longest verbatim copy a negative control byte encodes
	MaxLiteral = 128
)

var (
	// ErrZeroRun means a zero control byte was found.
	ErrZeroRun = errors.New("rle: zero control byte")

	// ErrInputUnderrun means a control byte asked for more bytes than remain.
	ErrInputUnderrun = errors.New("rle: input underrun")

	// ErrOutputOverrun means the decoded data does not fit the output buffer.
	ErrOutputOverrun = errors.New("rle: output overrun")
)

// DecodeError carries the input offset of the offending control byte.
type DecodeError struct {
	// Offset is the control byte position in the input
	Offset int

	// Err is one of ErrZeroRun, ErrInputUnderrun or ErrOutputOverrun
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v at input offset %d", e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// LengthError reports a decoded length different from the expected one. The
// decoded output is still valid up to Got bytes.
type LengthError struct {
	Got  int
	Want int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("rle: decoded %d bytes, expected %d", e.Got, e.Want)
}

// Decode decodes src into dst and returns the number of bytes written.
// dst's length is the output capacity. src and dst must not overlap.
//
// On error the returned count covers the bytes decoded before the failing
// control byte.
func Decode(dst, src []byte) (int, error) {
	n := 0
	ip := 0

	for ip < len(src) {
		ctrl := ip
		run := int(int8(src[ip]))
		ip++

		switch {
		case run == 0:
			return n, &DecodeError{Offset: ctrl, Err: ErrZeroRun}

		case run < 0:
			count := -run
			if ip+count > len(src) {
				return n, &DecodeError{Offset: ctrl, Err: ErrInputUnderrun}
			}
			if n+count > len(dst) {
				return n, &DecodeError{Offset: ctrl, Err: ErrOutputOverrun}
			}
			n += copy(dst[n:], src[ip:ip+count])
			ip += count

		default:
			if ip >= len(src) {
				return n, &DecodeError{Offset: ctrl, Err: ErrInputUnderrun}
			}
			if n+run > len(dst) {
				return n, &DecodeError{Offset: ctrl, Err: ErrOutputOverrun}
			}
			b := src[ip]
			ip++
			for i := 0; i < run; i++ {
				dst[n] = b
				n++
			}
		}
	}

	return n, nil
}

// DecodeExact decodes like Decode and additionally returns a *LengthError
// when the output length differs from want. The caller decides whether the
// partial output is usable.
func DecodeExact(dst, src []byte, want int) (int, error) {
	n, err := Decode(dst, src)
	if err != nil {
		return n, err
	}
	if n != want {
		return n, &LengthError{Got: n, Want: want}
	}
	return n, nil
}

// Encode produces a stream Decode turns back into src. Runs of three or more
// equal bytes become repeats, everything else is grouped into verbatim copies.
func Encode(src []byte) []byte {
	out := make([]byte, 0, len(src)+len(src)/MaxLiteral+2)

	i := 0
	for i < len(src) {
		run := runLength(src, i)
		if run >= 3 {
			out = append(out, byte(run), src[i])
			i += run
			continue
		}

		// collect literals until the next worthwhile run
		start := i
		for i < len(src) && i-start < MaxLiteral && runLength(src, i) < 3 {
			i++
		}
		count := i - start
		out = append(out, byte(int8(-count)))
		out = append(out, src[start:i]...)
	}

	return out
}

// runLength counts equal bytes starting at i, capped at MaxRun.
func runLength(src []byte, i int) int {
	n := 1
	for i+n < len(src) && n < MaxRun && src[i+n] == src[i] {
		n++
	}
	return n
}
