package lzo

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

// end is the LZO1X end-of-stream marker.
var end = []byte{0x11, 0x00, 0x00}

func stream(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// backref appends n bytes copied one at a time from dist bytes back.
func backref(out []byte, dist, n int) []byte {
	for i := 0; i < n; i++ {
		out = append(out, out[len(out)-dist])
	}
	return out
}

func TestDecompress(t *testing.T) {
	twenty := []byte("0123456789abcdefghij")

	tests := []struct {
		name    string
		src     []byte
		want    []byte
		wantErr error
	}{
		{
			name: "short literal run",
			src:  stream([]byte{17 + 5}, []byte("hello"), end),
			want: []byte("hello"),
		},
		{
			name: "long literal run",
			src:  stream([]byte{0x00, 0x02}, twenty, end),
			want: twenty,
		},
		{
			name: "m2 overlapping match",
			src:  stream([]byte{17 + 3, 'a', 'b', 'c', 0xE8, 0x00}, end),
			want: []byte("abcabcabcab"),
		},
		{
			name: "m3 overlapping match",
			src:  stream([]byte{17 + 3, 'a', 'b', 'c', 39, 0x08, 0x00}, end),
			want: []byte("abcabcabcabc"),
		},
		{
			name: "m3 with trailing literals",
			src:  stream([]byte{17 + 3, 'a', 'b', 'c', 39, 0x0A, 0x00, 'X', 'Y'}, end),
			want: []byte("abcabcabcabcXY"),
		},
		{
			name: "end marker only after literals",
			src:  stream([]byte{17 + 1, 'z'}, end),
			want: []byte("z"),
		},
		{
			name:    "padding after end marker",
			src:     stream([]byte{17 + 5}, []byte("hello"), end, []byte{0, 0, 0}),
			want:    []byte("hello"),
			wantErr: ErrInputNotConsumed,
		},
		{
			name:    "truncated literals",
			src:     []byte{17 + 5, 'h', 'e'},
			wantErr: ErrCorrupted,
		},
		{
			name:    "missing end marker",
			src:     []byte{17 + 5, 'h', 'e', 'l', 'l', 'o'},
			wantErr: ErrCorrupted,
		},
		{
			name:    "match before output start",
			src:     stream([]byte{17 + 3, 'a', 'b', 'c', 39, 0x10, 0x00}, end),
			wantErr: ErrCorrupted,
		},
		{
			name:    "too short",
			src:     []byte{0x11},
			wantErr: ErrCorrupted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, 64)
			n, err := Decompress(tt.src, dst)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decompress() error = %v, want %v", err, tt.wantErr)
				}
				if tt.want == nil {
					return
				}
			} else if err != nil {
				t.Fatalf("Decompress() unexpected error: %v", err)
			}
			if !bytes.Equal(dst[:n], tt.want) {
				t.Errorf("Decompress() = %q, want %q", dst[:n], tt.want)
			}
		})
	}
}

// TestDecompress_LongPaths covers an extended-length M3, the 3-byte M1 that
// may follow a literal run, and an M4 reaching past 16 KiB.
func TestDecompress_LongPaths(t *testing.T) {
	src := []byte{17 + 4, 'A', 'B', 'C', 'D'}

	// M3, length 16403 = 31 + 64*255 + 50 + 2, distance 4
	src = append(src, 0x20)
	src = append(src, make([]byte, 64)...)
	src = append(src, 50, 0x0C, 0x00)

	// 4 literals, then M1 at distance 0x801 + 1 = 2050
	src = append(src, 0x01, 'W', 'X', 'Y', 'Z', 0x04, 0x00)

	// M4, length 3, distance 0x4000 + 16 = 16400
	src = append(src, 0x11, 0x40, 0x00)
	src = append(src, end...)

	want := []byte("ABCD")
	want = backref(want, 4, 16403)
	want = append(want, "WXYZ"...)
	want = backref(want, 2050, 3)
	want = backref(want, 16400, 3)

	dst := make([]byte, 0x10000)
	n, err := Decompress(src, dst)
	if err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	if n != len(want) {
		t.Fatalf("Decompress() = %d bytes, want %d", n, len(want))
	}
	if !bytes.Equal(dst[:n], want) {
		t.Error("decoded data differs")
	}
}

func TestDecompress_OutputOverrun(t *testing.T) {
	tests := []struct {
		name string
		src  []byte
		size int
	}{
		{"literals", stream([]byte{17 + 5}, []byte("hello"), end), 3},
		{"match", stream([]byte{17 + 3, 'a', 'b', 'c', 39, 0x08, 0x00}, end), 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, tt.size)
			n, err := Decompress(tt.src, dst)
			if !errors.Is(err, ErrCorrupted) {
				t.Fatalf("Decompress() error = %v, want ErrCorrupted", err)
			}
			if n > tt.size {
				t.Errorf("reported %d bytes for a %d byte buffer", n, tt.size)
			}
		})
	}
}

func TestDecompress_ExactFit(t *testing.T) {
	dst := make([]byte, 5)
	n, err := Decompress(stream([]byte{17 + 5}, []byte("hello"), end), dst)
	if err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	if n != 5 || string(dst) != "hello" {
		t.Errorf("Decompress() = %d %q", n, dst)
	}
}

func TestCompress_RoundTrip(t *testing.T) {
	calibration := make([]byte, 0, 12000)
	for i := 0; len(calibration) < cap(calibration); i++ {
		calibration = append(calibration, fmt.Sprintf("chain%d:%04x;", i%3, i*7)...)
	}

	for _, level := range []int{LevelFast, LevelBest} {
		t.Run(fmt.Sprintf("level %d", level), func(t *testing.T) {
			packed, err := Compress(calibration, level)
			if err != nil {
				t.Fatalf("Compress() error = %v", err)
			}
			if len(packed) >= len(calibration) {
				t.Errorf("Compress() did not shrink: %d >= %d", len(packed), len(calibration))
			}

			dst := make([]byte, 0x10000)
			n, err := Decompress(packed, dst)
			if err != nil {
				t.Fatalf("Decompress() error = %v", err)
			}
			if !bytes.Equal(dst[:n], calibration) {
				t.Errorf("round trip mismatch: %d bytes, want %d", n, len(calibration))
			}

			// 4-byte padding as the ERD container adds it
			padded := append(packed, make([]byte, 4-len(packed)%4)...)
			n, err = Decompress(padded, dst)
			if !errors.Is(err, ErrInputNotConsumed) {
				t.Fatalf("padded stream: error = %v, want ErrInputNotConsumed", err)
			}
			if n != len(calibration) {
				t.Errorf("padded stream: %d bytes, want %d", n, len(calibration))
			}
		})
	}
}

func FuzzDecompress(f *testing.F) {
	f.Add(stream([]byte{17 + 3, 'a', 'b', 'c', 39, 0x0A, 0x00, 'X', 'Y'}, end))
	f.Add(stream([]byte{0x00, 0x02}, make([]byte, 20), end))
	f.Add([]byte{0x00, 0x00, 0x00, 0x00})

	f.Fuzz(func(t *testing.T, src []byte) {
		dst := make([]byte, 256)
		n, _ := Decompress(src, dst)
		if n < 0 || n > len(dst) {
			t.Fatalf("invalid output length %d", n)
		}
	})
}
