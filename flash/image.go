package flash

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is the container format of an image file.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// Frame magics, in file byte order.
var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// Sniff detects the compression of an image from its first bytes.
func Sniff(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(head, lz4Magic):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Image is a flash dump loaded from a file. It implements Device and is safe
// for concurrent readers.
type Image struct {
	// Path is the file the image was loaded from
	Path string

	// Compression is the detected file format
	Compression Compression

	data mmap.MMap
	raw  []byte
	file *os.File
}

// Open loads the image at path. Uncompressed files are mapped read-only;
// zstd and LZ4-frame files are decompressed into memory up to MaxSize bytes.
func Open(path string, opts ...Option) (*Image, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Err: err}
	}

	head := make([]byte, len(zstdMagic))
	n, err := file.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, &IOError{Op: "read", Want: len(head), Got: n, Err: err}
	}

	img := &Image{Path: path, Compression: Sniff(head[:n])}
	cfg.Logger.Debug("opening image", "path", path, "compression", img.Compression.String())

	if img.Compression != CompressionNone {
		defer file.Close()
		img.raw, err = decompress(file, img.Compression, cfg.MaxSize)
		if err != nil {
			return nil, err
		}
		return img, nil
	}

	st, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, &IOError{Op: "stat", Err: err}
	}
	if st.Size() > cfg.MaxSize {
		file.Close()
		return nil, &IOError{Op: "open", Err: fmt.Errorf("%w: %d > %d", ErrTooLarge, st.Size(), cfg.MaxSize)}
	}
	if st.Size() == 0 {
		// zero-length files cannot be mapped
		file.Close()
		return img, nil
	}

	img.data, err = mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		return nil, &IOError{Op: "mmap", Err: err}
	}
	img.file = file

	return img, nil
}

func decompress(r io.Reader, c Compression, limit int64) ([]byte, error) {
	var src io.Reader
	switch c {
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, &IOError{Op: "decompress", Err: err}
		}
		defer dec.Close()
		src = dec
	case CompressionLZ4:
		src = lz4.NewReader(r)
	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}

	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return nil, &IOError{Op: "decompress", Err: fmt.Errorf("%s: %w", c, err)}
	}
	if int64(len(data)) > limit {
		return nil, &IOError{Op: "decompress", Err: fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)}
	}
	return data, nil
}

func (img *Image) bytes() []byte {
	if img.data != nil {
		return img.data
	}
	return img.raw
}

// Size returns the (decompressed) image size.
func (img *Image) Size() int64 {
	return int64(len(img.bytes()))
}

// ReadAt implements io.ReaderAt.
func (img *Image) ReadAt(p []byte, off int64) (int, error) {
	b := img.bytes()
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the image and closes its file.
func (img *Image) Close() error {
	var err error
	if img.data != nil {
		err = img.data.Unmap()
		img.data = nil
	}
	if img.file != nil {
		if cerr := img.file.Close(); err == nil {
			err = cerr
		}
		img.file = nil
	}
	img.raw = nil
	return err
}
