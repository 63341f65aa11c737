package flash

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Device is a readable flash region of fixed size.
type Device interface {
	io.ReaderAt

	// Size returns the region size in bytes
	Size() int64
}

// ReadAll reads the whole region into a new buffer.
//
// The region is read in ChunkSize pieces; cancellation is checked between
// pieces. A read returning fewer bytes than requested fails with *IOError,
// also when it reports io.EOF.
func ReadAll(ctx context.Context, dev Device, opts ...Option) ([]byte, error) {
	if dev == nil {
		return nil, fmt.Errorf("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	total := dev.Size()
	if total < 0 {
		return nil, &IOError{Op: "size", Err: fmt.Errorf("negative region size %d", total)}
	}
	if total > cfg.MaxSize {
		return nil, &IOError{Op: "size", Err: fmt.Errorf("%w: %d > %d", ErrTooLarge, total, cfg.MaxSize)}
	}

	startTime := time.Now()
	buf := make([]byte, total)

	var off int64
	for off < total {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cancelled: %w", err)
		}

		want := int64(cfg.ChunkSize)
		if total-off < want {
			want = total - off
		}

		n, err := dev.ReadAt(buf[off:off+want], off)
		if int64(n) < want {
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			cfg.Logger.Error("short flash read", "offset", off, "want", want, "got", n, "error", err)
			return nil, &IOError{Op: "read", Offset: off, Want: int(want), Got: n, Err: err}
		}
		off += want

		if cfg.ProgressCallback != nil {
			cfg.ProgressCallback(Progress{
				Offset:      off,
				Total:       total,
				Percentage:  float64(off) / float64(total) * 100,
				ElapsedTime: time.Since(startTime),
			})
		}
	}

	cfg.Logger.Debug("flash region read", "bytes", total, "elapsed", time.Since(startTime).String())

	return buf, nil
}
