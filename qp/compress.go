package qp

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// CompressionMethod tags how the payload following the header is compressed.
type CompressionMethod uint8

const (
	// CompressionBrotli is the general-purpose compressor, the only method defined.
	CompressionBrotli CompressionMethod = 1
)

func (m CompressionMethod) String() string {
	switch m {
	case CompressionBrotli:
		return "brotli"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

const (
	brotliQuality = 11
	// brotliWindow is log2 of the sliding window (16 MiB).
	brotliWindow = 24
)

type codec interface {
	compress(src []byte) ([]byte, error)
	// decompress fails once the output would exceed limit bytes.
	decompress(src []byte, limit int) ([]byte, error)
}

func codecFor(m CompressionMethod) (codec, error) {
	switch m {
	case CompressionBrotli:
		return brotliCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCompression, uint8(m))
	}
}

type brotliCodec struct{}

func (brotliCodec) compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterOptions(&buf, brotli.WriterOptions{Quality: brotliQuality, LGWin: brotliWindow})
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (brotliCodec) decompress(src []byte, limit int) ([]byte, error) {
	// Header dimensions are untrusted; bound the up-front allocation and
	// stop reading one byte past the limit.
	out := bytes.NewBuffer(make([]byte, 0, min(limit, 64<<20)))
	r := io.LimitReader(brotli.NewReader(bytes.NewReader(src)), int64(limit)+1)
	if _, err := out.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}
	if out.Len() > limit {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrSizeMismatch, limit)
	}
	return out.Bytes(), nil
}
