package qp

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	// Magic identifies a QP stream.
	Magic = "QPIM"
	// HeaderSize is the fixed length of the header preceding the payload.
	HeaderSize = 14

	// storedChannels is the sample count per pixel of the compressed payload.
	storedChannels = 4
)

// Header holds the fixed fields at the start of every QP stream.
// Channels only selects the reconstructed pixel layout; the payload is
// always RGBA8.
type Header struct {
	Width       uint32
	Height      uint32
	Channels    uint8
	Compression CompressionMethod
}

// MarshalBinary returns the 14 header bytes. It never fails.
func (h Header) MarshalBinary() ([]byte, error) {
	return h.appendTo(make([]byte, 0, HeaderSize)), nil
}

func (h Header) appendTo(b []byte) []byte {
	b = append(b, Magic...)
	b = binary.BigEndian.AppendUint32(b, h.Width)
	b = binary.BigEndian.AppendUint32(b, h.Height)
	return append(b, h.Channels, byte(h.Compression))
}

// ParseHeader decodes a header from b. Only the magic is checked here;
// compression and channel values are validated by the decoder.
func ParseHeader(b []byte) (Header, error) {
	var h Header
	if len(b) < HeaderSize {
		return h, fmt.Errorf("qp: header: %w", io.ErrUnexpectedEOF)
	}
	if string(b[:4]) != Magic {
		return h, ErrInvalidMagic
	}
	h.Width = binary.BigEndian.Uint32(b[4:8])
	h.Height = binary.BigEndian.Uint32(b[8:12])
	h.Channels = b[12]
	h.Compression = CompressionMethod(b[13])
	return h, nil
}

// ReadHeader reads exactly HeaderSize bytes from r and parses them.
func ReadHeader(r io.Reader) (Header, error) {
	var b [HeaderSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Header{}, fmt.Errorf("qp: read header: %w", err)
	}
	return ParseHeader(b[:])
}

// PixelLen is the decompressed payload length the header promises.
func (h Header) PixelLen() (int, error) {
	n := uint64(h.Width) * uint64(h.Height)
	if n > math.MaxInt/storedChannels {
		return 0, fmt.Errorf("%w: %dx%d overflows the pixel buffer", ErrSizeMismatch, h.Width, h.Height)
	}
	return int(n) * storedChannels, nil
}

func (h Header) validateChannels() error {
	switch h.Channels {
	case 3, 4:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedChannels, h.Channels)
	}
}
