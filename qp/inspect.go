package qp

import (
	"io"

	xxhash "github.com/cespare/xxhash/v2"
)

// Info describes a validated QP stream.
type Info struct {
	Width       uint32            `json:"width"`
	Height      uint32            `json:"height"`
	Channels    uint8             `json:"channels"`
	Compression CompressionMethod `json:"compression"`
	PayloadSize int               `json:"payload_size"`
	PixelSize   int               `json:"pixel_size"`
	// Digest is the xxhash64 of the decompressed RGBA8 samples. Two streams
	// with equal digests and dimensions carry the same pixels.
	Digest uint64 `json:"digest"`
}

// Ratio is the uncompressed to compressed size ratio.
func (i Info) Ratio() float64 {
	if i.PayloadSize == 0 {
		return 0
	}
	return float64(i.PixelSize) / float64(i.PayloadSize)
}

// Inspect reads and fully validates a QP stream, including the channel
// count, and summarizes it.
func Inspect(r io.Reader) (Info, error) {
	hdr, pix, n, err := readStream(r)
	if err != nil {
		return Info{}, err
	}
	if err := hdr.validateChannels(); err != nil {
		return Info{}, err
	}
	return Info{
		Width:       hdr.Width,
		Height:      hdr.Height,
		Channels:    hdr.Channels,
		Compression: hdr.Compression,
		PayloadSize: n,
		PixelSize:   len(pix),
		Digest:      xxhash.Sum64(pix),
	}, nil
}
