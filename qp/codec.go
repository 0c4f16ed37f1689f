package qp

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
)

func init() {
	image.RegisterFormat("qp", Magic, Decode, DecodeConfig)
}

// Encode writes img to w as a QP stream. The pixels are normalized to RGBA8
// and always stored with 4 channels.
func Encode(w io.Writer, img image.Image) error {
	b := img.Bounds()
	if uint64(b.Dx()) > math.MaxUint32 || uint64(b.Dy()) > math.MaxUint32 {
		return fmt.Errorf("qp: image %dx%d too large", b.Dx(), b.Dy())
	}
	n := ToNRGBA(img)
	hdr := Header{
		Width:       uint32(b.Dx()),
		Height:      uint32(b.Dy()),
		Channels:    4,
		Compression: CompressionBrotli,
	}
	size, err := hdr.PixelLen()
	if err != nil {
		return err
	}
	return EncodeRGBA(w, hdr, n.Pix[:size])
}

// EncodeRGBA writes hdr followed by pix compressed with hdr.Compression.
// pix must hold exactly Width*Height*4 straight-alpha RGBA samples.
func EncodeRGBA(w io.Writer, hdr Header, pix []byte) error {
	size, err := hdr.PixelLen()
	if err != nil {
		return err
	}
	if len(pix) != size {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrSizeMismatch, len(pix), size)
	}
	c, err := codecFor(hdr.Compression)
	if err != nil {
		return err
	}
	payload, err := c.compress(pix)
	if err != nil {
		return fmt.Errorf("qp: compress: %w", err)
	}
	out := make([]byte, 0, HeaderSize+len(payload))
	out = append(hdr.appendTo(out), payload...)
	_, err = w.Write(out)
	return err
}

// Decode reads a QP stream and returns an *image.NRGBA for 4-channel streams
// or an *RGB for 3-channel streams.
func Decode(r io.Reader) (image.Image, error) {
	hdr, pix, _, err := readStream(r)
	if err != nil {
		return nil, err
	}
	return reconstruct(hdr, pix)
}

// DecodeConfig returns the dimensions and color model of a QP stream without
// reading the payload.
func DecodeConfig(r io.Reader) (image.Config, error) {
	hdr, err := ReadHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	if _, err := codecFor(hdr.Compression); err != nil {
		return image.Config{}, err
	}
	if err := hdr.validateChannels(); err != nil {
		return image.Config{}, err
	}
	if _, err := hdr.PixelLen(); err != nil {
		return image.Config{}, err
	}
	cfg := image.Config{ColorModel: color.NRGBAModel, Width: int(hdr.Width), Height: int(hdr.Height)}
	if hdr.Channels == 3 {
		cfg.ColorModel = color.RGBAModel
	}
	return cfg, nil
}

// readStream validates the header, decompresses the payload and checks it
// against the declared dimensions. It returns the raw RGBA8 samples and the
// compressed payload length.
func readStream(r io.Reader) (Header, []byte, int, error) {
	hdr, err := ReadHeader(r)
	if err != nil {
		return hdr, nil, 0, err
	}
	c, err := codecFor(hdr.Compression)
	if err != nil {
		return hdr, nil, 0, err
	}
	payload, err := io.ReadAll(r)
	if err != nil {
		return hdr, nil, 0, fmt.Errorf("qp: read payload: %w", err)
	}
	size, err := hdr.PixelLen()
	if err != nil {
		return hdr, nil, 0, err
	}
	pix, err := c.decompress(payload, size)
	if err != nil {
		return hdr, nil, 0, err
	}
	if len(pix) != size {
		return hdr, nil, 0, fmt.Errorf("%w: decompressed %d bytes, %dx%d needs %d",
			ErrSizeMismatch, len(pix), hdr.Width, hdr.Height, size)
	}
	return hdr, pix, len(payload), nil
}

func reconstruct(hdr Header, pix []byte) (image.Image, error) {
	if err := hdr.validateChannels(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, int(hdr.Width), int(hdr.Height))
	if hdr.Channels == 3 {
		return &RGB{Pix: DropAlpha(pix), Stride: 3 * rect.Dx(), Rect: rect}, nil
	}
	return &image.NRGBA{Pix: pix, Stride: 4 * rect.Dx(), Rect: rect}, nil
}
