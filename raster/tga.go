package raster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

const tgaHeaderSize = 18

const (
	tgaTrueColor    = 2
	tgaGray         = 3
	tgaRLETrueColor = 10
	tgaRLEGray      = 11

	tgaTopToBottom = 0x20
	tgaRightToLeft = 0x10
)

var errTGATruncated = errors.New("raster: tga: truncated pixel data")

type tgaHeader struct {
	IDLen     uint8
	CMapType  uint8
	ImageType uint8
	CMapStart uint16
	CMapLen   uint16
	CMapDepth uint8
	XOrigin   uint16
	YOrigin   uint16
	Width     uint16
	Height    uint16
	Depth     uint8
	Desc      uint8
}

func (h tgaHeader) appendTo(b []byte) []byte {
	b = append(b, h.IDLen, h.CMapType, h.ImageType)
	b = binary.LittleEndian.AppendUint16(b, h.CMapStart)
	b = binary.LittleEndian.AppendUint16(b, h.CMapLen)
	b = append(b, h.CMapDepth)
	b = binary.LittleEndian.AppendUint16(b, h.XOrigin)
	b = binary.LittleEndian.AppendUint16(b, h.YOrigin)
	b = binary.LittleEndian.AppendUint16(b, h.Width)
	b = binary.LittleEndian.AppendUint16(b, h.Height)
	return append(b, h.Depth, h.Desc)
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	var h tgaHeader
	if len(data) < tgaHeaderSize {
		return h, io.ErrUnexpectedEOF
	}
	err := binary.Read(bytes.NewReader(data[:tgaHeaderSize]), binary.LittleEndian, &h)
	return h, err
}

// looksLikeTGA accepts only the color-mapless true-color and grayscale
// variants decodeTGA understands.
func looksLikeTGA(data []byte) bool {
	h, err := parseTGAHeader(data)
	if err != nil || h.CMapType != 0 || h.Width == 0 || h.Height == 0 || h.Desc&0xC0 != 0 {
		return false
	}
	switch h.ImageType {
	case tgaTrueColor, tgaRLETrueColor:
		return h.Depth == 24 || h.Depth == 32
	case tgaGray, tgaRLEGray:
		return h.Depth == 8
	}
	return false
}

func decodeTGA(data []byte) (image.Image, error) {
	if !looksLikeTGA(data) {
		return nil, errors.New("raster: tga: unsupported image type")
	}
	h, _ := parseTGAHeader(data)
	w, ht := int(h.Width), int(h.Height)
	bpp := int(h.Depth) / 8
	src := data[tgaHeaderSize:]
	if len(src) < int(h.IDLen) {
		return nil, errTGATruncated
	}
	src = src[h.IDLen:]

	n := w * ht
	var raw []byte
	switch h.ImageType {
	case tgaTrueColor, tgaGray:
		if len(src) < n*bpp {
			return nil, errTGATruncated
		}
		raw = src[:n*bpp]
	default:
		var err error
		if raw, err = unpackTGARLE(src, n, bpp); err != nil {
			return nil, err
		}
	}

	hasAlpha := bpp == 4 && h.Desc&0x0F != 0
	img := image.NewNRGBA(image.Rect(0, 0, w, ht))
	for i := 0; i < n; i++ {
		x, y := i%w, i/w
		if h.Desc&tgaTopToBottom == 0 {
			y = ht - 1 - y
		}
		if h.Desc&tgaRightToLeft != 0 {
			x = w - 1 - x
		}
		p := raw[i*bpp : i*bpp+bpp]
		var c color.NRGBA
		switch bpp {
		case 1:
			c = color.NRGBA{R: p[0], G: p[0], B: p[0], A: 0xff}
		case 3:
			c = color.NRGBA{R: p[2], G: p[1], B: p[0], A: 0xff}
		case 4:
			c = color.NRGBA{R: p[2], G: p[1], B: p[0], A: 0xff}
			if hasAlpha {
				c.A = p[3]
			}
		}
		img.SetNRGBA(x, y, c)
	}
	return img, nil
}

func unpackTGARLE(src []byte, n, bpp int) ([]byte, error) {
	out := make([]byte, 0, min(n*bpp, 1<<20))
	for len(out) < n*bpp {
		if len(src) == 0 {
			return nil, errTGATruncated
		}
		head := src[0]
		src = src[1:]
		count := int(head&0x7F) + 1
		if len(out)+count*bpp > n*bpp {
			return nil, fmt.Errorf("raster: tga: run overflows image (%d pixels)", n)
		}
		if head&0x80 != 0 {
			if len(src) < bpp {
				return nil, errTGATruncated
			}
			for j := 0; j < count; j++ {
				out = append(out, src[:bpp]...)
			}
			src = src[bpp:]
			continue
		}
		if len(src) < count*bpp {
			return nil, errTGATruncated
		}
		out = append(out, src[:count*bpp]...)
		src = src[count*bpp:]
	}
	return out, nil
}

// encodeTGA writes an uncompressed top-to-bottom TGA, 24-bit for opaque
// images and 32-bit otherwise.
func encodeTGA(w io.Writer, img image.Image) error {
	b := img.Bounds()
	if b.Dx() > 0xFFFF || b.Dy() > 0xFFFF {
		return fmt.Errorf("%w: tga: %dx%d exceeds 65535x65535", ErrDimensions, b.Dx(), b.Dy())
	}
	h := tgaHeader{
		ImageType: tgaTrueColor,
		Width:     uint16(b.Dx()),
		Height:    uint16(b.Dy()),
		Depth:     32,
		Desc:      tgaTopToBottom | 8,
	}
	opaque := isOpaque(img)
	if opaque {
		h.Depth = 24
		h.Desc = tgaTopToBottom
	}
	out := h.appendTo(make([]byte, 0, tgaHeaderSize+b.Dx()*b.Dy()*int(h.Depth/8)))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out = append(out, c.B, c.G, c.R)
			if !opaque {
				out = append(out, c.A)
			}
		}
	}
	_, err := w.Write(out)
	return err
}
