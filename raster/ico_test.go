package raster

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"testing"
)

func dibInfoHeader(w, h, bitCount, colors int) []byte {
	b := binary.LittleEndian.AppendUint32(nil, dibInfoHeaderSize)
	b = binary.LittleEndian.AppendUint32(b, uint32(w))
	b = binary.LittleEndian.AppendUint32(b, uint32(2*h))
	b = binary.LittleEndian.AppendUint16(b, 1)
	b = binary.LittleEndian.AppendUint16(b, uint16(bitCount))
	b = binary.LittleEndian.AppendUint32(b, dibRGB)
	b = append(b, make([]byte, 12)...) // image size, resolution
	b = binary.LittleEndian.AppendUint32(b, uint32(colors))
	return binary.LittleEndian.AppendUint32(b, 0)
}

func wrapICO(w, h int, payload []byte) []byte {
	b := []byte(icoMagic)
	b = binary.LittleEndian.AppendUint16(b, 1)
	b = append(b, uint8(w), uint8(h), 0, 0)
	b = binary.LittleEndian.AppendUint16(b, 1)
	b = binary.LittleEndian.AppendUint16(b, 0)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(payload)))
	b = binary.LittleEndian.AppendUint32(b, icoDirSize+icoEntrySize)
	return append(b, payload...)
}

func decodeNRGBA(t *testing.T, data []byte) *image.NRGBA {
	t.Helper()
	img, format, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if format != "ico" {
		t.Fatalf("format %q", format)
	}
	n, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("decoded type %T", img)
	}
	return n
}

func TestDecodeICO_Bitmap24WithMask(t *testing.T) {
	payload := dibInfoHeader(2, 2, 24, 0)
	// Bottom row first: blue, green. Then the top row: red, white.
	payload = append(payload, 0xFF, 0, 0, 0, 0xFF, 0, 0, 0)
	payload = append(payload, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF, 0, 0)
	// AND mask, bottom row first: bottom-right pixel transparent.
	payload = append(payload, 0x40, 0, 0, 0, 0, 0, 0, 0)

	img := decodeNRGBA(t, wrapICO(2, 2, payload))
	want := map[image.Point]color.NRGBA{
		{0, 0}: {R: 0xFF, A: 0xFF},
		{1, 0}: {R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		{0, 1}: {B: 0xFF, A: 0xFF},
		{1, 1}: {G: 0xFF, A: 0},
	}
	for p, c := range want {
		if got := img.NRGBAAt(p.X, p.Y); got != c {
			t.Fatalf("pixel %v: got %v want %v", p, got, c)
		}
	}
}

func TestDecodeICO_Bitmap4Palette(t *testing.T) {
	payload := dibInfoHeader(3, 1, 4, 2)
	payload = append(payload, 0, 0, 0, 0, 0, 0, 0xFF, 0) // black, red (BGRx)
	payload = append(payload, 0x01, 0x00, 0, 0)          // indices 0, 1, 0
	payload = append(payload, 0, 0, 0, 0)                // mask

	img := decodeNRGBA(t, wrapICO(3, 1, payload))
	for x, c := range []color.NRGBA{{A: 0xFF}, {R: 0xFF, A: 0xFF}, {A: 0xFF}} {
		if got := img.NRGBAAt(x, 0); got != c {
			t.Fatalf("pixel %d: got %v want %v", x, got, c)
		}
	}
}

func TestDecodeICO_Bitmap32KeepsAlpha(t *testing.T) {
	payload := dibInfoHeader(1, 1, 32, 0)
	payload = append(payload, 10, 20, 30, 0x80)
	payload = append(payload, 0x80, 0, 0, 0) // mask ignored when alpha is present

	img := decodeNRGBA(t, wrapICO(1, 1, payload))
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{R: 30, G: 20, B: 10, A: 0x80}) {
		t.Fatalf("got %v", got)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(wrapICO(1, 1, payload)))
	if err != nil || format != "ico" || cfg.Width != 1 || cfg.Height != 1 {
		t.Fatalf("DecodeConfig: %v %q %+v", err, format, cfg)
	}
}

func TestDecodeICO_BitmapTruncated(t *testing.T) {
	payload := dibInfoHeader(4, 4, 24, 0)
	if _, _, err := Decode(bytes.NewReader(wrapICO(4, 4, payload))); err == nil {
		t.Fatalf("expected error for missing pixel rows")
	}
}
