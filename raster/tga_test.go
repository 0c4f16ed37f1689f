package raster

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestEncodeTGA_HeaderBytes(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 0xFF})
	var buf bytes.Buffer
	if err := encodeTGA(&buf, img); err != nil {
		t.Fatalf("encodeTGA: %v", err)
	}
	want := []byte{
		0, 0, tgaTrueColor,
		0, 0, 0, 0, 0, // color map
		0, 0, 0, 0,    // origin
		3, 0, 2, 0,    // 3x2
		24, tgaTopToBottom,
		3, 2, 1, // first pixel, BGR
	}
	if got := buf.Bytes(); !bytes.HasPrefix(got, want) || len(got) != tgaHeaderSize+3*2*3 {
		t.Fatalf("got % X", got)
	}
}
