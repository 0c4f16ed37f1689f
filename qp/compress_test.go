package qp

import (
	"bytes"
	"errors"
	"image"
	"io"
	"testing"

	"github.com/andybalholm/brotli"
)

// brotliStream builds a QP file by hand: the raw header bytes followed by a
// quality 11, 24-bit window brotli stream of pix.
func brotliStream(t *testing.T, head []byte, pix []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(head)
	w := brotli.NewWriterOptions(&buf, brotli.WriterOptions{Quality: 11, LGWin: 24})
	if _, err := w.Write(pix); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecode_HandBuiltBrotliStream(t *testing.T) {
	head := []byte{0x51, 0x50, 0x49, 0x4D, 0, 0, 0, 2, 0, 0, 0, 1, 4, 1}
	img, err := Decode(bytes.NewReader(brotliStream(t, head, redPixels)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	n, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("decoded type %T, want *image.NRGBA", img)
	}
	if n.Bounds() != image.Rect(0, 0, 2, 1) || !bytes.Equal(n.Pix, redPixels) {
		t.Fatalf("got %v % X", n.Bounds(), n.Pix)
	}
}

func TestEncode_PayloadIsPlainBrotli(t *testing.T) {
	stream := encodeStream(t, Header{Width: 2, Height: 1, Channels: 4, Compression: CompressionBrotli}, redPixels)
	pix, err := io.ReadAll(brotli.NewReader(bytes.NewReader(stream[HeaderSize:])))
	if err != nil {
		t.Fatalf("brotli: %v", err)
	}
	if !bytes.Equal(pix, redPixels) {
		t.Fatalf("payload % X", pix)
	}
}

func TestDecode_BrotliPayloadTooLong(t *testing.T) {
	head := []byte{0x51, 0x50, 0x49, 0x4D, 0, 0, 0, 1, 0, 0, 0, 1, 4, 1}
	stream := brotliStream(t, head, bytes.Repeat(redPixels, 1024))
	if _, err := Decode(bytes.NewReader(stream)); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
}

func TestCompressionMethod_String(t *testing.T) {
	if got := CompressionBrotli.String(); got != "brotli" {
		t.Fatalf("got %q", got)
	}
	if got := CompressionMethod(9).String(); got != "unknown(9)" {
		t.Fatalf("got %q", got)
	}
}
