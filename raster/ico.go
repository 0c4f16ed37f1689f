package raster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

const (
	icoMagic     = "\x00\x00\x01\x00"
	icoDirSize   = 6
	icoEntrySize = 16
	icoMaxSide   = 256
)

func init() {
	image.RegisterFormat("ico", icoMagic, decodeICO, decodeICOConfig)
}

type icoEntry struct {
	Width    uint8 // 0 means 256
	Height   uint8
	Colors   uint8
	Reserved uint8
	Planes   uint16
	BitCount uint16
	Size     uint32
	Offset   uint32
}

func (e icoEntry) area() int {
	w, h := int(e.Width), int(e.Height)
	if w == 0 {
		w = icoMaxSide
	}
	if h == 0 {
		h = icoMaxSide
	}
	return w * h
}

// encodeICO writes a single-entry icon holding img as PNG.
func encodeICO(w io.Writer, img image.Image) error {
	b := img.Bounds()
	if b.Dx() > icoMaxSide || b.Dy() > icoMaxSide || b.Dx() == 0 || b.Dy() == 0 {
		return fmt.Errorf("%w: ico: %dx%d outside 1x1..256x256", ErrDimensions, b.Dx(), b.Dy())
	}
	var pngData bytes.Buffer
	if err := png.Encode(&pngData, img); err != nil {
		return err
	}
	out := make([]byte, 0, icoDirSize+icoEntrySize+pngData.Len())
	out = append(out, icoMagic...)
	out = binary.LittleEndian.AppendUint16(out, 1)
	// Sides of 256 are stored as 0.
	out = append(out, uint8(b.Dx()%icoMaxSide), uint8(b.Dy()%icoMaxSide), 0, 0)
	out = binary.LittleEndian.AppendUint16(out, 1)  // planes
	out = binary.LittleEndian.AppendUint16(out, 32) // bit count
	out = binary.LittleEndian.AppendUint32(out, uint32(pngData.Len()))
	out = binary.LittleEndian.AppendUint32(out, icoDirSize+icoEntrySize)
	out = append(out, pngData.Bytes()...)
	_, err := w.Write(out)
	return err
}

// largestICOEntry returns the payload of the biggest icon in the directory.
func largestICOEntry(data []byte) ([]byte, error) {
	if len(data) < icoDirSize || string(data[:4]) != icoMagic {
		return nil, errors.New("raster: ico: invalid header")
	}
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	if count == 0 || len(data) < icoDirSize+count*icoEntrySize {
		return nil, errors.New("raster: ico: truncated directory")
	}
	r := bytes.NewReader(data[icoDirSize:])
	var best icoEntry
	for i := 0; i < count; i++ {
		var e icoEntry
		if err := binary.Read(r, binary.LittleEndian, &e); err != nil {
			return nil, err
		}
		if i == 0 || e.area() > best.area() {
			best = e
		}
	}
	end := uint64(best.Offset) + uint64(best.Size)
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("raster: ico: entry exceeds file (%d > %d)", end, len(data))
	}
	return data[best.Offset:end], nil
}

func isPNG(b []byte) bool {
	return bytes.HasPrefix(b, []byte("\x89PNG\r\n\x1a\n"))
}

func decodeICO(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	payload, err := largestICOEntry(data)
	if err != nil {
		return nil, err
	}
	if isPNG(payload) {
		return png.Decode(bytes.NewReader(payload))
	}
	return decodeICOBitmap(payload)
}

func decodeICOConfig(r io.Reader) (image.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return image.Config{}, err
	}
	payload, err := largestICOEntry(data)
	if err != nil {
		return image.Config{}, err
	}
	if isPNG(payload) {
		return png.DecodeConfig(bytes.NewReader(payload))
	}
	h, err := parseDIBHeader(payload)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.NRGBAModel, Width: h.width, Height: h.height}, nil
}
