package raster

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
)

const (
	dibInfoHeaderSize = 40
	dibRGB            = 0
	dibBitfields      = 3
	dibMaxSide        = 1 << 12
)

var errDIBTruncated = errors.New("raster: ico: truncated bitmap entry")

// dibHeader is the BITMAPINFOHEADER of a classic icon entry. The stored
// height covers the color rows and the AND mask, so height is half of it.
type dibHeader struct {
	size     int
	width    int
	height   int
	topDown  bool
	bitCount int
	colors   int
}

func parseDIBHeader(b []byte) (dibHeader, error) {
	var h dibHeader
	if len(b) < dibInfoHeaderSize {
		return h, errDIBTruncated
	}
	h.size = int(binary.LittleEndian.Uint32(b[0:4]))
	if h.size < dibInfoHeaderSize || h.size > len(b) {
		return h, fmt.Errorf("raster: ico: unsupported bitmap header size %d", h.size)
	}
	w := int(int32(binary.LittleEndian.Uint32(b[4:8])))
	fullH := int(int32(binary.LittleEndian.Uint32(b[8:12])))
	if fullH < 0 {
		h.topDown = true
		fullH = -fullH
	}
	h.width, h.height = w, fullH/2
	if h.width <= 0 || h.height <= 0 || h.width > dibMaxSide || h.height > dibMaxSide {
		return h, fmt.Errorf("raster: ico: bad bitmap dimensions %dx%d", w, fullH)
	}
	h.bitCount = int(binary.LittleEndian.Uint16(b[14:16]))
	compression := binary.LittleEndian.Uint32(b[16:20])
	switch {
	case compression == dibRGB:
	case compression == dibBitfields && h.bitCount == 32:
		// Icons written with BI_BITFIELDS use the standard BGRA masks.
	default:
		return h, fmt.Errorf("raster: ico: unsupported bitmap compression %d", compression)
	}
	switch h.bitCount {
	case 1, 4, 8:
		h.colors = int(binary.LittleEndian.Uint32(b[32:36]))
		if h.colors == 0 || h.colors > 1<<h.bitCount {
			h.colors = 1 << h.bitCount
		}
	case 24, 32:
	default:
		return h, fmt.Errorf("raster: ico: unsupported bitmap depth %d", h.bitCount)
	}
	return h, nil
}

func dibStride(width, bitCount int) int {
	return (width*bitCount + 31) / 32 * 4
}

// decodeICOBitmap decodes a BMP-style icon entry: a DIB header, an optional
// palette, bottom-up color rows and a 1-bit AND transparency mask.
func decodeICOBitmap(b []byte) (image.Image, error) {
	h, err := parseDIBHeader(b)
	if err != nil {
		return nil, err
	}
	paletteOff := h.size
	pixOff := paletteOff + h.colors*4
	stride := dibStride(h.width, h.bitCount)
	maskOff := pixOff + stride*h.height
	if len(b) < maskOff {
		return nil, errDIBTruncated
	}
	palette := b[paletteOff:pixOff]
	maskStride := dibStride(h.width, 1)
	hasMask := len(b) >= maskOff+maskStride*h.height

	img := image.NewNRGBA(image.Rect(0, 0, h.width, h.height))
	anyAlpha := false
	for row := 0; row < h.height; row++ {
		y := h.height - 1 - row
		if h.topDown {
			y = row
		}
		src := b[pixOff+row*stride : pixOff+(row+1)*stride]
		dst := img.Pix[y*img.Stride : (y+1)*img.Stride]
		for x := 0; x < h.width; x++ {
			var r, g, bl, a uint8 = 0, 0, 0, 0xff
			switch h.bitCount {
			case 32:
				bl, g, r, a = src[4*x], src[4*x+1], src[4*x+2], src[4*x+3]
				if a != 0 {
					anyAlpha = true
				}
			case 24:
				bl, g, r = src[3*x], src[3*x+1], src[3*x+2]
			default:
				idx := paletteIndex(src, x, h.bitCount)
				if idx < h.colors {
					bl, g, r = palette[4*idx], palette[4*idx+1], palette[4*idx+2]
				}
			}
			dst[4*x], dst[4*x+1], dst[4*x+2], dst[4*x+3] = r, g, bl, a
		}
	}

	// 32-bit entries carry their own alpha unless it is entirely zero; the
	// other depths take transparency from the AND mask.
	if h.bitCount == 32 && anyAlpha {
		return img, nil
	}
	if !hasMask {
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i] = 0xff
		}
		return img, nil
	}
	for row := 0; row < h.height; row++ {
		y := h.height - 1 - row
		if h.topDown {
			y = row
		}
		mask := b[maskOff+row*maskStride : maskOff+(row+1)*maskStride]
		for x := 0; x < h.width; x++ {
			i := y*img.Stride + 4*x + 3
			if mask[x/8]&(0x80>>(x%8)) != 0 {
				img.Pix[i] = 0
			} else {
				img.Pix[i] = 0xff
			}
		}
	}
	return img, nil
}

func paletteIndex(row []byte, x, bitCount int) int {
	switch bitCount {
	case 1:
		return int(row[x/8]>>(7-x%8)) & 1
	case 4:
		if x%2 == 0 {
			return int(row[x/2] >> 4)
		}
		return int(row[x/2] & 0x0F)
	default:
		return int(row[x])
	}
}
