package qp

import (
	"image"
	"image/color"
	"image/draw"
)

// RGB is an in-memory image of 8-bit R, G, B samples with no alpha.
// It is what the decoder produces for 3-channel streams.
type RGB struct {
	// Pix holds samples in R, G, B order. The pixel at (x, y) starts at
	// Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*3].
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

// NewRGB returns a new RGB image with the given bounds.
func NewRGB(r image.Rectangle) *RGB {
	return &RGB{
		Pix:    make([]uint8, 3*r.Dx()*r.Dy()),
		Stride: 3 * r.Dx(),
		Rect:   r,
	}
}

func (p *RGB) ColorModel() color.Model { return color.RGBAModel }

func (p *RGB) Bounds() image.Rectangle { return p.Rect }

func (p *RGB) At(x, y int) color.Color { return p.RGBAAt(x, y) }

func (p *RGB) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3]
	return color.RGBA{R: s[0], G: s[1], B: s[2], A: 0xff}
}

func (p *RGB) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}

// Opaque reports true; encoders such as image/png use it to drop alpha.
func (p *RGB) Opaque() bool { return true }

// DropAlpha converts a packed RGBA8 buffer to RGB8 by keeping the first three
// bytes of every 4-byte pixel. A trailing partial pixel is ignored.
func DropAlpha(rgba []byte) []byte {
	n := len(rgba) / 4
	rgb := make([]byte, 0, n*3)
	for i := 0; i < n*4; i += 4 {
		rgb = append(rgb, rgba[i], rgba[i+1], rgba[i+2])
	}
	return rgb
}

// ToNRGBA copies any image.Image into an *image.NRGBA with bounds starting at
// (0,0). Images that already have that exact layout are returned as is.
func ToNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == 4*b.Dx() {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
