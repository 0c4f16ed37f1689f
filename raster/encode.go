package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

const DefaultJPEGQuality = 90

// Options tune the lossy encoders. A nil *Options uses the defaults.
type Options struct {
	JPEGQuality int
}

func (o *Options) jpegQuality() int {
	if o == nil || o.JPEGQuality <= 0 {
		return DefaultJPEGQuality
	}
	return min(o.JPEGQuality, 100)
}

// Encode writes img to w in format f. WebP output is lossless; JPEG output
// drops alpha.
func Encode(w io.Writer, img image.Image, f Format, opts *Options) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, withoutAlpha(img), &jpeg.Options{Quality: opts.jpegQuality()})
	case BMP:
		return bmp.Encode(w, img)
	case GIF:
		return gif.Encode(w, img, nil)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case ICO:
		return encodeICO(w, img)
	case TGA:
		return encodeTGA(w, img)
	case WebP:
		return nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
}

// EncodeFile infers the format from path, then creates (or truncates) path
// and encodes img into it. An unknown extension fails before the file is
// touched. A failed encode leaves the partial file in place.
func EncodeFile(path string, img image.Image, opts *Options) (Format, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return 0, err
	}
	out, err := os.Create(path)
	if err != nil {
		return f, err
	}
	defer out.Close()
	if err := Encode(out, img, f, opts); err != nil {
		return f, fmt.Errorf("encode %s: %w", f, err)
	}
	return f, out.Close()
}

type opaquer interface {
	Opaque() bool
}

func isOpaque(img image.Image) bool {
	o, ok := img.(opaquer)
	return ok && o.Opaque()
}

// withoutAlpha keeps the straight color of every pixel and forces alpha to
// 255, so translucent pixels do not darken when alpha is discarded.
func withoutAlpha(img image.Image) image.Image {
	if isOpaque(img) {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return dst
}
