// Package raster decodes common image formats into pixels and encodes
// pixels back into a format chosen by file extension.
package raster

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is an output image format.
type Format int

const (
	PNG Format = iota + 1
	JPEG
	BMP
	GIF
	TIFF
	ICO
	TGA
	WebP
)

var ErrUnsupportedFormat = errors.New("raster: unsupported or missing output image format extension")

// ErrDimensions is returned when a format cannot store an image of the given size.
var ErrDimensions = errors.New("raster: image dimensions not representable in format")

var extFormats = map[string]Format{
	"png":  PNG,
	"jpg":  JPEG,
	"jpeg": JPEG,
	"bmp":  BMP,
	"gif":  GIF,
	"tiff": TIFF,
	"ico":  ICO,
	"tga":  TGA,
	"webp": WebP,
}

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case JPEG:
		return "jpeg"
	case BMP:
		return "bmp"
	case GIF:
		return "gif"
	case TIFF:
		return "tiff"
	case ICO:
		return "ico"
	case TGA:
		return "tga"
	case WebP:
		return "webp"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case PNG:
		return "image/png"
	case JPEG:
		return "image/jpeg"
	case BMP:
		return "image/bmp"
	case GIF:
		return "image/gif"
	case TIFF:
		return "image/tiff"
	case ICO:
		return "image/x-icon"
	case TGA:
		return "image/x-tga"
	case WebP:
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// ParseFormat maps an extension, with or without the leading dot and in
// any case, to a Format.
func ParseFormat(ext string) (Format, error) {
	f, ok := extFormats[strings.ToLower(strings.TrimPrefix(ext, "."))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// FormatFromPath selects the output format from the extension of path.
// Only the path string is inspected.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return 0, fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}
