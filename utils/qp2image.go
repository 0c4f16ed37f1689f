package utils

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/dassCS/qP/logger"
	"github.com/dassCS/qP/qp"
	"github.com/dassCS/qP/raster"
)

// RunQP2Image decodes the QP file at inPath and writes it to outPath in the
// format named by outPath's extension.
func RunQP2Image(ctx context.Context, inPath, outPath string, opts *raster.Options) error {
	log := logger.FromContext(ctx).With("op", "decode", "input", inPath)

	img, err := decodeQPFile(inPath)
	if err != nil {
		return err
	}
	b := img.Bounds()
	_, rgb := img.(*qp.RGB)
	log.Debug("reconstructed pixels", "width", b.Dx(), "height", b.Dy(), "rgb", rgb)

	f, err := raster.EncodeFile(outPath, img, opts)
	if err != nil {
		return err
	}
	log.Debug("wrote image", "output", outPath, "format", f.String())
	return nil
}

func decodeQPFile(path string) (image.Image, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	img, err := qp.Decode(in)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
