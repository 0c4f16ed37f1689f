package utils

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dassCS/qP/logger"
	"github.com/dassCS/qP/qp"
	"github.com/dassCS/qP/raster"
)

// RunImage2QP decodes any supported raster image at inPath and writes it to
// outPath as a QP file. The output extension is not checked.
func RunImage2QP(ctx context.Context, inPath, outPath string) error {
	log := logger.FromContext(ctx).With("op", "encode", "input", inPath)

	img, format, err := raster.DecodeFile(inPath)
	if err != nil {
		return err
	}
	b := img.Bounds()
	log.Debug("decoded source image", "format", format, "width", b.Dx(), "height", b.Dy())

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	start := time.Now()
	if err := qp.Encode(out, img); err != nil {
		return fmt.Errorf("encode QP: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	if fi, err := os.Stat(outPath); err == nil {
		log.Debug("wrote QP file", "output", outPath, "bytes", fi.Size(), "elapsed", time.Since(start))
	}
	return nil
}
