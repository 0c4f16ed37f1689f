package utils

import (
	"context"
	"fmt"
	"os"

	"github.com/dassCS/qP/logger"
	"github.com/dassCS/qP/qp"
)

// RunQPInfo validates the QP file at inPath and summarizes it.
func RunQPInfo(ctx context.Context, inPath string) (qp.Info, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return qp.Info{}, err
	}
	defer in.Close()
	info, err := qp.Inspect(in)
	if err != nil {
		return qp.Info{}, fmt.Errorf("inspect %s: %w", inPath, err)
	}
	logger.FromContext(ctx).Debug("inspected QP file", "input", inPath, "ratio", info.Ratio())
	return info, nil
}
