// Package api exposes the QP converters over byte slices and HTTP.
package api

import (
	"bytes"
	"fmt"

	"github.com/dassCS/qP/qp"
	"github.com/dassCS/qP/raster"
)

// EncodeImage converts raster image bytes (any supported format) into a QP file as bytes.
func EncodeImage(src []byte) ([]byte, error) {
	img, _, err := raster.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := qp.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode QP: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeImage converts QP file bytes into an image of format f.
func DecodeImage(qpBytes []byte, f raster.Format, opts *raster.Options) ([]byte, error) {
	img, err := qp.Decode(bytes.NewReader(qpBytes))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := raster.Encode(&buf, img, f, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Inspect validates QP file bytes and summarizes them.
func Inspect(qpBytes []byte) (qp.Info, error) {
	return qp.Inspect(bytes.NewReader(qpBytes))
}
