package qp

import "errors"

var (
	ErrInvalidMagic           = errors.New("qp: invalid magic, not a QP image")
	ErrUnsupportedCompression = errors.New("qp: unsupported compression method")
	ErrUnsupportedChannels    = errors.New("qp: unsupported number of channels")
	ErrSizeMismatch           = errors.New("qp: pixel data does not match image dimensions")
	ErrCorruptPayload         = errors.New("qp: corrupt compressed payload")
)
