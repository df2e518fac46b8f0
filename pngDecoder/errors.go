package pngDecoder

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned when pixels are sampled before reconstruction.
var ErrNotReady = errors.New("png: pixel data not reconstructed")

var errDecoderUsed = errors.New("png: decoder already used")

// A FormatError reports that the input is not a valid PNG datastream.
// Chunk and Offset are filled in when the violation is tied to a chunk.
// For IDAT scanline errors Offset counts into the decompressed stream.
type FormatError struct {
	Reason string
	Chunk  string
	Offset uint
}

func (e *FormatError) Error() string {
	if e.Chunk == "" {
		return "png: invalid format: " + e.Reason
	}
	return fmt.Sprintf("png: invalid format: %s (%s chunk at offset %d)", e.Reason, e.Chunk, e.Offset)
}

func formatError(format string, args ...any) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// A TruncatedInputError reports a read past the end of the input.
type TruncatedInputError struct {
	Offset uint
	Need   uint
	Have   uint
}

func (e *TruncatedInputError) Error() string {
	return fmt.Sprintf("png: truncated input: need %d bytes at offset %d, have %d", e.Need, e.Offset, e.Have)
}

// A DecompressionError wraps a failure of the zlib collaborator.
type DecompressionError struct {
	Err error
}

func (e *DecompressionError) Error() string {
	return "png: decompression failed: " + e.Err.Error()
}

func (e *DecompressionError) Unwrap() error {
	return e.Err
}

// An UnsupportedFeatureError reports a valid PNG feature this package
// does not decode.
type UnsupportedFeatureError string

func (e UnsupportedFeatureError) Error() string {
	return "png: unsupported feature: " + string(e)
}

// An IntegrityError reports a chunk whose stored CRC does not match its
// contents. Only returned when CRC checking is enabled.
type IntegrityError struct {
	Chunk  string
	Offset uint
	Stored uint32
	Actual uint32
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("png: %s chunk at offset %d: crc mismatch: stored %08x, computed %08x",
		e.Chunk, e.Offset, e.Stored, e.Actual)
}

type OutOfBoundsError struct {
	X, Y          int
	Width, Height int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("png: pixel (%d,%d) outside %dx%d image", e.X, e.Y, e.Width, e.Height)
}

type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("png: palette index %d out of range [0,%d)", e.Index, e.Len)
}
