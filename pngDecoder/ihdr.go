package pngDecoder

import (
	"bytes"
	"encoding/binary"
	"slices"
)

const ihdrLength = 13

// ColorType is the IHDR colour type byte.
type ColorType byte

const (
	Grayscale      ColorType = 0
	Truecolor      ColorType = 2
	Indexed        ColorType = 3
	GrayscaleAlpha ColorType = 4
	TruecolorAlpha ColorType = 6
)

// Allowed bit depths per colour type.
// https://www.w3.org/TR/png/#table111
var allowedDepths = map[ColorType][]byte{
	Grayscale:      {1, 2, 4, 8, 16},
	Truecolor:      {8, 16},
	Indexed:        {1, 2, 4, 8},
	GrayscaleAlpha: {8, 16},
	TruecolorAlpha: {8, 16},
}

func (ct ColorType) Channels() int {
	switch ct {
	case Grayscale, Indexed:
		return 1
	case GrayscaleAlpha:
		return 2
	case Truecolor:
		return 3
	case TruecolorAlpha:
		return 4
	}
	return 0
}

func (ct ColorType) HasAlpha() bool {
	return ct == GrayscaleAlpha || ct == TruecolorAlpha
}

func (ct ColorType) String() string {
	switch ct {
	case Grayscale:
		return "grayscale"
	case Truecolor:
		return "truecolor"
	case Indexed:
		return "indexed"
	case GrayscaleAlpha:
		return "grayscale+alpha"
	case TruecolorAlpha:
		return "truecolor+alpha"
	}
	return "invalid"
}

// IHDR mirrors the 13-byte header chunk. Fields are in wire order so the
// struct can be filled with binary.Read.
type IHDR struct {
	Width             uint32
	Height            uint32
	BitDepth          byte
	ColorType         ColorType
	CompressionMethod byte
	FilterMethod      byte
	InterlaceMethod   byte
}

// ParseIHDR decodes the raw header fields without validating them.
func ParseIHDR(data []byte) (*IHDR, error) {
	if len(data) != ihdrLength {
		return nil, formatError("bad IHDR length %d, want %d", len(data), ihdrLength)
	}
	var ihdr IHDR
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &ihdr); err != nil {
		return nil, err
	}
	return &ihdr, nil
}

func validBitDepth(d byte) bool {
	switch d {
	case 1, 2, 4, 8, 16:
		return true
	}
	return false
}

func depthAllowed(ct ColorType, d byte) bool {
	return slices.Contains(allowedDepths[ct], d)
}
