package pngDecoder

import (
	"image"
	"image/color"
	"math"
)

const maxDimension = 1<<31 - 1

// Image is a decoded PNG: header fields, optional palette and the
// reconstructed (unfiltered) pixel rows.
//
// Header fields are applied once, in wire order, through validating
// setters. Pix stays nil until every scanline has been reconstructed.
type Image struct {
	hdr      IHDR
	channels int
	hasAlpha bool
	palette  []color.NRGBA
	pix      []byte
}

func (img *Image) setWidth(w uint32) error {
	if w == 0 || w > maxDimension {
		return formatError("invalid width %d", w)
	}
	img.hdr.Width = w
	return nil
}

func (img *Image) setHeight(h uint32) error {
	if h == 0 || h > maxDimension {
		return formatError("invalid height %d", h)
	}
	img.hdr.Height = h
	return nil
}

func (img *Image) setBitDepth(d byte) error {
	if !validBitDepth(d) {
		return formatError("invalid bit depth %d", d)
	}
	img.hdr.BitDepth = d
	return nil
}

// setColorType is the only place channels and hasAlpha are derived.
// The bit depth must already be set.
func (img *Image) setColorType(ct ColorType) error {
	if ct.Channels() == 0 {
		return formatError("invalid color type %d", ct)
	}
	if !depthAllowed(ct, img.hdr.BitDepth) {
		return formatError("bit depth %d not allowed for color type %d", img.hdr.BitDepth, ct)
	}
	img.hdr.ColorType = ct
	img.channels = ct.Channels()
	img.hasAlpha = ct.HasAlpha()
	return nil
}

func (img *Image) setCompressionMethod(m byte) error {
	if m != 0 {
		return formatError("invalid compression method %d", m)
	}
	img.hdr.CompressionMethod = m
	return nil
}

func (img *Image) setFilterMethod(m byte) error {
	if m != 0 {
		return formatError("invalid filter method %d", m)
	}
	img.hdr.FilterMethod = m
	return nil
}

func (img *Image) setInterlaceMethod(m byte) error {
	if m > 1 {
		return formatError("invalid interlace method %d", m)
	}
	img.hdr.InterlaceMethod = m
	return nil
}

func (img *Image) applyHeader(h *IHDR) error {
	for _, apply := range []func() error{
		func() error { return img.setWidth(h.Width) },
		func() error { return img.setHeight(h.Height) },
		func() error { return img.setBitDepth(h.BitDepth) },
		func() error { return img.setColorType(h.ColorType) },
		func() error { return img.setCompressionMethod(h.CompressionMethod) },
		func() error { return img.setFilterMethod(h.FilterMethod) },
		func() error { return img.setInterlaceMethod(h.InterlaceMethod) },
	} {
		if err := apply(); err != nil {
			return err
		}
	}
	return nil
}

// setPalette stores PLTE entries. At most min(2^depth, 256) entries.
// Empty palettes and more than 256 entries are rejected, following PNG
// 1.2, even though [0, 2^depth] entries would be representable.
func (img *Image) setPalette(data []byte) error {
	if len(data) == 0 || len(data)%3 != 0 {
		return formatError("bad palette length %d", len(data))
	}
	limit := 256
	if img.hdr.BitDepth < 8 {
		limit = 1 << img.hdr.BitDepth
	}
	n := len(data) / 3
	if n > limit {
		return formatError("palette has %d entries, bit depth %d allows %d", n, img.hdr.BitDepth, limit)
	}
	img.palette = make([]color.NRGBA, n)
	for i := range img.palette {
		img.palette[i] = color.NRGBA{R: data[3*i], G: data[3*i+1], B: data[3*i+2], A: 0xff}
	}
	return nil
}

func (img *Image) Header() IHDR         { return img.hdr }
func (img *Image) Width() int           { return int(img.hdr.Width) }
func (img *Image) Height() int          { return int(img.hdr.Height) }
func (img *Image) BitDepth() int        { return int(img.hdr.BitDepth) }
func (img *Image) ColorType() ColorType { return img.hdr.ColorType }
func (img *Image) Channels() int        { return img.channels }
func (img *Image) HasAlpha() bool       { return img.hasAlpha }
func (img *Image) Interlaced() bool     { return img.hdr.InterlaceMethod == 1 }
func (img *Image) Ready() bool          { return img.pix != nil }
func (img *Image) BitsPerPixel() int    { return img.channels * int(img.hdr.BitDepth) }

// Palette returns a copy of the PLTE entries, or nil.
func (img *Image) Palette() color.Palette {
	if img.palette == nil {
		return nil
	}
	p := make(color.Palette, len(img.palette))
	for i, c := range img.palette {
		p[i] = c
	}
	return p
}

// Pix returns the reconstructed rows, Stride bytes each, or nil before
// reconstruction. The slice must not be modified.
func (img *Image) Pix() []byte {
	return img.pix
}

// BytesPerPixel is the filter lookback distance: at least one byte,
// even for packed sub-byte pixels.
func (img *Image) BytesPerPixel() int {
	return max(1, img.BitsPerPixel()/8)
}

// Stride is the byte length of one reconstructed row, without the
// filter type byte.
func (img *Image) Stride() int {
	return (img.BitsPerPixel()*img.Width() + 7) / 8
}

// rawSize is the length of the filtered scanline stream: one filter byte
// plus Stride bytes per row. It saturates at math.MaxInt64.
func (img *Image) rawSize() int64 {
	record := uint64(img.Stride()) + 1
	n := uint64(img.Height()) * record
	if n/record != uint64(img.Height()) || n > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}

// Sample returns the pixel at (x, y) normalised to 8-bit non-premultiplied RGBA.
func (img *Image) Sample(x, y int) (color.NRGBA, error) {
	if img.pix == nil {
		return color.NRGBA{}, ErrNotReady
	}
	if x < 0 || y < 0 || x >= img.Width() || y >= img.Height() {
		return color.NRGBA{}, &OutOfBoundsError{X: x, Y: y, Width: img.Width(), Height: img.Height()}
	}
	row := img.pix[y*img.Stride():]

	switch img.hdr.ColorType {
	case Grayscale:
		v := img.scaleGray(img.sample(row, x, 0))
		return color.NRGBA{R: v, G: v, B: v, A: 0xff}, nil
	case Truecolor:
		return color.NRGBA{
			R: img.sample(row, x, 0),
			G: img.sample(row, x, 1),
			B: img.sample(row, x, 2),
			A: 0xff,
		}, nil
	case Indexed:
		idx := int(img.sample(row, x, 0))
		if idx >= len(img.palette) {
			return color.NRGBA{}, &IndexError{Index: idx, Len: len(img.palette)}
		}
		return img.palette[idx], nil
	case GrayscaleAlpha:
		v := img.sample(row, x, 0)
		return color.NRGBA{R: v, G: v, B: v, A: img.sample(row, x, 1)}, nil
	case TruecolorAlpha:
		return color.NRGBA{
			R: img.sample(row, x, 0),
			G: img.sample(row, x, 1),
			B: img.sample(row, x, 2),
			A: img.sample(row, x, 3),
		}, nil
	}
	return color.NRGBA{}, formatError("invalid color type %d", img.hdr.ColorType)
}

// sample reads channel ch of pixel x from row. Sub-byte samples are
// returned raw (unscaled); 16-bit samples are reduced to their high byte.
func (img *Image) sample(row []byte, x, ch int) uint8 {
	switch d := int(img.hdr.BitDepth); d {
	case 8:
		return row[x*img.channels+ch]
	case 16:
		return row[(x*img.channels+ch)*2]
	default:
		// Only single-channel types have sub-byte depths.
		bit := x * d
		shift := 8 - d - bit%8
		return (row[bit/8] >> shift) & byte(1<<d-1)
	}
}

func (img *Image) scaleGray(v uint8) uint8 {
	switch img.hdr.BitDepth {
	case 1:
		return v * 0xff
	case 2:
		return v * 0x55
	case 4:
		return v * 0x11
	}
	return v
}

func (img *Image) ColorModel() color.Model {
	return color.NRGBAModel
}

func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width(), img.Height())
}

// At implements image.Image. Pixels that cannot be sampled are transparent black.
func (img *Image) At(x, y int) color.Color {
	c, err := img.Sample(x, y)
	if err != nil {
		return color.NRGBA{}
	}
	return c
}
