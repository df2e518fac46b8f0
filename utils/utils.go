package utils

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
)

// ErrShortRead is returned by a Cursor asked for more bytes than remain.
var ErrShortRead = errors.New("short read")

func BytesToUint32(data []byte) uint32 {
	return binary.BigEndian.Uint32(data)
}

// Cursor reads a byte slice front to back. It never rewinds.
type Cursor struct {
	data []byte
	off  uint
}

func NewCursor(data []byte, off uint) *Cursor {
	if off > uint(len(data)) {
		off = uint(len(data))
	}
	return &Cursor{data: data, off: off}
}

func (c *Cursor) Offset() uint {
	return c.off
}

func (c *Cursor) Remaining() uint {
	return uint(len(c.data)) - c.off
}

// Advance returns the next length bytes. The returned slice aliases the
// underlying data.
func (c *Cursor) Advance(length uint) ([]byte, error) {
	if length > c.Remaining() {
		return nil, ErrShortRead
	}
	c.off += length
	return c.data[c.off-length : c.off : c.off], nil
}

func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.Advance(4)
	if err != nil {
		return 0, err
	}
	return BytesToUint32(b), nil
}

func CreatePPM(name string, img image.Image) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := WritePPM(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WritePPM writes img as a binary P6 pixmap. Alpha is dropped.
func WritePPM(w io.Writer, img image.Image) error {
	b := img.Bounds()
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", b.Dx(), b.Dy()); err != nil {
		return err
	}
	px := make([]byte, 3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			px[0], px[1], px[2] = c.R, c.G, c.B
			if _, err := bw.Write(px); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
