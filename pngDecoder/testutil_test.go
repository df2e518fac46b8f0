package pngDecoder

import (
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/shoccho/pnGo/compression"
)

func makeChunk(typ string, data []byte) []byte {
	b := make([]byte, 0, 12+len(data))
	b = binary.BigEndian.AppendUint32(b, uint32(len(data)))
	b = append(b, typ...)
	b = append(b, data...)
	return binary.BigEndian.AppendUint32(b, crc32.ChecksumIEEE(append([]byte(typ), data...)))
}

func ihdrData(w, h uint32, depth byte, ct ColorType, interlace byte) []byte {
	b := binary.BigEndian.AppendUint32(nil, w)
	b = binary.BigEndian.AppendUint32(b, h)
	return append(b, depth, byte(ct), 0, 0, interlace)
}

func signature() []byte {
	return append([]byte(nil), pngHeader...)
}

// buildPNG assembles signature, IHDR, an optional PLTE and the deflated
// scanlines split into IDAT chunks of at most idatSize bytes.
func buildPNG(t testing.TB, ihdr, plte, scanlines []byte, idatSize int) []byte {
	t.Helper()
	compressed, err := compression.DeflateData(scanlines)
	if err != nil {
		t.Fatalf("DeflateData: %v", err)
	}
	if idatSize <= 0 {
		idatSize = len(compressed)
	}
	out := signature()
	out = append(out, makeChunk("IHDR", ihdr)...)
	if plte != nil {
		out = append(out, makeChunk("PLTE", plte)...)
	}
	for i := 0; i < len(compressed); i += idatSize {
		out = append(out, makeChunk("IDAT", compressed[i:min(i+idatSize, len(compressed))])...)
	}
	return append(out, makeChunk("IEND", nil)...)
}

// countingInflater records how often it was invoked.
type countingInflater struct {
	calls int
}

func (c *countingInflater) inflate(b []byte) ([]byte, error) {
	c.calls++
	return compression.InflateData(b)
}
