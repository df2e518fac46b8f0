package compression

import (
	"bytes"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
)

// Inflater turns a complete zlib stream into its decompressed bytes.
type Inflater func(compressedData []byte) ([]byte, error)

func InflateData(compressedData []byte) ([]byte, error) {
	return LimitedInflater(math.MaxInt64)(compressedData)
}

// LimitedInflater returns an Inflater that stops after n decompressed
// bytes. Anything the stream holds beyond that is never produced.
func LimitedInflater(n int64) Inflater {
	return func(compressedData []byte) ([]byte, error) {
		zlibReader, err := zlib.NewReader(bytes.NewReader(compressedData))
		if err != nil {
			return nil, err
		}
		defer zlibReader.Close()
		var decompressedData bytes.Buffer
		if _, err := io.Copy(&decompressedData, io.LimitReader(zlibReader, n)); err != nil {
			return nil, err
		}
		return decompressedData.Bytes(), nil
	}
}

// DeflateData is the inverse of InflateData.
func DeflateData(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zlibWriter := zlib.NewWriter(&buf)
	if _, err := zlibWriter.Write(data); err != nil {
		zlibWriter.Close()
		return nil, err
	}
	if err := zlibWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
