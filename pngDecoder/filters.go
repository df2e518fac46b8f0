package pngDecoder

import "fmt"

type FilterMethod byte

const (
	NONE FilterMethod = iota
	SUB
	UP
	AVG
	PAETH
)

func (f FilterMethod) String() string {
	switch f {
	case NONE:
		return "none"
	case SUB:
		return "sub"
	case UP:
		return "up"
	case AVG:
		return "average"
	case PAETH:
		return "paeth"
	}
	return fmt.Sprintf("filter(%d)", byte(f))
}

// The process*Filter functions undo one filter type in place. scanline
// holds the filtered bytes of the current row and is overwritten with the
// reconstructed bytes. previousLine is the reconstructed row above, or nil
// for the first row, in which case every "above" byte is 0.
// All arithmetic wraps modulo 256.

func processNoneFilter(scanline []byte) {}

func processSubFilter(scanline []byte, bytesPerPixel int) {
	for i := bytesPerPixel; i < len(scanline); i++ {
		scanline[i] += scanline[i-bytesPerPixel]
	}
}

func processUpFilter(previousLine []byte, scanline []byte) {
	if previousLine == nil {
		return
	}
	for i, above := range previousLine {
		scanline[i] += above
	}
}

func processAvgFilter(previousLine []byte, scanline []byte, bytesPerPixel int) {
	if previousLine == nil {
		for i := bytesPerPixel; i < len(scanline); i++ {
			scanline[i] += scanline[i-bytesPerPixel] / 2
		}
		return
	}
	n := min(bytesPerPixel, len(scanline))
	for i := 0; i < n; i++ {
		scanline[i] += previousLine[i] / 2
	}
	for i := bytesPerPixel; i < len(scanline); i++ {
		scanline[i] += uint8((int(scanline[i-bytesPerPixel]) + int(previousLine[i])) / 2)
	}
}

func processPaethFilter(previousLine []byte, scanline []byte, bytesPerPixel int) {
	for i := range scanline {
		var left, above, upperLeft int
		if i >= bytesPerPixel {
			left = int(scanline[i-bytesPerPixel])
		}
		if previousLine != nil {
			above = int(previousLine[i])
			if i >= bytesPerPixel {
				upperLeft = int(previousLine[i-bytesPerPixel])
			}
		}
		scanline[i] += uint8(paethPredictor(left, above, upperLeft))
	}
}

func unfilter(f FilterMethod, previousLine, scanline []byte, bytesPerPixel int) bool {
	switch f {
	case NONE:
		processNoneFilter(scanline)
	case SUB:
		processSubFilter(scanline, bytesPerPixel)
	case UP:
		processUpFilter(previousLine, scanline)
	case AVG:
		processAvgFilter(previousLine, scanline, bytesPerPixel)
	case PAETH:
		processPaethFilter(previousLine, scanline, bytesPerPixel)
	default:
		return false
	}
	return true
}

// reconstruct turns height filtered records (one filter byte followed by
// stride data bytes each) into height*stride reconstructed bytes. Rows are
// unfiltered in order; row y reads only the reconstructed row y-1.
func reconstruct(data []byte, height, stride, bytesPerPixel int) ([]byte, error) {
	record := uint64(stride) + 1
	if need := uint64(height) * record; need/record != uint64(height) || uint64(len(data)) < need {
		return nil, formatError("not enough pixel data: have %d bytes, need %d rows of %d", len(data), height, record)
	}

	pix := make([]byte, height*stride)
	var previousLine []byte
	for y := 0; y < height; y++ {
		start := y * (stride + 1)
		filter := FilterMethod(data[start])
		scanline := pix[y*stride : (y+1)*stride]
		copy(scanline, data[start+1:start+1+stride])

		if !unfilter(filter, previousLine, scanline, bytesPerPixel) {
			return nil, &FormatError{
				Reason: fmt.Sprintf("unknown filter type %d in row %d", byte(filter), y),
				Chunk:  "IDAT",
				Offset: uint(start),
			}
		}
		previousLine = scanline
	}
	return pix, nil
}
