package pngDecoder

import (
	"errors"
	"hash/crc32"

	"github.com/apex/log"

	"github.com/shoccho/pnGo/compression"
	"github.com/shoccho/pnGo/utils"
)

// DecodeMode selects how much of the datastream Decode interprets.
type DecodeMode int

const (
	// Full decodes every chunk and reconstructs the pixels.
	Full DecodeMode = iota
	// HeaderOnly stops right after IHDR. Nothing is decompressed.
	HeaderOnly
)

// Decoding stage. IHDR comes first, PLTE (if any) before the first IDAT,
// and IEND last.
// https://www.w3.org/TR/PNG/#5ChunkOrdering
type stage int

const (
	dsStart stage = iota
	dsSeenIHDR
	dsSeenPLTE
	dsSeenIDAT
	dsSeenIEND
)

type Chunk struct {
	length   uint32
	typ      string
	data     []uint8
	crc      uint32
	offset   uint
	critical bool
}

type PngDecoder struct {
	cur      *utils.Cursor
	mode     DecodeMode
	checkCRC bool
	inflate  compression.Inflater
	log      log.Interface

	img      *Image
	stage    stage
	idat     []byte
	finished bool
}

type Option func(*PngDecoder)

func WithMode(m DecodeMode) Option {
	return func(p *PngDecoder) { p.mode = m }
}

// WithCRCCheck enables CRC-32 verification of every chunk.
func WithCRCCheck(on bool) Option {
	return func(p *PngDecoder) { p.checkCRC = on }
}

// WithInflater replaces the zlib decompressor. It is called exactly once
// per Full decode with the concatenated IDAT payload. Without it the
// output is capped at the size the header calls for.
func WithInflater(f compression.Inflater) Option {
	return func(p *PngDecoder) { p.inflate = f }
}

func WithLogger(l log.Interface) Option {
	return func(p *PngDecoder) { p.log = l }
}

// NewDecoder checks the PNG signature and prepares a single-use decoder
// over data. data must hold the complete file and must not be modified
// until Decode returns.
func NewDecoder(data []byte, opts ...Option) (*PngDecoder, error) {
	if !isPNG(data) {
		return nil, &FormatError{Reason: "bad signature"}
	}
	p := &PngDecoder{
		cur: utils.NewCursor(data, uint(len(pngHeader))),
		log: log.Log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Decode is shorthand for NewDecoder followed by PngDecoder.Decode.
func Decode(data []byte, opts ...Option) (*Image, error) {
	p, err := NewDecoder(data, opts...)
	if err != nil {
		return nil, err
	}
	return p.Decode()
}

// DecodeHeader decodes only the IHDR fields of data.
func DecodeHeader(data []byte) (*Image, error) {
	return Decode(data, WithMode(HeaderOnly))
}

// Decode walks the chunks and returns the image. On error no image is
// returned. A PngDecoder can only be used once.
func (p *PngDecoder) Decode() (*Image, error) {
	if p.finished {
		return nil, errDecoderUsed
	}
	p.finished = true
	p.img = &Image{}

	var err error
	switch p.mode {
	case HeaderOnly:
		err = p.decodeHeader()
	default:
		err = p.decodeAll()
	}
	img := p.img
	p.img, p.idat = nil, nil
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (p *PngDecoder) decodeHeader() error {
	chunk, err := p.nextChunk()
	if err != nil {
		return err
	}
	return p.handleChunk(chunk)
}

func (p *PngDecoder) decodeAll() error {
	for p.stage != dsSeenIEND {
		chunk, err := p.nextChunk()
		if err != nil {
			return err
		}
		if err := p.handleChunk(chunk); err != nil {
			return err
		}
	}

	inflate := p.inflate
	if inflate == nil {
		inflate = compression.LimitedInflater(p.img.rawSize())
	}
	decompressed, err := inflate(p.idat)
	if err != nil {
		return &DecompressionError{Err: err}
	}
	pix, err := reconstruct(decompressed, p.img.Height(), p.img.Stride(), p.img.BytesPerPixel())
	if err != nil {
		return err
	}
	p.img.pix = pix
	p.log.WithFields(log.Fields{
		"width":      p.img.Width(),
		"height":     p.img.Height(),
		"compressed": len(p.idat),
		"raw":        len(decompressed),
	}).Debug("scanlines reconstructed")
	return nil
}

func (p *PngDecoder) handleChunk(c *Chunk) error {
	p.log.WithFields(log.Fields{
		"type":   c.typ,
		"length": c.length,
		"offset": c.offset,
	}).Debug("chunk")

	if p.stage == dsStart && c.typ != "IHDR" {
		return p.chunkError(c, &FormatError{Reason: "chunk before header"})
	}

	var err error
	switch c.typ {
	case "IHDR":
		err = p.parseIHDR(c)
	case "PLTE":
		err = p.parsePLTE(c)
	case "IDAT":
		err = p.parseIDAT(c)
	case "IEND":
		if p.stage != dsSeenIDAT {
			err = formatError("missing image data")
		}
		p.stage = dsSeenIEND
	default:
		if c.critical {
			p.log.WithField("type", c.typ).Debug("ignoring unknown critical chunk")
		}
	}
	if err != nil {
		return p.chunkError(c, err)
	}
	return nil
}

func (p *PngDecoder) parseIHDR(c *Chunk) error {
	if p.stage != dsStart {
		return formatError("duplicate header")
	}
	ihdr, err := ParseIHDR(c.data)
	if err != nil {
		return err
	}
	if err := p.img.applyHeader(ihdr); err != nil {
		return err
	}
	p.stage = dsSeenIHDR
	if p.mode == Full && p.img.Interlaced() {
		return UnsupportedFeatureError("adam7 interlacing")
	}
	return nil
}

func (p *PngDecoder) parsePLTE(c *Chunk) error {
	if p.stage != dsSeenIHDR {
		return formatError("chunk out of order")
	}
	if err := p.img.setPalette(c.data); err != nil {
		return err
	}
	p.stage = dsSeenPLTE
	return nil
}

// parseIDAT appends the chunk payload as-is. IDAT boundaries carry no
// meaning; the zlib stream is only decoded once all chunks are in.
func (p *PngDecoder) parseIDAT(c *Chunk) error {
	switch p.stage {
	case dsSeenIHDR:
		if p.img.ColorType() == Indexed {
			return formatError("missing palette")
		}
	case dsSeenPLTE, dsSeenIDAT:
	default:
		return formatError("chunk out of order")
	}
	p.stage = dsSeenIDAT
	p.idat = append(p.idat, c.data...)
	return nil
}

// chunkError attaches chunk context to format errors raised while
// handling c.
func (p *PngDecoder) chunkError(c *Chunk, err error) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.Chunk == "" {
		fe.Chunk = c.typ
		fe.Offset = c.offset
	}
	return err
}

func (p *PngDecoder) nextChunk() (*Chunk, error) {
	offset := p.cur.Offset()
	length, err := p.readUint32()
	if err != nil {
		return nil, err
	}
	chunkType, err := p.tryAdvance(4)
	if err != nil {
		return nil, err
	}
	chunkData, err := p.tryAdvance(uint(length))
	if err != nil {
		return nil, err
	}
	crc, err := p.readUint32()
	if err != nil {
		return nil, err
	}
	c := &Chunk{
		length:   length,
		typ:      string(chunkType),
		data:     chunkData,
		crc:      crc,
		offset:   offset,
		critical: chunkType[0] >= 'A' && chunkType[0] <= 'Z',
	}
	if p.checkCRC {
		h := crc32.NewIEEE()
		h.Write(chunkType)
		h.Write(chunkData)
		if sum := h.Sum32(); sum != c.crc {
			return nil, &IntegrityError{Chunk: c.typ, Offset: offset, Stored: c.crc, Actual: sum}
		}
	}
	return c, nil
}

func (p *PngDecoder) tryAdvance(length uint) ([]uint8, error) {
	at := p.cur.Offset()
	b, err := p.cur.Advance(length)
	return b, p.truncated(err, at, length)
}

func (p *PngDecoder) readUint32() (uint32, error) {
	at := p.cur.Offset()
	v, err := p.cur.Uint32()
	return v, p.truncated(err, at, 4)
}

func (p *PngDecoder) truncated(err error, at, need uint) error {
	if errors.Is(err, utils.ErrShortRead) {
		return &TruncatedInputError{Offset: at, Need: need, Have: p.cur.Remaining()}
	}
	return err
}
