// Package pngDecoder decodes a complete, non-interlaced PNG file held in
// memory into its header fields, palette and unfiltered pixel rows.
//
//	img, err := pngDecoder.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c, err := img.Sample(0, 0)
//
// Only IHDR, PLTE, IDAT and IEND are interpreted; other chunks are
// skipped. Chunk CRCs are ignored unless WithCRCCheck(true) is given.
// Adam7 interlaced images are rejected with an UnsupportedFeatureError,
// although DecodeHeader still reports their header.
package pngDecoder
