package pcx

import (
	"fmt"
	"image"
	"io"
	"os"
)

// ReadOptions adjusts how a file is read. A nil *ReadOptions selects the
// defaults.
type ReadOptions struct {
	// HeuristicPalette accepts a trailing palette whose 0x0C signature
	// byte is missing when the tail looks plausible (not all-zero, more
	// than 3 distinct byte values). Off by default; palettes recovered
	// this way are reported with Source == PaletteHeuristic.
	HeuristicPalette bool
}

// ReadResult is everything recovered from one PCX file. Header is always
// set; every later field is best-effort and stays zero when its
// precondition failed, so a damaged palette or an exotic pixel layout
// never costs the caller the data that was already decoded.
type ReadResult struct {
	// Header is the parsed 128-byte header.
	Header *Header

	// Palette is the trailing 256-color palette, nil when the file has
	// none (or it failed validation).
	Palette *Palette

	// RawPixels is the RLE-expanded image data region, nil when the
	// region is empty. For layouts ReadFile does not reconstruct this is
	// the caller's only pixel data.
	RawPixels []byte

	// Image is the reconstructed indexed image, only for the 8bpp
	// single-plane layout and only when at least one full row decoded.
	Image *image.Paletted

	// RowsComplete is the number of full rows in Image.
	// RowsComplete < Header.Height means the file was truncated and
	// Image is partial.
	RowsComplete int

	// TruncatedRLE reports that the RLE stream ended on a dangling run
	// marker and decoding stopped there.
	TruncatedRLE bool
}

// Read decodes a PCX file from r, whose total length is size. The header
// must parse or an error is returned; after that every failure degrades
// to a partially populated result instead of aborting. When r is an
// io.Seeker the palette is located with one seek, otherwise the stream
// is consumed sequentially.
func Read(r io.Reader, size int64, opts *ReadOptions) (*ReadResult, error) {
	if opts == nil {
		opts = &ReadOptions{}
	}

	var hbuf [HeaderSize]byte
	n, err := io.ReadFull(r, hbuf[:])
	if err != nil {
		return nil, fmt.Errorf("%w (have %d bytes)", ErrHeaderTooShort, n)
	}
	hdr, err := ParseHeader(hbuf[:])
	if err != nil {
		return nil, err
	}
	res := &ReadResult{Header: hdr}

	// The last 769 bytes belong to the palette whenever the file is
	// large enough to hold one; everything between header and tail is
	// RLE image data.
	dataLen := size - HeaderSize
	if size >= HeaderSize+paletteTailSize {
		dataLen -= paletteTailSize
	}
	if dataLen > 0 {
		compressed := make([]byte, dataLen)
		// A stream shorter than its declared size still yields
		// whatever pixels made it to disk.
		n, err := io.ReadFull(r, compressed)
		if err != nil && err != io.ErrUnexpectedEOF {
			return res, nil
		}
		raw, truncated := rleDecode(compressed[:n])
		res.TruncatedRLE = truncated
		if len(raw) > 0 {
			res.RawPixels = raw
		}
	}

	res.Palette = ReadPalette(r, size, opts.HeuristicPalette)

	if img, rows, err := Assemble(hdr, res.RawPixels, res.Palette); err == nil {
		res.Image, res.RowsComplete = img, rows
	}
	return res, nil
}

// ReadFile opens and decodes the PCX file at path. The file handle is
// closed before returning on every path. See Read for the degradation
// rules.
func ReadFile(path string, opts *ReadOptions) (*ReadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return Read(f, fi.Size(), opts)
}
