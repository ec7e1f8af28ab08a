package pcx

import (
	"image/color"
	"io"
)

const (
	// PaletteSize is the byte length of a 256-entry RGB palette.
	PaletteSize = 3 * 256
	// paletteTailSize is the signature byte plus the palette.
	paletteTailSize = 1 + PaletteSize
	// tailChunkSize is the read granularity for forward-only sources.
	tailChunkSize = 4096
)

// RGB is one palette entry.
type RGB struct {
	R, G, B uint8
}

// PaletteSource records how a palette was validated.
type PaletteSource int

const (
	// PaletteSignature means the 0x0C signature byte preceded the palette.
	PaletteSignature PaletteSource = iota
	// PaletteHeuristic means the signature was absent but the tail passed
	// the best-effort plausibility check. Heuristic palettes may be wrong.
	PaletteHeuristic
)

// String returns the string representation of the palette source.
func (s PaletteSource) String() string {
	switch s {
	case PaletteSignature:
		return "signature"
	case PaletteHeuristic:
		return "heuristic"
	default:
		return "unknown"
	}
}

// Palette is the 256-color lookup table found at the end of 8bpp PCX
// files. Source distinguishes signature-verified palettes from ones
// recovered by the opt-in heuristic.
type Palette struct {
	Entries [256]RGB
	Source  PaletteSource
}

// Colors converts the palette to a color.Palette usable with
// image.Paletted.
func (p *Palette) Colors() color.Palette {
	pal := make(color.Palette, len(p.Entries))
	for i, e := range p.Entries {
		pal[i] = color.RGBA{R: e.R, G: e.G, B: e.B, A: 0xff}
	}
	return pal
}

// readTail returns the final paletteTailSize bytes of a source whose
// total length is size. The remaining stream position afterwards is
// unspecified.
//
// Seekable sources are positioned directly at size-769 and read once.
// Everything else is drained sequentially in fixed chunks with only a
// rolling 769-byte window retained, so memory stays O(769) no matter how
// large the file is. Both strategies return identical bytes for a
// seekable source.
func readTail(r io.Reader, size int64) ([]byte, error) {
	if size < paletteTailSize {
		return nil, ErrNoPalette
	}
	if s, ok := r.(io.Seeker); ok {
		if _, err := s.Seek(size-paletteTailSize, io.SeekStart); err != nil {
			return nil, err
		}
		tail := make([]byte, paletteTailSize)
		if _, err := io.ReadFull(r, tail); err != nil {
			return nil, err
		}
		return tail, nil
	}

	tail := make([]byte, 0, paletteTailSize+tailChunkSize)
	chunk := make([]byte, tailChunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			tail = append(tail, chunk[:n]...)
			if len(tail) > paletteTailSize {
				// Slide the window: only the last 769 bytes matter.
				copy(tail, tail[len(tail)-paletteTailSize:])
				tail = tail[:paletteTailSize]
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if len(tail) < paletteTailSize {
		return nil, ErrNoPalette
	}
	return tail, nil
}

// plausiblePalette is the fallback check for tails missing the 0x0C
// signature: reject all-zero data and data with 3 or fewer distinct byte
// values. Some producers omit the signature, but this can also accept
// trailing garbage, which is why it is opt-in.
func plausiblePalette(pal []byte) bool {
	var seen [256]bool
	distinct := 0
	allZero := true
	for _, b := range pal {
		if b != 0 {
			allZero = false
		}
		if !seen[b] {
			seen[b] = true
			distinct++
		}
	}
	return !allZero && distinct > 3
}

// parsePaletteTail interprets the final 769 bytes of a file. It returns
// nil when the tail is not a palette.
func parsePaletteTail(tail []byte, heuristic bool) *Palette {
	if len(tail) != paletteTailSize {
		return nil
	}
	src := PaletteSignature
	if tail[0] != paletteMagic {
		if !heuristic || !plausiblePalette(tail[1:]) {
			return nil
		}
		src = PaletteHeuristic
	}
	p := &Palette{Source: src}
	for i := range p.Entries {
		p.Entries[i] = RGB{
			R: tail[1+i*3],
			G: tail[2+i*3],
			B: tail[3+i*3],
		}
	}
	return p
}

// ReadPalette extracts the trailing 256-color palette from r, whose
// total length is size. It returns nil with no error when the file has
// no palette (too short, bad signature); read failures also yield nil,
// so a missing palette never aborts a decode.
func ReadPalette(r io.Reader, size int64, heuristic bool) *Palette {
	if size < HeaderSize+paletteTailSize {
		return nil
	}
	tail, err := readTail(r, size)
	if err != nil {
		return nil
	}
	return parsePaletteTail(tail, heuristic)
}
