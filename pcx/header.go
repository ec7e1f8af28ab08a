package pcx

import "fmt"

// HeaderSize is the size of the fixed PCX header in bytes.
const HeaderSize = 128

// Version:
// 0 = Version 2.5 of PC Paintbrush
// 2 = Version 2.8 w/palette information
// 3 = Version 2.8 w/o palette information
// 4 = PC Paintbrush for Windows(Plus for
//    Windows uses Ver 5)
// 5 = Version 3.0 and > of PC Paintbrush
//    and PC Paintbrush +, includes
//    Publisher's Paintbrush . Includes
//    24-bit .PCX files

// PaletteClass categorizes the pixel layout a header describes, derived
// from the plane count and bit depth.
type PaletteClass int

const (
	// Palette256External is the common 8bpp single-plane indexed layout
	// with a 768-byte palette appended to the file.
	Palette256External PaletteClass = iota
	// Palette16Internal covers ≤4bpp single-plane images using the
	// 48-byte EGA palette embedded in the header.
	Palette16Internal
	// PaletteTrueColor covers 8bpp three-plane RGB images with no palette.
	PaletteTrueColor
	// PaletteUnknown covers every other plane/depth combination.
	PaletteUnknown
)

// String returns the string representation of the palette class.
func (c PaletteClass) String() string {
	switch c {
	case Palette256External:
		return "256-Color (External)"
	case Palette16Internal:
		return "16-Color (Internal)"
	case PaletteTrueColor:
		return "24-bit True Color"
	default:
		return "Custom/Unknown"
	}
}

// Header is the parsed 128-byte PCX header. It is populated once by
// ParseHeader and never modified afterwards.
type Header struct {
	Manufacturer byte
	Version      byte
	Encoding     byte
	BitsPerPixel byte
	XMin         uint16
	YMin         uint16
	XMax         uint16
	YMax         uint16
	HDpi         uint16
	VDpi         uint16
	Colormap     [48]byte // legacy 16-color EGA palette
	NPlanes      byte
	BytesPerLine uint16
	PaletteType  uint16
	HScreenSize  uint16
	VScreenSize  uint16

	// Derived fields.
	Width  int
	Height int
}

// IsIndexed reports whether the header describes the common 8-bit
// single-plane indexed layout, the only layout ReadFile reconstructs
// into an image.
func (h *Header) IsIndexed() bool {
	return h.NPlanes == 1 && h.BitsPerPixel == 8
}

// Class returns the palette classification for the header's plane count
// and bit depth. Precedence matters: indexed is checked first, then the
// EGA and truecolor layouts.
func (h *Header) Class() PaletteClass {
	switch {
	case h.IsIndexed():
		return Palette256External
	case h.BitsPerPixel <= 4 && h.NPlanes == 1:
		return Palette16Internal
	case h.BitsPerPixel == 8 && h.NPlanes == 3:
		return PaletteTrueColor
	}
	return PaletteUnknown
}

func u16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

// ParseHeader reads the fixed 128-byte header from the start of buf.
// It returns ErrHeaderTooShort when buf holds fewer than 128 bytes and
// ErrHeaderUnpack when the fixed fields cannot describe an image; both
// are fatal to the decode as no downstream data can be trusted.
func ParseHeader(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w (have %d bytes)", ErrHeaderTooShort, len(buf))
	}
	buf = buf[:HeaderSize]

	if buf[0] != magic {
		return nil, fmt.Errorf("%w: bad magic 0x%02x", ErrHeaderUnpack, buf[0])
	}

	h := &Header{
		Manufacturer: buf[0],
		Version:      buf[1],
		Encoding:     buf[2],
		BitsPerPixel: buf[3],
		XMin:         u16(buf[4:]),
		YMin:         u16(buf[6:]),
		XMax:         u16(buf[8:]),
		YMax:         u16(buf[10:]),
		HDpi:         u16(buf[12:]),
		VDpi:         u16(buf[14:]),
		NPlanes:      buf[65],
		BytesPerLine: u16(buf[66:]),
		PaletteType:  u16(buf[68:]),
		HScreenSize:  u16(buf[70:]),
		VScreenSize:  u16(buf[72:]),
	}
	copy(h.Colormap[:], buf[16:16+48])

	h.Width = int(h.XMax) - int(h.XMin) + 1
	h.Height = int(h.YMax) - int(h.YMin) + 1
	if h.Width < 1 || h.Height < 1 {
		return nil, fmt.Errorf("%w: window %dx%d", ErrHeaderUnpack, h.Width, h.Height)
	}

	return h, nil
}
