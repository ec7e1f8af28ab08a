// Package pcx reads PCX image files.
//
// Specification: http://web.archive.org/web/20030111010058/http://www.nist.fss.ru/hr/doc/spec/pcx.htm
//
// Sample files: http://samples.ffmpeg.org/image-samples/pcx/
//
// Two surfaces are provided. ReadFile (and Read) return a ReadResult
// carrying the parsed header, the trailing 256-color palette, the
// RLE-expanded pixel bytes and, for the common 8-bit single-plane
// layout, a reconstructed image; fields degrade independently, so a
// damaged file yields as much as could be recovered. Decode and
// DecodeConfig plug into the standard image package:
//
//	file, _ := os.Open("image.pcx")
//	img, err := pcx.Decode(file)
//	if err != nil {
//	    log.Fatal(err)
//	}
package pcx

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

const (
	magic        = 0x0a
	paletteMagic = 0x0c
)

type decoder struct {
	r                io.Reader
	h                *Header
	bytesPerScanline int
	grayscale        bool
	pb4              bool
	colorModel       color.Model
}

var cga16ColorPalette = [16]color.Color{
	color.RGBA{0x00, 0x00, 0x00, 0xff}, //  0 black
	color.RGBA{0x00, 0x00, 0xaa, 0xff}, //  1 blue
	color.RGBA{0x00, 0xaa, 0x00, 0xff}, //  2 green
	color.RGBA{0x00, 0xaa, 0xaa, 0xff}, //  3 cyan
	color.RGBA{0xaa, 0x00, 0x00, 0xff}, //  4 red
	color.RGBA{0xaa, 0x00, 0xaa, 0xff}, //  5 magenta
	color.RGBA{0xaa, 0x55, 0x00, 0xff}, //  6 brown
	color.RGBA{0xaa, 0xaa, 0xaa, 0xff}, //  7 light gray
	color.RGBA{0x55, 0x55, 0x55, 0xff}, //  8 gray
	color.RGBA{0x55, 0x55, 0xff, 0xff}, //  9 light blue
	color.RGBA{0x55, 0xff, 0x55, 0xff}, // 10 light green
	color.RGBA{0x55, 0xff, 0xff, 0xff}, // 11 light cyan
	color.RGBA{0xff, 0x55, 0x55, 0xff}, // 12 light red
	color.RGBA{0xff, 0x55, 0xff, 0xff}, // 13 light magenta
	color.RGBA{0xff, 0xff, 0x55, 0xff}, // 14 yellow
	color.RGBA{0xff, 0xff, 0xff, 0xff}, // 15 white
}

var cga4ColorPalettes = [8][]color.Color{
	{cga16ColorPalette[2], cga16ColorPalette[4], cga16ColorPalette[6]},    // green, red, brown
	{cga16ColorPalette[10], cga16ColorPalette[12], cga16ColorPalette[14]}, // light green, light red, yellow
	{cga16ColorPalette[3], cga16ColorPalette[5], cga16ColorPalette[7]},    // cyan, magenta, light gray
	{cga16ColorPalette[11], cga16ColorPalette[13], cga16ColorPalette[15]}, // light cyan, light magenta, white
	{cga16ColorPalette[3], cga16ColorPalette[4], cga16ColorPalette[7]},    // cyan, red, light gray
	{cga16ColorPalette[11], cga16ColorPalette[12], cga16ColorPalette[15]}, // light cyan, light red, white
	{cga16ColorPalette[3], cga16ColorPalette[4], cga16ColorPalette[7]},    // cyan, red, light gray
	{cga16ColorPalette[11], cga16ColorPalette[12], cga16ColorPalette[15]}, // light cyan, light red, white
}

func init() {
	// The magic also matches the RLE bit to make sure it's set
	image.RegisterFormat("pcx", "\x0a?\x01", Decode, DecodeConfig)
}

// Decode reads a PCX image from r and returns it as an image.Image.
// The type of Image returned depends on the PCX contents.
func Decode(r io.Reader) (image.Image, error) {
	d, err := newDecoder(r)
	if err != nil {
		return nil, err
	}
	return d.decode()
}

// DecodeConfig returns the color model and dimensions of a PCX image
// without decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	d, err := newDecoder(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: d.colorModel,
		Width:      d.h.Width,
		Height:     d.h.Height,
	}, nil
}

func newDecoder(r io.Reader) (*decoder, error) {
	d := &decoder{
		r: r,
	}
	if err := d.readHeader(); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return d, nil
}

func (d *decoder) readHeader() error {
	var buf [HeaderSize]byte

	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return err
	}
	h, err := ParseHeader(buf[:])
	if err != nil {
		if errors.Is(err, ErrHeaderUnpack) && buf[0] != magic {
			return FormatError("not a PCX file")
		}
		return err
	}
	d.h = h

	if h.BitsPerPixel < 1 || h.BitsPerPixel > 8 {
		return FormatError(fmt.Sprintf("unsupported bpp (%d)", h.BitsPerPixel))
	}
	d.bytesPerScanline = int(h.BytesPerLine) * int(h.NPlanes)
	d.grayscale = h.PaletteType == 2
	d.pb4 = h.PaletteType != 0

	if d.bytesPerScanline < (h.Width*int(h.BitsPerPixel)*int(h.NPlanes)+7)/8 {
		return FormatError("corrupt image")
	}

	if d.grayscale {
		d.colorModel = color.GrayModel
	} else {
		d.colorModel = color.RGBAModel
	}

	return nil
}

func (d *decoder) bounds() image.Rectangle {
	return image.Rect(
		int(d.h.XMin), int(d.h.YMin),
		int(d.h.XMax)+1, int(d.h.YMax)+1)
}

func (d *decoder) decode() (image.Image, error) {
	if d.h.Encoding != 1 {
		return nil, UnsupportedError("non-RLE")
	}

	switch {
	case d.colorModel == color.GrayModel:
		if d.h.BitsPerPixel == 8 {
			return d.decodeGrayscale()
		}
		return nil, UnsupportedError("grayscale only supported with 8bpp")
	case d.h.NPlanes == 1:
		if d.h.BitsPerPixel == 8 {
			return d.decodeRGBPaletted()
		}
		return d.decodePaletted()
	case d.h.BitsPerPixel == 8 && (d.h.NPlanes == 3 || d.h.NPlanes == 4):
		return d.decodeRGB()
	case d.h.BitsPerPixel == 1 && (d.h.NPlanes >= 2 && d.h.NPlanes <= 4):
		return d.decodePlanar()
	}

	return nil, UnsupportedError(fmt.Sprintf("version %d with %d planes %d bpp", d.h.Version, d.h.NPlanes, d.h.BitsPerPixel))
}

func (d *decoder) decodeGrayscale() (image.Image, error) {
	bufR := bufio.NewReader(d.r)
	img := image.NewGray(d.bounds())
	for y := 0; y < d.h.Height; y++ {
		if err := d.rleScanline(bufR, img.Pix[y*img.Stride:]); err != nil {
			return img, err
		}
	}
	return img, nil
}

func (d *decoder) decodeRGB() (image.Image, error) {
	bufR := bufio.NewReader(d.r)

	img := image.NewRGBA(d.bounds())
	bpl := int(d.h.BytesPerLine)
	offset := 0
	buf := make([]byte, d.bytesPerScanline)
	for y := 0; y < d.h.Height; y++ {
		if err := d.rleScanline(bufR, buf); err != nil {
			return img, err
		}
		for x := 0; x < d.h.Width; x++ {
			img.Pix[offset] = buf[x]
			img.Pix[offset+1] = buf[x+bpl]
			img.Pix[offset+2] = buf[x+2*bpl]
			if d.h.NPlanes == 4 {
				img.Pix[offset+3] = buf[x+3*bpl]
			} else {
				img.Pix[offset+3] = 255
			}
			offset += 4
		}
	}
	return img, nil
}

func (d *decoder) decodeRGBPaletted() (image.Image, error) {
	bufR := bufio.NewReader(d.r)

	pal := make([]color.Color, 256)
	img := image.NewPaletted(d.bounds(), pal)
	for y := 0; y < d.h.Height; y++ {
		if err := d.rleScanline(bufR, img.Pix[y*img.Stride:]); err != nil {
			return img, err
		}
	}

	// The extended palette follows the pixel data directly.
	tail := make([]byte, paletteTailSize)
	if _, err := io.ReadFull(bufR, tail); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return img, errors.New("pcx: missing extended palette")
		}
		return img, err
	}
	p := parsePaletteTail(tail, false)
	if p == nil {
		return img, errors.New("pcx: missing extended palette")
	}
	copy(pal, p.Colors())

	return img, nil
}

func (d *decoder) decodePaletted() (image.Image, error) {
	bufR := bufio.NewReader(d.r)

	bpp := int(d.h.BitsPerPixel)
	pal := make([]color.Color, 1<<uint(bpp))
	switch {
	case bpp == 1: // B&W
		pal[0] = color.Black
		pal[1] = color.White
	case bpp == 2 && d.h.Width == 320 && d.h.Height == 200: // CGA
		pal[0] = cga16ColorPalette[d.h.Colormap[0]>>4]
		idx := int(d.h.Colormap[3] >> 5)
		if d.pb4 {
			// PC Paintbush 4.0 encodes the CGA palettes differently than 3.0.
			// Very thankful for the person that figured it out here:
			// https://github.com/wjaguar/mtPaint/blob/master/src/png.c
			i := 0
			if d.h.Colormap[5] >= d.h.Colormap[4] {
				i = 1
			}
			idx = i * 2
			if d.h.Colormap[4+i] > 200 {
				idx++
			}
		}
		copy(pal[1:], cga4ColorPalettes[idx])
	default: // EGA
		for i := 0; i < len(pal)*3; i += 3 {
			pal[i/3] = color.RGBA{R: d.h.Colormap[i], G: d.h.Colormap[i+1], B: d.h.Colormap[i+2], A: 255}
		}
	}

	img := image.NewPaletted(d.bounds(), pal)
	buf := make([]byte, d.bytesPerScanline)
	mask := byte((1 << uint(bpp)) - 1)
	for y := 0; y < d.h.Height; y++ {
		if err := d.rleScanline(bufR, buf); err != nil {
			return img, err
		}
		shift := byte(8 - bpp)
		for x, o := 0, 0; x < d.h.Width; x++ {
			img.Pix[y*img.Stride+x] = (buf[o] >> shift) & mask
			if shift == 0 {
				o++
				shift = byte(8 - bpp)
			} else {
				shift -= byte(bpp)
			}
		}
	}

	return img, nil
}

func (d *decoder) decodePlanar() (image.Image, error) {
	nplanes := int(d.h.NPlanes)
	pal := make([]color.Color, 1<<uint(nplanes))
	for i := 0; i < len(pal)*3; i += 3 {
		pal[i/3] = color.RGBA{R: d.h.Colormap[i], G: d.h.Colormap[i+1], B: d.h.Colormap[i+2], A: 255}
	}
	img := image.NewPaletted(d.bounds(), pal)

	bufR := bufio.NewReader(d.r)
	bpl := int(d.h.BytesPerLine)
	buf := make([]byte, d.bytesPerScanline)
	for y := 0; y < d.h.Height; y++ {
		if err := d.rleScanline(bufR, buf); err != nil {
			return nil, err
		}
		for x := 0; x < d.h.Width; x++ {
			v := byte(0)
			for i := 0; i < nplanes; i++ {
				v = (v >> 1) | ((buf[bpl*i+(x/8)] << (uint(x) & 7)) & 0x80)
			}
			v >>= uint(8 - nplanes)
			img.Pix[y*img.Stride+x] = v
		}
	}
	return img, nil
}

// rleScanline expands exactly one scanline's worth of RLE data from
// bufR into out. Unlike rleDecode it consumes a stream and fails on
// truncation: the image.Decode surface stays strict while ReadFile
// applies the lenient whole-region policy.
func (d *decoder) rleScanline(bufR *bufio.Reader, out []byte) error {
	for off := 0; off < d.bytesPerScanline; {
		val, err := bufR.ReadByte()
		if err != nil {
			return err
		}
		run := 1
		if val >= 0xc0 {
			run = int(val & 0x3f)
			val, err = bufR.ReadByte()
			if err != nil {
				return err
			}
		}
		for i := 0; i < run; i++ {
			if off >= d.bytesPerScanline {
				return errors.New("pcx: RLE overrun")
			}
			if off < len(out) {
				out[off] = val
			}
			off++
		}
	}
	return nil
}
