package pcx

import (
	"fmt"
	"image"
	"image/color"
)

// grayRamp is the palette attached to indexed images decoded from files
// that carry no usable palette, so the indices remain viewable.
func grayRamp() color.Palette {
	pal := make(color.Palette, 256)
	for i := range pal {
		pal[i] = color.Gray{Y: uint8(i)}
	}
	return pal
}

// Assemble reshapes a decoded byte buffer into a row-major
// image.Paletted for the 8bpp single-plane layout. Each source row is
// BytesPerLine bytes of which the first Width are pixel indices; the
// stride padding is dropped. When pal is nil the image gets a gray ramp
// so the indices stay viewable.
//
// A short buffer is not an error: assembly stops at the first
// incomplete row and the rows finished so far are kept. rows reports
// how many rows were recovered; rows < h.Height means a partial image.
//
// Assemble returns ErrUnsupportedFormat for layouts it does not
// reconstruct and ErrImageDataEmpty when decoded holds less than one
// row; callers that only want best-effort results can ignore the error
// and keep whatever image came back.
func Assemble(h *Header, decoded []byte, pal *Palette) (img *image.Paletted, rows int, err error) {
	if !h.IsIndexed() {
		return nil, 0, fmt.Errorf("%w: %d planes at %d bpp", ErrUnsupportedFormat, h.NPlanes, h.BitsPerPixel)
	}
	bpl := int(h.BytesPerLine)
	if bpl < h.Width {
		// Rows would overlap.
		return nil, 0, fmt.Errorf("%w: %d bytes/line for width %d", ErrUnsupportedFormat, bpl, h.Width)
	}

	rows = len(decoded) / bpl
	if rows > h.Height {
		rows = h.Height
	}
	if rows == 0 {
		return nil, 0, ErrImageDataEmpty
	}

	colors := grayRamp()
	if pal != nil {
		colors = pal.Colors()
	}
	img = image.NewPaletted(image.Rect(0, 0, h.Width, h.Height), colors)
	for r := 0; r < rows; r++ {
		copy(img.Pix[r*img.Stride:r*img.Stride+h.Width], decoded[r*bpl:r*bpl+h.Width])
	}
	return img, rows, nil
}
