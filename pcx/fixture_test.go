package pcx

// The repository ships no binary test images; every test synthesizes a
// real PCX byte stream with the helpers below (header, RLE-packed pixel
// data, extended palette tail).

type rleBuffer struct {
	b []byte
	n int
	c byte
}

func (r *rleBuffer) put(b byte) {
	if r.n == 0 {
		r.c = b
		r.n = 1
	} else if r.n != 0 {
		if b == r.c && r.n != 63 {
			r.n++
			return
		}
		if r.n != 1 || r.c >= 0xc0 {
			r.b = append(r.b, 0xc0|byte(r.n))
		}
		r.b = append(r.b, r.c)
		r.c = b
		r.n = 1
	}
}

func (r *rleBuffer) flush() []byte {
	if r.n != 0 {
		if r.n != 1 || r.c >= 0xc0 {
			r.b = append(r.b, 0xc0|byte(r.n))
		}
		r.b = append(r.b, r.c)
	}
	r.n = 0
	return r.b
}

// rlePack run-length encodes data the way PC Paintbrush does.
func rlePack(data []byte) []byte {
	rb := &rleBuffer{}
	for _, b := range data {
		rb.put(b)
	}
	return rb.flush()
}

// testHeader builds a 128-byte version 5 RLE header for a window
// starting at (0,0).
func testHeader(bpp, nplanes, bytesPerLine, width, height int) []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = magic
	buf[1] = 5 // version
	buf[2] = 1 // RLE
	buf[3] = byte(bpp)
	buf[8] = byte((width - 1) & 0xff)
	buf[9] = byte((width - 1) >> 8)
	buf[10] = byte((height - 1) & 0xff)
	buf[11] = byte((height - 1) >> 8)
	buf[12] = 72 // hDPI
	buf[14] = 72 // vDPI
	buf[65] = byte(nplanes)
	buf[66] = byte(bytesPerLine & 0xff)
	buf[67] = byte(bytesPerLine >> 8)
	buf[68] = 1 // Color/BW
	return buf
}

// testPaletteTail builds the trailing signature + 768-byte palette.
// Entry i is (i, 255-i, i^0x55), distinct enough to catch channel or
// index mixups.
func testPaletteTail() []byte {
	tail := make([]byte, 1+PaletteSize)
	tail[0] = paletteMagic
	for i := 0; i < 256; i++ {
		tail[1+i*3] = byte(i)
		tail[2+i*3] = byte(255 - i)
		tail[3+i*3] = byte(i) ^ 0x55
	}
	return tail
}

// testIndexedPcx assembles a complete 8bpp single-plane file from raw
// (unpacked) rows. Rows shorter than bytesPerLine are zero-padded to the
// stride before packing.
func testIndexedPcx(width, height, bytesPerLine int, rows [][]byte, withPalette bool) []byte {
	out := testHeader(8, 1, bytesPerLine, width, height)
	for _, row := range rows {
		line := make([]byte, bytesPerLine)
		copy(line, row)
		out = append(out, rlePack(line)...)
	}
	if withPalette {
		out = append(out, testPaletteTail()...)
	}
	return out
}
