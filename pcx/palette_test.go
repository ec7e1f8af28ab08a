package pcx

import (
	"bytes"
	"io"
	"testing"
)

// streamOnly hides the io.Seeker of the underlying reader so readTail
// takes the rolling-window path.
type streamOnly struct {
	r io.Reader
}

func (s *streamOnly) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func minimalPaletteFile() []byte {
	// Header plus palette tail, no pixel data.
	return append(testHeader(8, 1, 4, 4, 1), testPaletteTail()...)
}

func TestReadPaletteSignature(t *testing.T) {
	data := minimalPaletteFile()
	p := ReadPalette(bytes.NewReader(data), int64(len(data)), false)
	if p == nil {
		t.Fatal("no palette found")
	}
	if p.Source != PaletteSignature {
		t.Errorf("Source = %v, want PaletteSignature", p.Source)
	}
	for i, e := range p.Entries {
		want := RGB{R: byte(i), G: byte(255 - i), B: byte(i) ^ 0x55}
		if e != want {
			t.Fatalf("entry %d = %+v, want %+v", i, e, want)
		}
	}
}

func TestReadPaletteBadSignature(t *testing.T) {
	data := minimalPaletteFile()
	data[HeaderSize] = 0x0b
	if p := ReadPalette(bytes.NewReader(data), int64(len(data)), false); p != nil {
		t.Errorf("palette found despite bad signature (source %v)", p.Source)
	}
}

func TestReadPaletteHeuristic(t *testing.T) {
	data := minimalPaletteFile()
	data[HeaderSize] = 0x00 // corrupt the signature

	p := ReadPalette(bytes.NewReader(data), int64(len(data)), true)
	if p == nil {
		t.Fatal("heuristic mode rejected a plausible palette")
	}
	if p.Source != PaletteHeuristic {
		t.Errorf("Source = %v, want PaletteHeuristic", p.Source)
	}
	if p.Entries[1] != (RGB{R: 1, G: 254, B: 0x54}) {
		t.Errorf("entry 1 = %+v", p.Entries[1])
	}
}

func TestReadPaletteHeuristicRejectsDegenerate(t *testing.T) {
	base := testHeader(8, 1, 4, 4, 1)

	// All-zero tail.
	data := append(append([]byte{}, base...), make([]byte, 1+PaletteSize)...)
	if ReadPalette(bytes.NewReader(data), int64(len(data)), true) != nil {
		t.Error("heuristic accepted an all-zero tail")
	}

	// Exactly 3 distinct values is still too few.
	tail := make([]byte, 1+PaletteSize)
	for i := range tail {
		tail[i] = byte(i % 3)
	}
	data = append(append([]byte{}, base...), tail...)
	if ReadPalette(bytes.NewReader(data), int64(len(data)), true) != nil {
		t.Error("heuristic accepted a 3-value tail")
	}
}

func TestReadPaletteFileTooShort(t *testing.T) {
	data := minimalPaletteFile()[:HeaderSize+paletteTailSize-1]
	if ReadPalette(bytes.NewReader(data), int64(len(data)), false) != nil {
		t.Error("palette found in undersized file")
	}
}

func TestReadTailStrategiesAgree(t *testing.T) {
	// A file larger than the chunk size exercises several window
	// slides; both strategies must return the same bytes.
	data := make([]byte, 3*tailChunkSize+517)
	for i := range data {
		data[i] = byte(i * 31)
	}

	seeked, err := readTail(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	streamed, err := readTail(&streamOnly{r: bytes.NewReader(data)}, int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(seeked, streamed) {
		t.Error("seek and rolling-window strategies disagree")
	}
	if want := data[len(data)-paletteTailSize:]; !bytes.Equal(seeked, want) {
		t.Error("tail bytes wrong")
	}
}

func TestReadTailShortStream(t *testing.T) {
	// Declared size promises a tail the stream cannot deliver.
	data := make([]byte, 100)
	if _, err := readTail(&streamOnly{r: bytes.NewReader(data)}, 2000); err == nil {
		t.Error("short stream yielded a tail")
	}
}
