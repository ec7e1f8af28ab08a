package pcx

// rleDecode expands a PCX run-length encoded byte stream. A byte with the
// top two bits set is a run marker whose low six bits give the repeat
// count (1-63) for the byte that follows; any other byte passes through
// literally.
//
// A run marker at the very end of data with no value byte after it is
// dropped and decoding stops there. Files written by buggy tooling are
// often short by a byte or two, and the pixels decoded up to that point
// are still worth returning. truncated reports whether that happened.
func rleDecode(data []byte) (out []byte, truncated bool) {
	// Runs average well above 1 byte; len(data) is a safe lower bound.
	out = make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b < 0xc0 {
			out = append(out, b)
			continue
		}
		count := int(b & 0x3f)
		i++
		if i >= len(data) {
			return out, true
		}
		val := data[i]
		for j := 0; j < count; j++ {
			out = append(out, val)
		}
	}
	return out, false
}
