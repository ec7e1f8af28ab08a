package pcx

import "errors"

var (
	// ErrHeaderTooShort is returned when fewer than 128 bytes are available
	// for the fixed PCX header. Nothing after the header can be trusted.
	ErrHeaderTooShort = errors.New("pcx: file too short for 128-byte header")

	// ErrHeaderUnpack is returned when the 128-byte header is structurally
	// malformed (bad magic or impossible geometry).
	ErrHeaderUnpack = errors.New("pcx: malformed header")

	// ErrNoPalette reports that no trailing 256-color palette was found.
	// Files without an extended palette are valid; callers usually treat
	// this as an absent palette rather than a failure.
	ErrNoPalette = errors.New("pcx: no extended palette")

	// ErrImageDataEmpty reports that the file contains no pixel data
	// between the header and the palette tail.
	ErrImageDataEmpty = errors.New("pcx: empty image data region")

	// ErrUnsupportedFormat reports a plane/bit-depth combination the
	// assembler does not reconstruct. Raw decoded bytes are still
	// available to the caller.
	ErrUnsupportedFormat = errors.New("pcx: unsupported pixel format")
)

// A FormatError reports that the input is not a valid PCX.
type FormatError string

func (e FormatError) Error() string {
	return "pcx: invalid format: " + string(e)
}

// An UnsupportedError reports that the variant of the PCX file is not supported.
type UnsupportedError string

func (e UnsupportedError) Error() string {
	return "pcx: unsupported variant: " + string(e)
}
