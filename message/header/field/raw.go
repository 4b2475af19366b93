package field

import "bytes"

// Raw holds the wire bytes of a header field exactly as they were parsed,
// folding included, but without the final line break. Objects of this type
// are immutable.
type Raw struct {
	field []byte // complete raw field
	colon int    // the index of the colon
}

// String returns the Raw as a string.
func (f *Raw) String() string {
	return string(f.field)
}

// Bytes returns the Raw.
func (f *Raw) Bytes() []byte {
	return f.field
}

// Name returns the name part of the Raw. Please note that the value returned
// may be folded.
func (f *Raw) Name() string {
	return string(f.field[:f.colon])
}

// Body returns the body part of the Raw. Please note that the value returned
// may be folded.
func (f *Raw) Body() string {
	off := 1
	if f.colon == len(f.field) {
		off = 0
	}
	return string(f.field[f.colon+off:])
}

// Lines returns the physical lines of the raw field, split on any style of
// line break, without their terminators.
func (f *Raw) Lines() [][]byte {
	lines := make([][]byte, 0, 2)
	rest := f.field
	for {
		ix := bytes.IndexAny(rest, "\r\n")
		if ix < 0 {
			return append(lines, rest)
		}
		lines = append(lines, rest[:ix])
		n := 1
		if rest[ix] == '\r' && ix+1 < len(rest) && rest[ix+1] == '\n' {
			n = 2
		}
		rest = rest[ix+n:]
	}
}

// Is8Bit returns true if any byte in the raw field has the high bit set.
func (f *Raw) Is8Bit() bool {
	for _, c := range f.field {
		if c >= 0x80 {
			return true
		}
	}
	return false
}
