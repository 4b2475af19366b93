package header

// Break is a line break. The generator writes only these three, and they are
// the only line separators a policy may select.
type Break string

const (
	CRLF Break = "\r\n"
	LF   Break = "\n"
	CR   Break = "\r"
)

// String returns the break as a string.
func (b Break) String() string {
	return string(b)
}

// Bytes returns the break as a slice of bytes.
func (b Break) Bytes() []byte {
	return []byte(b)
}

// DetectBreak returns the style of the first line break in buf, or LF if buf
// has none.
func DetectBreak(buf []byte) Break {
	for i, c := range buf {
		switch c {
		case '\n':
			return LF
		case '\r':
			if i+1 < len(buf) && buf[i+1] == '\n' {
				return CRLF
			}
			return CR
		}
	}
	return LF
}

// Normalize returns a copy of buf with every CRLF, LF, and lone CR replaced by
// b.
func (b Break) Normalize(buf []byte) []byte {
	out := make([]byte, 0, len(buf))
	for i := 0; i < len(buf); i++ {
		switch buf[i] {
		case '\r':
			if i+1 < len(buf) && buf[i+1] == '\n' {
				i++
			}
			out = append(out, b...)
		case '\n':
			out = append(out, b...)
		default:
			out = append(out, buf[i])
		}
	}
	return out
}
