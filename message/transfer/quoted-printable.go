package transfer

import (
	"bytes"
	"fmt"
	"io"
)

// DefaultLineLength is the line length used by the quoted-printable encoder
// when no positive length is given. This is the limit set by RFC 2045.
const DefaultLineLength = 76

// minLineLength is the shortest line that can hold an escape and a soft break.
const minLineLength = 4

const upperhex = "0123456789ABCDEF"

// MalformedEscapeError is returned alongside the decoded bytes by
// DecodeQuotedPrintable when one or more "=" characters are not followed by
// two hex digits or a line break. The offending characters are passed through
// literally. This is a warning: the decoded bytes are complete.
type MalformedEscapeError struct {
	Offsets []int // positions of the bad "=" characters in the input
}

// Error returns the error message.
func (err *MalformedEscapeError) Error() string {
	return fmt.Sprintf("quoted-printable input contains %d malformed escape(s), first at offset %d", len(err.Offsets), err.Offsets[0])
}

// qpSafe reports whether the byte may appear literally in quoted-printable
// output.
func qpSafe(c byte) bool {
	return c == ' ' || c == '\t' || (c >= '!' && c <= '~' && c != '=')
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// qpTokens quotes every byte of the line, returning one token per input byte:
// either the byte itself or a three byte "=XX" escape.
func qpTokens(line []byte) [][]byte {
	toks := make([][]byte, len(line))
	for i, c := range line {
		if qpSafe(c) {
			toks[i] = []byte{c}
		} else {
			toks[i] = []byte{'=', upperhex[c>>4], upperhex[c&0x0f]}
		}
	}
	return toks
}

// EncodeQuotedPrintable encodes b as quoted-printable text. The input is
// broken into lines on eol, which is also used for every output line break,
// hard or soft. Any CR or LF that is not part of an eol sequence is escaped.
//
// No output line will be longer than maxLineLength. Soft breaks never split
// an "=XX" escape. A maxLineLength of 0 (or less) selects DefaultLineLength
// and anything shorter than 4 is raised to 4.
//
// A line ending in a space or tab is followed by a soft break, so the
// whitespace survives transports that strip trailing whitespace. Lines that
// need no escaping and fit within the limit are copied unchanged.
func EncodeQuotedPrintable(b []byte, maxLineLength int, eol string) []byte {
	if len(b) == 0 {
		return []byte{}
	}

	if maxLineLength <= 0 {
		maxLineLength = DefaultLineLength
	}
	if maxLineLength < minLineLength {
		maxLineLength = minLineLength
	}
	if eol == "" {
		eol = "\r\n"
	}

	out := &bytes.Buffer{}
	out.Grow(len(b) + len(b)/3)

	lines := bytes.Split(b, []byte(eol))
	for i, line := range lines {
		if i > 0 {
			out.WriteString(eol)
		}

		// the trailing empty element means b ended with eol
		if len(line) == 0 {
			continue
		}

		encodeQPLine(out, line, maxLineLength, eol)
	}

	return out.Bytes()
}

// encodeQPLine writes one quoted-printable encoded line to out without the
// terminating hard line break.
func encodeQPLine(out *bytes.Buffer, line []byte, maxLineLength int, eol string) {
	toks := qpTokens(line)

	trailingSpace := line[len(line)-1] == ' ' || line[len(line)-1] == '\t'

	// how much may remain on the final physical line
	limit := maxLineLength
	if trailingSpace {
		limit--
	}

	remaining := 0
	for _, t := range toks {
		remaining += len(t)
	}

	for remaining > limit {
		// leave room for the soft break marker
		room := maxLineLength - 1
		used := 0
		for len(toks) > 0 && used+len(toks[0]) <= room {
			out.Write(toks[0])
			used += len(toks[0])
			toks = toks[1:]
		}
		out.WriteByte('=')
		out.WriteString(eol)
		remaining -= used
	}

	for _, t := range toks {
		out.Write(t)
	}

	if trailingSpace {
		out.WriteByte('=')
		out.WriteString(eol)
	}
}

// lineBreakAt returns the length of the line break starting at b[i] or 0 if
// there is none. CRLF, LF, and a lone CR are all recognized.
func lineBreakAt(b []byte, i int) int {
	switch {
	case i >= len(b):
		return 0
	case b[i] == '\r' && i+1 < len(b) && b[i+1] == '\n':
		return 2
	case b[i] == '\r' || b[i] == '\n':
		return 1
	}
	return 0
}

// DecodeQuotedPrintable decodes quoted-printable text. It never fails to
// produce output. Soft line breaks ("=" at the end of a line, optionally
// followed by transport whitespace) are removed, "=XX" escapes are decoded
// (either case of hex digit is accepted), and whitespace at the end of an
// encoded line is dropped. Hard line breaks are kept exactly as found, so
// empty lines survive.
//
// If any "=" is followed by something other than two hex digits or a line
// break, it is passed through literally and a *MalformedEscapeError is
// returned together with the complete decoded result.
func DecodeQuotedPrintable(b []byte) ([]byte, error) {
	out := make([]byte, 0, len(b))
	var bad []int

	// pending holds literal whitespace that is only kept if the line goes on
	pending := 0
	flush := func(i int) {
		out = append(out, b[i-pending:i]...)
		pending = 0
	}

	for i := 0; i < len(b); {
		c := b[i]

		if n := lineBreakAt(b, i); n > 0 {
			// trailing whitespace before a hard break is transport padding
			pending = 0
			out = append(out, b[i:i+n]...)
			i += n
			continue
		}

		if c == ' ' || c == '\t' {
			pending++
			i++
			continue
		}

		flush(i)

		if c != '=' {
			out = append(out, c)
			i++
			continue
		}

		// a soft break: "=" then optional whitespace then a line break or
		// the end of input
		j := i + 1
		for j < len(b) && (b[j] == ' ' || b[j] == '\t') {
			j++
		}
		if j == len(b) {
			i = j
			continue
		}
		if n := lineBreakAt(b, j); n > 0 {
			i = j + n
			continue
		}

		if i+2 < len(b) && isHex(b[i+1]) && isHex(b[i+2]) {
			out = append(out, unhex(b[i+1])<<4|unhex(b[i+2]))
			i += 3
			continue
		}

		bad = append(bad, i)
		out = append(out, c)
		i++
	}

	if len(bad) > 0 {
		return out, &MalformedEscapeError{Offsets: bad}
	}
	return out, nil
}

// NewQuotedPrintableEncoder returns an io.WriteCloser that collects the bytes
// written to it and writes them quoted-printable encoded to w when closed.
// The Close method does not close w.
func NewQuotedPrintableEncoder(w io.Writer, maxLineLength int, eol string) io.WriteCloser {
	return newEncoder(w, func(b []byte) []byte {
		return EncodeQuotedPrintable(b, maxLineLength, eol)
	})
}

// NewQuotedPrintableDecoder returns an io.Reader that yields the
// quoted-printable decoded form of the bytes read from r. Malformed escapes
// are passed through without error.
func NewQuotedPrintableDecoder(r io.Reader) io.Reader {
	return newDecoder(r, DecodeQuotedPrintable)
}
