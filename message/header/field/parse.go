package field

import (
	"bytes"
)

// BadStartError holds the lines found before the first field of a header.
type BadStartError struct {
	BadStart []byte
}

func (err *BadStartError) Error() string {
	return "header starts with text that does not appear to be a header"
}

// Line is one field as read, continuation lines and line breaks included.
type Line []byte

// Lines is a header split into fields.
type Lines []Line

// startsField reports whether a header line begins a new field: it must not
// begin with whitespace and must hold a colon.
func startsField(line []byte) bool {
	return line[0] != ' ' && line[0] != '\t' && bytes.IndexByte(line, ':') >= 0
}

// ParseLines splits a header into fields. Any line that does not start a
// field continues the one before it. Lines before the first field are
// returned in a *BadStartError along with the fields, which are still
// usable.
func ParseLines(m, lb []byte) (Lines, error) {
	fields := make(Lines, 0, len(m)/80+1)
	var bad []byte
	for _, line := range bytes.SplitAfter(m, lb) {
		switch {
		case len(line) == 0:
		case startsField(line):
			fields = append(fields, line)
		case len(fields) == 0:
			bad = append(bad, line...)
		default:
			fields[len(fields)-1] = append(fields[len(fields)-1], line...)
		}
	}

	if bad != nil {
		return fields, &BadStartError{BadStart: bad}
	}
	return fields, nil
}

// Parse reads one field from its Line. The name is everything before the
// first colon, or the whole line without one. The body is unfolded, trimmed,
// and has its encoded words decoded unless they are broken. Raw UTF-8 is
// kept. The original bytes are kept for writing the field back unchanged.
func Parse(f Line, lb []byte) *Field {
	raw := bytes.TrimSuffix(f, lb)

	colon := bytes.IndexByte(raw, ':')
	nameEnd, bodyStart := colon, colon+1
	if colon < 0 {
		nameEnd, bodyStart = len(raw), len(raw)
	}

	name := string(bytes.TrimSpace(DefaultFoldEncoding.Unfold(raw[:nameEnd])))
	body := string(bytes.TrimSpace(DefaultFoldEncoding.Unfold(raw[bodyStart:])))
	if dec, err := Decode(body); err == nil {
		body = dec
	}

	return &Field{
		Base: Base{name, body},
		Raw:  &Raw{raw, nameEnd},
	}
}
