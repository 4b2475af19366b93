package message

import (
	"io"

	"github.com/zostay/go-globalmail/message/header"
)

// DefaultMultipartContentType is set on a *Multipart written without a
// Content-Type.
const DefaultMultipartContentType = "multipart/mixed"

// Multipart is a multipart/* message split into its parts.
type Multipart struct {
	header.Header

	// prefix is the preamble up to and including the line break before the
	// first delimiter. When nil, no opening delimiter is written.
	prefix []byte

	// suffix is the epilogue, starting with the line break after the closing
	// delimiter. When nil, no closing delimiter is written.
	suffix []byte

	parts   []Part
	defects []error
}

// NewMultipart returns a *Multipart of the given parts with an empty preamble
// and epilogue. A nil header starts empty. A boundary is chosen on write if
// the header lacks one.
func NewMultipart(h *header.Header, parts ...Part) *Multipart {
	mm := &Multipart{
		prefix: []byte{},
		suffix: []byte{},
		parts:  parts,
	}
	if h != nil {
		mm.Header = *h
	}
	return mm
}

// MultipartAlternative returns a multipart/alternative of the given parts.
func MultipartAlternative(parts ...Part) *Multipart {
	return newMultipartOf("multipart/alternative", parts)
}

// MultipartMixed returns a multipart/mixed of the given parts.
func MultipartMixed(parts ...Part) *Multipart {
	return newMultipartOf("multipart/mixed", parts)
}

func newMultipartOf(mediaType string, parts []Part) *Multipart {
	mm := NewMultipart(nil, parts...)
	mm.SetMediaType(mediaType)
	return mm
}

// ensureBoundary returns the boundary of the header, setting a generated one,
// and a Content-Type if there is none, when it is missing.
func (mm *Multipart) ensureBoundary() (string, error) {
	if b, err := mm.GetBoundary(); err == nil && b != "" {
		return b, nil
	}

	if _, err := mm.GetMediaType(); err != nil {
		mm.SetMediaType(DefaultMultipartContentType)
	}

	b := GenerateBoundary()
	if err := mm.SetBoundary(b); err != nil {
		return "", err
	}
	return b, nil
}

// WriteTo writes the header, preamble, parts, and epilogue, each part behind
// its delimiter. A missing boundary is generated and set on the header first.
func (mm *Multipart) WriteTo(w io.Writer) (int64, error) {
	boundary, err := mm.ensureBoundary()
	if err != nil {
		return 0, err
	}

	n, err := mm.Header.WriteTo(w)
	if err != nil {
		return n, err
	}

	bn, err := mm.writeBody(w, boundary, mm.Break())
	return n + bn, err
}

// writeBody writes everything after the header.
func (mm *Multipart) writeBody(w io.Writer, boundary string, lb header.Break) (int64, error) {
	cw := &countingWriter{w: w}
	delim := "--" + boundary

	if _, err := cw.Write(mm.prefix); err != nil {
		return cw.n, err
	}

	for i, part := range mm.parts {
		var open string
		switch {
		case i > 0:
			open = lb.String() + delim + lb.String()
		case mm.prefix != nil:
			open = delim + lb.String()
		}
		if _, err := io.WriteString(cw, open); err != nil {
			return cw.n, err
		}

		if _, err := part.WriteTo(cw); err != nil {
			return cw.n, err
		}
	}

	if mm.suffix != nil {
		if _, err := io.WriteString(cw, lb.String()+delim+"--"); err != nil {
			return cw.n, err
		}
	}

	_, err := cw.Write(mm.suffix)
	return cw.n, err
}

// IsMultipart returns true.
func (mm *Multipart) IsMultipart() bool { return true }

// IsEncoded returns false.
func (mm *Multipart) IsEncoded() bool { return false }

// GetHeader returns the header of the multipart itself.
func (mm *Multipart) GetHeader() *header.Header { return &mm.Header }

// GetReader returns nil.
func (mm *Multipart) GetReader() io.Reader { return nil }

// GetParts returns the parts in order.
func (mm *Multipart) GetParts() []Part { return mm.parts }

// Defects returns the delimiter problems found while parsing.
func (mm *Multipart) Defects() []error { return mm.defects }

// Preamble returns the bytes before the first delimiter, or nil if the body
// did not open with one.
func (mm *Multipart) Preamble() []byte { return mm.prefix }

// Epilogue returns the bytes after the closing delimiter, starting with the
// line break that ends it, or nil if there was no closing delimiter.
func (mm *Multipart) Epilogue() []byte { return mm.suffix }
