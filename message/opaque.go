package message

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/zostay/go-globalmail/message/header"
	"github.com/zostay/go-globalmail/message/header/field"
	"github.com/zostay/go-globalmail/message/header/param"
	"github.com/zostay/go-globalmail/message/transfer"
)

// DefaultCharset is the charset assumed for text without a charset parameter.
const DefaultCharset = "us-ascii"

// Opaque is a leaf part: a header and a body that is not split any further.
type Opaque struct {
	header.Header

	// body holds the content of the message.
	body []byte

	// rest holds the unread input of a header-only parse. It is read into body
	// the first time the content is needed.
	rest io.Reader

	// encoded is set while body still has its Content-Transfer-Encoding
	// applied, as after parsing without DecodeTransferEncoding.
	encoded bool

	// noSeparator is set when the parsed input had no blank line after the
	// header, so none is written back.
	noSeparator bool

	// defaultCharset is used by Text when the Content-Type has no charset.
	defaultCharset string

	defects []error
}

// NewOpaque returns an Opaque with the given header and decoded content. The
// content will be encoded according to the Content-Transfer-Encoding when it
// is written. The header may be nil.
func NewOpaque(h *header.Header, content []byte) *Opaque {
	m := &Opaque{body: content}
	if h != nil {
		m.Header = *h
	}
	return m
}

// NewOpaqueEncoded returns an Opaque with the given header and a body that
// already has the Content-Transfer-Encoding applied. The header may be nil.
func NewOpaqueEncoded(h *header.Header, body []byte) *Opaque {
	m := NewOpaque(h, body)
	m.encoded = true
	return m
}

// load reads the rest of a header-only parse into the body.
func (m *Opaque) load() error {
	if m.rest == nil {
		return nil
	}

	b, err := io.ReadAll(m.rest)
	m.body = b
	m.rest = nil
	if err != nil {
		err = fmt.Errorf("reading message body: %w", err)
		m.defects = append(m.defects, err)
	}
	return err
}

// Body returns the body exactly as held: encoded when IsEncoded() returns
// true, decoded otherwise.
func (m *Opaque) Body() ([]byte, error) {
	err := m.load()
	return m.body, err
}

// Content returns the body with the Content-Transfer-Encoding removed. If
// the encoded bytes were damaged, the best-effort decoding is returned along
// with a *CodecDecodeWarning.
func (m *Opaque) Content() ([]byte, error) {
	if err := m.load(); err != nil {
		return m.body, err
	}

	if !m.encoded {
		return m.body, nil
	}

	cte, err := m.GetTransferEncoding()
	if err != nil || transfer.IsIdentity(cte) {
		return m.body, nil
	}

	dec, err := transfer.Decode(cte, m.body)
	if err != nil {
		return dec, &CodecDecodeWarning{Encoding: transfer.Normalize(cte), Err: err}
	}
	return dec, nil
}

// SetContent replaces the body with the given decoded content. It will be
// encoded according to the Content-Transfer-Encoding when written.
func (m *Opaque) SetContent(content []byte) {
	m.rest = nil
	m.body = content
	m.encoded = false
}

// Charset returns the charset used to decode the content into text: the
// charset parameter of the Content-Type, or the default charset of the part.
func (m *Opaque) Charset() string {
	if cs, err := m.GetCharset(); err == nil && cs != "" {
		return cs
	}
	if m.defaultCharset != "" {
		return m.defaultCharset
	}
	return DefaultCharset
}

// Text returns the content decoded into a string using Charset(). If the
// charset is unknown or the bytes are not valid in it, the content bytes are
// returned unchanged as the string together with a *CharsetDecodeError.
func (m *Opaque) Text() (string, error) {
	content, err := m.Content()

	charset := m.Charset()
	s, cerr := field.CharsetDecoder(charset, content)
	if cerr != nil {
		return string(content), &CharsetDecodeError{Charset: charset, Err: cerr}
	}

	return s, err
}

// SetText encodes the string using Charset() and sets it as the content. The
// content is set even when some characters cannot be encoded, in which case
// the charset error is returned.
func (m *Opaque) SetText(s string) error {
	charset := m.Charset()
	b, err := field.CharsetEncoder(charset, s)
	if b == nil && err != nil {
		return &CharsetDecodeError{Charset: charset, Err: err}
	}

	m.SetContent(b)
	if err != nil {
		return &CharsetDecodeError{Charset: charset, Err: err}
	}
	return nil
}

// WriteTo writes the header and body as held. A body that is not encoded is
// given its Content-Transfer-Encoding on the way out. A part parsed without
// a blank line after its header is written back without one.
func (m *Opaque) WriteTo(w io.Writer) (int64, error) {
	writeHeader := m.Header.WriteTo
	if m.noSeparator {
		writeHeader = m.Header.WriteFieldsTo
	}

	cw := &countingWriter{w: w}
	if _, err := writeHeader(cw); err != nil {
		return cw.n, err
	}
	if err := m.load(); err != nil {
		return cw.n, err
	}

	body := m.body
	if !m.encoded && len(body) > 0 {
		cte, _ := m.GetTransferEncoding()
		body = transfer.Encode(cte, body, transfer.DefaultLineLength, m.Break().String())
	}

	_, err := cw.Write(body)
	return cw.n, err
}

// IsMultipart returns false.
func (m *Opaque) IsMultipart() bool { return false }

// IsEncoded reports whether the body still has its Content-Transfer-Encoding
// applied, in which case GetReader gives exactly the body WriteTo writes. An
// identity encoding such as 8bit leaves the bytes the same either way.
func (m *Opaque) IsEncoded() bool { return m.encoded }

// GetHeader returns the header of the part.
func (m *Opaque) GetHeader() *header.Header { return &m.Header }

// GetReader reads the body as held, or returns nil when it is empty.
func (m *Opaque) GetReader() io.Reader {
	_ = m.load()
	if len(m.body) == 0 {
		return nil
	}
	return bytes.NewReader(m.body)
}

// GetParts returns nil.
func (m *Opaque) GetParts() []Part { return nil }

// Defects returns the problems found while parsing this part.
func (m *Opaque) Defects() []error { return m.defects }

// AttachmentFile reads the file at path into an attachment named after its
// base name. See AttachmentBytes for the other arguments.
func AttachmentFile(path, mediaType, cte string) (*Opaque, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return AttachmentBytes(filepath.Base(path), b, mediaType, cte), nil
}

// AttachmentBytes returns an attachment holding the decoded content under
// the given filename. An empty mediaType is detected from the content, and
// a cte of transfer.None leaves Content-Transfer-Encoding unset.
func AttachmentBytes(filename string, content []byte, mediaType, cte string) *Opaque {
	m := NewOpaque(nil, content)

	if mediaType == "" {
		mediaType = mimetype.Detect(content).String()
	}
	if pv, err := param.Parse(mediaType); err == nil {
		m.SetContentType(pv)
	} else {
		m.SetMediaType(mediaType)
	}

	m.SetPresentation("attachment")
	_ = m.SetFilename(filename)

	if cte != transfer.None {
		m.SetTransferEncoding(cte)
	}
	return m
}
