package message

import (
	"bytes"
	"io"

	"github.com/zostay/go-globalmail/message/header"
	"github.com/zostay/go-globalmail/message/transfer"
)

// Encapsulated is a message/* part, such as message/rfc822 or message/global,
// whose body is a complete message of its own. That nested message is the one
// and only sub-part.
//
// A message/global part may carry a Content-Transfer-Encoding of base64 or
// quoted-printable. When parsed, the nested message is read from the decoded
// bytes.
type Encapsulated struct {
	// Header is the header of the part, not of the nested message.
	header.Header

	// msg is the nested message.
	msg Generic

	// raw holds the transfer encoded body as it was parsed. It is only kept
	// for non-identity encodings, so WriteTo can reproduce it.
	raw []byte

	defects []error
}

// NewEncapsulated returns a part with the given header carrying msg as its
// content. The header should set a message/* Content-Type. The header may be
// nil. See Embed for a constructor that builds the header as well.
func NewEncapsulated(h *header.Header, msg Generic) *Encapsulated {
	m := &Encapsulated{msg: msg}
	if h != nil {
		m.Header = *h
	}
	return m
}

// Message returns the nested message.
func (m *Encapsulated) Message() Generic {
	return m.msg
}

// SetMessage replaces the nested message.
func (m *Encapsulated) SetMessage(msg Generic) {
	m.msg = msg
	m.raw = nil
}

// WriteTo writes the header of the part followed by the nested message. If the
// part has a non-identity Content-Transfer-Encoding, the nested message is
// written encoded. A parsed part that was transfer encoded is written with
// its original bytes. Call SetMessage after changing the nested message to
// have the encoding applied afresh.
func (m *Encapsulated) WriteTo(w io.Writer) (int64, error) {
	total, err := m.Header.WriteTo(w)
	if err != nil {
		return total, err
	}

	if m.raw != nil {
		n, err := w.Write(m.raw)
		return total + int64(n), err
	}

	if m.msg == nil {
		return total, nil
	}

	cte, _ := m.GetTransferEncoding()
	if transfer.IsIdentity(cte) {
		n, err := m.msg.WriteTo(w)
		return total + n, err
	}

	buf := &bytes.Buffer{}
	if _, err := m.msg.WriteTo(buf); err != nil {
		return total, err
	}

	enc := transfer.Encode(cte, buf.Bytes(), transfer.DefaultLineLength, m.Break().String())
	n, err := w.Write(enc)
	return total + int64(n), err
}

// IsMultipart always returns true. The nested message is the only sub-part.
func (m *Encapsulated) IsMultipart() bool {
	return true
}

// IsEncoded always returns false.
func (m *Encapsulated) IsEncoded() bool {
	return false
}

// GetHeader returns the header of the part.
func (m *Encapsulated) GetHeader() *header.Header {
	return &m.Header
}

// GetReader always returns nil.
func (m *Encapsulated) GetReader() io.Reader {
	return nil
}

// GetParts returns a slice holding the nested message.
func (m *Encapsulated) GetParts() []Part {
	if m.msg == nil {
		return nil
	}
	return []Part{m.msg}
}

// Defects returns the problems found while parsing the part.
func (m *Encapsulated) Defects() []error {
	return m.defects
}
