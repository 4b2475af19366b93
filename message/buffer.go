package message

import (
	"bytes"
	"errors"

	"github.com/zostay/go-globalmail/message/header"
)

// BufferMode is what a Buffer has been used for so far.
type BufferMode int

const (
	ModeUnset     BufferMode = iota // nothing written or added yet
	ModeSingle                      // content written with Write
	ModeMultipart                   // parts added with Add
)

var (
	// ErrPartsBuffer is the panic value of Write on a Buffer holding parts.
	ErrPartsBuffer = errors.New("message buffer is in parts mode")

	// ErrSingleBuffer is the panic value of Add on a Buffer holding content.
	ErrSingleBuffer = errors.New("message buffer is in single part mode")

	// ErrModeUnset is the panic value of Opaque and Multipart on an unused
	// Buffer.
	ErrModeUnset = errors.New("no message has been built")

	// ErrParsesAsNotMultipart is returned by Multipart when the written
	// content does not split into parts.
	ErrParsesAsNotMultipart = errors.New("cannot parse non-multipart message as multipart")
)

// defaultPartsCapacity is the room made for parts when none is given.
const defaultPartsCapacity = 10

// Buffer builds a message. Set fields on its Header, then either Write the
// decoded content of a single part or Add parts, and finish with Opaque or
// Multipart. The first Write or Add fixes the mode. Using the other one
// afterwards panics.
//
//	var buf message.Buffer
//	buf.SetSubject("Grüße")
//	buf.SetMediaType("text/plain")
//	buf.SetCharset("utf-8")
//	_, _ = buf.Write([]byte("Hallo, Welt!\n"))
//	msg := buf.Opaque()
type Buffer struct {
	header.Header
	parts []Part
	buf   *bytes.Buffer
}

// Mode returns how the Buffer has been used.
func (b *Buffer) Mode() BufferMode {
	switch {
	case b.parts != nil:
		return ModeMultipart
	case b.buf != nil:
		return ModeSingle
	}
	return ModeUnset
}

// SetSingle selects ModeSingle, so an empty body can be built.
func (b *Buffer) SetSingle() {
	must(b.single())
}

// SetMultipart selects ModeMultipart with room for capacity parts, so a
// multipart with no parts can be built.
func (b *Buffer) SetMultipart(capacity int) {
	must(b.multipart(capacity))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func (b *Buffer) single() error {
	if b.parts != nil {
		return ErrPartsBuffer
	}
	if b.buf == nil {
		b.buf = &bytes.Buffer{}
	}
	return nil
}

func (b *Buffer) multipart(capacity int) error {
	if b.buf != nil {
		return ErrSingleBuffer
	}
	if b.parts == nil {
		if capacity <= 0 {
			capacity = defaultPartsCapacity
		}
		b.parts = make([]Part, 0, capacity)
	}
	return nil
}

// Add appends parts.
func (b *Buffer) Add(msgs ...Part) {
	must(b.multipart(0))
	b.parts = append(b.parts, msgs...)
}

// Write appends decoded content.
func (b *Buffer) Write(p []byte) (int, error) {
	must(b.single())
	return b.buf.Write(p)
}

// multipartHeader sets DefaultMultipartContentType and a generated boundary
// where they are missing and returns the boundary.
func (b *Buffer) multipartHeader() string {
	if _, err := b.GetMediaType(); errors.Is(err, header.ErrNoSuchField) {
		b.SetMediaType(DefaultMultipartContentType)
	}

	boundary, err := b.GetBoundary()
	if errors.Is(err, header.ErrNoSuchFieldParameter) {
		boundary = GenerateBoundary()
		_ = b.SetBoundary(boundary)
	}
	return boundary
}

// Opaque returns the message as an *Opaque.
//
// In ModeSingle the written bytes are the content, to be encoded as the
// Content-Transfer-Encoding says when the message is written. In
// ModeMultipart the parts are written out between delimiters as the
// content, and the header gets a Content-Type and boundary if it lacks them.
func (b *Buffer) Opaque() *Opaque {
	switch b.Mode() {
	case ModeSingle:
		return NewOpaque(&b.Header, b.buf.Bytes())

	case ModeMultipart:
		boundary := b.multipartHeader()

		var body bytes.Buffer
		if len(b.parts) > 0 {
			mm := NewMultipart(nil, b.parts...)
			_, _ = mm.writeBody(&body, boundary, b.Break())
		}
		return NewOpaqueEncoded(&b.Header, body.Bytes())
	}

	panic(ErrModeUnset)
}

// OpaqueAlreadyEncoded is Opaque for content that was written already
// transfer encoded.
func (b *Buffer) OpaqueAlreadyEncoded() *Opaque {
	msg := b.Opaque()
	msg.encoded = true
	return msg
}

// Multipart returns the message as a *Multipart, giving the header a
// Content-Type and boundary if it lacks them.
//
// In ModeMultipart the added parts are used. In ModeSingle the written bytes
// are parsed as a multipart body, one level deep. Content that does not
// split into parts is ErrParsesAsNotMultipart.
func (b *Buffer) Multipart() (*Multipart, error) {
	b.multipartHeader()

	switch b.Mode() {
	case ModeMultipart:
		return NewMultipart(&b.Header, b.parts...), nil

	case ModeSingle:
		pr := newParser([]ParseOption{WithoutRecursion()})
		msg, err := pr.parse(NewOpaqueEncoded(&b.Header, b.buf.Bytes()), 0, false)
		if mm, ok := msg.(*Multipart); ok {
			return mm, err
		}
		if err == nil {
			err = ErrParsesAsNotMultipart
		}
		return nil, err
	}

	panic(ErrModeUnset)
}
