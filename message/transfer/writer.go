package transfer

import (
	"bytes"
	"errors"
	"io"
)

// encoder buffers everything written to it and writes the transformed bytes
// to the nested io.Writer on Close. Every encoding in this package needs to
// see whole lines, so buffering is the simplest correct approach.
type encoder struct {
	w      io.Writer
	buf    bytes.Buffer
	encode func([]byte) []byte
	closed bool
}

func newEncoder(w io.Writer, encode func([]byte) []byte) *encoder {
	return &encoder{w: w, encode: encode}
}

// Write buffers the bytes for encoding.
func (e *encoder) Write(p []byte) (int, error) {
	if e.closed {
		return 0, io.ErrClosedPipe
	}
	return e.buf.Write(p)
}

// Close encodes the buffered bytes and writes them out. Calling Close more
// than once is a no-op.
func (e *encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	_, err := e.w.Write(e.encode(e.buf.Bytes()))
	return err
}

// decoder reads all the input on the first call to Read and then serves the
// decoded bytes.
type decoder struct {
	r      io.Reader
	decode func([]byte) ([]byte, error)
	out    *bytes.Reader
	err    error
}

func newDecoder(r io.Reader, decode func([]byte) ([]byte, error)) *decoder {
	return &decoder{r: r, decode: decode}
}

// Read returns decoded bytes. Recoverable decode warnings are dropped. Any
// other decode error is returned once the decoded bytes are exhausted.
func (d *decoder) Read(p []byte) (int, error) {
	if d.out == nil {
		in, err := io.ReadAll(d.r)
		if err != nil {
			return 0, err
		}

		dec, err := d.decode(in)
		var warn *MalformedEscapeError
		if err != nil && !errors.As(err, &warn) {
			d.err = err
		}
		d.out = bytes.NewReader(dec)
	}

	n, err := d.out.Read(p)
	if errors.Is(err, io.EOF) && d.err != nil {
		return n, d.err
	}
	return n, err
}

// asIs passes writes straight through and never closes the nested writer.
type asIs struct {
	io.Writer
}

// Close is a no-op.
func (asIs) Close() error {
	return nil
}
