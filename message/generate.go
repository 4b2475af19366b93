package message

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/zostay/go-globalmail/message/header"
	"github.com/zostay/go-globalmail/message/header/field"
	"github.com/zostay/go-globalmail/message/policy"
	"github.com/zostay/go-globalmail/message/transfer"
)

// Generator writes messages to an io.Writer according to a policy. Unlike
// WriteTo, which reproduces a parsed message as it was read, the generator
// makes the output follow the policy: line separators, header encoding, line
// length, and transfer encodings are all chosen by the policy.
//
// The message is never modified. Where a header must change, such as to add a
// Content-Transfer-Encoding or a boundary, a copy of the header is written.
type Generator struct {
	w   *countingWriter
	pol *policy.Policy
	vf  *field.FoldEncoding
}

// countingWriter counts the bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// NewGenerator returns a Generator writing to w. A nil policy selects
// policy.Default.
func NewGenerator(w io.Writer, p *policy.Policy) *Generator {
	if p == nil {
		p = policy.Default
	}

	vf := field.DoNotFoldEncoding
	if max := p.MaxLineLength(); max > 0 {
		forced := field.DefaultForcedFoldLength
		if max > forced {
			forced = max
		}
		if fe, err := field.NewFoldEncoding(field.DefaultFoldIndent, max, forced); err == nil {
			vf = fe
		}
	}

	return &Generator{
		w:   &countingWriter{w: w},
		pol: p,
		vf:  vf,
	}
}

// Policy returns the policy of the generator.
func (g *Generator) Policy() *policy.Policy {
	return g.pol
}

// Flatten writes the message and returns the number of bytes written. The
// Unix-From line of the message, if any, is written first.
func (g *Generator) Flatten(msg Generic) (int64, error) {
	start := g.w.n
	err := g.flatten(msg, true)
	return g.w.n - start, err
}

// Generate writes the message according to the policy and returns the bytes.
// A nil policy selects policy.Default.
func Generate(msg Generic, p *policy.Policy) ([]byte, error) {
	buf := &bytes.Buffer{}
	_, err := NewGenerator(buf, p).Flatten(msg)
	return buf.Bytes(), err
}

func (g *Generator) eol() string {
	return g.pol.LineSeparator()
}

func (g *Generator) write(b []byte) error {
	_, err := g.w.Write(b)
	return err
}

func (g *Generator) writeString(s string) error {
	_, err := io.WriteString(g.w, s)
	return err
}

// lineLength is the line length for transfer encodings. A policy without a
// limit still gets the RFC 2045 limit.
func (g *Generator) lineLength() int {
	if max := g.pol.MaxLineLength(); max > 0 {
		return max
	}
	return transfer.DefaultLineLength
}

// nested returns a generator for a transfer encoded nested message, which may
// contain raw UTF-8 and 8bit content.
func (g *Generator) nested(w io.Writer) *Generator {
	p, err := g.pol.Clone(
		policy.WithAllowUTF8(true),
		policy.WithPreferredTransferEncoding(policy.Bit8),
	)
	if err != nil {
		p = g.pol
	}
	return NewGenerator(w, p)
}

func (g *Generator) flatten(msg Generic, top bool) error {
	switch m := msg.(type) {
	case *Opaque:
		return g.flattenOpaque(m, top)
	case *Multipart:
		return g.flattenMultipart(m, top)
	case *Encapsulated:
		return g.flattenEncapsulated(m, top)
	case nil:
		return nil
	}
	return fmt.Errorf("cannot generate message of type %T", msg)
}

// rawFits returns true if the parsed bytes of the field may be reused.
func (g *Generator) rawFits(raw *field.Raw) bool {
	if !g.pol.AllowUTF8() && raw.Is8Bit() {
		return false
	}

	if max := g.pol.MaxLineLength(); max > 0 {
		for _, line := range raw.Lines() {
			if len(line) > max {
				return false
			}
		}
	}

	return true
}

// writeField writes one header field, reusing the parsed bytes when they are
// compatible with the policy.
func (g *Generator) writeField(f *field.Field) error {
	if f.IsParsed() && g.rawFits(f.Raw) {
		for _, line := range f.Raw.Lines() {
			if err := g.write(line); err != nil {
				return err
			}
			if err := g.writeString(g.eol()); err != nil {
				return err
			}
		}
		return nil
	}

	body := f.Body()
	if !g.pol.AllowUTF8() {
		width := field.MaxEncodedWordLength
		if max := g.pol.MaxLineLength(); max > 0 {
			width = max - len(field.DefaultFoldIndent)
		}
		body = field.EncodeWordsWidth(body, width)
	}

	_, err := g.vf.Fold(g.w, []byte(f.Name()+": "+body), field.Break(g.eol()))
	return err
}

// writeHeader writes the header fields and the blank line after them.
func (g *Generator) writeHeader(h *header.Header, top bool) error {
	if top && h.UnixFrom() != "" {
		if err := g.writeString(h.UnixFrom() + g.eol()); err != nil {
			return err
		}
	}

	for _, f := range h.ListFields() {
		if err := g.writeField(f); err != nil {
			return err
		}
	}

	return g.writeString(g.eol())
}

// isLineOriented returns true if the line breaks of the content are text line
// breaks that may be converted to the policy line separator.
func isLineOriented(h *header.Header) bool {
	mt, err := h.GetMediaType()
	if err != nil || mt == "" {
		return true
	}
	return strings.HasPrefix(mt, "text/") || strings.HasPrefix(mt, "message/")
}

// hasLongLines returns true if any line in b is longer than the RFC 5322
// limit.
func hasLongLines(b []byte) bool {
	for _, line := range bytes.FieldsFunc(b, func(c rune) bool { return c == '\r' || c == '\n' }) {
		if len(line) > transfer.MaxLineLength {
			return true
		}
	}
	return false
}

func (g *Generator) flattenOpaque(m *Opaque, top bool) error {
	h := &m.Header
	cte, _ := h.GetTransferEncoding()
	cte = transfer.Normalize(cte)

	var content []byte
	if m.encoded {
		body, err := m.Body()
		if err != nil {
			return err
		}

		// encoded content is kept unless it breaks the policy
		if cte == transfer.Binary || !transfer.IsIdentity(cte) || !g.needsEncoding(body) {
			if err := g.writeHeader(h, top); err != nil {
				return err
			}
			if cte != transfer.Binary && (!transfer.IsIdentity(cte) || isLineOriented(h)) {
				body = header.Break(g.eol()).Normalize(body)
			}
			return g.write(body)
		}

		content = body
	} else {
		body, err := m.Body()
		if err != nil {
			return err
		}
		content = body
	}

	if transfer.IsIdentity(cte) && cte != transfer.Binary && g.needsEncoding(content) {
		cte = g.pol.EncodingFor8Bit()
		if !transfer.Is8Bit(content) {
			cte = transfer.QuotedPrintable
		}
		h = h.Clone()
		h.SetTransferEncoding(cte)
	}

	if cte != transfer.Binary && isLineOriented(h) {
		content = header.Break(g.eol()).Normalize(content)
	}

	if err := g.writeHeader(h, top); err != nil {
		return err
	}

	return g.write(transfer.Encode(cte, content, g.lineLength(), g.eol()))
}

// needsEncoding returns true if an identity encoding of b breaks the policy:
// 8-bit bytes when the policy does not allow them, or overly long lines.
func (g *Generator) needsEncoding(b []byte) bool {
	if transfer.Is8Bit(b) && !g.pol.Allows8Bit() {
		return true
	}
	return hasLongLines(b)
}

func (g *Generator) flattenMultipart(m *Multipart, top bool) error {
	h := &m.Header
	boundary, err := h.GetBoundary()
	if err != nil || boundary == "" {
		h = h.Clone()
		if _, err := h.GetMediaType(); err != nil {
			h.SetMediaType(DefaultMultipartContentType)
		}
		boundary = GenerateBoundary()
		if err := h.SetBoundary(boundary); err != nil {
			return err
		}
	}

	if err := g.writeHeader(h, top); err != nil {
		return err
	}

	eol := g.eol()
	if len(m.prefix) > 0 {
		if err := g.write(header.Break(eol).Normalize(m.prefix)); err != nil {
			return err
		}
	}

	for i, part := range m.parts {
		if i > 0 {
			if err := g.writeString(eol); err != nil {
				return err
			}
		}

		if err := g.writeString("--" + boundary + eol); err != nil {
			return err
		}

		if err := g.flatten(part, false); err != nil {
			return err
		}
	}

	if err := g.writeString(eol + "--" + boundary + "--"); err != nil {
		return err
	}

	if len(m.suffix) > 0 {
		return g.write(header.Break(eol).Normalize(m.suffix))
	}

	// a nested close delimiter is followed by the line break of the parent
	// delimiter
	if !top {
		return nil
	}
	return g.writeString(eol)
}

func (g *Generator) flattenEncapsulated(m *Encapsulated, top bool) error {
	h := &m.Header
	cte, _ := h.GetTransferEncoding()
	cte = transfer.Normalize(cte)

	if transfer.IsIdentity(cte) {
		if g.pol.AllowUTF8() || !IsUTF8Bearing(m.msg) {
			if err := g.writeHeader(h, top); err != nil {
				return err
			}
			return g.flatten(m.msg, false)
		}

		// a nested message with UTF-8 must travel as message/global in a
		// transfer encoding that is 7bit safe
		cte = g.pol.EncodingFor8Bit()
		h = h.Clone()
		h.SetMediaType("message/global")
		h.SetTransferEncoding(cte)
	}

	buf := &bytes.Buffer{}
	if err := g.nested(buf).flatten(m.msg, false); err != nil {
		return err
	}

	if err := g.writeHeader(h, top); err != nil {
		return err
	}

	return g.write(transfer.Encode(cte, buf.Bytes(), g.lineLength(), g.eol()))
}

// IsUTF8Bearing returns true if any header or body in the message contains
// bytes outside of 7-bit ASCII.
func IsUTF8Bearing(msg Generic) bool {
	if msg == nil {
		return false
	}

	h := msg.GetHeader()
	if !field.IsASCII(h.UnixFrom()) {
		return true
	}
	for _, f := range h.ListFields() {
		if !field.IsASCII(f.Name()) || !field.IsASCII(f.Body()) {
			return true
		}
		if f.IsParsed() && f.Raw.Is8Bit() {
			return true
		}
	}

	switch m := msg.(type) {
	case *Opaque:
		body, _ := m.Body()
		return transfer.Is8Bit(body)
	case *Multipart:
		if transfer.Is8Bit(m.prefix) || transfer.Is8Bit(m.suffix) {
			return true
		}
	}

	for _, part := range msg.GetParts() {
		if IsUTF8Bearing(part) {
			return true
		}
	}

	return false
}
