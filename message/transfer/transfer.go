package transfer

import (
	"bytes"
	"io"
	"strings"

	"github.com/zostay/go-globalmail/message/header"
)

const (
	None            = ""                 // bytes will be left as-is
	Bit7            = "7bit"             // bytes will be left as-is
	Bit8            = "8bit"             // bytes will be left as-is
	Binary          = "binary"           // bytes will be left as-is
	QuotedPrintable = "quoted-printable" // bytes will be transformed between quoted-printable and binary data
	Base64          = "base64"           // bytes will be transformed between base64 and binary data
)

// Transcoding is a pair of functions that transform bytes to and from a
// transfer encoding.
type Transcoding struct {
	// Encode returns the encoded form of b. The lineLength and eol arguments
	// control line wrapping for encodings that wrap lines.
	Encode func(b []byte, lineLength int, eol string) []byte

	// Decode returns the decoded form of b. Decoding is total: a non-nil
	// error comes with the best-effort decoded bytes.
	Decode func(b []byte) ([]byte, error)
}

// AsIsTranscoder is just a shortcut to a no-op encoder/decoder.
var AsIsTranscoder = Transcoding{identity, identityDecode}

// Transcodings defines the supported Content-Transfer-Encodings and how to
// handle them. It can be modified to change the global handling of transfer
// encodings. Keys are lowercase.
var Transcodings = map[string]Transcoding{
	None:   AsIsTranscoder,
	Bit7:   AsIsTranscoder,
	Bit8:   AsIsTranscoder,
	Binary: AsIsTranscoder,
	QuotedPrintable: {
		EncodeQuotedPrintable,
		DecodeQuotedPrintable,
	},
	Base64: {
		func(b []byte, _ int, eol string) []byte { return EncodeBase64(b, eol) },
		DecodeBase64,
	},
}

// Normalize returns the canonical registry key for a header value: trimmed
// and lowercased.
func Normalize(cte string) string {
	return strings.ToLower(strings.TrimSpace(cte))
}

// IsIdentity returns true if the named transfer encoding leaves the bytes
// unchanged. Unknown encodings are treated as identity encodings.
func IsIdentity(cte string) bool {
	switch Normalize(cte) {
	case QuotedPrintable, Base64:
		return false
	}
	return true
}

// Lookup returns the Transcoding registered for the named encoding. Unknown
// encodings return AsIsTranscoder and false.
func Lookup(cte string) (Transcoding, bool) {
	tc, ok := Transcodings[Normalize(cte)]
	if !ok {
		return AsIsTranscoder, false
	}
	return tc, true
}

// Encode applies the named transfer encoding to b.
func Encode(cte string, b []byte, lineLength int, eol string) []byte {
	tc, _ := Lookup(cte)
	return tc.Encode(b, lineLength, eol)
}

// Decode removes the named transfer encoding from b.
func Decode(cte string, b []byte) ([]byte, error) {
	tc, _ := Lookup(cte)
	return tc.Decode(b)
}

// Is8Bit returns true if any byte in b has the high bit set.
func Is8Bit(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return true
		}
	}
	return false
}

// MaxLineLength is the longest line, not counting the line break, that RFC
// 5322 permits in a message.
const MaxLineLength = 998

// NeedsEncoding returns true if b cannot be sent with an identity encoding
// within a 7bit transport: it contains 8-bit bytes, NUL bytes, bare CR or LF
// characters that differ from the line breaks in use, or lines longer than
// maxLineLength. A maxLineLength of 0 selects MaxLineLength.
func NeedsEncoding(b []byte, maxLineLength int) bool {
	if maxLineLength <= 0 {
		maxLineLength = MaxLineLength
	}

	if Is8Bit(b) || bytes.IndexByte(b, 0) >= 0 {
		return true
	}

	for len(b) > 0 {
		ix := bytes.IndexAny(b, "\r\n")
		if ix < 0 {
			ix = len(b)
		}
		if ix > maxLineLength {
			return true
		}
		b = b[ix:]
		if n := lineBreakAt(b, 0); n > 0 {
			b = b[n:]
		}
	}

	return false
}

// NewEncoder returns an io.WriteCloser that applies the named transfer
// encoding to everything written and writes the result to w on Close.
func NewEncoder(cte string, w io.Writer, lineLength int, eol string) io.WriteCloser {
	if IsIdentity(cte) {
		return NewAsIsEncoder(w)
	}

	tc, _ := Lookup(cte)
	return newEncoder(w, func(b []byte) []byte {
		return tc.Encode(b, lineLength, eol)
	})
}

// NewDecoder returns an io.Reader that removes the named transfer encoding
// from the bytes read from r.
func NewDecoder(cte string, r io.Reader) io.Reader {
	if IsIdentity(cte) {
		return NewAsIsDecoder(r)
	}

	tc, _ := Lookup(cte)
	return newDecoder(r, tc.Decode)
}

// ApplyTransferEncoding is a helper that will check the given header to see if
// transfer encoding ought to be performed. It will return an io.WriteCloser
// that will write the encoding (or just pass data through if no encoding is
// necessary). Encoded lines are broken with the header's line break.
//
// You must call Close() on the returned io.WriteCloser when you are finished
// writing.
func ApplyTransferEncoding(h *header.Header, w io.Writer) io.WriteCloser {
	cte, err := h.GetTransferEncoding()
	if err != nil {
		return NewAsIsEncoder(w)
	}

	return NewEncoder(cte, w, DefaultLineLength, h.Break().String())
}

// ApplyTransferDecoding returns an io.Reader that will modify incoming bytes
// according to the transfer encoding detected from the given header. (Or the
// io.Reader will leave the bytes as is if there's no transfer encoding or the
// transfer encoding is one that is interpreted as-is).
func ApplyTransferDecoding(h *header.Header, r io.Reader) io.Reader {
	// multipart bodies never carry a transfer encoding of their own
	ct, err := h.GetContentType()
	if err == nil && ct != nil && ct.Type() == "multipart" {
		return r
	}

	cte, err := h.GetTransferEncoding()
	if err != nil {
		return r
	}

	return NewDecoder(cte, r)
}
