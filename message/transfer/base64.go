package transfer

import (
	"bytes"
	"encoding/base64"
	"io"
)

// Base64LineLength is the number of encoded characters written per line by
// EncodeBase64.
const Base64LineLength = 76

// EncodeBase64 encodes b using standard base64 and breaks the output into
// lines of Base64LineLength characters. Every line, including the last, is
// terminated with eol. Empty input produces empty output.
func EncodeBase64(b []byte, eol string) []byte {
	if len(b) == 0 {
		return []byte{}
	}
	if eol == "" {
		eol = "\r\n"
	}

	enc := make([]byte, base64.StdEncoding.EncodedLen(len(b)))
	base64.StdEncoding.Encode(enc, b)

	out := &bytes.Buffer{}
	out.Grow(len(enc) + (len(enc)/Base64LineLength+1)*len(eol))
	for len(enc) > 0 {
		n := Base64LineLength
		if n > len(enc) {
			n = len(enc)
		}
		out.Write(enc[:n])
		out.WriteString(eol)
		enc = enc[n:]
	}

	return out.Bytes()
}

// DecodeBase64 decodes base64 text. Line breaks and other whitespace are
// ignored and missing or surplus padding is tolerated. If the input contains
// characters outside the base64 alphabet, those are skipped and the error is
// returned together with everything that could be decoded.
func DecodeBase64(b []byte) ([]byte, error) {
	clean := make([]byte, 0, len(b))
	var badErr error
	for i, c := range b {
		switch {
		case c == '\r' || c == '\n' || c == ' ' || c == '\t':
		case c == '=':
			// padding is recomputed below
		case (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') || c == '+' || c == '/':
			clean = append(clean, c)
		default:
			if badErr == nil {
				badErr = base64.CorruptInputError(i)
			}
		}
	}

	// a single leftover sextet cannot encode a byte
	if len(clean)%4 == 1 {
		clean = clean[:len(clean)-1]
		if badErr == nil {
			badErr = base64.CorruptInputError(len(b))
		}
	}

	out := make([]byte, base64.RawStdEncoding.DecodedLen(len(clean)))
	n, err := base64.RawStdEncoding.Decode(out, clean)
	if err != nil && badErr == nil {
		badErr = err
	}

	return out[:n], badErr
}

// NewBase64Encoder returns an io.WriteCloser that collects the bytes written
// to it and writes them base64 encoded to w when closed. The Close method does
// not close w.
func NewBase64Encoder(w io.Writer, eol string) io.WriteCloser {
	return newEncoder(w, func(b []byte) []byte {
		return EncodeBase64(b, eol)
	})
}

// NewBase64Decoder returns an io.Reader that yields the base64 decoded form of
// the bytes read from r.
func NewBase64Decoder(r io.Reader) io.Reader {
	return newDecoder(r, DecodeBase64)
}
