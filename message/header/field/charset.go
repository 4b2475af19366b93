package field

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Errors returned by the default charset encoder and decoder.
var (
	// ErrUnsupportedCharset is returned when the charset is not one the
	// decoder or encoder knows about. Import the encoding package to install
	// a complete charset registry.
	ErrUnsupportedCharset = errors.New("unsupported byte encoding")

	// ErrInvalidBytes is returned when the input cannot be represented in the
	// named charset. Encoders still produce output with substitutions. Decoders
	// return the input bytes unchanged.
	ErrInvalidBytes = errors.New("input is not valid in the charset")
)

// substitute is the ASCII SUB control character, used for characters that
// cannot be encoded.
const substitute = '\x1a'

// CharsetEncoder is the function used to encode strings into byte slices of
// the named charset. It may be replaced to add support for more charsets.
var CharsetEncoder = DefaultCharsetEncoder

// CharsetDecoder is the function used to decode byte slices of the named
// charset into strings. It may be replaced to add support for more charsets.
var CharsetDecoder = DefaultCharsetDecoder

func normalizeCharset(charset string) string {
	return strings.ToLower(strings.TrimSpace(charset))
}

// DefaultCharsetEncoder knows how to encode us-ascii, utf-8, and latin1. The
// us-ascii and latin1 encodings replace characters they cannot represent with
// the SUB character and return ErrInvalidBytes. The empty charset is treated
// as us-ascii.
func DefaultCharsetEncoder(charset, s string) ([]byte, error) {
	switch normalizeCharset(charset) {
	case "utf-8", "utf8":
		return []byte(s), nil
	case "", "us-ascii", "ascii":
		return narrow(s, 0x7f)
	case "iso-8859-1", "latin1", "latin-1":
		return narrow(s, 0xff)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedCharset, charset)
}

func narrow(s string, max rune) ([]byte, error) {
	var err error
	out := make([]byte, 0, len(s))
	for _, c := range s {
		if c > max {
			out = append(out, substitute)
			err = ErrInvalidBytes
			continue
		}
		out = append(out, byte(c))
	}
	return out, err
}

// DefaultCharsetDecoder knows how to decode us-ascii, utf-8, and latin1. The
// empty charset is treated as us-ascii. Bytes labeled us-ascii that form valid
// UTF-8 are accepted, as is common since RFC 6532. Invalid input is returned
// as is, together with ErrInvalidBytes.
func DefaultCharsetDecoder(charset string, b []byte) (string, error) {
	switch normalizeCharset(charset) {
	case "utf-8", "utf8", "", "us-ascii", "ascii":
		if utf8.Valid(b) {
			return string(b), nil
		}
		return string(b), ErrInvalidBytes
	case "iso-8859-1", "latin1", "latin-1":
		rs := make([]rune, len(b))
		for i, c := range b {
			rs[i] = rune(c)
		}
		return string(rs), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCharset, charset)
}

// CharsetDecoderToCharsetReader adapts a charset decoder function into the
// CharsetReader function used by mime.WordDecoder.
func CharsetDecoderToCharsetReader(
	decoder func(string, []byte) (string, error),
) func(string, io.Reader) (io.Reader, error) {
	return func(charset string, input io.Reader) (io.Reader, error) {
		in, err := io.ReadAll(input)
		if err != nil {
			return nil, err
		}

		out, err := decoder(charset, in)
		if err != nil {
			return nil, err
		}

		return strings.NewReader(out), nil
	}
}
