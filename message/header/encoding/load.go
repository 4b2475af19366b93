// Package encoding teaches field.CharsetEncoder and field.CharsetDecoder every
// charset in the IANA MIME index of golang.org/x/text, at the cost of a much
// larger binary. Import it for its side effect:
//
//	import _ "github.com/zostay/go-globalmail/message/header/encoding"
package encoding

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	_ "golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/zostay/go-globalmail/message/header/field"
)

func init() {
	field.CharsetEncoder = CharsetEncoder
	field.CharsetDecoder = CharsetDecoder
}

// utf8Labels are left to the field package defaults, which treat text
// labeled us-ascii as UTF-8.
var utf8Labels = []string{"", "us-ascii", "ascii", "utf-8", "utf8"}

func isUTF8Label(charset string) bool {
	for _, l := range utf8Labels {
		if strings.EqualFold(charset, l) {
			return true
		}
	}
	return false
}

func lookup(charset string) (encoding.Encoding, error) {
	e, err := ianaindex.MIME.Encoding(charset)
	switch {
	case err != nil:
		return nil, fmt.Errorf("%w: %v", field.ErrUnsupportedCharset, err)
	case e == nil:
		return nil, fmt.Errorf("%w: no encoding found for charset %q", field.ErrUnsupportedCharset, charset)
	}
	return e, nil
}

// CharsetEncoder encodes s to any charset of the IANA MIME index.
func CharsetEncoder(charset, s string) ([]byte, error) {
	if isUTF8Label(charset) {
		return field.DefaultCharsetEncoder(charset, s)
	}

	e, err := lookup(charset)
	if err != nil {
		return nil, err
	}

	out, err := e.NewEncoder().String(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", field.ErrInvalidBytes, err)
	}
	return []byte(out), nil
}

// CharsetDecoder decodes b from any charset of the IANA MIME index. Bytes
// that are invalid in the charset are returned unchanged with
// field.ErrInvalidBytes.
func CharsetDecoder(charset string, b []byte) (string, error) {
	if isUTF8Label(charset) {
		return field.DefaultCharsetDecoder(charset, b)
	}

	e, err := lookup(charset)
	if err != nil {
		return "", err
	}

	out, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return string(b), fmt.Errorf("%w: %v", field.ErrInvalidBytes, err)
	}
	return string(out), nil
}
