package field

import (
	"encoding/base64"
	"mime"
	"strings"
	"unicode/utf8"
)

// MaxEncodedWordLength is the longest encoded word RFC 2047 permits.
const MaxEncodedWordLength = 75

// Encode transforms a single header field body into a single RFC 2047 encoded
// word sequence. It will always output b-type (Base-64) encoding using UTF-8
// as the character set. ASCII bodies are returned unchanged.
func Encode(body string) string {
	return mime.BEncoding.Encode("utf-8", body)
}

// Decode transforms a single header field body and looks for MIME word encoded field
// values. When they are found, these are decoded into native unicode.
func Decode(body string) (string, error) {
	dec := &mime.WordDecoder{
		CharsetReader: CharsetDecoderToCharsetReader(CharsetDecoder),
	}

	if strings.Contains(body, "=?") {
		return dec.DecodeHeader(body)
	}

	return body, nil
}

// IsASCII returns true if the string contains only 7bit characters.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// EncodeWords encodes only the runs of words that contain non-ASCII text,
// leaving ASCII words readable. Adjacent non-ASCII words are encoded together
// with all the whitespace between them and any whitespace that follows the
// run, since whitespace between two encoded words is dropped when decoding.
// An ASCII body is returned unchanged.
func EncodeWords(body string) string {
	return EncodeWordsWidth(body, MaxEncodedWordLength)
}

// EncodeWordsWidth works like EncodeWords, but no encoded word is longer than
// width unless a single character cannot be encoded within it. Widths over
// MaxEncodedWordLength are lowered to it.
func EncodeWordsWidth(body string, width int) string {
	if IsASCII(body) {
		return body
	}

	words := strings.Split(body, " ")

	var out strings.Builder
	first := true
	sep := func() {
		if !first {
			out.WriteByte(' ')
		}
		first = false
	}

	run := make([]string, 0, len(words))
	flush := func() {
		if len(run) == 0 {
			return
		}
		sep()
		out.WriteString(encodeRun(strings.Join(run, " "), width))
		run = run[:0]
	}

	for _, w := range words {
		// an empty word is an extra space
		if !IsASCII(w) || (w == "" && len(run) > 0) {
			run = append(run, w)
			continue
		}

		flush()
		sep()
		out.WriteString(w)
	}
	flush()

	return out.String()
}

// encodeRun encodes s as a sequence of b-type encoded words, each no longer
// than width. Characters are never split between words.
func encodeRun(s string, width int) string {
	const prefix, suffix = "=?utf-8?b?", "?="

	if width > MaxEncodedWordLength {
		width = MaxEncodedWordLength
	}
	room := base64.StdEncoding.DecodedLen(width - len(prefix) - len(suffix))

	var out strings.Builder
	for len(s) > 0 {
		n := 0
		for n < len(s) {
			_, size := utf8.DecodeRuneInString(s[n:])
			if n > 0 && n+size > room {
				break
			}
			n += size
		}

		if out.Len() > 0 {
			out.WriteByte(' ')
		}
		out.WriteString(prefix)
		out.WriteString(base64.StdEncoding.EncodeToString([]byte(s[:n])))
		out.WriteString(suffix)
		s = s[n:]
	}
	return out.String()
}
