package transfer

import "io"

// NewAsIsEncoder returns an io.WriteCloser that writes bytes as-is. Closing it
// does not close w.
func NewAsIsEncoder(w io.Writer) io.WriteCloser {
	return asIs{w}
}

// NewAsIsDecoder returns an io.Reader that reads bytes as-is.
func NewAsIsDecoder(r io.Reader) io.Reader {
	return r
}

// identity is the Encode half of the identity Transcoding.
func identity(b []byte, _ int, _ string) []byte {
	return b
}

// identityDecode is the Decode half of the identity Transcoding.
func identityDecode(b []byte) ([]byte, error) {
	return b, nil
}
