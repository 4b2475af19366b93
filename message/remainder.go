package message

import "io"

// remainder is the body of a header-only parse: the bytes that were read past
// the end of the header, followed by whatever the input still holds.
type remainder struct {
	head []byte
	r    io.Reader
}

// Read returns the bytes already read first and then reads from the input.
func (r *remainder) Read(p []byte) (int, error) {
	n := copy(p, r.head)
	r.head = r.head[n:]
	if n == len(p) {
		return n, nil
	}

	rn, err := r.r.Read(p[n:])
	return n + rn, err
}

