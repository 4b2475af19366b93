package field

// Base holds the logical name and body of a header field. The body is the
// decoded Unicode value: encoded words have been decoded and raw UTF-8 is
// kept as-is.
type Base struct {
	name string
	body string
}

// Name returns the name of the header field.
func (f *Base) Name() string {
	return f.name
}

// SetName updates the name of the header field.
func (f *Base) SetName(name string) {
	f.name = name
}

// Body returns the value of the header field as a string.
func (f *Base) Body() string {
	return f.body
}

// SetBody updates the body of the header field.
func (f *Base) SetBody(body string) {
	f.body = body
}

// String returns the complete header field as a string in 7bit safe form:
// any non-ASCII words in the body are written as RFC 2047 encoded words.
func (f *Base) String() string {
	return f.name + ": " + EncodeWords(f.body)
}

// Bytes returns the complete header field as a slice of bytes.
func (f *Base) Bytes() []byte {
	return []byte(f.String())
}
