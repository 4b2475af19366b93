package field

// Field is a single header field. The Base holds the logical name and decoded
// body. The Raw, when present, holds the original wire bytes the field was
// parsed from. Changing the name or body drops the Raw, so a modified field
// is always rendered from its logical value.
type Field struct {
	Base
	*Raw
}

// New constructs a new field with no original value.
func New(name, body string) *Field {
	return &Field{
		Base: Base{name, body},
	}
}

// Name returns the logical name of the field.
func (f *Field) Name() string {
	return f.Base.Name()
}

// SetName changes the name of the field and forgets the original wire form.
func (f *Field) SetName(name string) {
	f.Raw = nil
	f.Base.SetName(name)
}

// Body returns the decoded body of the field.
func (f *Field) Body() string {
	return f.Base.Body()
}

// SetBody changes the body of the field and forgets the original wire form.
func (f *Field) SetBody(body string) {
	f.Raw = nil
	f.Base.SetBody(body)
}

// IsParsed returns true if the field still carries the wire bytes it was
// parsed from.
func (f *Field) IsParsed() bool {
	return f.Raw != nil
}

// SetRaw replaces the original wire form without touching the logical name
// or body. Use with care: the two are expected to agree.
func (f *Field) SetRaw(raw []byte) {
	colon := len(raw)
	for i, c := range raw {
		if c == ':' {
			colon = i
			break
		}
	}
	f.Raw = &Raw{raw, colon}
}

// String returns the original wire form when present and the 7bit safe
// rendering of the logical value otherwise.
func (f *Field) String() string {
	if f.Raw != nil {
		return f.Raw.String()
	}
	return f.Base.String()
}

// Bytes is String as a slice of bytes.
func (f *Field) Bytes() []byte {
	if f.Raw != nil {
		return f.Raw.Bytes()
	}
	return f.Base.Bytes()
}

// Clone returns a copy of the field. The Raw is immutable and shared.
func (f *Field) Clone() *Field {
	return &Field{
		Base: f.Base,
		Raw:  f.Raw,
	}
}
