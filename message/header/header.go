package header

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

var (
	// ErrNoSuchField means the named field is not in the header.
	ErrNoSuchField = errors.New("no such header field")

	// ErrNoSuchFieldParameter means the field is present but lacks the
	// requested parameter.
	ErrNoSuchFieldParameter = errors.New("no such header field parameter")

	// ErrManyFields means a field expected once appears more than once. The
	// value of the first is still returned.
	ErrManyFields = errors.New("many header fields found")

	// ErrWrongAddressType is returned when an address setter is given
	// something other than a string or an addr.Address.
	ErrWrongAddressType = errors.New("incorrect address type during write")
)

// Field names from RFC 5322 and RFC 2045.
const (
	Bcc                     = "Bcc"
	Cc                      = "Cc"
	Comments                = "Comments"
	ContentDescription      = "Content-Description"
	ContentDisposition      = "Content-Disposition"
	ContentID               = "Content-ID"
	ContentTransferEncoding = "Content-Transfer-Encoding"
	ContentType             = "Content-Type"
	Date                    = "Date"
	From                    = "From"
	InReplyTo               = "In-Reply-To"
	Keywords                = "Keywords"
	MessageID               = "Message-ID"
	MIMEVersion             = "MIME-Version"
	Received                = "Received"
	References              = "References"
	ReplyTo                 = "Reply-To"
	Sender                  = "Sender"
	Subject                 = "Subject"
	To                      = "To"
)

// Header is an ordered list of fields with typed accessors for the common
// ones. Values parsed out of field bodies, such as dates and address lists,
// are cached per field name and dropped once the bodies change.
//
// Getters for fields that should appear once return ErrNoSuchField when the
// field is missing and ErrManyFields, with the first value, when it repeats.
type Header struct {
	Base

	unixFrom string // "From ..." envelope line, no line break
	cache    map[string]cached
}

// cached is a parsed value and the bodies it came from. The value is shared,
// so getters hand out copies of anything mutable.
type cached struct {
	bodies []string
	value  any
}

// Clone returns a copy of the header that can be changed independently.
func (h *Header) Clone() *Header {
	c := &Header{
		Base:     *h.Base.Clone(),
		unixFrom: h.unixFrom,
	}
	if len(h.cache) > 0 {
		c.cache = make(map[string]cached, len(h.cache))
		for k, v := range h.cache {
			c.cache[k] = v
		}
	}
	return c
}

// UnixFrom returns the mbox envelope line read before the first field,
// beginning with "From " and without its line break, or "".
func (h *Header) UnixFrom() string { return h.unixFrom }

// SetUnixFrom sets the envelope line written before the first field. An
// empty line removes it.
func (h *Header) SetUnixFrom(line string) { h.unixFrom = line }

func cacheKey(name string) string { return strings.ToLower(name) }

// getValue returns the cached value for name if the bodies of the field have
// not changed since it was stored.
func (h *Header) getValue(name string) (any, bool) {
	c, ok := h.cache[cacheKey(name)]
	if !ok {
		return nil, false
	}

	now := h.GetAll(name)
	if len(now) != len(c.bodies) {
		return nil, false
	}
	for i, b := range now {
		if b != c.bodies[i] {
			return nil, false
		}
	}
	return c.value, true
}

func (h *Header) setValue(name string, value any) {
	if h.cache == nil {
		h.cache = map[string]cached{}
	}
	h.cache[cacheKey(name)] = cached{bodies: h.GetAll(name), value: value}
}

func (h *Header) forget(name string) {
	delete(h.cache, cacheKey(name))
}

// Get returns the body of the named field.
func (h *Header) Get(name string) (string, error) {
	ixs := h.GetIndexesNamed(name)
	switch len(ixs) {
	case 0:
		return "", ErrNoSuchField
	case 1:
		return h.GetField(ixs[0]).Body(), nil
	default:
		return h.GetField(ixs[0]).Body(), ErrManyFields
	}
}

// GetAll returns the body of every field with the given name in header
// order. It returns an empty, non-nil slice when there are none.
func (h *Header) GetAll(name string) []string {
	bodies := []string{}
	for _, f := range h.GetAllFieldsNamed(name) {
		bodies = append(bodies, f.Body())
	}
	return bodies
}

// Add appends a field after all others, keeping any with the same name.
func (h *Header) Add(name, body string) {
	h.forget(name)
	h.InsertBeforeField(h.Len(), name, body)
}

// Delete removes every field with the given name and returns how many there
// were.
func (h *Header) Delete(name string) int {
	return h.truncate(name, h.GetIndexesNamed(name), 0)
}

// truncate deletes the fields at ixs[keep:].
func (h *Header) truncate(name string, ixs []int, keep int) int {
	h.forget(name)
	removed := 0
	for i := len(ixs) - 1; i >= keep; i-- {
		if h.DeleteField(ixs[i]) == nil {
			removed++
		}
	}
	return removed
}

// SetAll makes the named field appear once per body. Existing fields are
// reused in place, in order, before new ones are appended, and any left over
// are deleted.
func (h *Header) SetAll(name string, bodies ...string) {
	ixs := h.GetIndexesNamed(name)
	for i, b := range bodies {
		if i >= len(ixs) {
			h.InsertBeforeField(h.Len(), name, b)
			continue
		}
		f := h.GetField(ixs[i])
		f.SetName(name)
		f.SetBody(b)
	}
	h.truncate(name, ixs, len(bodies))
}

// Set makes the named field appear exactly once with the given body, in the
// position of the first existing one or at the end. The body is kept as
// given, including any UTF-8. Encoding it for the wire is left to the
// generator.
func (h *Header) Set(name, body string) {
	h.SetAll(name, body)
}

// WriteFieldsTo writes the envelope line, if any, and the fields, but not the
// blank line ending the header.
func (h *Header) WriteFieldsTo(w io.Writer) (int64, error) {
	var total int64
	if h.unixFrom != "" {
		n, err := io.WriteString(w, h.unixFrom)
		total += int64(n)
		if err == nil {
			n, err = w.Write(h.Break().Bytes())
			total += int64(n)
		}
		if err != nil {
			return total, err
		}
	}

	n, err := h.Base.WriteFieldsTo(w)
	return total + n, err
}

// WriteTo writes the header including the blank line that ends it.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	n, err := h.WriteFieldsTo(w)
	if err != nil {
		return n, err
	}
	m, err := w.Write(h.Break().Bytes())
	return n + int64(m), err
}

// Bytes returns what WriteTo writes.
func (h *Header) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = h.WriteTo(&buf)
	return buf.Bytes()
}

func (h *Header) String() string {
	return string(h.Bytes())
}
