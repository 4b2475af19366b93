package header

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/zostay/go-globalmail/message/header/field"
)

// ErrIndexOutOfRange is returned for a field index outside the header.
var ErrIndexOutOfRange = errors.New("header field index is out of range")

// Base is the ordered list of fields behind a Header, duplicates included,
// with the line break and fold encoding WriteTo uses. Field names match
// case-insensitively.
type Base struct {
	lbr    Break
	vf     *field.FoldEncoding
	fields []*field.Field
}

// Clone returns a copy of h whose fields are copies too.
func (h *Base) Clone() *Base {
	c := &Base{lbr: h.lbr, vf: h.vf, fields: make([]*field.Field, len(h.fields))}
	for i, f := range h.fields {
		c.fields[i] = f.Clone()
	}
	return c
}

// FoldEncoding returns the fold encoding for WriteTo, which is
// field.DefaultFoldEncoding unless set.
func (h *Base) FoldEncoding() *field.FoldEncoding {
	if h.vf == nil {
		return field.DefaultFoldEncoding
	}
	return h.vf
}

// SetFoldEncoding sets the fold encoding for WriteTo.
func (h *Base) SetFoldEncoding(vf *field.FoldEncoding) { h.vf = vf }

// Break returns the line break ending each field and the header, which is
// LF unless set. A parsed header keeps the break of its input.
func (h *Base) Break() Break {
	if h.lbr == "" {
		return LF
	}
	return h.lbr
}

// SetBreak sets the line break.
func (h *Base) SetBreak(lbr Break) { h.lbr = lbr }

// Len returns the number of fields.
func (h *Base) Len() int { return len(h.fields) }

// GetField returns the field at index n, or nil.
func (h *Base) GetField(n int) *field.Field {
	if n < 0 || n >= len(h.fields) {
		return nil
	}
	return h.fields[n]
}

// named calls fn with the index and field of each field with the given name
// until fn returns false.
func (h *Base) named(name string, fn func(int, *field.Field) bool) {
	for i, f := range h.fields {
		if strings.EqualFold(f.Name(), name) && !fn(i, f) {
			return
		}
	}
}

// GetFieldNamed returns the nth field with the given name, counting from 0,
// or nil.
func (h *Base) GetFieldNamed(name string, n int) *field.Field {
	var found *field.Field
	h.named(name, func(_ int, f *field.Field) bool {
		if n == 0 {
			found = f
			return false
		}
		n--
		return true
	})
	return found
}

// GetAllFieldsNamed returns the fields with the given name in order.
func (h *Base) GetAllFieldsNamed(name string) []*field.Field {
	fs := []*field.Field{}
	h.named(name, func(_ int, f *field.Field) bool {
		fs = append(fs, f)
		return true
	})
	return fs
}

// GetIndexesNamed returns the indexes of the fields with the given name.
func (h *Base) GetIndexesNamed(name string) []int {
	ixs := []int{}
	h.named(name, func(i int, _ *field.Field) bool {
		ixs = append(ixs, i)
		return true
	})
	return ixs
}

// ListFields returns the fields. The slice is a copy but the fields are
// shared.
func (h *Base) ListFields() []*field.Field {
	return slices.Clone(h.fields)
}

// InsertBeforeField inserts a new field at index n. Out of range indexes
// are clamped, so Len appends.
func (h *Base) InsertBeforeField(n int, name, body string) {
	h.InsertField(n, field.New(name, body))
}

// InsertField inserts f at index n, clamped like InsertBeforeField.
func (h *Base) InsertField(n int, f *field.Field) {
	n = min(max(n, 0), len(h.fields))
	h.fields = slices.Insert(h.fields, n, f)
}

// ClearFields removes every field.
func (h *Base) ClearFields() {
	h.fields = h.fields[:0]
}

// DeleteField removes the field at index n.
func (h *Base) DeleteField(n int) error {
	if n < 0 || n >= len(h.fields) {
		return ErrIndexOutOfRange
	}
	h.fields = slices.Delete(h.fields, n, n+1)
	return nil
}

// WriteFieldsTo folds each field and writes it with the line break after
// it. A parsed field that was not changed is written with its original
// bytes. The blank line ending the header is left out.
func (h *Base) WriteFieldsTo(w io.Writer) (int64, error) {
	vf, lb := h.FoldEncoding(), field.Break(h.Break().Bytes())

	var total int64
	for _, f := range h.fields {
		n, err := vf.Fold(w, f.Bytes(), lb)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteTo writes the fields and the blank line ending the header.
func (h *Base) WriteTo(w io.Writer) (int64, error) {
	n, err := h.WriteFieldsTo(w)
	if err != nil {
		return n, err
	}
	m, err := w.Write(h.Break().Bytes())
	return n + int64(m), err
}

// Bytes returns what WriteTo writes.
func (h *Base) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = h.WriteTo(&buf)
	return buf.Bytes()
}

func (h *Base) String() string {
	return string(h.Bytes())
}
