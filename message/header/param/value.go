// Package param reads and writes parameterized field bodies such as those of
// Content-Type and Content-Disposition.
package param

import (
	"errors"
	"mime"
	"sort"
	"strings"
)

// Well known parameter names.
const (
	Charset  = "charset"  // Content-Type
	Boundary = "boundary" // Content-Type of multipart/*
	Filename = "filename" // Content-Disposition

	// Name is the older Content-Type spelling of Filename, still written by
	// some mail agents.
	Name = "name"
)

// Value is a parsed parameterized field body: a primary value, such as a media
// type or a presentation, followed by named parameters. Parameter names are
// case-insensitive and stored in lower case. A Value is never changed once
// built. Use Modify to derive a new one.
type Value struct {
	primary string
	params  map[string]string
}

// Parse reads a field body with mime.ParseMediaType, so RFC 2231 continuations
// and charsets in parameters are decoded. If only the parameters are broken,
// the primary value is returned without parameters together with
// mime.ErrInvalidMediaParameter.
func Parse(body string) (*Value, error) {
	primary, params, err := mime.ParseMediaType(body)
	switch {
	case errors.Is(err, mime.ErrInvalidMediaParameter):
		return &Value{primary: primary, params: map[string]string{}}, err
	case err != nil:
		return nil, err
	}
	return &Value{primary: primary, params: params}, nil
}

// New returns a Value with the given primary value and the parameters of every
// map, later maps overriding earlier ones.
func New(primary string, params ...map[string]string) *Value {
	pv := &Value{primary: primary, params: map[string]string{}}
	for _, m := range params {
		for name, v := range m {
			pv.params[strings.ToLower(name)] = v
		}
	}
	return pv
}

// Modifier changes a Value under construction by Modify.
type Modifier func(*Value)

// Change replaces the primary value.
func Change(primary string) Modifier {
	return func(pv *Value) { pv.primary = primary }
}

// Set sets a parameter.
func Set(name, v string) Modifier {
	return func(pv *Value) { pv.params[strings.ToLower(name)] = v }
}

// Delete removes a parameter.
func Delete(name string) Modifier {
	return func(pv *Value) { delete(pv.params, strings.ToLower(name)) }
}

// Modify returns a copy of pv with the modifiers applied in order.
//
//	ct, _ := param.Parse("multipart/mixed; boundary=abc123")
//	alt := param.Modify(ct, param.Change("multipart/alternative"))
func Modify(pv *Value, mods ...Modifier) *Value {
	c := pv.Clone()
	for _, mod := range mods {
		mod(c)
	}
	return c
}

// Clone returns a copy of pv that shares nothing with it.
func (pv *Value) Clone() *Value {
	params := make(map[string]string, len(pv.params))
	for name, v := range pv.params {
		params[name] = v
	}
	return &Value{primary: pv.primary, params: params}
}

// Value returns the primary value, the part before the first semicolon.
func (pv *Value) Value() string { return pv.primary }

// MediaType returns the primary value of a Content-Type, e.g. "text/plain".
func (pv *Value) MediaType() string { return pv.primary }

// Presentation returns the primary value of a Content-Disposition, e.g.
// "attachment".
func (pv *Value) Presentation() string { return pv.primary }

// Type returns the media type before the slash, or "" if there is no slash.
func (pv *Value) Type() string {
	t, _, found := strings.Cut(pv.primary, "/")
	if !found {
		return ""
	}
	return t
}

// Subtype returns the media type after the slash, or "" if there is no slash.
func (pv *Value) Subtype() string {
	_, sub, _ := strings.Cut(pv.primary, "/")
	return sub
}

// Parameters returns the parameters keyed by lower case name. The map belongs
// to the Value and must not be changed.
func (pv *Value) Parameters() map[string]string { return pv.params }

// Parameter returns the named parameter, or "" if it is not set.
func (pv *Value) Parameter(name string) string {
	return pv.params[strings.ToLower(name)]
}

// Charset returns the charset parameter.
func (pv *Value) Charset() string { return pv.params[Charset] }

// Boundary returns the boundary parameter.
func (pv *Value) Boundary() string { return pv.params[Boundary] }

// Filename returns the filename parameter.
func (pv *Value) Filename() string { return pv.params[Filename] }

// String formats the value with mime.FormatMediaType, which sorts parameters,
// quotes them as needed, and writes non-ASCII values with RFC 2231. A primary
// value that is not a valid token, which the parser may still accept from the
// wire, is written as is, with every parameter quoted.
func (pv *Value) String() string {
	if s := mime.FormatMediaType(pv.primary, pv.params); s != "" {
		return s
	}

	names := make([]string, 0, len(pv.params))
	for name := range pv.params {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(pv.primary)
	for _, name := range names {
		sb.WriteString("; " + name + `="`)
		sb.WriteString(strings.ReplaceAll(pv.params[name], `"`, `\"`))
		sb.WriteByte('"')
	}
	return sb.String()
}

// Bytes returns String as bytes.
func (pv *Value) Bytes() []byte {
	return []byte(pv.String())
}
