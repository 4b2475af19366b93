package header

import (
	"errors"
	"mime"

	"github.com/zostay/go-globalmail/message/header/param"
)

// GetParamValue parses the named field as a param.Value. The result is cached
// until the field changes, and a copy is returned each time.
//
// It returns ErrNoSuchField or ErrManyFields unless the field appears exactly
// once. When only the parameters are malformed, the primary value is returned
// with mime.ErrInvalidMediaParameter.
func (h *Header) GetParamValue(name string) (*param.Value, error) {
	if v, ok := h.getValue(name); ok {
		if pv, isParam := v.(*param.Value); isParam {
			return pv.Clone(), nil
		}
	}

	body, err := h.Get(name)
	if err != nil {
		return nil, err
	}

	pv, err := param.Parse(body)
	if err != nil {
		// a malformed value is returned but never cached
		if errors.Is(err, mime.ErrInvalidMediaParameter) {
			return pv, err
		}
		return nil, err
	}

	h.setValue(name, pv)
	return pv.Clone(), nil
}

// SetParamValue replaces every field with the given name with one holding pv.
func (h *Header) SetParamValue(name string, pv *param.Value) {
	h.Set(name, pv.String())
	h.setValue(name, pv.Clone())
}

// paramField is the name of a field whose body is a param.Value.
type paramField string

// primary returns the value before the parameters.
func (f paramField) primary(h *Header) (string, error) {
	pv, err := h.GetParamValue(string(f))
	if pv == nil {
		return "", err
	}
	return pv.Value(), err
}

// setPrimary changes the value before the parameters, keeping the parameters
// of the first such field and dropping any duplicate fields. The field is
// created when missing or unreadable.
func (f paramField) setPrimary(h *Header, v string) {
	name := string(f)
	ixs := h.GetIndexesNamed(name)
	for i := len(ixs) - 1; i > 0; i-- {
		_ = h.DeleteField(ixs[i])
	}
	h.forget(name)

	pv, err := h.GetParamValue(name)
	if err != nil {
		h.SetParamValue(name, param.New(v))
		return
	}
	h.SetParamValue(name, param.Modify(pv, param.Change(v)))
}

// param returns a parameter. A missing parameter is ErrNoSuchFieldParameter.
func (f paramField) param(h *Header, p string) (string, error) {
	pv, err := h.GetParamValue(string(f))
	if err != nil {
		return "", err
	}
	if v := pv.Parameter(p); v != "" {
		return v, nil
	}
	return "", ErrNoSuchFieldParameter
}

// setParam sets a parameter on a field that must already exist.
func (f paramField) setParam(h *Header, p, v string) error {
	pv, err := h.GetParamValue(string(f))
	if err != nil {
		return err
	}
	h.SetParamValue(string(f), param.Modify(pv, param.Set(p, v)))
	return nil
}

const (
	contentType        paramField = ContentType
	contentDisposition paramField = ContentDisposition
)

// GetContentType returns the Content-Type field as a param.Value.
func (h *Header) GetContentType() (*param.Value, error) {
	return h.GetParamValue(ContentType)
}

// SetContentType replaces the Content-Type field.
func (h *Header) SetContentType(pv *param.Value) {
	h.SetParamValue(ContentType, pv)
}

// GetMediaType returns the media type of the Content-Type field without its
// parameters.
func (h *Header) GetMediaType() (string, error) {
	return contentType.primary(h)
}

// SetMediaType sets the media type of the Content-Type field, creating the
// field if needed and keeping any parameters it has.
func (h *Header) SetMediaType(mt string) {
	contentType.setPrimary(h, mt)
}

// GetCharset returns the charset parameter of the Content-Type field. It
// returns ErrNoSuchField without the field and ErrNoSuchFieldParameter without
// the parameter.
func (h *Header) GetCharset() (string, error) {
	return contentType.param(h, param.Charset)
}

// SetCharset sets the charset parameter of an existing Content-Type field.
func (h *Header) SetCharset(charset string) error {
	return contentType.setParam(h, param.Charset, charset)
}

// GetBoundary returns the boundary parameter of the Content-Type field. It
// returns ErrNoSuchField without the field and ErrNoSuchFieldParameter without
// the parameter.
func (h *Header) GetBoundary() (string, error) {
	return contentType.param(h, param.Boundary)
}

// SetBoundary sets the boundary parameter of an existing Content-Type field.
func (h *Header) SetBoundary(boundary string) error {
	return contentType.setParam(h, param.Boundary, boundary)
}

// GetContentDisposition returns the Content-Disposition field as a
// param.Value.
func (h *Header) GetContentDisposition() (*param.Value, error) {
	return h.GetParamValue(ContentDisposition)
}

// SetContentDisposition replaces the Content-Disposition field.
func (h *Header) SetContentDisposition(pv *param.Value) {
	h.SetParamValue(ContentDisposition, pv)
}

// GetPresentation returns "inline", "attachment", or whatever else the
// Content-Disposition field names.
func (h *Header) GetPresentation() (string, error) {
	return contentDisposition.primary(h)
}

// SetPresentation sets the presentation of the Content-Disposition field,
// creating the field if needed and keeping any parameters it has.
func (h *Header) SetPresentation(presentation string) {
	contentDisposition.setPrimary(h, presentation)
}

// GetFilename returns the filename parameter of the Content-Disposition field.
// Without one, the name parameter of the Content-Type field is used, as older
// mail agents write it there. The errors are those of the Content-Disposition
// lookup.
func (h *Header) GetFilename() (string, error) {
	fn, err := contentDisposition.param(h, param.Filename)
	if err == nil {
		return fn, nil
	}

	if name, nerr := contentType.param(h, param.Name); nerr == nil {
		return name, nil
	}
	return "", err
}

// SetFilename sets the filename parameter of an existing Content-Disposition
// field.
func (h *Header) SetFilename(filename string) error {
	return contentDisposition.setParam(h, param.Filename, filename)
}
