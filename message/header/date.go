package header

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrInvalidDate is returned when a date field body cannot be read as a date
// in any of the formats ParseDate knows.
var ErrInvalidDate = errors.New("invalid date")

// DateLayout is the RFC 5322 date-time layout used when writing dates.
const DateLayout = time.RFC1123Z

// extraDateLayouts are layouts seen in old mail archives that neither the RFC
// 5322 parser nor dateparse accept.
var extraDateLayouts = []string{
	"Mon Jan 02 15:04:05 2006 MST",
}

// ParseDate reads a date field body. RFC 5322 syntax is tried first, then the
// many formats understood by dateparse, then a few layouts found in old mail.
func ParseDate(body string) (time.Time, error) {
	body = strings.TrimSpace(body)

	if t, err := mail.ParseDate(body); err == nil {
		return t, nil
	}

	if t, err := dateparse.ParseAny(body); err == nil {
		return t, nil
	}

	for _, layout := range extraDateLayouts {
		if t, err := time.Parse(layout, body); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, body)
}

// GetTime reads the named field with ParseDate. It returns ErrNoSuchField or
// ErrManyFields unless the field appears exactly once.
func (h *Header) GetTime(name string) (time.Time, error) {
	if v, ok := h.getValue(name); ok {
		if t, isTime := v.(time.Time); isTime {
			return t, nil
		}
	}

	body, err := h.Get(name)
	if err != nil {
		return time.Time{}, err
	}

	t, err := ParseDate(body)
	if err != nil {
		return time.Time{}, err
	}

	h.setValue(name, t)
	return t, nil
}

// SetTime sets the named field to t written with DateLayout.
func (h *Header) SetTime(name string, t time.Time) {
	h.Set(name, t.Format(DateLayout))
}

// GetDate returns the time in the Date field.
func (h *Header) GetDate() (time.Time, error) {
	return h.GetTime(Date)
}

// SetDate sets the Date field.
func (h *Header) SetDate(t time.Time) {
	h.SetTime(Date, t)
}
