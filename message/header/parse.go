package header

import (
	"github.com/zostay/go-globalmail/message/header/field"
)

// Parse reads m, which must hold the header and nothing else, as fields ended
// by lb. The header keeps lb and uses field.DoNotFoldEncoding, so WriteTo
// gives back the input until the header is changed.
//
// Lines before the first field are skipped and reported in a
// *field.BadStartError that comes with a usable header.
func Parse(m []byte, lb Break) (*Header, error) {
	lines, badStart := field.ParseLines(m, lb.Bytes())

	h := &Header{Base: Base{lbr: lb, vf: field.DoNotFoldEncoding}}
	h.fields = make([]*field.Field, 0, len(lines))
	for _, line := range lines {
		h.fields = append(h.fields, field.Parse(line, lb.Bytes()))
	}

	if badStart != nil {
		return h, badStart
	}
	return h, nil
}
