package message

import (
	"fmt"
)

// DefectKind names the kind of structural problem found by the parser.
type DefectKind int

// The structural defects the parser can record.
const (
	// MissingBoundaryParameter means a multipart/* Content-Type had no
	// boundary parameter. The body is kept as an *Opaque.
	MissingBoundaryParameter DefectKind = iota + 1

	// NoBoundaryDelimiter means a multipart/* body never contained the
	// opening delimiter line. The body is kept as an *Opaque.
	NoBoundaryDelimiter

	// MissingCloseDelimiter means the final "--boundary--" line was not
	// found. The parts found before the end of input are kept.
	MissingCloseDelimiter

	// MissingHeaderBodySeparator means no blank line was found after the
	// header. All the input was treated as header.
	MissingHeaderBodySeparator

	// HeaderBadStart means the header began with lines that are not fields.
	// Those lines were skipped.
	HeaderBadStart

	// InvalidDate means the Date field of a message could not be read as a
	// date or appeared more than once.
	InvalidDate
)

// String returns a short name for the defect kind.
func (k DefectKind) String() string {
	switch k {
	case MissingBoundaryParameter:
		return "missing boundary parameter"
	case NoBoundaryDelimiter:
		return "no boundary delimiter"
	case MissingCloseDelimiter:
		return "missing close delimiter"
	case MissingHeaderBodySeparator:
		return "missing header/body separator"
	case HeaderBadStart:
		return "header bad start"
	case InvalidDate:
		return "invalid date"
	}
	return fmt.Sprintf("defect(%d)", int(k))
}

// StructuralParseError is recorded on a part when its structure breaks the
// MIME rules in a way the parser could work around. It is never returned by
// itself from Parse. Look for it in Defects().
type StructuralParseError struct {
	Kind   DefectKind
	Detail string
	Err    error // underlying error, if any
}

// Error returns the error message.
func (err *StructuralParseError) Error() string {
	if err.Detail == "" {
		return err.Kind.String()
	}
	return err.Kind.String() + ": " + err.Detail
}

// Unwrap returns the underlying error.
func (err *StructuralParseError) Unwrap() error {
	return err.Err
}

// CodecDecodeWarning is recorded when the Content-Transfer-Encoding of a part
// could not be decoded cleanly. The decoded bytes are still available.
type CodecDecodeWarning struct {
	Encoding string
	Err      error
}

// Error returns the error message.
func (err *CodecDecodeWarning) Error() string {
	return fmt.Sprintf("decoding %s content: %v", err.Encoding, err.Err)
}

// Unwrap returns the transfer error, such as *transfer.MalformedEscapeError.
func (err *CodecDecodeWarning) Unwrap() error {
	return err.Err
}

// CharsetDecodeError is returned by Opaque.Text() when the bytes of the part
// could not be decoded from the named charset. The undecoded content is still
// returned as the text.
type CharsetDecodeError struct {
	Charset string
	Err     error
}

// Error returns the error message.
func (err *CharsetDecodeError) Error() string {
	return fmt.Sprintf("decoding %q text: %v", err.Charset, err.Err)
}

// Unwrap returns the underlying charset error.
func (err *CharsetDecodeError) Unwrap() error {
	return err.Err
}

// AllDefects returns the defects recorded on the message and all of its
// sub-parts, in depth-first order.
func AllDefects(msg Generic) []error {
	var defects []error
	var collect func(Part)
	collect = func(p Part) {
		defects = append(defects, p.Defects()...)
		for _, sub := range p.GetParts() {
			collect(sub)
		}
	}
	collect(msg)
	return defects
}
