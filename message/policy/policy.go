// Package policy describes how a message is written to the wire. A Policy
// decides whether raw UTF-8 may appear in headers and nested messages, which
// Content-Transfer-Encoding to prefer when a body must be encoded, how long
// lines may be, and which line separator to use.
//
// Policies are immutable. Use New to build one from options or Clone to
// derive a new policy from an existing one.
package policy

import (
	"errors"
	"fmt"
	"strings"
)

// Transfer encodings a Policy may prefer.
const (
	Bit7            = "7bit"
	Bit8            = "8bit"
	Base64          = "base64"
	QuotedPrintable = "quoted-printable"
)

// Line separators.
const (
	CRLF = "\r\n"
	LF   = "\n"
	CR   = "\r"
)

// minLineLength is the shortest limit that can hold a quoted-printable escape
// and a soft break.
const minLineLength = 4

// ErrInvalidPolicy is returned when a policy option is given a value that
// makes no sense.
var ErrInvalidPolicy = errors.New("invalid policy")

// Policy is an immutable set of generation settings.
type Policy struct {
	allowUTF8         bool
	preferredEncoding string
	maxLineLength     int
	lineSeparator     string
}

// Option is a setting applied to a Policy under construction.
type Option func(*Policy) error

// WithAllowUTF8 turns on or off raw UTF-8 in headers and nested messages. When
// off, non-ASCII header text is written as RFC 2047 encoded words and nested
// messages carrying UTF-8 are transfer-encoded.
func WithAllowUTF8(allow bool) Option {
	return func(p *Policy) error {
		p.allowUTF8 = allow
		return nil
	}
}

// WithPreferredTransferEncoding sets the transfer encoding used when a body
// must be encoded. It must be one of 7bit, 8bit, base64, or quoted-printable.
func WithPreferredTransferEncoding(cte string) Option {
	return func(p *Policy) error {
		norm := strings.ToLower(strings.TrimSpace(cte))
		switch norm {
		case Bit7, Bit8, Base64, QuotedPrintable:
			p.preferredEncoding = norm
			return nil
		}
		return fmt.Errorf("%w: unknown transfer encoding %q", ErrInvalidPolicy, cte)
	}
}

// WithMaxLineLength sets the longest line the generator should write, not
// counting the separator. Zero means unlimited. Other values must be at least
// 4.
func WithMaxLineLength(n int) Option {
	return func(p *Policy) error {
		if n < 0 || (n > 0 && n < minLineLength) {
			return fmt.Errorf("%w: max line length must be 0 or at least %d, got %d", ErrInvalidPolicy, minLineLength, n)
		}
		p.maxLineLength = n
		return nil
	}
}

// WithLineSeparator sets the line separator. It must be CRLF, LF, or CR.
func WithLineSeparator(sep string) Option {
	return func(p *Policy) error {
		switch sep {
		case CRLF, LF, CR:
			p.lineSeparator = sep
			return nil
		}
		return fmt.Errorf("%w: unsupported line separator %q", ErrInvalidPolicy, sep)
	}
}

// New builds a policy from the Default settings with the given options
// applied.
func New(opts ...Option) (*Policy, error) {
	return Default.Clone(opts...)
}

// Must panics if err is not nil and returns p otherwise. It is meant for
// package level policy variables.
func Must(p *Policy, err error) *Policy {
	if err != nil {
		panic(err)
	}
	return p
}

// Clone returns a new policy with the settings of p and the given options
// applied. The receiver is never changed.
func (p *Policy) Clone(opts ...Option) (*Policy, error) {
	c := *p
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

// AllowUTF8 returns true if raw UTF-8 may be written in headers and nested
// messages.
func (p *Policy) AllowUTF8() bool {
	return p.allowUTF8
}

// PreferredTransferEncoding returns the transfer encoding to use when a body
// must be encoded.
func (p *Policy) PreferredTransferEncoding() string {
	return p.preferredEncoding
}

// MaxLineLength returns the longest line to write or 0 for unlimited.
func (p *Policy) MaxLineLength() int {
	return p.maxLineLength
}

// LineSeparator returns the line separator to write.
func (p *Policy) LineSeparator() string {
	return p.lineSeparator
}

// Allows8Bit returns true if bodies with 8-bit bytes may be written with an
// identity transfer encoding.
func (p *Policy) Allows8Bit() bool {
	return p.preferredEncoding == Bit8
}

// EncodingFor8Bit returns the transfer encoding to apply to 8-bit content
// that the policy does not allow to pass as-is: base64 when preferred and
// quoted-printable otherwise.
func (p *Policy) EncodingFor8Bit() string {
	if p.preferredEncoding == Base64 {
		return Base64
	}
	return QuotedPrintable
}

// String describes the policy for logging.
func (p *Policy) String() string {
	sep := map[string]string{CRLF: "crlf", LF: "lf", CR: "cr"}[p.lineSeparator]
	return fmt.Sprintf("utf8=%t cte=%s max=%d eol=%s",
		p.allowUTF8, p.preferredEncoding, p.maxLineLength, sep)
}

// The preset policies.
var (
	// Default writes 7-bit safe headers, allows 8bit bodies, and uses Unix
	// line endings.
	Default = &Policy{
		allowUTF8:         false,
		preferredEncoding: Bit8,
		maxLineLength:     78,
		lineSeparator:     LF,
	}

	// SMTP is suitable for transports without the 8BITMIME or SMTPUTF8
	// extensions.
	SMTP = Must(Default.Clone(
		WithPreferredTransferEncoding(Bit7),
		WithLineSeparator(CRLF),
	))

	// SMTPUTF8 is suitable for transports offering SMTPUTF8.
	SMTPUTF8 = Must(Default.Clone(
		WithAllowUTF8(true),
		WithLineSeparator(CRLF),
	))

	// HTTP allows UTF-8 and places no limit on line length.
	HTTP = Must(Default.Clone(
		WithAllowUTF8(true),
		WithMaxLineLength(0),
		WithLineSeparator(CRLF),
	))
)
