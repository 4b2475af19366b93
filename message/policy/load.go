package policy

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the YAML form of a policy. Missing keys keep the settings of the
// base policy.
type File struct {
	Base                      string  `yaml:"base"`
	AllowUTF8                 *bool   `yaml:"allow_utf8"`
	PreferredTransferEncoding *string `yaml:"preferred_transfer_encoding"`
	MaxLineLength             *int    `yaml:"max_line_length"`
	LineSeparator             *string `yaml:"line_separator"`
}

// Named returns the preset policy with the given name: default, smtp,
// smtputf8, or http.
func Named(name string) (*Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return Default, nil
	case "smtp":
		return SMTP, nil
	case "smtputf8":
		return SMTPUTF8, nil
	case "http":
		return HTTP, nil
	}
	return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalidPolicy, name)
}

// ParseLineSeparator accepts the names crlf, lf, and cr (in any case) as well
// as the literal separators.
func ParseLineSeparator(s string) (string, error) {
	switch strings.ToLower(s) {
	case "crlf", CRLF, `\r\n`:
		return CRLF, nil
	case "lf", LF, `\n`:
		return LF, nil
	case "cr", CR, `\r`:
		return CR, nil
	}
	return "", fmt.Errorf("%w: unsupported line separator %q", ErrInvalidPolicy, s)
}

// Options returns the options described by the file.
func (f *File) Options() ([]Option, error) {
	opts := make([]Option, 0, 4)
	if f.AllowUTF8 != nil {
		opts = append(opts, WithAllowUTF8(*f.AllowUTF8))
	}
	if f.PreferredTransferEncoding != nil {
		opts = append(opts, WithPreferredTransferEncoding(*f.PreferredTransferEncoding))
	}
	if f.MaxLineLength != nil {
		opts = append(opts, WithMaxLineLength(*f.MaxLineLength))
	}
	if f.LineSeparator != nil {
		sep, err := ParseLineSeparator(*f.LineSeparator)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithLineSeparator(sep))
	}
	return opts, nil
}

// Policy builds the policy described by the file.
func (f *File) Policy() (*Policy, error) {
	base, err := Named(f.Base)
	if err != nil {
		return nil, err
	}

	opts, err := f.Options()
	if err != nil {
		return nil, err
	}

	return base.Clone(opts...)
}

// Load reads a YAML policy file. For example:
//
//	base: smtp
//	allow_utf8: true
//	preferred_transfer_encoding: quoted-printable
//	max_line_length: 200
//	line_separator: crlf
func Load(r io.Reader) (*Policy, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}

	return f.Policy()
}
