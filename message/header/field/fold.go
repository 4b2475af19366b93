package field

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

const (
	DefaultFoldIndent       = " " // placed before continuation lines that lack whitespace
	DefaultFoldWidth        = 78  // RFC 5322 recommended line length
	DefaultForcedFoldLength = 998 // RFC 5322 hard line length limit

	DoNotFold = -1
)

var (
	// DefaultFoldEncoding folds to the RFC 5322 recommended width.
	DefaultFoldEncoding = &FoldEncoding{
		indent:    DefaultFoldIndent,
		width:     DefaultFoldWidth,
		hardWidth: DefaultForcedFoldLength,
	}

	// DoNotFoldEncoding writes every field on a single line.
	DoNotFoldEncoding = &FoldEncoding{
		indent:    DefaultFoldIndent,
		width:     DoNotFold,
		hardWidth: DoNotFold,
	}
)

var (
	// ErrFoldIndent is returned by NewFoldEncoding when the indent is empty,
	// holds something other than spaces and tabs, or is not narrower than the
	// fold width.
	ErrFoldIndent = errors.New("fold indent must be spaces or tabs narrower than the fold width")

	// ErrFoldWidth is returned by NewFoldEncoding when the width is wider than
	// the forced width or when only one of them is DoNotFold.
	ErrFoldWidth = errors.New("fold width must be no wider than the forced width, or both must be DoNotFold")
)

// Break is the line break written after each folded line.
type Break []byte

// FoldEncoding folds header fields so that lines fit within a width, not
// counting the line break.
type FoldEncoding struct {
	indent    string
	width     int
	hardWidth int
}

// NewFoldEncoding returns a FoldEncoding that keeps lines within width
// wherever the field has whitespace to break at. A run of text with no
// whitespace that is wider than hardWidth is split without regard to its
// content. Pass DoNotFold for both widths to turn folding off.
func NewFoldEncoding(indent string, width, hardWidth int) (*FoldEncoding, error) {
	if indent == "" || strings.Trim(indent, " \t") != "" {
		return nil, ErrFoldIndent
	}

	if width == DoNotFold || hardWidth == DoNotFold {
		if width != hardWidth {
			return nil, ErrFoldWidth
		}
		return &FoldEncoding{indent, width, hardWidth}, nil
	}

	if len(indent) >= width {
		return nil, ErrFoldIndent
	}

	if width > hardWidth {
		return nil, ErrFoldWidth
	}

	return &FoldEncoding{indent, width, hardWidth}, nil
}

// Width returns the line width the encoding folds to, or DoNotFold.
func (vf *FoldEncoding) Width() int {
	return vf.width
}

// Unfold will take a folded header line from an email and unfold it for
// reading. This gives you the proper header body value.
func (vf *FoldEncoding) Unfold(f []byte) []byte {
	uf := make([]byte, 0, len(f))
	for _, b := range f {
		if b != '\r' && b != '\n' {
			uf = append(uf, b)
		}
	}
	return uf
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' }

// segments splits a line into pieces that each hold any leading whitespace
// followed by the text up to the next whitespace. Trailing whitespace becomes
// a piece of its own.
func segments(line []byte) [][]byte {
	var segs [][]byte
	for start := 0; start < len(line); {
		i := start
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		for i < len(line) && !isSpace(line[i]) {
			i++
		}
		segs = append(segs, line[start:i])
		start = i
	}
	return segs
}

// foldWriter collects one output line at a time and tracks the bytes written
// and the first write error.
type foldWriter struct {
	out  io.Writer
	lb   Break
	line []byte
	n    int64
	err  error
}

func (fw *foldWriter) write(b []byte) {
	if fw.err != nil {
		return
	}
	n, err := fw.out.Write(b)
	fw.n += int64(n)
	fw.err = err
}

func (fw *foldWriter) flush() {
	fw.write(fw.line)
	fw.write(fw.lb)
	fw.line = fw.line[:0]
}

// hasText reports whether the pending line holds anything but whitespace.
func (fw *foldWriter) hasText() bool {
	return len(bytes.Trim(fw.line, " \t")) > 0
}

// Fold writes the field to out with every line, including the last,
// terminated by lb. Lines are broken at whitespace, including the whitespace
// after the field name's colon, so that they fit within the width. A line is
// only left wider than that when it holds a single run of text with no
// whitespace that is no wider than the forced width. Line breaks already in
// the field are kept.
//
// It returns the number of bytes written.
func (vf *FoldEncoding) Fold(out io.Writer, f []byte, lb Break) (int64, error) {
	fw := &foldWriter{out: out, lb: lb}

	if vf.width == DoNotFold || len(f) <= vf.width {
		fw.line = f
		fw.flush()
		return fw.n, fw.err
	}

	for i, src := range bytes.Split(f, lb) {
		if len(src) == 0 {
			continue
		}

		if i > 0 && !isSpace(src[0]) {
			fw.line = append(fw.line, vf.indent...)
		}

		for _, seg := range segments(src) {
			blank := len(bytes.Trim(seg, " \t")) == 0
			if !blank && fw.hasText() && len(fw.line)+len(seg) > vf.width {
				fw.flush()
				if !isSpace(seg[0]) {
					fw.line = append(fw.line, vf.indent...)
				}
			}

			fw.line = append(fw.line, seg...)
			for len(fw.line) > vf.hardWidth {
				// splitting inside a run of text adds the indent to its value
				rest := append([]byte(vf.indent), fw.line[vf.width:]...)
				fw.line = fw.line[:vf.width]
				fw.flush()
				fw.line = append(fw.line, rest...)
			}
		}

		fw.flush()
	}

	return fw.n, fw.err
}
