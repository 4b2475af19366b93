package message

import (
	"io"

	"github.com/zostay/go-globalmail/message/header"
)

// Part is a node of a message tree. A branch, *Multipart or *Encapsulated,
// holds other parts and no content of its own. A leaf, *Opaque, holds
// content and no parts. An *Encapsulated always has exactly one part, the
// message it carries.
//
// A leaf may still hold a multipart body that was not split into parts, for
// instance below the WithMaxDepth limit.
type Part interface {
	// WriteTo writes the part as it was parsed or built. Parsed fields keep
	// their original bytes and line breaks. A Generator writes it to a
	// policy instead.
	io.WriterTo

	// IsMultipart reports whether the part is a branch. Only branches have
	// GetParts and only leaves have GetReader.
	IsMultipart() bool

	// IsEncoded reports whether GetReader returns the body with its
	// Content-Transfer-Encoding still applied. It is false for branches.
	IsEncoded() bool

	GetHeader() *header.Header

	// GetReader returns the body of a leaf, or nil for a branch.
	GetReader() io.Reader

	// GetParts returns the parts of a branch, or nil for a leaf.
	GetParts() []Part

	// Defects returns the problems worked around while parsing this part,
	// not counting those of its parts. See AllDefects.
	Defects() []error
}

// Generic is a Part that is a whole message rather than a piece of one. It is
// always an *Opaque, a *Multipart, or an *Encapsulated, so a type switch on
// those three covers every case.
type Generic = Part
