package message

import (
	"errors"

	"github.com/zostay/go-globalmail/message/header"
	"github.com/zostay/go-globalmail/message/transfer"
)

// ErrBadEmbedEncoding is returned by Embed when a message/rfc822 part is given
// a transfer encoding other than an identity encoding. RFC 2046 only permits
// 7bit, 8bit, and binary for message/rfc822.
var ErrBadEmbedEncoding = errors.New("message/rfc822 may not be base64 or quoted-printable encoded")

type embedOptions struct {
	subtype string
	cte     string
}

// EmbedOption modifies the part built by Embed.
type EmbedOption func(o *embedOptions)

// WithSubtype sets the subtype of the message/* Content-Type, such as "rfc822"
// or "global".
func WithSubtype(subtype string) EmbedOption {
	return func(o *embedOptions) { o.subtype = subtype }
}

// WithTransferEncoding sets the Content-Transfer-Encoding of the part.
func WithTransferEncoding(cte string) EmbedOption {
	return func(o *embedOptions) { o.cte = cte }
}

// Embed returns an *Encapsulated part carrying inner. Without WithSubtype(), the
// subtype is rfc822, or global when inner carries any UTF-8 or 8-bit bytes. The
// header gets a Content-Type, the Content-Transfer-Encoding when one is given,
// and a MIME-Version.
func Embed(inner Generic, opts ...EmbedOption) (*Encapsulated, error) {
	o := embedOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	subtype := o.subtype
	if subtype == "" {
		subtype = "rfc822"
		if IsUTF8Bearing(inner) {
			subtype = "global"
		}
	}

	if subtype == "rfc822" && !transfer.IsIdentity(o.cte) {
		return nil, ErrBadEmbedEncoding
	}

	h := &header.Header{}
	h.SetMediaType("message/" + subtype)
	if o.cte != "" {
		h.SetTransferEncoding(o.cte)
	}
	h.Set(header.MIMEVersion, "1.0")

	return NewEncapsulated(h, inner), nil
}
